package config

import (
	"fmt"
	"log"
	"time"

	vault "github.com/hashicorp/vault/api"
)

// VaultConfig holds HashiCorp Vault integration configuration
type VaultConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Address    string        `mapstructure:"address"`
	AuthMethod string        `mapstructure:"authMethod"` // "token" or "approle"
	Token      string        `mapstructure:"token"`
	RoleID     string        `mapstructure:"roleID"`
	SecretID   string        `mapstructure:"secretID"`
	SecretPath string        `mapstructure:"secretPath"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Vault secret keys for provider credentials.
const (
	vaultKeyJSearch = "jsearch_api_key"
	vaultKeySerpAPI = "serpapi_api_key"
)

// ResolveVaultSecrets overrides provider credentials with values read from
// Vault. Vault values take precedence over file and environment values.
// A disabled Vault section is a no-op; a configured but unreachable Vault
// is an error, so a misconfigured deployment fails loudly instead of
// silently running without credentials.
func (c *Config) ResolveVaultSecrets() error {
	if !c.Vault.Enabled {
		return nil
	}

	log.Printf("[CONFIG] Resolving provider credentials from Vault at %s", c.Vault.Address)

	client, err := newVaultClient(&c.Vault)
	if err != nil {
		return fmt.Errorf("failed to create vault client: %w", err)
	}

	secret, err := client.Logical().Read(c.Vault.SecretPath)
	if err != nil {
		return fmt.Errorf("failed to read vault secret at %s: %w", c.Vault.SecretPath, err)
	}
	if secret == nil || secret.Data == nil {
		return fmt.Errorf("no secret found at vault path %s", c.Vault.SecretPath)
	}

	// KV v2 nests the payload under "data"; KV v1 returns it directly.
	data := secret.Data
	if nested, ok := secret.Data["data"].(map[string]any); ok {
		data = nested
	}

	if key, ok := data[vaultKeyJSearch].(string); ok && key != "" {
		c.Providers.JSearch.APIKey = key
		log.Println("[CONFIG] JSearch API key resolved from Vault")
	}
	if key, ok := data[vaultKeySerpAPI].(string); ok && key != "" {
		c.Providers.SerpAPI.APIKey = key
		log.Println("[CONFIG] SerpAPI key resolved from Vault")
	}

	return nil
}

// newVaultClient creates and authenticates a Vault client
func newVaultClient(vc *VaultConfig) (*vault.Client, error) {
	clientConfig := vault.DefaultConfig()
	if vc.Address != "" {
		clientConfig.Address = vc.Address
	}
	if vc.Timeout > 0 {
		clientConfig.Timeout = vc.Timeout
	}

	client, err := vault.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	switch vc.AuthMethod {
	case "token", "":
		if vc.Token == "" {
			return nil, fmt.Errorf("vault token auth requires a token")
		}
		client.SetToken(vc.Token)
	case "approle":
		if vc.RoleID == "" || vc.SecretID == "" {
			return nil, fmt.Errorf("vault approle auth requires roleID and secretID")
		}
		resp, err := client.Logical().Write("auth/approle/login", map[string]any{
			"role_id":   vc.RoleID,
			"secret_id": vc.SecretID,
		})
		if err != nil {
			return nil, fmt.Errorf("vault approle login failed: %w", err)
		}
		if resp == nil || resp.Auth == nil {
			return nil, fmt.Errorf("vault approle login returned no auth data")
		}
		client.SetToken(resp.Auth.ClientToken)
	default:
		return nil, fmt.Errorf("unsupported vault auth method: %s", vc.AuthMethod)
	}

	return client, nil
}
