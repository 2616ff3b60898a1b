package config

import (
	"log"
	"os"
)

// applyFallbacks resolves provider credentials from well-known environment
// variables when neither the config file nor the prefixed environment set
// them. RAPIDAPI_KEY and SERPAPI_KEY match what the hosted dashboards hand
// out, so operators can export those directly.
func (c *Config) applyFallbacks() {
	if c.Providers.JSearch.APIKey == "" {
		if key := os.Getenv("RAPIDAPI_KEY"); key != "" {
			c.Providers.JSearch.APIKey = key
			log.Println("[CONFIG] JSearch API key resolved from RAPIDAPI_KEY environment variable")
		}
	}

	if c.Providers.SerpAPI.APIKey == "" {
		if key := os.Getenv("SERPAPI_KEY"); key != "" {
			c.Providers.SerpAPI.APIKey = key
			log.Println("[CONFIG] SerpAPI key resolved from SERPAPI_KEY environment variable")
		}
	}

	if c.Observability.ServiceInstance == "" {
		if hostname, err := os.Hostname(); err == nil {
			c.Observability.ServiceInstance = hostname
		}
	}
}

// logConfigurationSources logs a summary of where configuration came from
func (c *Config) logConfigurationSources(configFile string) {
	if configFile != "" {
		log.Printf("[CONFIG] Configuration file: %s", configFile)
	} else {
		log.Println("[CONFIG] Configuration file: none (defaults + environment)")
	}

	log.Printf("[CONFIG] JSearch API key: %s", maskSecret(c.Providers.JSearch.APIKey))
	if c.Providers.SerpAPI.Enabled {
		log.Printf("[CONFIG] SerpAPI key: %s", maskSecret(c.Providers.SerpAPI.APIKey))
	} else {
		log.Println("[CONFIG] SerpAPI adapter: disabled")
	}
	log.Printf("[CONFIG] Vault integration: enabled=%v", c.Vault.Enabled)
	log.Printf("[CONFIG] Server API keys configured: %d", len(c.Server.APIKeys))
	log.Printf("[CONFIG] Rate limiting: enabled=%v (%d req/min, burst %d)",
		c.Server.RateLimit.Enabled, c.Server.RateLimit.RequestsPerMin, c.Server.RateLimit.BurstCapacity)
	log.Printf("[CONFIG] Observability: enabled=%v", c.Observability.Enabled)
}

// maskSecret masks a secret for safe logging
func maskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
