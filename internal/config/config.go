package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// Credential Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (JOBFINDER_PROVIDERS_JSEARCH_APIKEY, etc.)
// 4. Default values - Lowest priority
type Config struct {
	Providers     ProvidersConfig     `mapstructure:"providers"`
	Search        SearchConfig        `mapstructure:"search"`
	Extract       ExtractConfig       `mapstructure:"extract"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ProvidersConfig holds configuration for every job-search provider adapter.
type ProvidersConfig struct {
	JSearch    JSearchConfig    `mapstructure:"jsearch"`
	DuckDuckGo DuckDuckGoConfig `mapstructure:"duckduckgo"`
	SerpAPI    SerpAPIConfig    `mapstructure:"serpapi"`
}

// JSearchConfig configures the RapidAPI JSearch adapter.
type JSearchConfig struct {
	APIKey         string               `mapstructure:"apiKey"`
	Host           string               `mapstructure:"host"`
	Pages          int                  `mapstructure:"pages"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// DuckDuckGoConfig configures the general web-search adapter. Domains is the
// set of job-board hosts results are restricted to; it is configuration, not
// a hardcoded list.
type DuckDuckGoConfig struct {
	BaseURL        string               `mapstructure:"baseURL"`
	Domains        []string             `mapstructure:"domains"`
	MaxResults     int                  `mapstructure:"maxResults"`
	EnglishOnly    bool                 `mapstructure:"englishOnly"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// SerpAPIConfig configures the optional jobs-vertical adapter. The adapter is
// a no-op unless Enabled is set and an API key resolves.
type SerpAPIConfig struct {
	Enabled        bool                 `mapstructure:"enabled"`
	APIKey         string               `mapstructure:"apiKey"`
	Recency        string               `mapstructure:"recency"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Timeout for half-open to open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// SearchConfig holds aggregation and query defaults.
type SearchConfig struct {
	DefaultLocation string `mapstructure:"defaultLocation"`
	DefaultLimit    int    `mapstructure:"defaultLimit"`
	MaxLimit        int    `mapstructure:"maxLimit"`
	// NormalizeDedupeKeys switches the aggregator from byte-exact
	// (title, company, location) comparison to case-insensitive,
	// whitespace-trimmed comparison.
	NormalizeDedupeKeys bool `mapstructure:"normalizeDedupeKeys"`
}

// ExtractConfig holds field-extraction bounds and vocabulary sources.
type ExtractConfig struct {
	MaxLines          int    `mapstructure:"maxLines"`          // working window for skill/name analysis
	EntityLines       int    `mapstructure:"entityLines"`       // joined head handed to the entity tagger
	TitleExactLines   int    `mapstructure:"titleExactLines"`   // window for exact vocabulary matching
	TitlePatternLines int    `mapstructure:"titlePatternLines"` // window for regex pattern matching
	KeywordLines      int    `mapstructure:"keywordLines"`      // window for keyword cluster inference
	SkillCap          int    `mapstructure:"skillCap"`
	SkillFloor        int    `mapstructure:"skillFloor"` // below this, supplement skills from entities
	VocabDir          string `mapstructure:"vocabDir"`   // optional dir with titles.txt / skills.txt
	WatchVocab        bool   `mapstructure:"watchVocab"` // hot-reload vocabulary files on change
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`

	// API Authentication
	APIKeys []string `mapstructure:"apiKeys"` // Valid API keys for authentication

	// Rate Limiting Configuration
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`        // Enable/disable rate limiting
	RequestsPerMin int           `mapstructure:"requestsPerMin"` // Requests allowed per minute
	BurstCapacity  int           `mapstructure:"burstCapacity"`  // Burst capacity for token bucket
	ByIP           bool          `mapstructure:"byIP"`           // Enable per-IP rate limiting
	ByAPIKey       bool          `mapstructure:"byAPIKey"`       // Enable per-API-key rate limiting
	Window         time.Duration `mapstructure:"window"`         // Rate limiting window duration
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxUploadSize    int64    `mapstructure:"maxUploadSize"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool                `mapstructure:"enabled"`
	ServiceName     string              `mapstructure:"serviceName"`
	ServiceVersion  string              `mapstructure:"serviceVersion"`
	ServiceInstance string              `mapstructure:"serviceInstance"`
	ConsoleOutput   bool                `mapstructure:"consoleOutput"`
	SampleRate      float64             `mapstructure:"sampleRate"`
	Tracing         TracingConfig       `mapstructure:"tracing"`
	Metrics         MetricsConfig       `mapstructure:"metrics"`
	CustomMetrics   CustomMetricsConfig `mapstructure:"customMetrics"`
	Console         ConsoleConfig       `mapstructure:"console"`
	Prometheus      PrometheusConfig    `mapstructure:"prometheus"`
	OTLP            OTLPConfig          `mapstructure:"otlp"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	SampleRate float64 `mapstructure:"sampleRate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled            bool          `mapstructure:"enabled"`
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// CustomMetricsConfig holds fine-grained custom metrics configuration
type CustomMetricsConfig struct {
	ProviderOperations ProviderMetricsConfig `mapstructure:"providerOperations"`
	BusinessMetrics    BusinessMetricsConfig `mapstructure:"businessMetrics"`
}

// ProviderMetricsConfig holds provider operation metrics configuration
type ProviderMetricsConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	TrackDuration bool `mapstructure:"trackDuration"`
	TrackListings bool `mapstructure:"trackListings"`
}

// BusinessMetricsConfig holds business metrics configuration
type BusinessMetricsConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	TrackSuccessRates bool `mapstructure:"trackSuccessRates"`
	TrackRateLimits   bool `mapstructure:"trackRateLimits"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig loads configuration from environment variables and a config file
func LoadConfig() (*Config, error) {
	log.Println("[CONFIG] Starting configuration loading process")

	v := viper.New()

	// Set default values
	setDefaults(v)

	// Set up environment variable handling
	v.SetEnvPrefix("JOBFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set up config file handling
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/jobfinder/")
	v.AddConfigPath("$HOME/.jobfinder")
	v.AddConfigPath(".")

	// Read the config file
	configFileUsed := ""
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		configFileUsed = v.ConfigFileUsed()
		log.Printf("[CONFIG] Successfully loaded config file: %s", configFileUsed)
	}

	// Unmarshal the configuration into the Config struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply environment fallbacks and derived values
	config.applyFallbacks()

	// Log configuration sources summary
	config.logConfigurationSources(configFileUsed)

	// Validate the configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Println("[CONFIG] Configuration loading completed successfully")
	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Search.DefaultLimit < 0 || c.Search.MaxLimit < 0 {
		return fmt.Errorf("search limits must be non-negative")
	}
	if c.Search.MaxLimit > 0 && c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search default limit %d exceeds max limit %d", c.Search.DefaultLimit, c.Search.MaxLimit)
	}

	if c.Providers.JSearch.Pages <= 0 {
		return fmt.Errorf("jsearch pages must be positive")
	}
	if c.Providers.JSearch.Timeout <= 0 || c.Providers.DuckDuckGo.Timeout <= 0 || c.Providers.SerpAPI.Timeout <= 0 {
		return fmt.Errorf("provider timeouts must be positive")
	}
	if len(c.Providers.DuckDuckGo.Domains) == 0 {
		return fmt.Errorf("duckduckgo adapter requires at least one job-board domain")
	}
	if c.Providers.SerpAPI.Enabled && c.Providers.SerpAPI.APIKey == "" && !c.Vault.Enabled {
		return fmt.Errorf("serpapi adapter enabled without an API key (set JOBFINDER_PROVIDERS_SERPAPI_APIKEY or configure vault)")
	}

	if c.Extract.SkillCap <= 0 {
		return fmt.Errorf("extract skill cap must be positive")
	}
	if c.Extract.SkillFloor > c.Extract.SkillCap {
		return fmt.Errorf("extract skill floor %d exceeds cap %d", c.Extract.SkillFloor, c.Extract.SkillCap)
	}

	validFormats := make(map[string]bool)
	for _, format := range c.App.SupportedFormats {
		validFormats[format] = true
	}
	if !validFormats[c.App.DefaultFormat] {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	return nil
}
