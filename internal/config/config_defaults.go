package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Provider defaults
	v.SetDefault("providers.jsearch.apiKey", "")
	v.SetDefault("providers.jsearch.host", "jsearch.p.rapidapi.com")
	v.SetDefault("providers.jsearch.pages", 1)
	v.SetDefault("providers.jsearch.timeout", 15*time.Second)
	v.SetDefault("providers.jsearch.circuitBreaker.enabled", true)
	v.SetDefault("providers.jsearch.circuitBreaker.maxRequests", 3)
	v.SetDefault("providers.jsearch.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("providers.jsearch.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("providers.jsearch.circuitBreaker.minRequests", 5)
	v.SetDefault("providers.jsearch.circuitBreaker.failureThreshold", 0.6)

	v.SetDefault("providers.duckduckgo.baseURL", "https://html.duckduckgo.com/html/")
	v.SetDefault("providers.duckduckgo.domains", []string{
		"linkedin.com/jobs",
		"indeed.com",
		"glassdoor.com",
		"monster.com",
		"careerbuilder.com",
		"ziprecruiter.com",
	})
	v.SetDefault("providers.duckduckgo.maxResults", 10)
	v.SetDefault("providers.duckduckgo.englishOnly", true)
	v.SetDefault("providers.duckduckgo.timeout", 10*time.Second)
	v.SetDefault("providers.duckduckgo.circuitBreaker.enabled", true)
	v.SetDefault("providers.duckduckgo.circuitBreaker.maxRequests", 3)
	v.SetDefault("providers.duckduckgo.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("providers.duckduckgo.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("providers.duckduckgo.circuitBreaker.minRequests", 5)
	v.SetDefault("providers.duckduckgo.circuitBreaker.failureThreshold", 0.6)

	v.SetDefault("providers.serpapi.enabled", false)
	v.SetDefault("providers.serpapi.apiKey", "")
	v.SetDefault("providers.serpapi.recency", "month")
	v.SetDefault("providers.serpapi.timeout", 15*time.Second)
	v.SetDefault("providers.serpapi.circuitBreaker.enabled", true)
	v.SetDefault("providers.serpapi.circuitBreaker.maxRequests", 3)
	v.SetDefault("providers.serpapi.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("providers.serpapi.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("providers.serpapi.circuitBreaker.minRequests", 5)
	v.SetDefault("providers.serpapi.circuitBreaker.failureThreshold", 0.6)

	// Search defaults
	v.SetDefault("search.defaultLocation", "Remote")
	v.SetDefault("search.defaultLimit", 10)
	v.SetDefault("search.maxLimit", 50)
	v.SetDefault("search.normalizeDedupeKeys", false)

	// Extraction defaults
	v.SetDefault("extract.maxLines", 400)
	v.SetDefault("extract.entityLines", 120)
	v.SetDefault("extract.titleExactLines", 60)
	v.SetDefault("extract.titlePatternLines", 80)
	v.SetDefault("extract.keywordLines", 50)
	v.SetDefault("extract.skillCap", 10)
	v.SetDefault("extract.skillFloor", 5)
	v.SetDefault("extract.vocabDir", "")
	v.SetDefault("extract.watchVocab", false)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.apiKeys", []string{})

	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", true)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", true)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App defaults
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxUploadSize", int64(10*1024*1024))

	// Vault defaults
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.authMethod", "token")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.roleID", "")
	v.SetDefault("vault.secretID", "")
	v.SetDefault("vault.secretPath", "secret/data/jobfinder")
	v.SetDefault("vault.timeout", 10*time.Second)

	// Observability defaults
	v.SetDefault("observability.enabled", false)
	v.SetDefault("observability.serviceName", "jobfinder")
	v.SetDefault("observability.serviceVersion", "1.0.0")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 30*time.Second)
	v.SetDefault("observability.customMetrics.providerOperations.enabled", true)
	v.SetDefault("observability.customMetrics.providerOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.providerOperations.trackListings", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackSuccessRates", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackRateLimits", true)
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", false)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
