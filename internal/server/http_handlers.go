package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
)

// healthHandler reports liveness plus per-provider circuit breaker state.
// Any provider with an open breaker degrades the whole service to 503.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	providerStatus := s.checkProviderHealth()
	response := map[string]any{
		"status":    "healthy",
		"service":   "jobfinder",
		"version":   s.Version,
		"providers": providerStatus,
	}

	code := http.StatusOK
	if anyBreakerOpen(providerStatus) {
		response["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, response)
}

// anyBreakerOpen scans provider stats for an open circuit breaker.
func anyBreakerOpen(providerStatus map[string]any) bool {
	for _, status := range providerStatus {
		info, ok := status.(map[string]any)
		if !ok {
			continue
		}
		if state, ok := info["state"].(string); ok && state == "open" {
			return true
		}
	}
	return false
}

// checkProviderHealth reports circuit breaker state for every adapter
func (s *Server) checkProviderHealth() map[string]any {
	providerStatus := make(map[string]any)
	for _, adapter := range s.adapters {
		providerStatus[adapter.Name()] = adapter.Stats()
	}
	return providerStatus
}

// statsHandler exposes server limits, provider state and rate limiter usage.
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "jobfinder",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
		"providers": s.checkProviderHealth(),
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeJSON sends v as a JSON response. Headers must be set before the
// status code is written.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
	})
}
