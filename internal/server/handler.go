package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	jobfinderErrors "jobfinder/internal/errors"
	"jobfinder/internal/observability"
	"jobfinder/internal/types"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// createResumeSearchHandler wraps the resume upload handler with observability
func (s *Server) createResumeSearchHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobfinder.api")
		ctx, span := tracer.Start(ctx, "api.search")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		file, header, err := r.FormFile("resume")
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume file", "multipart field 'resume' is required", http.StatusBadRequest)
			return
		}
		defer func() {
			if err := file.Close(); err != nil {
				s.Logger.Warn("Failed to close uploaded file", "error", err)
			}
		}()

		content, err := io.ReadAll(file)
		if err != nil {
			span.RecordError(err)
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				writeErrorResponse(w, "Resume too large",
					fmt.Sprintf("upload exceeds size limit of %d bytes", maxBytesErr.Limit),
					http.StatusRequestEntityTooLarge)
				return
			}
			writeErrorResponse(w, "Failed to read resume", err.Error(), http.StatusBadRequest)
			return
		}
		if len(content) == 0 {
			err := fmt.Errorf("empty resume upload")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Empty resume file", "uploaded file contains no data", http.StatusBadRequest)
			return
		}

		limit, err := s.resolveLimit(r.FormValue("limit"))
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid limit", err.Error(), http.StatusBadRequest)
			return
		}
		location := strings.TrimSpace(r.FormValue("location"))

		span.SetAttributes(
			attribute.String("request.filename", header.Filename),
			attribute.Int("request.resume_bytes", len(content)),
			attribute.Int("request.limit", limit),
			attribute.String("operation", "resume_search"),
		)

		doc := types.ResumeDocument{
			Bytes:        content,
			Filename:     header.Filename,
			DeclaredMIME: header.Header.Get("Content-Type"),
		}
		if !allowedResumeMIME(doc.DeclaredMIME) {
			span.SetAttributes(attribute.String("error.type", "unsupported_format"))
			writeErrorResponse(w, "Unsupported resume type",
				fmt.Sprintf("content type %q is not supported; upload a PDF or Word document", doc.DeclaredMIME),
				http.StatusUnsupportedMediaType)
			return
		}

		result, err := s.orchestrator.SearchByResume(ctx, doc, location, limit)
		if err != nil {
			span.RecordError(err)
			om.RecordResumeParsed(ctx, false, "")
			om.RecordSearchCompleted(ctx, "resume", false)
			s.writeSearchFailure(w, span, err)
			return
		}

		om.RecordSearchCompleted(ctx, "resume", true)
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("response.title", result.Profile.JobTitle),
			attribute.Int("response.listings", len(result.Listings)),
			attribute.Int("response.provider_errors", len(result.ProviderErrors)),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createJobsHandler wraps the manual search handler with observability
func (s *Server) createJobsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobfinder.api")
		ctx, span := tracer.Start(ctx, "api.jobs")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req JobsRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.JobTitle) == "" {
			err := fmt.Errorf("missing job title")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing job title", "jobTitle field is required", http.StatusBadRequest)
			return
		}

		limit := s.AppConfig.Search.DefaultLimit
		if req.Limit != nil {
			var err error
			if limit, err = s.capLimit(*req.Limit); err != nil {
				span.RecordError(err)
				span.SetAttributes(attribute.String("error.type", "validation"))
				writeErrorResponse(w, "Invalid limit", err.Error(), http.StatusBadRequest)
				return
			}
		}

		span.SetAttributes(
			attribute.String("request.title", req.JobTitle),
			attribute.Int("request.limit", limit),
			attribute.String("operation", "manual_search"),
		)

		query := types.SearchQuery{
			JobTitle:   strings.TrimSpace(req.JobTitle),
			Location:   strings.TrimSpace(req.Location),
			Experience: strings.TrimSpace(req.Experience),
			Category:   strings.TrimSpace(req.Category),
		}

		result, err := s.orchestrator.SearchManual(ctx, query, limit)
		if err != nil {
			span.RecordError(err)
			om.RecordSearchCompleted(ctx, "manual", false)
			s.writeSearchFailure(w, span, err)
			return
		}

		om.RecordSearchCompleted(ctx, "manual", true)
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.listings", len(result.Listings)),
			attribute.Int("response.provider_errors", len(result.ProviderErrors)),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// writeSearchFailure maps orchestrator errors to HTTP status codes
// resumeMIMETypes lists the declared content types accepted for resume
// uploads: PDF plus the two Word document types.
var resumeMIMETypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/msword": true,
}

// allowedResumeMIME checks an upload part's declared content type against
// the accepted resume types. Media type parameters are ignored.
func allowedResumeMIME(declared string) bool {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
		declared = mediaType
	}
	return resumeMIMETypes[declared]
}

func (s *Server) writeSearchFailure(w http.ResponseWriter, span oteltrace.Span, err error) {
	var bizErr *types.BusinessError
	if errors.As(err, &bizErr) {
		switch bizErr.Kind {
		case types.TitleNotDetected:
			span.SetAttributes(attribute.String("error.type", "title_not_detected"))
			writeErrorResponse(w, "No job title detected", bizErr.Message, http.StatusUnprocessableEntity)
		case types.UnsupportedFormat:
			span.SetAttributes(attribute.String("error.type", "unsupported_format"))
			writeErrorResponse(w, "Unsupported resume format", bizErr.Message, http.StatusUnsupportedMediaType)
		default:
			span.SetAttributes(attribute.String("error.type", "business"))
			writeErrorResponse(w, "Search failed", bizErr.Message, http.StatusInternalServerError)
		}
		return
	}

	switch {
	case jobfinderErrors.IsErrorType(err, jobfinderErrors.ErrorTypeValidation):
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, "Invalid request", err.Error(), http.StatusBadRequest)
	case jobfinderErrors.IsErrorType(err, jobfinderErrors.ErrorTypeIO),
		jobfinderErrors.IsErrorType(err, jobfinderErrors.ErrorTypeExtraction):
		span.SetAttributes(attribute.String("error.type", "extraction"))
		writeErrorResponse(w, "Failed to read resume", err.Error(), http.StatusBadRequest)
	default:
		span.SetAttributes(attribute.String("error.type", "internal"))
		writeErrorResponse(w, "Search failed", err.Error(), http.StatusInternalServerError)
	}
}

// resolveLimit parses an optional limit form value, falling back to the
// configured default.
func (s *Server) resolveLimit(raw string) (int, error) {
	if raw == "" {
		return s.AppConfig.Search.DefaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("limit must be an integer: %q", raw)
	}
	return s.capLimit(n)
}

// capLimit rejects negative limits and clamps to the configured maximum.
func (s *Server) capLimit(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("limit must be non-negative")
	}
	if max := s.AppConfig.Search.MaxLimit; max > 0 && n > max {
		n = max
	}
	return n, nil
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		limited := originalMiddleware(next)
		return func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit rejections
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			limited(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				keyType := "ip"
				if s.RateLimit != nil && s.RateLimit.ByAPIKey && getRateLimitKey(r, true, false) != "" {
					keyType = "api_key"
				}
				om.RecordRateLimitHit(r.Context(), keyType)
			}
		}
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
