package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/lvpi/lpsearch/internal/domain"
	assistantuc "github.com/lvpi/lpsearch/internal/usecase/assistant"
	healthuc "github.com/lvpi/lpsearch/internal/usecase/health"
	savedsearchuc "github.com/lvpi/lpsearch/internal/usecase/savedsearch"
	searchuc "github.com/lvpi/lpsearch/internal/usecase/search"
)

// maxBodyBytes caps request bodies; forms are small.
const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the lpsearch HTTP API.
type Server struct {
	search        *searchuc.Service
	saved         *savedsearchuc.Service
	assistant     *assistantuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	validate      *validator.Validate
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. saved may be nil when no store is configured.
func NewServer(
	search *searchuc.Service,
	saved *savedsearchuc.Service,
	assistant *assistantuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:    search,
		saved:     saved,
		assistant: assistant,
		health:    health,
		logger:    logger,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	s.errorHandlers = []errorHandler{
		revisionConflictHandler,
		backendErrorHandler,
		invalidRequestHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, ErrorCodeAlreadyExists),
		sentinelHandler(domain.ErrSearchBackend, http.StatusBadGateway, ErrorCodeSearchBackendError),
		sentinelHandler(domain.ErrAssistantProvider, http.StatusBadGateway, ErrorCodeAssistantProviderError),
		sentinelHandler(domain.ErrAssistantDisabled, http.StatusNotImplemented, ErrorCodeNotImplemented),
		sentinelHandler(domain.ErrNotImplemented, http.StatusNotImplemented, ErrorCodeNotImplemented),
	}
	return s
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decodeBody reads a JSON body into dst and validates it. Writes the error response and
// returns false on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, validationMessage(err))
		return false
	}
	return true
}

// validationMessage renders the first field error without exposing Go type names.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return fe.Namespace() + " failed " + fe.Tag() + "=" + fe.Param()
		}
		return fe.Namespace() + " failed " + fe.Tag()
	}
	return "validation failed"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
