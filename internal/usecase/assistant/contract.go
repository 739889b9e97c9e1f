package assistant

import (
	"context"

	"github.com/lvpi/lpsearch/internal/domain"
)

// Provider streams completions from one LLM API.
type Provider interface {
	Stream(ctx context.Context, req domain.ChatCompletion, emit func(delta string) error) error
}

// HealthChecker is implemented by providers that can verify API availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
