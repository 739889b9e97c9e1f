package lpsearch

import (
	"errors"
	"fmt"

	"github.com/lvpi/lpsearch/internal/domain"
)

// Sentinel errors returned by the SDK. Use errors.Is to match.
var (
	ErrInvalidSpec    = errors.New("lpsearch: invalid search spec")
	ErrInvalidRequest = errors.New("lpsearch: invalid request")
	ErrBackend        = errors.New("lpsearch: search backend error")
)

// BackendError carries the engine's HTTP status and reason.
type BackendError struct {
	Status int
	Reason string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", ErrBackend.Error(), e.Status, e.Reason)
}

func (e *BackendError) Unwrap() error { return ErrBackend }

// mapError converts internal errors into SDK errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var be *domain.BackendError
	switch {
	case errors.As(err, &be):
		return &BackendError{Status: be.Status, Reason: be.Reason}
	case errors.Is(err, domain.ErrInvalidRequest):
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	case errors.Is(err, domain.ErrSearchBackend):
		return fmt.Errorf("%w: %w", ErrBackend, err)
	default:
		return err
	}
}
