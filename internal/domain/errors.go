package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidRequest signals a request that failed domain validation.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrSearchBackend signals a failure reported by the search engine.
	ErrSearchBackend = errors.New("search backend error")
	// ErrAssistantProvider signals an LLM provider failure.
	ErrAssistantProvider = errors.New("assistant provider error")
	// ErrAssistantDisabled signals that no assistant provider is configured.
	ErrAssistantDisabled = errors.New("assistant not configured")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")

	// ErrRevisionConflict signals an optimistic locking conflict.
	ErrRevisionConflict = errors.New("revision conflict")
)

// KeyPrefix namespaces every key this service writes to Redis/Valkey.
const KeyPrefix = "lpsearch:"

// RevisionConflictError wraps ErrRevisionConflict with the current resource revision.
type RevisionConflictError struct {
	CurrentRevision int
}

func (e *RevisionConflictError) Error() string {
	return fmt.Sprintf("%s: current revision is %d", ErrRevisionConflict.Error(), e.CurrentRevision)
}

func (e *RevisionConflictError) Unwrap() error { return ErrRevisionConflict }

// NewRevisionConflict creates a revision conflict error.
func NewRevisionConflict(currentRevision int) error {
	return &RevisionConflictError{CurrentRevision: currentRevision}
}

// BackendError wraps ErrSearchBackend with the engine's HTTP status and reason.
type BackendError struct {
	Status int
	Reason string
}

func (e *BackendError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: status %d", ErrSearchBackend.Error(), e.Status)
	}
	return fmt.Sprintf("%s: status %d: %s", ErrSearchBackend.Error(), e.Status, e.Reason)
}

func (e *BackendError) Unwrap() error { return ErrSearchBackend }

// NewBackendError creates a search backend error.
func NewBackendError(status int, reason string) error {
	return &BackendError{Status: status, Reason: reason}
}
