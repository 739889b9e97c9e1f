package chi

import (
	"encoding/json"
	"time"
)

// ErrorCode is the machine-readable error identifier returned to clients.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeValidationFailed       ErrorCode = "validation_failed"
	ErrorCodeNotFound               ErrorCode = "not_found"
	ErrorCodeAlreadyExists          ErrorCode = "already_exists"
	ErrorCodeRevisionConflict       ErrorCode = "revision_conflict"
	ErrorCodeSearchBackendError     ErrorCode = "search_backend_error"
	ErrorCodeAssistantProviderError ErrorCode = "assistant_provider_error"
	ErrorCodeNotImplemented         ErrorCode = "not_implemented"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RangeRefinement bounds a numeric facet attribute.
type RangeRefinement struct {
	GTE *float64 `json:"gte,omitempty"`
	LTE *float64 `json:"lte,omitempty"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Spec        json.RawMessage            `json:"spec"`
	Page        int                        `json:"page" validate:"min=0"`
	Size        int                        `json:"size" validate:"min=0"`
	Refinements map[string][]string        `json:"refinements"`
	Ranges      map[string]RangeRefinement `json:"ranges"`
	Highlight   *bool                      `json:"highlight"`
}

// TranslateRequest is the body of POST /search/translate.
type TranslateRequest struct {
	Spec json.RawMessage `json:"spec"`
}

// TranslateResponse carries the compiled engine query.
type TranslateResponse struct {
	Kind  string          `json:"kind"`
	Query json.RawMessage `json:"query"`
}

// HitResponse is one search hit.
type HitResponse struct {
	ID        string              `json:"id"`
	Score     float64             `json:"score"`
	Source    json.RawMessage     `json:"source,omitempty"`
	Highlight map[string][]string `json:"highlight,omitempty"`
}

// BucketResponse is one facet value with its document count.
type BucketResponse struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// FacetResponse is the distribution of one facet attribute.
type FacetResponse struct {
	Attribute string           `json:"attribute"`
	Buckets   []BucketResponse `json:"buckets"`
}

// PageResponse is one page of search results.
type PageResponse struct {
	Total  int64           `json:"total"`
	TookMS int64           `json:"took_ms"`
	Page   int             `json:"page"`
	Size   int             `json:"size"`
	Pages  int             `json:"pages"`
	Hits   []HitResponse   `json:"hits"`
	Facets []FacetResponse `json:"facets"`
}

// SavedSearchRequest is the body of POST and PUT /saved-searches.
type SavedSearchRequest struct {
	Title   string          `json:"title" validate:"required,max=128"`
	Form    json.RawMessage `json:"form" validate:"required"`
	Subject bool            `json:"subject"`
}

// SavedSearchResponse is a stored search.
type SavedSearchResponse struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Form       json.RawMessage `json:"form"`
	Subject    bool            `json:"subject"`
	CreatedAt  time.Time       `json:"created_at"`
	ModifiedAt time.Time       `json:"modified_at"`
	Revision   int             `json:"revision"`
}

// SavedSearchListResponse wraps List results.
type SavedSearchListResponse struct {
	Items []SavedSearchResponse `json:"items"`
}

// RunRequest is the optional body of POST /saved-searches/{id}/run.
type RunRequest struct {
	Page int `json:"page" validate:"min=0"`
	Size int `json:"size" validate:"min=0"`
}

// ChatMessageRequest is one conversation turn.
type ChatMessageRequest struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /assistant/completions.
type ChatRequest struct {
	Model       string               `json:"model"`
	Messages    []ChatMessageRequest `json:"messages" validate:"required,min=1,dive"`
	Temperature *float32             `json:"temperature" validate:"omitempty,min=0,max=2"`
}

// ChatChunk is one SSE data payload, shaped like an OpenAI stream chunk.
type ChatChunk struct {
	Choices []ChatChunkChoice `json:"choices"`
}

// ChatChunkChoice carries one delta.
type ChatChunkChoice struct {
	Delta ChatDelta `json:"delta"`
}

// ChatDelta is the streamed content fragment.
type ChatDelta struct {
	Content string `json:"content"`
}

// ModelResponse describes a servable assistant model.
type ModelResponse struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// ModelListResponse wraps the assistant models.
type ModelListResponse struct {
	Default string          `json:"default"`
	Items   []ModelResponse `json:"items"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
