package domain

import (
	"context"

	"github.com/lvpi/lpsearch/internal/domain/search/result"
)

// PreparedSearch is an engine request ready to execute.
type PreparedSearch struct {
	Index string
	Body  []byte
	Page  int
	Size  int
}

// SearchExecutor runs prepared searches against the engine.
type SearchExecutor interface {
	Execute(ctx context.Context, ps PreparedSearch) (result.Page, error)
}
