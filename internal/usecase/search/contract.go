package search

import (
	"github.com/lvpi/lpsearch/internal/domain"
	"github.com/lvpi/lpsearch/internal/domain/search/query"
	"github.com/lvpi/lpsearch/internal/domain/search/request"
	"github.com/lvpi/lpsearch/internal/domain/search/spec"
)

// Translator compiles a search spec into an engine query.
type Translator interface {
	Translate(s spec.Spec) query.Query
}

// Preparer builds the engine request for a translated query.
type Preparer interface {
	Prepare(q query.Query, req request.Request) (domain.PreparedSearch, error)
}

// Executor runs prepared searches (the repository, optionally behind the cache).
type Executor = domain.SearchExecutor
