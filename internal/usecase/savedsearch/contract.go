package savedsearch

import (
	"context"

	domsaved "github.com/lvpi/lpsearch/internal/domain/savedsearch"
	"github.com/lvpi/lpsearch/internal/domain/search/request"
	"github.com/lvpi/lpsearch/internal/domain/search/result"
)

// Repository defines the storage contract for saved searches.
type Repository interface {
	Create(ctx context.Context, s domsaved.SavedSearch) error
	Get(ctx context.Context, id string) (domsaved.SavedSearch, error)
	List(ctx context.Context) ([]domsaved.SavedSearch, error)
	Update(ctx context.Context, s domsaved.SavedSearch) error
	Delete(ctx context.Context, id string) error
}

// Searcher runs a search request.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (result.Page, error)
}
