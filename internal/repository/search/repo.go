package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/lvpi/lpsearch/internal/db"
	"github.com/lvpi/lpsearch/internal/domain"
	"github.com/lvpi/lpsearch/internal/domain/search/facet"
	"github.com/lvpi/lpsearch/internal/domain/search/query"
	"github.com/lvpi/lpsearch/internal/domain/search/request"
	"github.com/lvpi/lpsearch/internal/domain/search/result"
)

// Defaults for the books index.
const (
	DefaultIndex              = "books"
	DefaultHighlightSeparator = "@=||=@"
	DefaultMergeField         = "section_text"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Search(ctx context.Context, index string, body []byte) ([]byte, error)
}

// Settings shape the request body and response post-processing.
type Settings struct {
	Index               string
	ResultAttributes    []string
	HighlightAttributes []string
	Facets              facet.Catalog
	BucketSize          int
	// MergeField names the highlight field whose fragments are joined into one
	// with HighlightSeparator.
	MergeField         string
	HighlightSeparator string
}

// DefaultSettings returns the settings for the books index.
func DefaultSettings() Settings {
	catalog, _ := facet.NewCatalog(facet.Defaults())
	return Settings{
		Index:               DefaultIndex,
		ResultAttributes:    facet.DefaultResultAttributes(),
		HighlightAttributes: facet.DefaultHighlightAttributes(),
		Facets:              catalog,
		BucketSize:          facet.DefaultBucketSize,
		MergeField:          DefaultMergeField,
		HighlightSeparator:  DefaultHighlightSeparator,
	}
}

// Repo implements domain.SearchExecutor and prepares request bodies.
type Repo struct {
	store    store
	settings Settings
}

// Compile-time check: Repo implements domain.SearchExecutor.
var _ domain.SearchExecutor = (*Repo)(nil)

// New creates a search repository. Zero Index, BucketSize and HighlightSeparator take their defaults.
func New(s store, settings Settings) *Repo {
	d := DefaultSettings()
	if settings.Index == "" {
		settings.Index = d.Index
	}
	if settings.BucketSize <= 0 {
		settings.BucketSize = d.BucketSize
	}
	if settings.HighlightSeparator == "" {
		settings.HighlightSeparator = d.HighlightSeparator
	}
	return &Repo{store: s, settings: settings}
}

// Index returns the searched index name.
func (r *Repo) Index() string { return r.settings.Index }

// Prepare builds the engine request for a translated query.
func (r *Repo) Prepare(q query.Query, req request.Request) (domain.PreparedSearch, error) {
	body, err := r.buildBody(q, req)
	if err != nil {
		return domain.PreparedSearch{}, fmt.Errorf("build body: %w", err)
	}
	return domain.PreparedSearch{
		Index: r.settings.Index,
		Body:  body,
		Page:  req.Page(),
		Size:  req.Size(),
	}, nil
}

// Execute runs a prepared search and decodes the response.
func (r *Repo) Execute(ctx context.Context, ps domain.PreparedSearch) (result.Page, error) {
	data, err := r.store.Search(ctx, ps.Index, ps.Body)
	if err != nil {
		return result.Page{}, mapStoreError(ps.Index, err)
	}
	page, err := r.parseResponse(data, ps.Page, ps.Size)
	if err != nil {
		return result.Page{}, fmt.Errorf("parse response: %w", err)
	}
	return page, nil
}

func mapStoreError(index string, err error) error {
	var re *db.ResponseError
	switch {
	case errors.As(err, &re):
		return domain.NewBackendError(re.Status, re.Reason)
	case errors.Is(err, db.ErrIndexNotFound):
		return domain.NewBackendError(http.StatusNotFound, fmt.Sprintf("index %s not found", index))
	default:
		return fmt.Errorf("search %s: %w: %w", index, domain.ErrSearchBackend, err)
	}
}
