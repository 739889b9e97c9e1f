package savedsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/lvpi/lpsearch/internal/domain"
	domsaved "github.com/lvpi/lpsearch/internal/domain/savedsearch"
	"github.com/lvpi/lpsearch/internal/domain/search/filter"
	"github.com/lvpi/lpsearch/internal/domain/search/request"
	"github.com/lvpi/lpsearch/internal/domain/search/result"
	"github.com/lvpi/lpsearch/internal/logger"
)

// ListFilter narrows List results. Zero value returns everything.
type ListFilter struct {
	// Keyword matches titles case-insensitively.
	Keyword string
	Subject *bool
}

// Service handles saved search CRUD and re-runs.
type Service struct {
	repo     Repository
	searcher Searcher
	newID    func() string
}

// New creates a saved search service.
func New(repo Repository, searcher Searcher) *Service {
	return &Service{repo: repo, searcher: searcher, newID: uuid.NewString}
}

// Create validates and stores a new saved search.
func (s *Service) Create(
	ctx context.Context, title string, form json.RawMessage, subject bool,
) (domsaved.SavedSearch, error) {
	saved, err := domsaved.New(s.newID(), title, form, subject)
	if err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("validate saved search: %w: %w", domain.ErrInvalidRequest, err)
	}
	if err := s.repo.Create(ctx, saved); err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("create saved search: %w", err)
	}
	return saved, nil
}

// Get retrieves a saved search by id.
func (s *Service) Get(ctx context.Context, id string) (domsaved.SavedSearch, error) {
	saved, err := s.repo.Get(ctx, id)
	if err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("get saved search: %w", err)
	}
	return saved, nil
}

// List returns saved searches matching f, most recently modified first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domsaved.SavedSearch, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list saved searches: %w", err)
	}
	keyword := strings.ToLower(strings.TrimSpace(f.Keyword))
	return lo.Filter(all, func(saved domsaved.SavedSearch, _ int) bool {
		if f.Subject != nil && saved.Subject() != *f.Subject {
			return false
		}
		return keyword == "" || strings.Contains(strings.ToLower(saved.Title()), keyword)
	}), nil
}

// Update replaces the content of a saved search.
// expectedRevision > 0 enables optimistic locking.
func (s *Service) Update(
	ctx context.Context, id, title string, form json.RawMessage, subject bool, expectedRevision int,
) (domsaved.SavedSearch, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("get saved search: %w", err)
	}
	if expectedRevision > 0 && current.Revision() != expectedRevision {
		return domsaved.SavedSearch{}, domain.NewRevisionConflict(current.Revision())
	}

	updated, err := current.Update(title, form, subject)
	if err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("validate saved search: %w: %w", domain.ErrInvalidRequest, err)
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("update saved search: %w", err)
	}
	return updated, nil
}

// Delete removes a saved search.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete saved search: %w", err)
	}
	return nil
}

// Run decodes the stored form and executes it.
func (s *Service) Run(ctx context.Context, id string, page, size int) (result.Page, error) {
	saved, err := s.repo.Get(ctx, id)
	if err != nil {
		return result.Page{}, fmt.Errorf("get saved search: %w", err)
	}
	sp, err := saved.Spec()
	if err != nil {
		return result.Page{}, fmt.Errorf("decode saved form: %w: %w", domain.ErrInvalidRequest, err)
	}
	req, err := request.New(sp, filter.Expression{}, page, size, true)
	if err != nil {
		return result.Page{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	res, err := s.searcher.Search(logger.With(ctx, zap.String("saved_search_id", id)), &req)
	if err != nil {
		return result.Page{}, fmt.Errorf("run saved search: %w", err)
	}
	return res, nil
}
