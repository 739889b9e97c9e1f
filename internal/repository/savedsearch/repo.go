package savedsearch

import (
	"context"
	"fmt"
	"sort"

	"github.com/lvpi/lpsearch/internal/domain"
	domsaved "github.com/lvpi/lpsearch/internal/domain/savedsearch"
)

// store is the consumer interface for saved searches (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo implements usecase/savedsearch.Repository.
type Repo struct {
	store store
}

// New creates a saved search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create stores a new saved search.
func (r *Repo) Create(ctx context.Context, s domsaved.SavedSearch) error {
	key := savedKey(s.ID())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrAlreadyExists
	}
	if err := r.store.HSet(ctx, key, toHash(s)); err != nil {
		return fmt.Errorf("hset saved search %s: %w", s.ID(), err)
	}
	return nil
}

// Get retrieves a saved search by id.
func (r *Repo) Get(ctx context.Context, id string) (domsaved.SavedSearch, error) {
	m, err := r.store.HGetAll(ctx, savedKey(id))
	if err != nil {
		return domsaved.SavedSearch{}, fmt.Errorf("hgetall saved search %s: %w", id, err)
	}
	if len(m) == 0 {
		return domsaved.SavedSearch{}, domain.ErrNotFound
	}
	return fromHash(m)
}

// List returns all saved searches, most recently modified first.
func (r *Repo) List(ctx context.Context) ([]domsaved.SavedSearch, error) {
	keys, err := r.store.Scan(ctx, savedKey("*"))
	if err != nil {
		return nil, fmt.Errorf("scan saved searches: %w", err)
	}
	if len(keys) == 0 {
		return []domsaved.SavedSearch{}, nil
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi saved searches: %w", err)
	}

	out := make([]domsaved.SavedSearch, 0, len(results))
	for i, m := range results {
		// Deleted between SCAN and HGETALL.
		if len(m) == 0 {
			continue
		}
		s, err := fromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse saved search %s: %w", keys[i], err)
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ModifiedAt() != out[j].ModifiedAt() {
			return out[i].ModifiedAt() > out[j].ModifiedAt()
		}
		return out[i].ID() < out[j].ID()
	})
	return out, nil
}

// Update overwrites an existing saved search.
func (r *Repo) Update(ctx context.Context, s domsaved.SavedSearch) error {
	key := savedKey(s.ID())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.store.HSet(ctx, key, toHash(s)); err != nil {
		return fmt.Errorf("hset saved search %s: %w", s.ID(), err)
	}
	return nil
}

// Delete removes a saved search.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := savedKey(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del saved search %s: %w", id, err)
	}
	return nil
}

// Key pattern: lpsearch:saved:{id}
func savedKey(id string) string {
	return fmt.Sprintf("%ssaved:%s", domain.KeyPrefix, id)
}
