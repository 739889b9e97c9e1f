package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lvpi/lpsearch/internal/domain"
	domsaved "github.com/lvpi/lpsearch/internal/domain/savedsearch"
	"github.com/lvpi/lpsearch/internal/domain/search/result"
	"github.com/lvpi/lpsearch/internal/domain/search/translate"
	searchrepo "github.com/lvpi/lpsearch/internal/repository/search"
	assistantuc "github.com/lvpi/lpsearch/internal/usecase/assistant"
	healthuc "github.com/lvpi/lpsearch/internal/usecase/health"
	savedsearchuc "github.com/lvpi/lpsearch/internal/usecase/savedsearch"
	searchuc "github.com/lvpi/lpsearch/internal/usecase/search"
)

// --- mockExecutor ---

type mockExecutor struct {
	mu   sync.Mutex
	last domain.PreparedSearch
	page result.Page
	err  error
}

func (m *mockExecutor) Execute(_ context.Context, ps domain.PreparedSearch) (result.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = ps
	if m.err != nil {
		return result.Page{}, m.err
	}
	return m.page, nil
}

// --- memSavedRepo ---

type memSavedRepo struct {
	mu    sync.Mutex
	items map[string]domsaved.SavedSearch
}

func newMemSavedRepo() *memSavedRepo {
	return &memSavedRepo{items: make(map[string]domsaved.SavedSearch)}
}

func (m *memSavedRepo) Create(_ context.Context, s domsaved.SavedSearch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[s.ID()]; ok {
		return domain.ErrAlreadyExists
	}
	m.items[s.ID()] = s
	return nil
}

func (m *memSavedRepo) Get(_ context.Context, id string) (domsaved.SavedSearch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[id]
	if !ok {
		return domsaved.SavedSearch{}, domain.ErrNotFound
	}
	return s, nil
}

func (m *memSavedRepo) List(_ context.Context) ([]domsaved.SavedSearch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domsaved.SavedSearch, 0, len(m.items))
	for _, s := range m.items {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (m *memSavedRepo) Update(_ context.Context, s domsaved.SavedSearch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[s.ID()]; !ok {
		return domain.ErrNotFound
	}
	m.items[s.ID()] = s
	return nil
}

func (m *memSavedRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// --- mockProvider ---

type mockProvider struct {
	deltas []string
	err    error
	// errAfter fails the stream after this many deltas when err is set.
	errAfter  int
	last      domain.ChatCompletion
	healthErr error
}

func (m *mockProvider) HealthCheck(_ context.Context) error { return m.healthErr }

func (m *mockProvider) Stream(_ context.Context, req domain.ChatCompletion, emit func(string) error) error {
	m.last = req
	for i, d := range m.deltas {
		if m.err != nil && i == m.errAfter {
			return m.err
		}
		if err := emit(d); err != nil {
			return err
		}
	}
	return m.err
}

// --- mockPinger ---

type mockPinger struct{ err error }

func (m *mockPinger) Ping(context.Context) error { return m.err }

// --- test harness ---

type testEnv struct {
	handler  http.Handler
	exec     *mockExecutor
	saved    *memSavedRepo
	provider *mockProvider
	engine   *mockPinger
}

type envOption func(*envConfig)

type envConfig struct {
	noSaved     bool
	noAssistant bool
}

func withoutSaved() envOption     { return func(c *envConfig) { c.noSaved = true } }
func withoutAssistant() envOption { return func(c *envConfig) { c.noAssistant = true } }

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	var cfg envConfig
	for _, o := range opts {
		o(&cfg)
	}

	env := &testEnv{
		exec:     &mockExecutor{page: samplePage()},
		saved:    newMemSavedRepo(),
		provider: &mockProvider{deltas: []string{"Hel", "lo"}},
		engine:   &mockPinger{},
	}

	repo := searchrepo.New(nil, searchrepo.DefaultSettings())
	searchSvc := searchuc.New(translate.New(translate.DefaultConfig()), repo, env.exec)

	var savedSvc *savedsearchuc.Service
	if !cfg.noSaved {
		savedSvc = savedsearchuc.New(env.saved, searchSvc)
	}

	providers := map[string]assistantuc.Provider{}
	if !cfg.noAssistant {
		providers["deepseek"] = env.provider
	}
	assistantSvc := assistantuc.New(assistantuc.Config{
		Models: []assistantuc.Model{
			{Name: "deepseek-chat", Provider: "deepseek", Label: "DeepSeek V3"},
			{Name: "deepseek-reasoner", Provider: "deepseek"},
		},
		SystemPrompt: "You are a librarian.",
		MaxTokens:    512,
	}, providers)

	var assistantChecker healthuc.AssistantChecker
	if assistantSvc.Enabled() {
		assistantChecker = assistantSvc
	}
	healthSvc := healthuc.New(env.engine, nil, assistantChecker)

	srv := NewServer(searchSvc, savedSvc, assistantSvc, healthSvc, zap.NewNop())
	r := chi.NewRouter()
	srv.Mount(r)
	env.handler = r
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func samplePage() result.Page {
	hits := []result.Hit{
		result.NewHit("s-1", 3.5, []byte(`{"book_title":"合同法"}`), map[string][]string{
			"section_text": {"<em>合同</em>"},
		}),
	}
	facets := []result.Facet{
		result.NewFacet("publisher", []result.Bucket{{Value: "法律出版社", Count: 30}}),
	}
	return result.NewPage(42, 7, 1, 8, hits, facets)
}
