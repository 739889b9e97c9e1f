package chi

import (
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/lvpi/lpsearch/internal/domain"
	"github.com/lvpi/lpsearch/internal/domain/search/spec"
)

// SearchParams are the query parameters of GET /search.
type SearchParams struct {
	Q         *string
	Page      *int
	Size      *int
	Highlight *bool
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if !s.decodeBody(w, r, &body) {
		return
	}
	s.runSearch(w, r, body)
}

// SearchByQuery handles GET /search, for shareable links.
func (s *Server) SearchByQuery(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	var body SearchRequest
	if params.Q != nil {
		body.Spec = []byte(*params.Q)
	}
	if params.Page != nil {
		body.Page = *params.Page
	}
	if params.Size != nil {
		body.Size = *params.Size
	}
	body.Highlight = params.Highlight
	s.runSearch(w, r, body)
}

func bindSearchParams(r *http.Request) (SearchParams, error) {
	var params SearchParams
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "q", query, &params.Q); err != nil {
		return SearchParams{}, fmt.Errorf("invalid format for parameter q: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &params.Page); err != nil {
		return SearchParams{}, fmt.Errorf("invalid format for parameter page: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "size", query, &params.Size); err != nil {
		return SearchParams{}, fmt.Errorf("invalid format for parameter size: %w", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "highlight", query, &params.Highlight); err != nil {
		return SearchParams{}, fmt.Errorf("invalid format for parameter highlight: %w", err)
	}
	return params, nil
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, body SearchRequest) {
	req, err := searchRequestFromBody(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	page, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(&page))
}

// Translate handles POST /search/translate.
func (s *Server) Translate(w http.ResponseWriter, r *http.Request) {
	var body TranslateRequest
	if !s.decodeBody(w, r, &body) {
		return
	}

	sp, err := spec.DecodeForm(body.Spec)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	q, err := s.search.Preview(sp)
	if err != nil {
		s.handleDomainError(w, fmt.Errorf("translate: %w", err))
		return
	}

	writeJSON(w, http.StatusOK, TranslateResponse{
		Kind:  string(sp.Kind()),
		Query: q,
	})
}

// requireSaved writes 501 when saved searches are not configured.
func (s *Server) requireSaved(w http.ResponseWriter) bool {
	if s.saved == nil {
		s.handleDomainError(w, fmt.Errorf("saved searches: %w", domain.ErrNotImplemented))
		return false
	}
	return true
}
