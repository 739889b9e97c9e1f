package chi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	savedsearchuc "github.com/lvpi/lpsearch/internal/usecase/savedsearch"
)

// ListSavedSearchesParams are the query parameters of GET /saved-searches.
type ListSavedSearchesParams struct {
	Keyword *string
	Subject *bool
}

// CreateSavedSearch handles POST /saved-searches.
func (s *Server) CreateSavedSearch(w http.ResponseWriter, r *http.Request) {
	if !s.requireSaved(w) {
		return
	}
	var req SavedSearchRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	saved, err := s.saved.Create(r.Context(), req.Title, req.Form, req.Subject)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("ETag", strconv.Quote(strconv.Itoa(saved.Revision())))
	writeJSON(w, http.StatusCreated, savedSearchToResponse(&saved))
}

// ListSavedSearches handles GET /saved-searches.
func (s *Server) ListSavedSearches(w http.ResponseWriter, r *http.Request) {
	if !s.requireSaved(w) {
		return
	}
	var params ListSavedSearchesParams
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "keyword", query, &params.Keyword); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid format for parameter keyword: "+err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "subject", query, &params.Subject); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid format for parameter subject: "+err.Error())
		return
	}

	f := savedsearchuc.ListFilter{Subject: params.Subject}
	if params.Keyword != nil {
		f.Keyword = *params.Keyword
	}

	list, err := s.saved.List(r.Context(), f)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]SavedSearchResponse, len(list))
	for i := range list {
		items[i] = savedSearchToResponse(&list[i])
	}
	writeJSON(w, http.StatusOK, SavedSearchListResponse{Items: items})
}

// GetSavedSearch handles GET /saved-searches/{id}.
func (s *Server) GetSavedSearch(w http.ResponseWriter, r *http.Request) {
	if !s.requireSaved(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	saved, err := s.saved.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("ETag", strconv.Quote(strconv.Itoa(saved.Revision())))
	writeJSON(w, http.StatusOK, savedSearchToResponse(&saved))
}

// UpdateSavedSearch handles PUT /saved-searches/{id}.
// If-Match carries the revision the client last saw.
func (s *Server) UpdateSavedSearch(w http.ResponseWriter, r *http.Request) {
	if !s.requireSaved(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	expected, err := parseIfMatch(r.Header.Get("If-Match"))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	var req SavedSearchRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	saved, err := s.saved.Update(r.Context(), id, req.Title, req.Form, req.Subject, expected)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("ETag", strconv.Quote(strconv.Itoa(saved.Revision())))
	writeJSON(w, http.StatusOK, savedSearchToResponse(&saved))
}

// DeleteSavedSearch handles DELETE /saved-searches/{id}.
func (s *Server) DeleteSavedSearch(w http.ResponseWriter, r *http.Request) {
	if !s.requireSaved(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.saved.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RunSavedSearch handles POST /saved-searches/{id}/run. The body is optional.
func (s *Server) RunSavedSearch(w http.ResponseWriter, r *http.Request) {
	if !s.requireSaved(w) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req RunRequest
	if !s.decodeOptionalBody(w, r, &req) {
		return
	}

	page, err := s.saved.Run(r.Context(), id, req.Page, req.Size)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pageToResponse(&page))
}

// decodeOptionalBody is decodeBody that accepts an empty body.
func (s *Server) decodeOptionalBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if strings.TrimSpace(string(body)) == "" {
		return true
	}
	r.Body = io.NopCloser(strings.NewReader(string(body)))
	return s.decodeBody(w, r, dst)
}

func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
		return "", false
	}
	return id, true
}

// parseIfMatch returns the revision in an If-Match header, or 0 when absent or "*".
func parseIfMatch(v string) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" || v == "*" {
		return 0, nil
	}
	v = strings.TrimPrefix(v, "W/")
	if unq, err := strconv.Unquote(v); err == nil {
		v = unq
	}
	rev, err := strconv.Atoi(v)
	if err != nil || rev <= 0 {
		return 0, errors.New("If-Match must be a quoted revision number")
	}
	return rev, nil
}
