package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/lvpi/lpsearch/internal/domain"
)

const simpleForm = `{"searchType":1,"queryData":{"matchType":1,"onlyTitle":false,"queryText":"合同法"}}`

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestSearch_OK(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(jsonRequest(http.MethodPost, "/api/v1/search",
		`{"spec":`+simpleForm+`,"page":2,"size":10,
		  "refinements":{"publisher":["法律出版社"],"category":["法学"]},
		  "ranges":{"publication_year":{"gte":1990}}}`))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp PageResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, int64(42), resp.Total)
	assert.Equal(t, int64(7), resp.TookMS)
	require.Len(t, resp.Hits, 1)
	assert.Equal(t, "s-1", resp.Hits[0].ID)
	assert.Equal(t, []string{"<em>合同</em>"}, resp.Hits[0].Highlight["section_text"])
	require.Len(t, resp.Facets, 1)
	assert.Equal(t, int64(30), resp.Facets[0].Buckets[0].Count)

	body := string(env.exec.last.Body)
	assert.Equal(t, int64(10), gjson.Get(body, "from").Int())
	assert.Equal(t, int64(10), gjson.Get(body, "size").Int())
	assert.Equal(t, "法学", gjson.Get(body, "query.bool.filter.0.terms.category.0").String())
	assert.Equal(t, "法律出版社", gjson.Get(body, "query.bool.filter.1.terms.publisher.0").String())
	assert.Equal(t, 1990.0, gjson.Get(body, "query.bool.filter.2.range.publication_year.gte").Float())
	assert.True(t, gjson.Get(body, "highlight").Exists())
}

func TestSearch_EmptySpecMatchesAll(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(jsonRequest(http.MethodPost, "/api/v1/search", `{"highlight":false}`))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := string(env.exec.last.Body)
	assert.True(t, gjson.Get(body, "query.bool.must.0.match_all").Exists())
	assert.False(t, gjson.Get(body, "highlight").Exists())
}

func TestSearch_NullSpecMatchesAll(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(jsonRequest(http.MethodPost, "/api/v1/search", `{"spec":null}`))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, gjson.Get(string(env.exec.last.Body), "query.bool.must.0.match_all").Exists())
}

func TestSearch_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode ErrorCode
	}{
		{"malformed json", `{"spec":`, ErrorCodeBadRequest},
		{"negative page", `{"page":-1}`, ErrorCodeValidationFailed},
		{"unknown search type", `{"spec":{"searchType":9}}`, ErrorCodeValidationFailed},
		{"empty refinement", `{"refinements":{"publisher":[]}}`, ErrorCodeValidationFailed},
		{"inverted range", `{"ranges":{"publication_year":{"gte":2000,"lte":1990}}}`, ErrorCodeValidationFailed},
		{"unknown facet", `{"refinements":{"isbn":["x"]}}`, ErrorCodeValidationFailed},
		{"past result window", `{"page":200,"size":100}`, ErrorCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rr := env.do(jsonRequest(http.MethodPost, "/api/v1/search", tt.body))
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantCode, decodeError(t, rr).Code)
		})
	}
}

func TestSearch_BackendErrors(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			"engine rejects query",
			domain.NewBackendError(http.StatusBadRequest, "failed to create query"),
			http.StatusBadRequest,
			"failed to create query",
		},
		{
			"engine unavailable",
			domain.NewBackendError(http.StatusServiceUnavailable, "all shards failed"),
			http.StatusBadGateway,
			"search backend error",
		},
		{
			"transport failure",
			fmt.Errorf("search books: %w: %w", domain.ErrSearchBackend, errors.New("connection refused")),
			http.StatusBadGateway,
			"search backend error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.exec.err = tt.err

			rr := env.do(jsonRequest(http.MethodPost, "/api/v1/search", `{"spec":`+simpleForm+`}`))

			require.Equal(t, tt.wantStatus, rr.Code)
			resp := decodeError(t, rr)
			assert.Equal(t, ErrorCodeSearchBackendError, resp.Code)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestSearch_InternalErrorHidesDetail(t *testing.T) {
	env := newTestEnv(t)
	env.exec.err = errors.New("secret detail")

	rr := env.do(jsonRequest(http.MethodPost, "/api/v1/search", `{}`))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, ErrorCodeInternalError, resp.Code)
	assert.NotContains(t, resp.Message, "secret")
}

func TestSearchByQuery(t *testing.T) {
	env := newTestEnv(t)
	q := url.Values{}
	q.Set("q", simpleForm)
	q.Set("page", "3")
	q.Set("size", "5")

	rr := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/search?"+q.Encode(), http.NoBody))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 3, env.exec.last.Page)
	assert.Equal(t, 5, env.exec.last.Size)
	assert.Contains(t, string(env.exec.last.Body), "match_phrase")
}

func TestSearchByQuery_BadParam(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/search?page=two", http.NoBody))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, ErrorCodeBadRequest, decodeError(t, rr).Code)
}

func TestTranslate(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(jsonRequest(http.MethodPost, "/api/v1/search/translate", `{"spec":`+simpleForm+`}`))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp TranslateResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "simple", resp.Kind)
	assert.JSONEq(t, `{"bool":{"should":[
		{"match_phrase":{"book_title":{"query":"合同法","slop":0}}},
		{"match_phrase":{"section_text":{"query":"合同法","slop":0}}}
	],"minimum_should_match":1}}`, string(resp.Query))
}

func TestTranslate_RawPassthrough(t *testing.T) {
	env := newTestEnv(t)
	raw, err := json.Marshal(`{"term":{"isbn":"978"}}`)
	require.NoError(t, err)

	rr := env.do(jsonRequest(http.MethodPost, "/api/v1/search/translate",
		`{"spec":{"searchType":2,"query":`+string(raw)+`}}`))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp TranslateResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "raw", resp.Kind)
	assert.JSONEq(t, `{"term":{"isbn":"978"}}`, string(resp.Query))
}

func TestTranslate_MissingSlop(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(jsonRequest(http.MethodPost, "/api/v1/search/translate",
		`{"spec":{"searchType":2,"logic":"and","condition":[
			{"range":"content","include":"contain","keywordRange":"sentence","text":"合同"}]}}`))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeError(t, rr)
	assert.Equal(t, ErrorCodeValidationFailed, resp.Code)
	assert.Contains(t, resp.Message, "slop")
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", gjson.Get(rr.Body.String(), "checks.elasticsearch").String())

	env.engine.err = errors.New("down")
	rr = env.do(httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "degraded", gjson.Get(rr.Body.String(), "status").String())
}

func TestHealthCheck_Assistant(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", gjson.Get(rr.Body.String(), "checks.assistant").String())

	env.provider.healthErr = errors.New("invalid api key")
	rr = env.do(httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "error", gjson.Get(rr.Body.String(), "checks.assistant").String())
	assert.Equal(t, "ok", gjson.Get(rr.Body.String(), "checks.elasticsearch").String())
}

func TestHealthCheck_AssistantNotConfigured(t *testing.T) {
	env := newTestEnv(t, withoutAssistant())

	rr := env.do(httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, gjson.Get(rr.Body.String(), "checks.assistant").Exists())
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/nope", http.NoBody))

	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, ErrorCodeNotFound, decodeError(t, rr).Code)
}

func TestSafeDomainMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("get: %w", domain.ErrNotFound), "not found"},
		{domain.NewRevisionConflict(3), "revision conflict"},
		{domain.NewBackendError(500, "boom"), "search backend error"},
		{errors.New("disk on fire"), "internal error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeDomainMessage(tt.err))
	}
}
