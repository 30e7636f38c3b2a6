package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/continuum/internal/domain"
	"github.com/pbaille/continuum/internal/insight"
	"github.com/pbaille/continuum/internal/journal"
	"github.com/pbaille/continuum/internal/logging"
	"github.com/pbaille/continuum/internal/metrics"
	"github.com/pbaille/continuum/internal/sentiment"
	"github.com/pbaille/continuum/internal/store"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	m := metrics.New()
	gen := insight.NewGenerator(
		insight.NewAnalyzer(insight.DefaultRules(), sentiment.New(sentiment.DefaultLexicon)),
		insight.WithLatency(time.Millisecond),
	)
	j := journal.New(store.NewRecordStore(store.NewMemory()),
		journal.WithGenerator(gen),
		journal.WithMetrics(m),
	)
	return New(j, m, logging.NewNop(), ":0").Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func draft(title string) map[string]interface{} {
	return map[string]interface{}{
		"title":         title,
		"intent":        "pick a laptop",
		"constraints":   "tight budget",
		"finalDecision": "buy the cheaper one",
		"reasoning":     "good enough for my work",
		"tags":          []string{"gear"},
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestDecisionLifecycle(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/decisions", draft("Laptop"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Laptop", created.Title)
	assert.Equal(t, domain.DefaultEmotionalState, created.EmotionalState)
	assert.Contains(t, created.Tags, "gear")
	assert.Contains(t, created.Tags, "financial")

	path := fmt.Sprintf("/decisions/%d", created.ID)
	rec = do(t, h, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPatch, path, map[string]interface{}{"title": "Laptop v2", "emotionalState": 12})
	require.Equal(t, http.StatusOK, rec.Code)
	var edited domain.Decision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &edited))
	assert.Equal(t, "Laptop v2", edited.Title)
	assert.Equal(t, domain.MaxEmotionalState, edited.EmotionalState)

	rec = do(t, h, http.MethodGet, path+"/review", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCaptureRejectsIncompleteDraft(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/decisions", map[string]string{"title": "only a title"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/decisions", bytes.NewBufferString("{not json"))
	raw := httptest.NewRecorder()
	h.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestListDecisions(t *testing.T) {
	h := newTestServer(t)
	for _, title := range []string{"Alpha", "Beta", "Gamma"} {
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/decisions", draft(title)).Code)
	}

	rec := do(t, h, http.MethodGet, "/decisions?q=beta&tag=GEAR&timeframe=week", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []domain.Decision `json:"items"`
		Total int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Beta", page.Items[0].Title)

	rec = do(t, h, http.MethodGet, "/decisions?per_page=2&page=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 1)

	rec = do(t, h, http.MethodGet, "/decisions?timeframe=decade", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/decisions?page=1844674407370955163", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page.Items = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.Total)
}

func TestInsightsEndpoint(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/decisions", draft("Laptop")).Code)

	rec := do(t, h, http.MethodGet, "/insights/improvements", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Kind     string           `json:"kind"`
		Insights []domain.Insight `json:"insights"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "improvements", body.Kind)
	assert.NotEmpty(t, body.Insights)

	rec = do(t, h, http.MethodGet, "/insights/astrology", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatsAndTags(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/decisions", draft("Laptop")).Code)

	rec := do(t, h, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var overview journal.Overview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
	assert.Equal(t, 1, overview.Statistics.Total)
	assert.Equal(t, 1, overview.Statistics.Financial)
	assert.Len(t, overview.Monthly, 6)

	rec = do(t, h, http.MethodGet, "/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"gear"`)
}

func TestExportImport(t *testing.T) {
	src := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, src, http.MethodPost, "/decisions", draft("Laptop")).Code)

	rec := do(t, src, http.MethodGet, "/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "continuum-decisions-")
	exported := rec.Body.Bytes()

	dst := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/import", bytes.NewReader(exported))
	imp := httptest.NewRecorder()
	dst.ServeHTTP(imp, req)
	require.Equal(t, http.StatusOK, imp.Code)
	assert.JSONEq(t, `{"added":1}`, imp.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/import", bytes.NewBufferString(`{"not":"a list"}`))
	bad := httptest.NewRecorder()
	dst.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/decisions", draft("Laptop")).Code)

	rec := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "continuum_")
}
