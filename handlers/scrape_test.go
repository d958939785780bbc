package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"sjsage522/eventscraper/internal/crawler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRunner returns a canned result
type MockRunner struct {
	result   crawler.ScrapeResult
	panicMsg string
	ctx      context.Context
}

func (m *MockRunner) Run(ctx context.Context) crawler.ScrapeResult {
	m.ctx = ctx
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	return m.result
}

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, runner Runner, path string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(runner, prometheus.NewRegistry())
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWelcome(t *testing.T) {
	rec := serve(t, &MockRunner{}, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, WelcomeMessage, rec.Body.String())
}

func TestHealth(t *testing.T) {
	rec := serve(t, &MockRunner{}, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestScrapeSuccess(t *testing.T) {
	runner := &MockRunner{result: crawler.NewScrapeResult([]crawler.EventRecord{
		{Source: crawler.ProviderDevfolio, URL: "https://devfolio.co/hackathons/a", Title: "A"},
		{Source: crawler.ProviderDevpost, URL: "https://b.devpost.com/", Title: "B", StatusLabel: "Open"},
	})}

	rec := serve(t, runner, "/scrape")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Scraping completed. Found 2 events.", body["message"])
	assert.Equal(t, 2.0, body["total_events"])
	assert.Len(t, body["events"], 2)
	assert.NotContains(t, body, "error")

	events := body["events"].([]any)
	assert.NotContains(t, events[0], "status_label")
	assert.Equal(t, "Open", events[1].(map[string]any)["status_label"])
}

func TestScrapeDetachesFromClient(t *testing.T) {
	runner := &MockRunner{result: crawler.NewScrapeResult(nil)}
	router := NewRouter(runner, prometheus.NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/scrape", nil).WithContext(ctx)
	cancel()
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, runner.ctx)
	assert.NoError(t, runner.ctx.Err(), "a gone client does not cancel the run")
}

func TestScrapeSetupFailure(t *testing.T) {
	runner := &MockRunner{result: crawler.NewScrapeResult(nil)}
	runner.result = crawler.ScrapeResult{
		Events:  []crawler.EventRecord{},
		Error:   "WebDriver setup failed",
		Details: "[driver_configuration] no browser found",
	}

	rec := serve(t, runner, "/scrape")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{
		"error": "WebDriver setup failed",
		"details": "[driver_configuration] no browser found",
		"events": []
	}`, rec.Body.String())
}

func TestScrapePanic(t *testing.T) {
	runner := &MockRunner{panicMsg: "nil pointer dereference " + strings.Repeat("x", 500)}

	rec := serve(t, runner, "/scrape")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, InternalErrorMessage, body.Error)
	assert.True(t, strings.HasPrefix(body.Details, "nil pointer dereference"))
	assert.Len(t, body.Details, maxDetailsLength)
}

func TestScrapePanicKeepsCharactersWhole(t *testing.T) {
	runner := &MockRunner{panicMsg: strings.Repeat("a", maxDetailsLength-1) + "é and more"}

	rec := serve(t, runner, "/scrape")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, strings.Repeat("a", maxDetailsLength-1), body.Details)
	assert.True(t, utf8.ValidString(body.Details))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "héll", truncate("héllo", 5))
	assert.Equal(t, "h", truncate("hé", 2))
	assert.Equal(t, "", truncate("é", 1))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_requests_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	router := NewRouter(&MockRunner{}, reg)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_requests_total 1")
}
