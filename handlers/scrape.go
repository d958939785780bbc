package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"sjsage522/eventscraper/internal/crawler"
	"sjsage522/eventscraper/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// WelcomeMessage is served on the root path
	WelcomeMessage = "Welcome to the Hackathon Scraper API!"
	// InternalErrorMessage is reported when a request panics
	InternalErrorMessage = "An internal server error occurred while calling the scraper."

	maxDetailsLength = 200
)

// Runner performs one aggregation run
type Runner interface {
	Run(ctx context.Context) crawler.ScrapeResult
}

// ScrapeHandler serves the scrape endpoint
type ScrapeHandler struct {
	runner Runner
}

// NewScrapeHandler creates a handler backed by runner
func NewScrapeHandler(runner Runner) *ScrapeHandler {
	return &ScrapeHandler{runner: runner}
}

// Scrape runs a full aggregation and returns the merged events.
// The run is detached from the client connection, so it finishes even if the client goes away.
func (h *ScrapeHandler) Scrape(c *gin.Context) {
	log := logger.ForComponent("http")
	log.Info().Str("client", c.ClientIP()).Msg("Received /scrape request")

	result := h.runner.Run(context.WithoutCancel(c.Request.Context()))
	if result.Failed() {
		log.Error().Str("error", result.Error).Str("details", result.Details).Msg("Scrape could not run")
		c.JSON(http.StatusInternalServerError, ScrapeErrorResponse{
			Error:   result.Error,
			Details: result.Details,
			Events:  []crawler.EventRecord{},
		})
		return
	}

	log.Info().Int("events", result.TotalEvents).Msg("Scrape finished")
	c.JSON(http.StatusOK, result)
}

// Welcome greets API users
func Welcome(c *gin.Context) {
	c.String(http.StatusOK, WelcomeMessage)
}

// Health reports that the server is up
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
}

// recoverScrape turns a panic into a generic 500 response
func recoverScrape(c *gin.Context, recovered any) {
	details := truncate(fmt.Sprint(recovered), maxDetailsLength)
	logger.ForComponent("http").Error().
		Str("path", c.Request.URL.Path).
		Str("panic", details).
		Msg("Request panicked")

	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error:   InternalErrorMessage,
		Details: details,
	})
}

// truncate shortens s to at most n bytes without splitting a character
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// requestLogger logs every request through zerolog
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.ForComponent("http").Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Request handled")
	}
}

// NewRouter wires the API routes; gatherer backs the /metrics endpoint
func NewRouter(runner Runner, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(), gin.CustomRecovery(recoverScrape))

	r.GET("/", Welcome)
	r.GET("/health", Health)
	r.GET("/scrape", NewScrapeHandler(runner).Scrape)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}
