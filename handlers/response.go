package handlers

import "sjsage522/eventscraper/internal/crawler"

// ErrorResponse is the body of a request that failed unexpectedly
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ScrapeErrorResponse is the body of a scrape that could not run; events is always an empty list
type ScrapeErrorResponse struct {
	Error   string                `json:"error"`
	Details string                `json:"details"`
	Events  []crawler.EventRecord `json:"events"`
}

// HealthResponse is the body of the health check
type HealthResponse struct {
	Status string `json:"status"`
}
