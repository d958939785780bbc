package crawler

import (
	"context"
	"fmt"
	"time"

	"sjsage522/eventscraper/internal/browser"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/mo"
)

// Provider names, also used as the record source tag
const (
	ProviderDevfolio = "Devfolio"
	ProviderDevpost  = "Devpost"
	ProviderUnstop   = "Unstop"
)

// EventRecord represents one scraped hackathon listing.
// Unknown values carry a sentinel string rather than being left empty.
type EventRecord struct {
	Source            string `json:"source"`
	URL               string `json:"url"`
	Title             string `json:"title"`
	StatusMode        string `json:"status_mode"`
	StatusLabel       string `json:"status_label,omitempty"`
	LocationMode      string `json:"location_mode"`
	PrizeInfo         string `json:"prize_info"`
	ParticipantsCount string `json:"participants_count"`
	HostName          string `json:"host_name"`
	Dates             string `json:"dates"`
	ThemesTags        string `json:"themes_tags"`
}

// Field names an EventRecord attribute that a FieldRule fills in
type Field string

const (
	FieldStatusMode        Field = "status_mode"
	FieldStatusLabel       Field = "status_label"
	FieldLocationMode      Field = "location_mode"
	FieldPrizeInfo         Field = "prize_info"
	FieldParticipantsCount Field = "participants_count"
	FieldHostName          Field = "host_name"
	FieldDates             Field = "dates"
	FieldThemesTags        Field = "themes_tags"
)

// Set assigns value to the attribute named by field
func (r *EventRecord) Set(field Field, value string) {
	switch field {
	case FieldStatusMode:
		r.StatusMode = value
	case FieldStatusLabel:
		r.StatusLabel = value
	case FieldLocationMode:
		r.LocationMode = value
	case FieldPrizeInfo:
		r.PrizeInfo = value
	case FieldParticipantsCount:
		r.ParticipantsCount = value
	case FieldHostName:
		r.HostName = value
	case FieldDates:
		r.Dates = value
	case FieldThemesTags:
		r.ThemesTags = value
	default:
		panic(fmt.Sprintf("unknown event field %q", field))
	}
}

// ScrapeResult is the outcome of one aggregation run
type ScrapeResult struct {
	Message     string        `json:"message,omitempty"`
	TotalEvents int           `json:"total_events"`
	Events      []EventRecord `json:"events"`
	Error       string        `json:"error,omitempty"`
	Details     string        `json:"details,omitempty"`
}

// NewScrapeResult packages the merged events of a completed run
func NewScrapeResult(events []EventRecord) ScrapeResult {
	if events == nil {
		events = []EventRecord{}
	}
	return ScrapeResult{
		Message:     fmt.Sprintf("Scraping completed. Found %d events.", len(events)),
		TotalEvents: len(events),
		Events:      events,
	}
}

// NewFailedScrapeResult describes a run that could not scrape anything
func NewFailedScrapeResult(message string, err error) ScrapeResult {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return ScrapeResult{
		Events:  []EventRecord{},
		Error:   message,
		Details: details,
	}
}

// Failed reports whether the run carries a fatal error instead of events
func (r ScrapeResult) Failed() bool {
	return r.Error != ""
}

// Crawler interface defines the contract for all source crawlers
type Crawler interface {
	// FetchEvents scrapes the source's listing page through sess.
	// A failed step yields no records and an error scoped to this source.
	FetchEvents(ctx context.Context, sess browser.Session) ([]EventRecord, error)

	// GetName returns the crawler's name for logging and identification
	GetName() string

	// GetProvider returns the provider name for the crawler
	GetProvider() string
}

// ElementHandler extracts one value from a selection; None means the value is not there
type ElementHandler func(*goquery.Selection) mo.Option[string]

// IdentifyFunc derives the dedup key and canonical link of a candidate node.
// An empty key means the node is not a listing and is skipped.
type IdentifyFunc func(node *goquery.Selection, baseURL string) (key string, link string, err error)

// ScopeFunc narrows a candidate node to the element its fields are read from.
// An empty selection means the node is skipped.
type ScopeFunc func(node *goquery.Selection) *goquery.Selection

// FieldRule declares how one record attribute is read from a listing
type FieldRule struct {
	Field Field
	// Selector is resolved inside the scope (or the node when OnNode is set).
	// An empty selector reads the scope itself.
	Selector string
	// Attr reads an attribute instead of the element text
	Attr string
	// All joins every non-empty match with ", " instead of reading the first match
	All    bool
	OnNode bool
	// Handler replaces the Selector/Attr lookup
	Handler ElementHandler
	// Fixed is used verbatim; the page is not consulted
	Fixed string
	// Default replaces the N/A sentinel when nothing was found
	Default string
}

// ScrollPolicy bounds the infinite-scroll loop
type ScrollPolicy struct {
	MaxAttempts int
	// StableThreshold is the number of consecutive unchanged page heights that ends the loop
	StableThreshold int
	// LoadMore is the selector of a "load more" control clicked when visible
	LoadMore string
}

// Timing holds the pauses and timeouts of one crawl
type Timing struct {
	ListingTimeout     time.Duration
	StabilityPause     time.Duration
	ScrollPause        time.Duration
	LoadMoreExtraPause time.Duration
}

// CrawlerConfig is the declarative description of one source
type CrawlerConfig struct {
	Provider    string
	BaseURL     string
	ListingPath string

	// WaitFor conditions are awaited in order before scrolling starts
	WaitFor []browser.WaitCondition
	// Listing selects the candidate listing nodes in the final snapshot
	Listing string
	// BlockMarkers are page text or title fragments of anti-bot interstitials
	BlockMarkers []string

	Scroll ScrollPolicy
	Timing Timing

	Identify IdentifyFunc
	Scope    ScopeFunc
	Title    FieldRule
	Fields   []FieldRule
	// Finalize derives composite fields once every rule has run
	Finalize func(*EventRecord)
}
