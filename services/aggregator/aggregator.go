package aggregator

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"sjsage522/eventscraper/internal/browser"
	"sjsage522/eventscraper/internal/crawler"
	"sjsage522/eventscraper/logger"
	scrapeerrors "sjsage522/eventscraper/pkg/errors"
	"sjsage522/eventscraper/services/metrics"
	"sjsage522/eventscraper/services/publisher"
)

const (
	// SetupFailedMessage is reported when no browser can be launched at all
	SetupFailedMessage = "WebDriver setup failed"

	// DefaultPublishTimeout bounds the feed publishing that follows a run
	DefaultPublishTimeout = 10 * time.Second
)

// Aggregator runs every source crawler and merges their events
type Aggregator struct {
	acquirer  browser.Acquirer
	crawlers  []crawler.Crawler
	publisher publisher.Publisher
	metrics   *metrics.Recorder
	log       *logger.Logger

	publishTimeout time.Duration
}

// Option customizes an Aggregator
type Option func(*Aggregator)

// WithPublisher fans finished runs out to an event feed
func WithPublisher(p publisher.Publisher) Option {
	return func(a *Aggregator) {
		a.publisher = p
	}
}

// WithPublishTimeout changes how long publishing may delay a finished run
func WithPublishTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.publishTimeout = d
		}
	}
}

// WithMetrics records per-source and per-run metrics
func WithMetrics(r *metrics.Recorder) Option {
	return func(a *Aggregator) {
		a.metrics = r
	}
}

// New creates an aggregator over crawlers, scraped in the given order
func New(acquirer browser.Acquirer, crawlers []crawler.Crawler, opts ...Option) *Aggregator {
	a := &Aggregator{
		acquirer: acquirer,
		crawlers: crawlers,
		log:      logger.ForComponent("aggregator"),

		publishTimeout: DefaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run scrapes every source sequentially, one fresh browser session each.
// A failing source contributes zero events; only a browser that cannot be
// resolved at all fails the whole run.
func (a *Aggregator) Run(ctx context.Context) crawler.ScrapeResult {
	start := time.Now()

	if err := a.acquirer.Preflight(); err != nil {
		a.log.Error().Err(err).Msg(SetupFailedMessage)
		a.metrics.ObserveRun(true, time.Since(start))
		return crawler.NewFailedScrapeResult(SetupFailedMessage, err)
	}

	var events []crawler.EventRecord
	for _, c := range a.crawlers {
		events = append(events, a.scrapeSource(ctx, c)...)
	}

	result := crawler.NewScrapeResult(events)
	elapsed := time.Since(start)
	a.metrics.ObserveRun(false, elapsed)
	a.log.Info().Int("events", result.TotalEvents).Dur("elapsed", elapsed).Msg("Scraping completed")

	a.publish(ctx, result.Events)
	return result
}

// scrapeSource runs one crawler on its own session and always closes it
func (a *Aggregator) scrapeSource(ctx context.Context, c crawler.Crawler) []crawler.EventRecord {
	provider := c.GetProvider()
	log := logger.ForCrawler(provider)
	start := time.Now()

	sess, err := a.acquirer.Acquire(ctx)
	if err != nil {
		err = withSource(err, provider)
		log.Error().Err(err).Msg("Could not start browser session, skipping source")
		a.metrics.ObserveSource(provider, 0, time.Since(start), err)
		return nil
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close browser session")
		}
	}()

	events, err := c.FetchEvents(ctx, sess)
	if err != nil {
		log.Error().Err(err).Str("crawler", c.GetName()).Msg("Source failed")
		events = nil
	}

	a.metrics.ObserveSource(provider, len(events), time.Since(start), err)
	return events
}

// publish sends every event to the feed in one batch under publishTimeout.
// Failures are logged and never change the result.
func (a *Aggregator) publish(ctx context.Context, events []crawler.EventRecord) {
	if a.publisher == nil || len(events) == 0 {
		return
	}

	messages := make([]publisher.Message, 0, len(events))
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			logger.LogError("publisher", err, "failed to encode event %s", event.URL)
			continue
		}
		messages = append(messages, publisher.Message{Source: event.Source, Data: data})
	}

	ctx, cancel := context.WithTimeout(ctx, a.publishTimeout)
	defer cancel()

	if err := a.publisher.PublishBatch(ctx, messages); err != nil {
		logger.LogError("publisher", err, "failed to publish %d events", len(messages))
		return
	}
	if err := a.publisher.TrimStreams(ctx); err != nil {
		logger.LogError("publisher", err, "failed to trim streams")
	}
	a.log.Debug().Int("published", len(messages)).Msg("Events published")
}

// withSource tags an acquisition error with the source it was meant for
func withSource(err error, source string) error {
	var scrapeErr *scrapeerrors.ScrapeError
	if !errors.As(err, &scrapeErr) {
		return scrapeerrors.NewSessionAcquisition(source, "could not start browser session", err)
	}
	if scrapeErr.Source == "" {
		scrapeErr.Source = source
	}
	return err
}
