package internal

import (
	"context"
	"time"

	"sjsage522/eventscraper/config"
	"sjsage522/eventscraper/internal/browser"
	"sjsage522/eventscraper/internal/crawler"
	"sjsage522/eventscraper/logger"
	"sjsage522/eventscraper/services/aggregator"
	"sjsage522/eventscraper/services/metrics"
	"sjsage522/eventscraper/services/publisher"

	"github.com/prometheus/client_golang/prometheus"
)

// Dependencies holds all service dependencies
type Dependencies struct {
	Browser   *browser.Manager
	Crawlers  []crawler.Crawler
	Publisher publisher.Publisher
	Registry  *prometheus.Registry
	Metrics   *metrics.Recorder

	publishTimeout time.Duration
}

// BrowserOptions derives the immutable browser configuration from cfg
func BrowserOptions(cfg *config.Config) browser.Options {
	return browser.Options{
		BrowserPath:  cfg.BrowserPath,
		AutoDownload: cfg.BrowserAutoDownload,
		Headless:     cfg.BrowserHeadless,
		UserAgent:    cfg.UserAgent,
		WindowWidth:  cfg.WindowWidth,
		WindowHeight: cfg.WindowHeight,

		PageLoadTimeout: cfg.ListingTimeout,
	}
}

// NewDependencies initializes every service the scraper needs.
// The event feed is only connected when a Redis address is configured.
func NewDependencies(ctx context.Context, cfg *config.Config) *Dependencies {
	registry := prometheus.NewRegistry()
	deps := &Dependencies{
		Browser:  browser.NewManager(BrowserOptions(cfg)),
		Crawlers: crawler.CreateCrawlers(cfg),
		Registry: registry,
		Metrics:  metrics.NewRecorder(registry),

		publishTimeout: cfg.PublishTimeout,
	}

	if cfg.PublishingEnabled() {
		redisPublisher := publisher.NewRedisPublisher(publisher.RedisOptions{
			Addr:            cfg.RedisAddr,
			DB:              cfg.RedisDB,
			StreamPrefix:    cfg.RedisStream,
			StreamCount:     cfg.RedisStreamCount,
			StreamMaxLength: cfg.RedisStreamMaxLength,
		})
		if err := redisPublisher.Ping(ctx); err != nil {
			logger.Warn("Redis at %s is not reachable yet: %v", cfg.RedisAddr, err)
		}
		deps.Publisher = redisPublisher
		logger.Info("Publishing events to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	return deps
}

// Aggregator builds the aggregator over the configured crawlers
func (d *Dependencies) Aggregator() *aggregator.Aggregator {
	opts := []aggregator.Option{aggregator.WithMetrics(d.Metrics)}
	if d.Publisher != nil {
		opts = append(opts, aggregator.WithPublisher(d.Publisher), aggregator.WithPublishTimeout(d.publishTimeout))
	}
	return aggregator.New(d.Browser, d.Crawlers, opts...)
}

// Cleanup cleans up all services
func (d *Dependencies) Cleanup() {
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			logger.Warn("Failed to close publisher: %v", err)
		}
	}
}
