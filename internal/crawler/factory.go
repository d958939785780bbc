package crawler

import (
	"sjsage522/eventscraper/config"
	"sjsage522/eventscraper/logger"
)

// defaultBlockMarkers identify Cloudflare-style interstitials served instead of listings
var defaultBlockMarkers = []string{"Just a moment...", "Cloudflare"}

func timingFromConfig(cfg *config.Config) Timing {
	return Timing{
		ListingTimeout:     cfg.ListingTimeout,
		StabilityPause:     cfg.StabilityPause,
		ScrollPause:        cfg.ScrollPause,
		LoadMoreExtraPause: cfg.LoadMoreExtraPause,
	}
}

// CreateCrawlers creates the source crawlers in the order they are scraped
func CreateCrawlers(cfg *config.Config) []Crawler {
	crawlers := []Crawler{
		NewDevfolioCrawler(cfg),
		NewDevpostCrawler(cfg),
		NewUnstopCrawler(cfg),
	}

	for i, c := range crawlers {
		if sc, ok := c.(*SiteCrawler); ok {
			logger.Debug("Crawler %d: %s with URL %s", i, c.GetName(), sc.ListingURL())
		}
	}

	return crawlers
}
