package crawler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"sjsage522/eventscraper/logger"
	scrapeerrors "sjsage522/eventscraper/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/mo"
	"golang.org/x/net/html"
)

// NodeProcessor turns one candidate listing node into a record.
// A nil record with a nil error means the node is skipped.
type NodeProcessor func(*goquery.Selection) (*EventRecord, error)

// BaseCrawler provides common functionality for all crawlers
type BaseCrawler struct {
	Provider string
	BaseURL  string

	// sleep is replaced in tests so pauses do not slow them down
	sleep func(time.Duration)
}

func (c *BaseCrawler) log() *logger.Logger {
	return logger.ForCrawler(c.Provider)
}

func (c *BaseCrawler) pause(d time.Duration) {
	if d <= 0 {
		return
	}
	if c.sleep == nil {
		time.Sleep(d)
		return
	}
	c.sleep(d)
}

// createDocument parses a rendered page snapshot
func (c *BaseCrawler) createDocument(markup string) mo.Result[*goquery.Document] {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return mo.Err[*goquery.Document](scrapeerrors.NewParsing(c.Provider, "HTML parse error", err))
	}
	return mo.Ok(goquery.NewDocumentFromNode(root))
}

// processNodes runs processor over every node in document order.
// A node that errors or panics is logged and skipped; the rest still run.
func (c *BaseCrawler) processNodes(selections *goquery.Selection, processor NodeProcessor) []EventRecord {
	events := make([]EventRecord, 0, selections.Length())

	selections.Each(func(i int, s *goquery.Selection) {
		record, err := c.safeProcess(s, processor)
		if err != nil {
			event := c.log().Warn().Err(err).Int("node", i)
			if url := failedURL(err); url != "" {
				event = event.Str("url", url)
			}
			event.Msg("Skipping listing")
			return
		}
		if record != nil {
			events = append(events, *record)
		}
	})

	return events
}

func (c *BaseCrawler) safeProcess(s *goquery.Selection, processor NodeProcessor) (record *EventRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			record = nil
			err = scrapeerrors.NewNodeExtraction(c.Provider, "listing could not be parsed", fmt.Errorf("panic: %v", r))
		}
	}()

	record, err = processor(s)
	if err != nil {
		if scrapeerrors.Is(err, scrapeerrors.ErrorTypeNodeExtraction) {
			return nil, err
		}
		return nil, scrapeerrors.NewNodeExtraction(c.Provider, "listing could not be parsed", err)
	}
	return record, nil
}

// failedURL returns the event URL a listing failure was tagged with, if any
func failedURL(err error) string {
	var scrapeErr *scrapeerrors.ScrapeError
	if errors.As(err, &scrapeErr) {
		return scrapeErr.URL
	}
	return ""
}

// GetName returns the crawler's name for logging
func (c *BaseCrawler) GetName() string {
	return c.Provider + "Crawler"
}

// GetProvider returns the provider name
func (c *BaseCrawler) GetProvider() string {
	return c.Provider
}
