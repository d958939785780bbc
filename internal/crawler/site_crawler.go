package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sjsage522/eventscraper/helpers"
	"sjsage522/eventscraper/internal/browser"
	scrapeerrors "sjsage522/eventscraper/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// SiteCrawler is the generic extraction engine driven by a CrawlerConfig descriptor
type SiteCrawler struct {
	BaseCrawler
	config CrawlerConfig
}

// NewSiteCrawler creates a crawler for the source described by config
func NewSiteCrawler(config CrawlerConfig) *SiteCrawler {
	return &SiteCrawler{
		BaseCrawler: BaseCrawler{
			Provider: config.Provider,
			BaseURL:  config.BaseURL,
		},
		config: config,
	}
}

// Config returns the descriptor the crawler runs on
func (c *SiteCrawler) Config() CrawlerConfig {
	return c.config
}

// ListingURL returns the absolute URL of the source's listing page
func (c *SiteCrawler) ListingURL() string {
	target, err := helpers.ResolveURL(c.BaseURL, c.config.ListingPath)
	if err != nil || target == "" {
		return c.BaseURL
	}
	return target
}

// FetchEvents loads the listing page through sess and extracts its records.
// Every step reports failure as a value; this is the only place that turns one
// into an error for the caller, and panics never escape it.
func (c *SiteCrawler) FetchEvents(ctx context.Context, sess browser.Session) (events []EventRecord, err error) {
	target := c.ListingURL()
	log := c.log()

	defer func() {
		if r := recover(); r != nil {
			events = nil
			err = scrapeerrors.NewParsing(c.Provider, "unexpected failure", fmt.Errorf("panic: %v", r)).WithURL(target)
		}
		if err != nil {
			log.Error().Err(err).Str("url", target).Msg("Scrape failed")
			return
		}
		log.Info().Int("events", len(events)).Msg("Scrape finished")
	}()

	log.Info().Str("url", target).Msg("Starting scrape")

	snapshot, err := c.load(ctx, sess, target).Get()
	if err != nil {
		return nil, err
	}

	doc, err := c.createDocument(snapshot).Get()
	if err != nil {
		return nil, err
	}

	candidates := doc.Find(c.config.Listing)
	log.Debug().Int("candidates", candidates.Length()).Msg("Found listing nodes")

	return c.processNodes(candidates, c.nodeProcessor()), nil
}

// load drives the page from navigation to the final snapshot
func (c *SiteCrawler) load(ctx context.Context, sess browser.Session, target string) mo.Result[string] {
	return c.navigate(ctx, sess, target).
		FlatMap(func(string) mo.Result[string] { return c.awaitListings(ctx, sess, target) }).
		FlatMap(func(string) mo.Result[string] { return c.scroll(ctx, sess, target) }).
		FlatMap(func(string) mo.Result[string] { return c.snapshot(ctx, sess, target) })
}

func (c *SiteCrawler) navigate(ctx context.Context, sess browser.Session, target string) mo.Result[string] {
	if err := sess.Navigate(ctx, target); err != nil {
		return mo.Err[string](scrapeerrors.NewNavigation(c.Provider, "failed to open listing page", err).WithURL(target))
	}
	return mo.Ok(target)
}

// awaitListings blocks until every wait condition holds, then lets the page settle
func (c *SiteCrawler) awaitListings(ctx context.Context, sess browser.Session, target string) mo.Result[string] {
	timeout := c.config.Timing.ListingTimeout

	for _, cond := range c.config.WaitFor {
		err := sess.WaitFor(ctx, cond, timeout)
		if err == nil {
			continue
		}
		if errors.Is(err, browser.ErrWaitTimeout) {
			c.reportTimeout(ctx, sess, cond)
			return mo.Err[string](scrapeerrors.NewSourceTimeout(c.Provider, timeout, err).WithURL(target))
		}
		return mo.Err[string](scrapeerrors.NewNavigation(c.Provider, "waiting for listings failed", err).WithURL(target))
	}

	c.log().Debug().Msg("Listings present, waiting for the page to settle")
	c.pause(c.config.Timing.StabilityPause)
	return mo.Ok(target)
}

// reportTimeout logs what the page showed instead of listings
func (c *SiteCrawler) reportTimeout(ctx context.Context, sess browser.Session, cond browser.WaitCondition) {
	log := c.log()
	title := sess.Title(ctx)
	log.Warn().Str("selector", cond.Selector).Str("page_title", title).Msg("Listings did not appear")

	markup, _ := sess.HTML(ctx)
	marker, blocked := lo.Find(c.config.BlockMarkers, func(m string) bool {
		return strings.Contains(title, m) || strings.Contains(markup, m)
	})
	if blocked {
		log.Warn().Str("marker", marker).Msg("Page looks like an anti-bot interstitial")
	}
}

// scroll triggers lazy loading until the page height stops changing or the attempt cap is hit
func (c *SiteCrawler) scroll(ctx context.Context, sess browser.Session, target string) mo.Result[string] {
	_, err := c.scrollUntilStable(ctx, sess)
	if err != nil {
		return mo.Err[string](scrapeerrors.NewNavigation(c.Provider, "scrolling failed", err).WithURL(target))
	}
	return mo.Ok(target)
}

func (c *SiteCrawler) scrollUntilStable(ctx context.Context, sess browser.Session) (int, error) {
	policy := c.config.Scroll
	timing := c.config.Timing
	log := c.log()

	last, err := sess.ScrollHeight(ctx)
	if err != nil {
		return 0, err
	}

	unchanged := 0
	attempts := 0
	for attempts < policy.MaxAttempts {
		attempts++
		if err := sess.ScrollToBottom(ctx); err != nil {
			return attempts, err
		}
		c.pause(timing.ScrollPause)

		if policy.LoadMore != "" {
			clicked, err := sess.ClickIfVisible(ctx, policy.LoadMore)
			switch {
			case err != nil:
				log.Debug().Err(err).Msg("Load-more control not clickable")
			case clicked:
				log.Debug().Int("attempt", attempts).Msg("Clicked load-more control")
				c.pause(timing.ScrollPause + timing.LoadMoreExtraPause)
			}
		}

		height, err := sess.ScrollHeight(ctx)
		if err != nil {
			return attempts, err
		}
		if height == last {
			unchanged++
			if unchanged >= policy.StableThreshold {
				log.Debug().Int("attempts", attempts).Msg("Page height stable")
				break
			}
		} else {
			unchanged = 0
		}
		last = height
	}

	return attempts, nil
}

func (c *SiteCrawler) snapshot(ctx context.Context, sess browser.Session, target string) mo.Result[string] {
	markup, err := sess.HTML(ctx)
	if err != nil {
		return mo.Err[string](scrapeerrors.NewNavigation(c.Provider, "failed to read page source", err).WithURL(target))
	}
	return mo.Ok(markup)
}

// nodeProcessor returns a processor that remembers the keys it has already seen
func (c *SiteCrawler) nodeProcessor() NodeProcessor {
	seen := make(map[string]struct{})

	return func(node *goquery.Selection) (*EventRecord, error) {
		key, link, err := c.config.Identify(node, c.BaseURL)
		if err != nil {
			return nil, err
		}
		if key == "" {
			return nil, nil
		}
		if _, dup := seen[key]; dup {
			return nil, nil
		}
		seen[key] = struct{}{}

		return c.buildRecord(node, link)
	}
}

// buildRecord extracts the fields of an identified listing.
// Failures carry link so they can be traced back to the event page.
func (c *SiteCrawler) buildRecord(node *goquery.Selection, link string) (record *EventRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			record = nil
			err = scrapeerrors.NewNodeExtraction(c.Provider, "listing could not be parsed", fmt.Errorf("panic: %v", r)).WithURL(link)
		}
	}()

	scope := node
	if c.config.Scope != nil {
		scope = c.config.Scope(node)
		if scope.Length() == 0 {
			return nil, nil
		}
	}

	title, ok := c.extract(node, scope, c.config.Title).Get()
	if !ok {
		c.log().Debug().Str("url", link).Msg("Listing without title skipped")
		return nil, nil
	}

	record = &EventRecord{
		Source: c.Provider,
		URL:    link,
		Title:  title,
	}
	for _, rule := range c.config.Fields {
		record.Set(rule.Field, c.extract(node, scope, rule).OrElse(rule.fallback()))
	}
	if c.config.Finalize != nil {
		c.config.Finalize(record)
	}
	return record, nil
}

// extract applies one field rule
func (c *SiteCrawler) extract(node, scope *goquery.Selection, rule FieldRule) mo.Option[string] {
	if rule.Fixed != "" {
		return mo.Some(rule.Fixed)
	}

	target := scope
	if rule.OnNode {
		target = node
	}
	if rule.Handler != nil {
		return rule.Handler(target)
	}

	sel := target
	if rule.Selector != "" {
		sel = target.Find(rule.Selector)
	}

	if rule.All {
		values := lo.Compact(sel.Map(func(_ int, s *goquery.Selection) string {
			return readValue(s, rule.Attr).OrEmpty()
		}))
		if len(values) == 0 {
			return mo.None[string]()
		}
		return mo.Some(strings.Join(values, ", "))
	}

	return readValue(sel.First(), rule.Attr)
}

func (r FieldRule) fallback() string {
	if r.Default != "" {
		return r.Default
	}
	return helpers.NotAvailable
}

// readValue returns the cleaned text (or attribute) of s
func readValue(s *goquery.Selection, attr string) mo.Option[string] {
	if s.Length() == 0 {
		return mo.None[string]()
	}
	if attr == "" {
		return helpers.CleanText(s.Text())
	}
	value, ok := s.Attr(attr)
	if !ok {
		return mo.None[string]()
	}
	return helpers.CleanText(value)
}

// hasClassPrefix reports whether any class token of s starts with prefix
func hasClassPrefix(s *goquery.Selection, prefix string) bool {
	class, _ := s.Attr("class")
	return lo.SomeBy(strings.Fields(class), func(token string) bool {
		return strings.HasPrefix(token, prefix)
	})
}
