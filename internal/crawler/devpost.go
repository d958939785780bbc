package crawler

import (
	"fmt"

	"sjsage522/eventscraper/config"
	"sjsage522/eventscraper/helpers"
	"sjsage522/eventscraper/internal/browser"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/mo"
)

const (
	devpostInfo    = "div.main-content div.content div.flex-row"
	devpostCounts  = "div.main-content div.content div.prizes-and-participants"
	devpostSideBar = "div.side-info"
)

// NewDevpostCrawler creates a new Devpost crawler
func NewDevpostCrawler(cfg *config.Config) *SiteCrawler {
	return NewSiteCrawler(CrawlerConfig{
		Provider:     ProviderDevpost,
		BaseURL:      cfg.DevpostURL,
		ListingPath:  "/hackathons",
		WaitFor:      []browser.WaitCondition{{Selector: "div.hackathon-tile", Visible: true}},
		Listing:      "div.hackathon-tile",
		BlockMarkers: defaultBlockMarkers,
		Scroll: ScrollPolicy{
			MaxAttempts:     cfg.MaxScrollAttempts,
			StableThreshold: 2,
			LoadMore:        "a.load-more-challenges",
		},
		Timing:   timingFromConfig(cfg),
		Identify: devpostIdentify,
		Scope:    devpostAnchor,
		Title:    FieldRule{Selector: "div.main-content div.content h3.mb-4"},
		Fields: []FieldRule{
			{Field: FieldStatusLabel, Selector: devpostInfo + " div.status-label"},
			{Field: FieldLocationMode, Handler: devpostLocation},
			{Field: FieldPrizeInfo, Selector: devpostCounts + " span.prize-amount"},
			{Field: FieldParticipantsCount, Selector: devpostCounts + " div.participants strong"},
			{Field: FieldHostName, Handler: devpostHost},
			{Field: FieldDates, Selector: devpostSideBar + " div.submission-period"},
			{Field: FieldThemesTags, Selector: devpostSideBar + " span.theme-label", Attr: "title", All: true},
		},
		Finalize: func(r *EventRecord) {
			r.StatusMode = fmt.Sprintf("%s (%s)", r.StatusLabel, r.LocationMode)
		},
	})
}

func devpostAnchor(node *goquery.Selection) *goquery.Selection {
	return node.Find("a.tile-anchor").First()
}

// devpostIdentify keys a tile by its absolute URL with the tracking query removed
func devpostIdentify(node *goquery.Selection, baseURL string) (string, string, error) {
	href, ok := devpostAnchor(node).Attr("href")
	if !ok {
		return "", "", nil
	}

	link, err := helpers.ResolveURL(baseURL, helpers.StripQuery(href))
	if err != nil {
		return "", "", err
	}
	return link, link, nil
}

// devpostMode maps the icon next to the location to an attendance mode
func devpostMode(icon *goquery.Selection) string {
	switch {
	case icon.HasClass("fa-globe"):
		return "Online"
	case icon.HasClass("fa-map-marker-alt"):
		return "In-Person"
	default:
		return "Hybrid/Unknown"
	}
}

func devpostLocation(s *goquery.Selection) mo.Option[string] {
	block := s.Find(devpostInfo + " div.info-with-icon").First()
	icon := block.Find("i").First()
	text := block.Find("span").First()
	if icon.Length() == 0 || text.Length() == 0 {
		return mo.None[string]()
	}

	mode := devpostMode(icon)
	if place, ok := helpers.CleanText(text.Text()).Get(); ok {
		return mo.Some(mode + " - " + place)
	}
	return mo.Some(mode)
}

// devpostHost prefers the full name kept in the title attribute over the truncated label
func devpostHost(s *goquery.Selection) mo.Option[string] {
	label := s.Find(devpostSideBar + " span.host-label").First()
	if label.Length() == 0 {
		return mo.None[string]()
	}
	if title, ok := label.Attr("title"); ok {
		if host, ok := helpers.CleanText(title).Get(); ok {
			return mo.Some(host)
		}
	}
	return helpers.CleanText(label.Text())
}
