package crawler

import (
	"sjsage522/eventscraper/config"
	"sjsage522/eventscraper/helpers"
	"sjsage522/eventscraper/internal/browser"

	"github.com/PuerkitoBio/goquery"
)

const (
	devfolioDetailsOnPage = "N/A (Details on event page)"
	devfolioLocation      = "Online/Offline (Check Status/Mode)"
)

// devfolioCardPrefixes are tried in order; the generic styled-component prefix is the fallback
var devfolioCardPrefixes = []string{"CompactHackathonCard__Card-sc-", "sc-"}

// NewDevfolioCrawler creates a new Devfolio crawler
func NewDevfolioCrawler(cfg *config.Config) *SiteCrawler {
	return NewSiteCrawler(CrawlerConfig{
		Provider:     ProviderDevfolio,
		BaseURL:      cfg.DevfolioURL,
		ListingPath:  "/hackathons",
		WaitFor:      []browser.WaitCondition{{Selector: "a.bnxtME"}},
		Listing:      "a.bnxtME",
		BlockMarkers: defaultBlockMarkers,
		Scroll: ScrollPolicy{
			MaxAttempts:     cfg.MaxScrollAttempts / 2,
			StableThreshold: 2,
		},
		Timing:   timingFromConfig(cfg),
		Identify: devfolioIdentify,
		Scope:    devfolioCard,
		Title:    FieldRule{Selector: "h3", OnNode: true},
		Fields: []FieldRule{
			{Field: FieldStatusMode, Selector: "p.ifkmYk", All: true},
			{Field: FieldLocationMode, Fixed: devfolioLocation},
			{Field: FieldPrizeInfo, Fixed: devfolioDetailsOnPage},
			{Field: FieldParticipantsCount, Fixed: devfolioDetailsOnPage},
			{Field: FieldHostName, Fixed: devfolioDetailsOnPage},
			{Field: FieldDates, Fixed: devfolioDetailsOnPage},
			{Field: FieldThemesTags, Fixed: devfolioDetailsOnPage},
		},
	})
}

// devfolioIdentify keys a listing link by its absolute URL.
// Links outside a hackathon card are not listings.
func devfolioIdentify(node *goquery.Selection, baseURL string) (string, string, error) {
	if devfolioCard(node).Length() == 0 {
		return "", "", nil
	}

	href, _ := node.Attr("href")
	link, err := helpers.ResolveURL(baseURL, href)
	if err != nil {
		return "", "", err
	}
	return link, link, nil
}

// devfolioCard returns the nearest card container enclosing the link
func devfolioCard(node *goquery.Selection) *goquery.Selection {
	parents := node.ParentsFiltered("div")

	var card *goquery.Selection
	for _, prefix := range devfolioCardPrefixes {
		card = parents.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return hasClassPrefix(s, prefix)
		}).First()
		if card.Length() > 0 {
			return card
		}
	}
	return card
}
