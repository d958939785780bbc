package crawler

import (
	"regexp"
	"strings"

	"sjsage522/eventscraper/config"
	"sjsage522/eventscraper/helpers"
	"sjsage522/eventscraper/internal/browser"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

const unstopMode = "Online (typically)"

var (
	unstopIDPattern         = regexp.MustCompile(`i_(\d+)_`)
	unstopRegisteredPattern = regexp.MustCompile(`([\d,]+)\s+Registered`)
	unstopTrophyPattern     = regexp.MustCompile(`^\s*🏆\s*`)
	unstopDateHints         = []string{"ago", "left", "day"}
)

// NewUnstopCrawler creates a new Unstop crawler
func NewUnstopCrawler(cfg *config.Config) *SiteCrawler {
	return NewSiteCrawler(CrawlerConfig{
		Provider:    ProviderUnstop,
		BaseURL:     cfg.UnstopURL,
		ListingPath: "/hackathons",
		WaitFor: []browser.WaitCondition{
			{Selector: "div.user_list", Visible: true},
			{Selector: "app-competition-listing div.single_profile", Visible: true},
		},
		Listing:      "app-competition-listing div.single_profile",
		BlockMarkers: defaultBlockMarkers,
		Scroll: ScrollPolicy{
			MaxAttempts:     cfg.MaxScrollAttempts,
			StableThreshold: 3,
		},
		Timing:   timingFromConfig(cfg),
		Identify: unstopIdentify,
		Scope: func(node *goquery.Selection) *goquery.Selection {
			return node.Find("div.content").First()
		},
		Title: FieldRule{Selector: "h2.double-wrap"},
		Fields: []FieldRule{
			{Field: FieldHostName, Selector: "p"},
			{Field: FieldStatusMode, Fixed: unstopMode},
			{Field: FieldLocationMode, Fixed: unstopMode},
			{Field: FieldPrizeInfo, Handler: unstopBox(FieldPrizeInfo)},
			{Field: FieldParticipantsCount, Handler: unstopBox(FieldParticipantsCount)},
			{Field: FieldDates, Handler: unstopBox(FieldDates)},
			{Field: FieldThemesTags, Selector: "div.skills un-chip-items span.chip_text", All: true},
		},
	})
}

// unstopCompetitionID reads the numeric competition ID from the element id,
// falling back to an opp_<digits> class
func unstopCompetitionID(node *goquery.Selection) string {
	id, _ := node.Attr("id")
	if m := unstopIDPattern.FindStringSubmatch(id); m != nil {
		return m[1]
	}

	class, _ := node.Attr("class")
	token, ok := lo.Find(strings.Fields(class), func(c string) bool {
		if !strings.HasPrefix(c, "opp_") {
			return false
		}
		last, err := helpers.GetSplitPart(c, "_", -1)
		return err == nil && isDigits(last)
	})
	if !ok {
		return ""
	}
	last, _ := helpers.GetSplitPart(token, "_", -1)
	return last
}

// unstopIdentify keys a listing by its competition ID
func unstopIdentify(node *goquery.Selection, baseURL string) (string, string, error) {
	id := unstopCompetitionID(node)
	if id == "" {
		return "", "", nil
	}

	link, err := helpers.ResolveURL(baseURL, "o/"+id)
	if err != nil {
		return "", "", err
	}
	return id, link, nil
}

// unstopBox returns a handler reading one field out of the listing's info boxes.
// Each box belongs to the first category it matches; a later box of the same
// category replaces an earlier one.
func unstopBox(field Field) ElementHandler {
	return func(scope *goquery.Selection) mo.Option[string] {
		value := mo.None[string]()
		scope.Find("div.other_fields").First().ChildrenFiltered("div.seperate_box").Each(func(_ int, box *goquery.Selection) {
			if got, text, ok := classifyUnstopBox(box); ok && got == field {
				value = mo.Some(text)
			}
		})
		return value
	}
}

// classifyUnstopBox decides which field a box describes and returns its value
func classifyUnstopBox(box *goquery.Selection) (Field, string, bool) {
	text, ok := helpers.CleanText(box.Text()).Get()
	if !ok {
		return "", "", false
	}
	alt, _ := box.Find("img").First().Attr("alt")

	switch {
	case box.HasClass("prize") || strings.Contains(alt, "Prize money"):
		return FieldPrizeInfo, helpers.CleanTextOr(unstopTrophyPattern.ReplaceAllString(text, ""), text), true
	case alt == "group" || strings.Contains(text, "Registered"):
		if m := unstopRegisteredPattern.FindStringSubmatch(text); m != nil {
			return FieldParticipantsCount, strings.ReplaceAll(m[1], ",", ""), true
		}
		return FieldParticipantsCount, text, true
	case alt == "schedule" || lo.SomeBy(unstopDateHints, func(h string) bool { return strings.Contains(text, h) }):
		return FieldDates, text, true
	default:
		return "", "", false
	}
}

func isDigits(s string) bool {
	return s != "" && strings.Trim(s, "0123456789") == ""
}
