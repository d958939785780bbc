package crawler

import (
	"context"
	"time"

	"sjsage522/eventscraper/config"
	"sjsage522/eventscraper/internal/browser"

	"github.com/spf13/viper"
)

// fakeSession implements browser.Session over canned markup
type fakeSession struct {
	html        string
	title       string
	heights     []int
	waitErr     map[string]error
	navigateErr error
	htmlErr     error
	clickable   int
	// panicOnScroll simulates a driver bug surfacing as a panic
	panicOnScroll bool

	navigated   []string
	waited      []browser.WaitCondition
	heightCalls int
	scrolls     int
	clicks      int
	closed      bool
}

func newFakeSession(html string) *fakeSession {
	return &fakeSession{html: html, heights: []int{1000}}
}

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	f.navigated = append(f.navigated, url)
	return f.navigateErr
}

func (f *fakeSession) WaitFor(_ context.Context, cond browser.WaitCondition, _ time.Duration) error {
	f.waited = append(f.waited, cond)
	return f.waitErr[cond.Selector]
}

func (f *fakeSession) ScrollHeight(context.Context) (int, error) {
	i := f.heightCalls
	if i >= len(f.heights) {
		i = len(f.heights) - 1
	}
	f.heightCalls++
	return f.heights[i], nil
}

func (f *fakeSession) ScrollToBottom(context.Context) error {
	if f.panicOnScroll {
		panic("runtime error: invalid memory address")
	}
	f.scrolls++
	return nil
}

func (f *fakeSession) ClickIfVisible(context.Context, string) (bool, error) {
	if f.clickable <= 0 {
		return false, nil
	}
	f.clickable--
	f.clicks++
	return true, nil
}

func (f *fakeSession) HTML(context.Context) (string, error) {
	return f.html, f.htmlErr
}

func (f *fakeSession) Title(context.Context) string {
	return f.title
}

func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

// testConfig returns the default configuration
func testConfig() *config.Config {
	v := viper.New()
	config.SetDefaults(v)
	return config.FromViper(v)
}

// withoutPauses makes c record its pauses instead of sleeping
func withoutPauses(c *SiteCrawler) (*SiteCrawler, *[]time.Duration) {
	pauses := &[]time.Duration{}
	c.sleep = func(d time.Duration) {
		*pauses = append(*pauses, d)
	}
	return c, pauses
}
