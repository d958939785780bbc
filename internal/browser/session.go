package browser

import (
	"context"
	"errors"
	"time"
)

// ErrWaitTimeout is returned by Session.WaitFor when the condition did not hold in time
var ErrWaitTimeout = errors.New("wait condition timed out")

// WaitCondition describes the marker element that proves a listing page has rendered
type WaitCondition struct {
	Selector string
	// Visible requires the element to be rendered, not merely attached to the DOM
	Visible bool
}

// Session is one live headless browser tab.
// It is owned by a single extraction and must be closed on every exit path.
type Session interface {
	// Navigate loads url and waits for the load event
	Navigate(ctx context.Context, url string) error

	// WaitFor blocks until cond holds or timeout elapses (ErrWaitTimeout)
	WaitFor(ctx context.Context, cond WaitCondition, timeout time.Duration) error

	// ScrollHeight returns document.body.scrollHeight
	ScrollHeight(ctx context.Context) (int, error)

	// ScrollToBottom scrolls the window to the end of the document
	ScrollToBottom(ctx context.Context) error

	// ClickIfVisible clicks the first element matching selector when it is visible
	// and enabled. It reports whether a click happened.
	ClickIfVisible(ctx context.Context, selector string) (bool, error)

	// HTML returns the rendered markup of the whole page
	HTML(ctx context.Context) (string, error)

	// Title returns the document title, or an empty string when it cannot be read
	Title(ctx context.Context) string

	// Close terminates the browser behind the session
	Close() error
}

// Acquirer hands out fresh sessions
type Acquirer interface {
	// Preflight verifies that a browser can be launched at all
	Preflight() error

	// Acquire launches a new browser and returns a session on a blank page
	Acquire(ctx context.Context) (Session, error)
}
