package browser

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"sjsage522/eventscraper/logger"
	scrapeerrors "sjsage522/eventscraper/pkg/errors"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// hideWebdriver runs before any page script so navigator.webdriver reads as undefined
const hideWebdriver = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`

// Options is the immutable browser configuration handed to a Manager
type Options struct {
	// BrowserPath is an explicit Chrome/Chromium binary. It wins over every lookup.
	BrowserPath string
	// AutoDownload allows fetching a browser build when none is installed
	AutoDownload bool
	Headless     bool
	UserAgent    string
	WindowWidth  int
	WindowHeight int
	// PageLoadTimeout bounds how long Navigate waits for the load event; zero waits forever
	PageLoadTimeout time.Duration
}

// Manager launches one browser process per acquired session
type Manager struct {
	opts Options

	mu  sync.Mutex
	bin string

	// lookPath and download are swapped out in tests
	lookPath func() (string, bool)
	download func() (string, error)
}

// NewManager creates a session manager for opts
func NewManager(opts Options) *Manager {
	return &Manager{
		opts:     opts,
		lookPath: launcher.LookPath,
		download: func() (string, error) {
			return launcher.NewBrowser().Get()
		},
	}
}

// Preflight resolves the browser binary once and caches it
func (m *Manager) Preflight() error {
	_, err := m.resolveBinary()
	return err
}

// resolveBinary finds the browser executable: explicit path, then an installed
// browser, then an auto-downloaded one
func (m *Manager) resolveBinary() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.bin != "" {
		return m.bin, nil
	}

	if m.opts.BrowserPath != "" {
		info, err := os.Stat(m.opts.BrowserPath)
		if err != nil {
			return "", scrapeerrors.NewDriverConfiguration(
				fmt.Sprintf("configured browser path %q is not usable", m.opts.BrowserPath), err)
		}
		if info.IsDir() {
			return "", scrapeerrors.NewDriverConfiguration(
				fmt.Sprintf("configured browser path %q is a directory", m.opts.BrowserPath), nil)
		}
		m.bin = m.opts.BrowserPath
		return m.bin, nil
	}

	if path, ok := m.lookPath(); ok {
		logger.Debug("Using installed browser at %s", path)
		m.bin = path
		return m.bin, nil
	}

	if !m.opts.AutoDownload {
		return "", scrapeerrors.NewDriverConfiguration(
			"no browser found on this system and auto-download is disabled; set SCRAPER_BROWSER_PATH", nil)
	}

	path, err := m.download()
	if err != nil {
		return "", scrapeerrors.NewDriverConfiguration("browser auto-download failed", err)
	}
	logger.Info("Using downloaded browser at %s", path)
	m.bin = path
	return m.bin, nil
}

// Acquire launches a fresh browser configured to look like a regular desktop user
func (m *Manager) Acquire(ctx context.Context) (Session, error) {
	bin, err := m.resolveBinary()
	if err != nil {
		return nil, err
	}

	l := m.launcher(bin)
	controlURL, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, scrapeerrors.NewSessionAcquisition("", "failed to launch browser", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, scrapeerrors.NewSessionAcquisition("", "failed to connect to browser", err)
	}

	sess := &rodSession{browser: b, launcher: l, loadTimeout: m.opts.PageLoadTimeout}

	page, err := b.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		sess.Close()
		return nil, scrapeerrors.NewSessionAcquisition("", "failed to open page", err)
	}
	sess.page = page

	if err := m.disguise(page); err != nil {
		sess.Close()
		return nil, scrapeerrors.NewSessionAcquisition("", "failed to configure page", err)
	}

	return sess, nil
}

// launcher builds the browser command line for bin
func (m *Manager) launcher(bin string) *launcher.Launcher {
	l := launcher.New().
		Bin(bin).
		Headless(m.opts.Headless).
		NoSandbox(true).
		Set("disable-dev-shm-usage").
		Set("disable-blink-features", "AutomationControlled").
		Set("start-maximized").
		Set("window-size", fmt.Sprintf("%d,%d", m.opts.WindowWidth, m.opts.WindowHeight)).
		Delete("enable-automation")
	if m.opts.UserAgent != "" {
		l = l.Set("user-agent", m.opts.UserAgent)
	}
	return l
}

// disguise applies the user agent, viewport and webdriver countermeasures to page
func (m *Manager) disguise(page *rod.Page) error {
	if m.opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: m.opts.UserAgent}); err != nil {
			return err
		}
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             m.opts.WindowWidth,
		Height:            m.opts.WindowHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return err
	}

	_, err := page.EvalOnNewDocument(hideWebdriver)
	return err
}
