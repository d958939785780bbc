package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// rodSession implements Session on top of a go-rod browser with a single page
type rodSession struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page

	loadTimeout time.Duration
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	page := s.page.Context(ctx)
	if s.loadTimeout > 0 {
		page = page.Timeout(s.loadTimeout)
		defer page.CancelTimeout()
	}

	if err := page.Navigate(url); err != nil {
		return err
	}
	if err := page.WaitLoad(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("page did not finish loading within %v: %w", s.loadTimeout, err)
		}
		return err
	}
	return nil
}

func (s *rodSession) WaitFor(ctx context.Context, cond WaitCondition, timeout time.Duration) error {
	page := s.page.Context(ctx).Timeout(timeout)
	defer page.CancelTimeout()

	el, err := page.Element(cond.Selector)
	if err == nil && cond.Visible {
		err = el.WaitVisible()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrWaitTimeout, cond.Selector)
		}
		return err
	}
	return nil
}

func (s *rodSession) ScrollHeight(ctx context.Context) (int, error) {
	res, err := s.page.Context(ctx).Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (s *rodSession) ScrollToBottom(ctx context.Context) error {
	_, err := s.page.Context(ctx).Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	return err
}

func (s *rodSession) ClickIfVisible(ctx context.Context, selector string) (bool, error) {
	has, el, err := s.page.Context(ctx).Has(selector)
	if err != nil || !has {
		return false, err
	}

	visible, err := el.Visible()
	if err != nil || !visible {
		return false, err
	}

	disabled, err := el.Property("disabled")
	if err == nil && disabled.Bool() {
		return false, nil
	}

	if _, err := el.Eval(`() => this.click()`); err != nil {
		return false, err
	}
	return true, nil
}

func (s *rodSession) HTML(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}

func (s *rodSession) Title(ctx context.Context) string {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return ""
	}
	return info.Title
}

func (s *rodSession) Close() error {
	err := s.browser.Close()
	if err != nil {
		s.launcher.Kill()
	}
	s.launcher.Cleanup()
	return err
}
