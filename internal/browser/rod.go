package browser

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/JustJay7/court-status-fetcher/pkg/logger"
)

// RodLauncher launches a fresh Chromium process per session.
type RodLauncher struct {
	UserAgent   string
	BrowserPath string
	Devtools    bool
	logger      *logger.Logger
}

// NewRodLauncher creates a launcher. browserPath may be empty to let rod
// locate or download a browser.
func NewRodLauncher(userAgent, browserPath string, log *logger.Logger) *RodLauncher {
	return &RodLauncher{
		UserAgent:   userAgent,
		BrowserPath: browserPath,
		logger:      log,
	}
}

// Launch starts a browser and connects to it over CDP.
func (r *RodLauncher) Launch(ctx context.Context, opts LaunchOptions) (Session, error) {
	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		Set("disable-blink-features", "AutomationControlled").
		Delete("enable-automation")

	if r.UserAgent != "" {
		l = l.Set("user-agent", r.UserAgent)
	}
	if r.BrowserPath != "" {
		l = l.Bin(r.BrowserPath)
	}
	if r.Devtools {
		l = l.Devtools(true)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	// Close must still work after ctx is cancelled.
	b = b.Context(context.WithoutCancel(ctx))

	r.logger.Debug("Browser launched", "headless", opts.Headless, "pid", l.PID())

	return &rodSession{launcher: l, browser: b, logger: r.logger}, nil
}

type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	logger   *logger.Logger
}

func (s *rodSession) NewPage(ctx context.Context) (Page, error) {
	page, err := s.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}

	if _, err := page.SetExtraHeaders([]string{"Accept-Language", "en-US,en;q=0.9"}); err != nil {
		return nil, fmt.Errorf("failed to set headers: %w", err)
	}

	// Drop the ctx binding; each call re-binds its own wait context.
	return &rodPage{page: page.Context(context.Background())}, nil
}

// Close shuts the browser down and reaps the process.
func (s *rodSession) Close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	s.launcher.Cleanup()
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)

	wait := page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	if err := page.Navigate(url); err != nil {
		return err
	}
	wait()

	return ctx.Err()
}

func (p *rodPage) element(ctx context.Context, selector string) (*rod.Element, error) {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, selector)
		}
		return nil, err
	}
	return el, nil
}

func (p *rodPage) SelectByValue(ctx context.Context, selector, value string) error {
	el, err := p.element(ctx, selector)
	if err != nil {
		return err
	}
	return el.Select([]string{fmt.Sprintf("option[value=%q]", value)}, true, rod.SelectorTypeCSSSector)
}

func (p *rodPage) SelectByLabel(ctx context.Context, selector, label string) error {
	el, err := p.element(ctx, selector)
	if err != nil {
		return err
	}
	return el.Select([]string{labelPattern(label)}, true, rod.SelectorTypeRegex)
}

// labelPattern matches an option whose visible text is exactly label.
// rod's text selector is a substring match, which would pick "FAO(OS)"
// for "FAO".
func labelPattern(label string) string {
	return `^\s*` + regexp.QuoteMeta(label) + `\s*$`
}

func (p *rodPage) Fill(ctx context.Context, selector, text string) error {
	el, err := p.element(ctx, selector)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(text)
}

func (p *rodPage) Click(ctx context.Context, selector string) error {
	el, err := p.element(ctx, selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (p *rodPage) Text(ctx context.Context, selector string) (string, error) {
	el, err := p.element(ctx, selector)
	if err != nil {
		return "", err
	}
	return el.Text()
}

func (p *rodPage) WaitExists(ctx context.Context, selector string) error {
	_, err := p.element(ctx, selector)
	return err
}

func (p *rodPage) WaitVisible(ctx context.Context, selector string) error {
	el, err := p.element(ctx, selector)
	if err != nil {
		return err
	}
	return el.WaitVisible()
}

func (p *rodPage) WaitHidden(ctx context.Context, selector string) error {
	has, el, err := p.page.Context(ctx).Has(selector)
	if err != nil {
		return err
	}
	if !has {
		return nil
	}
	return el.WaitInvisible()
}

func (p *rodPage) Eval(ctx context.Context, js string, args ...interface{}) (string, error) {
	obj, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return "", err
	}
	return obj.Value.Str(), nil
}

func (p *rodPage) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}
