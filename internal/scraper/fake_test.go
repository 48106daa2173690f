package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JustJay7/court-status-fetcher/internal/browser"
	"github.com/JustJay7/court-status-fetcher/internal/config"
	"github.com/JustJay7/court-status-fetcher/pkg/logger"
)

type fakeOption struct {
	value string
	label string
}

// fakePage scripts the portal's behaviour. Missing elements fail at once
// instead of waiting out the context.
type fakePage struct {
	mu sync.Mutex

	navigateErrs []error
	navigations  int

	options  map[string][]fakeOption
	selected map[string]string
	filled   map[string]string
	clicked  []string
	clickErr error

	texts     map[string]string
	textReads int

	exists         map[string]bool
	spinnerVisible bool

	bodies    []snapshot
	bodyCalls int
	table     snapshot

	html     string
	panicMsg string
}

func newFakePage() *fakePage {
	return &fakePage{
		options: map[string][]fakeOption{
			"#case_type": {{value: "W.P.(C)", label: "W.P.(C) - Writ Petition"}, {value: "CRL.A.", label: "CRL.A."}},
			"#year":      {{value: "2024", label: "2024"}, {value: "2023", label: "2023"}},
		},
		selected: map[string]string{},
		filled:   map[string]string{},
		texts:    map[string]string{"#captcha-code": " 4821 "},
		exists:   map[string]bool{"#s_judgeTable": true},
		html:     "<html><body>portal</body></html>",
	}
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.navigations
	p.navigations++
	if i < len(p.navigateErrs) {
		return p.navigateErrs[i]
	}
	return nil
}

func (p *fakePage) selectWith(selector, value string, match func(fakeOption) bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, o := range p.options[selector] {
		if match(o) {
			p.selected[selector] = o.value
			return nil
		}
	}
	return fmt.Errorf("no option %q in %s", value, selector)
}

func (p *fakePage) SelectByValue(ctx context.Context, selector, value string) error {
	return p.selectWith(selector, value, func(o fakeOption) bool { return o.value == value })
}

func (p *fakePage) SelectByLabel(ctx context.Context, selector, label string) error {
	return p.selectWith(selector, label, func(o fakeOption) bool { return o.label == label })
}

func (p *fakePage) Fill(ctx context.Context, selector, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filled[selector] = text
	return nil
}

func (p *fakePage) Click(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.panicMsg != "" {
		panic(p.panicMsg)
	}
	if p.clickErr != nil {
		return p.clickErr
	}
	p.clicked = append(p.clicked, selector)
	return nil
}

func (p *fakePage) Text(ctx context.Context, selector string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.textReads++
	if t, ok := p.texts[selector]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
}

func (p *fakePage) WaitExists(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exists[selector] {
		return nil
	}
	return fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
}

func (p *fakePage) WaitVisible(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinnerVisible {
		return nil
	}
	return fmt.Errorf("%w: %s", browser.ErrNotFound, selector)
}

func (p *fakePage) WaitHidden(ctx context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spinnerVisible = false
	return nil
}

func (p *fakePage) Eval(ctx context.Context, js string, args ...interface{}) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(args) != 2 {
		return "", errors.New("unexpected eval arguments")
	}
	outer, _ := args[1].(bool)

	var snap snapshot
	if outer {
		snap = p.table
	} else {
		if len(p.bodies) == 0 {
			return "", errors.New("no body scripted")
		}
		i := p.bodyCalls
		if i >= len(p.bodies) {
			i = len(p.bodies) - 1
		}
		p.bodyCalls++
		snap = p.bodies[i]
	}

	b, err := json.Marshal(snap)
	return string(b), err
}

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	return p.html, nil
}

type fakeSession struct {
	page   *fakePage
	closed bool
}

func (s *fakeSession) NewPage(ctx context.Context) (browser.Page, error) {
	return s.page, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeLauncher struct {
	page      *fakePage
	launchErr error
	sessions  []*fakeSession
	headless  []bool
}

func (l *fakeLauncher) Launch(ctx context.Context, opts browser.LaunchOptions) (browser.Session, error) {
	if l.launchErr != nil {
		return nil, l.launchErr
	}
	s := &fakeSession{page: l.page}
	l.sessions = append(l.sessions, s)
	l.headless = append(l.headless, opts.Headless)
	return s, nil
}

func (l *fakeLauncher) allClosed() bool {
	for _, s := range l.sessions {
		if !s.closed {
			return false
		}
	}
	return true
}

func testConfig() *config.Config {
	return &config.Config{
		CourtBaseURL:         "https://delhihighcourt.nic.in",
		ScraperTimeout:       300 * time.Millisecond,
		NavigationRetries:    3,
		NavigationBackoff:    time.Second,
		CaptchaReadTimeout:   50 * time.Millisecond,
		SpinnerTimeout:       20 * time.Millisecond,
		PollInterval:         5 * time.Millisecond,
		HeadlessMode:         true,
		MaxConcurrentScrapes: 1,
	}
}

// newTestScraper wires a scraper to page; backoff sleeps are recorded, not
// slept.
func newTestScraper(page *fakePage) (*Scraper, *fakeLauncher, *[]time.Duration) {
	l := &fakeLauncher{page: page}
	s := NewScraper(testConfig(), DefaultLayout(), l, logger.NewNop())
	var slept []time.Duration
	s.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return s, l, &slept
}
