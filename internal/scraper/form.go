package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JustJay7/court-status-fetcher/internal/browser"
	"github.com/JustJay7/court-status-fetcher/pkg/logger"
)

// selectStrategy is one way of choosing an option in a <select>.
type selectStrategy struct {
	name  string
	apply func(ctx context.Context, page browser.Page, selector, value string) error
}

var (
	selectByValue = selectStrategy{
		name: "value",
		apply: func(ctx context.Context, page browser.Page, selector, value string) error {
			return page.SelectByValue(ctx, selector, value)
		},
	}
	selectByLabel = selectStrategy{
		name: "label",
		apply: func(ctx context.Context, page browser.Page, selector, value string) error {
			return page.SelectByLabel(ctx, selector, value)
		},
	}
)

// defaultSelectStrategies is tried in order; the site's widgets are not
// consistent about option values.
var defaultSelectStrategies = []selectStrategy{selectByValue, selectByLabel}

// chooseOption applies strategies in order and returns the name of the one
// that worked. ok is false when none did; the field is then left unchanged.
func chooseOption(ctx context.Context, page browser.Page, strategies []selectStrategy, selector, value string) (name string, ok bool) {
	for _, s := range strategies {
		if err := s.apply(ctx, page, selector, value); err == nil {
			return s.name, true
		}
	}
	return "", false
}

// formFiller populates and submits the search form.
type formFiller struct {
	selectors      Selectors
	strategies     []selectStrategy
	timeout        time.Duration
	captchaTimeout time.Duration
	logger         *logger.Logger
}

func (f *formFiller) fill(ctx context.Context, page browser.Page, req QueryRequest) *StageError {
	opCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	f.choose(opCtx, page, f.selectors.CaseType, req.CaseType)

	if err := page.Fill(opCtx, f.selectors.CaseNumber, req.CaseNumber); err != nil {
		return formError(fmt.Errorf("case number: %w", err), pageHTML(ctx, page))
	}

	f.choose(opCtx, page, f.selectors.CaseYear, req.CaseYear)

	answer, serr := f.captchaAnswer(ctx, page, req.CaptchaText)
	if serr != nil {
		return serr
	}
	if err := page.Fill(opCtx, f.selectors.CaptchaInput, answer); err != nil {
		return formError(fmt.Errorf("captcha: %w", err), pageHTML(ctx, page))
	}

	if err := page.Click(opCtx, f.selectors.Submit); err != nil {
		return formError(fmt.Errorf("submit: %w", err), pageHTML(ctx, page))
	}

	f.logger.Debug("Search form submitted")
	return nil
}

func (f *formFiller) choose(ctx context.Context, page browser.Page, selector, value string) {
	name, ok := chooseOption(ctx, page, f.strategies, selector, value)
	if !ok {
		f.logger.Warn("No option matched, leaving field unchanged", "selector", selector, "value", value)
		return
	}
	f.logger.Debug("Option selected", "selector", selector, "value", value, "strategy", name)
}

// captchaAnswer uses the supplied text verbatim. Otherwise it reads the
// challenge from the page, which this portal often renders as plain text.
func (f *formFiller) captchaAnswer(ctx context.Context, page browser.Page, supplied string) (string, *StageError) {
	if supplied != "" {
		return supplied, nil
	}

	readCtx, cancel := context.WithTimeout(ctx, f.captchaTimeout)
	defer cancel()

	text, err := page.Text(readCtx, f.selectors.CaptchaDisplay)
	if err != nil {
		f.logger.Warn("CAPTCHA not readable", "selector", f.selectors.CaptchaDisplay, "error", err)
		return "", captchaError(msgCaptchaMissing, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", captchaError(msgCaptchaEmpty, nil)
	}

	f.logger.Debug("CAPTCHA read from page", "length", len(text))
	return text, nil
}
