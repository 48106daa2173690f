package scraper

import (
	"context"
	"time"

	"github.com/JustJay7/court-status-fetcher/internal/browser"
	"github.com/JustJay7/court-status-fetcher/pkg/logger"
)

// tableState is the verdict of one content poll.
type tableState int

const (
	tablePending tableState = iota
	tableEmpty
	tablePopulated
	tableChanged
)

func (s tableState) String() string {
	switch s {
	case tableEmpty:
		return "empty"
	case tablePopulated:
		return "populated"
	case tableChanged:
		return "changed"
	}
	return "pending"
}

func (s tableState) settled() bool {
	return s != tablePending
}

// assessBody decides whether the results body has finished refreshing.
// body is a probe of the tbody innerHTML; baseline is the markup captured
// before polling began. The checks run in priority order: an explicit
// "no results" cell with text, a first row whose second cell has text, and
// finally any change from the baseline.
func assessBody(body snapshot, baseline, emptyCell string) tableState {
	if !body.Found {
		return tablePending
	}

	if doc, err := parseBody(body.HTML); err == nil {
		empty := doc.Find(emptyCell)
		if empty.Length() > 0 && cleanText(empty.First().Text()) != "" {
			return tableEmpty
		}

		cells := bodyRows(doc).First().ChildrenFiltered("td")
		if cells.Length() >= 2 && cleanText(cells.Eq(1).Text()) != "" {
			return tablePopulated
		}
	}

	if body.HTML != baseline {
		return tableChanged
	}
	return tablePending
}

// waiter blocks until the results table has settled after a search.
type waiter struct {
	selectors      Selectors
	timeout        time.Duration
	spinnerTimeout time.Duration
	interval       time.Duration
	logger         *logger.Logger
}

// wait runs the table, spinner and content phases in order.
func (w *waiter) wait(ctx context.Context, page browser.Page) *StageError {
	tableCtx, cancel := context.WithTimeout(ctx, w.timeout)
	err := page.WaitExists(tableCtx, w.selectors.ResultsTable)
	cancel()
	if err != nil {
		w.logger.Warn("Results table never appeared", "selector", w.selectors.ResultsTable, "error", err)
		return tableNotFoundError(err, pageHTML(ctx, page))
	}

	w.awaitSpinner(ctx, page)

	state, err := w.awaitContent(ctx, page)
	if err != nil {
		w.logger.Warn("Timed out waiting for results", "error", err)
		return waitTimeoutError(err, pageHTML(ctx, page))
	}
	w.logger.Debug("Results table settled", "state", state.String())
	return nil
}

// awaitSpinner is best effort. Many searches finish before the processing
// indicator can be observed, so never seeing it is not a failure.
func (w *waiter) awaitSpinner(ctx context.Context, page browser.Page) {
	if w.selectors.Processing == "" {
		return
	}

	seenCtx, cancel := context.WithTimeout(ctx, w.spinnerTimeout)
	err := page.WaitVisible(seenCtx, w.selectors.Processing)
	cancel()
	if err != nil {
		w.logger.Debug("Processing indicator not observed")
		return
	}

	hiddenCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if err := page.WaitHidden(hiddenCtx, w.selectors.Processing); err != nil {
		// The content poll below has its own deadline.
		w.logger.Debug("Processing indicator did not hide", "error", err)
	}
}

func (w *waiter) awaitContent(ctx context.Context, page browser.Page) (tableState, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	tbody := w.selectors.tbodySelector()

	baseline := ""
	if snap, err := takeSnapshot(ctx, page, tbody, false); err == nil && snap.Found {
		baseline = snap.HTML
	}

	return pollUntil(ctx, w.interval, func(ctx context.Context) (tableState, error) {
		snap, err := takeSnapshot(ctx, page, tbody, false)
		if err != nil {
			// Transient evaluation failures are retried until the deadline.
			return tablePending, nil
		}
		return assessBody(snap, baseline, w.selectors.EmptyCell), nil
	})
}

// pollUntil calls probe every interval until it reports a settled state,
// returns an error, or ctx ends.
func pollUntil(ctx context.Context, interval time.Duration, probe func(context.Context) (tableState, error)) (tableState, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		state, err := probe(ctx)
		if err != nil {
			return tablePending, err
		}
		if state.settled() {
			return state, nil
		}

		select {
		case <-ctx.Done():
			return tablePending, ctx.Err()
		case <-ticker.C:
		}
	}
}
