// Package browser defines the browser automation surface the scraper drives
// and a go-rod implementation of it.
//
// Every blocking method takes a context; its deadline is the timeout for
// that single wait.
package browser

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a selector matches nothing before the
// context expires.
var ErrNotFound = errors.New("element not found")

// LaunchOptions controls how a browser instance is started.
type LaunchOptions struct {
	Headless bool
}

// Launcher starts isolated browser sessions.
type Launcher interface {
	Launch(ctx context.Context, opts LaunchOptions) (Session, error)
}

// Session is one browser process. It must be closed on every exit path.
type Session interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single tab.
type Page interface {
	// Navigate loads url and returns once the DOM has been constructed.
	// It does not wait for subresources.
	Navigate(ctx context.Context, url string) error

	SelectByValue(ctx context.Context, selector, value string) error
	SelectByLabel(ctx context.Context, selector, label string) error
	Fill(ctx context.Context, selector, text string) error
	Click(ctx context.Context, selector string) error

	// Text returns the visible text of the first match.
	Text(ctx context.Context, selector string) (string, error)

	WaitExists(ctx context.Context, selector string) error
	WaitVisible(ctx context.Context, selector string) error
	// WaitHidden succeeds immediately when nothing matches selector.
	WaitHidden(ctx context.Context, selector string) error

	// Eval runs a JavaScript function expression with args and returns its
	// result coerced to a string.
	Eval(ctx context.Context, js string, args ...interface{}) (string, error)

	// HTML returns the full page markup.
	HTML(ctx context.Context) (string, error)
}
