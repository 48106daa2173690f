package scraper

import (
	"fmt"
)

// ErrorKind names where in the pipeline a fetch failed.
type ErrorKind string

const (
	KindNavigation        ErrorKind = "navigation"
	KindForm              ErrorKind = "form"
	KindCaptchaUnreadable ErrorKind = "captcha_unreadable"
	KindTableNotFound     ErrorKind = "table_not_found"
	KindExtraction        ErrorKind = "extraction"
	KindWaitTimeout       ErrorKind = "wait_timeout"
	KindUnexpected        ErrorKind = "unexpected"
)

// User-facing messages.
const (
	msgNoData         = "No matching records found. Please re-check the inputs and try again."
	msgCaptchaEmpty   = "Unable to read CAPTCHA from page; please provide captcha_text (manual input)."
	msgCaptchaMissing = "CAPTCHA not readable automatically; please provide captcha_text (manual input)."
	msgTableNotFound  = "Search result table not found on page."
	msgWaitTimeout    = "Timed out waiting for search results. The court website may be slow or unavailable right now."
)

// StageError is a pipeline failure. Message is safe to show to users.
type StageError struct {
	Kind    ErrorKind
	Message string
	RawHTML string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Result converts the error into an ERROR FetchResult.
func (e *StageError) Result() FetchResult {
	msg := e.Message
	if msg == "" {
		msg = "Unknown error"
	}
	return FetchResult{
		Status:    StatusError,
		Message:   msg,
		ErrorKind: e.Kind,
		RawHTML:   e.RawHTML,
	}
}

func navigationError(err error) *StageError {
	return &StageError{
		Kind:    KindNavigation,
		Message: fmt.Sprintf("Unable to reach court site: %v", err),
		Err:     err,
	}
}

func formError(err error, rawHTML string) *StageError {
	return &StageError{
		Kind:    KindForm,
		Message: fmt.Sprintf("Error submitting form: %v", err),
		RawHTML: rawHTML,
		Err:     err,
	}
}

func captchaError(msg string, err error) *StageError {
	return &StageError{Kind: KindCaptchaUnreadable, Message: msg, Err: err}
}

func tableNotFoundError(err error, rawHTML string) *StageError {
	return &StageError{Kind: KindTableNotFound, Message: msgTableNotFound, RawHTML: rawHTML, Err: err}
}

func waitTimeoutError(err error, rawHTML string) *StageError {
	return &StageError{Kind: KindWaitTimeout, Message: msgWaitTimeout, RawHTML: rawHTML, Err: err}
}

func extractionError(err error, rawHTML string) *StageError {
	return &StageError{
		Kind:    KindExtraction,
		Message: fmt.Sprintf("Failed to extract rows: %v", err),
		RawHTML: rawHTML,
		Err:     err,
	}
}

func unexpectedError(err error, rawHTML string) *StageError {
	if rawHTML == "" {
		rawHTML = "<unavailable>"
	}
	return &StageError{
		Kind:    KindUnexpected,
		Message: fmt.Sprintf("Unexpected error: %v", err),
		RawHTML: rawHTML,
		Err:     err,
	}
}

func noDataResult() FetchResult {
	return FetchResult{Status: StatusNoData, Message: msgNoData}
}
