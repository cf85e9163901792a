package models

import (
	"errors"
	"fmt"
	"time"
)

// MissingFieldError reports that a mandatory selector matched nothing.
type MissingFieldError struct {
	Field    string
	Selector string
	Detail   string
}

func (e *MissingFieldError) Error() string {
	msg := fmt.Sprintf("missing field %q (selector %q)", e.Field, e.Selector)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// NumericConversionError reports a value that was present but could not be
// turned into a number, usually because of unexpected residual characters.
type NumericConversionError struct {
	Field string
	Raw   string
	Err   error
}

func (e *NumericConversionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("field %q: no numeric value in %q", e.Field, e.Raw)
	}
	return fmt.Sprintf("field %q: cannot convert %q: %v", e.Field, e.Raw, e.Err)
}

func (e *NumericConversionError) Unwrap() error { return e.Err }

// NoListingsFoundError reports a search-results page without listing links.
// The selector has most likely gone stale.
type NoListingsFoundError struct {
	Page     int
	URL      string
	Selector string
}

func (e *NoListingsFoundError) Error() string {
	return fmt.Sprintf("no listing links on page %d (%s) for selector %q", e.Page, e.URL, e.Selector)
}

// LoginUiError reports a login control that did not appear in time.
type LoginUiError struct {
	Step     string
	Selector string
	Err      error
}

func (e *LoginUiError) Error() string {
	return fmt.Sprintf("login step %q: control %q unavailable: %v", e.Step, e.Selector, e.Err)
}

func (e *LoginUiError) Unwrap() error { return e.Err }

// AuthenticationFailedError reports that the logged-in marker never appeared
// after the login form was submitted.
type AuthenticationFailedError struct {
	URL    string
	Waited time.Duration
}

func (e *AuthenticationFailedError) Error() string {
	return fmt.Sprintf("authentication failed at %s after %v: check the account credentials", e.URL, e.Waited)
}

// NavigationTimeoutError reports that a page or element wait exceeded its bound.
type NavigationTimeoutError struct {
	URL     string
	WaitFor string
	Timeout time.Duration
	Err     error
}

func (e *NavigationTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v loading %s (waiting for %q): %v", e.Timeout, e.URL, e.WaitFor, e.Err)
}

func (e *NavigationTimeoutError) Unwrap() error { return e.Err }

// IsFatal reports whether err belongs to the crawl's error taxonomy.
// All of them end the run.
func IsFatal(err error) bool {
	var (
		missing *MissingFieldError
		numeric *NumericConversionError
		noLinks *NoListingsFoundError
		loginUI *LoginUiError
		auth    *AuthenticationFailedError
		nav     *NavigationTimeoutError
	)
	return errors.As(err, &missing) ||
		errors.As(err, &numeric) ||
		errors.As(err, &noLinks) ||
		errors.As(err, &loginUI) ||
		errors.As(err, &auth) ||
		errors.As(err, &nav)
}
