package realestate

import (
	"context"
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"realestate-scraper/extract"
	"realestate-scraper/models"
	"realestate-scraper/utils"
)

// Login controls on the valuation site.
const (
	accountMenuSelector = `span.user-icon`
	loginLinkSelector   = `a[class="login_pop cboxElement"]`
	emailInputSelector  = `input.text`
	passwordSelector    = `input.password`
	submitSelector      = `input[name="login"]`
)

// ErrSessionFailed is returned once a session has failed to authenticate.
// A failed session is never retried.
var ErrSessionFailed = errors.New("session: authentication already failed")

// SessionState is the authentication state of the valuation-site session.
type SessionState int

const (
	StateUnknown SessionState = iota
	StateUnauthenticated
	StateAuthenticating
	StateAuthenticated
	StateFailed
)

func (s SessionState) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Credentials for the valuation site. They are supplied once at startup and
// never printed.
type Credentials struct {
	Email    string
	Password string
}

func (c Credentials) String() string   { return "Credentials{redacted}" }
func (c Credentials) GoString() string { return c.String() }

// Session tracks whether the browser is logged in to the valuation site and
// performs the login flow when it is not.
type Session struct {
	creds  Credentials
	wait   utils.Poller
	logger *utils.Logger
	state  SessionState
}

// NewSession creates a session in the Unknown state. wait bounds the
// post-login check.
func NewSession(creds Credentials, wait utils.Poller, logger *utils.Logger) *Session {
	return &Session{creds: creds, wait: wait, logger: logger}
}

// State returns the current state.
func (s *Session) State() SessionState {
	return s.state
}

// CheckStatus inspects the logged-in marker of doc and returns either
// StateAuthenticated or StateUnauthenticated. Outside of a login attempt or
// a failure, the observation becomes the session state.
func (s *Session) CheckStatus(doc *goquery.Document) SessionState {
	status := StateUnauthenticated
	if extract.LoggedIn(doc) {
		status = StateAuthenticated
	}
	if s.state != StateFailed && s.state != StateAuthenticating {
		s.state = status
	}
	return status
}

// Login fills and submits the login dialog. It is only valid from the
// Unauthenticated state. A control that never appears is a LoginUiError.
func (s *Session) Login(ctx context.Context, b Browser) error {
	if s.state != StateUnauthenticated {
		return fmt.Errorf("session: login not allowed in state %s", s.state)
	}
	s.state = StateAuthenticating
	s.logger.Info("[session] Logging in to the valuation site")

	steps := []struct {
		name     string
		selector string
		value    string
		fill     bool
	}{
		{name: "open account menu", selector: accountMenuSelector},
		{name: "open login dialog", selector: loginLinkSelector},
		{name: "enter email", selector: emailInputSelector, value: s.creds.Email, fill: true},
		{name: "enter password", selector: passwordSelector, value: s.creds.Password, fill: true},
		{name: "submit", selector: submitSelector},
	}

	for _, step := range steps {
		var err error
		if step.fill {
			err = b.Fill(ctx, step.selector, step.value)
		} else {
			err = b.Click(ctx, step.selector)
		}
		if err != nil {
			s.state = StateFailed
			return &models.LoginUiError{Step: step.name, Selector: step.selector, Err: err}
		}
		s.logger.Debug("[session] %s", step.name)
	}
	return nil
}

// Ensure makes sure the session is authenticated before valuation data is
// read from doc, the page just loaded from pageURL. It returns the document
// to read from: doc itself when already logged in, otherwise the page as
// re-read after a successful login.
func (s *Session) Ensure(ctx context.Context, b Browser, pageURL string, doc *goquery.Document) (*goquery.Document, error) {
	if s.state == StateFailed {
		return nil, ErrSessionFailed
	}

	if s.CheckStatus(doc) == StateAuthenticated {
		return doc, nil
	}

	if err := s.Login(ctx, b); err != nil {
		return nil, err
	}

	var current *goquery.Document
	err := s.wait.Until(ctx, func(ctx context.Context) (bool, error) {
		d, err := b.Current(ctx)
		if err != nil {
			return false, err
		}
		current = d
		return s.CheckStatus(d) == StateAuthenticated, nil
	})

	switch {
	case errors.Is(err, utils.ErrWaitTimeout):
		s.state = StateFailed
		s.logger.Error("[session] Login failed: check MANSION_REVIEW_EMAIL and MANSION_REVIEW_PASSWORD")
		return nil, &models.AuthenticationFailedError{URL: pageURL, Waited: s.wait.Timeout}
	case err != nil:
		s.state = StateFailed
		return nil, fmt.Errorf("session: re-read page after login: %w", err)
	}

	s.state = StateAuthenticated
	s.logger.Info("[session] Login succeeded")
	return current, nil
}
