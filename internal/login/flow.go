// Package login runs the operator sign-in form.
package login

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kiranshivaraju/keyconsole/internal/gateway"
	"github.com/kiranshivaraju/keyconsole/internal/notice"
	"github.com/kiranshivaraju/keyconsole/internal/session"
)

// DefaultRedirectDelay keeps the success notice readable before the screen changes.
const DefaultRedirectDelay = time.Second

// Kind classifies the result of a sign-in attempt.
type Kind int

const (
	OutcomeSuccess Kind = iota
	OutcomeInvalid
	OutcomeRejected
	OutcomeNetworkError
	OutcomeBusy
)

func (k Kind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeRejected:
		return "rejected"
	case OutcomeNetworkError:
		return "network_error"
	case OutcomeBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Outcome is what Submit reports. Message is the localized text shown to the
// operator, empty for OutcomeBusy.
type Outcome struct {
	Kind    Kind
	Message string
}

// Authenticator exchanges credentials for a bearer token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// Translator resolves message keys in the active language.
type Translator interface {
	Translate(key string, fallback ...string) string
}

// Option configures a Flow.
type Option func(*Flow)

// WithRedirectDelay sets how long the success notice shows before navigating.
func WithRedirectDelay(d time.Duration) Option {
	return func(f *Flow) { f.delay = d }
}

// Flow submits credentials and hands the issued token to the session guard.
type Flow struct {
	auth    Authenticator
	guard   *session.Guard
	tr      Translator
	notices notice.Notifier
	nav     session.Navigator
	delay   time.Duration

	mu      sync.Mutex
	loading bool
}

func New(auth Authenticator, guard *session.Guard, tr Translator, notices notice.Notifier, nav session.Navigator, opts ...Option) *Flow {
	f := &Flow{
		auth:    auth,
		guard:   guard,
		tr:      tr,
		notices: notices,
		nav:     nav,
		delay:   DefaultRedirectDelay,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Loading reports whether a sign-in request is in flight.
func (f *Flow) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Submit signs the operator in. It never fails past the caller: every
// failure becomes a notice and an Outcome. While a request is in flight
// further submissions are ignored.
func (f *Flow) Submit(ctx context.Context, username, password string) Outcome {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	if username == "" || password == "" {
		return f.fail(OutcomeInvalid, f.tr.Translate("missing_credentials"))
	}

	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return Outcome{Kind: OutcomeBusy}
	}
	f.loading = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.loading = false
		f.mu.Unlock()
	}()

	token, err := f.auth.Login(ctx, username, password)
	if err != nil {
		slog.Info("sign-in failed", "username", username, "error", err)
		if gateway.IsTransport(err) {
			return f.fail(OutcomeNetworkError, f.tr.Translate("network_error"))
		}
		msg := gateway.ServerMessage(err)
		if msg == "" {
			msg = f.tr.Translate("login_failed")
		}
		return f.fail(OutcomeRejected, msg)
	}

	if err := f.guard.Acquire(ctx, token); err != nil {
		slog.Error("acquiring session", "error", err)
		return f.fail(OutcomeRejected, f.tr.Translate("login_failed"))
	}

	msg := f.tr.Translate("login_success")
	f.notices.Notify(notice.Success, msg)
	slog.Info("operator signed in", "username", username)

	time.AfterFunc(f.delay, func() { f.nav.Navigate(session.RouteManagement) })
	return Outcome{Kind: OutcomeSuccess, Message: msg}
}

func (f *Flow) fail(kind Kind, msg string) Outcome {
	f.notices.Notify(notice.Error, msg)
	return Outcome{Kind: kind, Message: msg}
}
