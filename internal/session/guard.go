// Package session gates the console behind the operator's bearer token.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kiranshivaraju/keyconsole/internal/gateway"
	"github.com/kiranshivaraju/keyconsole/internal/prefs"
)

// ErrNoSession is returned when a protected operation runs without a token.
var ErrNoSession = errors.New("no active session")

// State is the guard's authentication state.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
)

func (s State) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Verifier checks a token against the gateway.
type Verifier interface {
	Verify(ctx context.Context, token string) error
}

// Guard owns the session token. It is the only component that reads or writes
// prefs.TokenKey. Safe for concurrent use.
type Guard struct {
	store    prefs.Store
	verifier Verifier
	nav      Navigator

	mu    sync.RWMutex
	state State
	token string
}

func NewGuard(store prefs.Store, verifier Verifier, nav Navigator) *Guard {
	return &Guard{store: store, verifier: verifier, nav: nav}
}

// Bootstrap restores a persisted session. Without a stored token it makes no
// network call. A stored token is verified; any failure, including transport
// errors, erases it.
func (g *Guard) Bootstrap(ctx context.Context) State {
	token, found, err := g.store.Get(ctx, prefs.TokenKey)
	if err != nil {
		slog.Warn("reading session token", "error", err)
		return g.setState(StateUnauthenticated, "")
	}
	if !found || token == "" {
		return g.setState(StateUnauthenticated, "")
	}

	if err := g.verifier.Verify(ctx, token); err != nil {
		slog.Info("stored session rejected", "error", err)
		g.erase(ctx)
		return g.setState(StateUnauthenticated, "")
	}

	g.setState(StateAuthenticated, token)
	g.nav.Navigate(RouteManagement)
	return StateAuthenticated
}

// Acquire persists a freshly issued token and marks the session authenticated.
func (g *Guard) Acquire(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("acquire session: empty token")
	}
	if err := g.store.Set(ctx, prefs.TokenKey, token); err != nil {
		// The session still works for this run.
		slog.Warn("persisting session token", "error", err)
	}
	g.setState(StateAuthenticated, token)
	return nil
}

// Invalidate erases the token and returns the operator to sign-in.
func (g *Guard) Invalidate(ctx context.Context) {
	g.erase(ctx)
	g.setState(StateUnauthenticated, "")
	g.nav.Navigate(RouteLogin)
}

// Logout ends the session at the operator's request.
func (g *Guard) Logout(ctx context.Context) {
	slog.Info("operator logged out")
	g.Invalidate(ctx)
}

// Require returns the token for a protected view. Without one it redirects to
// sign-in and returns ErrNoSession.
func (g *Guard) Require(ctx context.Context) (string, error) {
	token := g.Token()
	if token != "" {
		return token, nil
	}

	if stored, found, err := g.store.Get(ctx, prefs.TokenKey); err == nil && found && stored != "" {
		g.setState(StateAuthenticated, stored)
		return stored, nil
	}

	g.nav.Navigate(RouteLogin)
	return "", ErrNoSession
}

// HandleError invalidates the session when err is a gateway session rejection
// and reports whether it did.
func (g *Guard) HandleError(ctx context.Context, err error) bool {
	if !errors.Is(err, gateway.ErrUnauthorized) {
		return false
	}
	slog.Warn("session rejected by gateway", "error", err)
	g.Invalidate(ctx)
	return true
}

// Token returns the current bearer token, or "" when unauthenticated.
func (g *Guard) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// State returns the current authentication state.
func (g *Guard) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

func (g *Guard) setState(s State, token string) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = s
	g.token = token
	return s
}

func (g *Guard) erase(ctx context.Context) {
	if err := g.store.Delete(ctx, prefs.TokenKey); err != nil {
		slog.Warn("erasing session token", "error", err)
	}
}
