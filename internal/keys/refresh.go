package keys

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/keyconsole/internal/session"
)

// Run refreshes the list and dashboard every refresh interval until ctx is
// done. Ticks are independent of operator actions and are not paused by them.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A tick in flight when the loop stops still completes.
			err := m.Refresh(context.WithoutCancel(ctx))
			switch {
			case err == nil, errors.Is(err, session.ErrNoSession):
			default:
				slog.Debug("periodic refresh", "error", err)
			}
		}
	}
}

// Start runs the refresh loop in the background until stop is called or ctx
// is done. stop does not wait for a refresh already dispatched.
func (m *Manager) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	go m.Run(ctx)
	return cancel
}
