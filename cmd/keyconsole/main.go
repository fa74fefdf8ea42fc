// Package main is the entrypoint for the key console.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/kiranshivaraju/keyconsole/internal/config"
	"github.com/kiranshivaraju/keyconsole/internal/gateway"
	"github.com/kiranshivaraju/keyconsole/internal/i18n"
	"github.com/kiranshivaraju/keyconsole/internal/keys"
	"github.com/kiranshivaraju/keyconsole/internal/login"
	"github.com/kiranshivaraju/keyconsole/internal/notice"
	"github.com/kiranshivaraju/keyconsole/internal/prefs"
	"github.com/kiranshivaraju/keyconsole/internal/session"
	"github.com/kiranshivaraju/keyconsole/internal/tui"
)

var errNotTerminal = errors.New("stdout is not a terminal")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "keyconsole:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, in, out *os.File) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logOut, err := openLog(cfg.Log)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logOut.Close()
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	})))
	slog.Info("config loaded", "api_base", cfg.API.BaseURL, "prefs", cfg.Prefs.Backend)

	if !term.IsTerminal(int(out.Fd())) {
		return errNotTerminal
	}

	// 2. Open preference store
	store, err := prefs.Open(ctx, cfg.Prefs)
	if err != nil {
		return fmt.Errorf("open prefs: %w", err)
	}
	defer store.Close()

	// 3. Wire runtimes
	c, err := wire(ctx, cfg, store)
	if err != nil {
		return err
	}
	defer c.close()

	// 4. Run the UI until the operator quits
	program := tea.NewProgram(c.app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	c.bridge.Attach(program)

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run ui: %w", err)
	}
	slog.Info("console exited")
	return nil
}

type console struct {
	app    *tui.App
	bridge *tui.Bridge
	keys   *keys.Manager
}

func (c *console) close() {
	c.bridge.Close()
	c.app.Close()
	c.keys.Close()
}

// wire builds every runtime around store and the configured admin API.
func wire(ctx context.Context, cfg *config.Config, store prefs.Store) (*console, error) {
	client := gateway.NewHTTPClient(cfg.API.BaseURL, cfg.API.Timeout)

	rt, err := i18n.New(ctx, store, i18n.WithDefaultLanguage(i18n.Language(cfg.Language)))
	if err != nil {
		return nil, fmt.Errorf("init i18n: %w", err)
	}

	bridge := tui.NewBridge()
	loginNotices := notice.NewBoard(cfg.Session.LoginNoticeTTL)
	notices := notice.NewBoard(cfg.Session.NoticeTTL)

	guard := session.NewGuard(store, client, bridge)
	flow := login.New(client, guard, rt, loginNotices, bridge, login.WithRedirectDelay(cfg.Session.RedirectDelay))
	mgr := keys.NewManager(guard, rt, client, notices, keys.WithRefreshInterval(cfg.Session.RefreshInterval))

	app := tui.New(ctx, tui.Deps{
		Bridge:       bridge,
		Guard:        guard,
		Login:        flow,
		Keys:         mgr,
		I18n:         rt,
		LoginNotices: loginNotices,
		Notices:      notices,
	})
	return &console{app: app, bridge: bridge, keys: mgr}, nil
}

func openLog(cfg config.LogConfig) (io.WriteCloser, error) {
	if cfg.File == "" {
		return nopCloser{io.Discard}, nil
	}
	return os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
