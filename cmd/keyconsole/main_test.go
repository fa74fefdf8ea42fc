package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/kiranshivaraju/keyconsole/internal/config"
	"github.com/kiranshivaraju/keyconsole/internal/gatewaytest"
	"github.com/kiranshivaraju/keyconsole/internal/prefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("KEYCONSOLE_API_BASE", "not a url")

	err := run(context.Background(), os.Stdin, os.Stdout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRun_RequiresTerminal(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KEYCONSOLE_LOG_FILE", filepath.Join(dir, "console.log"))
	t.Setenv("KEYCONSOLE_PREFS_BACKEND", "memory")

	out, err := os.CreateTemp(dir, "out")
	require.NoError(t, err)
	defer out.Close()

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	err = run(context.Background(), os.Stdin, out)
	assert.ErrorIs(t, err, errNotTerminal)

	logged, err := os.ReadFile(filepath.Join(dir, "console.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logged), "config loaded")
}

func TestWire_RestoresLanguage(t *testing.T) {
	srv := gatewaytest.New(t)
	t.Setenv("KEYCONSOLE_API_BASE", srv.URL())
	t.Setenv("KEYCONSOLE_PREFS_BACKEND", "memory")

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx := context.Background()
	store := prefs.NewMemoryStore()
	require.NoError(t, store.Set(ctx, prefs.LanguageKey, "en"))

	c, err := wire(ctx, cfg, store)
	require.NoError(t, err)
	defer c.close()

	assert.Contains(t, c.app.View(), "Username")
}

func TestOpenLog_EmptyPathDiscards(t *testing.T) {
	w, err := openLog(config.LogConfig{})
	require.NoError(t, err)
	_, err = w.Write([]byte("x"))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
}
