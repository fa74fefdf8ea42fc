package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kiranshivaraju/keyconsole/internal/gatewaytest"
	"github.com/kiranshivaraju/keyconsole/internal/i18n"
	"github.com/kiranshivaraju/keyconsole/internal/keys"
	"github.com/kiranshivaraju/keyconsole/internal/login"
	"github.com/kiranshivaraju/keyconsole/internal/notice"
	"github.com/kiranshivaraju/keyconsole/internal/prefs"
	"github.com/kiranshivaraju/keyconsole/internal/session"
	"github.com/kiranshivaraju/keyconsole/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	srv    *gatewaytest.Server
	store  *prefs.MemoryStore
	bridge *Bridge
	deps   Deps
	app    *App
}

func newHarness(t *testing.T, opts ...gatewaytest.Option) *harness {
	t.Helper()
	ctx := context.Background()

	h := &harness{
		srv:    gatewaytest.New(t, opts...),
		store:  prefs.NewMemoryStore(),
		bridge: NewBridge(),
	}

	rt, err := i18n.New(ctx, h.store, i18n.WithDefaultLanguage(i18n.English), i18n.WithLocation(time.UTC))
	require.NoError(t, err)

	client := h.srv.Client()
	guard := session.NewGuard(h.store, client, h.bridge)
	loginNotices := notice.NewBoard(time.Minute)
	notices := notice.NewBoard(time.Minute)
	mgr := keys.NewManager(guard, rt, client, notices, keys.WithRefreshInterval(time.Hour))

	h.deps = Deps{
		Bridge:       h.bridge,
		Guard:        guard,
		Login:        login.New(client, guard, rt, loginNotices, h.bridge, login.WithRedirectDelay(0)),
		Keys:         mgr,
		I18n:         rt,
		LoginNotices: loginNotices,
		Notices:      notices,
	}
	h.app = New(ctx, h.deps)
	h.app.Init()

	t.Cleanup(func() {
		h.app.Close()
		mgr.Close()
		h.bridge.Close()
	})
	return h
}

// send feeds msg to the app and returns the resulting command.
func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.app.Update(msg)
	return cmd
}

// finish runs cmd synchronously and feeds its message back.
func (h *harness) finish(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	h.send(cmd())
}

func (h *harness) enterManagement(t *testing.T) {
	t.Helper()
	require.NoError(t, h.deps.Guard.Acquire(context.Background(), h.srv.IssueToken()))
	h.bridge.Navigate(session.RouteManagement)
	h.finish(t, h.send(routeMsg{}))
	require.Equal(t, session.RouteManagement, h.app.route)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(h *harness, s string) {
	for _, r := range s {
		h.send(runes(string(r)))
	}
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

func seededKeys() gatewaytest.Option {
	return gatewaytest.WithKeys(
		models.APIKey{ID: "k1", KeyName: "alpha", APIKey: "sk-alpha-0000000001", IsActive: true, CreatedAt: "2024-03-05T08:09:10Z", TotalRequests: 1500},
		models.APIKey{ID: "k2", KeyName: "beta", APIKey: "sk-beta-00000000002", CreatedAt: "2024-03-06T08:09:10Z"},
	)
}

func TestApp_StartsOnLogin(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, session.RouteLogin, h.app.route)
	view := h.app.View()
	assert.Contains(t, view, "KEY CONSOLE")
	assert.Contains(t, view, "Username")
}

func TestApp_LoginNavigatesToManagement(t *testing.T) {
	h := newHarness(t, seededKeys())

	typeText(h, gatewaytest.DefaultUsername)
	h.send(enter)
	require.Equal(t, fieldPassword, h.app.login.focus, "enter on the username field moves focus")
	typeText(h, gatewaytest.DefaultPassword)

	cmd := h.send(enter)
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	h.send(batch[0]())

	assert.Equal(t, session.StateAuthenticated, h.deps.Guard.State())
	assert.Eventually(t, func() bool {
		return h.bridge.Route() == session.RouteManagement
	}, time.Second, 5*time.Millisecond)

	h.finish(t, h.send(routeMsg{}))
	view := h.app.View()
	assert.Contains(t, view, "alpha")
	assert.Contains(t, view, "beta")
}

func TestApp_BadLoginStaysOnLogin(t *testing.T) {
	h := newHarness(t)

	typeText(h, "admin")
	h.send(enter)
	typeText(h, "wrong")

	batch := h.send(enter)().(tea.BatchMsg)
	h.send(batch[0]())

	assert.Equal(t, session.RouteLogin, h.bridge.Route())
	assert.Empty(t, h.app.login.password.Value(), "password is cleared after a rejected attempt")
	_, ok := h.deps.LoginNotices.Current()
	assert.True(t, ok)
}

func TestApp_RestoredSessionSkipsLogin(t *testing.T) {
	h := newHarness(t, seededKeys())
	require.NoError(t, h.store.Set(context.Background(), prefs.TokenKey, h.srv.IssueToken()))

	assert.Equal(t, session.StateAuthenticated, h.deps.Guard.Bootstrap(context.Background()))
	h.finish(t, h.send(routeMsg{}))

	assert.Equal(t, session.RouteManagement, h.app.route)
	assert.NotNil(t, h.app.stopRefresh)
	assert.Len(t, h.app.mgmt.view.Rows, 2)
}

func TestApp_ManagementWithoutSessionFallsBack(t *testing.T) {
	h := newHarness(t)

	h.bridge.Navigate(session.RouteManagement)
	h.send(routeMsg{})

	assert.Equal(t, session.RouteLogin, h.app.route)
	assert.Nil(t, h.app.stopRefresh)
}

func TestApp_SwitchLanguageRelabels(t *testing.T) {
	h := newHarness(t)

	h.finish(t, h.send(tea.KeyMsg{Type: tea.KeyCtrlL}))

	assert.Equal(t, i18n.Chinese, h.deps.I18n.Language())
	assert.Contains(t, h.app.View(), "用户名")
}

func TestApp_SelectionSurvivesRedraw(t *testing.T) {
	h := newHarness(t, seededKeys())
	h.enterManagement(t)

	id, ok := h.app.mgmt.selectedID()
	require.True(t, ok, "first row is selected on entry")
	assert.Equal(t, "k1", id)

	h.send(tea.KeyMsg{Type: tea.KeyDown})
	h.send(redrawMsg{})
	id, ok = h.app.mgmt.selectedID()
	require.True(t, ok)
	assert.Equal(t, "k2", id, "redraw keeps the selected row")

	h.srv.SetKeys(models.APIKey{ID: "k1", KeyName: "alpha", APIKey: "sk-alpha-0000000001"})
	h.finish(t, h.send(runes("r")))
	id, ok = h.app.mgmt.selectedID()
	require.True(t, ok)
	assert.Equal(t, "k1", id, "selection clamps to the remaining rows")

	h.srv.SetKeys()
	h.finish(t, h.send(runes("r")))
	_, ok = h.app.mgmt.selectedID()
	assert.False(t, ok)

	h.srv.SetKeys(models.APIKey{ID: "k3", KeyName: "gamma", APIKey: "sk-gamma-000000003"})
	h.finish(t, h.send(runes("r")))
	id, ok = h.app.mgmt.selectedID()
	require.True(t, ok, "selection recovers once rows return")
	assert.Equal(t, "k3", id)
}

func TestApp_DeleteAsksForSelectedRow(t *testing.T) {
	h := newHarness(t, seededKeys())
	h.enterManagement(t)

	assert.NotNil(t, h.send(runes("d")), "delete is dispatched for the selected row")
	h.send(redrawMsg{})
	assert.NotNil(t, h.send(runes("e")), "edit is dispatched after a redraw")
}

func TestApp_CreateShowsGeneratedSecret(t *testing.T) {
	h := newHarness(t, seededKeys())
	h.enterManagement(t)

	h.send(runes("n"))
	require.Equal(t, modeCreate, h.app.mgmt.mode)
	typeText(h, "gamma")
	h.finish(t, h.send(enter))

	require.Equal(t, modeSecret, h.app.mgmt.mode)
	var created models.APIKey
	for _, k := range h.srv.Keys() {
		if k.KeyName == "gamma" {
			created = k
		}
	}
	require.NotEmpty(t, created.APIKey)
	assert.Contains(t, h.app.View(), created.APIKey)
	assert.Len(t, h.app.mgmt.view.Rows, 3)

	h.send(runes("x"))
	assert.Equal(t, modeBrowse, h.app.mgmt.mode)
	assert.Empty(t, h.app.mgmt.secret)
}

func TestApp_CreateCancel(t *testing.T) {
	h := newHarness(t, seededKeys())
	h.enterManagement(t)

	h.send(runes("n"))
	h.send(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, modeBrowse, h.app.mgmt.mode)
	assert.False(t, h.deps.Keys.CreateOpen())
}

func TestApp_EditTogglesStatusAndSaves(t *testing.T) {
	h := newHarness(t, seededKeys())
	h.enterManagement(t)

	h.finish(t, h.send(runes("e")))
	require.Equal(t, modeEdit, h.app.mgmt.mode)
	assert.Equal(t, "alpha", h.app.mgmt.editName.Value())
	assert.True(t, h.app.mgmt.editActive)

	h.send(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.Equal(t, keys.Revealed, h.app.mgmt.edit.Reveal)
	assert.Contains(t, h.app.View(), "sk-alpha-0000000001")

	h.send(tea.KeyMsg{Type: tea.KeyCtrlA})
	h.finish(t, h.send(enter))

	assert.Equal(t, modeBrowse, h.app.mgmt.mode)
	assert.False(t, h.srv.Keys()[0].IsActive)
}

func TestApp_ConfirmReply(t *testing.T) {
	h := newHarness(t, seededKeys())
	h.enterManagement(t)

	reply := make(chan bool, 1)
	h.send(confirmMsg{prompt: "delete?", reply: reply})
	require.Equal(t, modeConfirm, h.app.mgmt.mode)
	assert.Contains(t, h.app.View(), "delete?")

	h.send(runes("y"))
	assert.True(t, <-reply)
	assert.Equal(t, modeBrowse, h.app.mgmt.mode)

	h.send(confirmMsg{prompt: "delete?", reply: reply})
	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, <-reply)
}

func TestApp_ConfirmOutsideManagementDeclines(t *testing.T) {
	h := newHarness(t)

	reply := make(chan bool, 1)
	h.send(confirmMsg{prompt: "delete?", reply: reply})
	assert.False(t, <-reply)
}

func TestApp_DeleteWithoutProgramIsCancelled(t *testing.T) {
	h := newHarness(t, seededKeys())
	h.enterManagement(t)

	h.finish(t, h.send(runes("d")))

	assert.Len(t, h.srv.Keys(), 2)
	assert.Equal(t, 0, h.srv.Calls(gatewaytest.RouteDeleteKey))
}

func TestApp_LogoutReturnsToLogin(t *testing.T) {
	h := newHarness(t, seededKeys())
	h.enterManagement(t)

	h.finish(t, h.send(runes("o")))
	assert.Equal(t, session.StateUnauthenticated, h.deps.Guard.State())
	assert.Equal(t, session.RouteLogin, h.bridge.Route())

	h.send(routeMsg{})
	assert.Equal(t, session.RouteLogin, h.app.route)
	assert.Nil(t, h.app.stopRefresh)

	_, ok, err := h.store.Get(context.Background(), prefs.TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBridge_ConfirmWithoutProgram(t *testing.T) {
	b := NewBridge()
	assert.False(t, b.Confirm("sure?"))

	b.Navigate(session.RouteManagement)
	assert.Equal(t, session.RouteManagement, b.Route())
}
