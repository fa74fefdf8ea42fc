// Package tui is the console's terminal interface.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kiranshivaraju/keyconsole/internal/i18n"
	"github.com/kiranshivaraju/keyconsole/internal/keys"
	"github.com/kiranshivaraju/keyconsole/internal/login"
	"github.com/kiranshivaraju/keyconsole/internal/notice"
	"github.com/kiranshivaraju/keyconsole/internal/session"
)

// Deps are the runtimes the views drive.
type Deps struct {
	Bridge       *Bridge
	Guard        *session.Guard
	Login        *login.Flow
	Keys         *keys.Manager
	I18n         *i18n.Runtime
	LoginNotices *notice.Board
	Notices      *notice.Board
}

// App is the bubbletea model for the console.
type App struct {
	ctx  context.Context
	deps Deps

	route  session.Route
	keymap keyMap
	help   help.Model

	width  int
	height int

	login loginScreen
	mgmt  managementScreen

	stopRefresh func()
	unsubscribe []func()
}

// New builds the app starting on the sign-in screen. ctx bounds every request
// the views issue.
func New(ctx context.Context, deps Deps) *App {
	a := &App{
		ctx:    ctx,
		deps:   deps,
		route:  session.RouteLogin,
		keymap: newKeyMap(deps.I18n),
		help:   help.New(),
		login:  newLoginScreen(),
		mgmt:   newManagementScreen(),
	}
	a.login.relabel(deps.I18n)
	a.mgmt.relabel(deps.I18n)

	redraw := func() { deps.Bridge.Redraw() }
	a.unsubscribe = []func(){
		deps.I18n.Subscribe(func(i18n.Language) { redraw() }),
		deps.Keys.OnChange(redraw),
		deps.LoginNotices.Subscribe(func(notice.Notice) { redraw() }),
		deps.Notices.Subscribe(func(notice.Notice) { redraw() }),
	}
	return a
}

// Close stops background work started by the views.
func (a *App) Close() {
	if a.stopRefresh != nil {
		a.stopRefresh()
		a.stopRefresh = nil
	}
	for _, fn := range a.unsubscribe {
		fn()
	}
	a.unsubscribe = nil
}

// Init restores a persisted session, if any.
func (a *App) Init() tea.Cmd {
	guard, ctx := a.deps.Guard, a.ctx
	return tea.Batch(
		func() tea.Msg { return bootstrapMsg{state: guard.Bootstrap(ctx)} },
		a.login.focusCmd(),
	)
}

// Update handles a message.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		a.mgmt.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keymap.ForceQuit) {
			return a, tea.Quit
		}
		if key.Matches(msg, a.keymap.Language) {
			return a, a.switchLanguage()
		}

	case routeMsg:
		return a, a.follow(a.deps.Bridge.Route())

	case redrawMsg:
		a.sync()
		return a, nil

	case confirmMsg:
		if a.route != session.RouteManagement {
			msg.reply <- false
			return a, nil
		}

	case bootstrapMsg:
		// Bootstrap navigates on success.
		return a, nil

	case opDoneMsg:
		if msg.op == opLanguage {
			a.sync()
			return a, nil
		}
	}

	switch a.route {
	case session.RouteManagement:
		return a, a.updateManagement(msg)
	default:
		return a, a.updateLogin(msg)
	}
}

// follow switches screens. Entering management starts the refresh loop;
// leaving it stops the loop and drops any open forms.
func (a *App) follow(route session.Route) tea.Cmd {
	if route == a.route {
		return nil
	}
	a.route = route

	switch route {
	case session.RouteManagement:
		if _, err := a.deps.Guard.Require(a.ctx); err != nil {
			a.route = session.RouteLogin
			return a.login.focusCmd()
		}
		a.mgmt.reset()
		a.sync()
		if a.stopRefresh == nil {
			a.stopRefresh = a.deps.Keys.Start(a.ctx)
		}
		return a.run(opRefresh, func(ctx context.Context) opDoneMsg {
			return opDoneMsg{err: a.deps.Keys.Refresh(ctx)}
		})

	default:
		if a.stopRefresh != nil {
			a.stopRefresh()
			a.stopRefresh = nil
		}
		a.deps.Keys.CloseEdit()
		a.deps.Keys.CloseCreate()
		a.login.reset()
		return a.login.focusCmd()
	}
}

// sync re-reads runtime state after a change signal.
func (a *App) sync() {
	a.keymap = newKeyMap(a.deps.I18n)
	a.login.relabel(a.deps.I18n)
	a.mgmt.relabel(a.deps.I18n)
	a.mgmt.sync(a.deps.Keys)
}

// run executes fn off the program loop and reports it as op.
func (a *App) run(op opKind, fn func(ctx context.Context) opDoneMsg) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		msg := fn(ctx)
		msg.op = op
		return msg
	}
}

func (a *App) switchLanguage() tea.Cmd {
	rt := a.deps.I18n
	next := string(rt.Next())
	return a.run(opLanguage, func(ctx context.Context) opDoneMsg {
		rt.SwitchLanguage(ctx, next)
		return opDoneMsg{}
	})
}

// View renders the active screen.
func (a *App) View() string {
	var body string
	switch a.route {
	case session.RouteManagement:
		body = a.viewManagement()
	default:
		body = a.viewLogin()
	}

	view := lipgloss.JoinVertical(lipgloss.Left, a.languageBar(), body)
	if a.width == 0 || a.height == 0 {
		return view
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, view)
}

// languageBar renders the language switcher with the active entry marked.
func (a *App) languageBar() string {
	var parts []string
	for _, opt := range a.deps.I18n.Options() {
		style := inactiveLang
		if opt.Active {
			style = activeLang
		}
		parts = append(parts, style.Render(opt.Label))
	}
	return subtitleStyle.Render(a.deps.I18n.Translate("language")+": ") + strings.Join(parts, " | ")
}

var _ tea.Model = (*App)(nil)
