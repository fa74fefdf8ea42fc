package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kiranshivaraju/keyconsole/internal/i18n"
	"github.com/kiranshivaraju/keyconsole/internal/login"
)

const (
	fieldUsername = iota
	fieldPassword
)

var loginNodes = []i18n.Node{
	i18n.Text("login_title"),
	i18n.Text("login_subtitle"),
	i18n.Text("username"),
	i18n.Input("username_placeholder"),
	i18n.Text("password"),
	i18n.Input("password_placeholder"),
	i18n.Text("login_button"),
	i18n.Text("loading"),
	i18n.Text("ai_powered"),
	i18n.Text("version"),
}

type loginScreen struct {
	username textinput.Model
	password textinput.Model
	focus    int
	spinner  spinner.Model
	loading  bool
	labels   map[string]string
}

func newLoginScreen() loginScreen {
	s := loginScreen{
		username: textinput.New(),
		password: textinput.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		labels:   map[string]string{},
	}
	s.username.CharLimit = 64
	s.password.CharLimit = 128
	s.password.EchoMode = textinput.EchoPassword
	s.password.EchoCharacter = '•'
	return s
}

// relabel re-decorates the screen's tagged labels and placeholders.
func (s *loginScreen) relabel(rt *i18n.Runtime) {
	for _, n := range rt.Decorate(loginNodes) {
		switch n.Key {
		case "username_placeholder":
			s.username.Placeholder = n.Placeholder
		case "password_placeholder":
			s.password.Placeholder = n.Placeholder
		default:
			s.labels[n.Key] = n.Text
		}
	}
}

func (s *loginScreen) reset() {
	s.username.Reset()
	s.password.Reset()
	s.focus = fieldUsername
	s.loading = false
}

func (s *loginScreen) focusCmd() tea.Cmd {
	if s.focus == fieldPassword {
		s.username.Blur()
		return s.password.Focus()
	}
	s.password.Blur()
	return s.username.Focus()
}

func (a *App) updateLogin(msg tea.Msg) tea.Cmd {
	s := &a.login

	switch msg := msg.(type) {
	case loginDoneMsg:
		s.loading = false
		if msg.outcome.Kind != login.OutcomeBusy {
			s.password.Reset()
		}
		return nil

	case spinner.TickMsg:
		if !s.loading {
			return nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keymap.NextField):
			s.focus = 1 - s.focus
			return s.focusCmd()
		case key.Matches(msg, a.keymap.Submit):
			if s.focus == fieldUsername {
				s.focus = fieldPassword
				return s.focusCmd()
			}
			return a.submitLogin()
		}
	}

	var cmd tea.Cmd
	if s.focus == fieldPassword {
		s.password, cmd = s.password.Update(msg)
	} else {
		s.username, cmd = s.username.Update(msg)
	}
	return cmd
}

func (a *App) submitLogin() tea.Cmd {
	if a.login.loading {
		return nil
	}
	a.login.loading = true

	flow, ctx := a.deps.Login, a.ctx
	username, password := a.login.username.Value(), a.login.password.Value()
	return tea.Batch(
		func() tea.Msg { return loginDoneMsg{outcome: flow.Submit(ctx, username, password)} },
		a.login.spinner.Tick,
	)
}

func (a *App) viewLogin() string {
	s := &a.login
	l := s.labels

	button := labelStyle.Render("[ " + l["login_button"] + " ]")
	if s.loading || a.deps.Login.Loading() {
		button = s.spinner.View() + " " + l["loading"]
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(l["login_title"]),
		subtitleStyle.Render(l["login_subtitle"]),
		"",
		labelStyle.Render(l["username"]),
		s.username.View(),
		"",
		labelStyle.Render(l["password"]),
		s.password.View(),
		"",
		button,
		renderNotice(a.deps.LoginNotices.Current()),
		"",
		subtitleStyle.Render(l["ai_powered"]+" · "+l["version"]),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(form),
		a.help.View(a.keymap.loginHelp()),
	)
}
