package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kiranshivaraju/keyconsole/internal/i18n"
	"github.com/kiranshivaraju/keyconsole/internal/keys"
)

type mgmtMode int

const (
	modeBrowse mgmtMode = iota
	modeCreate
	modeEdit
	modeConfirm
	modeSecret
)

const (
	minTableHeight = 5
	// rows used by everything around the table
	chromeHeight = 16
)

type managementScreen struct {
	mode  mgmtMode
	table table.Model
	view  keys.TableView

	createName   textinput.Model
	createSecret textinput.Model
	createFocus  int

	editName   textinput.Model
	editActive bool
	edit       keys.EditSession

	confirm *confirmMsg
	secret  string
	busy    bool
	// cursor is the selected row, kept here because the table loses it
	// whenever it is empty.
	cursor int

	labels map[string]string
}

var managementNodes = []i18n.Node{
	i18n.Text("management_title"),
	i18n.Text("admin_user"),
	i18n.Text("dashboard"),
	i18n.Text("create_api_key"),
	i18n.Text("edit_api_key"),
	i18n.Text("api_key_name"),
	i18n.Text("api_key_value"),
	i18n.Input("api_key_placeholder"),
	i18n.Input("api_key_value_placeholder"),
	i18n.Text("api_key_auto_generate"),
	i18n.Text("status"),
	i18n.Text("active"),
	i18n.Text("inactive"),
	i18n.Text("api_key"),
	i18n.Text("new_api_key"),
	i18n.Text("save_changes"),
	i18n.Text("loading"),
}

func newManagementScreen() managementScreen {
	st := table.DefaultStyles()
	st.Header = st.Header.Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	st.Selected = st.Selected.Foreground(ColorPrimary)

	s := managementScreen{
		table: table.New(
			table.WithFocused(true),
			table.WithHeight(minTableHeight),
			table.WithStyles(st),
		),
		createName:   textinput.New(),
		createSecret: textinput.New(),
		editName:     textinput.New(),
		labels:       map[string]string{},
	}
	s.createName.CharLimit = 64
	s.editName.CharLimit = 64
	s.createSecret.CharLimit = 256
	return s
}

func (s *managementScreen) relabel(rt *i18n.Runtime) {
	for _, n := range rt.Decorate(managementNodes) {
		switch n.Key {
		case "api_key_placeholder":
			s.createName.Placeholder = n.Placeholder
			s.editName.Placeholder = n.Placeholder
		case "api_key_value_placeholder":
			s.createSecret.Placeholder = n.Placeholder
		default:
			s.labels[n.Key] = n.Text
		}
	}
}

func (s *managementScreen) reset() {
	if s.confirm != nil {
		s.confirm.reply <- false
	}
	s.mode = modeBrowse
	s.confirm = nil
	s.secret = ""
	s.busy = false
	s.restoreCursor(0)
}

func (s *managementScreen) resize(w, h int) {
	s.table.SetHeight(max(h-chromeHeight, minTableHeight))
	s.table.SetWidth(w)
}

// sync re-renders the table from the manager and reconciles form state.
func (s *managementScreen) sync(m *keys.Manager) {
	s.view = m.View()

	cols := make([]table.Column, len(s.view.Headers))
	for i, h := range s.view.Headers {
		cols[i] = table.Column{Title: h, Width: lipgloss.Width(h)}
	}
	rows := make([]table.Row, len(s.view.Rows))
	for i, r := range s.view.Rows {
		rows[i] = table.Row{
			r.Name, r.Secret, r.Status, r.CreatedAt,
			r.Requests, r.InputTokens, r.OutputTokens,
			r.EditLabel + " / " + r.DeleteLabel,
		}
		for j, cell := range rows[i] {
			if w := lipgloss.Width(cell); w > cols[j].Width {
				cols[j].Width = w
			}
		}
	}
	// The table clamps its cursor to -1 while it has no rows, so the
	// selection is carried across the rebuild and restored afterwards.
	cursor := s.cursor
	s.table.SetColumns(cols)
	s.table.SetRows(rows)
	s.restoreCursor(cursor)

	switch s.mode {
	case modeCreate:
		if !m.CreateOpen() {
			s.mode = modeBrowse
		}
	case modeEdit:
		if es, ok := m.Editing(); ok {
			s.edit = es
		} else {
			s.mode = modeBrowse
		}
	}
}

// restoreCursor selects row i, clamped to the rows present.
func (s *managementScreen) restoreCursor(i int) {
	if n := len(s.table.Rows()); n > 0 {
		s.cursor = min(max(i, 0), n-1)
		s.table.SetCursor(s.cursor)
		return
	}
	s.cursor = 0
}

func (s *managementScreen) selectedID() (string, bool) {
	i := s.cursor
	if i < 0 || i >= len(s.view.Rows) {
		return "", false
	}
	return s.view.Rows[i].ID, true
}

func (a *App) updateManagement(msg tea.Msg) tea.Cmd {
	s := &a.mgmt
	mgr := a.deps.Keys

	switch msg := msg.(type) {
	case confirmMsg:
		s.confirm = &msg
		s.mode = modeConfirm
		return nil

	case opDoneMsg:
		s.busy = false
		return a.handleOpDone(msg)

	case tea.KeyMsg:
		switch s.mode {
		case modeConfirm:
			return a.updateConfirm(msg)
		case modeSecret:
			// any key dismisses the one-time secret
			s.secret = ""
			s.mode = modeBrowse
			return nil
		case modeCreate:
			return a.updateCreate(msg)
		case modeEdit:
			return a.updateEdit(msg)
		}

		switch {
		case key.Matches(msg, a.keymap.Quit):
			return tea.Quit
		case key.Matches(msg, a.keymap.Refresh):
			return a.run(opRefresh, func(ctx context.Context) opDoneMsg {
				return opDoneMsg{err: mgr.Refresh(ctx)}
			})
		case key.Matches(msg, a.keymap.Create):
			mgr.OpenCreate()
			s.mode = modeCreate
			s.createName.Reset()
			s.createSecret.Reset()
			s.createFocus = 0
			s.createSecret.Blur()
			return s.createName.Focus()
		case key.Matches(msg, a.keymap.Edit):
			id, ok := s.selectedID()
			if !ok {
				return nil
			}
			s.busy = true
			return a.run(opFetch, func(ctx context.Context) opDoneMsg {
				es, err := mgr.FetchOne(ctx, id)
				return opDoneMsg{edit: es, err: err}
			})
		case key.Matches(msg, a.keymap.Delete):
			id, ok := s.selectedID()
			if !ok {
				return nil
			}
			confirm := a.deps.Bridge.Confirm
			return a.run(opRemove, func(ctx context.Context) opDoneMsg {
				return opDoneMsg{err: mgr.Remove(ctx, id, confirm)}
			})
		case key.Matches(msg, a.keymap.Logout):
			guard := a.deps.Guard
			return a.run(opLogout, func(ctx context.Context) opDoneMsg {
				guard.Logout(ctx)
				return opDoneMsg{}
			})
		}
	}

	var cmd tea.Cmd
	s.table, cmd = s.table.Update(msg)
	if len(s.table.Rows()) > 0 {
		s.cursor = s.table.Cursor()
	}
	return cmd
}

func (a *App) handleOpDone(msg opDoneMsg) tea.Cmd {
	s := &a.mgmt
	switch msg.op {
	case opCreate:
		if msg.err == nil && msg.created != nil && msg.created.GeneratedSecret != "" {
			s.secret = msg.created.GeneratedSecret
			s.mode = modeSecret
		}
	case opFetch:
		if msg.err == nil && msg.edit != nil {
			s.edit = *msg.edit
			s.mode = modeEdit
			s.editName.SetValue(msg.edit.KeyName)
			s.editActive = msg.edit.IsActive
			s.editName.CursorEnd()
			return s.editName.Focus()
		}
	case opRemove:
		if errors.Is(msg.err, keys.ErrCancelled) && s.mode == modeConfirm {
			s.mode = modeBrowse
		}
	}
	a.sync()
	return nil
}

func (a *App) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	s := &a.mgmt
	if s.confirm == nil {
		s.mode = modeBrowse
		return nil
	}
	switch {
	case key.Matches(msg, a.keymap.Yes):
		s.confirm.reply <- true
	case key.Matches(msg, a.keymap.No):
		s.confirm.reply <- false
	default:
		return nil
	}
	s.confirm = nil
	s.mode = modeBrowse
	return nil
}

func (a *App) updateCreate(msg tea.KeyMsg) tea.Cmd {
	s := &a.mgmt
	mgr := a.deps.Keys

	switch {
	case key.Matches(msg, a.keymap.Cancel):
		mgr.CloseCreate()
		s.mode = modeBrowse
		return nil
	case key.Matches(msg, a.keymap.NextField):
		s.createFocus = 1 - s.createFocus
		if s.createFocus == 1 {
			s.createName.Blur()
			return s.createSecret.Focus()
		}
		s.createSecret.Blur()
		return s.createName.Focus()
	case key.Matches(msg, a.keymap.Submit):
		if s.busy {
			return nil
		}
		s.busy = true
		name, secret := s.createName.Value(), s.createSecret.Value()
		return a.run(opCreate, func(ctx context.Context) opDoneMsg {
			res, err := mgr.Create(ctx, name, secret)
			return opDoneMsg{created: res, err: err}
		})
	}

	var cmd tea.Cmd
	if s.createFocus == 1 {
		s.createSecret, cmd = s.createSecret.Update(msg)
	} else {
		s.createName, cmd = s.createName.Update(msg)
	}
	return cmd
}

func (a *App) updateEdit(msg tea.KeyMsg) tea.Cmd {
	s := &a.mgmt
	mgr := a.deps.Keys

	switch {
	case key.Matches(msg, a.keymap.Cancel):
		mgr.CloseEdit()
		s.mode = modeBrowse
		return nil
	case key.Matches(msg, a.keymap.ToggleStatus):
		s.editActive = !s.editActive
		return nil
	case key.Matches(msg, a.keymap.ToggleReveal):
		if es, err := mgr.ToggleReveal(); err == nil {
			s.edit = es
		}
		return nil
	case key.Matches(msg, a.keymap.Submit):
		if s.busy {
			return nil
		}
		s.busy = true
		id, name, active := s.edit.ID, s.editName.Value(), s.editActive
		return a.run(opUpdate, func(ctx context.Context) opDoneMsg {
			return opDoneMsg{err: mgr.Update(ctx, id, name, active)}
		})
	}

	var cmd tea.Cmd
	s.editName, cmd = s.editName.Update(msg)
	return cmd
}

func (a *App) viewManagement() string {
	s := &a.mgmt
	l := s.labels
	tr := a.deps.I18n

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render(l["management_title"]),
		"  ",
		subtitleStyle.Render(l["admin_user"]),
	)

	cells := make([]string, len(s.view.Dashboard))
	for i, c := range s.view.Dashboard {
		cells[i] = cellStyle.Render(lipgloss.JoinVertical(lipgloss.Center, subtitleStyle.Render(c.Label), labelStyle.Render(c.Value)))
	}
	dashboard := lipgloss.JoinHorizontal(lipgloss.Top, cells...)

	var body string
	help := a.keymap.browseHelp()
	switch s.mode {
	case modeCreate:
		body = panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(l["create_api_key"]),
			labelStyle.Render(l["api_key_name"]),
			s.createName.View(),
			labelStyle.Render(l["api_key_value"]),
			s.createSecret.View(),
			subtitleStyle.Render(l["api_key_auto_generate"]),
		))
		help = a.keymap.createHelp()
	case modeEdit:
		status := l["inactive"]
		if s.editActive {
			status = l["active"]
		}
		body = panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(l["edit_api_key"]),
			labelStyle.Render(l["api_key_name"]),
			s.editName.View(),
			labelStyle.Render(l["status"])+": "+status,
			labelStyle.Render(l["api_key"])+": "+s.edit.Display()+"  ["+tr.Translate(s.edit.ToggleLabelKey())+"]",
			subtitleStyle.Render("[ "+l["save_changes"]+" ]"),
		))
		help = a.keymap.editHelp()
	case modeConfirm:
		prompt := ""
		if s.confirm != nil {
			prompt = s.confirm.prompt
		}
		body = panelStyle.Render(secretStyle.Render(prompt))
		help = a.keymap.confirmHelp()
	case modeSecret:
		body = panelStyle.Render(fmt.Sprintf("%s:\n\n%s", l["new_api_key"], secretStyle.Render(s.secret)))
		help = nil
	default:
		title := s.view.Title
		if !s.view.Loaded {
			title += " · " + l["loading"]
		}
		body = lipgloss.JoinVertical(lipgloss.Left, labelStyle.Render(title), s.table.View())
	}

	parts := []string{header, "", subtitleStyle.Render(l["dashboard"]), dashboard, "", body, renderNotice(a.deps.Notices.Current())}
	if help != nil {
		parts = append(parts, a.help.View(help))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
