package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// Translator resolves message keys in the active language.
type Translator interface {
	Translate(key string, fallback ...string) string
}

type keyMap struct {
	Up           key.Binding
	Down         key.Binding
	Submit       key.Binding
	NextField    key.Binding
	Cancel       key.Binding
	Refresh      key.Binding
	Create       key.Binding
	Edit         key.Binding
	Delete       key.Binding
	Logout       key.Binding
	Language     key.Binding
	ToggleStatus key.Binding
	ToggleReveal key.Binding
	Yes          key.Binding
	No           key.Binding
	Quit         key.Binding
	ForceQuit    key.Binding
}

// newKeyMap builds the bindings with help text in the active language.
func newKeyMap(tr Translator) keyMap {
	return keyMap{
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "")),
		Submit:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", tr.Translate("submit"))),
		NextField:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", tr.Translate("next_field"))),
		Cancel:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", tr.Translate("cancel"))),
		Refresh:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", tr.Translate("refresh"))),
		Create:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", tr.Translate("create"))),
		Edit:         key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", tr.Translate("edit"))),
		Delete:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", tr.Translate("delete"))),
		Logout:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", tr.Translate("logout"))),
		Language:     key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", tr.Translate("switch_language"))),
		ToggleStatus: key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", tr.Translate("toggle_status"))),
		ToggleReveal: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", tr.Translate("toggle_reveal"))),
		Yes:          key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", tr.Translate("confirm"))),
		No:           key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", tr.Translate("cancel"))),
		Quit:         key.NewBinding(key.WithKeys("q"), key.WithHelp("q", tr.Translate("quit"))),
		ForceQuit:    key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// bindings is a help.KeyMap over a fixed list.
type bindings []key.Binding

func (b bindings) ShortHelp() []key.Binding  { return b }
func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }

func (k keyMap) loginHelp() bindings {
	return bindings{k.Submit, k.NextField, k.Language, k.ForceQuit}
}

func (k keyMap) browseHelp() bindings {
	return bindings{k.Refresh, k.Create, k.Edit, k.Delete, k.Language, k.Logout, k.Quit}
}

func (k keyMap) createHelp() bindings {
	return bindings{k.Submit, k.NextField, k.Cancel}
}

func (k keyMap) editHelp() bindings {
	return bindings{k.Submit, k.ToggleStatus, k.ToggleReveal, k.Cancel}
}

func (k keyMap) confirmHelp() bindings {
	return bindings{k.Yes, k.No}
}
