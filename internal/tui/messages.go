package tui

import (
	"github.com/kiranshivaraju/keyconsole/internal/keys"
	"github.com/kiranshivaraju/keyconsole/internal/login"
	"github.com/kiranshivaraju/keyconsole/internal/session"
)

// routeMsg asks the app to follow Bridge.Route.
type routeMsg struct{}

// redrawMsg asks the app to re-read runtime state.
type redrawMsg struct{}

type confirmMsg struct {
	prompt string
	reply  chan<- bool
}

type bootstrapMsg struct {
	state session.State
}

type loginDoneMsg struct {
	outcome login.Outcome
}

type opKind int

const (
	opRefresh opKind = iota
	opCreate
	opFetch
	opUpdate
	opRemove
	opLogout
	opLanguage
)

type opDoneMsg struct {
	op      opKind
	err     error
	created *keys.CreateResult
	edit    *keys.EditSession
}
