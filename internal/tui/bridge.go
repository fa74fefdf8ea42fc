package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kiranshivaraju/keyconsole/internal/session"
)

// Bridge connects the runtimes to the running program. It is the console's
// Navigator and delivers redraw and confirmation requests as messages.
// Messages are sent from their own goroutine so runtimes may call in from
// inside Update without blocking the program loop.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
	route   session.Route
	done    chan struct{}
	closed  bool
}

func NewBridge() *Bridge {
	return &Bridge{route: session.RouteLogin, done: make(chan struct{})}
}

// Attach sets the program messages are delivered to.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	b.mu.Unlock()
}

// Close releases pending confirmations after the program exits.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.done)
	}
}

// Navigate records the target route and asks the program to switch to it.
func (b *Bridge) Navigate(route session.Route) {
	b.mu.Lock()
	b.route = route
	b.mu.Unlock()
	b.send(routeMsg{})
}

// Route returns the most recently requested route.
func (b *Bridge) Route() session.Route {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.route
}

// Redraw asks the program to re-render from current runtime state.
func (b *Bridge) Redraw() {
	b.send(redrawMsg{})
}

// Confirm shows prompt and blocks until the operator answers. It answers
// false when no program is attached or the program has exited.
func (b *Bridge) Confirm(prompt string) bool {
	b.mu.Lock()
	attached := b.program != nil && !b.closed
	b.mu.Unlock()
	if !attached {
		return false
	}

	reply := make(chan bool, 1)
	b.send(confirmMsg{prompt: prompt, reply: reply})
	select {
	case ok := <-reply:
		return ok
	case <-b.done:
		return false
	}
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p != nil {
		go p.Send(msg)
	}
}

var _ session.Navigator = (*Bridge)(nil)
