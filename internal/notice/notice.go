// Package notice holds the transient, auto-dismissing messages shown to the operator.
package notice

import (
	"sync"
	"time"
)

// Kind classifies a notice for styling.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Warning Kind = "warning"
)

// Notice is one user-visible message.
type Notice struct {
	Kind Kind
	Text string
}

// Notifier accepts notices for display.
type Notifier interface {
	Notify(kind Kind, text string)
}

// Board shows one notice at a time. A new notice replaces the current one and
// each notice clears itself after the board's TTL unless replaced first.
type Board struct {
	ttl time.Duration

	mu      sync.Mutex
	current Notice
	seq     uint64
	timer   *time.Timer
	subs    map[int]func(Notice)
	nextSub int
}

// NewBoard creates a Board whose notices last ttl.
func NewBoard(ttl time.Duration) *Board {
	return &Board{ttl: ttl, subs: map[int]func(Notice){}}
}

// Notify replaces the current notice and schedules its removal.
func (b *Board) Notify(kind Kind, text string) {
	b.mu.Lock()
	b.seq++
	seq := b.seq
	b.current = Notice{Kind: kind, Text: text}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.ttl, func() { b.expire(seq) })
	n := b.current
	subs := b.subscribers()
	b.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}

// Current returns the visible notice and whether there is one.
func (b *Board) Current() (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, b.current.Text != ""
}

// Clear removes the visible notice immediately.
func (b *Board) Clear() {
	b.mu.Lock()
	b.seq++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.current = Notice{}
	subs := b.subscribers()
	b.mu.Unlock()

	for _, fn := range subs {
		fn(Notice{})
	}
}

// Subscribe registers fn to be called on every change, with the zero Notice
// when the board empties.
func (b *Board) Subscribe(fn func(Notice)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *Board) expire(seq uint64) {
	b.mu.Lock()
	if seq != b.seq {
		b.mu.Unlock()
		return
	}
	b.current = Notice{}
	b.timer = nil
	subs := b.subscribers()
	b.mu.Unlock()

	for _, fn := range subs {
		fn(Notice{})
	}
}

// subscribers must be called with b.mu held.
func (b *Board) subscribers() []func(Notice) {
	out := make([]func(Notice), 0, len(b.subs))
	for _, fn := range b.subs {
		out = append(out, fn)
	}
	return out
}

var _ Notifier = (*Board)(nil)

// Recorder is a Notifier that keeps every notice it receives.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(kind Kind, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Kind: kind, Text: text})
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Last returns the most recent notice.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}

var _ Notifier = (*Recorder)(nil)
