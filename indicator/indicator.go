// Package indicator drives the on-screen status glyph. It is presentation
// state only; nothing else in the app reads it to make decisions.
package indicator

import (
	"sync"
	"time"
)

type State int

const (
	Inactive State = iota
	Dormant
	Prompted
	Thinking
	Answering
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Dormant:
		return "dormant"
	case Prompted:
		return "prompted"
	case Thinking:
		return "thinking"
	case Answering:
		return "answering"
	}
	return "unknown"
}

const (
	defaultExit  = 150 * time.Millisecond
	defaultEntry = 120 * time.Millisecond
)

type Option func(*Machine)

// WithDurations overrides the exit and entry animation lengths.
func WithDurations(exit, entry time.Duration) Option {
	return func(m *Machine) {
		m.exit = exit
		m.entry = entry
	}
}

// WithScheduler replaces the timer used for morph phases; tests drive
// morphs deterministically through it.
func WithScheduler(schedule func(time.Duration, func())) Option {
	return func(m *Machine) { m.schedule = schedule }
}

// WithObserver registers a callback fired when a new state commits.
func WithObserver(fn func(State)) Option {
	return func(m *Machine) { m.observer = fn }
}

// Machine accepts at most one transition at a time. An accepted transition
// holds a morphing flag through a timed exit phase, commits the new state,
// then holds an entry phase before unlocking. Requests that arrive while
// morphing are dropped: first-in-flight wins, deliberately, so rapid
// lifecycle churn cannot queue up stale animations.
type Machine struct {
	mu       sync.Mutex
	state    State
	morphing bool

	exit     time.Duration
	entry    time.Duration
	schedule func(time.Duration, func())
	observer func(State)
}

func New(opts ...Option) *Machine {
	m := &Machine{
		state: Inactive,
		exit:  defaultExit,
		entry: defaultEntry,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.schedule == nil {
		m.schedule = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	return m
}

// Request asks for a transition to next. It reports whether the transition
// was accepted; a false return means it was dropped (morph in flight, or a
// same-state no-op).
func (m *Machine) Request(next State) bool {
	m.mu.Lock()
	if m.morphing || next == m.state {
		m.mu.Unlock()
		return false
	}
	m.morphing = true
	exit := m.exit
	m.mu.Unlock()

	m.schedule(exit, func() { m.commit(next) })
	return true
}

func (m *Machine) commit(next State) {
	m.mu.Lock()
	m.state = next
	observer := m.observer
	entry := m.entry
	m.mu.Unlock()

	if observer != nil {
		observer(next)
	}
	m.schedule(entry, func() {
		m.mu.Lock()
		m.morphing = false
		m.mu.Unlock()
	})
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Morphing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.morphing
}
