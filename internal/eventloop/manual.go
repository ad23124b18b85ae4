package eventloop

import (
	"sort"
	"sync"
	"time"
)

type manualEntry struct {
	at    time.Duration
	token Token
	fn    func()
}

// Manual is a Scheduler driven by Advance instead of wall-clock time.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	next    Token
	pending []manualEntry
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) After(d time.Duration, fn func()) Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.pending = append(m.pending, manualEntry{at: m.now + d, token: m.next, fn: fn})
	return m.next
}

func (m *Manual) Cancel(token Token) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.pending {
		if e.token == token {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}

// Advance moves the clock forward by d and runs every callback that became due, in due order. Callbacks
// scheduled by callbacks run too if they fall within the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	deadline := m.now + d
	m.mu.Unlock()
	for {
		m.mu.Lock()
		sort.SliceStable(m.pending, func(i, j int) bool { return m.pending[i].at < m.pending[j].at })
		if len(m.pending) == 0 || m.pending[0].at > deadline {
			m.now = deadline
			m.mu.Unlock()
			return
		}
		entry := m.pending[0]
		m.pending = m.pending[1:]
		m.now = entry.at
		m.mu.Unlock()
		entry.fn()
	}
}

// Pending returns the number of scheduled callbacks.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
