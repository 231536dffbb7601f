package game

import (
	"sync"
	"time"
)

// fakeSender records every envelope per recipient so tests can assert on
// exactly what each player was shown.
type fakeSender struct {
	mu     sync.Mutex
	envs   map[string][]Envelope
	closed []string
}

func newFakeSender() *fakeSender {
	return &fakeSender{envs: make(map[string][]Envelope)}
}

func (f *fakeSender) Send(playerID string, env Envelope) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.envs[playerID] = append(f.envs[playerID], env)
}

func (f *fakeSender) RoomClosed(code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, code)
}

func (f *fakeSender) byType(playerID, msgType string) []Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Envelope
	for _, env := range f.envs[playerID] {
		if env.Type == msgType {
			out = append(out, env)
		}
	}
	return out
}

// lastState returns the most recent room_state projection sent to a player.
func (f *fakeSender) lastState(playerID string) (RoomView, bool) {
	states := f.byType(playerID, MsgRoomState)
	if len(states) == 0 {
		return RoomView{}, false
	}
	return states[len(states)-1].Data.(RoomView), true
}

// manualScheduler hands out timers that only fire when a test says so.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
	mu      *sync.Mutex
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{}
}

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) TimerHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{d: d, f: f, mu: &m.mu}
	m.timers = append(m.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// firePending runs every armed, unstopped timer exactly once. Callbacks may
// arm new timers; those stay pending for the next call.
func (m *manualScheduler) firePending() int {
	m.mu.Lock()
	var due []*manualTimer
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	m.mu.Unlock()

	for _, t := range due {
		t.f()
	}
	return len(due)
}

// fire runs a specific timer even if it was already fired, mimicking the
// callback of a stale timer that was racing its own Stop.
func (t *manualTimer) fire() {
	t.f()
}

func (m *manualScheduler) lastTimer() *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.timers) == 0 {
		return nil
	}
	return m.timers[len(m.timers)-1]
}

// stubWords is a deterministic WordSource.
type stubWords struct {
	term    string
	primary string
	similar string
}

func (s stubWords) RandomTerm() string           { return s.term }
func (s stubWords) RandomPair() (string, string) { return s.primary, s.similar }
