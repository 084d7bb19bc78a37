package http

import (
	"sync"

	"lifeadmin/internal/views"
)

// sessionState holds the in-memory UI session. The server is single-user, so
// there is exactly one; it is lost on restart like a browser tab's state.
type sessionState struct {
	mu sync.Mutex
	s  views.Session
}

func (st *sessionState) get() views.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}

// update replaces the session with fn's result. fn must not mutate its input.
func (st *sessionState) update(fn func(views.Session) views.Session) views.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s = fn(st.s)
	return st.s
}

// changeFeed is a version counter with a channel that is closed and replaced
// on every bump, releasing all waiters at once.
type changeFeed struct {
	mu      sync.Mutex
	version uint64
	ch      chan struct{}
}

func newChangeFeed() *changeFeed {
	return &changeFeed{ch: make(chan struct{})}
}

func (f *changeFeed) bump() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.version++
	close(f.ch)
	f.ch = make(chan struct{})
}

func (f *changeFeed) current() (uint64, <-chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.version, f.ch
}
