package controller

import "sync"

// Ticket identifies one fetch started by Effect.Begin
type Ticket uint64

// Effect tracks the dependencies a controller fetches with.
//
// Every fetch takes a Ticket. Its result may only be applied while the
// ticket is the latest one handed out and the controller is still mounted,
// so a slow response can never overwrite a newer one or touch an unmounted view.
type Effect[D comparable] struct {
	mu      sync.Mutex
	deps    D
	gen     uint64
	mounted bool
}

func NewEffect[D comparable](initial D) *Effect[D] {
	return &Effect[D]{deps: initial}
}

func (e *Effect[D]) Deps() D {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deps
}

// Update changes the dependencies and reports whether anything changed
func (e *Effect[D]) Update(fn func(*D)) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := e.deps
	fn(&next)
	if next == e.deps {
		return false
	}
	e.deps = next
	return true
}

func (e *Effect[D]) Mount() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mounted = true
}

// Unmount invalidates every outstanding ticket
func (e *Effect[D]) Unmount() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mounted = false
	e.gen++
}

func (e *Effect[D]) Mounted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mounted
}

// Begin starts a new fetch generation, returning its ticket and the dependencies to fetch with
func (e *Effect[D]) Begin() (Ticket, D) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	return Ticket(e.gen), e.deps
}

// Apply runs fn only if t is still current. It reports whether fn ran.
func (e *Effect[D]) Apply(t Ticket, fn func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.mounted || uint64(t) != e.gen {
		return false
	}
	fn()
	return true
}
