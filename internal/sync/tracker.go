package sync

import (
	"sync"
)

// Status is the lifecycle of one item's asynchronous operation.
type Status int

const (
	// StatusIdle means no operation has run for the item.
	StatusIdle Status = iota
	// StatusRunning means an operation is in flight.
	StatusRunning
	// StatusSucceeded means the latest operation completed.
	StatusSucceeded
	// StatusFailed means the latest operation failed.
	StatusFailed
)

// Tracker maps a list-item key to the status of its in-flight async operation.
//
// Each Start issues a monotonically increasing per-key sequence number;
// Succeed and Fail apply only when they carry the latest issued sequence for
// their key, so a response racing a newer request for the same item is
// discarded instead of winning by arrival order. State for different keys
// never interacts.
type Tracker[K comparable] struct {
	mu    sync.Mutex
	items map[K]*trackerEntry
}

type trackerEntry struct {
	status Status
	seq    uint64
	err    string
}

// NewTracker creates an empty tracker.
func NewTracker[K comparable]() *Tracker[K] {
	return &Tracker[K]{items: make(map[K]*trackerEntry)}
}

// Start marks the key as running and returns the sequence number the eventual
// Succeed or Fail must present. Starting over an already-running key is
// allowed; the older operation's completion becomes stale.
func (t *Tracker[K]) Start(key K) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.items[key]
	if e == nil {
		e = &trackerEntry{}
		t.items[key] = e
	}
	e.seq++
	e.status = StatusRunning
	e.err = ""
	return e.seq
}

// Succeed clears the running flag for the key. It reports whether the
// completion was current; stale completions are ignored and callers must not
// apply their results.
func (t *Tracker[K]) Succeed(key K, seq uint64) bool {
	return t.finish(key, seq, StatusSucceeded, "")
}

// Fail clears the running flag and records the failure message. Any previous
// successful result held by the caller stays untouched. Reports whether the
// completion was current.
func (t *Tracker[K]) Fail(key K, seq uint64, message string) bool {
	return t.finish(key, seq, StatusFailed, message)
}

func (t *Tracker[K]) finish(key K, seq uint64, status Status, message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.items[key]
	if e == nil || e.seq != seq {
		return false
	}
	e.status = status
	e.err = message
	return true
}

// Status returns the key's current status. Unknown keys are idle.
func (t *Tracker[K]) Status(key K) Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.items[key]; e != nil {
		return e.status
	}
	return StatusIdle
}

// Running reports whether the key has an operation in flight.
func (t *Tracker[K]) Running(key K) bool {
	return t.Status(key) == StatusRunning
}

// Err returns the failure message recorded for the key, if any.
func (t *Tracker[K]) Err(key K) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.items[key]; e != nil {
		return e.err
	}
	return ""
}

// Reset returns the key to idle. The sequence advances so any pending
// completion for the key becomes stale rather than reviving it.
func (t *Tracker[K]) Reset(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.items[key]; e != nil {
		e.seq++
		e.status = StatusIdle
		e.err = ""
	}
}

// Clear resets every tracked key.
func (t *Tracker[K]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.items {
		e.seq++
		e.status = StatusIdle
		e.err = ""
	}
}
