package feishu

import "sync"

const defaultWindowCapacity = 1000

// Window is a bounded set of recently seen message identifiers.
//
// Feishu delivers push events at least once, so the adapter tracks recent
// message IDs and skips repeats. Membership check, insertion, and eviction
// happen under a single mutex because admits arrive concurrently from the
// connection goroutine.
type Window struct {
	mu       sync.Mutex
	capacity int
	seen     map[string]struct{}
}

// NewWindow creates a Window holding at most capacity identifiers.
// A non-positive capacity falls back to the default of 1000.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = defaultWindowCapacity
	}
	return &Window{
		capacity: capacity,
		seen:     make(map[string]struct{}),
	}
}

// Admit records id and reports whether it has not been seen before.
// When the window grows past its capacity, roughly half of the current
// membership is evicted in unspecified order (callers must not assume LRU);
// the id just admitted is never evicted in the same call.
func (w *Window) Admit(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, dup := w.seen[id]; dup {
		return false
	}
	w.seen[id] = struct{}{}

	if len(w.seen) > w.capacity {
		drop := len(w.seen) - (w.capacity - w.capacity/2)
		for k := range w.seen {
			if drop == 0 {
				break
			}
			if k == id {
				continue
			}
			delete(w.seen, k)
			drop--
		}
	}
	return true
}

// Len reports the number of identifiers currently tracked.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}
