package logging

import "sync"

// DefaultRetain is the retention size used by the daemon.
const DefaultRetain = 200

// Ring is a fixed-capacity buffer of log entries that overwrites the oldest
// entry once full.
type Ring struct {
	mu    sync.RWMutex
	buf   []Entry
	head  int
	count int
}

// NewRing returns a ring holding at most size entries.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultRetain
	}
	return &Ring{buf: make([]Entry, size)}
}

func (r *Ring) Add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[(r.head+r.count)%len(r.buf)] = e
	if r.count < len(r.buf) {
		r.count++
		return
	}
	r.head = (r.head + 1) % len(r.buf)
}

// Entries returns a copy of the retained entries, oldest first.
func (r *Ring) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, r.count)
	for i := range out {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}
