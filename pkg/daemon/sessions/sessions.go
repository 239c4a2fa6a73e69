// Package sessions tracks the tail sessions a daemon is serving.
package sessions

import (
	"context"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Session is one live tail. The registry owns only its cancel func and
// counters; watermarks stay with the tailer.
type Session struct {
	ID      string
	Root    string
	Folders []string
	Started time.Time

	records atomic.Int64
	cancel  context.CancelFunc
}

// Records returns how many records the session has emitted.
func (s *Session) Records() int64 { return s.records.Load() }

// Count adds n emitted records.
func (s *Session) Count(n int) { s.records.Add(int64(n)) }

// Info is a point-in-time copy of a session.
type Info struct {
	ID      string
	Root    string
	Folders []string
	Started time.Time
	Records int64
}

// Registry manages live sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// Open derives a cancellable context from parent and registers a session
// for it. It returns nil if the registry is closed.
func (r *Registry) Open(parent context.Context, root string, folders []string) (*Session, context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, parent
	}

	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		ID:      uuid.New().String(),
		Root:    root,
		Folders: slices.Clone(folders),
		Started: time.Now(),
		cancel:  cancel,
	}
	r.sessions[s.ID] = s
	return s, ctx
}

// Close cancels and removes a session. Unknown ids are ignored.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.cancel()
		delete(r.sessions, id)
	}
}

// List returns the live sessions, oldest first.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, Info{
			ID:      s.ID,
			Root:    s.Root,
			Folders: slices.Clone(s.Folders),
			Started: s.Started,
			Records: s.Records(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Started.Equal(out[j].Started) {
			return out[i].ID < out[j].ID
		}
		return out[i].Started.Before(out[j].Started)
	})
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Shutdown cancels every session and refuses new ones.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	r.closed = true
	for _, s := range r.sessions {
		s.cancel()
	}
	r.sessions = make(map[string]*Session)
}
