package tailer

import (
	"context"
	"time"

	"github.com/jamesainslie/logsift/pkg/logsift/logging"
	"github.com/jamesainslie/logsift/pkg/logsift/types"
)

// EventType distinguishes stream messages.
type EventType string

const (
	EventRecord    EventType = "record"
	EventHeartbeat EventType = "heartbeat"
)

// Event is one message on a tail stream.
type Event struct {
	Type   EventType
	Record *types.LogRecord
	Time   time.Time
}

// Run baselines the session and then polls on every tick, and early on
// filesystem events when enabled, sending new records to out. It returns
// when ctx is done; nothing is read or sent after that.
func (s *Session) Run(ctx context.Context, out chan<- Event) error {
	log := logging.Get("tailer")

	if _, err := s.Poll(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	wake := make(chan struct{}, 1)
	if s.opts.Notify {
		n, err := newNotifier()
		if err != nil {
			log.Warn("filesystem notifications unavailable, polling only", "error", err)
		} else {
			defer n.close()
			for _, f := range s.folders {
				if err := n.watchTree(f.Path); err != nil {
					log.Warn("cannot watch folder", "folder", f.Name, "error", err)
				}
			}
			go n.run(ctx, func() {
				select {
				case wake <- struct{}{}:
				default:
				}
			})
		}
	}

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	var beat <-chan time.Time
	if s.opts.Heartbeat > 0 {
		hb := time.NewTicker(s.opts.Heartbeat)
		defer hb.Stop()
		beat = hb.C
	}

	log.Info("tail session started", "root", s.root, "folders", s.Folders())
	defer log.Info("tail session stopped", "root", s.root)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-wake:
		case t := <-beat:
			if !send(ctx, out, Event{Type: EventHeartbeat, Time: t}) {
				return nil
			}
			continue
		}

		recs, err := s.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn("poll failed", "error", err)
			continue
		}
		for i := range recs {
			if !send(ctx, out, Event{Type: EventRecord, Record: &recs[i], Time: time.Now()}) {
				return nil
			}
		}
	}
}

func send(ctx context.Context, out chan<- Event, ev Event) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Tail starts a session in the background. Folder validation errors are
// returned immediately; the channel is closed once ctx is done.
func Tail(ctx context.Context, root string, folders []string, opts Options) (<-chan Event, error) {
	s, err := NewSession(root, folders, opts)
	if err != nil {
		return nil, err
	}
	ch := make(chan Event, 64)
	go func() {
		defer close(ch)
		if err := s.Run(ctx, ch); err != nil {
			logging.Get("tailer").Error("tail session failed", "error", err)
		}
	}()
	return ch, nil
}
