package tailer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/jamesainslie/logsift/pkg/logsift/logging"
)

// notifier watches folder trees and reports that something changed. It only
// wakes the poll loop early; the poll itself decides what is new.
type notifier struct {
	fsw *fsnotify.Watcher

	mu     sync.Mutex
	dirs   map[string]bool
	closed bool
}

func newNotifier() (*notifier, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &notifier{fsw: fsw, dirs: make(map[string]bool)}, nil
}

// watchTree adds root and every directory beneath it. Symlinks are not
// followed.
func (n *notifier) watchTree(root string) error {
	info, err := os.Lstat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable subtrees are polled anyway
		}
		if d.Type()&fs.ModeSymlink != 0 || !d.IsDir() {
			return nil
		}
		return n.add(path)
	})
}

func (n *notifier) add(dir string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed || n.dirs[dir] {
		return nil
	}
	if err := n.fsw.Add(dir); err != nil {
		logging.Get("tailer").Warn("failed to watch directory", "dir", dir, "error", err)
		return err
	}
	n.dirs[dir] = true
	return nil
}

func (n *notifier) forget(dir string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.dirs[dir] {
		return
	}
	_ = n.fsw.Remove(dir)
	delete(n.dirs, dir)
}

// run forwards events to wake until ctx is done. New directories are
// watched as they appear.
func (n *notifier) run(ctx context.Context, wake func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-n.fsw.Events:
			if !ok {
				return
			}
			switch {
			case ev.Has(fsnotify.Create):
				if info, err := os.Lstat(ev.Name); err == nil && info.IsDir() && info.Mode()&fs.ModeSymlink == 0 {
					_ = n.watchTree(ev.Name)
				}
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				n.forget(ev.Name)
			}
			if ev.Op != fsnotify.Chmod {
				wake()
			}
		case err, ok := <-n.fsw.Errors:
			if !ok {
				return
			}
			logging.Get("tailer").Error("watcher error", "error", err)
		}
	}
}

func (n *notifier) close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	n.dirs = nil
	return n.fsw.Close()
}
