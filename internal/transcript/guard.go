package transcript

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Guard watches a transcript and cancels its context when the file changes,
// e.g. because the chat client appended a record while we waited for the
// user to confirm.
type Guard struct {
	ctx     context.Context
	cancel  context.CancelFunc
	watcher *fsnotify.Watcher
	done    chan struct{}
	changed atomic.Bool
	once    sync.Once
	err     error
}

// Watch starts watching path. The returned Guard's Context is cancelled on
// the first write, create, remove or rename of path, or when parent is done.
func Watch(parent context.Context, path string) (*Guard, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors and atomic writers replace files.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(parent)
	g := &Guard{ctx: ctx, cancel: cancel, watcher: watcher, done: make(chan struct{})}
	go g.loop(filepath.Clean(path))
	return g, nil
}

func (g *Guard) loop(path string) {
	defer close(g.done)
	for {
		select {
		case <-g.ctx.Done():
			return

		case event, ok := <-g.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				slog.Info("transcript changed while waiting", "path", path, "op", event.Op.String())
				g.changed.Store(true)
				g.cancel()
				return
			}

		case err, ok := <-g.watcher.Errors:
			if !ok {
				return
			}
			// Watcher errors are non-fatal; keep watching.
			slog.Debug("transcript watcher error", "error", err)
		}
	}
}

// Context is cancelled once the transcript changes.
func (g *Guard) Context() context.Context {
	return g.ctx
}

// Changed reports whether the transcript changed since Watch.
func (g *Guard) Changed() bool {
	return g.changed.Load()
}

// Close stops watching. It is safe to call more than once.
func (g *Guard) Close() error {
	g.once.Do(func() {
		g.cancel()
		g.err = g.watcher.Close()
		<-g.done
	})
	return g.err
}
