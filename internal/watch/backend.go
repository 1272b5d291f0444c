package watch

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// NativeEvent is an event as reported by the notification backend.
type NativeEvent struct {
	Path string
	Op   fsnotify.Op
}

// Handle owns one native watch. Close releases it and returns once no
// further callbacks will run.
type Handle interface {
	Close() error
}

// Backend opens native, non-recursive watches. fn is called for every
// event on a goroutine owned by the returned Handle, in delivery order.
type Backend interface {
	Open(path string, fn func(NativeEvent)) (Handle, error)
}

// FSNotifyBackend is the fsnotify-backed Backend. Each Open creates its
// own fsnotify.Watcher so that closing one watch never disturbs another.
type FSNotifyBackend struct {
	logger *zap.Logger
}

// NewFSNotifyBackend returns a Backend using fsnotify.
func NewFSNotifyBackend(logger *zap.Logger) *FSNotifyBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FSNotifyBackend{logger: logger}
}

// Open starts watching path.
func (b *FSNotifyBackend) Open(path string, fn func(NativeEvent)) (Handle, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("error watching %s: %w", path, err)
	}

	h := &fsnotifyHandle{
		watcher: watcher,
		done:    make(chan struct{}),
	}
	go h.pump(path, fn, b.logger)
	return h, nil
}

type fsnotifyHandle struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
	err     error
}

func (h *fsnotifyHandle) pump(root string, fn func(NativeEvent), logger *zap.Logger) {
	defer close(h.done)
	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			fn(NativeEvent{Path: event.Name, Op: event.Op})

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", zap.String("root", root), zap.Error(err))
		}
	}
}

// Close stops the watcher and waits for the pump goroutine to exit.
func (h *fsnotifyHandle) Close() error {
	h.once.Do(func() {
		h.err = h.watcher.Close()
		<-h.done
	})
	return h.err
}
