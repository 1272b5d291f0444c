package watch

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"sync"

	"github.com/TFMV/fsview/internal/fserr"
	"go.uber.org/zap"
)

// Recorder receives registry metrics.
type Recorder interface {
	SetActiveWatches(n int)
	CountEvent(kind string)
}

type nopRecorder struct{}

func (nopRecorder) SetActiveWatches(int) {}
func (nopRecorder) CountEvent(string)    {}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Registry) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// Registry maps watched root paths to their native handles.
//
// There is at most one handle per root path. Starting a path that is
// already watched replaces its handle: the new watch is attached first,
// swapped in under the lock, and the displaced one is closed afterwards.
// The lock guards only the map; event delivery never takes it.
type Registry struct {
	backend  Backend
	sink     Sink
	logger   *zap.Logger
	recorder Recorder

	mu      sync.Mutex
	entries map[string]Handle
}

// NewRegistry returns an empty Registry delivering events to sink.
func NewRegistry(backend Backend, sink Sink, opts ...Option) *Registry {
	r := &Registry{
		backend:  backend,
		sink:     sink,
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
		entries:  make(map[string]Handle),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start watches path, non-recursively, until Stop, StopAll or Close.
func (r *Registry) Start(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return fserr.NotFound("watch", path)
	}

	handle, err := r.backend.Open(path, r.forward)
	if err != nil {
		r.logger.Warn("watch start failed", zap.String("path", path), zap.Error(err))
		return fserr.Watch("start", path, err)
	}

	r.mu.Lock()
	old, replaced := r.entries[path]
	r.entries[path] = handle
	active := len(r.entries)
	r.recorder.SetActiveWatches(active)
	r.mu.Unlock()

	if replaced {
		if err := old.Close(); err != nil {
			r.logger.Warn("closing replaced watch failed", zap.String("path", path), zap.Error(err))
		}
	}
	r.logger.Debug("watch started",
		zap.String("path", path),
		zap.Bool("replaced", replaced),
		zap.Int("active_watches", active),
	)
	return nil
}

// forward is the boundary adapter between the backend and the sink.
func (r *Registry) forward(event NativeEvent) {
	change := ChangeEvent{Path: event.Path, Kind: KindFromOp(event.Op)}
	r.recorder.CountEvent(string(change.Kind))
	r.sink.Emit(TopicFileChanged, change)
}

// Stop releases the watch on path. Stopping a path that is not watched
// is a no-op.
func (r *Registry) Stop(path string) error {
	r.mu.Lock()
	handle, ok := r.entries[path]
	delete(r.entries, path)
	active := len(r.entries)
	r.recorder.SetActiveWatches(active)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	r.logger.Debug("watch stopped", zap.String("path", path), zap.Int("active_watches", active))
	if err := handle.Close(); err != nil {
		return fserr.Watch("stop", path, err)
	}
	return nil
}

// StopAll releases every watch and empties the registry.
func (r *Registry) StopAll() error {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]Handle)
	r.recorder.SetActiveWatches(0)
	r.mu.Unlock()

	var errs []error
	for path, handle := range entries {
		if err := handle.Close(); err != nil {
			errs = append(errs, fserr.Watch("stop", path, err))
		}
	}
	if len(entries) > 0 {
		r.logger.Debug("all watches stopped", zap.Int("released", len(entries)))
	}
	return errors.Join(errs...)
}

// Close releases every watch. The registry stays usable.
func (r *Registry) Close() error {
	return r.StopAll()
}

// Len returns the number of active watches.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Paths returns the watched root paths, sorted.
func (r *Registry) Paths() []string {
	r.mu.Lock()
	paths := make([]string, 0, len(r.entries))
	for path := range r.entries {
		paths = append(paths, path)
	}
	r.mu.Unlock()
	sort.Strings(paths)
	return paths
}
