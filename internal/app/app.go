// Package app wires the tree builder, the watch registry, file operations
// and the settings store into the command surface shared by the HTTP
// transport, the CLI and library callers.
package app

import (
	"context"
	"time"

	"github.com/TFMV/fsview/internal/config"
	"github.com/TFMV/fsview/internal/fileops"
	"github.com/TFMV/fsview/internal/metrics"
	"github.com/TFMV/fsview/internal/settings"
	"github.com/TFMV/fsview/internal/tree"
	"github.com/TFMV/fsview/internal/watch"
	"go.uber.org/zap"
)

// Option configures a Facade.
type Option func(*Facade)

// WithLogger sets the logger shared by every component.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Facade) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithMetrics records component metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Facade) { f.metrics = m }
}

// WithBackend replaces the fsnotify watch backend.
func WithBackend(b watch.Backend) Option {
	return func(f *Facade) { f.backend = b }
}

// WithSpawner replaces the process spawner used by Reveal.
func WithSpawner(s fileops.Spawner) Option {
	return func(f *Facade) { f.spawner = s }
}

// Facade is the single command surface over the filesystem components.
// It is safe for concurrent use.
type Facade struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	backend watch.Backend
	spawner fileops.Spawner

	builder  *tree.Builder
	bus      *watch.Bus
	registry *watch.Registry
	files    *fileops.Ops
	settings *settings.Store
}

// New builds a Facade from cfg.
func New(cfg config.Config, opts ...Option) (*Facade, error) {
	f := &Facade{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}

	builder, err := tree.NewBuilder(tree.Options{
		DefaultDepth: cfg.Tree.DefaultDepth,
		Exclude:      cfg.Tree.Exclude,
		Logger:       f.logger.Named("tree"),
	})
	if err != nil {
		return nil, err
	}
	store, err := settings.NewStore(cfg.Settings.Dir, f.logger.Named("settings"))
	if err != nil {
		return nil, err
	}
	if f.backend == nil {
		f.backend = watch.NewFSNotifyBackend(f.logger.Named("watch"))
	}

	f.builder = builder
	f.settings = store
	f.bus = watch.NewBus(watch.BusOptions{
		SubscriberBuffer: cfg.Events.Buffer,
		OnDrop:           f.metrics.CountDropped,
	})
	f.registry = watch.NewRegistry(f.backend, f.bus,
		watch.WithLogger(f.logger.Named("watch")),
		watch.WithRecorder(f.metrics),
	)
	f.files = fileops.New(fileops.Options{
		Spawner: f.spawner,
		Logger:  f.logger.Named("files"),
	})
	return f, nil
}

// List returns the one-level listing of path.
func (f *Facade) List(path string) ([]tree.Node, error) {
	start := time.Now()
	nodes, err := f.builder.List(path)
	f.metrics.ObserveTreeBuild(metrics.ModeList, time.Since(start), err)
	if err != nil {
		f.logger.Debug("list failed", zap.String("path", path), zap.Error(err))
	}
	return nodes, err
}

// Project returns the projection of path down to maxDepth, or the
// configured default depth when maxDepth is nil.
func (f *Facade) Project(path string, maxDepth *uint) (tree.Node, error) {
	start := time.Now()
	node, err := f.builder.Project(path, maxDepth)
	f.metrics.ObserveTreeBuild(metrics.ModeProject, time.Since(start), err)
	if err != nil {
		f.logger.Debug("project failed", zap.String("path", path), zap.Error(err))
	}
	return node, err
}

// WatchStart starts watching path, replacing any existing watch on it.
func (f *Facade) WatchStart(path string) error { return f.registry.Start(path) }

// WatchStop stops watching path.
func (f *Facade) WatchStop(path string) error { return f.registry.Stop(path) }

// WatchStopAll stops every watch.
func (f *Facade) WatchStopAll() error { return f.registry.StopAll() }

// WatchedPaths returns the watched root paths, sorted.
func (f *Facade) WatchedPaths() []string { return f.registry.Paths() }

// ReadFile returns the content of the file at path.
func (f *Facade) ReadFile(path string) (string, error) { return f.files.Read(path) }

// WriteFile replaces the content of the file at path.
func (f *Facade) WriteFile(path, content string) error { return f.files.Write(path, content) }

// FileExists reports whether path exists.
func (f *Facade) FileExists(path string) bool { return f.files.Exists(path) }

// FileInfo returns metadata for path.
func (f *Facade) FileInfo(path string) (fileops.FileInfo, error) { return f.files.Info(path) }

// CreateFile creates a new file at path.
func (f *Facade) CreateFile(path, content string) error { return f.files.CreateFile(path, content) }

// CreateDirectory creates a new directory at path.
func (f *Facade) CreateDirectory(path string) error { return f.files.CreateDirectory(path) }

// RenamePath moves oldPath to newPath.
func (f *Facade) RenamePath(oldPath, newPath string) error { return f.files.Rename(oldPath, newPath) }

// DeletePath removes path and, for directories, everything below it.
func (f *Facade) DeletePath(path string) error { return f.files.Delete(path) }

// Reveal shows path in the platform file manager.
func (f *Facade) Reveal(ctx context.Context, path string) error {
	return f.files.Reveal(ctx, path)
}

// LoadSettings returns the saved settings or the defaults.
func (f *Facade) LoadSettings() (settings.Settings, error) { return f.settings.Load() }

// SaveSettings persists s.
func (f *Facade) SaveSettings(s settings.Settings) error { return f.settings.Save(s) }

// SettingsPath returns the settings file location.
func (f *Facade) SettingsPath() (string, error) { return f.settings.Path() }

// Events returns the bus every ChangeEvent is published on.
func (f *Facade) Events() *watch.Bus { return f.bus }

// Close releases every watch and closes the event bus.
func (f *Facade) Close() error {
	err := f.registry.Close()
	f.bus.Close()
	return err
}

// ErrorMessage flattens err into the string shown to the UI.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
