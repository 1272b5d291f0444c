package fsview

import (
	"github.com/TFMV/fsview/internal/app"
	"github.com/TFMV/fsview/internal/config"
	"github.com/TFMV/fsview/internal/fileops"
	"github.com/TFMV/fsview/internal/fserr"
	"github.com/TFMV/fsview/internal/metrics"
	"github.com/TFMV/fsview/internal/settings"
	"github.com/TFMV/fsview/internal/tree"
	"github.com/TFMV/fsview/internal/watch"
	"go.uber.org/zap"
)

// Re-export the types callers need from the internal packages
type (
	// Facade is the command surface over tree projection, watches, file
	// operations and settings.
	Facade = app.Facade

	// Option configures a Facade.
	Option = app.Option

	// Config is the runtime configuration.
	Config = config.Config

	// Node is one entry of a listing or projection.
	Node = tree.Node

	// ChangeEvent is one normalized filesystem change.
	ChangeEvent = watch.ChangeEvent

	// Kind is the kind of a ChangeEvent.
	Kind = watch.Kind

	// Message is a ChangeEvent tagged with its topic.
	Message = watch.Message

	// Bus fans events out to subscribers.
	Bus = watch.Bus

	// Backend opens native watches.
	Backend = watch.Backend

	// NativeEvent is an event as reported by a Backend.
	NativeEvent = watch.NativeEvent

	// Handle owns one native watch.
	Handle = watch.Handle

	// FileInfo describes one filesystem entry.
	FileInfo = fileops.FileInfo

	// Spawner starts external processes for Reveal.
	Spawner = fileops.Spawner

	// Settings is the user settings document.
	Settings = settings.Settings

	// PathError carries an error kind with the failing operation and path.
	PathError = fserr.PathError

	// Metrics holds the Prometheus instruments.
	Metrics = metrics.Metrics
)

// Change kinds and the event topic
const (
	TopicFileChanged = watch.TopicFileChanged

	KindCreate  = watch.KindCreate
	KindModify  = watch.KindModify
	KindRemove  = watch.KindRemove
	KindAccess  = watch.KindAccess
	KindOther   = watch.KindOther
	KindUnknown = watch.KindUnknown

	// DefaultDepth is the projection depth used when none is given.
	DefaultDepth = tree.DefaultDepth
)

// Error kinds
var (
	ErrNotFound      = fserr.ErrNotFound
	ErrInvalidInput  = fserr.ErrInvalidInput
	ErrIO            = fserr.ErrIO
	ErrWatch         = fserr.ErrWatch
	ErrAlreadyExists = fserr.ErrAlreadyExists
)

// New returns a Facade configured by cfg.
func New(cfg Config, opts ...Option) (*Facade, error) {
	return app.New(cfg, opts...)
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return config.Default()
}

// NewMetrics creates metrics on a dedicated Prometheus registry.
func NewMetrics() *Metrics {
	return metrics.New()
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *zap.Logger) Option { return app.WithLogger(logger) }

// WithMetrics records component metrics on m.
func WithMetrics(m *Metrics) Option { return app.WithMetrics(m) }

// WithBackend replaces the fsnotify watch backend.
func WithBackend(b Backend) Option { return app.WithBackend(b) }

// WithSpawner replaces the process spawner used by Reveal.
func WithSpawner(s Spawner) Option { return app.WithSpawner(s) }

// IsHidden reports whether name is a dot-entry.
func IsHidden(name string) bool { return tree.IsHidden(name) }

// IsProjectable reports whether an entry belongs in a projection.
func IsProjectable(isDir bool, ext string) bool { return tree.IsProjectable(isDir, ext) }

// ErrorMessage flattens err into a display string.
func ErrorMessage(err error) string { return app.ErrorMessage(err) }
