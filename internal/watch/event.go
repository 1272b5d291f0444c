// Package watch keeps one native filesystem watch per requested root path
// and relays its events, normalized to ChangeEvent, to an application sink.
//
// The registry owns the native handles. Events are produced on each
// handle's own goroutine and never pass through the registry lock.
package watch

import "github.com/fsnotify/fsnotify"

// TopicFileChanged is the sink topic every ChangeEvent is emitted on.
const TopicFileChanged = "file-changed"

// Kind is the normalized kind of a filesystem change.
type Kind string

// Change kinds
const (
	KindCreate  Kind = "create"
	KindModify  Kind = "modify"
	KindRemove  Kind = "remove"
	KindAccess  Kind = "access"
	KindOther   Kind = "other"
	KindUnknown Kind = "unknown"
)

// ChangeEvent is one normalized filesystem change.
type ChangeEvent struct {
	Path string `json:"path"`
	Kind Kind   `json:"kind"`
}

// accessOps are the open, read, close-write and close-read bits that
// fsnotify keeps unexported. They follow Chmod in its Op bitmask.
const accessOps = fsnotify.Chmod<<1 | fsnotify.Chmod<<2 | fsnotify.Chmod<<3 | fsnotify.Chmod<<4

// KindFromOp maps an fsnotify op bitmask onto a Kind. When several bits
// are set the first match wins in the order create, remove, modify,
// access. Rename and Chmod are modifications of the entry's name and
// metadata.
func KindFromOp(op fsnotify.Op) Kind {
	switch {
	case op == 0:
		return KindOther
	case op.Has(fsnotify.Create):
		return KindCreate
	case op.Has(fsnotify.Remove):
		return KindRemove
	case op.Has(fsnotify.Write), op.Has(fsnotify.Rename), op.Has(fsnotify.Chmod):
		return KindModify
	case op&accessOps != 0:
		return KindAccess
	default:
		return KindUnknown
	}
}
