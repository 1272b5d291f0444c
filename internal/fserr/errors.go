// Package fserr defines the error taxonomy shared by the tree builder, the
// watch registry and the file operations.
package fserr

import (
	"errors"
	"fmt"
	"io/fs"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrIO            = errors.New("io error")
	ErrWatch         = errors.New("watcher error")
	ErrAlreadyExists = errors.New("already exists")
)

// PathError records a failed operation on a path together with its kind.
type PathError struct {
	Kind error  // One of the Err* kinds above
	Op   string // Operation that failed (list, project, watch, ...)
	Path string // Path the operation was applied to
	Err  error  // Underlying cause, may be nil
}

func (e *PathError) Error() string {
	switch e.Kind {
	case ErrNotFound:
		return "file not found: " + e.Path
	case ErrAlreadyExists:
		return "already exists: " + e.Path
	case ErrInvalidInput:
		if e.Err != nil {
			return fmt.Sprintf("invalid input: %s: %v", e.Path, e.Err)
		}
		return "invalid input: " + e.Path
	case ErrWatch:
		return fmt.Sprintf("watcher error: %s %s: %v", e.Op, e.Path, e.Err)
	default:
		return fmt.Sprintf("io error: %s %s: %v", e.Op, e.Path, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *PathError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NotFound reports that path did not exist when op ran.
func NotFound(op, path string) error {
	return &PathError{Kind: ErrNotFound, Op: op, Path: path}
}

// AlreadyExists reports that op refused to overwrite path.
func AlreadyExists(op, path string) error {
	return &PathError{Kind: ErrAlreadyExists, Op: op, Path: path}
}

// InvalidInput reports a violated precondition of op.
func InvalidInput(op, path, reason string) error {
	return &PathError{Kind: ErrInvalidInput, Op: op, Path: path, Err: errors.New(reason)}
}

// IO wraps an unexpected filesystem failure.
func IO(op, path string, err error) error {
	return &PathError{Kind: ErrIO, Op: op, Path: path, Err: err}
}

// Watch wraps a failure of the native notification backend.
func Watch(op, path string, err error) error {
	return &PathError{Kind: ErrWatch, Op: op, Path: path, Err: err}
}

// FromOS classifies an error returned by the os package.
func FromOS(op, path string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return &PathError{Kind: ErrNotFound, Op: op, Path: path, Err: err}
	case errors.Is(err, fs.ErrExist):
		return &PathError{Kind: ErrAlreadyExists, Op: op, Path: path, Err: err}
	default:
		return IO(op, path, err)
	}
}
