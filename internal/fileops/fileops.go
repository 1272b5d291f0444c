// Package fileops implements the document-level file operations that sit
// next to tree projection: reading and writing documents, creating,
// renaming and deleting entries, and revealing them in the platform file
// manager.
package fileops

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/TFMV/fsview/internal/fserr"
	"github.com/TFMV/fsview/internal/tree"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// FileInfo describes one filesystem entry.
type FileInfo struct {
	Name      string  `json:"name"`
	Path      string  `json:"path"`
	Size      int64   `json:"size"`
	IsDir     bool    `json:"is_dir"`
	Extension *string `json:"extension"`
	Modified  *int64  `json:"modified"`
	MIMEType  string  `json:"mime_type,omitempty"`
}

// Spawner starts name with args without waiting for it to finish.
type Spawner func(ctx context.Context, name string, args ...string) error

// Options configures Ops.
type Options struct {
	// Spawner starts the platform file manager. Defaults to StartProcess.
	Spawner Spawner

	// GOOS selects the reveal command. Defaults to runtime.GOOS.
	GOOS string

	Logger *zap.Logger
}

// Ops performs file operations. It holds no per-path state and is safe
// for concurrent use.
type Ops struct {
	spawn  Spawner
	goos   string
	logger *zap.Logger
}

// New returns Ops configured by opts.
func New(opts Options) *Ops {
	if opts.Spawner == nil {
		opts.Spawner = StartProcess
	}
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Ops{spawn: opts.Spawner, goos: opts.GOOS, logger: opts.Logger}
}

// StartProcess starts the command and reaps it in the background.
func StartProcess(ctx context.Context, name string, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func requirePath(op, path string) error {
	if strings.TrimSpace(path) == "" {
		return fserr.InvalidInput(op, path, "empty path")
	}
	return nil
}

func exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// Read returns the content of the file at path.
func (o *Ops) Read(path string) (string, error) {
	if err := requirePath("read", path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fserr.FromOS("read", path, err)
	}
	return string(data), nil
}

// Write replaces the content of the file at path, creating it and any
// missing parent directories.
func (o *Ops) Write(path, content string) error {
	if err := requirePath("write", path); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fserr.FromOS("write", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fserr.FromOS("write", path, err)
	}
	o.logger.Debug("file written", zap.String("path", path), zap.Int("bytes", len(content)))
	return nil
}

// Exists reports whether an entry exists at path.
func (o *Ops) Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Info returns metadata for the entry at path. MIMEType is detected from
// content for regular files only.
func (o *Ops) Info(path string) (FileInfo, error) {
	if err := requirePath("info", path); err != nil {
		return FileInfo{}, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fserr.FromOS("info", path, err)
	}

	info := FileInfo{
		Name:  filepath.Base(path),
		Path:  path,
		Size:  st.Size(),
		IsDir: st.IsDir(),
	}
	if ext := tree.Extension(info.Name); ext != "" {
		info.Extension = &ext
	}
	if mod := st.ModTime(); !mod.IsZero() && mod.Unix() >= 0 {
		secs := mod.Unix()
		info.Modified = &secs
	}
	if st.Mode().IsRegular() {
		mtype, err := mimetype.DetectFile(path)
		if err != nil {
			o.logger.Debug("mime detection failed", zap.String("path", path), zap.Error(err))
		} else {
			info.MIMEType = mtype.String()
		}
	}
	return info, nil
}

// CreateFile creates a new file holding content. It fails with
// ErrAlreadyExists when path is taken.
func (o *Ops) CreateFile(path, content string) error {
	if err := requirePath("create", path); err != nil {
		return err
	}
	if ok, err := exists(path); err != nil {
		return fserr.FromOS("create", path, err)
	} else if ok {
		return fserr.AlreadyExists("create", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fserr.FromOS("create", path, err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fserr.FromOS("create", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fserr.IO("create", path, err)
	}
	if err := f.Close(); err != nil {
		return fserr.IO("create", path, err)
	}
	return nil
}

// CreateDirectory creates path and any missing parents. It fails with
// ErrAlreadyExists when path is taken.
func (o *Ops) CreateDirectory(path string) error {
	if err := requirePath("mkdir", path); err != nil {
		return err
	}
	if ok, err := exists(path); err != nil {
		return fserr.FromOS("mkdir", path, err)
	} else if ok {
		return fserr.AlreadyExists("mkdir", path)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fserr.FromOS("mkdir", path, err)
	}
	return nil
}

// Rename moves oldPath to newPath. The target must not exist.
func (o *Ops) Rename(oldPath, newPath string) error {
	if err := requirePath("rename", oldPath); err != nil {
		return err
	}
	if err := requirePath("rename", newPath); err != nil {
		return err
	}
	if ok, err := exists(oldPath); err != nil {
		return fserr.FromOS("rename", oldPath, err)
	} else if !ok {
		return fserr.NotFound("rename", oldPath)
	}
	if ok, err := exists(newPath); err != nil {
		return fserr.FromOS("rename", newPath, err)
	} else if ok {
		return fserr.AlreadyExists("rename", newPath)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return fserr.FromOS("rename", oldPath, err)
	}
	o.logger.Debug("path renamed", zap.String("from", oldPath), zap.String("to", newPath))
	return nil
}

// Delete removes path. Directories are removed with their contents.
func (o *Ops) Delete(path string) error {
	if err := requirePath("delete", path); err != nil {
		return err
	}
	st, err := os.Lstat(path)
	if err != nil {
		return fserr.FromOS("delete", path, err)
	}
	if st.IsDir() {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		return fserr.FromOS("delete", path, err)
	}
	o.logger.Debug("path deleted", zap.String("path", path), zap.Bool("dir", st.IsDir()))
	return nil
}

// RevealCommand returns the file manager invocation that shows path on
// goos.
func RevealCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{"-R", path}
	case "windows":
		return "explorer", []string{"/select,", path}
	default:
		return "xdg-open", []string{filepath.Dir(path)}
	}
}

// Reveal shows path in the platform file manager.
func (o *Ops) Reveal(ctx context.Context, path string) error {
	if err := requirePath("reveal", path); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fserr.FromOS("reveal", path, err)
	}
	name, args := RevealCommand(o.goos, path)
	if err := o.spawn(ctx, name, args...); err != nil {
		return fserr.IO("reveal", path, err)
	}
	o.logger.Debug("revealed path", zap.String("path", path), zap.String("command", name))
	return nil
}
