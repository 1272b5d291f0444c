// Package tree projects directory structure into ordered TreeNode graphs,
// either one level deep (List) or recursively up to a depth bound (Project).
package tree

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/TFMV/fsview/internal/fserr"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/karrick/godirwalk"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultDepth is the projection depth used when the caller gives none.
const DefaultDepth uint = 3

// Node is one filesystem entry in a projected view.
//
// Files always have nil Children. Directories always have a non-nil
// Children slice, empty when nothing projectable was found or when the
// depth bound stopped expansion.
type Node struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	IsDir     bool   `json:"is_dir"`
	Extension string `json:"extension,omitempty"`
	Children  []Node `json:"children"`
}

// Options configures a Builder.
type Options struct {
	// DefaultDepth is used by Project when maxDepth is nil. Zero means DefaultDepth.
	DefaultDepth uint

	// Exclude holds doublestar patterns matched against entry names.
	// Matching entries are left out of projections (not listings).
	Exclude []string

	Logger *zap.Logger
}

// Builder builds Listing and Projection snapshots. It holds no mutable
// state and is safe for concurrent use.
type Builder struct {
	defaultDepth uint
	exclude      []string
	logger       *zap.Logger
}

// NewBuilder validates opts and returns a Builder.
func NewBuilder(opts Options) (*Builder, error) {
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}
	depth := opts.DefaultDepth
	if depth == 0 {
		depth = DefaultDepth
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		defaultDepth: depth,
		exclude:      append([]string(nil), opts.Exclude...),
		logger:       logger,
	}, nil
}

// List returns the non-hidden entries of the directory at path, one level
// deep and unfiltered. Directories carry an empty, unexpanded Children slice.
func (b *Builder) List(path string) ([]Node, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return nil, fserr.IO("list", path, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fserr.FromOS("list", path, err)
	}
	if !info.IsDir() {
		return nil, fserr.InvalidInput("list", path, "not a directory")
	}

	dirents, err := godirwalk.ReadDirents(root, nil)
	if err != nil {
		return nil, fserr.FromOS("list", path, err)
	}

	nodes := make([]Node, 0, len(dirents))
	for _, de := range dirents {
		name := de.Name()
		if IsHidden(name) {
			continue
		}
		isDir, err := de.IsDirOrSymlinkToDir()
		if err != nil {
			// Dangling symlink: list it as a plain file.
			isDir = false
		}
		node := newNode(filepath.Join(root, name), name, isDir)
		if isDir {
			node.Children = []Node{}
		}
		nodes = append(nodes, node)
	}
	sortNodes(nodes)
	return nodes, nil
}

// Project builds the tree rooted at path, expanding directories while
// their depth is below maxDepth (DefaultDepth when nil). The root is at
// depth 0, so a maxDepth of 0 returns the root alone. Hidden entries,
// excluded names and files that are not projectable are skipped. Entries
// that cannot be read are dropped without failing the build; only a
// failure on the root itself is returned.
func (b *Builder) Project(path string, maxDepth *uint) (Node, error) {
	depth := b.defaultDepth
	if maxDepth != nil {
		depth = *maxDepth
	}

	root, err := filepath.Abs(path)
	if err != nil {
		return Node{}, fserr.IO("project", path, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return Node{}, fserr.FromOS("project", path, err)
	}

	node, err := b.project(root, rootName(root), info.IsDir(), 0, depth)
	if err != nil {
		return Node{}, fserr.FromOS("project", path, err)
	}
	return node, nil
}

// project returns the subtree at path. Each call owns the slice it
// returns; nothing is shared between siblings.
func (b *Builder) project(path, name string, isDir bool, depth, maxDepth uint) (Node, error) {
	node := newNode(path, name, isDir)
	if !isDir {
		return node, nil
	}
	node.Children = []Node{}
	if depth >= maxDepth {
		return node, nil
	}

	dirents, err := godirwalk.ReadDirents(path, nil)
	if err != nil {
		return Node{}, err
	}

	for _, de := range dirents {
		childName := de.Name()
		if IsHidden(childName) || b.excluded(childName) {
			continue
		}
		childIsDir, err := de.IsDirOrSymlinkToDir()
		if err != nil {
			b.logger.Debug("dropping entry", zap.String("path", filepath.Join(path, childName)), zap.Error(err))
			continue
		}
		if !IsProjectable(childIsDir, Extension(childName)) {
			continue
		}
		child, err := b.project(filepath.Join(path, childName), childName, childIsDir, depth+1, maxDepth)
		if err != nil {
			b.logger.Debug("dropping entry", zap.String("path", filepath.Join(path, childName)), zap.Error(err))
			continue
		}
		node.Children = append(node.Children, child)
	}
	sortNodes(node.Children)
	return node, nil
}

func (b *Builder) excluded(name string) bool {
	for _, pattern := range b.exclude {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func newNode(path, name string, isDir bool) Node {
	return Node{
		Name:      name,
		Path:      path,
		IsDir:     isDir,
		Extension: strings.ToLower(Extension(name)),
	}
}

// rootName is the display name of a root path; "/" and volume roots have
// no final segment and display as themselves.
func rootName(path string) string {
	name := filepath.Base(path)
	if name == string(filepath.Separator) || name == "." || strings.HasSuffix(name, ":"+string(filepath.Separator)) {
		return path
	}
	return name
}

// sortNodes orders directories before files, then by case-folded name.
func sortNodes(nodes []Node) {
	if len(nodes) < 2 {
		return
	}
	fold := cases.Fold()
	keys := make(map[string]string, len(nodes))
	for _, n := range nodes {
		keys[n.Name] = fold.String(norm.NFC.String(n.Name))
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].IsDir != nodes[j].IsDir {
			return nodes[i].IsDir
		}
		return keys[nodes[i].Name] < keys[nodes[j].Name]
	})
}
