package tree

import "strings"

// projectable lists the extensions of text-like files kept by Project.
// Matching is case-sensitive.
var projectable = map[string]struct{}{
	// Markdown
	"md": {}, "markdown": {},
	// Plain text
	"txt": {}, "text": {},
	// Source code
	"js": {}, "ts": {}, "jsx": {}, "tsx": {}, "vue": {}, "svelte": {},
	"rs": {}, "go": {}, "py": {}, "rb": {}, "php": {},
	"java": {}, "kt": {}, "scala": {}, "swift": {},
	"c": {}, "cpp": {}, "h": {}, "hpp": {}, "cs": {}, "fs": {},
	// Markup and style
	"html": {}, "htm": {}, "xml": {}, "svg": {},
	"css": {}, "scss": {}, "sass": {}, "less": {},
	// Structured data and config
	"json": {}, "yaml": {}, "yml": {}, "toml": {},
	"env": {}, "ini": {}, "conf": {}, "cfg": {},
	"gitignore": {}, "dockerignore": {}, "editorconfig": {},
	// Shell and scripts
	"sh": {}, "bash": {}, "zsh": {}, "fish": {}, "ps1": {}, "bat": {}, "cmd": {},
	"sql": {}, "graphql": {}, "gql": {},
	// Documentation
	"rst": {}, "adoc": {}, "org": {}, "tex": {},
	// Tabular and logs
	"csv": {}, "tsv": {}, "log": {},
}

// IsHidden reports whether name is a dotfile.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// IsProjectable reports whether an entry belongs in a projection: every
// directory does, files only when ext is a known text-like extension.
func IsProjectable(isDir bool, ext string) bool {
	if isDir {
		return true
	}
	if ext == "" {
		return false
	}
	_, ok := projectable[ext]
	return ok
}

// Extension returns the part of name after its last dot, without the dot.
// Names without a dot and dotfiles such as ".bashrc" have no extension.
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || name == ".." {
		return ""
	}
	return name[i+1:]
}
