package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/TFMV/fsview/internal/tree"
	"github.com/TFMV/fsview/internal/watch"
)

const (
	formatJSON = "json"
	formatText = "text"
)

func checkFormat(format string) error {
	switch format {
	case formatJSON, formatText:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (expected json or text)", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTree prints node and its children one per line, indented by depth.
// Directories carry a trailing slash.
func writeTree(w io.Writer, node tree.Node, depth int) {
	name := node.Name
	if node.IsDir {
		name += "/"
	}
	fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), name)
	for _, child := range node.Children {
		writeTree(w, child, depth+1)
	}
}

// writeEventJSON prints ev as a single JSON line.
func writeEventJSON(w io.Writer, ev watch.ChangeEvent) error {
	return json.NewEncoder(w).Encode(ev)
}
