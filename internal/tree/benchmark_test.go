package tree

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// createBenchTree creates width directories per level, each holding a
// markdown file and a binary file, down to levels.
func createBenchTree(b *testing.B, root string, width, levels int) {
	b.Helper()
	var fill func(dir string, level int)
	fill = func(dir string, level int) {
		if level == levels {
			return
		}
		for i := 0; i < width; i++ {
			sub := filepath.Join(dir, fmt.Sprintf("dir%d", i))
			if err := os.MkdirAll(sub, 0755); err != nil {
				b.Fatalf("mkdir: %v", err)
			}
			for _, name := range []string{"note.md", "blob.bin"} {
				if err := os.WriteFile(filepath.Join(sub, name), []byte("x"), 0644); err != nil {
					b.Fatalf("write: %v", err)
				}
			}
			fill(sub, level+1)
		}
	}
	fill(root, 0)
}

func BenchmarkProject(b *testing.B) {
	root := b.TempDir()
	createBenchTree(b, root, 5, 4)
	builder, err := NewBuilder(Options{})
	if err != nil {
		b.Fatal(err)
	}

	for _, d := range []uint{1, 2, 3, 4} {
		d := d
		b.Run(fmt.Sprintf("depth=%d", d), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := builder.Project(root, &d); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkList(b *testing.B) {
	root := b.TempDir()
	createBenchTree(b, root, 50, 1)
	builder, err := NewBuilder(Options{})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := builder.List(root); err != nil {
			b.Fatal(err)
		}
	}
}
