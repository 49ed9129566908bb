// Package annotate copies a source tree and prepends a coverage flag to
// every line of each source file, producing a browsable annotated mirror of
// the project.
package annotate

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zjy-dev/stuckpoint/internal/coverage"
	"github.com/zjy-dev/stuckpoint/internal/logger"
)

// Annotator writes the annotated copy of a source directory. Class FQNs are
// derived from each file's path relative to the source root, so the root
// must be the package hierarchy root (the directory containing the
// top-level packages).
type Annotator struct {
	table coverage.Table
}

// NewAnnotator builds an annotator over the coverage table.
func NewAnnotator(table coverage.Table) *Annotator {
	return &Annotator{table: table}
}

// Run copies sourceDir to outputDir and annotates every .java file,
// returning the number of files annotated. Non-source files are copied
// unchanged.
func (a *Annotator) Run(sourceDir, outputDir string) (int, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		return 0, fmt.Errorf("source directory does not exist: %s: %w", sourceDir, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("source path is not a directory: %s", sourceDir)
	}

	annotated := 0
	err = filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(outputDir, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		if strings.HasSuffix(d.Name(), ".java") {
			data = a.annotate(rel, data)
			annotated++
		}
		return os.WriteFile(target, data, 0644)
	})
	if err != nil {
		return annotated, fmt.Errorf("failed to annotate source tree: %w", err)
	}

	logger.Info("annotated %d source files into %s", annotated, outputDir)
	return annotated, nil
}

// annotate prepends a coverage flag to every line of one source file.
func (a *Annotator) annotate(relPath string, data []byte) []byte {
	classFqn := classFqnFor(relPath)
	classLines := a.table[classFqn]

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")

	var b strings.Builder
	b.Grow(len(data) + 4*len(lines))
	for i, line := range lines {
		b.WriteString(flagFor(classLines, i+1))
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func flagFor(classLines map[int]coverage.Line, num int) string {
	line, ok := classLines[num]
	if !ok {
		return "[ ] "
	}
	switch line.Status {
	case coverage.FullyCovered:
		return "[✓] "
	case coverage.PartlyCovered:
		return "[~] "
	default:
		return "[✗] "
	}
}

// classFqnFor maps a relative source path to a class FQN, e.g.
// com/example/App.java -> com.example.App.
func classFqnFor(relPath string) string {
	trimmed := strings.TrimSuffix(relPath, ".java")
	return strings.ReplaceAll(filepath.ToSlash(trimmed), "/", ".")
}
