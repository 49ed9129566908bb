package report

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zjy-dev/stuckpoint/internal/logger"
)

// SourceResolver maps class FQNs back to files under a source directory so
// summaries can quote the code around a stuck point. Resolution walks the
// tree once and indexes files by base name; a class resolves to the indexed
// path whose directory suffix matches the class's package.
type SourceResolver struct {
	root    string
	byName  map[string][]string
	present bool
}

// NewSourceResolver indexes the source directory. An empty directory path
// yields an unavailable resolver, which is valid: summaries then skip the
// source context section.
func NewSourceResolver(sourceDir string) (*SourceResolver, error) {
	resolver := &SourceResolver{root: sourceDir, byName: make(map[string][]string)}
	if sourceDir == "" {
		return resolver, nil
	}

	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		resolver.byName[name] = append(resolver.byName[name], path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index source directory %s: %w", sourceDir, err)
	}

	resolver.present = true
	logger.Debug("indexed %d distinct file names under %s", len(resolver.byName), sourceDir)
	return resolver, nil
}

// Available reports whether a source directory was indexed.
func (r *SourceResolver) Available() bool {
	return r.present
}

// Find returns the source file path for a class, or "" when unresolved.
// When the base name is ambiguous, the candidate whose path contains the
// class's package as a directory suffix wins.
func (r *SourceResolver) Find(classFqn, fileName string) string {
	candidates := r.byName[fileName]
	if len(candidates) == 0 {
		return ""
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	pkgPath := strings.ReplaceAll(packageOf(classFqn), ".", string(filepath.Separator))
	for _, candidate := range candidates {
		dir := filepath.Dir(candidate)
		if pkgPath == "" || strings.HasSuffix(dir, pkgPath) {
			return candidate
		}
	}
	return candidates[0]
}

// Context reads the lines surrounding target from a source file, keyed by
// 1-based line number. Returns nil when the file cannot be read.
func (r *SourceResolver) Context(path string, target, contextLines int) map[int]string {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read source file %s: %v", path, err)
		return nil
	}

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")

	start := target - contextLines
	if start < 1 {
		start = 1
	}
	end := target + contextLines
	if end > len(lines) {
		end = len(lines)
	}

	context := make(map[int]string, end-start+1)
	for num := start; num <= end; num++ {
		context[num] = lines[num-1]
	}
	return context
}

func packageOf(classFqn string) string {
	if idx := strings.LastIndex(classFqn, "."); idx >= 0 {
		return classFqn[:idx]
	}
	return ""
}
