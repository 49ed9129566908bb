package annotate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjy-dev/stuckpoint/internal/coverage"
)

func TestRun_AnnotatesSourceTree(t *testing.T) {
	sourceDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "annotated")

	pkgDir := filepath.Join(sourceDir, "com", "example")
	require.NoError(t, os.MkdirAll(pkgDir, 0755))

	source := "class App {\n  void run() {\n    step();\n  }\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "App.java"), []byte(source), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "README.md"), []byte("docs\n"), 0644))

	table := coverage.Table{}
	table.Add(coverage.NewLine("com.example.App", "App.java", 2, 4, 4, 0, 0))
	table.Add(coverage.NewLine("com.example.App", "App.java", 3, 4, 2, 2, 1))
	table.Add(coverage.NewLine("com.example.App", "App.java", 4, 4, 0, 0, 0))

	count, err := NewAnnotator(table).Run(sourceDir, outputDir)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	annotated, err := os.ReadFile(filepath.Join(outputDir, "com", "example", "App.java"))
	require.NoError(t, err)
	assert.Equal(t,
		"[ ] class App {\n"+
			"[✓]   void run() {\n"+
			"[~]     step();\n"+
			"[✗]   }\n"+
			"[ ] }\n",
		string(annotated))

	// Non-source files are copied through untouched.
	readme, err := os.ReadFile(filepath.Join(outputDir, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "docs\n", string(readme))
}

func TestRun_NoCoverageForFile(t *testing.T) {
	sourceDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "annotated")

	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "Lone.java"), []byte("class Lone {}\n"), 0644))

	count, err := NewAnnotator(coverage.Table{}).Run(sourceDir, outputDir)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	annotated, err := os.ReadFile(filepath.Join(outputDir, "Lone.java"))
	require.NoError(t, err)
	assert.Equal(t, "[ ] class Lone {}\n", string(annotated))
}

func TestRun_MissingSourceDir(t *testing.T) {
	_, err := NewAnnotator(coverage.Table{}).Run(filepath.Join(t.TempDir(), "nope"), t.TempDir())
	assert.Error(t, err)
}

func TestClassFqnFor(t *testing.T) {
	assert.Equal(t, "com.example.App", classFqnFor(filepath.FromSlash("com/example/App.java")))
	assert.Equal(t, "Main", classFqnFor("Main.java"))
}
