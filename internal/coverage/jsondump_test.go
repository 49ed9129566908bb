package coverage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDump = `{
  "classes": [
    {
      "classFqn": "com.example.Main",
      "fileName": "Main.java",
      "binary": "app.jar",
      "lines": [
        {"line": 10, "instructionsTotal": 4, "instructionsCovered": 2, "branchesTotal": 2, "branchesCovered": 1},
        {"line": 11, "instructionsTotal": 3, "instructionsCovered": 3}
      ]
    },
    {
      "classFqn": "com.example.Main$Inner",
      "binary": "app.jar",
      "lines": [
        {"line": 30, "instructionsTotal": 2, "instructionsCovered": 0}
      ]
    },
    {
      "classFqn": "com.example.util.Helper",
      "fileName": "Helper.java",
      "binary": "lib.jar",
      "lines": [
        {"line": 7, "instructionsTotal": 5, "instructionsCovered": 5}
      ]
    }
  ]
}`

func writeDump(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coverage.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestJSONDumpSource_OpenAndAnalyze(t *testing.T) {
	source := NewJSONDumpSource()

	data, err := source.Open(writeDump(t, sampleDump))
	require.NoError(t, err)

	classes, err := source.Analyze(data, "app.jar")
	require.NoError(t, err)
	require.Len(t, classes, 2)

	assert.Equal(t, "com.example.Main", classes[0].ClassFqn)
	assert.Equal(t, "Main.java", classes[0].FileName)
	require.Len(t, classes[0].Lines, 2)
	assert.Equal(t, 10, classes[0].Lines[0].Number)
	assert.Equal(t, 4, classes[0].Lines[0].InstructionsTotal)
	assert.Equal(t, 2, classes[0].Lines[0].InstructionsCovered)

	// Missing fileName falls back to the outer class source file.
	assert.Equal(t, "Main.java", classes[1].FileName)
}

func TestJSONDumpSource_AnalyzeByBaseName(t *testing.T) {
	source := NewJSONDumpSource()

	data, err := source.Open(writeDump(t, sampleDump))
	require.NoError(t, err)

	classes, err := source.Analyze(data, "/build/out/lib.jar")
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "com.example.util.Helper", classes[0].ClassFqn)
}

func TestJSONDumpSource_UnknownBinary(t *testing.T) {
	source := NewJSONDumpSource()

	data, err := source.Open(writeDump(t, sampleDump))
	require.NoError(t, err)

	_, err = source.Analyze(data, "missing.jar")
	assert.Error(t, err)
}

func TestJSONDumpSource_OpenFailures(t *testing.T) {
	source := NewJSONDumpSource()

	t.Run("missing file", func(t *testing.T) {
		_, err := source.Open(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := source.Open(writeDump(t, "{not json"))
		assert.Error(t, err)
	})
}

// The ingestor owns the fatal-vs-recoverable distinction over this source.
func TestJSONDumpSource_WithIngestor(t *testing.T) {
	source := NewJSONDumpSource()
	ingestor := NewIngestor(source, 2)

	table, summary, err := ingestor.Ingest(writeDump(t, sampleDump), []string{"app.jar", "lib.jar", "ghost.jar"})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SuccessCount)
	assert.Equal(t, 1, summary.FailureCount)
	assert.Equal(t, 4, table.LineCount())

	_, _, err = ingestor.Ingest(filepath.Join(t.TempDir(), "gone.json"), []string{"app.jar"})
	assert.True(t, errors.Is(err, ErrNoExecutionData))
}

func TestDefaultFileName(t *testing.T) {
	assert.Equal(t, "Main.java", defaultFileName("com.example.Main"))
	assert.Equal(t, "Main.java", defaultFileName("com.example.Main$Inner"))
	assert.Equal(t, "Top.java", defaultFileName("Top"))
}
