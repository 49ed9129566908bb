package coverage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// JSONDumpSource reads execution data that the JVM-side dumper has already
// resolved into per-class line counters and serialized as JSON. Each class
// entry names the binary it was loaded from, so per-binary analysis is a
// filter over the parsed dump.
type JSONDumpSource struct{}

// NewJSONDumpSource creates a Source backed by a JSON execution dump.
func NewJSONDumpSource() *JSONDumpSource {
	return &JSONDumpSource{}
}

type dumpFile struct {
	Classes []dumpClass `json:"classes"`
}

type dumpClass struct {
	ClassFqn string     `json:"classFqn"`
	FileName string     `json:"fileName"`
	Binary   string     `json:"binary"`
	Lines    []dumpLine `json:"lines"`
}

type dumpLine struct {
	Line                int `json:"line"`
	InstructionsTotal   int `json:"instructionsTotal"`
	InstructionsCovered int `json:"instructionsCovered"`
	BranchesTotal       int `json:"branchesTotal"`
	BranchesCovered     int `json:"branchesCovered"`
}

// Open reads and parses the dump file.
func (s *JSONDumpSource) Open(execPath string) (ExecData, error) {
	raw, err := os.ReadFile(execPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read execution dump: %w", err)
	}

	var dump dumpFile
	if err := json.Unmarshal(raw, &dump); err != nil {
		return nil, fmt.Errorf("failed to parse execution dump: %w", err)
	}

	return &dump, nil
}

// Analyze returns the class coverage rows recorded for one binary. A binary
// with no entry in the dump was never analyzed by the dumper, which is
// reported as a per-binary failure.
func (s *JSONDumpSource) Analyze(data ExecData, binary string) ([]ClassCoverage, error) {
	dump, ok := data.(*dumpFile)
	if !ok {
		return nil, fmt.Errorf("unexpected execution data type %T", data)
	}

	var classes []ClassCoverage
	found := false
	for _, class := range dump.Classes {
		if class.Binary != binary && class.Binary != filepath.Base(binary) {
			continue
		}
		found = true
		classes = append(classes, convertDumpClass(class))
	}

	if !found {
		return nil, fmt.Errorf("binary %s not present in execution dump", binary)
	}

	return classes, nil
}

func convertDumpClass(class dumpClass) ClassCoverage {
	fileName := class.FileName
	if fileName == "" {
		fileName = defaultFileName(class.ClassFqn)
	}

	out := ClassCoverage{
		ClassFqn: class.ClassFqn,
		FileName: fileName,
		Lines:    make([]LineCounters, 0, len(class.Lines)),
	}
	for _, row := range class.Lines {
		out.Lines = append(out.Lines, LineCounters{
			Number:              row.Line,
			InstructionsTotal:   row.InstructionsTotal,
			InstructionsCovered: row.InstructionsCovered,
			BranchesTotal:       row.BranchesTotal,
			BranchesCovered:     row.BranchesCovered,
		})
	}
	return out
}

// defaultFileName derives a Java source file name from the class FQN when the
// dump carries none. Nested classes map to their outer class file.
func defaultFileName(classFqn string) string {
	simple := classFqn
	if idx := strings.LastIndex(simple, "."); idx >= 0 {
		simple = simple[idx+1:]
	}
	if idx := strings.Index(simple, "$"); idx >= 0 {
		simple = simple[:idx]
	}
	return simple + ".java"
}
