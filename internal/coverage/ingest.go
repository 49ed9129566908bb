package coverage

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/zjy-dev/stuckpoint/internal/logger"
)

// ErrNoExecutionData indicates the execution data source itself could not be
// opened or read. This is fatal: nothing downstream is meaningful without it.
var ErrNoExecutionData = errors.New("execution data cannot be read")

// LineCounters is one raw per-line row produced by the coverage library.
type LineCounters struct {
	Number              int
	InstructionsTotal   int
	InstructionsCovered int
	BranchesTotal       int
	BranchesCovered     int
}

// ClassCoverage is the coverage-library output for one class of one binary.
type ClassCoverage struct {
	ClassFqn string
	FileName string
	Lines    []LineCounters
}

// ExecData is the parsed execution data, opaque to the ingestor and owned by
// the Source that produced it.
type ExecData interface{}

// Source is the boundary to the external coverage library: it parses the raw
// execution data once and analyzes each binary against it.
type Source interface {
	// Open parses the execution data file. Failure here is fatal.
	Open(execPath string) (ExecData, error)

	// Analyze resolves per-class line coverage for one binary. Failure is
	// recoverable; the ingestor records it and continues.
	Analyze(data ExecData, binary string) ([]ClassCoverage, error)
}

// Failure records one binary that could not be analyzed.
type Failure struct {
	Binary  string
	Message string
}

// Summary reports how ingestion went across all binaries. It is always
// produced, surfaced to the caller, and never blocks downstream stages.
type Summary struct {
	SuccessCount  int
	FailureCount  int
	TotalBinaries int
	Failures      []Failure
}

// Ingestor builds the coverage Table from execution data and a binary set.
type Ingestor struct {
	source  Source
	workers int
}

// NewIngestor creates an ingestor. workers bounds per-binary parallelism;
// values below 1 mean sequential.
func NewIngestor(source Source, workers int) *Ingestor {
	if workers < 1 {
		workers = 1
	}
	return &Ingestor{source: source, workers: workers}
}

// Ingest analyzes every binary against the execution data and materializes
// the coverage table. A binary that fails analysis is recorded in the
// summary and skipped; only an unreadable execution data source aborts.
//
// Only lines with at least one executable instruction are materialized;
// non-executable lines are omitted, not zero-filled.
func (in *Ingestor) Ingest(execPath string, binaries []string) (Table, *Summary, error) {
	data, err := in.source.Open(execPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrNoExecutionData, execPath, err)
	}

	// Analyses run in parallel but results merge in input order, so the
	// table is identical run to run.
	perBinary := make([][]ClassCoverage, len(binaries))
	failures := make([]*Failure, len(binaries))

	var g errgroup.Group
	g.SetLimit(in.workers)
	for i, binary := range binaries {
		i, binary := i, binary
		g.Go(func() error {
			classes, err := in.source.Analyze(data, binary)
			if err != nil {
				logger.Warn("failed to analyze %s: %v", binary, err)
				failures[i] = &Failure{Binary: binary, Message: err.Error()}
				return nil
			}
			perBinary[i] = classes
			return nil
		})
	}
	// Workers record failures instead of returning them; Wait cannot fail.
	_ = g.Wait()

	table := make(Table)
	summary := &Summary{TotalBinaries: len(binaries)}

	for i := range binaries {
		if failures[i] != nil {
			summary.FailureCount++
			summary.Failures = append(summary.Failures, *failures[i])
			continue
		}
		summary.SuccessCount++
		for _, class := range perBinary[i] {
			addClass(table, class)
		}
	}

	logger.Info("ingested coverage for %d lines across %d classes (%d/%d binaries ok)",
		table.LineCount(), len(table), summary.SuccessCount, summary.TotalBinaries)

	return table, summary, nil
}

func addClass(table Table, class ClassCoverage) {
	for _, row := range class.Lines {
		if row.InstructionsTotal <= 0 {
			continue
		}
		table.Add(NewLine(
			class.ClassFqn,
			class.FileName,
			row.Number,
			row.InstructionsTotal,
			row.InstructionsCovered,
			row.BranchesTotal,
			row.BranchesCovered,
		))
	}
}
