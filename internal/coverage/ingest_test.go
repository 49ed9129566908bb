package coverage

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is an in-memory Source for ingestor tests.
type fakeSource struct {
	openErr error
	classes map[string][]ClassCoverage // binary -> classes
	badBins map[string]error           // binary -> analyze error
}

func (f *fakeSource) Open(execPath string) (ExecData, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return execPath, nil
}

func (f *fakeSource) Analyze(_ ExecData, binary string) ([]ClassCoverage, error) {
	if err, ok := f.badBins[binary]; ok {
		return nil, err
	}
	classes, ok := f.classes[binary]
	if !ok {
		return nil, fmt.Errorf("unknown binary %s", binary)
	}
	return classes, nil
}

func classFixture(fqn string, lines ...LineCounters) ClassCoverage {
	return ClassCoverage{ClassFqn: fqn, FileName: "Test.java", Lines: lines}
}

func TestIngest_Success(t *testing.T) {
	source := &fakeSource{
		classes: map[string][]ClassCoverage{
			"app.jar": {
				classFixture("com.example.Main",
					LineCounters{Number: 10, InstructionsTotal: 4, InstructionsCovered: 2, BranchesTotal: 2, BranchesCovered: 1},
					LineCounters{Number: 11, InstructionsTotal: 3, InstructionsCovered: 3},
				),
			},
			"lib.jar": {
				classFixture("com.example.Util",
					LineCounters{Number: 5, InstructionsTotal: 2, InstructionsCovered: 0},
				),
			},
		},
	}

	table, summary, err := NewIngestor(source, 2).Ingest("cov.exec", []string{"app.jar", "lib.jar"})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SuccessCount)
	assert.Equal(t, 0, summary.FailureCount)
	assert.Equal(t, 2, summary.TotalBinaries)
	assert.Equal(t, 3, table.LineCount())

	l, ok := table.Lookup("com.example.Main", 10)
	require.True(t, ok)
	assert.Equal(t, PartlyCovered, l.Status)
}

// One corrupt binary out of three must not abort ingestion.
func TestIngest_PartialFailure(t *testing.T) {
	source := &fakeSource{
		classes: map[string][]ClassCoverage{
			"good1.jar": {classFixture("com.example.A", LineCounters{Number: 1, InstructionsTotal: 2, InstructionsCovered: 2})},
			"good2.jar": {classFixture("com.example.B", LineCounters{Number: 2, InstructionsTotal: 2, InstructionsCovered: 1})},
		},
		badBins: map[string]error{
			"corrupt.jar": errors.New("unsupported class file version"),
		},
	}

	table, summary, err := NewIngestor(source, 3).Ingest("cov.exec", []string{"good1.jar", "corrupt.jar", "good2.jar"})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SuccessCount)
	assert.Equal(t, 1, summary.FailureCount)
	assert.Equal(t, 3, summary.TotalBinaries)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "corrupt.jar", summary.Failures[0].Binary)
	assert.Contains(t, summary.Failures[0].Message, "unsupported class file")

	assert.Equal(t, 2, table.LineCount())
}

func TestIngest_NoExecutionData(t *testing.T) {
	source := &fakeSource{openErr: errors.New("file truncated")}

	_, _, err := NewIngestor(source, 1).Ingest("missing.exec", []string{"app.jar"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoExecutionData))
}

// Lines without executable instructions are omitted, not zero-filled.
func TestIngest_SkipsNonExecutableLines(t *testing.T) {
	source := &fakeSource{
		classes: map[string][]ClassCoverage{
			"app.jar": {
				classFixture("com.example.Main",
					LineCounters{Number: 1, InstructionsTotal: 0, InstructionsCovered: 0},
					LineCounters{Number: 2, InstructionsTotal: 3, InstructionsCovered: 1},
				),
			},
		},
	}

	table, _, err := NewIngestor(source, 1).Ingest("cov.exec", []string{"app.jar"})
	require.NoError(t, err)

	assert.Equal(t, 1, table.LineCount())
	_, ok := table.Lookup("com.example.Main", 1)
	assert.False(t, ok)
}

// The same inputs must produce the same table regardless of worker count.
func TestIngest_DeterministicAcrossWorkerCounts(t *testing.T) {
	source := &fakeSource{classes: map[string][]ClassCoverage{}}
	var binaries []string
	for i := 0; i < 20; i++ {
		bin := fmt.Sprintf("bin%02d.jar", i)
		binaries = append(binaries, bin)
		source.classes[bin] = []ClassCoverage{
			classFixture(fmt.Sprintf("com.example.C%02d", i),
				LineCounters{Number: i + 1, InstructionsTotal: 4, InstructionsCovered: i % 5},
			),
		}
	}

	seq, seqSummary, err := NewIngestor(source, 1).Ingest("cov.exec", binaries)
	require.NoError(t, err)
	par, parSummary, err := NewIngestor(source, 8).Ingest("cov.exec", binaries)
	require.NoError(t, err)

	assert.Equal(t, seqSummary, parSummary)
	assert.Equal(t, seq, par)
}

// barrierSource blocks each Analyze until all binaries have entered, so
// ingestion only completes when the pool actually runs them concurrently.
type barrierSource struct {
	ready   chan struct{}
	release chan struct{}
}

func (b *barrierSource) Open(execPath string) (ExecData, error) { return execPath, nil }

func (b *barrierSource) Analyze(_ ExecData, binary string) ([]ClassCoverage, error) {
	b.ready <- struct{}{}
	select {
	case <-b.release:
		return []ClassCoverage{classFixture("com.example." + binary,
			LineCounters{Number: 1, InstructionsTotal: 1, InstructionsCovered: 1})}, nil
	case <-time.After(5 * time.Second):
		return nil, errors.New("pool never ran binaries concurrently")
	}
}

func TestIngest_RunsBinariesConcurrently(t *testing.T) {
	const workers = 4

	source := &barrierSource{
		ready:   make(chan struct{}, workers),
		release: make(chan struct{}),
	}

	done := make(chan struct{})
	var table Table
	var summary *Summary
	go func() {
		defer close(done)
		var err error
		table, summary, err = NewIngestor(source, workers).Ingest("cov.exec", []string{"a.jar", "b.jar", "c.jar", "d.jar"})
		assert.NoError(t, err)
	}()

	for i := 0; i < workers; i++ {
		select {
		case <-source.ready:
		case <-time.After(5 * time.Second):
			t.Fatalf("only %d of %d analyses started concurrently", i, workers)
		}
	}
	close(source.release)
	<-done

	assert.Equal(t, workers, summary.SuccessCount)
	assert.Equal(t, workers, table.LineCount())
}
