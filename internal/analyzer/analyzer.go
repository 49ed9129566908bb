// Package analyzer wires the analysis pipeline: coverage ingestion, call
// graph construction, stuck point scoring, and report generation.
package analyzer

import (
	"fmt"
	"io"
	"runtime"

	"github.com/zjy-dev/stuckpoint/internal/annotate"
	"github.com/zjy-dev/stuckpoint/internal/coverage"
	"github.com/zjy-dev/stuckpoint/internal/graph"
	"github.com/zjy-dev/stuckpoint/internal/logger"
	"github.com/zjy-dev/stuckpoint/internal/program"
	"github.com/zjy-dev/stuckpoint/internal/report"
	"github.com/zjy-dev/stuckpoint/internal/score"
)

// Config holds everything one analysis run needs.
type Config struct {
	// Inputs
	ExecPath   string
	Binaries   []string
	ModelPath  string
	EntryPoint string

	// Outputs
	OutputPath   string
	SourceDir    string
	AnnotatedDir string

	// Tuning
	Workers int
	TopN    int

	// Console destination for the top-N table.
	Console io.Writer
}

// Result is what a completed run produces.
type Result struct {
	Report report.Report
	Ingest *coverage.Summary
	Ranked []score.ScoredStuckPoint
}

// Analyzer runs the full pipeline against one coverage source.
type Analyzer struct {
	cfg    Config
	source coverage.Source
}

// New creates an analyzer. A non-positive worker count resolves to the
// number of CPUs, so both ingestion and scoring run CPU-bounded by default.
func New(cfg Config, source coverage.Source) *Analyzer {
	if cfg.Workers < 1 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Analyzer{cfg: cfg, source: source}
}

// Run executes the pipeline. Per-binary analysis failures are carried in
// the result summary; only unreadable execution data, a broken program
// view, or an unresolvable entry point abort the run. Zero stuck points is
// a success and still writes a valid report.
func (a *Analyzer) Run() (*Result, error) {
	logger.Info("Step 1: ingesting execution data from %s", a.cfg.ExecPath)
	table, summary, err := coverage.NewIngestor(a.source, a.cfg.Workers).Ingest(a.cfg.ExecPath, a.cfg.Binaries)
	if err != nil {
		return nil, err
	}

	stuck := table.StuckPoints()
	logger.Info("found %d coverage lines, %d partly covered", table.LineCount(), len(stuck))

	var ranked []score.ScoredStuckPoint
	if len(stuck) == 0 {
		logger.Info("no stuck points found, writing empty report")
	} else {
		ranked, err = a.scoreStuckPoints(table, stuck)
		if err != nil {
			return nil, err
		}
	}

	// Annotate before reporting so summaries can quote the flagged copy.
	a.annotateSources(table)

	rep, err := a.writeReport(table, ranked)
	if err != nil {
		return nil, err
	}

	if a.cfg.Console != nil && len(ranked) > 0 {
		report.PrintTop(a.cfg.Console, ranked, a.cfg.TopN)
	}

	return &Result{Report: rep, Ingest: summary, Ranked: ranked}, nil
}

func (a *Analyzer) scoreStuckPoints(table coverage.Table, stuck []coverage.Line) ([]score.ScoredStuckPoint, error) {
	logger.Info("Step 2: loading program view from %s", a.cfg.ModelPath)
	model, err := program.LoadModel(a.cfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load program view: %w", err)
	}

	spec, err := program.ParseEntrySpec(a.cfg.EntryPoint)
	if err != nil {
		return nil, fmt.Errorf("invalid entry point %q: %w", a.cfg.EntryPoint, err)
	}

	logger.Info("Step 3: building call graph from entry point %s", a.cfg.EntryPoint)
	cg, err := graph.Build(model, []program.EntrySpec{spec})
	if err != nil {
		return nil, fmt.Errorf("failed to build call graph: %w", err)
	}
	logger.Debug("call graph covers %d reachable methods", cg.ReachableCount())

	logger.Info("Step 4: scoring %d stuck points with %d workers", len(stuck), a.cfg.Workers)
	scored := score.NewScorer(graph.NewICFG(model, cg), table).ScoreAll(stuck, a.cfg.Workers)

	return score.Rank(scored), nil
}

func (a *Analyzer) writeReport(table coverage.Table, ranked []score.ScoredStuckPoint) (report.Report, error) {
	resolver, err := report.NewSourceResolver(a.cfg.SourceDir)
	if err != nil {
		return report.Report{}, err
	}

	// The annotated copy is preferred for summary context when it exists;
	// failure to index it only loses the preference.
	annotated, _ := report.NewSourceResolver("")
	if a.cfg.AnnotatedDir != "" {
		if r, aerr := report.NewSourceResolver(a.cfg.AnnotatedDir); aerr == nil {
			annotated = r
		} else {
			logger.Warn("failed to index annotated sources: %v", aerr)
		}
	}

	meta := report.NewMetadata(a.cfg.ExecPath, a.cfg.EntryPoint, a.cfg.Binaries)
	rep := report.Build(meta, ranked, table.LineCount(), report.NewSummarizer(table, resolver, annotated))

	logger.Info("Step 5: writing report to %s", a.cfg.OutputPath)
	if err := report.WriteJSON(a.cfg.OutputPath, rep); err != nil {
		return report.Report{}, fmt.Errorf("failed to write report: %w", err)
	}
	return rep, nil
}

// annotateSources writes the annotated source mirror. Failures here do not
// fail the run; the report is already on disk.
func (a *Analyzer) annotateSources(table coverage.Table) {
	if a.cfg.SourceDir == "" || a.cfg.AnnotatedDir == "" {
		return
	}
	if _, err := annotate.NewAnnotator(table).Run(a.cfg.SourceDir, a.cfg.AnnotatedDir); err != nil {
		logger.Warn("failed to write annotated sources: %v", err)
	}
}
