package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjy-dev/stuckpoint/internal/analyzer"
	"github.com/zjy-dev/stuckpoint/internal/config"
	"github.com/zjy-dev/stuckpoint/internal/coverage"
	"github.com/zjy-dev/stuckpoint/internal/logger"
)

// NewAnalyzeCommand creates the "analyze" subcommand.
func NewAnalyzeCommand() *cobra.Command {
	var (
		execPath     string
		binaries     []string
		modelPath    string
		entryPoint   string
		outputPath   string
		sourceDir    string
		annotatedDir string
		workers      int
		topN         int
		logLevel     string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze execution data and rank stuck points.",
		Long: `Analyze coverage execution data against a program view and entry point.

This command:
  1. Ingests per-line coverage for every target binary
  2. Selects the partly covered lines (stuck points)
  3. Builds a call graph from the fuzzing entry point
  4. Scores each stuck point by reachable uncovered statements
  5. Writes a ranked JSON report and optionally an annotated source copy

Configuration:
  Default values are loaded from configs/stuckpoint.yaml under 'analyze'.
  Command line flags override the config file values.

Examples:
  # Analyze a single jar
  stuckpoint analyze --exec coverage.json --binaries app.jar \
    --model program-model.json --entry com.example.Fuzzer.fuzzerTestOneInput

  # Disambiguate an overloaded entry point by parameter types
  stuckpoint analyze --exec coverage.json --binaries app.jar \
    --model program-model.json --entry 'com.example.Fuzzer.fuzz(byte[])'

  # Also emit an annotated copy of the source tree
  stuckpoint analyze --exec coverage.json --binaries app.jar \
    --model program-model.json --entry com.example.Fuzzer.fuzz \
    --source-dir ./src --annotated-dir ./annotated`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load("stuckpoint")
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Config values are defaults; command line flags override.
			if !cmd.Flags().Changed("output") {
				outputPath = cfg.Analyze.OutputPath
			}
			if !cmd.Flags().Changed("source-dir") {
				sourceDir = cfg.Analyze.SourceDir
			}
			if !cmd.Flags().Changed("annotated-dir") {
				annotatedDir = cfg.Analyze.AnnotatedDir
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Analyze.Workers
			}
			if !cmd.Flags().Changed("top") {
				topN = cfg.Analyze.TopN
			}
			if !cmd.Flags().Changed("log-level") {
				logLevel = cfg.Analyze.LogLevel
			}

			logger.SetLevel(logLevel)

			runCfg := analyzer.Config{
				ExecPath:     execPath,
				Binaries:     binaries,
				ModelPath:    modelPath,
				EntryPoint:   entryPoint,
				OutputPath:   outputPath,
				SourceDir:    sourceDir,
				AnnotatedDir: annotatedDir,
				Workers:      workers,
				TopN:         topN,
				Console:      os.Stdout,
			}

			result, err := analyzer.New(runCfg, coverage.NewJSONDumpSource()).Run()
			if err != nil {
				return err
			}

			for _, failure := range result.Ingest.Failures {
				logger.Warn("binary %s was skipped: %s", failure.Binary, failure.Message)
			}
			logger.Info("analysis complete: %d stuck points, results saved to %s",
				len(result.Ranked), outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&execPath, "exec", "", "Path to the execution data dump (required)")
	cmd.Flags().StringSliceVar(&binaries, "binaries", nil, "Target binaries to analyze (required)")
	cmd.Flags().StringVar(&modelPath, "model", "", "Path to the program model JSON (required)")
	cmd.Flags().StringVar(&entryPoint, "entry", "", "Fuzzing entry point, e.g. com.example.Fuzzer.fuzz (required)")
	cmd.Flags().StringVar(&outputPath, "output", "stuck-points.json", "Path for the JSON report")
	cmd.Flags().StringVar(&sourceDir, "source-dir", "", "Root of the original source tree (optional)")
	cmd.Flags().StringVar(&annotatedDir, "annotated-dir", "", "Output directory for the annotated source copy (optional)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (0 = number of CPUs)")
	cmd.Flags().IntVar(&topN, "top", 10, "How many ranked stuck points to print")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log verbosity (debug, info, warn, error)")

	_ = cmd.MarkFlagRequired("exec")
	_ = cmd.MarkFlagRequired("binaries")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("entry")

	return cmd
}
