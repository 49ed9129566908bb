// Package report renders ranked stuck points into the JSON analysis report,
// per-point markdown summaries, and the console top-N table.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjy-dev/stuckpoint/internal/score"
)

// Metadata records what was analyzed and when.
type Metadata struct {
	Tool              string   `json:"tool"`
	Version           string   `json:"version"`
	AnalysisTimestamp string   `json:"analysisTimestamp"`
	ExecFile          string   `json:"execFile"`
	EntryPoint        string   `json:"entryPoint"`
	Binaries          []string `json:"binaries"`
}

// Summary aggregates the run: how many coverage lines were seen, how many
// stuck points came out, and the score spread across them.
type Summary struct {
	TotalCoverageLines int     `json:"totalCoverageLines"`
	StuckPointsFound   int     `json:"stuckPointsFound"`
	AnalysisType       string  `json:"analysisType"`
	HighestScore       int     `json:"highestScore"`
	LowestScore        int     `json:"lowestScore"`
	AverageScore       float64 `json:"averageScore"`
}

// Entry is one ranked stuck point plus its rendered markdown summary.
type Entry struct {
	score.ScoredStuckPoint
	Summary string `json:"summary"`
}

// Report is the full JSON document written after an analysis run.
type Report struct {
	Metadata    Metadata `json:"metadata"`
	Summary     Summary  `json:"summary"`
	StuckPoints []Entry  `json:"stuckPoints"`
}

// NewMetadata fills the static report metadata with the current time.
func NewMetadata(execFile, entryPoint string, binaries []string) Metadata {
	return Metadata{
		Tool:              "stuckpoint",
		Version:           "1.0.0",
		AnalysisTimestamp: time.Now().Format(time.RFC3339),
		ExecFile:          execFile,
		EntryPoint:        entryPoint,
		Binaries:          binaries,
	}
}

// Build assembles the report document. Ranked results come in final order;
// entries carry markdown summaries rendered against the source resolver.
// An empty result set yields a valid report with zeroed score statistics.
func Build(meta Metadata, ranked []score.ScoredStuckPoint, totalCoverageLines int, summarizer *Summarizer) Report {
	rep := Report{
		Metadata: meta,
		Summary: Summary{
			TotalCoverageLines: totalCoverageLines,
			StuckPointsFound:   len(ranked),
			AnalysisType:       "line-coverage + cha-icfg",
		},
		StuckPoints: make([]Entry, 0, len(ranked)),
	}

	if len(ranked) > 0 {
		rep.Summary.HighestScore = ranked[0].StuckPointScore
		rep.Summary.LowestScore = ranked[len(ranked)-1].StuckPointScore

		sum := 0
		for _, p := range ranked {
			sum += p.StuckPointScore
		}
		rep.Summary.AverageScore = float64(sum) / float64(len(ranked))
	}

	for _, p := range ranked {
		rep.StuckPoints = append(rep.StuckPoints, Entry{
			ScoredStuckPoint: p,
			Summary:          summarizer.Summarize(p),
		})
	}

	return rep
}

// WriteJSON writes the report as indented JSON, creating parent directories
// as needed.
func WriteJSON(path string, rep Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
