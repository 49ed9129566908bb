// Package score turns stuck points into ranked priority numbers by counting
// the not-yet-covered statements reachable from each one through the ICFG.
package score

import (
	"fmt"

	"github.com/zjy-dev/stuckpoint/internal/coverage"
)

// CoverageStats summarizes one counter pair for reporting.
type CoverageStats struct {
	Total   int     `json:"total"`
	Covered int     `json:"covered"`
	Missed  int     `json:"missed"`
	Ratio   float64 `json:"ratio"`
}

func newStats(total, covered int, ratio float64) CoverageStats {
	return CoverageStats{
		Total:   total,
		Covered: covered,
		Missed:  total - covered,
		Ratio:   ratio,
	}
}

// ScoredStuckPoint is one stuck point with its reachability score and the
// coverage detail carried through for reporting. Immutable once created.
type ScoredStuckPoint struct {
	ClassFqn            string        `json:"classFqn"`
	FileName            string        `json:"fileName"`
	LineNumber          int           `json:"lineNumber"`
	CoverageStatus      string        `json:"coverageStatus"`
	InstructionCoverage CoverageStats `json:"instructionCoverage"`
	BranchCoverage      CoverageStats `json:"branchCoverage"`
	StuckPointScore     int           `json:"stuckPointScore"`
}

func newScoredPoint(line coverage.Line, stuckPointScore int) ScoredStuckPoint {
	return ScoredStuckPoint{
		ClassFqn:            line.ClassFqn,
		FileName:            line.FileName,
		LineNumber:          line.Number,
		CoverageStatus:      line.Status.String(),
		InstructionCoverage: newStats(line.InstructionsTotal, line.InstructionsCovered, line.InstructionRatio()),
		BranchCoverage:      newStats(line.BranchesTotal, line.BranchesCovered, line.BranchRatio()),
		StuckPointScore:     stuckPointScore,
	}
}

func (p ScoredStuckPoint) String() string {
	return fmt.Sprintf("%s:%d (score: %d, status: %s)", p.ClassFqn, p.LineNumber, p.StuckPointScore, p.CoverageStatus)
}
