// Package coverage holds the per-line coverage model consumed by stuck-point
// scoring: instruction/branch counters per source line, derived coverage
// status, and the class-keyed lookup table shared by all reachability queries.
package coverage

import "sort"

// Status classifies a source line's execution coverage.
type Status int

const (
	NotCovered Status = iota
	PartlyCovered
	FullyCovered
)

var statusNames = map[Status]string{
	NotCovered:    "NOT_COVERED",
	PartlyCovered: "PARTLY_COVERED",
	FullyCovered:  "FULLY_COVERED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Classify derives the coverage status from instruction counters.
// FULLY_COVERED iff total > 0 and covered == total; NOT_COVERED iff
// covered == 0; everything else is PARTLY_COVERED.
func Classify(covered, total int) Status {
	switch {
	case total > 0 && covered == total:
		return FullyCovered
	case covered == 0:
		return NotCovered
	default:
		return PartlyCovered
	}
}

// Line is the coverage record for one source line of one class.
// Identity is (ClassFqn, Number). Immutable once constructed.
type Line struct {
	ClassFqn string
	FileName string
	Number   int
	Status   Status

	InstructionsTotal   int
	InstructionsCovered int
	BranchesTotal       int
	BranchesCovered     int
}

// NewLine builds a Line, deriving Status from the instruction counters.
func NewLine(classFqn, fileName string, number, instrTotal, instrCovered, branchTotal, branchCovered int) Line {
	return Line{
		ClassFqn:            classFqn,
		FileName:            fileName,
		Number:              number,
		Status:              Classify(instrCovered, instrTotal),
		InstructionsTotal:   instrTotal,
		InstructionsCovered: instrCovered,
		BranchesTotal:       branchTotal,
		BranchesCovered:     branchCovered,
	}
}

// InstructionRatio returns covered/total instructions, 0.0 when total is 0.
func (l Line) InstructionRatio() float64 {
	if l.InstructionsTotal == 0 {
		return 0.0
	}
	return float64(l.InstructionsCovered) / float64(l.InstructionsTotal)
}

// BranchRatio returns covered/total branches, 0.0 when total is 0.
func (l Line) BranchRatio() float64 {
	if l.BranchesTotal == 0 {
		return 0.0
	}
	return float64(l.BranchesCovered) / float64(l.BranchesTotal)
}

// Table maps class FQN -> line number -> Line. Built once per analysis run
// and read-only afterward; shared by reference across scoring workers.
type Table map[string]map[int]Line

// Add inserts a line into the table.
func (t Table) Add(l Line) {
	class, ok := t[l.ClassFqn]
	if !ok {
		class = make(map[int]Line)
		t[l.ClassFqn] = class
	}
	class[l.Number] = l
}

// Lookup returns the coverage record for a class line, if present.
func (t Table) Lookup(classFqn string, line int) (Line, bool) {
	class, ok := t[classFqn]
	if !ok {
		return Line{}, false
	}
	l, ok := class[line]
	return l, ok
}

// LineCount returns the total number of recorded lines.
func (t Table) LineCount() int {
	n := 0
	for _, class := range t {
		n += len(class)
	}
	return n
}

// StuckPoints returns all PARTLY_COVERED lines ordered by class FQN then
// line number, so selection is reproducible across runs.
func (t Table) StuckPoints() []Line {
	var points []Line
	for _, class := range t {
		for _, l := range class {
			if l.Status == PartlyCovered {
				points = append(points, l)
			}
		}
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].ClassFqn != points[j].ClassFqn {
			return points[i].ClassFqn < points[j].ClassFqn
		}
		return points[i].Number < points[j].Number
	})

	return points
}
