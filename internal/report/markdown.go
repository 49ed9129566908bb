package report

import (
	"fmt"
	"sort"

	"github.com/zjy-dev/stuckpoint/internal/coverage"
	"github.com/zjy-dev/stuckpoint/internal/score"
)

const (
	contextLines = 10

	// The annotated copy already carries flags, so it gets a wider window.
	annotatedContextLines = 20
)

// Summarizer renders the per-point markdown summary embedded in the report:
// basic info, the surrounding source with coverage flags, and the stuck
// point's counter detail. When an annotated source copy is available its
// lines are quoted directly; otherwise the raw source is flagged on the fly.
type Summarizer struct {
	table     coverage.Table
	resolver  *SourceResolver
	annotated *SourceResolver
}

// NewSummarizer builds a summarizer over the coverage table, the raw source
// resolver, and the annotated-copy resolver.
func NewSummarizer(table coverage.Table, resolver, annotated *SourceResolver) *Summarizer {
	return &Summarizer{table: table, resolver: resolver, annotated: annotated}
}

// Summarize renders the markdown summary for one stuck point.
func (s *Summarizer) Summarize(point score.ScoredStuckPoint) string {
	var content string

	content += "## Basic Information\n\n"
	content += fmt.Sprintf("- **File**: %s\n", point.FileName)
	content += fmt.Sprintf("- **Class**: %s\n", point.ClassFqn)
	content += fmt.Sprintf("- **Line Number**: %d\n", point.LineNumber)
	content += fmt.Sprintf("- **Stuck Point Score**: %d\n", point.StuckPointScore)
	content += fmt.Sprintf("- **Coverage Status**: %s\n", point.CoverageStatus)
	content += "\n"

	content += "## Source Code Context\n\n"
	content += s.sourceSection(point)

	content += "### Stuck Point Details\n\n"
	content += fmt.Sprintf("- **Instructions**: %d covered / %d total (%.1f%%)\n",
		point.InstructionCoverage.Covered,
		point.InstructionCoverage.Total,
		point.InstructionCoverage.Ratio*100)
	content += fmt.Sprintf("- **Branches**: %d covered / %d total (%.1f%%)\n",
		point.BranchCoverage.Covered,
		point.BranchCoverage.Total,
		point.BranchCoverage.Ratio*100)

	content += "\n**Legend**: [✓] Fully Covered, [~] Partially Covered (Stuck Point), [✗] Not Covered, [ ] No Executable Instructions\n"

	return content
}

func (s *Summarizer) sourceSection(point score.ScoredStuckPoint) string {
	if section := s.annotatedSection(point); section != "" {
		return section
	}

	if !s.resolver.Available() {
		return "*Source code could not be resolved for this file*\n\n"
	}

	path := s.resolver.Find(point.ClassFqn, point.FileName)
	if path == "" {
		return "*Source code could not be resolved for this file*\n\n"
	}

	context := s.resolver.Context(path, point.LineNumber, contextLines)
	if len(context) == 0 {
		return "*Source code could not be resolved for this file*\n\n"
	}

	nums := make([]int, 0, len(context))
	for num := range context {
		nums = append(nums, num)
	}
	sort.Ints(nums)

	content := "### Source Code with Coverage\n\n"
	content += fmt.Sprintf("*Source: %s*\n\n", path)
	content += "```java\n"
	for _, num := range nums {
		marker := "    "
		if num == point.LineNumber {
			marker = ">>> "
		}
		content += fmt.Sprintf("%s%d: %s %s\n", marker, num, s.flagFor(point.ClassFqn, num), context[num])
	}
	content += "```\n\n"

	return content
}

// annotatedSection quotes the annotated copy when one resolves, or returns
// "" to fall back to the raw source. Annotated lines carry their flags
// already, so only line numbers and the target marker are added.
func (s *Summarizer) annotatedSection(point score.ScoredStuckPoint) string {
	if s.annotated == nil || !s.annotated.Available() {
		return ""
	}

	path := s.annotated.Find(point.ClassFqn, point.FileName)
	if path == "" {
		return ""
	}

	context := s.annotated.Context(path, point.LineNumber, annotatedContextLines)
	if len(context) == 0 {
		return ""
	}

	nums := make([]int, 0, len(context))
	for num := range context {
		nums = append(nums, num)
	}
	sort.Ints(nums)

	content := "### Source Code with Coverage\n\n"
	content += fmt.Sprintf("*Source: %s*\n\n", path)
	content += "```java\n"
	for _, num := range nums {
		marker := "    "
		if num == point.LineNumber {
			marker = ">>> "
		}
		content += fmt.Sprintf("%s%d: %s\n", marker, num, context[num])
	}
	content += "```\n\n"

	return content
}

func (s *Summarizer) flagFor(classFqn string, lineNum int) string {
	line, ok := s.table.Lookup(classFqn, lineNum)
	if !ok {
		return "[ ]"
	}
	switch line.Status {
	case coverage.FullyCovered:
		return "[✓]"
	case coverage.PartlyCovered:
		return "[~]"
	default:
		return "[✗]"
	}
}
