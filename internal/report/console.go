package report

import (
	"fmt"
	"io"

	"github.com/zjy-dev/stuckpoint/internal/score"
)

// PrintTop writes the top ranked stuck points as a fixed-width table.
// A non-positive limit shows everything.
func PrintTop(w io.Writer, ranked []score.ScoredStuckPoint, limit int) {
	if limit <= 0 {
		limit = len(ranked)
	}
	shown := limit
	if shown > len(ranked) {
		shown = len(ranked)
	}

	fmt.Fprintf(w, "\n=== Top %d Stuck Points ===\n", shown)
	fmt.Fprintln(w, "Rank | Score | Location")
	fmt.Fprintln(w, "-----|-------|----------")

	for i := 0; i < shown; i++ {
		p := ranked[i]
		fmt.Fprintf(w, "%4d | %5d | %s:%d\n", i+1, p.StuckPointScore, p.ClassFqn, p.LineNumber)
	}

	if len(ranked) > limit {
		fmt.Fprintf(w, "... and %d more stuck points\n", len(ranked)-limit)
	}
}
