package score

import "sort"

// Rank orders scored stuck points by descending score. Ties break by class
// FQN ascending, then line number ascending, so output order is stable for
// identical inputs. The input slice is not modified.
func Rank(points []ScoredStuckPoint) []ScoredStuckPoint {
	ranked := make([]ScoredStuckPoint, len(points))
	copy(ranked, points)

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].StuckPointScore != ranked[j].StuckPointScore {
			return ranked[i].StuckPointScore > ranked[j].StuckPointScore
		}
		if ranked[i].ClassFqn != ranked[j].ClassFqn {
			return ranked[i].ClassFqn < ranked[j].ClassFqn
		}
		return ranked[i].LineNumber < ranked[j].LineNumber
	})
	return ranked
}

// TopN returns the first n ranked points, or all of them when n exceeds the
// slice or is non-positive.
func TopN(ranked []ScoredStuckPoint, n int) []ScoredStuckPoint {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
