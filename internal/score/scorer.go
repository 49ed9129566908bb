package score

import (
	"sync"

	"github.com/zjy-dev/stuckpoint/internal/coverage"
	"github.com/zjy-dev/stuckpoint/internal/graph"
	"github.com/zjy-dev/stuckpoint/internal/logger"
	"github.com/zjy-dev/stuckpoint/internal/program"
)

// Scorer walks the ICFG forward from stuck points and counts statements
// whose source spans are not yet fully covered. The per-method reach cache
// is shared across Score calls and guarded for concurrent use, so one
// Scorer can serve a whole worker pool.
type Scorer struct {
	icfg  *graph.ICFG
	table coverage.Table

	mu          sync.Mutex
	methodReach map[*program.Method]map[*program.Stmt]struct{}
}

// NewScorer builds a scorer over the given view and coverage table.
func NewScorer(icfg *graph.ICFG, table coverage.Table) *Scorer {
	return &Scorer{
		icfg:        icfg,
		table:       table,
		methodReach: make(map[*program.Method]map[*program.Stmt]struct{}),
	}
}

// Score computes the priority of a single stuck point: the number of
// forward-reachable statements that are not already fully covered. A line
// with no statements in the loaded program view scores zero.
func (s *Scorer) Score(point coverage.Line) int {
	seeds := s.icfg.StmtsAtLine(point.ClassFqn, point.Number)
	if len(seeds) == 0 {
		logger.Debug("no statements found at %s:%d, score is 0", point.ClassFqn, point.Number)
		return 0
	}

	reached := s.reachFrom(seeds)

	uncovered := 0
	for stmt := range reached {
		if !s.stmtCovered(stmt) {
			uncovered++
		}
	}
	return uncovered
}

// ScoreAll scores every stuck point using the given number of workers and
// returns the results in input order. Ranking is a separate step.
func (s *Scorer) ScoreAll(points []coverage.Line, workers int) []ScoredStuckPoint {
	if workers < 1 {
		workers = 1
	}
	results := make([]ScoredStuckPoint, len(points))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = newScoredPoint(points[i], s.Score(points[i]))
			}
		}()
	}
	for i := range points {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// reachFrom runs the interprocedural BFS. Intraprocedural successors are
// walked directly. A call site additionally pulls in the memoized reach set
// of each callee, which is closed under reachability and so never needs
// re-expansion.
func (s *Scorer) reachFrom(seeds []*program.Stmt) map[*program.Stmt]struct{} {
	visited := make(map[*program.Stmt]struct{}, len(seeds))
	queue := make([]*program.Stmt, 0, len(seeds))
	for _, seed := range seeds {
		if _, ok := visited[seed]; ok {
			continue
		}
		visited[seed] = struct{}{}
		queue = append(queue, seed)
	}

	for len(queue) > 0 {
		stmt := queue[0]
		queue = queue[1:]

		for _, succ := range s.icfg.SuccsOf(stmt) {
			if _, ok := visited[succ]; ok {
				continue
			}
			visited[succ] = struct{}{}
			queue = append(queue, succ)
		}

		if !s.icfg.IsCallSite(stmt) {
			continue
		}
		for _, callee := range s.icfg.CalleesOf(stmt) {
			for reachedStmt := range s.reachOfMethod(callee) {
				visited[reachedStmt] = struct{}{}
			}
		}
	}
	return visited
}

// reachOfMethod returns the full interprocedural reach set of a method
// entry, computing and caching it on first use.
func (s *Scorer) reachOfMethod(method *program.Method) map[*program.Stmt]struct{} {
	s.mu.Lock()
	cached, ok := s.methodReach[method]
	s.mu.Unlock()
	if ok {
		return cached
	}

	visited := make(map[*program.Stmt]struct{})
	queue := make([]*program.Stmt, 0, 8)
	for _, entry := range method.EntryStmts() {
		visited[entry] = struct{}{}
		queue = append(queue, entry)
	}
	for len(queue) > 0 {
		stmt := queue[0]
		queue = queue[1:]

		for _, succ := range s.icfg.SuccsOf(stmt) {
			if _, ok := visited[succ]; ok {
				continue
			}
			visited[succ] = struct{}{}
			queue = append(queue, succ)
		}
		if !s.icfg.IsCallSite(stmt) {
			continue
		}
		for _, callee := range s.icfg.CalleesOf(stmt) {
			for _, entry := range callee.EntryStmts() {
				if _, ok := visited[entry]; ok {
					continue
				}
				visited[entry] = struct{}{}
				queue = append(queue, entry)
			}
		}
	}

	s.mu.Lock()
	s.methodReach[method] = visited
	s.mu.Unlock()
	return visited
}

// stmtCovered reports whether any line in the statement's source span is
// fully covered. Statements without position information count as uncovered.
func (s *Scorer) stmtCovered(stmt *program.Stmt) bool {
	if !stmt.HasPosition() {
		return false
	}
	classFqn := stmt.Owner().Class().Fqn
	for lineNum := stmt.FirstLine; lineNum <= stmt.LastLine; lineNum++ {
		line, ok := s.table.Lookup(classFqn, lineNum)
		if ok && line.Status == coverage.FullyCovered {
			return true
		}
	}
	return false
}
