package graph

import (
	"github.com/zjy-dev/stuckpoint/internal/program"
)

// ICFG is the interprocedural control-flow graph handle: statements as
// nodes, intraprocedural successor edges plus call-site to callee-entry
// edges. It wraps the program view and call graph and carries no mutable
// state, so one handle is shared by reference across all scoring workers.
//
// The graph deliberately has no return edges from a callee's exit back to
// the call site's continuation: forward reachability alone decides what a
// stuck point could unlock, and the continuation is already reachable
// through the call site's intraprocedural successors.
type ICFG struct {
	model *program.Model
	cg    *CallGraph
}

// NewICFG wraps a program view and its call graph.
func NewICFG(model *program.Model, cg *CallGraph) *ICFG {
	return &ICFG{model: model, cg: cg}
}

// SuccsOf returns the intraprocedural control-flow successors of a statement
// within its owning method.
func (g *ICFG) SuccsOf(stmt *program.Stmt) []*program.Stmt {
	return stmt.Succs()
}

// IsCallSite reports whether the statement invokes another method.
func (g *ICFG) IsCallSite(stmt *program.Stmt) bool {
	return stmt.IsCall()
}

// CalleesOf returns the methods a call site may dispatch to, per the CHA
// call graph.
func (g *ICFG) CalleesOf(stmt *program.Stmt) []*program.Method {
	return g.cg.CalleesAt(stmt)
}

// EntryStmtsOf returns the statements execution enters a method through.
// Bodyless methods yield nil.
func (g *ICFG) EntryStmtsOf(method *program.Method) []*program.Stmt {
	return method.EntryStmts()
}

// MethodOf returns the method owning a statement.
func (g *ICFG) MethodOf(stmt *program.Stmt) *program.Method {
	return stmt.Owner()
}

// StmtsAtLine returns every statement of a class whose span contains the
// source line.
func (g *ICFG) StmtsAtLine(classFqn string, line int) []*program.Stmt {
	return g.model.StmtsAtLine(classFqn, line)
}

// CallGraph exposes the underlying call graph.
func (g *ICFG) CallGraph() *CallGraph {
	return g.cg
}
