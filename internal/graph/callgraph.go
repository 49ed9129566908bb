// Package graph builds the whole-program call graph and the interprocedural
// control-flow graph handle used by reachability scoring.
package graph

import (
	"fmt"
	"sort"

	"github.com/zjy-dev/stuckpoint/internal/logger"
	"github.com/zjy-dev/stuckpoint/internal/program"
)

// CallGraph resolves call sites to callee sets using Class Hierarchy
// Analysis: a virtual call dispatches to the static target type's
// implementation and to every override in its subtype hierarchy. This
// over-approximates real targets, which only inflates reachability scores
// toward a conservative upper bound, never undercounts.
//
// All call sites in the view are resolved at build time; the graph is
// immutable afterward and safe to share across scoring workers.
type CallGraph struct {
	entries   []*program.Method
	callees   map[*program.Stmt][]*program.Method
	reachable map[*program.Method]bool
}

// Build constructs the call graph rooted at the given entry points.
// Entry resolution failures (unknown or ambiguous signatures) are fatal.
func Build(model *program.Model, specs []program.EntrySpec) (*CallGraph, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("call graph requires at least one entry point")
	}

	entries := make([]*program.Method, 0, len(specs))
	for _, spec := range specs {
		method, err := model.ResolveEntry(spec)
		if err != nil {
			return nil, err
		}
		entries = append(entries, method)
	}

	cg := &CallGraph{
		entries:   entries,
		callees:   make(map[*program.Stmt][]*program.Method),
		reachable: make(map[*program.Method]bool),
	}

	subtypes := subtypeIndex(model)

	// Resolve every call site in the view up front, so lookups during
	// concurrent scoring never mutate the graph.
	callSites := 0
	for _, class := range model.Classes() {
		for _, method := range class.Methods() {
			for _, stmt := range method.Stmts() {
				if !stmt.IsCall() {
					continue
				}
				callSites++
				cg.callees[stmt] = resolveCallSite(model, subtypes, stmt.CallTargets())
			}
		}
	}

	cg.markReachable()

	logger.Debug("call graph: %d entries, %d call sites, %d reachable methods",
		len(entries), callSites, len(cg.reachable))

	return cg, nil
}

// Entries returns the resolved entry methods.
func (cg *CallGraph) Entries() []*program.Method {
	return cg.entries
}

// CalleesAt returns the CHA-resolved callees of a call site, in a
// deterministic order. Non-call statements yield nil.
func (cg *CallGraph) CalleesAt(stmt *program.Stmt) []*program.Method {
	return cg.callees[stmt]
}

// IsReachable reports whether the method is transitively callable from an
// entry point.
func (cg *CallGraph) IsReachable(method *program.Method) bool {
	return cg.reachable[method]
}

// ReachableCount returns how many methods the entry points can reach.
func (cg *CallGraph) ReachableCount() int {
	return len(cg.reachable)
}

// markReachable computes the entry-rooted reachable method set with a
// worklist over resolved call sites.
func (cg *CallGraph) markReachable() {
	worklist := make([]*program.Method, 0, len(cg.entries))
	for _, entry := range cg.entries {
		if !cg.reachable[entry] {
			cg.reachable[entry] = true
			worklist = append(worklist, entry)
		}
	}

	for len(worklist) > 0 {
		method := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		for _, stmt := range method.Stmts() {
			for _, callee := range cg.callees[stmt] {
				if !cg.reachable[callee] {
					cg.reachable[callee] = true
					worklist = append(worklist, callee)
				}
			}
		}
	}
}

// resolveCallSite applies CHA dispatch to each static target of a call site
// and merges the results.
func resolveCallSite(model *program.Model, subtypes map[string][]string, targets []program.MethodSig) []*program.Method {
	seen := make(map[*program.Method]bool)
	var callees []*program.Method

	// Abstract declarations resolved mid-hierarchy carry no body and are
	// not dispatch targets; concrete overrides enter via the subtype scan.
	add := func(method *program.Method) {
		if method == nil || !method.HasBody() || seen[method] {
			return
		}
		seen[method] = true
		callees = append(callees, method)
	}

	for _, target := range targets {
		// The static target type itself, resolving inherited methods
		// up the superclass chain.
		add(dispatch(model, target.ClassFqn, target))

		// Every subtype (or, for interface targets, implementing
		// class) that overrides or inherits the target signature.
		for _, sub := range subtypes[target.ClassFqn] {
			add(dispatch(model, sub, target))
		}
	}

	sort.Slice(callees, func(i, j int) bool {
		return callees[i].Sig.Key() < callees[j].Sig.Key()
	})
	return callees
}

// dispatch finds the method a call on receiver type classFqn would invoke:
// the matching declaration in the class itself or the nearest superclass.
func dispatch(model *program.Model, classFqn string, target program.MethodSig) *program.Method {
	for fqn := classFqn; fqn != ""; {
		class, ok := model.Class(fqn)
		if !ok {
			return nil
		}
		for _, method := range class.Methods() {
			if signatureMatches(method.Sig, target) {
				return method
			}
		}
		fqn = class.SuperFqn
	}
	return nil
}

func signatureMatches(candidate, target program.MethodSig) bool {
	if candidate.Name != target.Name {
		return false
	}
	if len(candidate.ParamTypes) != len(target.ParamTypes) {
		return false
	}
	for i := range candidate.ParamTypes {
		if candidate.ParamTypes[i] != target.ParamTypes[i] {
			return false
		}
	}
	return target.ReturnType == "" || candidate.ReturnType == target.ReturnType
}

// subtypeIndex maps each type to all of its transitive subtypes, including
// classes implementing an interface anywhere below it.
func subtypeIndex(model *program.Model) map[string][]string {
	subs := make(map[string]map[string]bool)

	for _, class := range model.Classes() {
		for _, ancestor := range ancestors(model, class) {
			if subs[ancestor] == nil {
				subs[ancestor] = make(map[string]bool)
			}
			subs[ancestor][class.Fqn] = true
		}
	}

	index := make(map[string][]string, len(subs))
	for ancestor, set := range subs {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Strings(names)
		index[ancestor] = names
	}
	return index
}

// ancestors returns every supertype name of a class: the superclass chain
// and all implemented interfaces, transitively. Types outside the view
// (e.g. java.lang.Object) are recorded by name but not expanded.
func ancestors(model *program.Model, class *program.Class) []string {
	var out []string
	seen := map[string]bool{class.Fqn: true}

	var visit func(fqn string)
	visit = func(fqn string) {
		if fqn == "" || seen[fqn] {
			return
		}
		seen[fqn] = true
		out = append(out, fqn)

		parent, ok := model.Class(fqn)
		if !ok {
			return
		}
		visit(parent.SuperFqn)
		for _, iface := range parent.Interfaces {
			visit(iface)
		}
	}

	visit(class.SuperFqn)
	for _, iface := range class.Interfaces {
		visit(iface)
	}
	return out
}
