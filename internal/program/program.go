// Package program holds the whole-program view consumed by call-graph
// construction and reachability scoring: classes, methods, and per-method
// statement lists with source line positions. The view is produced by an
// external bytecode frontend and loaded here from its dumped model; this
// package never parses class files itself.
package program

import (
	"fmt"
	"strings"
)

// NoLine is the sentinel for "no position info" on a statement.
const NoLine = 0

// MethodSig identifies a method by declaring class, name, return type and
// full parameter-type list.
type MethodSig struct {
	ClassFqn   string
	Name       string
	ReturnType string
	ParamTypes []string
}

// Key returns the canonical string form, usable as a map key.
func (s MethodSig) Key() string {
	return fmt.Sprintf("%s.%s(%s)%s", s.ClassFqn, s.Name, strings.Join(s.ParamTypes, ","), s.ReturnType)
}

func (s MethodSig) String() string {
	return s.Key()
}

// Stmt is one program statement. Identity is pointer identity, owned by the
// Model for the lifetime of one analysis run.
type Stmt struct {
	// FirstLine and LastLine delimit the source span. NoLine on FirstLine
	// means the frontend recorded no position for this statement.
	FirstLine int
	LastLine  int

	owner       *Method
	succs       []*Stmt
	callTargets []MethodSig
}

// Owner returns the method this statement belongs to.
func (s *Stmt) Owner() *Method { return s.owner }

// Succs returns the intraprocedural control-flow successors.
func (s *Stmt) Succs() []*Stmt { return s.succs }

// IsCall reports whether this statement is a call site.
func (s *Stmt) IsCall() bool { return len(s.callTargets) > 0 }

// CallTargets returns the static callee signatures at this call site.
func (s *Stmt) CallTargets() []MethodSig { return s.callTargets }

// HasPosition reports whether the statement carries source line info.
func (s *Stmt) HasPosition() bool { return s.FirstLine != NoLine }

// SpansLine reports whether the given source line falls inside this
// statement's line span.
func (s *Stmt) SpansLine(line int) bool {
	return s.HasPosition() && line >= s.FirstLine && line <= s.LastLine
}

// Method is one method of the program view.
type Method struct {
	Sig   MethodSig
	class *Class
	stmts []*Stmt
}

// Class returns the declaring class.
func (m *Method) Class() *Class { return m.class }

// HasBody reports whether the frontend recorded a statement list.
func (m *Method) HasBody() bool { return len(m.stmts) > 0 }

// Stmts returns the method body statements in frontend order.
func (m *Method) Stmts() []*Stmt { return m.stmts }

// EntryStmts returns the statements execution enters the method through.
func (m *Method) EntryStmts() []*Stmt {
	if len(m.stmts) == 0 {
		return nil
	}
	return m.stmts[:1]
}

// Class is one class or interface of the program view.
type Class struct {
	Fqn         string
	SuperFqn    string
	Interfaces  []string
	IsInterface bool

	methods []*Method
}

// Methods returns the declared methods in frontend order.
func (c *Class) Methods() []*Method { return c.methods }

// Model is the loaded whole-program view. Read-only after construction.
type Model struct {
	classes map[string]*Class
	order   []string
	methods map[string]*Method // sig key -> method
}

// Class looks up a class by fully qualified name.
func (m *Model) Class(fqn string) (*Class, bool) {
	c, ok := m.classes[fqn]
	return c, ok
}

// Classes returns all classes in definition order.
func (m *Model) Classes() []*Class {
	out := make([]*Class, 0, len(m.order))
	for _, fqn := range m.order {
		out = append(out, m.classes[fqn])
	}
	return out
}

// Method looks up a method by exact signature.
func (m *Model) Method(sig MethodSig) (*Method, bool) {
	method, ok := m.methods[sig.Key()]
	return method, ok
}

// MethodsNamed returns all methods of a class with the given name, in
// definition order. Used for overload-aware entry resolution.
func (m *Model) MethodsNamed(classFqn, name string) []*Method {
	class, ok := m.classes[classFqn]
	if !ok {
		return nil
	}
	var out []*Method
	for _, method := range class.methods {
		if method.Sig.Name == name {
			out = append(out, method)
		}
	}
	return out
}

// StmtsAtLine returns every statement of the class whose line span contains
// the given source line. A line that lowers to no statements yields nil,
// which callers treat as a normal outcome.
func (m *Model) StmtsAtLine(classFqn string, line int) []*Stmt {
	class, ok := m.classes[classFqn]
	if !ok {
		return nil
	}
	var out []*Stmt
	for _, method := range class.methods {
		for _, stmt := range method.stmts {
			if stmt.SpansLine(line) {
				out = append(out, stmt)
			}
		}
	}
	return out
}
