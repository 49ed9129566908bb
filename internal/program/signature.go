package program

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEntryPointNotFound indicates an entry-point specification resolved to no
// method in the program view. Fatal: the call graph has no root without it.
var ErrEntryPointNotFound = errors.New("entry point not found")

// ErrEntryPointAmbiguous indicates an entry-point specification matched more
// than one overload. The caller must supply parameter types rather than have
// the analyzer silently pick one.
var ErrEntryPointAmbiguous = errors.New("entry point ambiguous")

// ParseSignature parses a canonical method signature of the form
// "com.example.Class.method(paramType,...)returnType".
func ParseSignature(s string) (MethodSig, error) {
	open := strings.Index(s, "(")
	close := strings.LastIndex(s, ")")
	if open < 0 || close < open {
		return MethodSig{}, fmt.Errorf("invalid method signature %q: expected class.method(params)returnType", s)
	}

	classAndName := s[:open]
	lastDot := strings.LastIndex(classAndName, ".")
	if lastDot <= 0 || lastDot == len(classAndName)-1 {
		return MethodSig{}, fmt.Errorf("invalid method signature %q: missing class or method name", s)
	}

	returnType := s[close+1:]
	if returnType == "" {
		return MethodSig{}, fmt.Errorf("invalid method signature %q: missing return type", s)
	}

	return MethodSig{
		ClassFqn:   classAndName[:lastDot],
		Name:       classAndName[lastDot+1:],
		ReturnType: returnType,
		ParamTypes: splitParams(s[open+1 : close]),
	}, nil
}

// EntrySpec is a parsed entry-point specification. Parameter types and return
// type are optional in the textual form; when absent, resolution demands the
// name be unambiguous in the declaring class.
type EntrySpec struct {
	ClassFqn   string
	Name       string
	ParamTypes []string
	HasParams  bool
	ReturnType string
}

func (e EntrySpec) String() string {
	if !e.HasParams {
		return e.ClassFqn + "." + e.Name
	}
	s := fmt.Sprintf("%s.%s(%s)", e.ClassFqn, e.Name, strings.Join(e.ParamTypes, ","))
	return s + e.ReturnType
}

// ParseEntrySpec parses an entry-point specification. Accepted forms:
//
//	com.example.Fuzzer.fuzzerTestOneInput
//	com.example.Fuzzer.fuzzerTestOneInput(byte[])
//	com.example.Fuzzer.fuzzerTestOneInput(byte[])void
func ParseEntrySpec(s string) (EntrySpec, error) {
	spec := EntrySpec{}

	head := s
	if open := strings.Index(s, "("); open >= 0 {
		close := strings.LastIndex(s, ")")
		if close < open {
			return EntrySpec{}, fmt.Errorf("invalid entry point %q: unbalanced parentheses", s)
		}
		head = s[:open]
		spec.HasParams = true
		spec.ParamTypes = splitParams(s[open+1 : close])
		spec.ReturnType = s[close+1:]
	}

	lastDot := strings.LastIndex(head, ".")
	if lastDot <= 0 || lastDot == len(head)-1 {
		return EntrySpec{}, fmt.Errorf("invalid entry point %q: expected com.example.Class.method", s)
	}
	spec.ClassFqn = head[:lastDot]
	spec.Name = head[lastDot+1:]

	return spec, nil
}

// ResolveEntry resolves an entry-point specification against the view.
// Resolution filters the declaring class's overloads by name, then by
// parameter list and return type when given. No match is
// ErrEntryPointNotFound; several are ErrEntryPointAmbiguous.
func (m *Model) ResolveEntry(spec EntrySpec) (*Method, error) {
	if _, ok := m.Class(spec.ClassFqn); !ok {
		return nil, fmt.Errorf("%w: class %s not in program view", ErrEntryPointNotFound, spec.ClassFqn)
	}

	candidates := m.MethodsNamed(spec.ClassFqn, spec.Name)
	if spec.HasParams {
		candidates = filterMethods(candidates, func(method *Method) bool {
			return paramsEqual(method.Sig.ParamTypes, spec.ParamTypes)
		})
	}
	if spec.ReturnType != "" {
		candidates = filterMethods(candidates, func(method *Method) bool {
			return method.Sig.ReturnType == spec.ReturnType
		})
	}

	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrEntryPointNotFound, spec)
	case 1:
		return candidates[0], nil
	default:
		overloads := make([]string, 0, len(candidates))
		for _, method := range candidates {
			overloads = append(overloads, method.Sig.Key())
		}
		return nil, fmt.Errorf("%w: %s matches %s", ErrEntryPointAmbiguous, spec, strings.Join(overloads, ", "))
	}
}

func splitParams(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func paramsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func filterMethods(methods []*Method, keep func(*Method) bool) []*Method {
	var out []*Method
	for _, method := range methods {
		if keep(method) {
			out = append(out, method)
		}
	}
	return out
}
