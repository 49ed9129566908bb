package program

import "fmt"

// ClassDef, MethodDef and StmtDef are the construction-time shape of the
// program view. The JSON model loader unmarshals into these; tests build
// them directly.
type ClassDef struct {
	Fqn         string      `json:"fqn"`
	Super       string      `json:"super,omitempty"`
	Interfaces  []string    `json:"interfaces,omitempty"`
	IsInterface bool        `json:"isInterface,omitempty"`
	Methods     []MethodDef `json:"methods,omitempty"`
}

type MethodDef struct {
	Name       string    `json:"name"`
	ReturnType string    `json:"returnType"`
	ParamTypes []string  `json:"paramTypes,omitempty"`
	Stmts      []StmtDef `json:"stmts,omitempty"`
}

type StmtDef struct {
	FirstLine int `json:"firstLine,omitempty"`
	LastLine  int `json:"lastLine,omitempty"`

	// Succs are indices into the owning method's statement list.
	Succs []int `json:"succs,omitempty"`

	// Calls are static callee signatures in canonical string form,
	// e.g. "com.example.Parser.parse(byte[])boolean".
	Calls []string `json:"calls,omitempty"`
}

// Build assembles a Model from class definitions, wiring statement successor
// edges and validating internal references.
func Build(defs []ClassDef) (*Model, error) {
	model := &Model{
		classes: make(map[string]*Class),
		methods: make(map[string]*Method),
	}

	for _, classDef := range defs {
		if classDef.Fqn == "" {
			return nil, fmt.Errorf("class definition without fqn")
		}
		if _, exists := model.classes[classDef.Fqn]; exists {
			return nil, fmt.Errorf("duplicate class %s", classDef.Fqn)
		}

		class := &Class{
			Fqn:         classDef.Fqn,
			SuperFqn:    classDef.Super,
			Interfaces:  classDef.Interfaces,
			IsInterface: classDef.IsInterface,
		}

		for _, methodDef := range classDef.Methods {
			method, err := buildMethod(class, methodDef)
			if err != nil {
				return nil, fmt.Errorf("class %s: %w", classDef.Fqn, err)
			}
			class.methods = append(class.methods, method)

			key := method.Sig.Key()
			if _, exists := model.methods[key]; exists {
				return nil, fmt.Errorf("duplicate method %s", key)
			}
			model.methods[key] = method
		}

		model.classes[class.Fqn] = class
		model.order = append(model.order, class.Fqn)
	}

	return model, nil
}

func buildMethod(class *Class, def MethodDef) (*Method, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("method definition without name")
	}

	method := &Method{
		Sig: MethodSig{
			ClassFqn:   class.Fqn,
			Name:       def.Name,
			ReturnType: def.ReturnType,
			ParamTypes: def.ParamTypes,
		},
		class: class,
	}

	method.stmts = make([]*Stmt, len(def.Stmts))
	for i, stmtDef := range def.Stmts {
		lastLine := stmtDef.LastLine
		if lastLine < stmtDef.FirstLine {
			lastLine = stmtDef.FirstLine
		}
		stmt := &Stmt{
			FirstLine: stmtDef.FirstLine,
			LastLine:  lastLine,
			owner:     method,
		}
		for _, sigStr := range stmtDef.Calls {
			sig, err := ParseSignature(sigStr)
			if err != nil {
				return nil, fmt.Errorf("method %s stmt %d: %w", def.Name, i, err)
			}
			stmt.callTargets = append(stmt.callTargets, sig)
		}
		method.stmts[i] = stmt
	}

	// Successor edges refer to statement indices; wire after allocation so
	// forward references work.
	for i, stmtDef := range def.Stmts {
		for _, succ := range stmtDef.Succs {
			if succ < 0 || succ >= len(method.stmts) {
				return nil, fmt.Errorf("method %s stmt %d: successor index %d out of range", def.Name, i, succ)
			}
			method.stmts[i].succs = append(method.stmts[i].succs, method.stmts[succ])
		}
	}

	return method, nil
}
