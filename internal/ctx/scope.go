package ctx

import (
	"fmt"

	"github.com/dfcompiler/dfmid/internal/dftype"
)

// Scope is one lexical block scope within a function: a chain link in
// the global -> function -> block lookup chain. Each Scope
// holds the variables declared directly in that block and a pointer
// to its lexical parent; lookups chase the chain outward to the
// function's own declarations and finally to the Global's constants.
//
// Grounded on Hassandahiru-Compiler-in-Go/internal/symtab/scope.go's
// explicit parent-chain Scope (same retrieval pack; go/ssa itself
// resolves names through go/types.Info rather than a hand-rolled
// chain, so this secondary source supplies the chained-scope shape).
//
// Scope deliberately exposes no way to define a function: function
// definitions live only in Registry.Define, called from Global. A
// Scope (local context) attempting to define a function is a
// programmer error caught at compile time by the absence of that
// method, not a runtime check.
type Scope struct {
	fn     *Function
	parent *Scope
	vars   map[string]*dftype.Var
	line   int
}

// NewFunctionScope creates the outermost (main-block) scope of fn.
func NewFunctionScope(fn *Function) *Scope {
	return &Scope{fn: fn, vars: make(map[string]*dftype.Var)}
}

// NewChild opens a nested block scope under s.
func (s *Scope) NewChild() *Scope {
	return &Scope{fn: s.fn, parent: s, vars: make(map[string]*dftype.Var)}
}

// FuncCtx returns the Function owning this scope chain.
func (s *Scope) FuncCtx() *Function { return s.fn }

// SetLine records the source line currently being lowered, for
// diagnostics.
func (s *Scope) SetLine(line int) { s.line = line }

// Line returns the most recently recorded source line.
func (s *Scope) Line() int { return s.line }

// DeclareVariable declares name in this scope. Redeclaring a name
// already visible in this exact scope is a definition error; shadowing
// an outer scope's name is allowed (a block may redeclare a name from
// an enclosing block -- uniqueness is enforced "unique within its
// function" by the validator, not per-scope shadowing -- but double-declaring
// within the *same* block is always a programmer error and is
// rejected here).
func (s *Scope) DeclareVariable(v *dftype.Var) error {
	if _, exists := s.vars[v.Name]; exists {
		return fmt.Errorf("definition error: %q already defined in this scope", v.Name)
	}
	s.vars[v.Name] = v
	return nil
}

// LookupVar chases the scope chain outward, then the function's own
// inputs/outputs, then the Global's constants, chasing parent scopes
// the way lookupVar(name) does.
func (s *Scope) LookupVar(name string) (*dftype.Var, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}
	for _, v := range s.fn.Inputs {
		if v.Name == name {
			return v, true
		}
	}
	for _, v := range s.fn.Outputs {
		if v.Name == name {
			return v, true
		}
	}
	return s.fn.Global.LookupConst(name)
}

// GetVisibleVariables returns every variable visible at this point in
// the chain: this scope's own declarations, then each ancestor's, then
// inputs/outputs. Global constants are not included. Used by the validator's fixup-
// variables pass and by cleanup-placement checks.
func (s *Scope) GetVisibleVariables() []*dftype.Var {
	var out []*dftype.Var
	for sc := s; sc != nil; sc = sc.parent {
		for _, v := range sc.vars {
			out = append(out, v)
		}
	}
	out = append(out, s.fn.Inputs...)
	out = append(out, s.fn.Outputs...)
	return out
}

// IsDeclaredHere reports whether v was declared directly in this
// scope (not an ancestor) -- used by cleanup-placement validation.
func (s *Scope) IsDeclaredHere(v *dftype.Var) bool {
	found, ok := s.vars[v.Name]
	return ok && found == v
}
