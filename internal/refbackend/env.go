package refbackend

import "github.com/dfcompiler/dfmid/internal/dftype"

// Env is a lexically nested variable environment: a fresh child Env
// is pushed per foreach iteration and per function call frame, so
// loop-bound and call-local variables get fresh cells each time
// without violating a Cell's single-assignment rule. Lookups walk
// outward to the declaring scope; a variable not yet seen anywhere in
// the chain is declared lazily in the innermost scope.
//
// Grounded on internal/ctx.Scope's parent-chain lookup, narrowed from
// "declare ahead of use" to "declare on first touch" since the
// interpreter has no separate declaration pass.
type Env struct {
	parent *Env
	cells  map[*dftype.Var]*Cell
	upds   map[*dftype.Var]*UpdCell
}

func NewEnv(parent *Env) *Env {
	return &Env{parent: parent, cells: make(map[*dftype.Var]*Cell), upds: make(map[*dftype.Var]*UpdCell)}
}

func (e *Env) cell(v *dftype.Var) *Cell {
	for s := e; s != nil; s = s.parent {
		if c, ok := s.cells[v]; ok {
			return c
		}
	}
	c := NewCell()
	e.cells[v] = c
	return c
}

func (e *Env) updCell(v *dftype.Var) *UpdCell {
	for s := e; s != nil; s = s.parent {
		if c, ok := s.upds[v]; ok {
			return c
		}
	}
	c := NewUpdCell()
	e.upds[v] = c
	return c
}

// Get/Set are the common case: read or write a plain variable's value.
func (e *Env) Get(v *dftype.Var) any   { return e.cell(v).Get() }
func (e *Env) Set(v *dftype.Var, x any) { e.cell(v).Set(x) }
