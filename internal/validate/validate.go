// Package validate implements the structural sanity pass a lowered
// Function must pass before the optimizer or refcount-insertion pass
// touches it: unique names, parent-link invariants, cleanup placement,
// variable-reference identity, and (in "standard" mode) the absence of
// any already-inserted refcount op.
//
// Grounded directly on golang.org/x/tools/go/ssa/sanity.go, which
// performs the same class of check (referrer consistency, block
// parent links, one pass before downstream transforms see the IR) over
// go/ssa's value space -- narrowed here from a dominator-tree CFG to
// this IR's nested-by-parent-pointer block structure.
package validate

import (
	"errors"
	"fmt"

	"github.com/dfcompiler/dfmid/internal/diag"
	"github.com/dfcompiler/dfmid/internal/dftype"
	"github.com/dfcompiler/dfmid/internal/ir"
)

// Validator runs the sanity pass. Final disables the cleanup-placement
// and no-refcount-ops checks, accepting IR that has already been
// through the refcount-insertion pass (see ir.InsertRefcountOps).
type Validator struct {
	Final bool

	fn     *ir.Function
	errs   []error
	byName map[string]*dftype.Var
	declAt map[*dftype.Var]*ir.Block
}

// New creates a Validator for standard (pre-refcount) IR. Call
// v.Final = true for the post-refcount variant instead of constructing
// a second type -- mirrors sanity.checkFunction's single entry point
// with mode carried on the receiver.
func New() *Validator { return &Validator{} }

// Validate runs every check against fn and returns a combined error
// (via errors.Join) if any failed, or nil if fn is sane.
func (v *Validator) Validate(fn *ir.Function) error {
	v.fn = fn
	v.errs = nil
	v.byName = make(map[string]*dftype.Var)
	v.declAt = make(map[*dftype.Var]*ir.Block)

	v.fixupVariables()
	v.checkUniqueNames()
	v.checkMappingTargets()
	v.checkBlock(fn.Root)

	return errors.Join(v.errs...)
}

func (v *Validator) errorf(format string, args ...interface{}) {
	v.errs = append(v.errs, diag.Errorf(diag.InternalError, 0, "validate: function %s: %s", v.fn.Name, fmt.Sprintf(format, args...)))
}

// fixupVariables records, for every variable of the whole function,
// the Block it was first produced in (declaring *Var -> Block), in a
// single non-mutating walk. Every later check consults this map rather
// than recomputing it; the name -> *dftype.Var map is filled
// separately, by checkUniqueNames.
func (v *Validator) fixupVariables() {
	for _, p := range v.fn.Inputs {
		v.declare(p, v.fn.Root)
	}
	v.fn.Root.Walk(func(blk *ir.Block, in ir.Instruction) {
		for _, o := range in.GetOutputs() {
			if o != nil {
				v.declare(o, blk)
			}
		}
	})
}

func (v *Validator) declare(vr *dftype.Var, blk *ir.Block) {
	if _, ok := v.declAt[vr]; !ok {
		v.declAt[vr] = blk
	}
}

// checkUniqueNames implements "Program with two variables named v in
// same function raises an internal-invariant error": every *dftype.Var
// reachable in the function must have a name distinct from every other
// *dftype.Var's, regardless of which block declared it.
func (v *Validator) checkUniqueNames() {
	for vr := range v.declAt {
		if prior, ok := v.byName[vr.Name]; ok && prior != vr {
			v.errorf("duplicate variable name %q (vars %p and %p)", vr.Name, prior, vr)
			continue
		}
		v.byName[vr.Name] = vr
	}
}

// checkMappingTargets verifies every File variable's Mapping points at
// a variable actually declared somewhere in this function.
func (v *Validator) checkMappingTargets() {
	for vr := range v.declAt {
		if vr.Mapping != nil {
			if _, ok := v.declAt[vr.Mapping]; !ok {
				v.errorf("variable %s has a mapping target %s not declared in this function", vr.Name, vr.Mapping.Name)
			}
		}
	}
}

// checkBlock walks b and its descendants checking parent links,
// variable-reference identity, cleanup placement, and (outside Final
// mode) the absence of refcount ops.
func (v *Validator) checkBlock(b *ir.Block) {
	for _, s := range b.Stmts {
		if s.IsInstr() {
			v.checkInstr(b, s.Instr)
			continue
		}
		v.checkContinuation(b, s.Cont)
	}
	if !v.Final {
		for _, in := range b.Cleanup {
			v.checkCleanupScope(b, in)
		}
	}
}

func (v *Validator) checkContinuation(parent *ir.Block, c *ir.Continuation) {
	if c.Body.Parent != parent {
		v.errorf("continuation body's Parent does not point back at its enclosing block")
	}
	v.checkBlock(c.Body)
	if c.Else != nil {
		if c.Else.Parent != parent {
			v.errorf("continuation else-block's Parent does not point back at its enclosing block")
		}
		v.checkBlock(c.Else)
	}
}

// checkInstr verifies variable-reference identity (every input var
// must be the same declared pointer recorded in declAt -- trivially
// true by construction since this IR passes *dftype.Var around
// directly rather than copying, but an instruction built by hand
// outside the walker could violate it) and, outside Final mode, that
// no refcount op has been inserted yet.
func (v *Validator) checkInstr(blk *ir.Block, in ir.Instruction) {
	if !v.Final {
		if _, ok := in.(*ir.RefcountOp); ok {
			v.errorf("refcount op present before the refcount-insertion pass has run")
		}
	}
	for _, a := range in.GetInputs() {
		if !a.IsVar() {
			continue
		}
		vr := a.Var()
		if canonical, ok := v.byName[vr.Name]; ok && !vr.Identical(canonical) {
			v.errorf("variable reference %s is not identical to its declaration (name/storage/type/mapping mismatch)", vr.Name)
		}
		if decl, ok := v.declAt[vr]; ok && decl != nil {
			if !blk.DeclaredIn(vr, func(x *dftype.Var) *ir.Block { return v.declAt[x] }) {
				v.errorf("variable %s used at a block it is not visible from", vr.Name)
			}
		}
	}
}

// checkCleanupScope implements "cleanups attached only to in-scope
// variables": every variable a cleanup instruction reads or writes
// must be declared in b or an ancestor of b.
func (v *Validator) checkCleanupScope(b *ir.Block, in ir.Instruction) {
	check := func(vr *dftype.Var) {
		if vr == nil {
			return
		}
		if !b.DeclaredIn(vr, func(x *dftype.Var) *ir.Block { return v.declAt[x] }) {
			v.errorf("cleanup instruction references out-of-scope variable %s", vr.Name)
		}
	}
	// RefcountOp -- the only instruction kind the refcount pass ever
	// attaches as a cleanup -- carries its variable in Target rather
	// than through GetInputs/GetOutputs (both nil for a RefcountOp).
	if rc, ok := in.(*ir.RefcountOp); ok {
		check(rc.Target)
		return
	}
	for _, a := range in.GetInputs() {
		if a.IsVar() {
			check(a.Var())
		}
	}
	for _, o := range in.GetOutputs() {
		check(o)
	}
}
