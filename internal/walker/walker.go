// Package walker implements the expression-tree-to-instruction-stream
// lowering pass: given a typed dfast.Tree and a set of destination
// variables, it drives a backend.Backend to emit the operations that
// compute the tree's value into those destinations.
//
// Grounded on go/ssa/builder.go's expr/expr0/addr/stmt dispatch: one
// entry point per syntactic form, mutually recursive, each producing
// either a value (rvalue) or writing directly into a destination
// (lvalue-style), chosen by whichever the caller already knows it
// wants.
package walker

import (
	"github.com/dfcompiler/dfmid/internal/backend"
	"github.com/dfcompiler/dfmid/internal/ctx"
	"github.com/dfcompiler/dfmid/internal/dfast"
	"github.com/dfcompiler/dfmid/internal/diag"
	"github.com/dfcompiler/dfmid/internal/dftype"
	"github.com/dfcompiler/dfmid/internal/settings"
)

// Context bundles everything EvalToVars and its helpers need: the
// current lexical scope (and, through it, the enclosing Function and
// Global), the backend being driven, and the active settings registry.
type Context struct {
	Scope    *ctx.Scope
	Backend  backend.Backend
	Settings *settings.Registry
}

func (c *Context) fn() *ctx.Function { return c.Scope.FuncCtx() }

// Renames substitutes one variable for another during lowering --
// used when inlining a composite-sync call's body, where the callee's
// formal parameters must resolve to the caller's argument variables.
type Renames map[*dftype.Var]*dftype.Var

func (r Renames) apply(v *dftype.Var) *dftype.Var {
	if r == nil {
		return v
	}
	if nv, ok := r[v]; ok {
		return nv
	}
	return v
}

// EvalToVars lowers tree, writing its result into outs. This is the
// walker's sole entry point; every other function in this package is
// reached only through it or through eval (its rvalue-producing
// counterpart in eval.go).
func EvalToVars(wc *Context, tree dfast.Tree, outs []*dftype.Var, renames Renames) error {
	wc.Scope.SetLine(tree.Line())
	switch tree.GetType() {
	case dfast.Variable:
		return evalVariable(wc, tree, outs, renames)
	case dfast.IntLiteral, dfast.FloatLiteral, dfast.StringLiteral, dfast.BoolLiteral:
		return evalLiteral(wc, tree, outs)
	case dfast.Operator:
		return evalOperator(wc, tree, outs, renames)
	case dfast.CallFunction:
		return lowerCall(wc, tree, outs, renames)
	case dfast.ArrayLoad:
		return evalArrayLoad(wc, tree, outs, renames)
	case dfast.StructLoad:
		return evalStructLoad(wc, tree, outs, renames)
	case dfast.ArrayRange:
		return evalArrayRange(wc, tree, outs, renames)
	case dfast.ArrayElems, dfast.ArrayKVElems:
		return evalArrayElems(wc, tree, outs, renames)
	default:
		return diag.Errorf(diag.InternalError, tree.Line(), "walker: unhandled token type %v", tree.GetType())
	}
}

// singleOut is the arity check shared by every handler that produces
// exactly one result (everything except the rare multi-output call).
func singleOut(tree dfast.Tree, outs []*dftype.Var) (*dftype.Var, error) {
	if len(outs) != 1 {
		return nil, diag.Errorf(diag.InternalError, tree.Line(), "walker: expected exactly 1 destination, got %d", len(outs))
	}
	return outs[0], nil
}

func evalVariable(wc *Context, tree dfast.Tree, outs []*dftype.Var, renames Renames) error {
	out, err := singleOut(tree, outs)
	if err != nil {
		return err
	}
	v, err := lookupRenamed(wc, tree, renames)
	if err != nil {
		return err
	}
	if v == out {
		return diag.Errorf(diag.DefinitionError, tree.Line(), "walker: self-assignment of %q", v.Name)
	}
	return copyByValue(wc, v, out)
}

func lookupRenamed(wc *Context, tree dfast.Tree, renames Renames) (*dftype.Var, error) {
	name := tree.GetText()
	v, ok := wc.Scope.LookupVar(name)
	if !ok {
		return nil, diag.Errorf(diag.NameError, tree.Line(), "walker: undefined variable %q", name)
	}
	return renames.apply(v), nil
}
