package walker

import (
	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/dfast"
	"github.com/dfcompiler/dfmid/internal/diag"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// eval produces an rvalue Arg for tree, typed exactly as
// expectedType, without necessarily materializing a fresh
// destination: a Variable reference whose type already matches is
// passed straight through as a VarRef; a literal is folded straight
// into a Const; anything else falls back to EvalToVars into a fresh
// temporary, then wraps that temporary as a VarRef.
//
// This is the rvalue counterpart to EvalToVars' destination-writing
// form -- the same duality go/ssa/builder.go draws between expr
// (produce a Value) and addr (write into an lvalue).
func eval(wc *Context, tree dfast.Tree, expectedType *dftype.Type, renames Renames) (arg.Arg, error) {
	switch tree.GetType() {
	case dfast.Variable:
		return evalVariableRvalue(wc, tree, expectedType, renames)
	case dfast.IntLiteral, dfast.FloatLiteral, dfast.StringLiteral, dfast.BoolLiteral:
		return literalArg(tree, expectedType)
	default:
		tmp := wc.fn().CreateTmp(expectedType)
		if err := EvalToVars(wc, tree, []*dftype.Var{tmp}, renames); err != nil {
			return arg.Arg{}, err
		}
		return arg.VarRef(tmp), nil
	}
}

func evalVariableRvalue(wc *Context, tree dfast.Tree, expectedType *dftype.Type, renames Renames) (arg.Arg, error) {
	v, err := lookupRenamed(wc, tree, renames)
	if err != nil {
		return arg.Arg{}, err
	}
	vt := v.Type
	if dftype.IsUnion(vt) {
		concrete, ok := dftype.ConcretizeUnion(vt, expectedType)
		if !ok {
			return arg.Arg{}, diag.Errorf(diag.TypeError, tree.Line(), "walker: no alternative of %s assignable to %s", vt, expectedType)
		}
		vt = concrete
	}
	if dftype.Equal(vt, expectedType) {
		return arg.VarRef(v), nil
	}
	if dftype.IsRef(vt) && dftype.Equal(dftype.DerefResultType(vt), expectedType) {
		out := wc.fn().CreateTmp(expectedType)
		if err := dereference(wc, v, out); err != nil {
			return arg.Arg{}, err
		}
		return arg.VarRef(out), nil
	}
	if dftype.IsUpdateable(vt) && dftype.Equal(dftype.PrimValue(vt.PrimKind()), expectedType) {
		out := wc.fn().CreateLocalValueVar(expectedType)
		if err := copyFromUpdateable(wc, v, out); err != nil {
			return arg.Arg{}, err
		}
		return arg.VarRef(out), nil
	}
	out := wc.fn().CreateTmp(expectedType)
	if err := copyByValue(wc, v, out); err != nil {
		return arg.Arg{}, err
	}
	return arg.VarRef(out), nil
}
