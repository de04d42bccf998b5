package walker

import (
	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/dfast"
	"github.com/dfcompiler/dfmid/internal/diag"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// evalArrayLoad lowers arr[idx]. The array subexpression's static
// type is resolved against the output type first (picking the
// matching alternative when it's still a type-checker Union), then an
// integer-literal index is looked up immediately via
// arrayLookupRefImm; any other index expression is evaluated to a
// future first and looked up via arrayLookupFuture.
func evalArrayLoad(wc *Context, tree dfast.Tree, outs []*dftype.Var, renames Renames) error {
	out, err := singleOut(tree, outs)
	if err != nil {
		return err
	}
	if tree.GetChildCount() != 2 {
		return diag.Errorf(diag.InternalError, tree.Line(), "walker: ARRAY_LOAD expects 2 children, got %d", tree.GetChildCount())
	}
	arrExprTree := tree.Child(0)
	idxTree := tree.Child(1)

	arrType, err := resolveArrayType(wc, arrExprTree, out.Type, renames)
	if err != nil {
		return err
	}

	arrVar := wc.fn().CreateTmp(arrType)
	if err := EvalToVars(wc, arrExprTree, []*dftype.Var{arrVar}, renames); err != nil {
		return err
	}

	elemT := dftype.ContainerElemType(arrType)
	slot := wc.fn().CreateAliasVar(elemT)

	if idxTree.GetType() == dfast.IntLiteral {
		lit, err := literalArg(idxTree, dftype.ArrayKeyType(arrType))
		if err != nil {
			return err
		}
		wc.Backend.ArrayLookupRefImm(slot, arrVar, lit)
	} else {
		idxVar := wc.fn().CreateTmp(dftype.ArrayKeyType(arrType))
		if err := EvalToVars(wc, idxTree, []*dftype.Var{idxVar}, renames); err != nil {
			return err
		}
		wc.Backend.ArrayLookupFuture(slot, arrVar, idxVar)
	}

	if dftype.Equal(elemT, out.Type) {
		return copyByValue(wc, slot, out)
	}
	return dereference(wc, slot, out)
}

// resolveArrayType determines the concrete array type of the
// array-load's base expression. Only a variable reference is
// supported as the base today: when its declared type is a Union left
// over from type checking, the first alternative whose element type
// is assignable to wantElem is picked.
func resolveArrayType(wc *Context, tree dfast.Tree, wantElem *dftype.Type, renames Renames) (*dftype.Type, error) {
	if tree.GetType() != dfast.Variable {
		return nil, diag.Errorf(diag.InternalError, tree.Line(), "walker: array-load base expression must be a variable reference")
	}
	v, err := lookupRenamed(wc, tree, renames)
	if err != nil {
		return nil, err
	}
	if !dftype.IsUnion(v.Type) {
		return v.Type, nil
	}
	for _, alt := range v.Type.Alternatives() {
		if alt.Kind() == dftype.KindArray && dftype.AssignableTo(alt.Elem(), wantElem) {
			return alt, nil
		}
	}
	return nil, diag.Errorf(diag.TypeError, tree.Line(), "walker: no array alternative of %s has element type assignable to %s", v.Type, wantElem)
}

// evalArrayRange lowers [a:b] / [a:b:s] to the range/range_step
// special foreign functions.
func evalArrayRange(wc *Context, tree dfast.Tree, outs []*dftype.Var, renames Renames) error {
	n := tree.GetChildCount()
	if n != 2 && n != 3 {
		return diag.Errorf(diag.InternalError, tree.Line(), "walker: ARRAY_RANGE expects 2 or 3 children, got %d", n)
	}
	intFuture := dftype.PrimFuture(dftype.Int)

	start, err := eval(wc, tree.Child(0), intFuture, renames)
	if err != nil {
		return err
	}
	end, err := eval(wc, tree.Child(1), intFuture, renames)
	if err != nil {
		return err
	}
	args := []arg.Arg{start, end}
	fnName := "range"
	if n == 3 {
		step, err := eval(wc, tree.Child(2), intFuture, renames)
		if err != nil {
			return err
		}
		args = append(args, step)
		fnName = "range_step"
	}
	wc.Backend.BuiltinFunctionCall(fnName, args, outs, nil)
	return nil
}

// evalArrayElems lowers array-literal syntax: [e1, e2, ...] (implicit
// 0-based integer keys) builds directly via arrayBuild; [k1=v1, ...]
// (explicit, possibly non-constant keys) inserts one element at a
// time via arrayInsertFuture.
func evalArrayElems(wc *Context, tree dfast.Tree, outs []*dftype.Var, renames Renames) error {
	out, err := singleOut(tree, outs)
	if err != nil {
		return err
	}
	if out.Type.Kind() != dftype.KindArray {
		return diag.Errorf(diag.TypeError, tree.Line(), "walker: array-elements expression assigned to non-array output %s", out.Type)
	}
	elemT := dftype.ContainerElemType(out.Type)
	keyT := dftype.ArrayKeyType(out.Type)

	if tree.GetType() == dfast.ArrayElems {
		n := tree.GetChildCount()
		keys := make([]arg.Arg, n)
		vals := make([]arg.Arg, n)
		for i := 0; i < n; i++ {
			keys[i] = arg.Int(int64(i))
			v, err := eval(wc, tree.Child(i), elemT, renames)
			if err != nil {
				return err
			}
			vals[i] = v
		}
		wc.Backend.ArrayBuild(out, keys, vals)
		return nil
	}

	n := tree.GetChildCount()
	for i := 0; i < n; i++ {
		pair := tree.Child(i)
		if pair.GetChildCount() != 2 {
			return diag.Errorf(diag.InternalError, tree.Line(), "walker: ARRAY_KV_ELEMS entry %d expects 2 children, got %d", i, pair.GetChildCount())
		}
		keyVar := wc.fn().CreateTmp(keyT)
		if err := EvalToVars(wc, pair.Child(0), []*dftype.Var{keyVar}, renames); err != nil {
			return err
		}
		val, err := eval(wc, pair.Child(1), elemT, renames)
		if err != nil {
			return err
		}
		wc.Backend.ArrayInsertFuture(out, keyVar, val)
	}
	return nil
}
