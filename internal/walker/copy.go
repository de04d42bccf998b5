package walker

import (
	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/backend"
	"github.com/dfcompiler/dfmid/internal/diag"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// copyByValue emits whatever instructions are needed to make dst hold
// a copy of src's value, dispatching on src's kind: scalar/bool/
// string/blob go through a COPY_* op (LOCAL_OP into a local value,
// ASYNC_OP otherwise), File through CopyFile, Struct recurses field by
// field, Array/Bag iterate src and insert into dst, Ref snapshots and
// reassigns, and Updateable snapshots via LATEST_VALUE before
// assigning into dst's future.
//
// Union and Ref/value mismatches between src and dst are reconciled
// here, once, so every caller (assignment, argument passing, struct
// and array element copy) gets the same rules for free.
func copyByValue(wc *Context, src, dst *dftype.Var) error {
	srcType := src.Type
	if dftype.IsUnion(srcType) {
		concrete, ok := dftype.ConcretizeUnion(srcType, dst.Type)
		if !ok {
			return diag.Errorf(diag.TypeError, 0, "walker: no alternative of %s assignable to %s", srcType, dst.Type)
		}
		srcType = concrete
	}
	if dftype.IsRef(srcType) && !dftype.IsRef(dst.Type) {
		return dereference(wc, src, dst)
	}
	if dftype.IsUpdateable(srcType) {
		return copyFromUpdateable(wc, src, dst)
	}
	switch srcType.Kind() {
	case dftype.KindPrimFuture, dftype.KindPrimValue:
		return copyScalar(wc, src, dst)
	case dftype.KindStruct:
		return copyStruct(wc, src, dst, nil, nil)
	case dftype.KindArray, dftype.KindBag:
		return copyContainer(wc, src, dst)
	case dftype.KindRef:
		return copyRefVar(wc, src, dst)
	default:
		return diag.Errorf(diag.TypeError, 0, "walker: no copy rule for %s", srcType)
	}
}

func copyScalar(wc *Context, src, dst *dftype.Var) error {
	if src.Type.PrimKind() == dftype.File {
		return copyFileVar(wc, src, dst)
	}
	sub, err := copySubFor(dst.Type)
	if err != nil {
		return err
	}
	if dst.Type.Kind() == dftype.KindPrimValue {
		wc.Backend.LocalOp(sub, dst, []arg.Arg{arg.VarRef(src)})
		return nil
	}
	wc.Backend.AsyncOp(sub, dst, []arg.Arg{arg.VarRef(src)}, nil)
	return nil
}

func copySubFor(t *dftype.Type) (string, error) {
	switch t.PrimKind() {
	case dftype.Int:
		return "COPY_INT", nil
	case dftype.Float:
		return "COPY_FLOAT", nil
	case dftype.Bool:
		return "COPY_BOOL", nil
	case dftype.String:
		return "COPY_STRING", nil
	case dftype.Blob:
		return "COPY_BLOB", nil
	default:
		return "", diag.Errorf(diag.TypeError, 0, "walker: no scalar copy op for %s", t)
	}
}

// copyFileVar forbids copying into a destination that already has a
// filename mapping -- a mapped File's storage is the mapped file
// itself, so overwriting it by value is never the right operation.
func copyFileVar(wc *Context, src, dst *dftype.Var) error {
	if dst.Mapping != nil {
		return diag.Errorf(diag.TypeError, 0, "walker: cannot copy a value into mapped file %q", dst.Name)
	}
	wc.Backend.CopyFile(dst, src)
	return nil
}

// copyStruct walks src's fields, pairing a read (structLookup for
// scalar/container/ref leaves, a recursive structRefLookup pair for
// nested structs) with a structRefLookup alias into dst's slot, then
// copies between the two. srcPath/dstPath are pushed and popped
// around each field purely for the struct-field temporaries' names.
func copyStruct(wc *Context, src, dst *dftype.Var, srcPath, dstPath []string) error {
	structName := src.Type.StructName()
	for _, f := range src.Type.Fields() {
		srcPath = append(srcPath, f.Name)
		dstPath = append(dstPath, f.Name)

		dstAlias := wc.fn().CreateStructFieldTmp(dst.Type.StructName(), dstPath, f.Type)
		wc.Backend.StructRefLookup(dstAlias, dst, f.Name)

		if f.Type.Kind() == dftype.KindStruct {
			srcAlias := wc.fn().CreateStructFieldTmp(structName, srcPath, f.Type)
			wc.Backend.StructRefLookup(srcAlias, src, f.Name)
			if err := copyStruct(wc, srcAlias, dstAlias, srcPath, dstPath); err != nil {
				return err
			}
		} else {
			srcVal := wc.fn().CreateStructFieldTmp(structName, srcPath, f.Type)
			wc.Backend.StructLookup(srcVal, src, f.Name)
			if err := copyByValue(wc, srcVal, dstAlias); err != nil {
				return err
			}
		}

		srcPath = srcPath[:len(srcPath)-1]
		dstPath = dstPath[:len(dstPath)-1]
	}
	return nil
}

// copyContainer waits on src, then iterates its elements with a
// foreach loop, inserting each into dst.
func copyContainer(wc *Context, src, dst *dftype.Var) error {
	wc.Backend.StartWaitStatement("copy_wait", []*dftype.Var{src}, backend.WaitOnly, true, false, backend.Local, nil)

	isArray := src.Type.Kind() == dftype.KindArray
	var keyVar *dftype.Var
	if isArray {
		keyVar = wc.fn().CreateTmp(src.Type.Key())
	}
	valVar := wc.fn().CreateTmp(src.Type.Elem())

	wc.Backend.StartForeachLoop(src, keyVar, valVar)
	if isArray {
		wc.Backend.ArrayInsertFuture(dst, keyVar, arg.VarRef(valVar))
	} else {
		wc.Backend.BagInsert(dst, arg.VarRef(valVar))
	}
	wc.Backend.EndForeachLoop()

	wc.Backend.EndWaitStatement()
	return nil
}

// copyRefVar waits on src, retrieves its referent handle, and
// reassigns that handle into dst -- a Ref is copied by value as the
// handle it is, never by following it.
func copyRefVar(wc *Context, src, dst *dftype.Var) error {
	wc.Backend.StartWaitStatement("ref_copy_wait", []*dftype.Var{src}, backend.WaitOnly, false, false, backend.Local, nil)
	alias := wc.fn().CreateAliasVar(src.Type)
	wc.Backend.RetrieveRef(alias, src)
	wc.Backend.AssignRef(dst, alias)
	wc.Backend.EndWaitStatement()
	return nil
}

// copyFromUpdateable snapshots an updateable's latest value into a
// Local, then assigns that snapshot into dst's future -- the only
// place an updateable's value ever crosses into the plain future
// world.
func copyFromUpdateable(wc *Context, src, dst *dftype.Var) error {
	local := wc.fn().CreateLocalValueVar(dftype.PrimValue(src.Type.PrimKind()))
	wc.Backend.LatestValue(local, src)
	wc.Backend.AssignScalar(dst, arg.VarRef(local))
	return nil
}
