package walker

import (
	"github.com/dfcompiler/dfmid/internal/dfast"
	"github.com/dfcompiler/dfmid/internal/diag"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// evalStructLoad walks a chain of nested STRUCT_LOAD nodes up to its
// root variable, collects the field-name path in root-to-leaf order,
// then emits one structLookup per intermediate field and a final
// access that special-cases a Ref-typed leaf field (structRefLookup,
// then dereference if the caller wants a value rather than the ref
// itself).
func evalStructLoad(wc *Context, tree dfast.Tree, outs []*dftype.Var, renames Renames) error {
	out, err := singleOut(tree, outs)
	if err != nil {
		return err
	}

	var fields []string
	cur := tree
	for cur.GetType() == dfast.StructLoad {
		fields = append(fields, cur.GetText())
		cur = cur.Child(0)
	}
	for i, j := 0, len(fields)-1; i < j; i, j = i+1, j-1 {
		fields[i], fields[j] = fields[j], fields[i]
	}

	if cur.GetType() != dfast.Variable {
		return diag.Errorf(diag.InternalError, tree.Line(), "walker: struct load root is not a variable reference")
	}
	cursor, err := lookupRenamed(wc, cur, renames)
	if err != nil {
		return err
	}

	for i, fieldName := range fields {
		ft, ok := cursor.Type.Field(fieldName)
		if !ok {
			return diag.Errorf(diag.NameError, tree.Line(), "walker: struct %s has no field %q", cursor.Type, fieldName)
		}
		if i == len(fields)-1 {
			return finishStructField(wc, cursor, fieldName, ft.Type, out)
		}
		next := wc.fn().CreateStructFieldTmp(cursor.Type.StructName(), fields[:i+1], ft.Type)
		wc.Backend.StructLookup(next, cursor, fieldName)
		cursor = next
	}
	return nil
}

func finishStructField(wc *Context, owner *dftype.Var, fieldName string, fieldType *dftype.Type, out *dftype.Var) error {
	if dftype.IsRef(fieldType) {
		refVar := wc.fn().CreateAliasVar(fieldType)
		wc.Backend.StructRefLookup(refVar, owner, fieldName)
		if dftype.Equal(out.Type, fieldType) {
			return copyByValue(wc, refVar, out)
		}
		return dereference(wc, refVar, out)
	}
	if dftype.Equal(fieldType, out.Type) {
		wc.Backend.StructLookup(out, owner, fieldName)
		return nil
	}
	tmp := wc.fn().CreateStructFieldTmp(owner.Type.StructName(), []string{fieldName}, fieldType)
	wc.Backend.StructLookup(tmp, owner, fieldName)
	return copyByValue(wc, tmp, out)
}
