package walker

import (
	"github.com/dfcompiler/dfmid/internal/backend"
	"github.com/dfcompiler/dfmid/internal/diag"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// dereference follows refVar and writes the referent's value into
// out: a scalar referent goes through derefScalar/derefFile directly;
// a container or struct referent is waited on, retrieved into an
// alias, and copied into out by the usual copyByValue rules (a
// dereferenced container is not itself aliased into out -- out gets
// its own copy).
func dereference(wc *Context, refVar, out *dftype.Var) error {
	elemT := dftype.DerefResultType(refVar.Type)
	switch elemT.Kind() {
	case dftype.KindPrimFuture, dftype.KindPrimValue:
		if elemT.PrimKind() == dftype.File {
			wc.Backend.DerefFile(out, refVar)
			return nil
		}
		wc.Backend.DerefScalar(out, refVar)
		return nil
	case dftype.KindArray, dftype.KindBag, dftype.KindStruct:
		return derefContainerOrStruct(wc, refVar, out, elemT)
	default:
		return diag.Errorf(diag.TypeError, 0, "walker: cannot dereference a ref to %s", elemT)
	}
}

func derefContainerOrStruct(wc *Context, refVar, out *dftype.Var, elemT *dftype.Type) error {
	wc.Backend.StartWaitStatement("deref_wait", []*dftype.Var{refVar}, backend.WaitOnly, true, false, backend.Local, nil)
	alias := wc.fn().CreateAliasVar(elemT)
	wc.Backend.RetrieveRef(alias, refVar)
	if err := copyByValue(wc, alias, out); err != nil {
		return err
	}
	wc.Backend.EndWaitStatement()
	return nil
}
