package ir

import (
	"testing"

	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/backend"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

func TestBaseOpAndLine(t *testing.T) {
	b := Base{OpCode: OpLocalOp, LineNo: 42}
	if b.Op() != OpLocalOp {
		t.Errorf("Op() = %s, want LOCAL_OP", b.Op())
	}
	if b.Line() != 42 {
		t.Errorf("Line() = %d, want 42", b.Line())
	}
}

func TestBlockingFromArgsSkipsConstantsAndLocals(t *testing.T) {
	future := dftype.New(1, "f", dftype.PrimFuture(dftype.Int), dftype.Temp, dftype.LocalCompiler)
	local := testVar(2, "local")
	ref := dftype.New(3, "r", dftype.RefOf(dftype.PrimValue(dftype.Int)), dftype.Temp, dftype.LocalCompiler)

	args := []arg.Arg{arg.Int(1), arg.VarRef(future), arg.VarRef(local), arg.VarRef(ref)}
	out := blockingFromArgs(args)

	if len(out) != 2 || out[0] != future || out[1] != ref {
		t.Errorf("blockingFromArgs() = %v, want [future, ref]", out)
	}
}

func TestWritesAliasAndMapped(t *testing.T) {
	plain := testVar(1, "plain")
	alias := dftype.New(2, "a", dftype.PrimValue(dftype.Int), dftype.Alias, dftype.LocalCompiler)
	if writesAlias([]*dftype.Var{plain}) {
		t.Error("writesAlias() = true, want false for a non-alias output")
	}
	if !writesAlias([]*dftype.Var{plain, alias}) {
		t.Error("writesAlias() = false, want true when any output is Alias-allocated")
	}

	mapped := testVar(3, "mapped")
	mapped.SetMapping(testVar(4, "target"))
	if writesMapped([]*dftype.Var{plain}) {
		t.Error("writesMapped() = true, want false for an unmapped output")
	}
	if !writesMapped([]*dftype.Var{plain, mapped}) {
		t.Error("writesMapped() = false, want true when any output carries a mapping")
	}
}

func TestNoComponentAliasAndNoPiggyback(t *testing.T) {
	container, alias, ok := noComponentAlias()
	if container != nil || alias != nil || ok {
		t.Errorf("noComponentAlias() = %v, %v, %v, want nil, nil, false", container, alias, ok)
	}
	if noPiggyback() != nil {
		t.Error("noPiggyback() = non-nil, want nil")
	}
}

func TestTaskPropsInputsFlattensPresentFields(t *testing.T) {
	if taskPropsInputs(nil) != nil {
		t.Error("taskPropsInputs(nil) = non-nil, want nil")
	}

	prio := arg.Int(1)
	loc := arg.Str("host1")
	props := &backend.TaskProps{Priority: &prio, Location: &loc}
	out := taskPropsInputs(props)
	if len(out) != 2 {
		t.Fatalf("taskPropsInputs() = %d entries, want 2 (priority, location; parallelism absent)", len(out))
	}
	if out[0].IntVal() != 1 || out[1].StringVal() != "host1" {
		t.Errorf("taskPropsInputs() = %v, want [1, host1]", out)
	}
}
