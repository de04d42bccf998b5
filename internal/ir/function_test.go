package ir

import (
	"testing"

	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

func TestFunctionInstructionsAndWalk(t *testing.T) {
	x := testVar(1, "x")
	y := testVar(2, "y")
	fn := NewFunction("double", []*dftype.Var{x}, []*dftype.Var{y})
	fn.Root.AddInstr(CreateLocal(1, PlusInt, y, []arg.Arg{arg.VarRef(x), arg.VarRef(x)}))

	if fn.Name != "double" {
		t.Errorf("fn.Name = %q, want %q", fn.Name, "double")
	}
	if len(fn.Instructions()) != 1 {
		t.Fatalf("Instructions() = %d, want 1", len(fn.Instructions()))
	}

	var visited int
	fn.Walk(func(_ *Block, _ Instruction) { visited++ })
	if visited != 1 {
		t.Errorf("Walk() visited %d instructions, want 1", visited)
	}
}
