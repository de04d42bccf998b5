package ir

import (
	"testing"

	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

func TestComputeDeltasAccumulatesReadsAndWrites(t *testing.T) {
	x := testVar(1, "x")
	a := testVar(2, "a")
	b := testVar(3, "b")

	instrs := []Instruction{
		CreateLocal(1, CopyInt, a, []arg.Arg{arg.VarRef(x)}),
		CreateLocal(2, CopyInt, b, []arg.Arg{arg.VarRef(x)}),
	}
	d := ComputeDeltas(instrs, func(string) bool { return false })
	if d.Reads[x] != 2 {
		t.Errorf("Reads[x] = %d, want 2 (read once per consuming instruction)", d.Reads[x])
	}
	if d.Writes[a] != 1 || d.Writes[b] != 1 {
		t.Errorf("Writes = %+v, want 1 each for a and b", d.Writes)
	}
}

func TestInsertRefcountOpsAppendsExplicitOps(t *testing.T) {
	x := testVar(1, "x")
	a := testVar(2, "a")
	instrs := []Instruction{CreateLocal(1, CopyInt, a, []arg.Arg{arg.VarRef(x)})}
	d := ComputeDeltas(instrs, func(string) bool { return false })
	// Builtin.TryPiggyback always declines (noPiggyback), so both the
	// read claim on x and the write claim on a must surface as
	// explicit RefcountOps appended at the end of the block.
	out := InsertRefcountOps(instrs, d, 99)

	if len(out) != 3 {
		t.Fatalf("InsertRefcountOps() = %d instrs, want 3 (original + read + write op)", len(out))
	}
	rcRead, ok := out[1].(*RefcountOp)
	if !ok || rcRead.Op() != OpIncrRead || rcRead.Target != x || rcRead.Amount != 1 {
		t.Errorf("InsertRefcountOps()[1] = %#v, want INCR_READ x amount 1", out[1])
	}
	rcWrite, ok := out[2].(*RefcountOp)
	if !ok || rcWrite.Op() != OpIncrWrite || rcWrite.Target != a || rcWrite.Amount != 1 {
		t.Errorf("InsertRefcountOps()[2] = %#v, want INCR_WRITE a amount 1", out[2])
	}
	if rcRead.Line() != 99 || rcWrite.Line() != 99 {
		t.Errorf("InsertRefcountOps() line = %d/%d, want 99", rcRead.Line(), rcWrite.Line())
	}
}

func TestRefcountOpRenameVars(t *testing.T) {
	x := testVar(1, "x")
	x2 := testVar(2, "x2")
	rc := NewIncrRead(1, x, 3)

	renamed := rc.RenameVars(map[*dftype.Var]*dftype.Var{x: x2}, ReplaceVar).(*RefcountOp)
	if renamed.Target != x2 {
		t.Errorf("RenameVars().Target = %v, want x2", renamed.Target)
	}
	if rc.Target != x {
		t.Error("RenameVars() mutated the original RefcountOp")
	}
}
