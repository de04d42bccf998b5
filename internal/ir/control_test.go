package ir

import (
	"testing"

	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

func TestLoopContinueGetBlockingInputsRespectsBitvector(t *testing.T) {
	x := testVar(1, "x")
	y := testVar(2, "y")
	lc := NewLoopContinue(1, []*dftype.Var{x}, []arg.Arg{arg.VarRef(x), arg.VarRef(y)}, []bool{true, false})

	bi := lc.GetBlockingInputs()
	if len(bi) != 1 || bi[0] != x {
		t.Errorf("GetBlockingInputs() = %v, want [x] (only the bit set true)", bi)
	}
}

func TestLoopContinueGetIncrVarsReadsNewLoopVars(t *testing.T) {
	x := testVar(1, "x")
	lc := NewLoopContinue(1, []*dftype.Var{x}, nil, nil)

	reads, writes := lc.GetIncrVars(func(string) bool { return false })
	if len(reads) != 1 || reads[0] != x {
		t.Errorf("GetIncrVars() reads = %v, want [x]", reads)
	}
	if writes != nil {
		t.Errorf("GetIncrVars() writes = %v, want nil", writes)
	}
}

func TestLoopContinueCanMakeImmediatePrunesClosedBits(t *testing.T) {
	x := testVar(1, "x")
	lc := NewLoopContinue(1, nil, []arg.Arg{arg.VarRef(x)}, []bool{true})

	// Nothing closed: no change.
	req := lc.CanMakeImmediate(func(*dftype.Var) bool { return false }, false)
	if req != nil {
		t.Error("CanMakeImmediate() = non-nil, want nil when nothing is closed")
	}

	// x closed: the bit should be prunable.
	req = lc.CanMakeImmediate(func(*dftype.Var) bool { return true }, false)
	if req == nil {
		t.Fatal("CanMakeImmediate() = nil, want a request once x is closed")
	}
	change := lc.MakeImmediate(nil, nil)
	if len(change.Instrs) != 1 {
		t.Fatalf("MakeImmediate() = %d instrs, want 1", len(change.Instrs))
	}
}

func TestLoopContinueCloneIndependent(t *testing.T) {
	x := testVar(1, "x")
	lc := NewLoopContinue(1, []*dftype.Var{x}, []arg.Arg{arg.VarRef(x)}, []bool{true})

	clone := lc.Clone().(*LoopContinue)
	clone.Blocking[0] = false
	if !lc.Blocking[0] {
		t.Error("Clone() shares the Blocking backing array with the original")
	}
}

func TestLoopBreakIsTerminalNoInputsOutputs(t *testing.T) {
	x := testVar(1, "x")
	y := testVar(2, "y")
	lb := NewLoopBreak(1, []*dftype.Var{x}, []*dftype.Var{y})

	if lb.GetInputs() != nil || lb.GetOutputs() != nil {
		t.Error("LoopBreak should have no inputs/outputs")
	}
	if !lb.HasSideEffects() || lb.CanChangeTiming() {
		t.Error("LoopBreak should be side-effecting and timing-fixed")
	}

	x2 := testVar(3, "x2")
	renamed := lb.RenameVars(map[*dftype.Var]*dftype.Var{x: x2}, ReplaceVar).(*LoopBreak)
	if renamed.DecrVars[0] != x2 {
		t.Errorf("RenameVars().DecrVars[0] = %v, want x2", renamed.DecrVars[0])
	}
	if lb.DecrVars[0] != x {
		t.Error("RenameVars() mutated the original LoopBreak")
	}
}

func TestCommentIsPureAnnotation(t *testing.T) {
	c := NewComment(1, "note")

	if c.Text != "note" {
		t.Errorf("Text = %q, want note", c.Text)
	}
	if c.HasSideEffects() {
		t.Error("Comment.HasSideEffects() = true, want false")
	}
	if !c.CanChangeTiming() || !c.IsIdempotent() {
		t.Error("Comment should be freely movable and idempotent")
	}
	if c.GetInputs() != nil || c.GetOutputs() != nil {
		t.Error("Comment should carry no inputs/outputs")
	}

	renamed := c.RenameVars(nil, ReplaceVar).(*Comment)
	if renamed.Text != "note" {
		t.Errorf("RenameVars() dropped Text: got %q", renamed.Text)
	}
}
