package ir

import (
	"testing"

	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

func TestRunExternalGetInputsConcatenatesArgvRedirectsInputFiles(t *testing.T) {
	in := testVar(1, "in")
	out := testVar(2, "out")
	r := NewRunExternal(1, "/bin/cat", []arg.Arg{arg.Str("-n")}, []arg.Arg{arg.Str("log.txt")}, []*dftype.Var{in}, []*dftype.Var{out}, false)

	ins := r.GetInputs()
	if len(ins) != 3 {
		t.Fatalf("GetInputs() = %d, want 3 (argv + redirect + input file)", len(ins))
	}
	if ins[0].StringVal() != "-n" || ins[1].StringVal() != "log.txt" || ins[2].Var() != in {
		t.Errorf("GetInputs() = %v, want [-n, log.txt, in]", ins)
	}
}

func TestRunExternalGetReadOutputsOnlyMapped(t *testing.T) {
	plain := testVar(1, "plain")
	mapped := testVar(2, "mapped")
	mapped.SetMapping(testVar(3, "target"))
	r := NewRunExternal(1, "/bin/true", nil, nil, nil, []*dftype.Var{plain, mapped}, false)

	ro := r.GetReadOutputs(nil)
	if len(ro) != 1 || ro[0] != mapped {
		t.Errorf("GetReadOutputs() = %v, want [mapped]", ro)
	}
}

func TestRunExternalIsIdempotentFollowsDeterministic(t *testing.T) {
	r1 := NewRunExternal(1, "cmd", nil, nil, nil, nil, true)
	if !r1.IsIdempotent() {
		t.Error("IsIdempotent() = false, want true when Deterministic")
	}
	r2 := NewRunExternal(1, "cmd", nil, nil, nil, nil, false)
	if r2.IsIdempotent() {
		t.Error("IsIdempotent() = true, want false when not Deterministic")
	}
	if r1.HasSideEffects() != true || r1.CanChangeTiming() != false {
		t.Error("RunExternal should always be side-effecting and timing-fixed regardless of Deterministic")
	}
}

func TestRunExternalGetResultsOnlyWhenDeterministic(t *testing.T) {
	out := testVar(1, "out")
	nonDet := NewRunExternal(1, "cmd", []arg.Arg{arg.Str("a")}, nil, nil, []*dftype.Var{out}, false)
	if rvs := nonDet.GetResults(nil); rvs != nil {
		t.Error("GetResults() = non-nil, want nil when not deterministic")
	}

	det := NewRunExternal(1, "cmd", []arg.Arg{arg.Str("a")}, nil, nil, []*dftype.Var{out}, true)
	rvs := det.GetResults(nil)
	if len(rvs) != 1 || rvs[0].LocVar != out {
		t.Fatalf("GetResults() = %v, want one ResultVal for out", rvs)
	}
	if rvs[0].Inputs[0].StringVal() != "cmd" {
		t.Errorf("GetResults() key[0] = %v, want the command name", rvs[0].Inputs[0])
	}
}

func TestRunExternalGetResultsEmptyWithNoOutputFiles(t *testing.T) {
	det := NewRunExternal(1, "cmd", nil, nil, nil, nil, true)
	if rvs := det.GetResults(nil); rvs != nil {
		t.Error("GetResults() = non-nil, want nil when there are no output files")
	}
}

func TestRunExternalGetIncrVars(t *testing.T) {
	in := testVar(1, "in")
	out := testVar(2, "out")
	r := NewRunExternal(1, "cmd", nil, nil, []*dftype.Var{in}, []*dftype.Var{out}, false)

	reads, writes := r.GetIncrVars(func(string) bool { return false })
	if len(reads) != 1 || reads[0] != in {
		t.Errorf("GetIncrVars() reads = %v, want [in]", reads)
	}
	if len(writes) != 1 || writes[0] != out {
		t.Errorf("GetIncrVars() writes = %v, want [out]", writes)
	}
}

func TestRunExternalCloneAndRenameVars(t *testing.T) {
	in := testVar(1, "in")
	out := testVar(2, "out")
	r := NewRunExternal(1, "cmd", nil, nil, []*dftype.Var{in}, []*dftype.Var{out}, false)

	clone := r.Clone().(*RunExternal)
	clone.InputFiles[0] = testVar(3, "other")
	if r.InputFiles[0] != in {
		t.Error("Clone() shares the InputFiles backing array with the original")
	}

	in2 := testVar(4, "in2")
	renamed := r.RenameVars(map[*dftype.Var]*dftype.Var{in: in2}, ReplaceVar).(*RunExternal)
	if renamed.InputFiles[0] != in2 {
		t.Errorf("RenameVars().InputFiles[0] = %v, want in2", renamed.InputFiles[0])
	}
	if r.InputFiles[0] != in {
		t.Error("RenameVars() mutated the original RunExternal's InputFiles")
	}
}
