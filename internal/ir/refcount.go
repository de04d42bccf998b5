package ir

import (
	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/backend"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// RefcountOp is the concrete realization of a refcount delta the
// refcount pass decided could not be piggybacked onto any neighboring
// instruction: INCR_READ, DECR_READ, INCR_WRITE, DECR_WRITE.
type RefcountOp struct {
	Base
	Target *dftype.Var
	Amount int
}

func newRefcountOp(op Opcode, line int, target *dftype.Var, amount int) *RefcountOp {
	return &RefcountOp{Base: Base{OpCode: op, LineNo: line}, Target: target, Amount: amount}
}

func NewIncrRead(line int, target *dftype.Var, amount int) *RefcountOp {
	return newRefcountOp(OpIncrRead, line, target, amount)
}
func NewDecrRead(line int, target *dftype.Var, amount int) *RefcountOp {
	return newRefcountOp(OpDecrRead, line, target, amount)
}
func NewIncrWrite(line int, target *dftype.Var, amount int) *RefcountOp {
	return newRefcountOp(OpIncrWrite, line, target, amount)
}
func NewDecrWrite(line int, target *dftype.Var, amount int) *RefcountOp {
	return newRefcountOp(OpDecrWrite, line, target, amount)
}

func (r *RefcountOp) GetInputs() []arg.Arg                                    { return nil }
func (r *RefcountOp) GetOutputs() []*dftype.Var                               { return nil }
func (r *RefcountOp) GetModifiedOutputs() []*dftype.Var                      { return nil }
func (r *RefcountOp) GetReadOutputs(func(string, string) bool) []*dftype.Var { return nil }
func (r *RefcountOp) GetInitialized() []Initialized                          { return nil }
func (r *RefcountOp) GetBlockingInputs() []*dftype.Var                       { return nil }
func (r *RefcountOp) GetMode() backend.TaskMode                              { return backend.Sync }
func (r *RefcountOp) HasSideEffects() bool                                   { return true }
func (r *RefcountOp) CanChangeTiming() bool                                  { return false }
func (r *RefcountOp) IsIdempotent() bool                                     { return false }
func (r *RefcountOp) WritesAliasVar() bool                                   { return false }
func (r *RefcountOp) WritesMappedVar() bool                                  { return false }

func (r *RefcountOp) ConstantFold(KnownConst) map[*dftype.Var]arg.Arg { return nil }
func (r *RefcountOp) ConstantReplace(KnownConst) Instruction          { return nil }
func (r *RefcountOp) CanMakeImmediate(func(*dftype.Var) bool, bool) *MakeImmRequest {
	return nil
}
func (r *RefcountOp) MakeImmediate([]*dftype.Var, []arg.Arg) MakeImmChange {
	panic("ir: MakeImmediate called on a RefcountOp")
}
func (r *RefcountOp) GetResults(ExistingResults) []ResultVal { return nil }

// GetIncrVars: a RefcountOp is the output of the refcount pass, not an
// input to it -- it claims no further deltas of its own.
func (r *RefcountOp) GetIncrVars(func(string) bool) (reads, writes []*dftype.Var) {
	return nil, nil
}

// TryPiggyback: an already-materialized RefcountOp never absorbs
// another one; piggybacking only happens onto the instruction that
// produced or consumed the variable in the first place.
func (r *RefcountOp) TryPiggyback(map[*dftype.Var]int, string) []*dftype.Var {
	return noPiggyback()
}
func (r *RefcountOp) GetComponentAlias() (*dftype.Var, *dftype.Var, bool) { return noComponentAlias() }
func (r *RefcountOp) Clone() Instruction                                  { cl := *r; return &cl }
func (r *RefcountOp) RenameVars(renames map[*dftype.Var]*dftype.Var, mode RenameMode) Instruction {
	cl := *r
	if nv, ok := renames[r.Target]; ok {
		cl.Target = nv
	}
	return &cl
}

// Deltas is the net (reads, writes) refcount change a sequence of
// instructions claims on each variable, accumulated with GetIncrVars.
type Deltas struct {
	Reads  map[*dftype.Var]int
	Writes map[*dftype.Var]int
}

func newDeltas() *Deltas {
	return &Deltas{Reads: map[*dftype.Var]int{}, Writes: map[*dftype.Var]int{}}
}

// ComputeDeltas walks instrs and accumulates the refcount claims each
// one makes via GetIncrVars.
func ComputeDeltas(instrs []Instruction, hasProp func(string) bool) *Deltas {
	d := newDeltas()
	for _, in := range instrs {
		reads, writes := in.GetIncrVars(hasProp)
		for _, v := range reads {
			d.Reads[v]++
		}
		for _, v := range writes {
			d.Writes[v]++
		}
	}
	return d
}

// InsertRefcountOps lowers a computed Deltas into a concrete
// instruction stream: every instruction gets first offer to
// TryPiggyback the outstanding counters for the variables it already
// touches; whatever remains after the full pass is appended as
// explicit RefcountOp instructions at the end of the block.
func InsertRefcountOps(instrs []Instruction, d *Deltas, line int) []Instruction {
	remaining := map[*dftype.Var]int{}
	for v, n := range d.Reads {
		remaining[v] = n
	}
	out := make([]Instruction, 0, len(instrs))
	for _, in := range instrs {
		accepted := in.TryPiggyback(remaining, "read")
		for _, v := range accepted {
			remaining[v]--
			if remaining[v] <= 0 {
				delete(remaining, v)
			}
		}
		out = append(out, in)
	}
	for v, n := range remaining {
		if n > 0 {
			out = append(out, NewIncrRead(line, v, n))
		}
	}
	writeRemaining := map[*dftype.Var]int{}
	for v, n := range d.Writes {
		writeRemaining[v] = n
	}
	for _, in := range out {
		accepted := in.TryPiggyback(writeRemaining, "write")
		for _, v := range accepted {
			writeRemaining[v]--
			if writeRemaining[v] <= 0 {
				delete(writeRemaining, v)
			}
		}
	}
	for v, n := range writeRemaining {
		if n > 0 {
			out = append(out, NewIncrWrite(line, v, n))
		}
	}
	return out
}
