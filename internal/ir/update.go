package ir

import (
	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/backend"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// UpdateOp covers the updateable family: UPDATE_MIN/UPDATE_INCR/
// UPDATE_SCALE apply a monotone update to an updateable cell in
// place; LATEST_VALUE snapshots an updateable's current value into a
// plain Local destination. This is an IR contract only -- no
// monotonicity proof or engine semantics are implemented here, just
// the shape the optimizer queries need to stay consistent with the
// rest of the instruction model.
type UpdateOp struct {
	Base
	Target *dftype.Var // the updateable for UPDATE_*; the Local snapshot destination for LATEST_VALUE
	Ins    []arg.Arg
}

func newUpdate(op Opcode, line int, target *dftype.Var, ins []arg.Arg) *UpdateOp {
	return &UpdateOp{Base: Base{OpCode: op, LineNo: line}, Target: target, Ins: ins}
}

func NewUpdateMin(line int, target *dftype.Var, val arg.Arg) *UpdateOp {
	return newUpdate(OpUpdateMin, line, target, []arg.Arg{val})
}
func NewUpdateIncr(line int, target *dftype.Var, val arg.Arg) *UpdateOp {
	return newUpdate(OpUpdateIncr, line, target, []arg.Arg{val})
}
func NewUpdateScale(line int, target *dftype.Var, val arg.Arg) *UpdateOp {
	return newUpdate(OpUpdateScale, line, target, []arg.Arg{val})
}

// NewLatestValue snapshots updateable's current value into dst.
func NewLatestValue(line int, dst, updateable *dftype.Var) *UpdateOp {
	return newUpdate(OpLatestValue, line, dst, []arg.Arg{arg.VarRef(updateable)})
}

func (u *UpdateOp) GetInputs() []arg.Arg      { return u.Ins }
func (u *UpdateOp) GetOutputs() []*dftype.Var { return []*dftype.Var{u.Target} }
func (u *UpdateOp) GetModifiedOutputs() []*dftype.Var { return u.GetOutputs() }

// GetReadOutputs: the in-place UPDATE_* variants read Target's prior
// value before folding in the update; LATEST_VALUE's Target is a
// fresh destination and is never read.
func (u *UpdateOp) GetReadOutputs(func(string, string) bool) []*dftype.Var {
	if u.OpCode == OpLatestValue {
		return nil
	}
	return []*dftype.Var{u.Target}
}

func (u *UpdateOp) GetInitialized() []Initialized {
	kind := Full
	if u.OpCode != OpLatestValue {
		kind = Partial
	}
	return []Initialized{{Var: u.Target, Kind: kind}}
}

// GetBlockingInputs: LATEST_VALUE never blocks on the updateable it
// reads -- it always returns whatever has been observed so far, by
// construction; the UPDATE_* variants block the same way any other
// turbine mutator does.
func (u *UpdateOp) GetBlockingInputs() []*dftype.Var {
	if u.OpCode == OpLatestValue {
		return nil
	}
	return blockingFromArgs(u.Ins)
}

func (u *UpdateOp) GetMode() backend.TaskMode { return backend.Local }

func (u *UpdateOp) HasSideEffects() bool  { return u.OpCode != OpLatestValue }
func (u *UpdateOp) CanChangeTiming() bool { return !u.HasSideEffects() }
func (u *UpdateOp) IsIdempotent() bool    { return u.OpCode == OpLatestValue }
func (u *UpdateOp) WritesAliasVar() bool  { return writesAlias(u.GetOutputs()) }
func (u *UpdateOp) WritesMappedVar() bool { return writesMapped(u.GetOutputs()) }

func (u *UpdateOp) ConstantFold(KnownConst) map[*dftype.Var]arg.Arg { return nil }
func (u *UpdateOp) ConstantReplace(KnownConst) Instruction          { return nil }
func (u *UpdateOp) CanMakeImmediate(func(*dftype.Var) bool, bool) *MakeImmRequest {
	return nil
}
func (u *UpdateOp) MakeImmediate([]*dftype.Var, []arg.Arg) MakeImmChange {
	panic("ir: MakeImmediate called on an UpdateOp")
}
func (u *UpdateOp) GetResults(ExistingResults) []ResultVal { return nil }

func (u *UpdateOp) GetIncrVars(func(string) bool) (reads, writes []*dftype.Var) {
	reads = arg.Vars(u.Ins)
	if u.OpCode != OpLatestValue {
		reads = append(reads, u.Target)
	}
	return reads, []*dftype.Var{u.Target}
}
func (u *UpdateOp) TryPiggyback(map[*dftype.Var]int, string) []*dftype.Var { return noPiggyback() }
func (u *UpdateOp) GetComponentAlias() (*dftype.Var, *dftype.Var, bool)    { return noComponentAlias() }

func (u *UpdateOp) Clone() Instruction {
	cl := *u
	cl.Ins = append([]arg.Arg{}, u.Ins...)
	return &cl
}

func (u *UpdateOp) RenameVars(renames map[*dftype.Var]*dftype.Var, mode RenameMode) Instruction {
	cl := u.Clone().(*UpdateOp)
	cl.Ins = renameArgs(u.Ins, renames)
	if nv, ok := renames[u.Target]; ok {
		cl.Target = nv
	}
	return cl
}
