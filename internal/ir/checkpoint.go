package ir

import (
	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/backend"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// CheckpointOp covers the checkpoint cache primitives a CHECKPOINTED
// call lowers into: LOOKUP_CHECKPOINT/WRITE_CHECKPOINT talk to the
// external cache, PACK_VALUES/UNPACK_VALUES convert an argument list
// to and from its wire blob, and FREE_BLOB releases one. Like
// UpdateOp, this is an IR contract only -- the cache's actual
// semantics live in internal/checkpoint.
type CheckpointOp struct {
	Base
	Outs   []*dftype.Var
	Ins    []arg.Arg
	FnName string // set only for PACK_VALUES, namespacing the packed key/value
}

func newCheckpoint(op Opcode, line int, outs []*dftype.Var, ins []arg.Arg) *CheckpointOp {
	return &CheckpointOp{Base: Base{OpCode: op, LineNo: line}, Outs: outs, Ins: ins}
}

func NewLookupCheckpoint(line int, existsOut, valOut, keyBlob *dftype.Var) *CheckpointOp {
	return newCheckpoint(OpLookupCheckpoint, line, []*dftype.Var{existsOut, valOut}, []arg.Arg{arg.VarRef(keyBlob)})
}

func NewWriteCheckpoint(line int, keyBlob, valBlob *dftype.Var) *CheckpointOp {
	return newCheckpoint(OpWriteCheckpoint, line, nil, []arg.Arg{arg.VarRef(keyBlob), arg.VarRef(valBlob)})
}

func NewPackValues(line int, dst *dftype.Var, fnName string, vals []arg.Arg) *CheckpointOp {
	c := newCheckpoint(OpPackValues, line, []*dftype.Var{dst}, vals)
	c.FnName = fnName
	return c
}

func NewUnpackValues(line int, outs []*dftype.Var, blob *dftype.Var) *CheckpointOp {
	return newCheckpoint(OpUnpackValues, line, outs, []arg.Arg{arg.VarRef(blob)})
}

func NewFreeBlob(line int, blob *dftype.Var) *CheckpointOp {
	return newCheckpoint(OpFreeBlob, line, nil, []arg.Arg{arg.VarRef(blob)})
}

var checkpointSideEffecting = map[Opcode]bool{
	OpLookupCheckpoint: true, OpWriteCheckpoint: true, OpFreeBlob: true,
}

func (c *CheckpointOp) GetInputs() []arg.Arg             { return c.Ins }
func (c *CheckpointOp) GetOutputs() []*dftype.Var         { return c.Outs }
func (c *CheckpointOp) GetModifiedOutputs() []*dftype.Var { return c.Outs }
func (c *CheckpointOp) GetReadOutputs(func(string, string) bool) []*dftype.Var { return nil }

func (c *CheckpointOp) GetInitialized() []Initialized {
	out := make([]Initialized, len(c.Outs))
	for i, o := range c.Outs {
		out[i] = Initialized{Var: o, Kind: Full}
	}
	return out
}

func (c *CheckpointOp) GetBlockingInputs() []*dftype.Var { return blockingFromArgs(c.Ins) }
func (c *CheckpointOp) GetMode() backend.TaskMode        { return backend.Local }

func (c *CheckpointOp) HasSideEffects() bool  { return checkpointSideEffecting[c.OpCode] }
func (c *CheckpointOp) CanChangeTiming() bool { return !c.HasSideEffects() }
func (c *CheckpointOp) IsIdempotent() bool    { return !c.HasSideEffects() }
func (c *CheckpointOp) WritesAliasVar() bool  { return writesAlias(c.Outs) }
func (c *CheckpointOp) WritesMappedVar() bool { return writesMapped(c.Outs) }

func (c *CheckpointOp) ConstantFold(KnownConst) map[*dftype.Var]arg.Arg { return nil }
func (c *CheckpointOp) ConstantReplace(KnownConst) Instruction          { return nil }
func (c *CheckpointOp) CanMakeImmediate(func(*dftype.Var) bool, bool) *MakeImmRequest {
	return nil
}
func (c *CheckpointOp) MakeImmediate([]*dftype.Var, []arg.Arg) MakeImmChange {
	panic("ir: MakeImmediate called on a CheckpointOp")
}

// GetResults: no CSE across checkpoint primitives -- the cache is
// external, mutable state PACK_VALUES/UNPACK_VALUES don't participate in.
func (c *CheckpointOp) GetResults(ExistingResults) []ResultVal { return nil }

func (c *CheckpointOp) GetIncrVars(func(string) bool) (reads, writes []*dftype.Var) {
	return arg.Vars(c.Ins), c.Outs
}
func (c *CheckpointOp) TryPiggyback(map[*dftype.Var]int, string) []*dftype.Var { return noPiggyback() }
func (c *CheckpointOp) GetComponentAlias() (*dftype.Var, *dftype.Var, bool)    { return noComponentAlias() }

func (c *CheckpointOp) Clone() Instruction {
	cl := *c
	cl.Outs = append([]*dftype.Var{}, c.Outs...)
	cl.Ins = append([]arg.Arg{}, c.Ins...)
	return &cl
}

func (c *CheckpointOp) RenameVars(renames map[*dftype.Var]*dftype.Var, mode RenameMode) Instruction {
	cl := c.Clone().(*CheckpointOp)
	cl.Ins = renameArgs(c.Ins, renames)
	cl.Outs = renameVarSlice(c.Outs, renames)
	return cl
}
