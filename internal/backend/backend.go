// Package backend defines the one-way channel from the expression
// walker to the emitter: the abstract contract the
// lowering walker targets. The walker never constructs textual output
// itself; it only calls Backend methods. internal/refbackend provides
// a concrete, test-only implementation; the real code generator is an
// external collaborator out of scope for this module.
//
// Grounded on go/ssa/builder.go's Builder methods (emit, addEdge, ...)
// being the thing the walker calls into, generalized from "emit an SSA
// instruction" to "emit a turbine/dataflow operation."
package backend

import (
	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// WaitMode distinguishes how a wait statement behaves once its
// watched variables close.
type WaitMode int

const (
	// WaitOnly suspends until the watched variables are closed and
	// produces no task body of its own.
	WaitOnly WaitMode = iota
)

// TaskMode is the execution locality a spawned task runs under.
type TaskMode int

const (
	Sync TaskMode = iota
	Local
	LocalControl
	Control
)

func (m TaskMode) String() string {
	switch m {
	case Sync:
		return "SYNC"
	case Local:
		return "LOCAL"
	case LocalControl:
		return "LOCAL_CONTROL"
	case Control:
		return "CONTROL"
	default:
		return "?"
	}
}

// TaskProps carries the optional per-call annotations (priority,
// parallelism, location) a function call may specify.
type TaskProps struct {
	Priority    *arg.Arg
	Parallelism *arg.Arg
	Location    *arg.Arg
}

// Backend is the full set of emission operations the walker requires.
type Backend interface {
	// Primitive data movement.
	AssignScalar(dst *dftype.Var, src arg.Arg)
	AssignFile(dst *dftype.Var, src arg.Arg)
	AssignArray(dst *dftype.Var, src arg.Arg)
	AssignBag(dst *dftype.Var, src arg.Arg)
	RetrieveScalar(dst *dftype.Var, src *dftype.Var)
	RetrieveFile(dst *dftype.Var, src *dftype.Var)
	RetrieveArray(dst *dftype.Var, src *dftype.Var)
	RetrieveBag(dst *dftype.Var, src *dftype.Var)
	RetrieveRecursive(dst *dftype.Var, src *dftype.Var)
	RetrieveRef(dst *dftype.Var, src *dftype.Var)
	AssignRef(dst *dftype.Var, src *dftype.Var)
	CopyFile(dst *dftype.Var, src *dftype.Var)

	// Dereference.
	DerefScalar(dst *dftype.Var, src *dftype.Var)
	DerefFile(dst *dftype.Var, src *dftype.Var)

	// Container ops.
	ArrayLookupRefImm(dst *dftype.Var, arr *dftype.Var, idx arg.Arg)
	ArrayLookupFuture(dst *dftype.Var, arr *dftype.Var, idx *dftype.Var)
	ArrayInsertImm(arr *dftype.Var, idx arg.Arg, val arg.Arg)
	ArrayInsertFuture(arr *dftype.Var, idx *dftype.Var, val arg.Arg)
	ArrayBuild(dst *dftype.Var, keys []arg.Arg, vals []arg.Arg)
	BagInsert(bag *dftype.Var, val arg.Arg)

	// Struct ops.
	StructLookup(dst *dftype.Var, s *dftype.Var, field string)
	StructRefLookup(dst *dftype.Var, s *dftype.Var, field string)

	// Operator ops.
	LocalOp(sub string, out *dftype.Var, ins []arg.Arg)
	AsyncOp(sub string, out *dftype.Var, ins []arg.Arg, props *TaskProps)

	// Updateable ops: monotone in-place update, and a snapshot read of
	// an updateable's current value into a plain Local.
	UpdateMin(target *dftype.Var, val arg.Arg)
	UpdateIncr(target *dftype.Var, val arg.Arg)
	UpdateScale(target *dftype.Var, val arg.Arg)
	LatestValue(dst *dftype.Var, updateable *dftype.Var)

	// Control.
	StartWaitStatement(name string, vars []*dftype.Var, mode WaitMode, recursive bool, continueAfter bool, taskMode TaskMode, props *TaskProps)
	EndWaitStatement()
	StartForeachLoop(container *dftype.Var, keyVar, valVar *dftype.Var)
	EndForeachLoop()
	StartIfStatement(cond arg.Arg, hasElse bool)
	StartElseBlock()
	EndIfStatement()

	// Function dispatch.
	FunctionCall(name string, args []arg.Arg, outs []*dftype.Var, mode TaskMode, props *TaskProps)
	BuiltinFunctionCall(name string, args []arg.Arg, outs []*dftype.Var, props *TaskProps)
	BuiltinLocalFunctionCall(name string, args []arg.Arg, outs []*dftype.Var)
	IntrinsicCall(name string, args []arg.Arg, outs []*dftype.Var)

	// Checkpointing.
	CheckpointLookupEnabled() bool
	CheckpointWriteEnabled() bool
	LookupCheckpoint(existsOut, valOut *dftype.Var, keyBlob *dftype.Var)
	WriteCheckpoint(keyBlob, valBlob *dftype.Var)
	PackValues(dst *dftype.Var, fnName string, vals []arg.Arg)
	UnpackValues(outs []*dftype.Var, blob *dftype.Var)
	FreeBlob(blob *dftype.Var)
	StoreRecursive(dst *dftype.Var, src arg.Arg)
}
