// Package refbackend is a concrete, fully-wired implementation of
// internal/backend.Backend: a reference target for the walker used by
// tests and by the CLI's demo/run mode, the same role
// golang.org/x/tools/go/ssa/interp plays for go/ssa -- a real backend
// you can build and execute against without standing up the external
// code generator this module's Backend interface was designed to front.
//
// Builder (this file) turns Backend calls into a concrete ir.Function
// tree, tracking the current insertion block the way go/ssa/builder.go
// tracks Builder.currentBlock, except this IR nests structured control
// by parent pointer rather than branching a flat CFG.
package refbackend

import (
	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/backend"
	"github.com/dfcompiler/dfmid/internal/ctx"
	"github.com/dfcompiler/dfmid/internal/dftype"
	"github.com/dfcompiler/dfmid/internal/ir"
)

// openScope records one nested Start*/End* pair: where to resume
// inserting once the matching End call arrives.
type openScope struct {
	cont   *ir.Continuation
	parent *ir.Block
}

// Builder implements backend.Backend by constructing an ir.Function.
// Registry is optional: when set, FunctionCall consults it to decide
// whether a call names an App function that should lower to
// RUN_EXTERNAL instead of a plain CALL_*.
type Builder struct {
	Fn       *ir.Function
	Registry *ctx.Registry

	lookupEnabled bool
	writeEnabled  bool

	cur   *ir.Block
	stack []openScope
}

// NewBuilder creates a Builder appending to fn's (initially empty)
// root block.
func NewBuilder(fn *ir.Function, reg *ctx.Registry) *Builder {
	return &Builder{Fn: fn, Registry: reg, cur: fn.Root}
}

// SetCheckpointPolicy configures CheckpointLookupEnabled/
// CheckpointWriteEnabled's return values -- a reference-backend-only
// knob standing in for whatever deployment configuration would gate
// checkpointing in the real code generator.
func (b *Builder) SetCheckpointPolicy(lookupEnabled, writeEnabled bool) {
	b.lookupEnabled, b.writeEnabled = lookupEnabled, writeEnabled
}

func (b *Builder) add(in ir.Instruction) { b.cur.AddInstr(in) }

// Primitive data movement. Backend's Assign*/Retrieve* naming maps to
// this IR's Store*/Load* opcode family.
func (b *Builder) AssignScalar(dst *dftype.Var, src arg.Arg) { b.add(ir.NewStoreScalar(0, dst, src)) }
func (b *Builder) AssignFile(dst *dftype.Var, src arg.Arg)   { b.add(ir.NewStoreFile(0, dst, src)) }
func (b *Builder) AssignArray(dst *dftype.Var, src arg.Arg)  { b.add(ir.NewStoreArray(0, dst, src)) }
func (b *Builder) AssignBag(dst *dftype.Var, src arg.Arg)    { b.add(ir.NewStoreBag(0, dst, src)) }

func (b *Builder) RetrieveScalar(dst, src *dftype.Var) { b.add(ir.NewLoadScalar(0, dst, src)) }
func (b *Builder) RetrieveFile(dst, src *dftype.Var)   { b.add(ir.NewLoadFile(0, dst, src)) }
func (b *Builder) RetrieveArray(dst, src *dftype.Var)  { b.add(ir.NewLoadArray(0, dst, src)) }
func (b *Builder) RetrieveBag(dst, src *dftype.Var)    { b.add(ir.NewLoadBag(0, dst, src)) }
func (b *Builder) RetrieveRecursive(dst, src *dftype.Var) {
	b.add(ir.NewLoadRecursive(0, dst, src))
}
func (b *Builder) RetrieveRef(dst, src *dftype.Var) { b.add(ir.NewLoadRef(0, dst, src)) }
func (b *Builder) AssignRef(dst, src *dftype.Var)   { b.add(ir.NewStoreRef(0, dst, arg.VarRef(src))) }
func (b *Builder) CopyFile(dst, src *dftype.Var)    { b.add(ir.NewCopyFile(0, dst, src)) }

func (b *Builder) StoreRecursive(dst *dftype.Var, src arg.Arg) {
	b.add(ir.NewStoreRecursive(0, dst, src))
}

// Dereference.
func (b *Builder) DerefScalar(dst, src *dftype.Var) { b.add(ir.NewDerefScalar(0, dst, src)) }
func (b *Builder) DerefFile(dst, src *dftype.Var)   { b.add(ir.NewDerefFile(0, dst, src)) }

// Container ops.
func (b *Builder) ArrayLookupRefImm(dst, arr *dftype.Var, idx arg.Arg) {
	b.add(ir.NewArrayLookupRefImm(0, dst, arr, idx))
}
func (b *Builder) ArrayLookupFuture(dst, arr, idx *dftype.Var) {
	b.add(ir.NewArrayLookupFuture(0, dst, arr, idx))
}
func (b *Builder) ArrayInsertImm(arr *dftype.Var, idx, val arg.Arg) {
	b.add(ir.NewArrayInsertImm(0, arr, idx, val))
}
func (b *Builder) ArrayInsertFuture(arr, idx *dftype.Var, val arg.Arg) {
	b.add(ir.NewArrayInsertFuture(0, arr, idx, val))
}
func (b *Builder) ArrayBuild(dst *dftype.Var, keys, vals []arg.Arg) {
	b.add(ir.NewArrayBuild(0, dst, keys, vals))
}
func (b *Builder) BagInsert(bag *dftype.Var, val arg.Arg) { b.add(ir.NewBagInsert(0, bag, val)) }

// Struct ops.
func (b *Builder) StructLookup(dst, s *dftype.Var, field string) {
	b.add(ir.NewStructLookup(0, dst, s, field))
}
func (b *Builder) StructRefLookup(dst, s *dftype.Var, field string) {
	b.add(ir.NewStructRefLookup(0, dst, s, field))
}

// Operator ops.
func (b *Builder) LocalOp(sub string, out *dftype.Var, ins []arg.Arg) {
	b.add(ir.CreateLocal(0, ir.Sub(sub), out, ins))
}
func (b *Builder) AsyncOp(sub string, out *dftype.Var, ins []arg.Arg, props *backend.TaskProps) {
	b.add(ir.CreateAsync(0, ir.Sub(sub), out, ins, props))
}

// Updateable ops.
func (b *Builder) UpdateMin(target *dftype.Var, val arg.Arg)   { b.add(ir.NewUpdateMin(0, target, val)) }
func (b *Builder) UpdateIncr(target *dftype.Var, val arg.Arg)  { b.add(ir.NewUpdateIncr(0, target, val)) }
func (b *Builder) UpdateScale(target *dftype.Var, val arg.Arg) { b.add(ir.NewUpdateScale(0, target, val)) }
func (b *Builder) LatestValue(dst, updateable *dftype.Var) {
	b.add(ir.NewLatestValue(0, dst, updateable))
}

// Control: each Start opens a Continuation and descends into its Body;
// the matching End pops back to the block that was current before the
// Start call, per openScope's bookkeeping.
func (b *Builder) StartWaitStatement(name string, vars []*dftype.Var, mode backend.WaitMode, recursive, continueAfter bool, taskMode backend.TaskMode, props *backend.TaskProps) {
	c := ir.NewWaitContinuation(ir.WaitHeader{
		Name: name, Vars: vars, Mode: mode, Recursive: recursive,
		ContinueAfter: continueAfter, TaskMode: taskMode, Props: props,
	})
	b.openContinuation(c)
}
func (b *Builder) EndWaitStatement() { b.closeScope() }

func (b *Builder) StartForeachLoop(container, keyVar, valVar *dftype.Var) {
	c := ir.NewForeachContinuation(ir.ForeachHeader{Container: container, KeyVar: keyVar, ValVar: valVar})
	b.openContinuation(c)
}
func (b *Builder) EndForeachLoop() { b.closeScope() }

func (b *Builder) StartIfStatement(cond arg.Arg, hasElse bool) {
	c := ir.NewIfContinuation(ir.IfHeader{Cond: cond}, hasElse)
	b.openContinuation(c)
}
func (b *Builder) StartElseBlock() {
	top := b.stack[len(b.stack)-1]
	if top.cont.Else == nil {
		panic("refbackend: StartElseBlock with no else branch requested at StartIfStatement")
	}
	b.cur = top.cont.Else
}
func (b *Builder) EndIfStatement() { b.closeScope() }

func (b *Builder) openContinuation(c *ir.Continuation) {
	parent := b.cur
	parent.AddContinuation(c)
	b.stack = append(b.stack, openScope{cont: c, parent: parent})
	b.cur = c.Body
}

func (b *Builder) closeScope() {
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.cur = top.parent
}

// Function dispatch.
func (b *Builder) FunctionCall(name string, args []arg.Arg, outs []*dftype.Var, mode backend.TaskMode, props *backend.TaskProps) {
	if b.Registry != nil {
		if sig, ok := b.Registry.Lookup(name); ok && sig.Props.Has(ctx.App) {
			b.add(runExternalFor(name, args, outs, sig))
			return
		}
	}
	b.add(ir.NewCall(callOpcode(mode), 0, name, args, outs, props))
}

func callOpcode(mode backend.TaskMode) ir.Opcode {
	switch mode {
	case backend.Sync:
		return ir.OpCallSync
	case backend.Local:
		return ir.OpCallLocal
	case backend.LocalControl:
		return ir.OpCallLocalControl
	default:
		return ir.OpCallControl
	}
}

func (b *Builder) BuiltinFunctionCall(name string, args []arg.Arg, outs []*dftype.Var, props *backend.TaskProps) {
	call := ir.NewCall(ir.OpCallForeign, 0, name, args, outs, props)
	call.Foreign = &ir.ForeignInfo{Mode: backend.Local}
	b.add(call)
}
func (b *Builder) BuiltinLocalFunctionCall(name string, args []arg.Arg, outs []*dftype.Var) {
	call := ir.NewCall(ir.OpCallForeign, 0, name, args, outs, nil)
	call.Foreign = &ir.ForeignInfo{Mode: backend.Sync}
	b.add(call)
}
func (b *Builder) IntrinsicCall(name string, args []arg.Arg, outs []*dftype.Var) {
	call := ir.NewCall(ir.OpCallForeign, 0, name, args, outs, nil)
	call.Foreign = &ir.ForeignInfo{Mode: backend.Sync, Pure: true}
	b.add(call)
}

// runExternalFor builds the RUN_EXTERNAL instruction for a call to an
// App-tagged function: File-typed args become InputFiles, File-typed
// outs become OutputFiles, and the rest of args becomes argv.
func runExternalFor(name string, args []arg.Arg, outs []*dftype.Var, sig *ctx.FuncSig) *ir.RunExternal {
	var argv []arg.Arg
	var inputFiles []*dftype.Var
	for _, a := range args {
		if a.IsVar() && isFileVar(a.Var()) {
			inputFiles = append(inputFiles, a.Var())
			continue
		}
		argv = append(argv, a)
	}
	return ir.NewRunExternal(0, name, argv, nil, inputFiles, outs, sig.Deterministic)
}

func isFileVar(v *dftype.Var) bool {
	switch v.Type.Kind() {
	case dftype.KindPrimFuture, dftype.KindPrimValue:
		return v.Type.PrimKind() == dftype.File
	default:
		return false
	}
}

// Checkpointing.
func (b *Builder) CheckpointLookupEnabled() bool { return b.lookupEnabled }
func (b *Builder) CheckpointWriteEnabled() bool  { return b.writeEnabled }
func (b *Builder) LookupCheckpoint(existsOut, valOut, keyBlob *dftype.Var) {
	b.add(ir.NewLookupCheckpoint(0, existsOut, valOut, keyBlob))
}
func (b *Builder) WriteCheckpoint(keyBlob, valBlob *dftype.Var) {
	b.add(ir.NewWriteCheckpoint(0, keyBlob, valBlob))
}
func (b *Builder) PackValues(dst *dftype.Var, fnName string, vals []arg.Arg) {
	b.add(ir.NewPackValues(0, dst, fnName, vals))
}
func (b *Builder) UnpackValues(outs []*dftype.Var, blob *dftype.Var) {
	b.add(ir.NewUnpackValues(0, outs, blob))
}
func (b *Builder) FreeBlob(blob *dftype.Var) { b.add(ir.NewFreeBlob(0, blob)) }

var _ backend.Backend = (*Builder)(nil)
