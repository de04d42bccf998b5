package ir

import (
	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/backend"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// Sub is one arithmetic/logical/comparison operator a Builtin
// instruction applies.
type Sub string

const (
	PlusInt   Sub = "PLUS_INT"
	MinusInt  Sub = "MINUS_INT"
	MulInt    Sub = "MUL_INT"
	PlusFloat Sub = "PLUS_FLOAT"
	MinusFloat Sub = "MINUS_FLOAT"
	And       Sub = "AND"
	Or        Sub = "OR"
	Not       Sub = "NOT"
	LessEq    Sub = "LESS_EQ"
	GreaterEq Sub = "GREATER_EQ"
	CopyInt   Sub = "COPY_INT"
	CopyFloat Sub = "COPY_FLOAT"
	CopyBool  Sub = "COPY_BOOL"
	CopyString Sub = "COPY_STRING"
	CopyBlob  Sub = "COPY_BLOB"
	AssertOp  Sub = "ASSERT"
	AssertEqOp Sub = "ASSERT_EQ"
)

// commutativeSubs is consulted by canonicalizeInputs-style sorting;
// PLUS/MUL/AND/OR are commutative, subtraction and the
// directional comparisons are not (but LESS_EQ/GREATER_EQ are
// "flippable": each is rewritten in terms of the other so CSE only
// ever keys on one canonical direction).
var commutativeSubs = map[Sub]bool{
	PlusInt: true, PlusFloat: true, MulInt: true, And: true, Or: true,
}

var flippableSubs = map[Sub]Sub{
	LessEq: GreaterEq, GreaterEq: LessEq,
}

// Builtin is the instruction family covering LOCAL_OP (synchronous,
// on Local-allocated values) and ASYNC_OP (same operator over
// futures).
type Builtin struct {
	Base
	SubOp Sub
	Out   *dftype.Var
	Ins   []arg.Arg
	Props *backend.TaskProps // only meaningful for ASYNC_OP
}

// CreateLocal builds a LOCAL_OP instruction.
func CreateLocal(line int, sub Sub, out *dftype.Var, ins []arg.Arg) *Builtin {
	return &Builtin{Base: Base{OpCode: OpLocalOp, LineNo: line}, SubOp: sub, Out: out, Ins: ins}
}

// CreateAsync builds an ASYNC_OP instruction.
func CreateAsync(line int, sub Sub, out *dftype.Var, ins []arg.Arg, props *backend.TaskProps) *Builtin {
	return &Builtin{Base: Base{OpCode: OpAsyncOp, LineNo: line}, SubOp: sub, Out: out, Ins: ins, Props: props}
}

func (b *Builtin) GetInputs() []arg.Arg {
	out := append([]arg.Arg{}, b.Ins...)
	return append(out, taskPropsInputs(b.Props)...)
}
func (b *Builtin) GetOutputs() []*dftype.Var         { return []*dftype.Var{b.Out} }
func (b *Builtin) GetModifiedOutputs() []*dftype.Var { return b.GetOutputs() }
func (b *Builtin) GetReadOutputs(func(string, string) bool) []*dftype.Var { return nil }

func (b *Builtin) GetInitialized() []Initialized {
	return []Initialized{{Var: b.Out, Kind: Full}}
}

// GetBlockingInputs: LOCAL_OP never blocks (its inputs are already
// Local values); ASYNC_OP blocks on every primitive-future/ref input.
func (b *Builtin) GetBlockingInputs() []*dftype.Var {
	if b.OpCode == OpLocalOp {
		return nil
	}
	return blockingFromArgs(b.Ins)
}

func (b *Builtin) GetMode() backend.TaskMode {
	if b.OpCode == OpLocalOp {
		return backend.Sync
	}
	return backend.Local
}

func (b *Builtin) HasSideEffects() bool {
	return b.SubOp == AssertOp || b.SubOp == AssertEqOp
}
func (b *Builtin) CanChangeTiming() bool { return !b.HasSideEffects() }
func (b *Builtin) IsIdempotent() bool    { return !b.HasSideEffects() }
func (b *Builtin) WritesAliasVar() bool  { return writesAlias(b.GetOutputs()) }
func (b *Builtin) WritesMappedVar() bool { return writesMapped(b.GetOutputs()) }

// ConstantFold implements LOCAL_OP/ASYNC_OP constant
// folding, including ASSERT/ASSERT_EQ's compile-time checks that warn
// on provable failure rather than halting (the warning is surfaced by
// the caller via the Global.Warn channel, not from inside this pure
// query).
func (b *Builtin) ConstantFold(kc KnownConst) map[*dftype.Var]arg.Arg {
	vals := make([]arg.Arg, len(b.Ins))
	for i, in := range b.Ins {
		if in.IsConst() {
			vals[i] = in
			continue
		}
		v, ok := kc.Lookup(in.Var())
		if !ok {
			return nil
		}
		vals[i] = v
	}
	folded, ok := evalConst(b.SubOp, vals)
	if !ok {
		return nil
	}
	if (b.SubOp == AssertOp || b.SubOp == AssertEqOp) && !assertHolds(b.SubOp, vals) {
		// Provable failure: still folds to Void (the assertion is
		// elided at compile time either way) but the caller applying
		// this fold is expected to surface a warning -- see
		// AssertHolds' doc comment.
		return map[*dftype.Var]arg.Arg{b.Out: arg.VoidVal()}
	}
	return map[*dftype.Var]arg.Arg{b.Out: folded}
}

// AssertHolds reports whether a constant-folded ASSERT/ASSERT_EQ's
// condition is provably true, given already-resolved constant inputs.
// Callers applying ConstantFold to an ASSERT-family instruction should
// call this first and route a false result to the warning channel:
// warnings are emitted to the diagnostic channel but do not halt
// compilation.
func AssertHolds(sub Sub, vals []arg.Arg) bool { return assertHolds(sub, vals) }

func assertHolds(sub Sub, vals []arg.Arg) bool {
	switch sub {
	case AssertOp:
		return vals[0].BoolVal()
	case AssertEqOp:
		return vals[0].IntVal() == vals[1].IntVal()
	default:
		return true
	}
}

// ConstantReplace implements "Short-circuit replace": `x =
// a AND true` becomes a plain copy of a; similarly for OR with a known
// false.
func (b *Builtin) ConstantReplace(kc KnownConst) Instruction {
	if len(b.Ins) != 2 {
		return nil
	}
	for i, other := 0, 1; i < 2; i, other = i+1, i {
		in := b.Ins[i]
		if !in.IsVar() {
			continue
		}
		val, ok := kc.Lookup(in.Var())
		if !ok {
			continue
		}
		switch b.SubOp {
		case And:
			if val.IsConst() && val.ConstKind() == arg.BoolConst && val.BoolVal() {
				return copyInstr(b, b.Ins[other])
			}
			if val.IsConst() && val.ConstKind() == arg.BoolConst && !val.BoolVal() {
				return copyInstr(b, arg.Bool(false))
			}
		case Or:
			if val.IsConst() && val.ConstKind() == arg.BoolConst && !val.BoolVal() {
				return copyInstr(b, b.Ins[other])
			}
			if val.IsConst() && val.ConstKind() == arg.BoolConst && val.BoolVal() {
				return copyInstr(b, arg.Bool(true))
			}
		}
	}
	return nil
}

func copyInstr(b *Builtin, src arg.Arg) Instruction {
	sub := CopyBool
	if b.Out.Type.Kind() == dftype.KindPrimValue || b.Out.Type.Kind() == dftype.KindPrimFuture {
		switch b.Out.Type.PrimKind() {
		case dftype.Int:
			sub = CopyInt
		case dftype.Float:
			sub = CopyFloat
		case dftype.String:
			sub = CopyString
		case dftype.Blob:
			sub = CopyBlob
		}
	}
	if b.OpCode == OpLocalOp {
		return CreateLocal(b.LineNo, sub, b.Out, []arg.Arg{src})
	}
	return CreateAsync(b.LineNo, sub, b.Out, []arg.Arg{src}, b.Props)
}

// CanMakeImmediate implements the make-immediate transition:
// ASYNC_OP becomes LOCAL_OP once every future/ref input is closed.
func (b *Builtin) CanMakeImmediate(closed func(*dftype.Var) bool, waitForClose bool) *MakeImmRequest {
	if b.OpCode != OpAsyncOp {
		return nil
	}
	var toFetch []*dftype.Var
	for _, v := range blockingFromArgs(b.Ins) {
		if !closed(v) && !waitForClose {
			return nil
		}
		toFetch = append(toFetch, v)
	}
	return &MakeImmRequest{FetchInputs: toFetch, OutVars: []*dftype.Var{b.Out}}
}

func (b *Builtin) MakeImmediate(outVars []*dftype.Var, inValues []arg.Arg) MakeImmChange {
	fi := 0
	newIns := make([]arg.Arg, len(b.Ins))
	for i, in := range b.Ins {
		if in.IsVar() && (dftype.IsPrimFuture(in.Var().Type) || dftype.IsRef(in.Var().Type)) {
			newIns[i] = inValues[fi]
			fi++
			continue
		}
		newIns[i] = in
	}
	localOut := outVars[0]
	return MakeImmChange{Instrs: []Instruction{CreateLocal(b.LineNo, b.SubOp, localOut, newIns)}}
}

// GetResults publishes one ResultVal per pure Builtin application,
// keyed on a commutativity-sorted/flip-canonicalized input vector,
// plus the algebraic PLUS/MINUS inference when OPT_ALGEBRA is enabled
// by the caller's ExistingResults implementation.
func (b *Builtin) GetResults(existing ExistingResults) []ResultVal {
	if b.HasSideEffects() {
		return nil
	}
	if rv, ok := algebraicFold(b, existing); ok {
		return []ResultVal{rv}
	}
	op, ins := b.SubOp, b.Ins
	if flip, ok := flippableSubs[op]; ok && flip < op {
		op = flip
		ins = []arg.Arg{ins[1], ins[0]}
	}
	canon := canonicalizeInputs(ins, commutativeSubs[op])
	return []ResultVal{{Op: b.Op(), Inputs: append([]arg.Arg{arg.Str(string(op))}, canon...), LocVar: b.Out}}
}

// algebraicFold implements algebraic inference: for
// integer PLUS/MINUS, fold x = y +/- c1 with a known y = z +/- c2 into
// x = z +/- (c1 +/- c2). Only fires when existing.AlgebraEnabled();
// the variable must appear on exactly one side, and MINUS with a
// variable second operand is never canonicalized this way -- it is an
// explicit carve-out from the general flip rule.
func algebraicFold(b *Builtin, existing ExistingResults) (ResultVal, bool) {
	if existing == nil || !existing.AlgebraEnabled() {
		return ResultVal{}, false
	}
	if b.SubOp != PlusInt && b.SubOp != MinusInt {
		return ResultVal{}, false
	}
	if len(b.Ins) != 2 || !b.Ins[1].IsConst() {
		return ResultVal{}, false
	}
	y := b.Ins[0]
	c1 := b.Ins[1].IntVal()
	if b.SubOp == MinusInt {
		c1 = -c1
	}
	if !y.IsVar() {
		return ResultVal{}, false
	}
	def, ok := existing.DefinitionOf(y.Var())
	if !ok || len(def.Inputs) < 3 {
		return ResultVal{}, false
	}
	// def.Inputs is [opName, z, c2] per the encoding below. Plain
	// PLUS_INT definitions may have been commutative-sorted by the
	// general GetResults path, in which case z/c2 could be swapped;
	// callers populating the CSE map for algebra purposes should keep
	// PLUS_INT/MINUS_INT definitions in declaration order rather than
	// sorted, since algebraic inference needs the positional (var,
	// const) split, not just a CSE key.
	if def.Inputs[0].StringVal() != string(PlusInt) && def.Inputs[0].StringVal() != string(MinusInt) {
		return ResultVal{}, false
	}
	z := def.Inputs[1]
	if !def.Inputs[2].IsConst() {
		return ResultVal{}, false
	}
	c2 := def.Inputs[2].IntVal()
	if def.Inputs[0].StringVal() == string(MinusInt) {
		c2 = -c2
	}
	return ResultVal{Op: b.Op(), Inputs: []arg.Arg{arg.Str(string(PlusInt)), z, arg.Int(c1 + c2)}, LocVar: b.Out}, true
}

func (b *Builtin) GetIncrVars(func(string) bool) (reads, writes []*dftype.Var) {
	return arg.Vars(b.Ins), []*dftype.Var{b.Out}
}
func (b *Builtin) TryPiggyback(map[*dftype.Var]int, string) []*dftype.Var { return noPiggyback() }
func (b *Builtin) GetComponentAlias() (*dftype.Var, *dftype.Var, bool)    { return noComponentAlias() }

func (b *Builtin) Clone() Instruction {
	cl := *b
	cl.Ins = append([]arg.Arg{}, b.Ins...)
	return &cl
}

func (b *Builtin) RenameVars(renames map[*dftype.Var]*dftype.Var, mode RenameMode) Instruction {
	cl := b.Clone().(*Builtin)
	cl.Ins = renameArgs(b.Ins, renames)
	if nv, ok := renames[b.Out]; ok {
		cl.Out = nv
	}
	return cl
}
