package ir

import (
	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/backend"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// TurbineOp is the shared shape behind every thin data-movement
// primitive in the "turbine ops" family (STORE_*, LOAD_*, DEREF_*,
// ARRAY_LOOKUP_*, ARRAY_INSERT_*, STRUCT_LOOKUP, COPY_REF,
// GET_FILENAME*, SET_FILENAME_VAL, CHOOSE_TMP_FILENAME,
// INIT_LOCAL_OUTPUT_FILE): each has fixed arity, and a getResults
// keyed on the canonical (opcode, inputs) pair so CSE can eliminate
// redundant loads/stores.
type TurbineOp struct {
	Base
	Out   *dftype.Var // nil for ops with no dedicated output (rare in this family)
	Ins   []arg.Arg
	Field string // struct/array-build field or key path, when applicable
}

func newTurbine(op Opcode, line int, out *dftype.Var, ins []arg.Arg) *TurbineOp {
	return &TurbineOp{Base: Base{OpCode: op, LineNo: line}, Out: out, Ins: ins}
}

// Constructors, one per concrete opcode, named to match the
// corresponding Backend method.

func NewStoreScalar(line int, dst *dftype.Var, src arg.Arg) *TurbineOp {
	return newTurbine(OpStoreScalar, line, dst, []arg.Arg{src})
}
func NewStoreFile(line int, dst *dftype.Var, src arg.Arg) *TurbineOp {
	return newTurbine(OpStoreFile, line, dst, []arg.Arg{src})
}
func NewStoreArray(line int, dst *dftype.Var, src arg.Arg) *TurbineOp {
	return newTurbine(OpStoreArray, line, dst, []arg.Arg{src})
}
func NewStoreBag(line int, dst *dftype.Var, src arg.Arg) *TurbineOp {
	return newTurbine(OpStoreBag, line, dst, []arg.Arg{src})
}
func NewStoreRef(line int, dst *dftype.Var, src arg.Arg) *TurbineOp {
	return newTurbine(OpStoreRef, line, dst, []arg.Arg{src})
}
func NewLoadScalar(line int, dst, src *dftype.Var) *TurbineOp {
	return newTurbine(OpLoadScalar, line, dst, []arg.Arg{arg.VarRef(src)})
}
func NewLoadFile(line int, dst, src *dftype.Var) *TurbineOp {
	return newTurbine(OpLoadFile, line, dst, []arg.Arg{arg.VarRef(src)})
}
func NewLoadArray(line int, dst, src *dftype.Var) *TurbineOp {
	return newTurbine(OpLoadArray, line, dst, []arg.Arg{arg.VarRef(src)})
}
func NewLoadBag(line int, dst, src *dftype.Var) *TurbineOp {
	return newTurbine(OpLoadBag, line, dst, []arg.Arg{arg.VarRef(src)})
}
func NewLoadRef(line int, dst, src *dftype.Var) *TurbineOp {
	return newTurbine(OpLoadRef, line, dst, []arg.Arg{arg.VarRef(src)})
}

// NewLoadRecursive is the explicit recursive variant of
// retrieveArray/retrieveBag; the rest of this family is non-recursive.
func NewLoadRecursive(line int, dst, src *dftype.Var) *TurbineOp {
	return newTurbine(OpLoadRecursive, line, dst, []arg.Arg{arg.VarRef(src)})
}
// NewStoreRecursive is the store-side counterpart of NewLoadRecursive:
// a deep copy of src's current value into dst, rather than a single
// STORE_SCALAR/ARRAY/BAG's shallow one.
func NewStoreRecursive(line int, dst *dftype.Var, src arg.Arg) *TurbineOp {
	return newTurbine(OpStoreRecursive, line, dst, []arg.Arg{src})
}
func NewDerefScalar(line int, dst, src *dftype.Var) *TurbineOp {
	return newTurbine(OpDerefScalar, line, dst, []arg.Arg{arg.VarRef(src)})
}
func NewDerefFile(line int, dst, src *dftype.Var) *TurbineOp {
	return newTurbine(OpDerefFile, line, dst, []arg.Arg{arg.VarRef(src)})
}
func NewArrayLookupRefImm(line int, dst, arr *dftype.Var, idx arg.Arg) *TurbineOp {
	return newTurbine(OpArrayLookupRefImm, line, dst, []arg.Arg{arg.VarRef(arr), idx})
}
func NewArrayLookupFuture(line int, dst, arr, idx *dftype.Var) *TurbineOp {
	return newTurbine(OpArrayLookupFuture, line, dst, []arg.Arg{arg.VarRef(arr), arg.VarRef(idx)})
}

// NewArrayInsertImm/Future mutate the array itself, so the array
// variable is both an input (prior contents) and the sole output.
func NewArrayInsertImm(line int, arr *dftype.Var, idx, val arg.Arg) *TurbineOp {
	return newTurbine(OpArrayInsertImm, line, arr, []arg.Arg{idx, val})
}
func NewArrayInsertFuture(line int, arr, idx *dftype.Var, val arg.Arg) *TurbineOp {
	return newTurbine(OpArrayInsertFuture, line, arr, []arg.Arg{arg.VarRef(idx), val})
}
func NewArrayBuild(line int, dst *dftype.Var, keys, vals []arg.Arg) *TurbineOp {
	ins := make([]arg.Arg, 0, len(keys)+len(vals))
	ins = append(ins, keys...)
	ins = append(ins, vals...)
	return newTurbine(OpArrayBuild, line, dst, ins)
}
func NewBagInsert(line int, bag *dftype.Var, val arg.Arg) *TurbineOp {
	return newTurbine(OpBagInsert, line, bag, []arg.Arg{val})
}
func NewStructLookup(line int, dst, s *dftype.Var, field string) *TurbineOp {
	t := newTurbine(OpStructLookup, line, dst, []arg.Arg{arg.VarRef(s)})
	t.Field = field
	return t
}
func NewStructRefLookup(line int, dst, s *dftype.Var, field string) *TurbineOp {
	t := newTurbine(OpStructRefLookup, line, dst, []arg.Arg{arg.VarRef(s)})
	t.Field = field
	return t
}
func NewCopyRef(line int, dst, src *dftype.Var) *TurbineOp {
	return newTurbine(OpCopyRef, line, dst, []arg.Arg{arg.VarRef(src)})
}
func NewCopyFile(line int, dst, src *dftype.Var) *TurbineOp {
	return newTurbine(OpCopyFile, line, dst, []arg.Arg{arg.VarRef(src)})
}
func NewGetFilename(line int, dst, file *dftype.Var) *TurbineOp {
	return newTurbine(OpGetFilename, line, dst, []arg.Arg{arg.VarRef(file)})
}
func NewGetFilenameVal(line int, dst, file *dftype.Var) *TurbineOp {
	return newTurbine(OpGetFilenameVal, line, dst, []arg.Arg{arg.VarRef(file)})
}
func NewSetFilenameVal(line int, file *dftype.Var, filename arg.Arg) *TurbineOp {
	return newTurbine(OpSetFilenameVal, line, file, []arg.Arg{filename})
}

// NewChooseTmpFilename has a side effect (it allocates a fresh unique
// filename); it is not idempotent, unlike most of this family.
func NewChooseTmpFilename(line int, dst *dftype.Var) *TurbineOp {
	return newTurbine(OpChooseTmpFilename, line, dst, nil)
}
func NewInitLocalOutputFile(line int, dst, mapping *dftype.Var) *TurbineOp {
	return newTurbine(OpInitLocalOutputFile, line, dst, []arg.Arg{arg.VarRef(mapping)})
}

var mutatesInPlace = map[Opcode]bool{
	OpArrayInsertImm: true, OpArrayInsertFuture: true, OpBagInsert: true, OpSetFilenameVal: true,
}

func (t *TurbineOp) GetInputs() []arg.Arg { return t.Ins }

func (t *TurbineOp) GetOutputs() []*dftype.Var {
	if t.Out == nil {
		return nil
	}
	return []*dftype.Var{t.Out}
}
func (t *TurbineOp) GetModifiedOutputs() []*dftype.Var { return t.GetOutputs() }

// GetReadOutputs: the in-place mutators (array/bag insert, filename
// set) read their output's prior value before writing it.
func (t *TurbineOp) GetReadOutputs(func(string, string) bool) []*dftype.Var {
	if t.Out != nil && mutatesInPlace[t.OpCode] {
		return []*dftype.Var{t.Out}
	}
	return nil
}

func (t *TurbineOp) GetInitialized() []Initialized {
	if t.Out == nil {
		return nil
	}
	kind := Full
	if mutatesInPlace[t.OpCode] {
		kind = Partial
	}
	return []Initialized{{Var: t.Out, Kind: kind}}
}

func (t *TurbineOp) GetBlockingInputs() []*dftype.Var { return blockingFromArgs(t.Ins) }
func (t *TurbineOp) GetMode() backend.TaskMode        { return backend.Local }

// HasSideEffects: only the filename-allocating and in-place mutating
// ops are side-effecting; plain loads/derefs/lookups are pure.
func (t *TurbineOp) HasSideEffects() bool {
	return t.OpCode == OpChooseTmpFilename || mutatesInPlace[t.OpCode]
}
func (t *TurbineOp) CanChangeTiming() bool { return !t.HasSideEffects() }
func (t *TurbineOp) IsIdempotent() bool    { return t.OpCode != OpChooseTmpFilename }

func (t *TurbineOp) WritesAliasVar() bool  { return writesAlias(t.GetOutputs()) }
func (t *TurbineOp) WritesMappedVar() bool { return writesMapped(t.GetOutputs()) }

func (t *TurbineOp) ConstantFold(KnownConst) map[*dftype.Var]arg.Arg { return nil }
func (t *TurbineOp) ConstantReplace(KnownConst) Instruction          { return nil }
func (t *TurbineOp) CanMakeImmediate(func(*dftype.Var) bool, bool) *MakeImmRequest {
	return nil
}
func (t *TurbineOp) MakeImmediate([]*dftype.Var, []arg.Arg) MakeImmChange {
	panic("ir: MakeImmediate called on a TurbineOp")
}

// GetResults publishes a computed value keyed on (opcode, inputs[,
// field]) for every pure member of this family, letting CSE eliminate
// redundant loads/stores/lookups.
func (t *TurbineOp) GetResults(existing ExistingResults) []ResultVal {
	if t.HasSideEffects() || t.Out == nil {
		return nil
	}
	ins := t.Ins
	if t.Field != "" {
		ins = append(append([]arg.Arg{}, ins...), arg.Str(t.Field))
	}
	if t.OpCode == OpCopyRef && len(t.Ins) == 1 {
		return []ResultVal{copyResultVal(t.Op(), ins, t.Out, t.Ins[0], existing)}
	}
	return []ResultVal{{Op: t.Op(), Inputs: ins, LocVar: t.Out}}
}

func (t *TurbineOp) GetIncrVars(func(string) bool) (reads, writes []*dftype.Var) {
	reads = arg.Vars(t.Ins)
	if mutatesInPlace[t.OpCode] && t.Out != nil {
		reads = append(reads, t.Out)
	}
	return reads, t.GetOutputs()
}
func (t *TurbineOp) TryPiggyback(map[*dftype.Var]int, string) []*dftype.Var { return noPiggyback() }

// GetComponentAlias: struct/array ref lookups declare their output as
// an alias into the container they indexed.
func (t *TurbineOp) GetComponentAlias() (*dftype.Var, *dftype.Var, bool) {
	switch t.OpCode {
	case OpStructRefLookup, OpArrayLookupRefImm:
		if len(t.Ins) > 0 && t.Ins[0].IsVar() && t.Out != nil {
			return t.Ins[0].Var(), t.Out, true
		}
	}
	return noComponentAlias()
}

func (t *TurbineOp) Clone() Instruction {
	cl := *t
	cl.Ins = append([]arg.Arg{}, t.Ins...)
	return &cl
}

func (t *TurbineOp) RenameVars(renames map[*dftype.Var]*dftype.Var, mode RenameMode) Instruction {
	cl := t.Clone().(*TurbineOp)
	cl.Ins = renameArgs(t.Ins, renames)
	if t.Out != nil {
		if nv, ok := renames[t.Out]; ok {
			cl.Out = nv
		}
	}
	return cl
}
