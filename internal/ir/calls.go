package ir

import (
	"sort"

	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/backend"
	"github.com/dfcompiler/dfmid/internal/ctx"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// ForeignInfo is the per-foreign-function metadata the optimizer
// consults when folding CALL_FOREIGN instructions: whether
// the call is pure (safe to CSE), a copy (output equals an input
// transitively), and which special-result rule (if any) applies.
type ForeignInfo struct {
	Pure       bool
	IsCopy     bool // e.g. "copy", or min/max called with identical inputs
	Special    ctx.SpecialForeign
	Mode       backend.TaskMode
	Commutative bool
}

// Call is the instruction family covering CALL_FOREIGN,
// CALL_CONTROL, CALL_SYNC, CALL_LOCAL and CALL_LOCAL_CONTROL: a
// function invocation whose inputs are argument values and whose
// outputs are the callee's results. The family is distinguished by
// Op (one of OpCallForeign/.../OpCallLocalControl); the blocking-input
// and refcount rules differ per variant, so
// GetBlockingInputs/GetIncrVars branch on Op.
type Call struct {
	Base
	Name          string
	Args          []arg.Arg
	Outs          []*dftype.Var
	Props         *backend.TaskProps
	Foreign       *ForeignInfo // non-nil only for OpCallForeign
	WriteOnly     bool         // callee never reads its mutable outputs
	Deterministic bool         // affects whether a ResultVal is published
}

func NewCall(op Opcode, line int, name string, args []arg.Arg, outs []*dftype.Var, props *backend.TaskProps) *Call {
	return &Call{Base: Base{OpCode: op, LineNo: line}, Name: name, Args: args, Outs: outs, Props: props}
}

func (c *Call) GetInputs() []arg.Arg {
	out := append([]arg.Arg{}, c.Args...)
	return append(out, taskPropsInputs(c.Props)...)
}

func (c *Call) GetOutputs() []*dftype.Var          { return c.Outs }
func (c *Call) GetModifiedOutputs() []*dftype.Var  { return c.Outs }
func (c *Call) GetReadOutputs(hasProp func(string, string) bool) []*dftype.Var {
	if c.WriteOnly {
		return nil
	}
	// Mapped-file outputs are read-before-write because their
	// filename mapping must already be known (example:
	// output files with a mapping).
	var out []*dftype.Var
	for _, o := range c.Outs {
		if o.Mapping != nil {
			out = append(out, o)
		}
	}
	return out
}

func (c *Call) GetInitialized() []Initialized {
	out := make([]Initialized, len(c.Outs))
	for i, o := range c.Outs {
		out[i] = Initialized{Var: o, Kind: Full}
	}
	return out
}

// GetBlockingInputs implements per-variant rule: SYNC
// never blocks on inputs; the other call modes block on every
// primitive-future/ref input from the callee's signature (here:
// simply every such input in Args, since this package doesn't carry a
// separate callee-signature projection -- the walker only ever passes
// the subset the callee actually requires as Args).
func (c *Call) GetBlockingInputs() []*dftype.Var {
	if c.OpCode == OpCallSync {
		return nil
	}
	return blockingFromArgs(c.Args)
}

func (c *Call) GetMode() backend.TaskMode {
	switch c.OpCode {
	case OpCallForeign:
		if c.Foreign != nil {
			return c.Foreign.Mode
		}
		return backend.Control
	case OpCallControl:
		return backend.Control
	case OpCallSync:
		return backend.Sync
	case OpCallLocal:
		return backend.Local
	case OpCallLocalControl:
		return backend.LocalControl
	default:
		return backend.Control
	}
}

func (c *Call) HasSideEffects() bool {
	if c.OpCode == OpCallForeign && c.Foreign != nil {
		return !c.Foreign.Pure
	}
	// User/composite function calls may have arbitrary side effects;
	// the middle end doesn't inline the callee to find out.
	return true
}

func (c *Call) CanChangeTiming() bool { return !c.HasSideEffects() }

func (c *Call) IsIdempotent() bool {
	return c.OpCode == OpCallForeign && c.Foreign != nil && c.Foreign.Pure
}

func (c *Call) WritesAliasVar() bool   { return writesAlias(c.Outs) }
func (c *Call) WritesMappedVar() bool  { return writesMapped(c.Outs) }

func (c *Call) ConstantFold(kc KnownConst) map[*dftype.Var]arg.Arg { return nil }
func (c *Call) ConstantReplace(kc KnownConst) Instruction          { return nil }

// CanMakeImmediate: calls are never made immediate directly (that's
// ASYNC_OP's job for builtin operators); a full function call keeps
// its call shape even once its inputs are known.
func (c *Call) CanMakeImmediate(closed func(*dftype.Var) bool, waitForClose bool) *MakeImmRequest {
	return nil
}
func (c *Call) MakeImmediate(outVars []*dftype.Var, inValues []arg.Arg) MakeImmChange {
	panic("ir: MakeImmediate called on a Call instruction without a prior CanMakeImmediate request")
}

// GetResults implements CALL_FOREIGN rules: pure foreign
// calls publish one ResultVal per output keyed on a canonical,
// commutativity-sorted input vector; copy-equivalent calls publish a
// copy ResultVal; special foreign functions publish their extra
// equivalences.
func (c *Call) GetResults(existing ExistingResults) []ResultVal {
	if c.OpCode != OpCallForeign || c.Foreign == nil {
		return nil
	}
	canon := canonicalizeInputs(c.Args, c.Foreign.Commutative)

	if c.Foreign.IsCopy && len(c.Args) > 0 && len(c.Outs) == 1 {
		return []ResultVal{copyResultVal(c.Op(), canon, c.Outs[0], c.Args[0], existing)}
	}

	var out []ResultVal
	if c.Foreign.Pure {
		for _, o := range c.Outs {
			out = append(out, ResultVal{Op: c.Op(), Inputs: canon, LocVar: o})
		}
	}
	out = append(out, specialForeignResults(c, canon)...)
	return out
}

// specialForeignResults implements the extra ResultVals the optimizer
// publishes for range/range_step/size/input_file/argv foreign calls.
func specialForeignResults(c *Call, canon []arg.Arg) []ResultVal {
	if c.Foreign == nil || len(c.Outs) == 0 {
		return nil
	}
	switch c.Foreign.Special {
	case ctx.FnInputFile:
		// filename equivalence: the output File's mapping variable is
		// equivalent to the filename argument passed in.
		if len(c.Args) > 0 {
			return []ResultVal{{Op: OpGetFilename, Inputs: []arg.Arg{arg.VarRef(c.Outs[0])}, LocVar: c.Args[0].Var()}}
		}
	case ctx.FnRange, ctx.FnRangeStep:
		// range-output-size: the produced array's size is a pure
		// function of the range bounds, independent of order.
		return []ResultVal{{Op: OpArrayBuild, Inputs: canon, LocVar: c.Outs[0]}}
	case ctx.FnSize:
		return []ResultVal{{Op: c.Op(), Inputs: canon, LocVar: c.Outs[0]}}
	case ctx.FnArgv:
		// compile-time argv lookup: only ever a ResultVal if the
		// index argument is itself a constant.
		if len(c.Args) > 0 && c.Args[0].IsConst() {
			return []ResultVal{{Op: c.Op(), Inputs: canon, LocVar: c.Outs[0]}}
		}
	}
	return nil
}

// GetIncrVars: output refcounts include read-refs when the callee is
// not output-write-only, and write-refs for every mutable output.
func (c *Call) GetIncrVars(hasProp func(string) bool) (reads, writes []*dftype.Var) {
	reads = append(reads, arg.Vars(c.Args)...)
	if !c.WriteOnly {
		reads = append(reads, c.Outs...)
	}
	writes = append(writes, c.Outs...)
	return reads, writes
}

func (c *Call) TryPiggyback(counters map[*dftype.Var]int, kind string) []*dftype.Var {
	return noPiggyback()
}
func (c *Call) GetComponentAlias() (*dftype.Var, *dftype.Var, bool) { return noComponentAlias() }

func (c *Call) Clone() Instruction {
	cl := *c
	cl.Args = append([]arg.Arg{}, c.Args...)
	cl.Outs = append([]*dftype.Var{}, c.Outs...)
	return &cl
}

func (c *Call) RenameVars(renames map[*dftype.Var]*dftype.Var, mode RenameMode) Instruction {
	cl := c.Clone().(*Call)
	cl.Args = renameArgs(c.Args, renames)
	cl.Outs = renameVarSlice(c.Outs, renames)
	return cl
}

// canonicalizeInputs sorts commutative input vectors into a fixed
// order and is the single choke point GetResults uses before keying a
// ResultVal, so that `f(a,b)` and `f(b,a)` publish an identical key
//.
func canonicalizeInputs(args []arg.Arg, commutative bool) []arg.Arg {
	canon := append([]arg.Arg{}, args...)
	if commutative {
		sort.SliceStable(canon, func(i, j int) bool {
			return canon[i].String() < canon[j].String()
		})
	}
	return canon
}

// copyResultVal builds the ResultVal for a copy-equivalent call,
// linking output <- input transitively, and closes over any existing
// copy-chain so CSE can walk straight to the ultimate source.
func copyResultVal(op Opcode, canon []arg.Arg, out *dftype.Var, src arg.Arg, existing ExistingResults) ResultVal {
	rv := ResultVal{Op: op, Inputs: canon, LocVar: out}
	if src.IsVar() && existing != nil {
		if prior, ok := existing.Find(op, []arg.Arg{src}); ok {
			rv.CopyOf = &prior
			return rv
		}
	}
	self := ResultVal{Op: op, Inputs: []arg.Arg{src}, LocVar: out}
	rv.CopyOf = &self
	return rv
}

func renameArgs(args []arg.Arg, renames map[*dftype.Var]*dftype.Var) []arg.Arg {
	out := make([]arg.Arg, len(args))
	for i, a := range args {
		if a.IsVar() {
			if nv, ok := renames[a.Var()]; ok {
				out[i] = arg.VarRef(nv)
				continue
			}
		}
		out[i] = a
	}
	return out
}

func renameVarSlice(vs []*dftype.Var, renames map[*dftype.Var]*dftype.Var) []*dftype.Var {
	out := make([]*dftype.Var, len(vs))
	for i, v := range vs {
		if nv, ok := renames[v]; ok {
			out[i] = nv
		} else {
			out[i] = v
		}
	}
	return out
}
