package ir

import (
	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/backend"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// Initialized pairs a variable with how completely an instruction
// initializes it.
type Initialized struct {
	Var  *dftype.Var
	Kind InitKind
}

// MakeImmRequest is what canMakeImmediate returns when an
// instruction's async futures are all known-closed: which input
// variables to fetch local values for, and which outputs will be
// materialized synchronously.
type MakeImmRequest struct {
	FetchInputs []*dftype.Var
	OutVars     []*dftype.Var
}

// MakeImmChange is the synchronous replacement makeImmediate produces.
type MakeImmChange struct {
	Instrs []Instruction
}

// ResultVal is the canonical, symbolic description of an instruction's
// published output, keyed on (opcode, canonical input vector), used by
// common-subexpression elimination (ResultVal/
// ComputedValue relation).
type ResultVal struct {
	Op     Opcode
	Inputs []arg.Arg // canonicalized (commutative-sorted / direction-flipped)
	// Location is either a *dftype.Var (the instruction's own output)
	// or a constant arg.Arg "the location() of the
	// computed value is either the output variable or a constant."
	LocVar   *dftype.Var
	LocConst *arg.Arg
	// CopyOf, when non-nil, marks this ResultVal as copy-equivalent to
	// another location -- CSE closes transitively over these.
	CopyOf *ResultVal
}

// IsConstLoc reports whether the result location is a constant.
func (r ResultVal) IsConstLoc() bool { return r.LocConst != nil }

// RenameMode controls how renameVars substitutes variables.
type RenameMode int

const (
	// ReplaceVar substitutes the Var descriptor itself everywhere it
	// is referenced (inputs and outputs).
	ReplaceVar RenameMode = iota
	// Reference substitutes only VarRef argument occurrences, leaving
	// output declarations untouched.
	Reference
	// Value substitutes a variable appearing as a plain value operand
	// (not as an lvalue-producing output).
	Value
)

// KnownConst is read by constantFold/constantReplace/canMakeImmediate:
// a partial map from variable to its statically known value, as the
// optimizer's constant-propagation lattice would supply it.
type KnownConst interface {
	// Lookup returns the constant value bound to v, if any.
	Lookup(v *dftype.Var) (arg.Arg, bool)
	// Closed reports whether v's single assignment is known to have
	// already happened (its future is closed), independent of whether
	// its value is known at compile time.
	Closed(v *dftype.Var) bool
}

// ExistingResults lets getResults consult previously published
// ResultVals when deciding whether this instruction's output is
// already available under a different name (e.g. copy propagation),
// and, when OPT_ALGEBRA is enabled, to find the additive decomposition
// of an operand for PLUS/MINUS algebraic inference.
type ExistingResults interface {
	Find(op Opcode, inputs []arg.Arg) (ResultVal, bool)
	// DefinitionOf returns the ResultVal that defines v, if v's
	// defining instruction has already published one.
	DefinitionOf(v *dftype.Var) (ResultVal, bool)
	// AlgebraEnabled reports whether OPT_ALGEBRA is on; algebraic
	// PLUS/MINUS inference is only attempted when true.
	AlgebraEnabled() bool
}

// Instruction is the common interface every opcode family implements.
// Optimizer correctness depends on each method being complete and
// mutually consistent: getBlockingInputs must stay a subset of inputs,
// getIncrVars a subset of inputs/outputs, and so on.
type Instruction interface {
	Op() Opcode
	Line() int

	// GetInputs returns all values read, including task properties
	// when present.
	GetInputs() []arg.Arg
	// GetOutputs returns all variables the instruction may mutate.
	GetOutputs() []*dftype.Var
	// GetModifiedOutputs returns the subset of outputs actually
	// mutated (default: same as GetOutputs).
	GetModifiedOutputs() []*dftype.Var
	// GetReadOutputs returns outputs whose prior value is read (e.g.
	// mapped files), given the enclosing function-property lookup.
	GetReadOutputs(hasProp func(fn string, prop string) bool) []*dftype.Var
	// GetInitialized returns the variables this instruction
	// initializes, and how completely.
	GetInitialized() []Initialized
	// GetBlockingInputs returns the variables the scheduler must wait
	// on before firing this instruction.
	GetBlockingInputs() []*dftype.Var
	// GetMode returns the execution locality this instruction spawns.
	GetMode() backend.TaskMode
	// HasSideEffects reports whether reordering/eliding this
	// instruction changes observable behaviour.
	HasSideEffects() bool
	// CanChangeTiming reports whether this instruction's position may
	// be shifted relative to others. Default: !HasSideEffects().
	CanChangeTiming() bool
	// IsIdempotent reports whether repeated execution is equivalent.
	IsIdempotent() bool
	// WritesAliasVar reports whether any output is Alias-allocated.
	WritesAliasVar() bool
	// WritesMappedVar reports whether any output has a non-nil
	// filename mapping.
	WritesMappedVar() bool

	// ConstantFold returns a map from outputs to constants if this
	// instruction's result is statically known given kc, or nil.
	ConstantFold(kc KnownConst) map[*dftype.Var]arg.Arg
	// ConstantReplace returns a simpler instruction (e.g. a
	// short-circuited AND/OR becomes a copy) given kc, or nil.
	ConstantReplace(kc KnownConst) Instruction
	// CanMakeImmediate reports, given which variables are closed and
	// a predicate for whether waiting for closure is acceptable here,
	// which inputs to fetch / outputs to materialize -- or nil if
	// this instruction cannot be made immediate.
	CanMakeImmediate(closed func(*dftype.Var) bool, waitForClose bool) *MakeImmRequest
	// MakeImmediate replaces this instruction with its synchronous
	// form given fetched local values, per a prior MakeImmRequest.
	MakeImmediate(outVars []*dftype.Var, inValues []arg.Arg) MakeImmChange
	// GetResults publishes this instruction's computed value(s) for
	// CSE, consulting existing published results for copy-equivalence
	// closure.
	GetResults(existing ExistingResults) []ResultVal

	// GetIncrVars returns the (reads, writes) refcount deltas this
	// instruction claims.
	GetIncrVars(hasProp func(fn string) bool) (reads, writes []*dftype.Var)
	// TryPiggyback offers to absorb an adjacent incr/decr of kind
	// "read"/"write" into this instruction, returning the variables
	// it accepted.
	TryPiggyback(counters map[*dftype.Var]int, kind string) []*dftype.Var
	// GetComponentAlias reports whether this instruction's output is
	// declared as an alias into another variable: (whole, part).
	GetComponentAlias() (whole, part *dftype.Var, ok bool)

	// Clone returns a deep-enough copy to support speculative
	// transformations.
	Clone() Instruction
	// RenameVars substitutes variables per renames, using mode to
	// decide which occurrences are eligible.
	RenameVars(renames map[*dftype.Var]*dftype.Var, mode RenameMode) Instruction
}
