package ctx

import "github.com/dfcompiler/dfmid/internal/dftype"

// FuncProp is one property a function may carry, queried to drive the
// call-emission decision tree.
type FuncProp int

const (
	Builtin FuncProp = iota
	WrappedBuiltin
	App
	Composite
	Sync
	Control
	Parallel
	Targetable
	Deprecated
	Checkpointed
)

var propNames = map[FuncProp]string{
	Builtin:        "builtin",
	WrappedBuiltin: "wrapped_builtin",
	App:            "app",
	Composite:      "composite",
	Sync:           "sync",
	Control:        "control",
	Parallel:       "parallel",
	Targetable:     "targetable",
	Deprecated:     "deprecated",
	Checkpointed:   "checkpointed",
}

func (p FuncProp) String() string {
	if s, ok := propNames[p]; ok {
		return s
	}
	return "unknown_prop"
}

// PropSet is a small set of FuncProp values.
type PropSet map[FuncProp]bool

func NewPropSet(props ...FuncProp) PropSet {
	s := make(PropSet, len(props))
	for _, p := range props {
		s[p] = true
	}
	return s
}

func (s PropSet) Has(p FuncProp) bool { return s[p] }

// SpecialForeign is the registry of special foreign functions that
// the walker and/or optimizer give extra treatment, feeding the
// CALL_FOREIGN ResultVal rules.
type SpecialForeign int

const (
	NotSpecial SpecialForeign = iota
	FnRange
	FnRangeStep
	FnSize
	FnInputFile
	FnUncachedInputFile
	FnInputURL
	FnArgv
	FnAssert
	FnAssertEq
)

// FuncSig is the signature and property set of a user-visible or
// foreign function, as queried from the function-property registry.
type FuncSig struct {
	Name        string
	InputTypes  []*TypedName
	OutputTypes []*TypedName
	Props       PropSet
	Special     SpecialForeign
	// Intrinsic marks a function lowered directly to an
	// intrinsicCall backend op, bypassing the property dispatch
	// entirely.
	Intrinsic bool
	// Deterministic marks a RUN_EXTERNAL-shaped foreign function whose
	// result may be published as a ResultVal.
	Deterministic bool
	// OpEquivalent names the Builtin Sub opcode this builtin function
	// is equivalent to (e.g. a foreign "plus_int" wrapping PLUS_INT),
	// or "" if none exists. Only meaningful when Props.Has(Builtin).
	OpEquivalent string
}

// TypedName names one formal parameter or result.
type TypedName struct {
	Name string
	Type *dftype.Type
}
