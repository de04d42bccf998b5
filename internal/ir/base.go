package ir

import (
	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/backend"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// Base is the common header every opcode-family struct embeds: the
// opcode tag and source line (design note: "a common header
// carrying op and helper queries... defaults live in the header").
// Queries that are opcode-specific are implemented on the embedding
// struct; Base only supplies the handful truly shared by everything.
type Base struct {
	OpCode Opcode
	LineNo int
}

func (b Base) Op() Opcode { return b.OpCode }
func (b Base) Line() int  { return b.LineNo }

// blockingFromArgs is the shared rule behind most GetBlockingInputs
// implementations: block on every primitive-future or ref-typed
// input, skipping constants and local values.
func blockingFromArgs(args []arg.Arg) []*dftype.Var {
	var out []*dftype.Var
	for _, a := range args {
		if !a.IsVar() {
			continue
		}
		v := a.Var()
		if dftype.IsPrimFuture(v.Type) || dftype.IsRef(v.Type) {
			out = append(out, v)
		}
	}
	return out
}

// writesAlias is the shared WritesAliasVar rule: true if any output
// is Alias-allocated.
func writesAlias(outs []*dftype.Var) bool {
	for _, v := range outs {
		if v.Alloc == dftype.Alias {
			return true
		}
	}
	return false
}

// writesMapped is the shared WritesMappedVar rule: true if any output
// carries a non-nil filename mapping.
func writesMapped(outs []*dftype.Var) bool {
	for _, v := range outs {
		if v.Mapping != nil {
			return true
		}
	}
	return false
}

// noComponentAlias is the shared GetComponentAlias default: most
// instructions declare no alias relationship between their output and
// another variable.
func noComponentAlias() (*dftype.Var, *dftype.Var, bool) { return nil, nil, false }

// noPiggyback is the shared TryPiggyback default: an instruction that
// doesn't opt into absorbing refcount deltas accepts none.
func noPiggyback() []*dftype.Var { return nil }

// taskPropsInputs flattens optional priority/parallelism/location
// annotations into the instruction's input vector -- GetInputs must
// include task properties when present, not just plain arguments.
func taskPropsInputs(props *backend.TaskProps) []arg.Arg {
	if props == nil {
		return nil
	}
	var out []arg.Arg
	if props.Priority != nil {
		out = append(out, *props.Priority)
	}
	if props.Parallelism != nil {
		out = append(out, *props.Parallelism)
	}
	if props.Location != nil {
		out = append(out, *props.Location)
	}
	return out
}
