package ir

import (
	"strings"

	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// ResultMap is the concrete ExistingResults implementation the
// optimizer threads through a function's instruction stream during
// common-subexpression elimination: every GetResults call consults it
// before publishing, and every accepted ResultVal is recorded back
// into it before moving to the next instruction.
type ResultMap struct {
	byKey   map[string]ResultVal
	byVar   map[*dftype.Var]ResultVal
	algebra bool
}

// NewResultMap creates an empty CSE map. algebraEnabled mirrors
// whatever OPT_ALGEBRA setting the caller's optimizer pass is running
// under.
func NewResultMap(algebraEnabled bool) *ResultMap {
	return &ResultMap{byKey: map[string]ResultVal{}, byVar: map[*dftype.Var]ResultVal{}, algebra: algebraEnabled}
}

func (m *ResultMap) AlgebraEnabled() bool { return m.algebra }

func (m *ResultMap) Find(op Opcode, inputs []arg.Arg) (ResultVal, bool) {
	rv, ok := m.byKey[resultKey(op, inputs)]
	return rv, ok
}

func (m *ResultMap) DefinitionOf(v *dftype.Var) (ResultVal, bool) {
	rv, ok := m.byVar[v]
	return rv, ok
}

// Publish records rv so later instructions' GetResults calls can find
// it. A copy-equivalent ResultVal (CopyOf != nil) is keyed under its
// own (op, inputs) as well, so a direct re-lookup on the alias still
// resolves -- the caller is responsible for walking CopyOf chains to
// the ultimate source when that's what CSE needs.
func (m *ResultMap) Publish(rv ResultVal) {
	m.byKey[resultKey(rv.Op, rv.Inputs)] = rv
	if rv.LocVar != nil {
		m.byVar[rv.LocVar] = rv
	}
}

func resultKey(op Opcode, inputs []arg.Arg) string {
	var b strings.Builder
	b.WriteString(op.String())
	for _, in := range inputs {
		b.WriteByte('|')
		b.WriteString(in.String())
	}
	return b.String()
}
