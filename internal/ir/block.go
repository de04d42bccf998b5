package ir

import (
	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/backend"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// ContinuationKind distinguishes the three structured-control shapes a
// Statement's Continuation variant may take.
type ContinuationKind int

const (
	IfContinuation ContinuationKind = iota
	ForeachContinuation
	WaitContinuation
)

func (k ContinuationKind) String() string {
	switch k {
	case IfContinuation:
		return "IF"
	case ForeachContinuation:
		return "FOREACH"
	case WaitContinuation:
		return "WAIT"
	default:
		return "?"
	}
}

// Continuation is the control-structure half of Statement's two-variant
// sum type: a nested Body block (and, for IfContinuation, an optional
// Else block), plus the header data that particular kind of structured
// control needs to mean anything -- a wait's watch list and mode, a
// foreach's container and loop vars, an if's condition. Exactly one of
// Wait/Foreach/If is populated, selected by Kind.
type Continuation struct {
	Kind ContinuationKind
	Body *Block
	Else *Block // non-nil only for IfContinuation with an else branch

	Wait    *WaitHeader
	Foreach *ForeachHeader
	If      *IfHeader
}

// WaitHeader is a WaitContinuation's parameters: the variables being
// waited on, the wait's mode, and the task properties/locality its
// (possibly absent) own body runs under.
type WaitHeader struct {
	Name          string
	Vars          []*dftype.Var
	Mode          backend.WaitMode
	Recursive     bool
	ContinueAfter bool
	TaskMode      backend.TaskMode
	Props         *backend.TaskProps
}

// ForeachHeader is a ForeachContinuation's parameters: the container
// being iterated and the key/value variables its body binds per
// iteration.
type ForeachHeader struct {
	Container *dftype.Var
	KeyVar    *dftype.Var
	ValVar    *dftype.Var
}

// IfHeader is an IfContinuation's parameters: the branch condition.
type IfHeader struct {
	Cond arg.Arg
}

// Statement is a tagged union: exactly one of Instr or Cont is set.
// This is the idiomatic Go rendering of a two-variant sum type --
// interfaces don't help here since the two shapes don't share a
// method set worth naming; a flat struct with one populated field is
// the same shape go/ast uses for similar plain-data unions.
type Statement struct {
	Instr Instruction
	Cont  *Continuation
}

func InstrStatement(in Instruction) Statement { return Statement{Instr: in} }
func ContStatement(c *Continuation) Statement { return Statement{Cont: c} }

// NewWaitContinuation builds a WaitContinuation with an empty Body
// block parented to nil -- callers attach it via Block.AddContinuation,
// which sets Body.Parent (and Else.Parent, if present).
func NewWaitContinuation(h WaitHeader) *Continuation {
	return &Continuation{Kind: WaitContinuation, Body: NewBlock(nil), Wait: &h}
}

// NewForeachContinuation builds a ForeachContinuation with an empty
// Body block.
func NewForeachContinuation(h ForeachHeader) *Continuation {
	return &Continuation{Kind: ForeachContinuation, Body: NewBlock(nil), Foreach: &h}
}

// NewIfContinuation builds an IfContinuation with an empty Body block
// and, if withElse is set, an empty Else block too.
func NewIfContinuation(h IfHeader, withElse bool) *Continuation {
	c := &Continuation{Kind: IfContinuation, Body: NewBlock(nil), If: &h}
	if withElse {
		c.Else = NewBlock(nil)
	}
	return c
}

func (s Statement) IsInstr() bool { return s.Instr != nil }
func (s Statement) IsCont() bool  { return s.Cont != nil }

// Block is one nesting level of structured control flow: a flat
// statement list plus the cleanup instructions that run when this
// block exits (refcount decrements for variables going out of scope).
// Blocks nest strictly -- there is no cross-block jump in this IR, so
// a Block's Parent pointer is enough to answer every scoping query the
// validator or the walker needs.
type Block struct {
	Parent  *Block
	Stmts   []Statement
	Cleanup []Instruction
}

// NewBlock creates a block nested under parent (nil for a function's
// main block).
func NewBlock(parent *Block) *Block {
	return &Block{Parent: parent}
}

func (b *Block) AddInstr(in Instruction) {
	b.Stmts = append(b.Stmts, InstrStatement(in))
}

func (b *Block) AddContinuation(c *Continuation) {
	c.Body.Parent = b
	if c.Else != nil {
		c.Else.Parent = b
	}
	b.Stmts = append(b.Stmts, ContStatement(c))
}

// AddCleanup attaches a cleanup instruction, run when the block exits.
// Cleanup instructions must carry no blocking inputs -- cleanup never
// waits.
func (b *Block) AddCleanup(in Instruction) {
	b.Cleanup = append(b.Cleanup, in)
}

// Depth returns how many ancestor blocks b has (0 for a main block).
func (b *Block) Depth() int {
	n := 0
	for p := b.Parent; p != nil; p = p.Parent {
		n++
	}
	return n
}

// IsNestedUnder reports whether b is nested (directly or
// transitively) under other.
func (b *Block) IsNestedUnder(other *Block) bool {
	for p := b.Parent; p != nil; p = p.Parent {
		if p == other {
			return true
		}
	}
	return false
}

// Walk visits every instruction reachable from b, in program order,
// descending into nested continuation bodies depth-first; cleanup
// instructions for a block are visited after its statements, matching
// where they actually execute.
func (b *Block) Walk(visit func(blk *Block, in Instruction)) {
	for _, s := range b.Stmts {
		if s.IsInstr() {
			visit(b, s.Instr)
			continue
		}
		s.Cont.Body.Walk(visit)
		if s.Cont.Else != nil {
			s.Cont.Else.Walk(visit)
		}
	}
	for _, in := range b.Cleanup {
		visit(b, in)
	}
}

// Instructions flattens b (and its descendants) into program order,
// a convenience for passes that don't need per-block structure.
func (b *Block) Instructions() []Instruction {
	var out []Instruction
	b.Walk(func(_ *Block, in Instruction) { out = append(out, in) })
	return out
}

// DeclaredIn reports whether v's declaration (arena allocation) is
// visible from b: v must be an input/output/compiler temp of the
// function whose main block is an ancestor of (or equal to) b. Since
// this package doesn't own the Function arena, callers supply the
// predicate; DeclaredIn just walks the block chain so the validator
// can check cleanup/reference placement without duplicating that walk.
func (b *Block) DeclaredIn(v *dftype.Var, declaredAt func(*dftype.Var) *Block) bool {
	owner := declaredAt(v)
	if owner == nil {
		return false
	}
	for p := b; p != nil; p = p.Parent {
		if p == owner {
			return true
		}
	}
	return false
}
