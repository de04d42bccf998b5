package ir

import (
	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/backend"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// LoopContinue carries new iteration variable bindings and a parallel
// blocking bitvector.
type LoopContinue struct {
	Base
	NewLoopVars []*dftype.Var
	Values      []arg.Arg
	Blocking    []bool // parallel to Values
}

func NewLoopContinue(line int, newVars []*dftype.Var, values []arg.Arg, blocking []bool) *LoopContinue {
	return &LoopContinue{Base: Base{OpCode: OpLoopContinue, LineNo: line}, NewLoopVars: newVars, Values: values, Blocking: blocking}
}

func (l *LoopContinue) GetInputs() []arg.Arg                  { return l.Values }
func (l *LoopContinue) GetOutputs() []*dftype.Var              { return nil }
func (l *LoopContinue) GetModifiedOutputs() []*dftype.Var      { return nil }
func (l *LoopContinue) GetReadOutputs(func(string, string) bool) []*dftype.Var { return nil }
func (l *LoopContinue) GetInitialized() []Initialized          { return nil }

func (l *LoopContinue) GetBlockingInputs() []*dftype.Var {
	var out []*dftype.Var
	for i, v := range l.Values {
		if i < len(l.Blocking) && l.Blocking[i] && v.IsVar() {
			out = append(out, v.Var())
		}
	}
	return out
}

func (l *LoopContinue) GetMode() backend.TaskMode { return backend.Control }
func (l *LoopContinue) HasSideEffects() bool      { return true }
func (l *LoopContinue) CanChangeTiming() bool     { return false }
func (l *LoopContinue) IsIdempotent() bool        { return false }
func (l *LoopContinue) WritesAliasVar() bool      { return false }
func (l *LoopContinue) WritesMappedVar() bool     { return false }

func (l *LoopContinue) ConstantFold(KnownConst) map[*dftype.Var]arg.Arg { return nil }
func (l *LoopContinue) ConstantReplace(KnownConst) Instruction          { return nil }

// CanMakeImmediate reports (with an empty, non-nil request) whether any
// set bit of the blocking bitvector belongs to a variable already known
// closed. The pruned bitvector is not kept: MakeImmediate returns an
// unchanged copy that still carries the original bits.
func (l *LoopContinue) CanMakeImmediate(closed func(*dftype.Var) bool, waitForClose bool) *MakeImmRequest {
	changed := false
	newBlocking := append([]bool{}, l.Blocking...)
	for i, v := range l.Values {
		if i < len(newBlocking) && newBlocking[i] && v.IsVar() && closed(v.Var()) {
			newBlocking[i] = false
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return &MakeImmRequest{}
}

func (l *LoopContinue) MakeImmediate(outVars []*dftype.Var, inValues []arg.Arg) MakeImmChange {
	cl := *l
	return MakeImmChange{Instrs: []Instruction{&cl}}
}

func (l *LoopContinue) GetResults(ExistingResults) []ResultVal { return nil }

// GetIncrVars: "Writes refcount on newLoopVars (read)".
func (l *LoopContinue) GetIncrVars(func(string) bool) (reads, writes []*dftype.Var) {
	return append([]*dftype.Var{}, l.NewLoopVars...), nil
}
func (l *LoopContinue) TryPiggyback(map[*dftype.Var]int, string) []*dftype.Var { return noPiggyback() }
func (l *LoopContinue) GetComponentAlias() (*dftype.Var, *dftype.Var, bool)    { return noComponentAlias() }

func (l *LoopContinue) Clone() Instruction {
	cl := *l
	cl.NewLoopVars = append([]*dftype.Var{}, l.NewLoopVars...)
	cl.Values = append([]arg.Arg{}, l.Values...)
	cl.Blocking = append([]bool{}, l.Blocking...)
	return &cl
}

func (l *LoopContinue) RenameVars(renames map[*dftype.Var]*dftype.Var, mode RenameMode) Instruction {
	cl := l.Clone().(*LoopContinue)
	cl.NewLoopVars = renameVarSlice(l.NewLoopVars, renames)
	cl.Values = renameArgs(l.Values, renames)
	return cl
}

// LoopBreak is a no-input/no-output side-effecting terminal: it
// carries the variables whose refcount must be decremented and whose
// write-end must be closed at loop termination.
type LoopBreak struct {
	Base
	DecrVars []*dftype.Var
	CloseVars []*dftype.Var
}

func NewLoopBreak(line int, decrVars, closeVars []*dftype.Var) *LoopBreak {
	return &LoopBreak{Base: Base{OpCode: OpLoopBreak, LineNo: line}, DecrVars: decrVars, CloseVars: closeVars}
}

func (l *LoopBreak) GetInputs() []arg.Arg                      { return nil }
func (l *LoopBreak) GetOutputs() []*dftype.Var                  { return nil }
func (l *LoopBreak) GetModifiedOutputs() []*dftype.Var          { return nil }
func (l *LoopBreak) GetReadOutputs(func(string, string) bool) []*dftype.Var { return nil }
func (l *LoopBreak) GetInitialized() []Initialized              { return nil }
func (l *LoopBreak) GetBlockingInputs() []*dftype.Var            { return nil }
func (l *LoopBreak) GetMode() backend.TaskMode                   { return backend.Control }
func (l *LoopBreak) HasSideEffects() bool                        { return true }
func (l *LoopBreak) CanChangeTiming() bool                       { return false }
func (l *LoopBreak) IsIdempotent() bool                           { return false }
func (l *LoopBreak) WritesAliasVar() bool                         { return false }
func (l *LoopBreak) WritesMappedVar() bool                        { return false }
func (l *LoopBreak) ConstantFold(KnownConst) map[*dftype.Var]arg.Arg { return nil }
func (l *LoopBreak) ConstantReplace(KnownConst) Instruction          { return nil }
func (l *LoopBreak) CanMakeImmediate(func(*dftype.Var) bool, bool) *MakeImmRequest { return nil }
func (l *LoopBreak) MakeImmediate([]*dftype.Var, []arg.Arg) MakeImmChange {
	panic("ir: MakeImmediate called on LoopBreak")
}
func (l *LoopBreak) GetResults(ExistingResults) []ResultVal { return nil }
func (l *LoopBreak) GetIncrVars(func(string) bool) (reads, writes []*dftype.Var) {
	return nil, nil
}
func (l *LoopBreak) TryPiggyback(map[*dftype.Var]int, string) []*dftype.Var { return noPiggyback() }
func (l *LoopBreak) GetComponentAlias() (*dftype.Var, *dftype.Var, bool)    { return noComponentAlias() }
func (l *LoopBreak) Clone() Instruction {
	cl := *l
	cl.DecrVars = append([]*dftype.Var{}, l.DecrVars...)
	cl.CloseVars = append([]*dftype.Var{}, l.CloseVars...)
	return &cl
}
func (l *LoopBreak) RenameVars(renames map[*dftype.Var]*dftype.Var, mode RenameMode) Instruction {
	cl := l.Clone().(*LoopBreak)
	cl.DecrVars = renameVarSlice(l.DecrVars, renames)
	cl.CloseVars = renameVarSlice(l.CloseVars, renames)
	return cl
}

// Comment is an annotation-only instruction: no inputs, no outputs,
// no side effects, pure documentation in the emitted stream.
type Comment struct {
	Base
	Text string
}

func NewComment(line int, text string) *Comment {
	return &Comment{Base: Base{OpCode: OpComment, LineNo: line}, Text: text}
}

func (c *Comment) GetInputs() []arg.Arg                      { return nil }
func (c *Comment) GetOutputs() []*dftype.Var                  { return nil }
func (c *Comment) GetModifiedOutputs() []*dftype.Var          { return nil }
func (c *Comment) GetReadOutputs(func(string, string) bool) []*dftype.Var { return nil }
func (c *Comment) GetInitialized() []Initialized              { return nil }
func (c *Comment) GetBlockingInputs() []*dftype.Var            { return nil }
func (c *Comment) GetMode() backend.TaskMode                   { return backend.Sync }
func (c *Comment) HasSideEffects() bool                        { return false }
func (c *Comment) CanChangeTiming() bool                       { return true }
func (c *Comment) IsIdempotent() bool                           { return true }
func (c *Comment) WritesAliasVar() bool                         { return false }
func (c *Comment) WritesMappedVar() bool                        { return false }
func (c *Comment) ConstantFold(KnownConst) map[*dftype.Var]arg.Arg { return nil }
func (c *Comment) ConstantReplace(KnownConst) Instruction          { return nil }
func (c *Comment) CanMakeImmediate(func(*dftype.Var) bool, bool) *MakeImmRequest { return nil }
func (c *Comment) MakeImmediate([]*dftype.Var, []arg.Arg) MakeImmChange {
	panic("ir: MakeImmediate called on Comment")
}
func (c *Comment) GetResults(ExistingResults) []ResultVal { return nil }
func (c *Comment) GetIncrVars(func(string) bool) (reads, writes []*dftype.Var) {
	return nil, nil
}
func (c *Comment) TryPiggyback(map[*dftype.Var]int, string) []*dftype.Var { return noPiggyback() }
func (c *Comment) GetComponentAlias() (*dftype.Var, *dftype.Var, bool)    { return noComponentAlias() }
func (c *Comment) Clone() Instruction                                     { cl := *c; return &cl }
func (c *Comment) RenameVars(map[*dftype.Var]*dftype.Var, RenameMode) Instruction {
	cl := *c
	return &cl
}
