package ir

import "github.com/dfcompiler/dfmid/internal/dftype"

// Function is a lowered function: a name, its declared input/output
// variables, and the root block the walker lowered its body into.
// Everything else (temps, aliases, locals) lives as Vars reachable
// from Root's statement tree; Function itself only anchors the tree
// and the signature the rest of the pipeline needs to call into it.
type Function struct {
	Name    string
	Inputs  []*dftype.Var
	Outputs []*dftype.Var
	Root    *Block
}

// NewFunction creates a Function with a fresh, empty root block.
func NewFunction(name string, inputs, outputs []*dftype.Var) *Function {
	return &Function{Name: name, Inputs: inputs, Outputs: outputs, Root: NewBlock(nil)}
}

// Instructions flattens the function body into program order.
func (f *Function) Instructions() []Instruction { return f.Root.Instructions() }

// Walk visits every instruction in the function body, in program order.
func (f *Function) Walk(visit func(blk *Block, in Instruction)) { f.Root.Walk(visit) }
