// interp.go executes an already-built ir.Function against an Env,
// the same relationship golang.org/x/tools/go/ssa/interp has to a
// compiled ssa.Program -- Builder produces the tree once; Interp
// walks it as many times as the caller likes.
//
// This reference interpreter runs single-threaded and executes a
// block's statements strictly in program order: it assumes (as the
// walker guarantees) that by the time a statement reads a variable,
// an earlier statement in program order has already written it, so
// it never needs to actually suspend on an unclosed Cell. A true
// concurrent scheduler honoring GetBlockingInputs/GetMode is out of
// scope for a test/demo backend.
package refbackend

import (
	"context"
	"fmt"

	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/checkpoint"
	"github.com/dfcompiler/dfmid/internal/dftype"
	"github.com/dfcompiler/dfmid/internal/ir"
)

// Interp executes compiled Functions, resolving CALL_* instructions
// against a name->Function table for calls to other lowered
// functions, and against Checkpoints for the checkpoint primitives.
type Interp struct {
	Funcs       map[string]*ir.Function
	Checkpoints checkpoint.Store
	Argv        []string // backs the argv() foreign function
}

func NewInterp(funcs map[string]*ir.Function, store checkpoint.Store) *Interp {
	return &Interp{Funcs: funcs, Checkpoints: store}
}

// Run executes fn with inputs bound positionally to fn.Inputs and
// returns the values bound to fn.Outputs.
func (ip *Interp) Run(ctx context.Context, fn *ir.Function, inputs []any) ([]any, error) {
	env := NewEnv(nil)
	if len(inputs) != len(fn.Inputs) {
		return nil, fmt.Errorf("refbackend: %s expects %d inputs, got %d", fn.Name, len(fn.Inputs), len(inputs))
	}
	for i, v := range fn.Inputs {
		env.Set(v, inputs[i])
	}
	declareOutputs(env, fn.Outputs)
	if err := ip.execBlock(ctx, env, fn.Root); err != nil {
		return nil, err
	}
	out := make([]any, len(fn.Outputs))
	for i, v := range fn.Outputs {
		out[i] = env.Get(v)
	}
	return out, nil
}

// declareOutputs forces each output var's Cell to exist in env up
// front, before fn.Root runs. Without this, an output first written
// from inside a nested if/foreach/wait body (the common case: an
// if/else jointly computing a function's result) would get its Cell
// created in that inner scope's own Env instead of the function-level
// one -- orphaned from the Get a caller later does against the outer
// scope, which would just block forever on a Cell nobody ever Sets.
// Pre-touching here makes the inner Set find (and share) the same
// Cell instance via Env's parent-chain walk.
func declareOutputs(env *Env, outputs []*dftype.Var) {
	for _, v := range outputs {
		env.cell(v)
	}
}

func (ip *Interp) execBlock(ctx context.Context, env *Env, blk *ir.Block) error {
	for _, s := range blk.Stmts {
		if s.IsInstr() {
			if err := ip.execInstr(ctx, env, s.Instr); err != nil {
				return err
			}
			continue
		}
		if err := ip.execCont(ctx, env, s.Cont); err != nil {
			return err
		}
	}
	for _, in := range blk.Cleanup {
		if err := ip.execInstr(ctx, env, in); err != nil {
			return err
		}
	}
	return nil
}

func (ip *Interp) execCont(ctx context.Context, env *Env, c *ir.Continuation) error {
	switch c.Kind {
	case ir.WaitContinuation:
		// Every watched var is already resolvable in program order (see
		// package doc); a real engine would suspend here instead.
		return ip.execBlock(ctx, NewEnv(env), c.Body)
	case ir.IfContinuation:
		cond := ip.evalArg(env, c.If.Cond).(bool)
		if cond {
			return ip.execBlock(ctx, NewEnv(env), c.Body)
		}
		if c.Else != nil {
			return ip.execBlock(ctx, NewEnv(env), c.Else)
		}
		return nil
	case ir.ForeachContinuation:
		container := env.Get(c.Foreach.Container)
		switch cv := container.(type) {
		case *ArrayVal:
			for _, kv := range cv.Pairs() {
				iter := NewEnv(env)
				iter.Set(c.Foreach.KeyVar, kv.Key)
				iter.Set(c.Foreach.ValVar, kv.Val)
				if err := ip.execBlock(ctx, iter, c.Body); err != nil {
					return err
				}
			}
		case *BagVal:
			for _, v := range cv.Elems() {
				iter := NewEnv(env)
				iter.Set(c.Foreach.ValVar, v)
				if err := ip.execBlock(ctx, iter, c.Body); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("refbackend: foreach over non-container value %v", container)
		}
		return nil
	default:
		return fmt.Errorf("refbackend: unknown continuation kind %v", c.Kind)
	}
}

func (ip *Interp) evalArg(env *Env, a arg.Arg) any {
	if a.IsVar() {
		return env.Get(a.Var())
	}
	switch a.ConstKind() {
	case arg.IntConst:
		return a.IntVal()
	case arg.FloatConst:
		return a.FloatValue()
	case arg.BoolConst:
		return a.BoolVal()
	case arg.StringConst:
		return a.StringVal()
	case arg.BlobConst:
		return a.BlobVal()
	default:
		return nil
	}
}

func (ip *Interp) execInstr(ctx context.Context, env *Env, in ir.Instruction) error {
	switch i := in.(type) {
	case *ir.TurbineOp:
		return ip.execTurbine(env, i)
	case *ir.Builtin:
		return ip.execBuiltin(env, i)
	case *ir.UpdateOp:
		return ip.execUpdate(env, i)
	case *ir.CheckpointOp:
		return ip.execCheckpoint(ctx, env, i)
	case *ir.Call:
		return ip.execCall(ctx, env, i)
	case *ir.RunExternal:
		return ip.execRunExternal(ctx, env, i)
	case *ir.RefcountOp, *ir.Comment:
		return nil // pure bookkeeping/annotation, no runtime effect
	case *ir.LoopContinue, *ir.LoopBreak:
		// This reference interpreter lowers foreach loops directly from
		// ForeachHeader rather than an explicit loop-back edge, so these
		// never appear in a Builder-constructed tree; tolerate them as
		// no-ops for trees built some other way.
		return nil
	default:
		return fmt.Errorf("refbackend: unhandled instruction type %T", in)
	}
}
