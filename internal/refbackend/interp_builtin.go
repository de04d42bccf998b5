package refbackend

import (
	"fmt"

	"github.com/dfcompiler/dfmid/internal/ir"
)

// execBuiltin interprets LOCAL_OP/ASYNC_OP: the arithmetic/logical/
// comparison/copy/assert operator family. The two opcodes differ only
// in blocking behavior (see ir.Builtin.GetMode), which this
// single-threaded interpreter never needs to distinguish -- both just
// evaluate their inputs and assign Out.
func (ip *Interp) execBuiltin(env *Env, b *ir.Builtin) error {
	ins := make([]any, len(b.Ins))
	for i, a := range b.Ins {
		ins[i] = ip.evalArg(env, a)
	}
	v, err := evalSub(b.SubOp, ins)
	if err != nil {
		return err
	}
	env.Set(b.Out, v)
	return nil
}

func evalSub(sub ir.Sub, ins []any) (any, error) {
	switch sub {
	case ir.PlusInt:
		return ins[0].(int64) + ins[1].(int64), nil
	case ir.MinusInt:
		return ins[0].(int64) - ins[1].(int64), nil
	case ir.MulInt:
		return ins[0].(int64) * ins[1].(int64), nil
	case ir.PlusFloat:
		return ins[0].(float64) + ins[1].(float64), nil
	case ir.MinusFloat:
		return ins[0].(float64) - ins[1].(float64), nil
	case ir.And:
		return ins[0].(bool) && ins[1].(bool), nil
	case ir.Or:
		return ins[0].(bool) || ins[1].(bool), nil
	case ir.Not:
		return !ins[0].(bool), nil
	case ir.LessEq:
		return toFloat(ins[0]) <= toFloat(ins[1]), nil
	case ir.GreaterEq:
		return toFloat(ins[0]) >= toFloat(ins[1]), nil
	case ir.CopyInt, ir.CopyFloat, ir.CopyBool, ir.CopyString, ir.CopyBlob:
		return ins[0], nil
	case ir.AssertOp:
		if !ins[0].(bool) {
			return nil, fmt.Errorf("refbackend: ASSERT failed")
		}
		return true, nil
	case ir.AssertEqOp:
		if ins[0].(int64) != ins[1].(int64) {
			return nil, fmt.Errorf("refbackend: ASSERT_EQ failed: %v != %v", ins[0], ins[1])
		}
		return true, nil
	default:
		return nil, fmt.Errorf("refbackend: unhandled builtin sub-op %s", sub)
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}
