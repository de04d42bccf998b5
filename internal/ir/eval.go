package ir

import "github.com/dfcompiler/dfmid/internal/arg"

// evalConst implements the pure evaluation rule behind constant
// folding behind LOCAL_OP/ASYNC_OP constant folding, e.g. plain
// integer arithmetic. ASSERT/ASSERT_EQ evaluate to Void and report
// ok=false when every input isn't a compile-time constant, so constant
// folding only fires when it actually can.
func evalConst(sub Sub, vals []arg.Arg) (arg.Arg, bool) {
	for _, v := range vals {
		if !v.IsConst() {
			return arg.Arg{}, false
		}
	}
	switch sub {
	case PlusInt:
		return arg.Int(vals[0].IntVal() + vals[1].IntVal()), true
	case MinusInt:
		return arg.Int(vals[0].IntVal() - vals[1].IntVal()), true
	case MulInt:
		return arg.Int(vals[0].IntVal() * vals[1].IntVal()), true
	case PlusFloat:
		return arg.FloatVal(vals[0].FloatValue() + vals[1].FloatValue()), true
	case MinusFloat:
		return arg.FloatVal(vals[0].FloatValue() - vals[1].FloatValue()), true
	case And:
		return arg.Bool(vals[0].BoolVal() && vals[1].BoolVal()), true
	case Or:
		return arg.Bool(vals[0].BoolVal() || vals[1].BoolVal()), true
	case Not:
		return arg.Bool(!vals[0].BoolVal()), true
	case LessEq:
		return arg.Bool(vals[0].IntVal() <= vals[1].IntVal()), true
	case GreaterEq:
		return arg.Bool(vals[0].IntVal() >= vals[1].IntVal()), true
	case CopyInt, CopyFloat, CopyBool, CopyString, CopyBlob:
		return vals[0], true
	case AssertOp, AssertEqOp:
		// Folding an assert always succeeds structurally (it always
		// reduces to Void); whether the asserted condition is
		// provably true is a separate question -- see AssertHolds.
		return arg.VoidVal(), true
	default:
		return arg.Arg{}, false
	}
}
