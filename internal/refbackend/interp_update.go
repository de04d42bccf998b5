package refbackend

import (
	"fmt"

	"github.com/dfcompiler/dfmid/internal/ir"
)

// execUpdate interprets the UPDATE_MIN/INCR/SCALE/LATEST_VALUE
// family directly against the Target variable's UpdCell -- the same
// monotone-update object a Min/Incr/Scale/Latest caller gets from
// env.updCell, just driven from compiled instructions instead of a
// Builder call.
func (ip *Interp) execUpdate(env *Env, u *ir.UpdateOp) error {
	switch u.Op() {
	case ir.OpUpdateMin:
		env.updCell(u.Target).Min(toFloat(ip.evalArg(env, u.Ins[0])))
		return nil
	case ir.OpUpdateIncr:
		env.updCell(u.Target).Incr(toFloat(ip.evalArg(env, u.Ins[0])))
		return nil
	case ir.OpUpdateScale:
		env.updCell(u.Target).Scale(toFloat(ip.evalArg(env, u.Ins[0])))
		return nil
	case ir.OpLatestValue:
		src := u.Ins[0].Var()
		env.Set(u.Target, env.updCell(src).Latest())
		return nil
	default:
		return fmt.Errorf("refbackend: unhandled update opcode %v", u.Op())
	}
}
