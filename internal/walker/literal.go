package walker

import (
	"strconv"

	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/dfast"
	"github.com/dfcompiler/dfmid/internal/diag"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

func evalLiteral(wc *Context, tree dfast.Tree, outs []*dftype.Var) error {
	out, err := singleOut(tree, outs)
	if err != nil {
		return err
	}
	lit, err := literalArg(tree, out.Type)
	if err != nil {
		return err
	}
	return assignLiteralArg(wc, out, lit)
}

// literalArg parses tree's literal text into a constant Arg. An
// integer literal assigned where a float is expected is reinterpreted
// as a float, matching how the surface language lets an integer
// literal stand for either kind.
func literalArg(tree dfast.Tree, expectedType *dftype.Type) (arg.Arg, error) {
	switch tree.GetType() {
	case dfast.IntLiteral:
		n, err := strconv.ParseInt(tree.GetText(), 10, 64)
		if err != nil {
			return arg.Arg{}, diag.Errorf(diag.TypeError, tree.Line(), "walker: malformed integer literal %q", tree.GetText())
		}
		if isFloatKind(expectedType) {
			return arg.FloatVal(float64(n)), nil
		}
		return arg.Int(n), nil
	case dfast.FloatLiteral:
		f, err := strconv.ParseFloat(tree.GetText(), 64)
		if err != nil {
			return arg.Arg{}, diag.Errorf(diag.TypeError, tree.Line(), "walker: malformed float literal %q", tree.GetText())
		}
		return arg.FloatVal(f), nil
	case dfast.StringLiteral:
		return arg.Str(tree.GetText()), nil
	case dfast.BoolLiteral:
		return arg.Bool(tree.GetText() == "true"), nil
	default:
		return arg.Arg{}, diag.Errorf(diag.InternalError, tree.Line(), "walker: literalArg of non-literal token %v", tree.GetType())
	}
}

func isFloatKind(t *dftype.Type) bool {
	switch t.Kind() {
	case dftype.KindPrimFuture, dftype.KindPrimValue, dftype.KindPrimUpdateable:
		return t.PrimKind() == dftype.Float
	default:
		return false
	}
}

func assignLiteralArg(wc *Context, out *dftype.Var, lit arg.Arg) error {
	switch out.Type.Kind() {
	case dftype.KindPrimFuture:
		wc.Backend.AssignScalar(out, lit)
		return nil
	case dftype.KindPrimValue:
		sub, err := copySubFor(out.Type)
		if err != nil {
			return err
		}
		wc.Backend.LocalOp(sub, out, []arg.Arg{lit})
		return nil
	default:
		return diag.Errorf(diag.TypeError, 0, "walker: cannot assign a literal into %s", out.Type)
	}
}
