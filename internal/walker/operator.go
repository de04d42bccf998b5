package walker

import (
	"strconv"

	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/dfast"
	"github.com/dfcompiler/dfmid/internal/diag"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

func evalOperator(wc *Context, tree dfast.Tree, outs []*dftype.Var, renames Renames) error {
	out, err := singleOut(tree, outs)
	if err != nil {
		return err
	}
	if lit, ok := foldUnaryNegLiteral(tree); ok {
		return assignLiteralArg(wc, out, lit)
	}

	sub, operandKind, err := resolveOperator(tree.GetText(), tree.GetChildCount(), out.Type, tree.Line())
	if err != nil {
		return err
	}
	operandType := dftype.PrimFuture(operandKind)

	ins := make([]arg.Arg, tree.GetChildCount())
	for i := range ins {
		a, err := eval(wc, tree.Child(i), operandType, renames)
		if err != nil {
			return err
		}
		ins[i] = a
	}
	wc.Backend.AsyncOp(sub, out, ins, nil)
	return nil
}

// foldUnaryNegLiteral recognizes "-<int or float literal>" and folds
// it to a constant directly, avoiding an ASYNC_OP for something the
// walker can resolve at lowering time.
func foldUnaryNegLiteral(tree dfast.Tree) (arg.Arg, bool) {
	if tree.GetText() != "-" || tree.GetChildCount() != 1 {
		return arg.Arg{}, false
	}
	child := tree.Child(0)
	switch child.GetType() {
	case dfast.IntLiteral:
		n, err := strconv.ParseInt(child.GetText(), 10, 64)
		if err != nil {
			return arg.Arg{}, false
		}
		return arg.Int(-n), true
	case dfast.FloatLiteral:
		f, err := strconv.ParseFloat(child.GetText(), 64)
		if err != nil {
			return arg.Arg{}, false
		}
		return arg.FloatVal(-f), true
	default:
		return arg.Arg{}, false
	}
}

// resolveOperator maps a surface operator symbol, arity and output
// kind to the Builtin Sub opcode it lowers to and the primitive kind
// its operands must be evaluated at. Comparisons and logical operators
// fix their operand kind independently of the output kind (which is
// always Bool for them); + and - share operand and output kind, and *
// always lowers to MUL_INT with int operands.
func resolveOperator(text string, arity int, outType *dftype.Type, line int) (sub string, operandKind dftype.PrimKind, err error) {
	outKind := dftype.Void
	if outType.Kind() == dftype.KindPrimFuture || outType.Kind() == dftype.KindPrimValue {
		outKind = outType.PrimKind()
	}
	switch text {
	case "+":
		if arity != 2 {
			return "", 0, diag.Errorf(diag.TypeError, line, "walker: operator %q requires 2 operands, got %d", text, arity)
		}
		if outKind == dftype.Float {
			return "PLUS_FLOAT", dftype.Float, nil
		}
		return "PLUS_INT", dftype.Int, nil
	case "-":
		if arity != 2 {
			return "", 0, diag.Errorf(diag.TypeError, line, "walker: operator %q requires 2 operands, got %d", text, arity)
		}
		if outKind == dftype.Float {
			return "MINUS_FLOAT", dftype.Float, nil
		}
		return "MINUS_INT", dftype.Int, nil
	case "*":
		if arity != 2 {
			return "", 0, diag.Errorf(diag.TypeError, line, "walker: operator %q requires 2 operands, got %d", text, arity)
		}
		return "MUL_INT", dftype.Int, nil
	case "&&":
		if arity != 2 {
			return "", 0, diag.Errorf(diag.TypeError, line, "walker: operator %q requires 2 operands, got %d", text, arity)
		}
		return "AND", dftype.Bool, nil
	case "||":
		if arity != 2 {
			return "", 0, diag.Errorf(diag.TypeError, line, "walker: operator %q requires 2 operands, got %d", text, arity)
		}
		return "OR", dftype.Bool, nil
	case "!":
		if arity != 1 {
			return "", 0, diag.Errorf(diag.TypeError, line, "walker: operator %q requires 1 operand, got %d", text, arity)
		}
		return "NOT", dftype.Bool, nil
	case "<=":
		if arity != 2 {
			return "", 0, diag.Errorf(diag.TypeError, line, "walker: operator %q requires 2 operands, got %d", text, arity)
		}
		return "LESS_EQ", dftype.Int, nil
	case ">=":
		if arity != 2 {
			return "", 0, diag.Errorf(diag.TypeError, line, "walker: operator %q requires 2 operands, got %d", text, arity)
		}
		return "GREATER_EQ", dftype.Int, nil
	default:
		return "", 0, diag.Errorf(diag.TypeError, line, "walker: unsupported operator %q", text)
	}
}
