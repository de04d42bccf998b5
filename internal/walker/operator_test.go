package walker

import (
	"testing"

	"github.com/dfcompiler/dfmid/internal/ctx"
	"github.com/dfcompiler/dfmid/internal/dfast"
	"github.com/dfcompiler/dfmid/internal/diag"
	"github.com/dfcompiler/dfmid/internal/dftype"
	"github.com/dfcompiler/dfmid/internal/ir"
)

func TestEvalOperatorUnaryNegLiteralFolds(t *testing.T) {
	h := newHarness(t, nil, []ctx.TypedName{{Name: "out", Type: dftype.PrimFuture(dftype.Int)}})
	out := h.input("out")

	neg := dfast.NewNode(dfast.Operator, "-", 1, dfast.NewNode(dfast.IntLiteral, "5", 1))
	if err := EvalToVars(h.wc, neg, []*dftype.Var{out}, nil); err != nil {
		t.Fatalf("EvalToVars() error = %v", err)
	}
	if n := h.countOps(ir.OpAsyncOp); n != 0 {
		t.Errorf("unary-negative-literal should fold directly, not emit an ASYNC_OP, got %d", n)
	}
	if n := h.countOps(ir.OpStoreScalar); n != 1 {
		t.Errorf("unary-negative-literal fold should emit a STORE_SCALAR, got %d", n)
	}
}

func TestFoldUnaryNegLiteralRejectsNonLiteralOperand(t *testing.T) {
	neg := dfast.NewNode(dfast.Operator, "-", 1, dfast.NewNode(dfast.Variable, "x", 1))
	if _, ok := foldUnaryNegLiteral(neg); ok {
		t.Error("foldUnaryNegLiteral() = true, want false for a non-literal operand")
	}

	binary := dfast.NewNode(dfast.Operator, "-", 1,
		dfast.NewNode(dfast.IntLiteral, "1", 1), dfast.NewNode(dfast.IntLiteral, "2", 1))
	if _, ok := foldUnaryNegLiteral(binary); ok {
		t.Error("foldUnaryNegLiteral() = true, want false for a binary minus")
	}
}

func TestEvalOperatorPlusOnInt(t *testing.T) {
	h := newHarness(t, []ctx.TypedName{{Name: "x", Type: dftype.PrimFuture(dftype.Int)}, {Name: "y", Type: dftype.PrimFuture(dftype.Int)}},
		[]ctx.TypedName{{Name: "out", Type: dftype.PrimFuture(dftype.Int)}})
	out := h.input("out")

	tree := dfast.NewNode(dfast.Operator, "+", 1, dfast.NewNode(dfast.Variable, "x", 1), dfast.NewNode(dfast.Variable, "y", 1))
	if err := EvalToVars(h.wc, tree, []*dftype.Var{out}, nil); err != nil {
		t.Fatalf("EvalToVars() error = %v", err)
	}
	if n := h.countOps(ir.OpAsyncOp); n != 1 {
		t.Errorf("x + y should emit one ASYNC_OP, got %d", n)
	}
}

func TestResolveOperatorArityMismatch(t *testing.T) {
	_, _, err := resolveOperator("+", 1, dftype.PrimFuture(dftype.Int), 1)
	if err == nil {
		t.Fatal("resolveOperator() = nil error, want an arity error for unary +")
	}
	if diagCode(t, err) != diag.TypeError {
		t.Errorf("resolveOperator() code = %v, want TypeError", diagCode(t, err))
	}
}

func TestResolveOperatorUnsupported(t *testing.T) {
	_, _, err := resolveOperator("%", 2, dftype.PrimFuture(dftype.Int), 1)
	if err == nil {
		t.Fatal("resolveOperator() = nil error, want an error for an unsupported operator")
	}
	if diagCode(t, err) != diag.TypeError {
		t.Errorf("resolveOperator() code = %v, want TypeError", diagCode(t, err))
	}
}

func TestResolveOperatorComparisonsFixBoolOutputButIntOperands(t *testing.T) {
	sub, kind, err := resolveOperator("<=", 2, dftype.PrimFuture(dftype.Bool), 1)
	if err != nil {
		t.Fatalf("resolveOperator() error = %v", err)
	}
	if sub != "LESS_EQ" || kind != dftype.Int {
		t.Errorf("resolveOperator(<=) = %s, %s, want LESS_EQ, int", sub, kind)
	}
}

func TestResolveOperatorArithmeticSharesOutputKind(t *testing.T) {
	sub, kind, err := resolveOperator("+", 2, dftype.PrimFuture(dftype.Float), 1)
	if err != nil {
		t.Fatalf("resolveOperator() error = %v", err)
	}
	if sub != "PLUS_FLOAT" || kind != dftype.Float {
		t.Errorf("resolveOperator(+, float out) = %s, %s, want PLUS_FLOAT, float", sub, kind)
	}

	sub2, kind2, err := resolveOperator("+", 2, dftype.PrimFuture(dftype.Int), 1)
	if err != nil {
		t.Fatalf("resolveOperator() error = %v", err)
	}
	if sub2 != "PLUS_INT" || kind2 != dftype.Int {
		t.Errorf("resolveOperator(+, int out) = %s, %s, want PLUS_INT, int", sub2, kind2)
	}
}

func TestEvalOperatorNotUnary(t *testing.T) {
	h := newHarness(t, []ctx.TypedName{{Name: "b", Type: dftype.PrimFuture(dftype.Bool)}},
		[]ctx.TypedName{{Name: "out", Type: dftype.PrimFuture(dftype.Bool)}})
	out := h.input("out")

	tree := dfast.NewNode(dfast.Operator, "!", 1, dfast.NewNode(dfast.Variable, "b", 1))
	if err := EvalToVars(h.wc, tree, []*dftype.Var{out}, nil); err != nil {
		t.Fatalf("EvalToVars() error = %v", err)
	}
	if n := h.countOps(ir.OpAsyncOp); n != 1 {
		t.Errorf("!b should emit one ASYNC_OP, got %d", n)
	}
}
