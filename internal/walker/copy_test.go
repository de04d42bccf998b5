package walker

import (
	"testing"

	"github.com/dfcompiler/dfmid/internal/ctx"
	"github.com/dfcompiler/dfmid/internal/dftype"
	"github.com/dfcompiler/dfmid/internal/ir"
)

func TestCopyByValueScalarEmitsAsyncCopy(t *testing.T) {
	intFuture := dftype.PrimFuture(dftype.Int)
	h := newHarness(t, []ctx.TypedName{{Name: "x", Type: intFuture}}, []ctx.TypedName{{Name: "y", Type: intFuture}})
	x, y := h.input("x"), h.input("y")

	if err := copyByValue(h.wc, x, y); err != nil {
		t.Fatalf("copyByValue() error = %v", err)
	}
	if n := h.countOps(ir.OpAsyncOp); n != 1 {
		t.Errorf("copying a future scalar should emit one ASYNC_OP (COPY_INT), got %d", n)
	}
}

func TestCopyByValueScalarLocalValueUsesLocalOp(t *testing.T) {
	intVal := dftype.PrimValue(dftype.Int)
	h := newHarness(t, []ctx.TypedName{{Name: "x", Type: intVal}}, []ctx.TypedName{{Name: "y", Type: intVal}})
	x, y := h.input("x"), h.input("y")

	if err := copyByValue(h.wc, x, y); err != nil {
		t.Fatalf("copyByValue() error = %v", err)
	}
	if n := h.countOps(ir.OpLocalOp); n != 1 {
		t.Errorf("copying a local-value scalar should emit one LOCAL_OP, got %d", n)
	}
}

func TestCopyByValueFileGoesThroughCopyFile(t *testing.T) {
	fileT := dftype.PrimFuture(dftype.File)
	h := newHarness(t, []ctx.TypedName{{Name: "x", Type: fileT}}, []ctx.TypedName{{Name: "y", Type: fileT}})
	x, y := h.input("x"), h.input("y")

	if err := copyByValue(h.wc, x, y); err != nil {
		t.Fatalf("copyByValue() error = %v", err)
	}
	if n := h.countOps(ir.OpCopyFile); n != 1 {
		t.Errorf("copying a File scalar should emit one COPY_FILE, got %d", n)
	}
}

func TestCopyFileVarRejectsMappedDestination(t *testing.T) {
	fileT := dftype.PrimFuture(dftype.File)
	h := newHarness(t, []ctx.TypedName{{Name: "x", Type: fileT}}, []ctx.TypedName{{Name: "y", Type: fileT}, {Name: "name", Type: dftype.PrimFuture(dftype.String)}})
	x, y, name := h.input("x"), h.input("y"), h.input("name")
	y.SetMapping(name)

	err := copyFileVar(h.wc, x, y)
	if err == nil {
		t.Fatal("copyFileVar() = nil error, want an error copying into a mapped file")
	}
}

func TestCopyContainerArrayEmitsForeachAndInsert(t *testing.T) {
	arrT := dftype.ArrayOf(dftype.PrimValue(dftype.Int), dftype.PrimFuture(dftype.Int))
	h := newHarness(t, []ctx.TypedName{{Name: "src", Type: arrT}}, []ctx.TypedName{{Name: "dst", Type: arrT}})
	src, dst := h.input("src"), h.input("dst")

	if err := copyContainer(h.wc, src, dst); err != nil {
		t.Fatalf("copyContainer() error = %v", err)
	}
	if n := h.countOps(ir.OpArrayInsertFuture); n != 1 {
		t.Errorf("copying an array should emit one ARRAY_INSERT_FUTURE inside the foreach, got %d", n)
	}
}

func TestCopyContainerBagEmitsBagInsert(t *testing.T) {
	bagT := dftype.BagOf(dftype.PrimFuture(dftype.Int))
	h := newHarness(t, []ctx.TypedName{{Name: "src", Type: bagT}}, []ctx.TypedName{{Name: "dst", Type: bagT}})
	src, dst := h.input("src"), h.input("dst")

	if err := copyContainer(h.wc, src, dst); err != nil {
		t.Fatalf("copyContainer() error = %v", err)
	}
	if n := h.countOps(ir.OpBagInsert); n != 1 {
		t.Errorf("copying a bag should emit one BAG_INSERT, got %d", n)
	}
}

func TestCopyRefVarRetrievesAndReassigns(t *testing.T) {
	refT := dftype.RefOf(dftype.PrimFuture(dftype.Int))
	h := newHarness(t, []ctx.TypedName{{Name: "src", Type: refT}}, []ctx.TypedName{{Name: "dst", Type: refT}})
	src, dst := h.input("src"), h.input("dst")

	if err := copyRefVar(h.wc, src, dst); err != nil {
		t.Fatalf("copyRefVar() error = %v", err)
	}
	if n := h.countOps(ir.OpLoadRef); n != 1 {
		t.Errorf("copying a ref should emit one LOAD_REF, got %d", n)
	}
	if n := h.countOps(ir.OpStoreRef); n != 1 {
		t.Errorf("copying a ref should emit one STORE_REF, got %d", n)
	}
}

func TestCopyFromUpdateableSnapshotsThenAssigns(t *testing.T) {
	updT := dftype.PrimUpdateable(dftype.Float)
	dstT := dftype.PrimFuture(dftype.Float)
	h := newHarness(t, []ctx.TypedName{{Name: "u", Type: updT}}, []ctx.TypedName{{Name: "dst", Type: dstT}})
	u, dst := h.input("u"), h.input("dst")

	if err := copyFromUpdateable(h.wc, u, dst); err != nil {
		t.Fatalf("copyFromUpdateable() error = %v", err)
	}
	if n := h.countOps(ir.OpLatestValue); n != 1 {
		t.Errorf("snapshotting an updateable should emit one LATEST_VALUE, got %d", n)
	}
	if n := h.countOps(ir.OpStoreScalar); n != 1 {
		t.Errorf("snapshotting an updateable should assign the snapshot with one STORE_SCALAR, got %d", n)
	}
}

func TestCopyByValueNestedStructRecursesPerField(t *testing.T) {
	innerT := dftype.StructOf("Inner", []dftype.StructField{{Name: "n", Type: dftype.PrimFuture(dftype.Int)}})
	outerT := dftype.StructOf("Outer", []dftype.StructField{
		{Name: "a", Type: dftype.PrimFuture(dftype.Int)},
		{Name: "inner", Type: innerT},
	})
	h := newHarness(t, []ctx.TypedName{{Name: "src", Type: outerT}}, []ctx.TypedName{{Name: "dst", Type: outerT}})
	src, dst := h.input("src"), h.input("dst")

	if err := copyStruct(h.wc, src, dst, nil, nil); err != nil {
		t.Fatalf("copyStruct() error = %v", err)
	}
	// one StructRefLookup for each dst field slot (a, inner) plus one
	// nested one for inner.n, plus one for src's nested alias into inner.
	if n := h.countOps(ir.OpStructRefLookup); n < 3 {
		t.Errorf("nested struct copy should emit multiple STRUCT_REF_LOOKUPs, got %d", n)
	}
	if n := h.countOps(ir.OpStructLookup); n != 2 {
		t.Errorf("nested struct copy should emit one STRUCT_LOOKUP per scalar leaf (a, inner.n), got %d", n)
	}
}
