package ir

import (
	"testing"

	"github.com/dfcompiler/dfmid/internal/arg"
)

func TestResultMapPublishAndFind(t *testing.T) {
	m := NewResultMap(false)
	y := testVar(1, "y")
	rv := ResultVal{Op: OpLocalOp, Inputs: []arg.Arg{arg.Str(string(PlusInt)), arg.Int(1), arg.Int(2)}, LocVar: y}
	m.Publish(rv)

	got, ok := m.Find(OpLocalOp, rv.Inputs)
	if !ok {
		t.Fatal("Find() ok = false, want true for a published key")
	}
	if got.LocVar != y {
		t.Errorf("Find().LocVar = %v, want y", got.LocVar)
	}

	def, ok := m.DefinitionOf(y)
	if !ok || def.LocVar != y {
		t.Errorf("DefinitionOf(y) = %v, %v, want the published result", def, ok)
	}
}

func TestResultMapFindMissReturnsFalse(t *testing.T) {
	m := NewResultMap(false)
	_, ok := m.Find(OpLocalOp, []arg.Arg{arg.Int(1)})
	if ok {
		t.Error("Find() on an empty map should report ok=false")
	}
	x := testVar(1, "x")
	if _, ok := m.DefinitionOf(x); ok {
		t.Error("DefinitionOf() for an unpublished var should report ok=false")
	}
}

func TestResultMapAlgebraEnabled(t *testing.T) {
	if NewResultMap(true).AlgebraEnabled() != true {
		t.Error("AlgebraEnabled() = false, want true")
	}
	if NewResultMap(false).AlgebraEnabled() != false {
		t.Error("AlgebraEnabled() = true, want false")
	}
}

func TestResultMapDistinguishesDifferentInputs(t *testing.T) {
	m := NewResultMap(false)
	m.Publish(ResultVal{Op: OpLocalOp, Inputs: []arg.Arg{arg.Int(1)}})

	if _, ok := m.Find(OpLocalOp, []arg.Arg{arg.Int(2)}); ok {
		t.Error("Find() matched a result published under different inputs")
	}
}

func TestResultValIsConstLoc(t *testing.T) {
	c := arg.Int(5)
	rv := ResultVal{LocConst: &c}
	if !rv.IsConstLoc() {
		t.Error("IsConstLoc() = false, want true when LocConst is set")
	}
	rv2 := ResultVal{}
	if rv2.IsConstLoc() {
		t.Error("IsConstLoc() = true, want false when LocConst is nil")
	}
}
