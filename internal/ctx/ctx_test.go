package ctx

import (
	"testing"

	"github.com/dfcompiler/dfmid/internal/dftype"
)

func TestRegistryDefineAndLookup(t *testing.T) {
	r := NewRegistry()
	sig := &FuncSig{Name: "plus_int", Props: NewPropSet(Builtin), OpEquivalent: "PLUS_INT"}
	r.Define(sig)

	got, ok := r.Lookup("plus_int")
	if !ok || got != sig {
		t.Fatalf("Lookup() = (%v, %v), want (sig, true)", got, ok)
	}

	if _, ok := r.Lookup("nope"); ok {
		t.Error("Lookup() of an undefined function = true, want false")
	}
}

func TestRegistryDefineDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Define(&FuncSig{Name: "f"})

	defer func() {
		if recover() == nil {
			t.Error("Define() of a duplicate name did not panic")
		}
	}()
	r.Define(&FuncSig{Name: "f"})
}

func TestRegistryHasProp(t *testing.T) {
	r := NewRegistry()
	r.Define(&FuncSig{Name: "f", Props: NewPropSet(Builtin, Sync)})

	if !r.HasProp("f", Builtin) {
		t.Error("HasProp(f, Builtin) = false, want true")
	}
	if r.HasProp("f", Composite) {
		t.Error("HasProp(f, Composite) = true, want false")
	}
}

func TestRegistryHasPropUndefinedPanics(t *testing.T) {
	r := NewRegistry()
	defer func() {
		if recover() == nil {
			t.Error("HasProp() of an undefined function did not panic")
		}
	}()
	r.HasProp("nope", Builtin)
}

func TestRegistryIsIntrinsic(t *testing.T) {
	r := NewRegistry()
	r.Define(&FuncSig{Name: "f", Intrinsic: true})
	r.Define(&FuncSig{Name: "g"})

	if !r.IsIntrinsic("f") {
		t.Error("IsIntrinsic(f) = false, want true")
	}
	if r.IsIntrinsic("g") {
		t.Error("IsIntrinsic(g) = true, want false")
	}
	if r.IsIntrinsic("nope") {
		t.Error("IsIntrinsic() of an undefined function = true, want false")
	}
}

func TestGlobalDeclareAndLookupConst(t *testing.T) {
	g := NewGlobal(NewRegistry())
	intFuture := dftype.PrimFuture(dftype.Int)

	v := g.DeclareConst("MAX", intFuture)
	if v.Name != "MAX" || v.Alloc != dftype.GlobalConst || v.Def != dftype.DefGlobalConst {
		t.Errorf("DeclareConst() = %+v, want name MAX, Alloc GlobalConst, Def DefGlobalConst", v)
	}

	got, ok := g.LookupConst("MAX")
	if !ok || got != v {
		t.Fatalf("LookupConst() = (%v, %v), want (v, true)", got, ok)
	}
	if _, ok := g.LookupConst("MISSING"); ok {
		t.Error("LookupConst() of an undeclared constant = true, want false")
	}
}

func TestGlobalDeclareConstDuplicatePanics(t *testing.T) {
	g := NewGlobal(NewRegistry())
	g.DeclareConst("X", dftype.PrimFuture(dftype.Int))

	defer func() {
		if recover() == nil {
			t.Error("DeclareConst() of a duplicate name did not panic")
		}
	}()
	g.DeclareConst("X", dftype.PrimFuture(dftype.Int))
}

func TestGlobalWarnAccumulatesAndSnapshots(t *testing.T) {
	g := NewGlobal(NewRegistry())
	g.Warn(10, "deprecated function %q called", "old_fn")
	g.Warn(20, "assertion provably false")

	got := g.Warnings()
	if len(got) != 2 {
		t.Fatalf("Warnings() returned %d entries, want 2", len(got))
	}
	if got[0].Line != 10 || got[0].Message != `deprecated function "old_fn" called` {
		t.Errorf("Warnings()[0] = %+v, unexpected", got[0])
	}
	if got[1].Line != 20 {
		t.Errorf("Warnings()[1].Line = %d, want 20", got[1].Line)
	}

	// Mutating the returned slice must not affect the internal state.
	got[0].Message = "tampered"
	if fresh := g.Warnings(); fresh[0].Message == "tampered" {
		t.Error("Warnings() returned a slice aliasing internal state")
	}
}

func TestFunctionDeclareInputOutputAndLookupViaScope(t *testing.T) {
	g := NewGlobal(NewRegistry())
	fn := NewFunction(g, "f", NewPropSet(Sync))

	in := fn.DeclareInput("x", dftype.PrimFuture(dftype.Int))
	out := fn.DeclareOutput("y", dftype.PrimFuture(dftype.Int))

	if in.Def != dftype.Inputarg || out.Def != dftype.Outputarg {
		t.Errorf("DeclareInput/DeclareOutput Def = %v/%v, want Inputarg/Outputarg", in.Def, out.Def)
	}

	scope := NewFunctionScope(fn)
	got, ok := scope.LookupVar("x")
	if !ok || got != in {
		t.Fatalf("LookupVar(x) = (%v, %v), want (in, true)", got, ok)
	}
	got, ok = scope.LookupVar("y")
	if !ok || got != out {
		t.Fatalf("LookupVar(y) = (%v, %v), want (out, true)", got, ok)
	}
}

func TestFunctionVarByID(t *testing.T) {
	g := NewGlobal(NewRegistry())
	fn := NewFunction(g, "f", nil)
	v := fn.CreateTmp(dftype.PrimFuture(dftype.Int))

	if got := fn.VarByID(v.ID); got != v {
		t.Errorf("VarByID(%d) = %v, want %v", v.ID, got, v)
	}
}

func TestFunctionVarByIDOutOfRangePanics(t *testing.T) {
	g := NewGlobal(NewRegistry())
	fn := NewFunction(g, "f", nil)

	defer func() {
		if recover() == nil {
			t.Error("VarByID() out of range did not panic")
		}
	}()
	fn.VarByID(99)
}

func TestFunctionFreshWrapperNameIncrements(t *testing.T) {
	g := NewGlobal(NewRegistry())
	fn := NewFunction(g, "f", nil)

	if got := fn.FreshWrapperName("wrapped"); got != "wrapped_wrap1" {
		t.Errorf("FreshWrapperName() = %q, want \"wrapped_wrap1\"", got)
	}
	if got := fn.FreshWrapperName("wrapped"); got != "wrapped_wrap2" {
		t.Errorf("FreshWrapperName() = %q, want \"wrapped_wrap2\"", got)
	}
	if got := fn.FreshWrapperName("other"); got != "other_wrap3" {
		t.Errorf("FreshWrapperName() = %q, want \"other_wrap3\" (counter is per-function, not per-base-name)", got)
	}
}

func TestFunctionVarCreatorNamingDiscipline(t *testing.T) {
	g := NewGlobal(NewRegistry())
	fn := NewFunction(g, "f", nil)
	intFuture := dftype.PrimFuture(dftype.Int)

	tmp := fn.CreateTmp(intFuture)
	if tmp.Name != "tmp1" || tmp.Alloc != dftype.Stack {
		t.Errorf("CreateTmp() = %+v, want name tmp1, Alloc Stack for a future type", tmp)
	}

	localVal := fn.CreateTmp(dftype.PrimValue(dftype.Int))
	if localVal.Alloc != dftype.Local {
		t.Errorf("CreateTmp() of a PrimValue type Alloc = %v, want Local", localVal.Alloc)
	}

	alias := fn.CreateAliasVar(intFuture)
	if alias.Name != "alias1" || alias.Alloc != dftype.Alias {
		t.Errorf("CreateAliasVar() = %+v, want name alias1, Alloc Alias", alias)
	}

	local := fn.CreateLocalValueVar(intFuture)
	if local.Name != "v1" || local.Alloc != dftype.Local {
		t.Errorf("CreateLocalValueVar() = %+v, want name v1, Alloc Local", local)
	}

	field := fn.CreateStructFieldTmp("Point", []string{"inner", "x"}, intFuture)
	if field.Name != "f_Point_inner_x" {
		t.Errorf("CreateStructFieldTmp() name = %q, want \"f_Point_inner_x\"", field.Name)
	}

	filename := fn.CreateFilenameAlias(intFuture)
	if filename.Name != "filename_of_2" {
		t.Errorf("CreateFilenameAlias() name = %q, want \"filename_of_2\" (shares the alias counter)", filename.Name)
	}
}

func TestScopeDeclareVariableRejectsDuplicateInSameScope(t *testing.T) {
	g := NewGlobal(NewRegistry())
	fn := NewFunction(g, "f", nil)
	scope := NewFunctionScope(fn)
	v1 := dftype.New(1, "x", dftype.PrimFuture(dftype.Int), dftype.Local, dftype.LocalUser)
	v2 := dftype.New(2, "x", dftype.PrimFuture(dftype.Int), dftype.Local, dftype.LocalUser)

	if err := scope.DeclareVariable(v1); err != nil {
		t.Fatalf("DeclareVariable() error = %v", err)
	}
	if err := scope.DeclareVariable(v2); err == nil {
		t.Error("DeclareVariable() of a duplicate name in the same scope = nil error, want an error")
	}
}

func TestScopeChildShadowsParent(t *testing.T) {
	g := NewGlobal(NewRegistry())
	fn := NewFunction(g, "f", nil)
	parent := NewFunctionScope(fn)
	outer := dftype.New(1, "x", dftype.PrimFuture(dftype.Int), dftype.Local, dftype.LocalUser)
	if err := parent.DeclareVariable(outer); err != nil {
		t.Fatalf("DeclareVariable() error = %v", err)
	}

	child := parent.NewChild()
	inner := dftype.New(2, "x", dftype.PrimFuture(dftype.Int), dftype.Local, dftype.LocalUser)
	if err := child.DeclareVariable(inner); err != nil {
		t.Fatalf("DeclareVariable() in child scope error = %v", err)
	}

	got, ok := child.LookupVar("x")
	if !ok || got != inner {
		t.Errorf("LookupVar(x) from child = (%v, %v), want the shadowing inner var", got, ok)
	}
	got, ok = parent.LookupVar("x")
	if !ok || got != outer {
		t.Errorf("LookupVar(x) from parent = (%v, %v), want the outer var unaffected by the child's shadow", got, ok)
	}
}

func TestScopeLookupVarFallsThroughToGlobalConst(t *testing.T) {
	g := NewGlobal(NewRegistry())
	c := g.DeclareConst("PI", dftype.PrimFuture(dftype.Float))
	fn := NewFunction(g, "f", nil)
	scope := NewFunctionScope(fn)

	got, ok := scope.LookupVar("PI")
	if !ok || got != c {
		t.Errorf("LookupVar(PI) = (%v, %v), want the global constant", got, ok)
	}
}

func TestScopeGetVisibleVariablesAndIsDeclaredHere(t *testing.T) {
	g := NewGlobal(NewRegistry())
	fn := NewFunction(g, "f", nil)
	in := fn.DeclareInput("x", dftype.PrimFuture(dftype.Int))
	parent := NewFunctionScope(fn)
	local := dftype.New(100, "y", dftype.PrimFuture(dftype.Int), dftype.Local, dftype.LocalUser)
	if err := parent.DeclareVariable(local); err != nil {
		t.Fatalf("DeclareVariable() error = %v", err)
	}
	child := parent.NewChild()

	visible := child.GetVisibleVariables()
	foundLocal, foundInput := false, false
	for _, v := range visible {
		if v == local {
			foundLocal = true
		}
		if v == in {
			foundInput = true
		}
	}
	if !foundLocal || !foundInput {
		t.Errorf("GetVisibleVariables() = %v, want it to include both the parent's local and the function input", visible)
	}

	if !parent.IsDeclaredHere(local) {
		t.Error("IsDeclaredHere(local) from parent = false, want true")
	}
	if child.IsDeclaredHere(local) {
		t.Error("IsDeclaredHere(local) from child = true, want false (declared in the parent, not the child)")
	}
}

func TestFuncPropSetHasIsNilSafe(t *testing.T) {
	var s PropSet
	if s.Has(Builtin) {
		t.Error("nil PropSet.Has() = true, want false")
	}

	s = NewPropSet(Builtin, Checkpointed)
	if !s.Has(Builtin) || !s.Has(Checkpointed) {
		t.Error("PropSet.Has() missing a property it was constructed with")
	}
	if s.Has(Composite) {
		t.Error("PropSet.Has(Composite) = true, want false")
	}
}

func TestFuncPropStringKnownAndUnknown(t *testing.T) {
	if got := Builtin.String(); got != "builtin" {
		t.Errorf("Builtin.String() = %q, want \"builtin\"", got)
	}
	if got := FuncProp(999).String(); got != "unknown_prop" {
		t.Errorf("FuncProp(999).String() = %q, want \"unknown_prop\"", got)
	}
}
