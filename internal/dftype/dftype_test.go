package dftype

import "testing"

func TestEqualScalarAndContainerTypes(t *testing.T) {
	a := PrimFuture(Int)
	b := PrimFuture(Int)
	if !Equal(a, b) {
		t.Error("Equal() of two future<int> types = false, want true")
	}
	if Equal(a, PrimFuture(Float)) {
		t.Error("Equal(future<int>, future<float>) = true, want false")
	}
	if Equal(a, PrimValue(Int)) {
		t.Error("Equal(future<int>, value<int>) = true, want false")
	}

	arrA := ArrayOf(PrimValue(Int), PrimFuture(Int))
	arrB := ArrayOf(PrimValue(Int), PrimFuture(Int))
	if !Equal(arrA, arrB) {
		t.Error("Equal() of two structurally identical array types = false, want true")
	}
	arrC := ArrayOf(PrimValue(Int), PrimFuture(Float))
	if Equal(arrA, arrC) {
		t.Error("Equal() of arrays with different element types = true, want false")
	}
}

func TestEqualStructsComparesFieldsInOrder(t *testing.T) {
	s1 := StructOf("Point", []StructField{{Name: "x", Type: PrimFuture(Int)}, {Name: "y", Type: PrimFuture(Int)}})
	s2 := StructOf("Point", []StructField{{Name: "x", Type: PrimFuture(Int)}, {Name: "y", Type: PrimFuture(Int)}})
	if !Equal(s1, s2) {
		t.Error("Equal() of two identical struct types = false, want true")
	}

	reordered := StructOf("Point", []StructField{{Name: "y", Type: PrimFuture(Int)}, {Name: "x", Type: PrimFuture(Int)}})
	if Equal(s1, reordered) {
		t.Error("Equal() of structs with fields in a different order = true, want false (order-sensitive)")
	}

	differentName := StructOf("Other", s1.Fields())
	if Equal(s1, differentName) {
		t.Error("Equal() of structs with different names = true, want false")
	}
}

func TestEqualUnionsCompareAlternativesInOrder(t *testing.T) {
	u1 := UnionOf(PrimFuture(Int), PrimFuture(Float))
	u2 := UnionOf(PrimFuture(Int), PrimFuture(Float))
	if !Equal(u1, u2) {
		t.Error("Equal() of two identical unions = false, want true")
	}
	u3 := UnionOf(PrimFuture(Float), PrimFuture(Int))
	if Equal(u1, u3) {
		t.Error("Equal() of unions with alternatives in a different order = true, want false")
	}
}

func TestEqualNilHandling(t *testing.T) {
	if !Equal(nil, nil) {
		t.Error("Equal(nil, nil) = false, want true")
	}
	if Equal(nil, PrimFuture(Int)) {
		t.Error("Equal(nil, t) = true, want false")
	}
}

func TestPrimUpdateablePanicsOnNonFloat(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("PrimUpdateable(Int) did not panic")
		}
	}()
	PrimUpdateable(Int)
}

func TestPrimUpdateableAcceptsFloat(t *testing.T) {
	ty := PrimUpdateable(Float)
	if ty.Kind() != KindPrimUpdateable || ty.PrimKind() != Float {
		t.Errorf("PrimUpdateable(Float) = %v, want kind KindPrimUpdateable prim Float", ty)
	}
}

func TestAccessorPanicsOnWrongKind(t *testing.T) {
	intFuture := PrimFuture(Int)

	mustPanic := func(name string, f func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s did not panic on a mismatched kind", name)
			}
		}()
		f()
	}

	mustPanic("PrimKind", func() { RefOf(intFuture).PrimKind() })
	mustPanic("Elem", func() { intFuture.Elem() })
	mustPanic("Key", func() { intFuture.Key() })
	mustPanic("StructName", func() { intFuture.StructName() })
	mustPanic("Fields", func() { intFuture.Fields() })
	mustPanic("Alternatives", func() { intFuture.Alternatives() })
	mustPanic("DerefResultType", func() { DerefResultType(intFuture) })
	mustPanic("ContainerElemType", func() { ContainerElemType(intFuture) })
	mustPanic("ArrayKeyType", func() { ArrayKeyType(intFuture) })
	mustPanic("FutureType", func() { FutureType(intFuture) })
}

func TestFieldLookup(t *testing.T) {
	s := StructOf("Point", []StructField{{Name: "x", Type: PrimFuture(Int)}})
	f, ok := s.Field("x")
	if !ok || f.Name != "x" {
		t.Errorf("Field(x) = (%+v, %v), want the x field", f, ok)
	}
	if _, ok := s.Field("y"); ok {
		t.Error("Field(y) = true, want false for an undeclared field")
	}
}

func TestIsPredicates(t *testing.T) {
	intFuture := PrimFuture(Int)
	ref := RefOf(intFuture)
	arr := ArrayOf(PrimValue(Int), intFuture)
	bag := BagOf(intFuture)
	upd := PrimUpdateable(Float)
	union := UnionOf(intFuture, PrimFuture(Float))

	if !IsPrimFuture(intFuture) || IsPrimFuture(ref) {
		t.Error("IsPrimFuture() misclassified")
	}
	if !IsRef(ref) || IsRef(intFuture) {
		t.Error("IsRef() misclassified")
	}
	if !IsContainer(arr) || !IsContainer(bag) || IsContainer(ref) {
		t.Error("IsContainer() misclassified")
	}
	if !IsUpdateable(upd) || IsUpdateable(intFuture) {
		t.Error("IsUpdateable() misclassified")
	}
	if !IsUnion(union) || IsUnion(intFuture) {
		t.Error("IsUnion() misclassified")
	}
}

func TestAssignableToEqualTypes(t *testing.T) {
	if !AssignableTo(PrimFuture(Int), PrimFuture(Int)) {
		t.Error("AssignableTo() of equal types = false, want true")
	}
	if AssignableTo(PrimFuture(Int), PrimFuture(Float)) {
		t.Error("AssignableTo() of unequal non-union types = true, want false")
	}
}

func TestAssignableToUnionWidening(t *testing.T) {
	u := UnionOf(PrimFuture(Int), PrimFuture(Bool))
	if !AssignableTo(u, PrimFuture(Int)) {
		t.Error("AssignableTo(union<int|bool>, int) = false, want true (int is an alternative)")
	}
	if AssignableTo(u, PrimFuture(Float)) {
		t.Error("AssignableTo(union<int|bool>, float) = true, want false (no matching alternative)")
	}
}

func TestConcretizeUnionPicksFirstMatch(t *testing.T) {
	u := UnionOf(PrimFuture(Bool), PrimFuture(Int), PrimFuture(Int))
	got, ok := ConcretizeUnion(u, PrimFuture(Int))
	if !ok {
		t.Fatal("ConcretizeUnion() = false, want true")
	}
	if got.PrimKind() != Int {
		t.Errorf("ConcretizeUnion() = %v, want the first int alternative", got)
	}
}

func TestConcretizeUnionNoMatch(t *testing.T) {
	u := UnionOf(PrimFuture(Bool), PrimFuture(String))
	_, ok := ConcretizeUnion(u, PrimFuture(Int))
	if ok {
		t.Error("ConcretizeUnion() = true, want false when no alternative matches")
	}
}

func TestConcretizeUnionNonUnionInputFallsBackToAssignableTo(t *testing.T) {
	intFuture := PrimFuture(Int)
	got, ok := ConcretizeUnion(intFuture, intFuture)
	if !ok || got != intFuture {
		t.Errorf("ConcretizeUnion() of a non-union = (%v, %v), want (intFuture, true)", got, ok)
	}
	if _, ok := ConcretizeUnion(intFuture, PrimFuture(Float)); ok {
		t.Error("ConcretizeUnion() of a mismatched non-union = true, want false")
	}
}

func TestUnpackedContainerTypeStripsFutures(t *testing.T) {
	arr := ArrayOf(PrimValue(Int), PrimFuture(Int))
	got := UnpackedContainerType(arr)
	if got.Kind() != KindArray || !Equal(got.Elem(), PrimValue(Int)) {
		t.Errorf("UnpackedContainerType(array<value<int>,future<int>>) = %v, want element value<int>", got)
	}

	nested := ArrayOf(PrimValue(Int), ArrayOf(PrimValue(Int), PrimFuture(Bool)))
	got = UnpackedContainerType(nested)
	inner := got.Elem()
	if !Equal(inner.Elem(), PrimValue(Bool)) {
		t.Errorf("UnpackedContainerType() did not recurse into the nested array, got %v", got)
	}

	s := StructOf("P", []StructField{{Name: "f", Type: PrimFuture(Int)}})
	gotStruct := UnpackedContainerType(s)
	f, _ := gotStruct.Field("f")
	if !Equal(f.Type, PrimValue(Int)) {
		t.Errorf("UnpackedContainerType(struct) did not strip the future from field f, got %v", f.Type)
	}
}

func TestFutureTypeRoundTrip(t *testing.T) {
	val := PrimValue(Bool)
	fut := FutureType(val)
	if fut.Kind() != KindPrimFuture || fut.PrimKind() != Bool {
		t.Errorf("FutureType(value<bool>) = %v, want future<bool>", fut)
	}
}

func TestTypeStringRendersEachKind(t *testing.T) {
	cases := []struct {
		ty   *Type
		want string
	}{
		{PrimFuture(Int), "future<int>"},
		{PrimValue(Float), "value<float>"},
		{PrimUpdateable(Float), "updateable<float>"},
		{RefOf(PrimFuture(Int)), "ref<future<int>>"},
		{ArrayOf(PrimValue(Int), PrimFuture(Bool)), "array<value<int>,future<bool>>"},
		{BagOf(PrimFuture(String)), "bag<future<string>>"},
		{StructOf("Point", nil), "struct Point"},
		{UnionOf(PrimFuture(Int), PrimFuture(Bool)), "union<future<int>|future<bool>>"},
	}
	for _, c := range cases {
		if got := c.ty.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestPrimKindStringUnknown(t *testing.T) {
	if got := PrimKind(999).String(); got != "PrimKind(999)" {
		t.Errorf("PrimKind(999).String() = %q, want \"PrimKind(999)\"", got)
	}
}

func TestCheckCopyAssignable(t *testing.T) {
	if err := CheckCopy(PrimFuture(Int), PrimFuture(Int), "test"); err != nil {
		t.Errorf("CheckCopy() of identical types error = %v, want nil", err)
	}
}

func TestCheckCopyMismatchReturnsTypeMismatchError(t *testing.T) {
	err := CheckCopy(PrimFuture(Int), PrimFuture(Float), "array element")
	if err == nil {
		t.Fatal("CheckCopy() = nil, want a *TypeMismatchError")
	}
	var tme *TypeMismatchError
	if !asTypeMismatch(err, &tme) {
		t.Fatalf("CheckCopy() error type = %T, want *TypeMismatchError", err)
	}
	if tme.Context != "array element" {
		t.Errorf("TypeMismatchError.Context = %q, want \"array element\"", tme.Context)
	}
	if tme.Error() == "" {
		t.Error("TypeMismatchError.Error() returned an empty message")
	}
}

func asTypeMismatch(err error, target **TypeMismatchError) bool {
	tme, ok := err.(*TypeMismatchError)
	if ok {
		*target = tme
	}
	return ok
}
