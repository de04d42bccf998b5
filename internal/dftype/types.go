// Package dftype implements the type and variable model described in
// the middle end's data model: the algebra of futures, local values,
// references, containers and structs, and the descriptor attached to
// every variable the walker creates.
package dftype

import "fmt"

// PrimKind is the set of primitive scalar kinds the language supports.
type PrimKind int

const (
	Int PrimKind = iota
	Float
	Bool
	String
	Blob
	Void
	File
)

func (k PrimKind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Blob:
		return "blob"
	case Void:
		return "void"
	case File:
		return "file"
	default:
		return fmt.Sprintf("PrimKind(%d)", int(k))
	}
}

// Kind distinguishes the variants of the Type tagged union.
type Kind int

const (
	KindPrimFuture Kind = iota
	KindPrimValue
	KindPrimUpdateable
	KindRef
	KindArray
	KindBag
	KindStruct
	KindUnion
)

// StructField is one (name, type) pair of a Struct type.
type StructField struct {
	Name string
	Type *Type
}

// Type is the tagged union described in the data model: a future or
// local primitive, an updateable cell, a reference, a container
// (array/bag), a nominal struct, or a transient union of alternatives
// used by the type checker before lowering.
//
// Type values are immutable once constructed and are safe to share.
type Type struct {
	kind Kind

	prim PrimKind // valid for KindPrimFuture/KindPrimValue/KindPrimUpdateable

	elem *Type // Ref.elem, Array.elemT, Bag.elemT

	key *Type // Array.keyT

	structName string
	fields     []StructField

	alternatives []*Type // Union
}

// PrimFuture constructs a single-assignment asynchronous cell of kind k.
func PrimFuture(k PrimKind) *Type { return &Type{kind: KindPrimFuture, prim: k} }

// PrimValue constructs a synchronously available local value of kind k.
func PrimValue(k PrimKind) *Type { return &Type{kind: KindPrimValue, prim: k} }

// PrimUpdateable constructs a monotone-update cell. Only Float is
// currently supported by the runtime's update operations.
func PrimUpdateable(k PrimKind) *Type {
	if k != Float {
		panic("dftype: PrimUpdateable only supports Float")
	}
	return &Type{kind: KindPrimUpdateable, prim: k}
}

// RefOf constructs a reference to t.
func RefOf(t *Type) *Type { return &Type{kind: KindRef, elem: t} }

// ArrayOf constructs an associative array keyed by keyT holding elemT.
func ArrayOf(keyT, elemT *Type) *Type { return &Type{kind: KindArray, key: keyT, elem: elemT} }

// BagOf constructs an unordered multiset of elemT.
func BagOf(elemT *Type) *Type { return &Type{kind: KindBag, elem: elemT} }

// StructOf constructs a nominal record type.
func StructOf(name string, fields []StructField) *Type {
	return &Type{kind: KindStruct, structName: name, fields: fields}
}

// UnionOf constructs a transient union of type-checker alternatives.
// Unions must be concretized (see ConcretizeUnion) before lowering.
func UnionOf(alts ...*Type) *Type { return &Type{kind: KindUnion, alternatives: alts} }

func (t *Type) Kind() Kind { return t.kind }

// PrimKind returns the primitive kind of a PrimFuture/PrimValue/
// PrimUpdateable type. Panics on any other kind.
func (t *Type) PrimKind() PrimKind {
	switch t.kind {
	case KindPrimFuture, KindPrimValue, KindPrimUpdateable:
		return t.prim
	default:
		panic(fmt.Sprintf("dftype: PrimKind of non-primitive kind %v", t.kind))
	}
}

// Elem returns the referent type of a Ref, or the element type of an
// Array/Bag. Panics on any other kind.
func (t *Type) Elem() *Type {
	switch t.kind {
	case KindRef, KindArray, KindBag:
		return t.elem
	default:
		panic(fmt.Sprintf("dftype: Elem of kind %v", t.kind))
	}
}

// Key returns the key type of an Array. Panics on any other kind.
func (t *Type) Key() *Type {
	if t.kind != KindArray {
		panic(fmt.Sprintf("dftype: Key of kind %v", t.kind))
	}
	return t.key
}

// StructName returns the nominal name of a Struct type.
func (t *Type) StructName() string {
	if t.kind != KindStruct {
		panic(fmt.Sprintf("dftype: StructName of kind %v", t.kind))
	}
	return t.structName
}

// Fields returns the field list of a Struct type, in declaration order.
func (t *Type) Fields() []StructField {
	if t.kind != KindStruct {
		panic(fmt.Sprintf("dftype: Fields of kind %v", t.kind))
	}
	return t.fields
}

// Field looks up a field by name, reporting whether it exists.
func (t *Type) Field(name string) (StructField, bool) {
	for _, f := range t.Fields() {
		if f.Name == name {
			return f, true
		}
	}
	return StructField{}, false
}

// Alternatives returns the member types of a Union.
func (t *Type) Alternatives() []*Type {
	if t.kind != KindUnion {
		panic(fmt.Sprintf("dftype: Alternatives of kind %v", t.kind))
	}
	return t.alternatives
}

func (t *Type) String() string {
	switch t.kind {
	case KindPrimFuture:
		return "future<" + t.prim.String() + ">"
	case KindPrimValue:
		return "value<" + t.prim.String() + ">"
	case KindPrimUpdateable:
		return "updateable<" + t.prim.String() + ">"
	case KindRef:
		return "ref<" + t.elem.String() + ">"
	case KindArray:
		return "array<" + t.key.String() + "," + t.elem.String() + ">"
	case KindBag:
		return "bag<" + t.elem.String() + ">"
	case KindStruct:
		return "struct " + t.structName
	case KindUnion:
		s := "union<"
		for i, a := range t.alternatives {
			if i > 0 {
				s += "|"
			}
			s += a.String()
		}
		return s + ">"
	default:
		return "?"
	}
}

// Equal reports structural equality of two types.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindPrimFuture, KindPrimValue, KindPrimUpdateable:
		return a.prim == b.prim
	case KindRef:
		return Equal(a.elem, b.elem)
	case KindArray:
		return Equal(a.key, b.key) && Equal(a.elem, b.elem)
	case KindBag:
		return Equal(a.elem, b.elem)
	case KindStruct:
		if a.structName != b.structName || len(a.fields) != len(b.fields) {
			return false
		}
		for i := range a.fields {
			if a.fields[i].Name != b.fields[i].Name || !Equal(a.fields[i].Type, b.fields[i].Type) {
				return false
			}
		}
		return true
	case KindUnion:
		if len(a.alternatives) != len(b.alternatives) {
			return false
		}
		for i := range a.alternatives {
			if !Equal(a.alternatives[i], b.alternatives[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// isPrimFuture reports whether t is a PrimFuture.
func IsPrimFuture(t *Type) bool { return t.kind == KindPrimFuture }

// isRef reports whether t is a Ref.
func IsRef(t *Type) bool { return t.kind == KindRef }

// isContainer reports whether t is an Array or a Bag.
func IsContainer(t *Type) bool { return t.kind == KindArray || t.kind == KindBag }

// isUpdateable reports whether t is a PrimUpdateable.
func IsUpdateable(t *Type) bool { return t.kind == KindPrimUpdateable }

// isUnion reports whether t is a transient Union.
func IsUnion(t *Type) bool { return t.kind == KindUnion }

// AssignableTo reports whether a value of type src may be assigned
// into a variable of type dst: equal types, or src a Union containing
// an alternative assignable to dst (the only widening this language
// allows; unions must already be concretized by lowering time, so this
// case mainly serves checkCopy during the type-checker/walker seam).
func AssignableTo(src, dst *Type) bool {
	if Equal(src, dst) {
		return true
	}
	if src != nil && src.kind == KindUnion {
		for _, alt := range src.alternatives {
			if AssignableTo(alt, dst) {
				return true
			}
		}
	}
	return false
}

// ConcretizeUnion picks the first alternative of u assignable to want,
// returning it and true, or (nil, false) if none match. Used to
// reconcile a Union produced by the type checker against a concrete
// expected type before lowering (see internal/walker's call and
// array-load union reconciliation).
func ConcretizeUnion(u *Type, want *Type) (*Type, bool) {
	if u.kind != KindUnion {
		if AssignableTo(u, want) {
			return u, true
		}
		return nil, false
	}
	for _, alt := range u.alternatives {
		if AssignableTo(alt, want) {
			return alt, true
		}
	}
	return nil, false
}

// DerefResultType strips one Ref layer. Panics if t is not a Ref.
func DerefResultType(t *Type) *Type {
	if t.kind != KindRef {
		panic(fmt.Sprintf("dftype: DerefResultType of non-ref kind %v", t.kind))
	}
	return t.elem
}

// ContainerElemType returns the element type of an Array or Bag.
// Panics on any other kind.
func ContainerElemType(t *Type) *Type {
	if !IsContainer(t) {
		panic(fmt.Sprintf("dftype: ContainerElemType of non-container kind %v", t.kind))
	}
	return t.elem
}

// ArrayKeyType returns the key type of an Array. Panics on any other kind.
func ArrayKeyType(t *Type) *Type {
	if t.kind != KindArray {
		panic(fmt.Sprintf("dftype: ArrayKeyType of non-array kind %v", t.kind))
	}
	return t.key
}

// UnpackedContainerType recursively strips future wrappers from a
// (possibly nested) container type, producing the type of its fully
// materialized local-value form. A future<int> array element becomes
// a value<int> element; nested arrays recurse.
func UnpackedContainerType(t *Type) *Type {
	switch t.kind {
	case KindPrimFuture:
		return PrimValue(t.prim)
	case KindArray:
		return ArrayOf(UnpackedContainerType(t.key), UnpackedContainerType(t.elem))
	case KindBag:
		return BagOf(UnpackedContainerType(t.elem))
	case KindStruct:
		fields := make([]StructField, len(t.fields))
		for i, f := range t.fields {
			fields[i] = StructField{Name: f.Name, Type: UnpackedContainerType(f.Type)}
		}
		return StructOf(t.structName, fields)
	default:
		return t
	}
}

// FutureType returns the PrimFuture equivalent of a PrimValue type,
// used when materializing a compile-time constant into a future
// (see internal/arg's futureType helper for the Arg-level entry point).
func FutureType(t *Type) *Type {
	if t.kind != KindPrimValue {
		panic(fmt.Sprintf("dftype: FutureType of non-value kind %v", t.kind))
	}
	return PrimFuture(t.prim)
}
