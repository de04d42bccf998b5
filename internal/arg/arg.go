// Package arg implements the Argument Model: the immutable
// values instructions read — either a compile-time constant or a
// reference to a variable — and the projection of its Type.
//
// This plays the role go/ssa's Value/*Const duality plays for a
// single SSA register: any instruction operand is either a literal
// *ssa.Const or a live value; here it is either a Const or a VarRef.
package arg

import (
	"fmt"

	"github.com/dfcompiler/dfmid/internal/dftype"
)

// ConstKind distinguishes the literal kinds a Const may hold.
type ConstKind int

const (
	IntConst ConstKind = iota
	FloatConst
	BoolConst
	StringConst
	BlobConst
	VoidConst
	// ListConst holds a nested sequence of Args. Nothing in the
	// walker ever lowers a literal into one; it exists for
	// internal/refbackend's checkpoint packer, which flattens a
	// container runtime value (array/bag/struct/file) into a tree of
	// these before handing it to internal/codec.
	ListConst
)

// Arg is an immutable argument value: either a Const or a VarRef.
// Exactly one of the two accessor methods is valid for a given Arg;
// callers must check IsConst/IsVar before calling ConstKind() (or
// another constant accessor) or Var().
type Arg struct {
	isConst bool

	// valid when isConst
	ckind ConstKind
	ival  int64
	fval  float64
	bval  bool
	sval  string
	blob  []byte
	list  []Arg

	// valid when !isConst
	v *dftype.Var
}

// Int constructs an integer literal argument.
func Int(i int64) Arg { return Arg{isConst: true, ckind: IntConst, ival: i} }

// FloatVal constructs a float literal argument.
func FloatVal(f float64) Arg { return Arg{isConst: true, ckind: FloatConst, fval: f} }

// Bool constructs a boolean literal argument.
func Bool(b bool) Arg { return Arg{isConst: true, ckind: BoolConst, bval: b} }

// Str constructs a string literal argument.
func Str(s string) Arg { return Arg{isConst: true, ckind: StringConst, sval: s} }

// Blob constructs a binary-blob literal argument.
func Blob(b []byte) Arg { return Arg{isConst: true, ckind: BlobConst, blob: b} }

// VoidVal constructs the sole Void literal argument.
func VoidVal() Arg { return Arg{isConst: true, ckind: VoidConst} }

// ListVal constructs a nested-list literal argument out of already
// constructed Args. See ListConst.
func ListVal(items []Arg) Arg { return Arg{isConst: true, ckind: ListConst, list: items} }

// VarRef wraps a variable as an argument.
func VarRef(v *dftype.Var) Arg { return Arg{isConst: false, v: v} }

// IsConst reports whether a is a literal constant.
func (a Arg) IsConst() bool { return a.isConst }

// IsVar reports whether a is a variable reference.
func (a Arg) IsVar() bool { return !a.isConst }

// ConstKind returns the literal kind. Panics if !IsConst().
func (a Arg) ConstKind() ConstKind {
	if !a.isConst {
		panic("arg: ConstKind of a variable reference")
	}
	return a.ckind
}

// Var returns the referenced variable. Panics if !IsVar().
func (a Arg) Var() *dftype.Var {
	if a.isConst {
		panic("arg: Var of a constant")
	}
	return a.v
}

func (a Arg) IntVal() int64 {
	if !a.isConst || a.ckind != IntConst {
		panic("arg: IntVal of non-int arg")
	}
	return a.ival
}

func (a Arg) FloatValue() float64 {
	if !a.isConst || a.ckind != FloatConst {
		panic("arg: FloatValue of non-float arg")
	}
	return a.fval
}

func (a Arg) BoolVal() bool {
	if !a.isConst || a.ckind != BoolConst {
		panic("arg: BoolVal of non-bool arg")
	}
	return a.bval
}

func (a Arg) StringVal() string {
	if !a.isConst || a.ckind != StringConst {
		panic("arg: StringVal of non-string arg")
	}
	return a.sval
}

func (a Arg) BlobVal() []byte {
	if !a.isConst || a.ckind != BlobConst {
		panic("arg: BlobVal of non-blob arg")
	}
	return a.blob
}

func (a Arg) ListVal() []Arg {
	if !a.isConst || a.ckind != ListConst {
		panic("arg: ListVal of non-list arg")
	}
	return a.list
}

// Type projects the Arg's type: the referenced variable's type for a
// VarRef, or the canonical PrimValue type of the literal kind for a
// Const.
func (a Arg) Type() *dftype.Type {
	if !a.isConst {
		return a.v.Type
	}
	switch a.ckind {
	case IntConst:
		return dftype.PrimValue(dftype.Int)
	case FloatConst:
		return dftype.PrimValue(dftype.Float)
	case BoolConst:
		return dftype.PrimValue(dftype.Bool)
	case StringConst:
		return dftype.PrimValue(dftype.String)
	case BlobConst:
		return dftype.PrimValue(dftype.Blob)
	case VoidConst:
		return dftype.PrimValue(dftype.Void)
	case ListConst:
		// Synthetic-only kind; no walker-visible type corresponds to
		// it, so callers outside the checkpoint packer shouldn't be
		// projecting a type off one.
		return dftype.PrimValue(dftype.Void)
	default:
		panic("arg: unknown const kind")
	}
}

// FutureType returns the future equivalent of a's type: used when
// materializing a constant argument into a future-typed temporary
// (e.g. assigning a literal into a PrimFuture output).
func (a Arg) FutureType() *dftype.Type {
	t := a.Type()
	if t.Kind() != dftype.KindPrimValue {
		panic("arg: FutureType of a non-value-typed arg")
	}
	return dftype.FutureType(t)
}

func (a Arg) String() string {
	if !a.isConst {
		return a.v.String()
	}
	switch a.ckind {
	case IntConst:
		return fmt.Sprintf("%d", a.ival)
	case FloatConst:
		return fmt.Sprintf("%g", a.fval)
	case BoolConst:
		return fmt.Sprintf("%t", a.bval)
	case StringConst:
		return fmt.Sprintf("%q", a.sval)
	case BlobConst:
		return fmt.Sprintf("blob(%d bytes)", len(a.blob))
	case VoidConst:
		return "void"
	case ListConst:
		return fmt.Sprintf("list(%d)", len(a.list))
	default:
		return "?"
	}
}

// Vars returns the variables an argument list references, in order,
// skipping constants. Used by instruction query implementations that
// must project "inputs" down to "input variables" (e.g.
// getBlockingInputs).
func Vars(args []Arg) []*dftype.Var {
	var out []*dftype.Var
	for _, a := range args {
		if a.IsVar() {
			out = append(out, a.Var())
		}
	}
	return out
}
