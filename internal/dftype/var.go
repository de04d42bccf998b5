package dftype

import "fmt"

// Alloc is the allocation class of a variable: where its storage
// lives and who owns it.
type Alloc int

const (
	// Stack variables are plain backend-visible futures/updateables
	// owned by the enclosing function frame.
	Stack Alloc = iota
	// Temp variables are compiler-created futures with the same
	// backend visibility as Stack, distinguished only for naming/
	// lifetime bookkeeping.
	Temp
	// Alias variables are handles to storage owned elsewhere (e.g. an
	// array element slot, a struct field slot).
	Alias
	// Local variables hold a plain synchronously available value in
	// the enclosing scope; they are never backend futures.
	Local
	// GlobalConst variables are compile-time constants visible from
	// every scope.
	GlobalConst
)

func (a Alloc) String() string {
	switch a {
	case Stack:
		return "stack"
	case Temp:
		return "temp"
	case Alias:
		return "alias"
	case Local:
		return "local"
	case GlobalConst:
		return "global_const"
	default:
		return fmt.Sprintf("Alloc(%d)", int(a))
	}
}

// DefType classifies how a variable came to be declared.
type DefType int

const (
	LocalUser DefType = iota
	LocalCompiler
	DefGlobalConst
	Inputarg
	Outputarg
)

func (d DefType) String() string {
	switch d {
	case LocalUser:
		return "local_user"
	case LocalCompiler:
		return "local_compiler"
	case DefGlobalConst:
		return "global_const"
	case Inputarg:
		return "input_arg"
	case Outputarg:
		return "output_arg"
	default:
		return fmt.Sprintf("DefType(%d)", int(d))
	}
}

// ID identifies a Var within the arena of the function that owns it
// (see internal/ctx.Function). Index 0 is never a valid allocated Var;
// it is reserved as the zero value's "no variable" sentinel.
type ID uint32

// Var is the descriptor attached to every variable the walker creates
// or that a function declares as input/output: its name (unique within
// its function), its Type, its Alloc class, how it was defined, and -
// for File-typed variables only - the String variable holding its
// filename mapping.
type Var struct {
	ID      ID
	Name    string
	Type    *Type
	Alloc   Alloc
	Def     DefType
	Mapping *Var // non-nil only when Type is File
}

// New constructs a Var. It does not declare the variable in any scope;
// callers go through a VarCreator (internal/ctx) for that, so that
// naming discipline and scope registration happen together.
func New(id ID, name string, t *Type, alloc Alloc, def DefType) *Var {
	return &Var{ID: id, Name: name, Type: t, Alloc: alloc, Def: def}
}

// SetMapping attaches a filename mapping. v must be File-typed and m
// must be a previously declared String variable; both are invariants
// left to the caller, not re-validated here.
func (v *Var) SetMapping(m *Var) { v.Mapping = m }

// Identical reports whether v and o refer to the same declaration:
// same name, storage class, type, and mapping. The validator uses this
// to check that every variable reference in an instruction's input
// list is identical to the variable's point of declaration.
func (v *Var) Identical(o *Var) bool {
	if v == o {
		return true
	}
	if v == nil || o == nil {
		return false
	}
	if v.Name != o.Name || v.Alloc != o.Alloc || !Equal(v.Type, o.Type) {
		return false
	}
	if (v.Mapping == nil) != (o.Mapping == nil) {
		return false
	}
	if v.Mapping != nil && !v.Mapping.Identical(o.Mapping) {
		return false
	}
	return true
}

func (v *Var) String() string { return v.Name }
