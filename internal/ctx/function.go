package ctx

import (
	"fmt"

	"github.com/dfcompiler/dfmid/internal/dftype"
)

// Function is the per-function compilation context: the arena that
// owns every Var the walker creates for this function, the naming
// counters that keep temporaries/aliases/local values/struct-field
// aliases unique, and the function's property set and declared
// input/output variables.
//
// A Function belongs to exactly one goroutine during lowering:
// internal/driver gives each function its own Function and never
// shares one across goroutines, so the walker runs single-threaded at
// the granularity of one function.
type Function struct {
	Global *Global
	Name   string
	Props  PropSet

	Inputs  []*dftype.Var
	Outputs []*dftype.Var

	vars []*dftype.Var // arena; vars[id-1] is the Var with that ID

	tmpCounter    int
	aliasCounter  int
	localCounter  int
	wrapperCount  int
}

// NewFunction creates an empty per-function context.
func NewFunction(g *Global, name string, props PropSet) *Function {
	return &Function{Global: g, Name: name, Props: props}
}

func (f *Function) alloc(name string, t *dftype.Type, alloc dftype.Alloc, def dftype.DefType) *dftype.Var {
	id := dftype.ID(len(f.vars) + 1)
	v := dftype.New(id, name, t, alloc, def)
	f.vars = append(f.vars, v)
	return v
}

// VarByID looks up a previously allocated variable by its arena index.
func (f *Function) VarByID(id dftype.ID) *dftype.Var {
	if id == 0 || int(id) > len(f.vars) {
		panic(fmt.Sprintf("ctx: Var id %d out of range for function %q", id, f.Name))
	}
	return f.vars[id-1]
}

// DeclareInput/DeclareOutput register a function formal. They are
// visible from the function's main block as well as any nested block,
// since inputs and outputs are valid references anywhere in the
// function.
func (f *Function) DeclareInput(name string, t *dftype.Type) *dftype.Var {
	v := f.alloc(name, t, dftype.Stack, dftype.Inputarg)
	f.Inputs = append(f.Inputs, v)
	return v
}

func (f *Function) DeclareOutput(name string, t *dftype.Type) *dftype.Var {
	v := f.alloc(name, t, dftype.Stack, dftype.Outputarg)
	f.Outputs = append(f.Outputs, v)
	return v
}

// HasProp answers directly for properties of this function itself.
func (f *Function) HasProp(prop FuncProp) bool { return f.Props.Has(prop) }

// FreshWrapperName mints a unique name for a generated wrapper
// function around a builtin or application call.
func (f *Function) FreshWrapperName(base string) string {
	f.wrapperCount++
	return fmt.Sprintf("%s_wrap%d", base, f.wrapperCount)
}

// VarCreator is the interface the walker programs against to create
// compiler temporaries, following a fixed naming discipline:
// temporaries prefixed "tmp", aliases "alias", local values "v",
// struct-field aliases "f_<struct>_<path>", filename aliases
// "filename_of_*".
type VarCreator interface {
	CreateTmp(t *dftype.Type) *dftype.Var
	CreateAliasVar(t *dftype.Type) *dftype.Var
	CreateLocalValueVar(t *dftype.Type) *dftype.Var
	CreateStructFieldTmp(structName string, path []string, t *dftype.Type) *dftype.Var
	CreateFilenameAlias(t *dftype.Type) *dftype.Var
}

// CreateTmp mints tmp<N>.
func (f *Function) CreateTmp(t *dftype.Type) *dftype.Var {
	f.tmpCounter++
	return f.alloc(fmt.Sprintf("tmp%d", f.tmpCounter), t, chooseAllocForFuture(t), dftype.LocalCompiler)
}

// CreateAliasVar mints alias<N>, an Alias-allocated handle.
func (f *Function) CreateAliasVar(t *dftype.Type) *dftype.Var {
	f.aliasCounter++
	return f.alloc(fmt.Sprintf("alias%d", f.aliasCounter), t, dftype.Alias, dftype.LocalCompiler)
}

// CreateLocalValueVar mints v<N>, a Local-allocated plain value.
func (f *Function) CreateLocalValueVar(t *dftype.Type) *dftype.Var {
	f.localCounter++
	return f.alloc(fmt.Sprintf("v%d", f.localCounter), t, dftype.Local, dftype.LocalCompiler)
}

// CreateStructFieldTmp mints f_<struct>_<path>, an Alias-allocated
// handle into a nested struct field.
func (f *Function) CreateStructFieldTmp(structName string, path []string, t *dftype.Type) *dftype.Var {
	name := "f_" + structName
	for _, p := range path {
		name += "_" + p
	}
	return f.alloc(name, t, dftype.Alias, dftype.LocalCompiler)
}

// CreateFilenameAlias mints filename_of_<N>, used when materializing
// the filename mapping of a File-typed variable.
func (f *Function) CreateFilenameAlias(t *dftype.Type) *dftype.Var {
	f.aliasCounter++
	return f.alloc(fmt.Sprintf("filename_of_%d", f.aliasCounter), t, dftype.Alias, dftype.LocalCompiler)
}

// chooseAllocForFuture picks the allocation class for a freshly
// created temporary based on its type: Local values never get future
// storage, everything else (futures, updateables, refs, containers)
// is a plain Stack-class backend-visible future unless the caller
// asked for Alias storage explicitly via CreateAliasVar.
func chooseAllocForFuture(t *dftype.Type) dftype.Alloc {
	if t.Kind() == dftype.KindPrimValue {
		return dftype.Local
	}
	return dftype.Stack
}
