package ctx

import (
	"fmt"
	"sync"

	"github.com/dfcompiler/dfmid/internal/dftype"
)

// Warning is a non-fatal diagnostic collected during lowering, e.g. a
// deprecated function or a constant assertion provably failing.
type Warning struct {
	Line    int
	Message string
}

// Registry answers function-property queries such as hasFunctionProp
// and isIntrinsic against the function-property registry.
// It is populated once by the driver/CLI from a static table standing
// in for the real front end's symbol table.
type Registry struct {
	funcs map[string]*FuncSig
}

func NewRegistry() *Registry { return &Registry{funcs: make(map[string]*FuncSig)} }

// Define registers a function signature. Redefining an existing name
// is a programmer error (internal invariant).
func (r *Registry) Define(sig *FuncSig) {
	if _, exists := r.funcs[sig.Name]; exists {
		panic(fmt.Sprintf("ctx: function %q already registered", sig.Name))
	}
	r.funcs[sig.Name] = sig
}

// Lookup returns the signature for name, or (nil, false).
func (r *Registry) Lookup(name string) (*FuncSig, bool) {
	sig, ok := r.funcs[name]
	return sig, ok
}

// HasProp reports whether fn has prop. Panics if fn is undefined: a
// caller querying properties of an unresolved function is an internal
// invariant violation, not a recoverable user error.
func (r *Registry) HasProp(fn string, prop FuncProp) bool {
	sig, ok := r.funcs[fn]
	if !ok {
		panic(fmt.Sprintf("ctx: HasProp of undefined function %q", fn))
	}
	return sig.Props.Has(prop)
}

// IsIntrinsic reports whether fn lowers via intrinsicCall.
func (r *Registry) IsIntrinsic(fn string) bool {
	sig, ok := r.funcs[fn]
	return ok && sig.Intrinsic
}

// Global is the outermost scope: the function-property registry,
// global constants, and the shared warning channel. There is exactly one Global per compilation; it is safe to
// read from multiple goroutines once constructed (internal/driver
// fans lowering out across functions that all share one *Global) but
// is not safe to mutate concurrently -- global constants are declared
// up front, before any function lowering begins.
type Global struct {
	Registry *Registry

	consts   map[string]*dftype.Var
	nextConstID dftype.ID

	mu       sync.Mutex
	warnings []Warning
}

func NewGlobal(reg *Registry) *Global {
	return &Global{Registry: reg, consts: make(map[string]*dftype.Var)}
}

// DeclareConst declares a GlobalConst variable, visible from every
// function. Double-definition is a DefinitionError in the caller's
// terms; here it panics, matching "Definition error: double
// define in same scope" being raised by the walker before this is ever
// reached for user code (globals are pre-declared once by the driver).
func (g *Global) DeclareConst(name string, t *dftype.Type) *dftype.Var {
	if _, exists := g.consts[name]; exists {
		panic(fmt.Sprintf("ctx: global constant %q already declared", name))
	}
	g.nextConstID++
	v := dftype.New(g.nextConstID, name, t, dftype.GlobalConst, dftype.DefGlobalConst)
	g.consts[name] = v
	return v
}

// LookupConst looks up a previously declared global constant.
func (g *Global) LookupConst(name string) (*dftype.Var, bool) {
	v, ok := g.consts[name]
	return v, ok
}

// Warn appends a non-fatal diagnostic (thread-safe: concurrent
// per-function lowering goroutines may all warn).
func (g *Global) Warn(line int, format string, args ...interface{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.warnings = append(g.warnings, Warning{Line: line, Message: fmt.Sprintf(format, args...)})
}

// Warnings returns a snapshot of the warnings collected so far.
func (g *Global) Warnings() []Warning {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Warning, len(g.warnings))
	copy(out, g.warnings)
	return out
}
