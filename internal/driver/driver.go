// Package driver compiles a set of functions into lowered ir.Functions,
// one walker.EvalToVars pass per function. Functions share only the
// read-only ctx.Global and function-property registry -- the walker
// touches no mutable state outside the ctx.Function/arena it is
// lowering -- so independent functions' lowerings are fanned out
// concurrently with golang.org/x/sync/errgroup, bounded by a
// golang.org/x/sync/semaphore-limited worker count. This does not
// make the walker itself concurrent: each goroutine runs one
// function's walk start to finish, single-threaded, exactly the shape
// errgroup exists for.
package driver

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/dfcompiler/dfmid/internal/ctx"
	"github.com/dfcompiler/dfmid/internal/dfast"
	"github.com/dfcompiler/dfmid/internal/dftype"
	"github.com/dfcompiler/dfmid/internal/ir"
	"github.com/dfcompiler/dfmid/internal/refbackend"
	"github.com/dfcompiler/dfmid/internal/settings"
	"github.com/dfcompiler/dfmid/internal/validate"
	"github.com/dfcompiler/dfmid/internal/walker"
)

// FuncSpec is one function to lower: its name, property set, declared
// input/output formals, and body expression tree.
type FuncSpec struct {
	Name    string
	Props   ctx.PropSet
	Inputs  []ctx.TypedName
	Outputs []ctx.TypedName
	Body    dfast.Tree
}

// Driver lowers a batch of FuncSpecs against one shared Global,
// bounded to at most MaxConcurrency simultaneous per-function walks.
type Driver struct {
	Global         *ctx.Global
	Settings       *settings.Registry
	MaxConcurrency int64

	// Validate, when true, runs the standard (pre-refcount) validator
	// against every lowered function before returning it.
	Validate bool
}

// New creates a Driver. maxConcurrency <= 0 means unbounded (one
// goroutine per FuncSpec).
func New(g *ctx.Global, s *settings.Registry, maxConcurrency int64) *Driver {
	return &Driver{Global: g, Settings: s, MaxConcurrency: maxConcurrency}
}

// Compile lowers every spec, returning a name -> *ir.Function map.
// The first error from any goroutine cancels the rest and is
// returned; the group's own context is what the semaphore acquires
// against, so a cancellation from one failing lowering stops further
// ones from even starting.
func (d *Driver) Compile(ctxBg context.Context, specs []FuncSpec) (map[string]*ir.Function, error) {
	g, gctx := errgroup.WithContext(ctxBg)

	limit := d.MaxConcurrency
	if limit <= 0 {
		limit = int64(len(specs))
		if limit == 0 {
			limit = 1
		}
	}
	sem := semaphore.NewWeighted(limit)

	results := make([]*ir.Function, len(specs))
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			fn, err := d.lowerOne(spec)
			if err != nil {
				return fmt.Errorf("driver: lowering %q: %w", spec.Name, err)
			}
			results[i] = fn
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*ir.Function, len(specs))
	for i, spec := range specs {
		out[spec.Name] = results[i]
	}
	return out, nil
}

// lowerOne gives spec its own ctx.Function/Scope/ir.Function/Builder,
// none of which are shared with any other goroutine's lowering.
func (d *Driver) lowerOne(spec FuncSpec) (*ir.Function, error) {
	fnCtx := ctx.NewFunction(d.Global, spec.Name, spec.Props)

	inputs := make([]*dftype.Var, len(spec.Inputs))
	for i, p := range spec.Inputs {
		inputs[i] = fnCtx.DeclareInput(p.Name, p.Type)
	}
	outputs := make([]*dftype.Var, len(spec.Outputs))
	for i, p := range spec.Outputs {
		outputs[i] = fnCtx.DeclareOutput(p.Name, p.Type)
	}

	irFn := ir.NewFunction(spec.Name, inputs, outputs)
	builder := refbackend.NewBuilder(irFn, d.Global.Registry)
	scope := ctx.NewFunctionScope(fnCtx)
	wc := &walker.Context{Scope: scope, Backend: builder, Settings: d.Settings}

	if err := walker.EvalToVars(wc, spec.Body, irFn.Outputs, nil); err != nil {
		return nil, err
	}

	if d.Validate {
		if err := validate.New().Validate(irFn); err != nil {
			return nil, err
		}
	}

	return irFn, nil
}
