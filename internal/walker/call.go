package walker

import (
	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/backend"
	"github.com/dfcompiler/dfmid/internal/ctx"
	"github.com/dfcompiler/dfmid/internal/dfast"
	"github.com/dfcompiler/dfmid/internal/diag"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// annotation is one per-call property expression (@prio=, @parallelism=,
// @location=) found among a CALL_FUNCTION node's children, alongside
// its positional arguments. The surface grammar is out of this
// module's scope; annotation children are recognized structurally, by
// carrying an Operator token whose text names the property.
type annotation struct {
	kind string
	expr dfast.Tree
}

func splitCallChildren(tree dfast.Tree) (argTrees []dfast.Tree, anns []annotation) {
	for i := 0; i < tree.GetChildCount(); i++ {
		c := tree.Child(i)
		if c.GetType() == dfast.Operator {
			switch c.GetText() {
			case "prio", "parallelism", "location":
				anns = append(anns, annotation{kind: c.GetText(), expr: c.Child(0)})
				continue
			}
		}
		argTrees = append(argTrees, c)
	}
	return argTrees, anns
}

// lowerCall resolves name against the function-property registry and
// dispatches to intrinsic, checkpointed, or plain call lowering.
// Assert-variant foreign calls are elided entirely when
// OPT_DISABLE_ASSERTS is set, before any argument is even evaluated.
func lowerCall(wc *Context, tree dfast.Tree, outs []*dftype.Var, renames Renames) error {
	name := tree.GetText()
	sig, ok := wc.fn().Global.Registry.Lookup(name)
	if !ok {
		return diag.Errorf(diag.NameError, tree.Line(), "walker: undefined function %q", name)
	}

	if disableAssertsElides(wc, sig) {
		return nil
	}

	if sig.Intrinsic {
		argTrees, _ := splitCallChildren(tree)
		args, err := evalArgsPositional(wc, argTrees, sig.InputTypes, renames)
		if err != nil {
			return err
		}
		wc.Backend.IntrinsicCall(name, args, outs)
		return nil
	}

	if sig.Props.Has(ctx.Checkpointed) {
		return lowerCheckpointedCall(wc, tree, name, sig, outs, renames)
	}
	return lowerPlainCall(wc, tree, name, sig, outs, renames)
}

func disableAssertsElides(wc *Context, sig *ctx.FuncSig) bool {
	if wc.Settings == nil || !wc.Settings.DisableAsserts() {
		return false
	}
	return sig.Special == ctx.FnAssert || sig.Special == ctx.FnAssertEq
}

// evalArgsPositional evaluates each argument expression into a fresh
// temporary typed exactly as the callee's declared input type --
// EvalToVars' own dispatch (via evalVariable/copyByValue) handles
// whatever ref-dereference or updateable-snapshot conversion the
// argument needs to reach that type.
func evalArgsPositional(wc *Context, argTrees []dfast.Tree, inputTypes []*ctx.TypedName, renames Renames) ([]arg.Arg, error) {
	if len(argTrees) != len(inputTypes) {
		return nil, diag.Errorf(diag.TypeError, 0, "walker: call expects %d arguments, got %d", len(inputTypes), len(argTrees))
	}
	args := make([]arg.Arg, len(argTrees))
	for i, at := range argTrees {
		tmp := wc.fn().CreateTmp(inputTypes[i].Type)
		if err := EvalToVars(wc, at, []*dftype.Var{tmp}, renames); err != nil {
			return nil, err
		}
		args[i] = arg.VarRef(tmp)
	}
	return args, nil
}

type annoFuture struct {
	kind string
	fut  *dftype.Var
}

// evalAnnotationFutures evaluates each annotation expression into its
// own future, before any wait is opened -- a wait's watch list must
// already exist as variables when the wait starts.
func evalAnnotationFutures(wc *Context, anns []annotation, renames Renames) ([]annoFuture, error) {
	out := make([]annoFuture, 0, len(anns))
	for _, a := range anns {
		fut := wc.fn().CreateTmp(dftype.PrimFuture(dftype.Int))
		if err := EvalToVars(wc, a.expr, []*dftype.Var{fut}, renames); err != nil {
			return nil, err
		}
		out = append(out, annoFuture{kind: a.kind, fut: fut})
	}
	return out, nil
}

// withAnnotationWait opens a WAIT_ONLY wait over the evaluated
// annotation futures (LOCAL_CONTROL mode, matching a call whose
// properties gate how it is itself spawned), retrieves each into a
// Local, and populates a TaskProps body runs under. With no
// annotations present, body runs directly with a nil TaskProps and no
// wait at all.
func withAnnotationWait(wc *Context, name string, afs []annoFuture, body func(props *backend.TaskProps) error) error {
	if len(afs) == 0 {
		return body(nil)
	}

	futures := make([]*dftype.Var, len(afs))
	for i, af := range afs {
		futures[i] = af.fut
	}
	wc.Backend.StartWaitStatement(name+"_anno_wait", futures, backend.WaitOnly, false, true, backend.LocalControl, nil)

	props := &backend.TaskProps{}
	for _, af := range afs {
		local := wc.fn().CreateLocalValueVar(dftype.PrimValue(dftype.Int))
		wc.Backend.RetrieveScalar(local, af.fut)
		av := arg.VarRef(local)
		switch af.kind {
		case "prio":
			props.Priority = &av
		case "parallelism":
			props.Parallelism = &av
		case "location":
			props.Location = &av
		}
	}

	err := body(props)
	wc.Backend.EndWaitStatement()
	return err
}

func lowerPlainCall(wc *Context, tree dfast.Tree, name string, sig *ctx.FuncSig, outs []*dftype.Var, renames Renames) error {
	argTrees, anns := splitCallChildren(tree)
	args, err := evalArgsPositional(wc, argTrees, sig.InputTypes, renames)
	if err != nil {
		return err
	}
	afs, err := evalAnnotationFutures(wc, anns, renames)
	if err != nil {
		return err
	}
	return withAnnotationWait(wc, name, afs, func(props *backend.TaskProps) error {
		return emitCall(wc, name, sig, args, outs, props)
	})
}

// emitCall is the five-branch call-mode decision tree: a builtin
// equivalent to an operator lowers straight to asyncOp; any other
// builtin lowers to builtinFunctionCall; a composite function lowers
// to functionCall under SYNC or CONTROL depending on its own Sync
// property; a wrapped builtin or application function is routed
// through a freshly named wrapper, called SYNC with its extra
// properties folded into the argument list.
func emitCall(wc *Context, name string, sig *ctx.FuncSig, args []arg.Arg, outs []*dftype.Var, props *backend.TaskProps) error {
	switch {
	case sig.Props.Has(ctx.Builtin) && sig.OpEquivalent != "":
		out, err := singleOutSlice(outs)
		if err != nil {
			return err
		}
		wc.Backend.AsyncOp(sig.OpEquivalent, out, args, props)
		return nil
	case sig.Props.Has(ctx.Builtin):
		wc.Backend.BuiltinFunctionCall(name, args, outs, props)
		return nil
	case sig.Props.Has(ctx.Composite) && sig.Props.Has(ctx.Sync):
		wc.Backend.FunctionCall(name, args, outs, backend.Sync, props)
		return nil
	case sig.Props.Has(ctx.Composite):
		wc.Backend.FunctionCall(name, args, outs, backend.Control, props)
		return nil
	case sig.Props.Has(ctx.WrappedBuiltin) || sig.Props.Has(ctx.App):
		wrapperName := wc.fn().FreshWrapperName(name)
		wrappedArgs := append(append([]arg.Arg{}, args...), extraWrapperArgs(props)...)
		wc.Backend.FunctionCall(wrapperName, wrappedArgs, outs, backend.Sync, props)
		return nil
	default:
		return diag.Errorf(diag.AnnotationError, 0, "walker: function %q has no recognized call-lowering property", name)
	}
}

func singleOutSlice(outs []*dftype.Var) (*dftype.Var, error) {
	if len(outs) != 1 {
		return nil, diag.Errorf(diag.InternalError, 0, "walker: operator-equivalent builtin must have exactly 1 output, got %d", len(outs))
	}
	return outs[0], nil
}

func extraWrapperArgs(props *backend.TaskProps) []arg.Arg {
	var out []arg.Arg
	if props == nil {
		return out
	}
	if props.Parallelism != nil {
		out = append(out, *props.Parallelism)
	}
	if props.Location != nil {
		out = append(out, *props.Location)
	}
	return out
}

// lowerCheckpointedCall wraps the call in the cache-aside pattern: the
// packed inputs form a lookup key; a hit unpacks straight into outs;
// a miss falls through to the normal call and, if writing is enabled,
// packs and writes the outputs back under the same key. Per this
// module's own resolution of the open question left by the
// checkpoint-value codec design: all inputs form the key, all outputs
// form the value.
func lowerCheckpointedCall(wc *Context, tree dfast.Tree, name string, sig *ctx.FuncSig, outs []*dftype.Var, renames Renames) error {
	argTrees, anns := splitCallChildren(tree)
	args, err := evalArgsPositional(wc, argTrees, sig.InputTypes, renames)
	if err != nil {
		return err
	}

	if !wc.Backend.CheckpointLookupEnabled() {
		afs, err := evalAnnotationFutures(wc, anns, renames)
		if err != nil {
			return err
		}
		return withAnnotationWait(wc, name, afs, func(props *backend.TaskProps) error {
			return emitCall(wc, name, sig, args, outs, props)
		})
	}

	inputVars := arg.Vars(args)
	wc.Backend.StartWaitStatement(name+"_ckpt_wait", inputVars, backend.WaitOnly, true, true, backend.LocalControl, nil)

	keyBlob := wc.fn().CreateLocalValueVar(dftype.PrimValue(dftype.Blob))
	wc.Backend.PackValues(keyBlob, name, args)

	existsVar := wc.fn().CreateLocalValueVar(dftype.PrimValue(dftype.Bool))
	valBlob := wc.fn().CreateLocalValueVar(dftype.PrimValue(dftype.Blob))
	wc.Backend.LookupCheckpoint(existsVar, valBlob, keyBlob)

	wc.Backend.StartIfStatement(arg.VarRef(existsVar), true)
	wc.Backend.UnpackValues(outs, valBlob)
	wc.Backend.StartElseBlock()

	afs, err := evalAnnotationFutures(wc, anns, renames)
	if err != nil {
		return err
	}
	if err := withAnnotationWait(wc, name, afs, func(props *backend.TaskProps) error {
		return emitCall(wc, name, sig, args, outs, props)
	}); err != nil {
		return err
	}

	if wc.Backend.CheckpointWriteEnabled() {
		wc.Backend.StartWaitStatement(name+"_ckpt_write_wait", outs, backend.WaitOnly, true, true, backend.LocalControl, nil)
		outArgs := make([]arg.Arg, len(outs))
		for i, o := range outs {
			outArgs[i] = arg.VarRef(o)
		}
		valueBlobOut := wc.fn().CreateLocalValueVar(dftype.PrimValue(dftype.Blob))
		wc.Backend.PackValues(valueBlobOut, name, outArgs)
		wc.Backend.WriteCheckpoint(keyBlob, valueBlobOut)
		wc.Backend.FreeBlob(valueBlobOut)
		wc.Backend.EndWaitStatement()
	}

	wc.Backend.EndIfStatement()
	wc.Backend.FreeBlob(keyBlob)
	wc.Backend.FreeBlob(valBlob)
	wc.Backend.EndWaitStatement()
	return nil
}
