package ir

import (
	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/backend"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// RunExternal spawns a process: inputs are argv tokens, redirect
// filenames, and input-file argvars; outputs are output files, closed
// after the process returns.
type RunExternal struct {
	Base
	Cmd           string
	Argv          []arg.Arg
	Redirects     []arg.Arg
	InputFiles    []*dftype.Var
	OutputFiles   []*dftype.Var
	Deterministic bool
}

func NewRunExternal(line int, cmd string, argv, redirects []arg.Arg, inputFiles, outputFiles []*dftype.Var, deterministic bool) *RunExternal {
	return &RunExternal{
		Base: Base{OpCode: OpRunExternal, LineNo: line}, Cmd: cmd, Argv: argv, Redirects: redirects,
		InputFiles: inputFiles, OutputFiles: outputFiles, Deterministic: deterministic,
	}
}

func (r *RunExternal) GetInputs() []arg.Arg {
	ins := append([]arg.Arg{}, r.Argv...)
	ins = append(ins, r.Redirects...)
	for _, v := range r.InputFiles {
		ins = append(ins, arg.VarRef(v))
	}
	return ins
}

func (r *RunExternal) GetOutputs() []*dftype.Var         { return r.OutputFiles }
func (r *RunExternal) GetModifiedOutputs() []*dftype.Var { return r.OutputFiles }
func (r *RunExternal) GetReadOutputs(func(string, string) bool) []*dftype.Var {
	var out []*dftype.Var
	for _, o := range r.OutputFiles {
		if o.Mapping != nil {
			out = append(out, o)
		}
	}
	return out
}

func (r *RunExternal) GetInitialized() []Initialized {
	out := make([]Initialized, len(r.OutputFiles))
	for i, o := range r.OutputFiles {
		out[i] = Initialized{Var: o, Kind: Full}
	}
	return out
}

func (r *RunExternal) GetBlockingInputs() []*dftype.Var { return blockingFromArgs(r.GetInputs()) }
func (r *RunExternal) GetMode() backend.TaskMode        { return backend.Control }
func (r *RunExternal) HasSideEffects() bool             { return true }
func (r *RunExternal) CanChangeTiming() bool            { return false }
func (r *RunExternal) IsIdempotent() bool               { return r.Deterministic }
func (r *RunExternal) WritesAliasVar() bool             { return writesAlias(r.OutputFiles) }
func (r *RunExternal) WritesMappedVar() bool            { return writesMapped(r.OutputFiles) }

func (r *RunExternal) ConstantFold(KnownConst) map[*dftype.Var]arg.Arg { return nil }
func (r *RunExternal) ConstantReplace(KnownConst) Instruction          { return nil }
func (r *RunExternal) CanMakeImmediate(func(*dftype.Var) bool, bool) *MakeImmRequest {
	return nil
}
func (r *RunExternal) MakeImmediate([]*dftype.Var, []arg.Arg) MakeImmChange {
	panic("ir: MakeImmediate called on RunExternal")
}

// GetResults: "ResultVal emitted only when deterministic flag is set;
// key includes command + argv".
func (r *RunExternal) GetResults(existing ExistingResults) []ResultVal {
	if !r.Deterministic || len(r.OutputFiles) == 0 {
		return nil
	}
	key := append([]arg.Arg{arg.Str(r.Cmd)}, r.Argv...)
	var out []ResultVal
	for _, o := range r.OutputFiles {
		out = append(out, ResultVal{Op: r.Op(), Inputs: key, LocVar: o})
	}
	return out
}

func (r *RunExternal) GetIncrVars(func(string) bool) (reads, writes []*dftype.Var) {
	reads = append(reads, r.InputFiles...)
	writes = append(writes, r.OutputFiles...)
	return reads, writes
}
func (r *RunExternal) TryPiggyback(map[*dftype.Var]int, string) []*dftype.Var { return noPiggyback() }
func (r *RunExternal) GetComponentAlias() (*dftype.Var, *dftype.Var, bool)    { return noComponentAlias() }

func (r *RunExternal) Clone() Instruction {
	cl := *r
	cl.Argv = append([]arg.Arg{}, r.Argv...)
	cl.Redirects = append([]arg.Arg{}, r.Redirects...)
	cl.InputFiles = append([]*dftype.Var{}, r.InputFiles...)
	cl.OutputFiles = append([]*dftype.Var{}, r.OutputFiles...)
	return &cl
}

func (r *RunExternal) RenameVars(renames map[*dftype.Var]*dftype.Var, mode RenameMode) Instruction {
	cl := r.Clone().(*RunExternal)
	cl.Argv = renameArgs(r.Argv, renames)
	cl.Redirects = renameArgs(r.Redirects, renames)
	cl.InputFiles = renameVarSlice(r.InputFiles, renames)
	cl.OutputFiles = renameVarSlice(r.OutputFiles, renames)
	return cl
}
