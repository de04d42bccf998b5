package refbackend

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/dfcompiler/dfmid/internal/ir"
)

// execRunExternal actually execs r.Cmd with r.Argv, redirecting each
// InputFiles entry's path in as an extra trailing argument (the
// reference backend has no structured stdin-redirect story, only
// argv-visible file paths) and allocating a fresh temp path for every
// OutputFiles entry before the process runs, on the assumption that
// the external program writes to the filename it's told rather than
// to stdout.
func (ip *Interp) execRunExternal(ctx context.Context, env *Env, r *ir.RunExternal) error {
	argv := make([]string, 0, len(r.Argv)+len(r.InputFiles))
	for _, a := range r.Argv {
		argv = append(argv, fmt.Sprintf("%v", ip.evalArg(env, a)))
	}
	for _, v := range r.InputFiles {
		f, ok := env.Get(v).(*FileVal)
		if !ok {
			return fmt.Errorf("refbackend: RUN_EXTERNAL input %s is not a file", v.Name)
		}
		argv = append(argv, f.Path)
	}

	outFiles := make([]*FileVal, len(r.OutputFiles))
	for i := range r.OutputFiles {
		f := &FileVal{Path: freshTmpPath()}
		outFiles[i] = f
		argv = append(argv, f.Path)
	}

	cmd := exec.CommandContext(ctx, r.Cmd, argv...)
	setProcessGroup(cmd)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("refbackend: RUN_EXTERNAL %s: %w", r.Cmd, err)
	}

	for i, v := range r.OutputFiles {
		env.Set(v, outFiles[i])
	}
	return nil
}
