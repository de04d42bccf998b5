package refbackend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dfcompiler/dfmid/internal/ctx"
	"github.com/dfcompiler/dfmid/internal/ir"
)

// execCall interprets CALL_FOREIGN (the small fixed set of built-in
// primitives the walker lowers array-range syntax, size, argv and
// assertions into -- see evalArrayRange/lowerCall in internal/walker)
// and the CALL_SYNC/CONTROL/LOCAL/LOCAL_CONTROL family (a recursive
// invocation of another lowered Function, looked up by name in
// ip.Funcs).
func (ip *Interp) execCall(ctx context.Context, env *Env, c *ir.Call) error {
	if c.Op() == ir.OpCallForeign {
		return ip.execForeign(ctx, env, c)
	}

	fn, ok := ip.Funcs[c.Name]
	if !ok {
		return fmt.Errorf("refbackend: call to undefined function %q", c.Name)
	}
	if len(c.Args) != len(fn.Inputs) {
		return fmt.Errorf("refbackend: %s expects %d args, got %d", c.Name, len(fn.Inputs), len(c.Args))
	}
	callEnv := NewEnv(nil)
	for i, p := range fn.Inputs {
		callEnv.Set(p, ip.evalArg(env, c.Args[i]))
	}
	declareOutputs(callEnv, fn.Outputs)
	if err := ip.execBlock(ctx, callEnv, fn.Root); err != nil {
		return fmt.Errorf("refbackend: in call to %s: %w", c.Name, err)
	}
	for i, out := range c.Outs {
		if i >= len(fn.Outputs) {
			break
		}
		env.Set(out, callEnv.Get(fn.Outputs[i]))
	}
	return nil
}

func (ip *Interp) execForeign(goCtx context.Context, env *Env, c *ir.Call) error {
	ins := make([]any, len(c.Args))
	for i, a := range c.Args {
		ins[i] = ip.evalArg(env, a)
	}
	special := ctx.NotSpecial
	if c.Foreign != nil {
		special = c.Foreign.Special
	}
	switch special {
	case ctx.FnRange, ctx.FnRangeStep:
		start, end := ins[0].(int64), ins[1].(int64)
		step := int64(1)
		if special == ctx.FnRangeStep {
			step = ins[2].(int64)
		}
		arr := NewArrayVal()
		idx := int64(0)
		for v := start; (step > 0 && v <= end) || (step < 0 && v >= end); v += step {
			arr.Insert(keyString(idx), v)
			idx++
		}
		env.Set(c.Outs[0], arr)
		return nil

	case ctx.FnSize:
		switch v := ins[0].(type) {
		case *ArrayVal:
			env.Set(c.Outs[0], int64(len(v.Pairs())))
		case *BagVal:
			env.Set(c.Outs[0], int64(len(v.Elems())))
		default:
			return fmt.Errorf("refbackend: size() of a non-container value")
		}
		return nil

	case ctx.FnArgv:
		idx := ins[0].(int64)
		if idx < 0 || int(idx) >= len(ip.Argv) {
			return fmt.Errorf("refbackend: argv(%d) out of range", idx)
		}
		env.Set(c.Outs[0], ip.Argv[idx])
		return nil

	case ctx.FnInputFile, ctx.FnUncachedInputFile:
		path, ok := ins[0].(string)
		if !ok {
			return fmt.Errorf("refbackend: input_file() with a non-string path")
		}
		env.Set(c.Outs[0], &FileVal{Path: path})
		return nil

	case ctx.FnInputURL:
		url, ok := ins[0].(string)
		if !ok {
			return fmt.Errorf("refbackend: input_url() with a non-string URL")
		}
		f, err := fetchToTmpFile(goCtx, url)
		if err != nil {
			return fmt.Errorf("refbackend: input_url(%s): %w", url, err)
		}
		env.Set(c.Outs[0], f)
		return nil

	case ctx.FnAssert:
		if !ins[0].(bool) {
			return fmt.Errorf("refbackend: assert() failed")
		}
		return nil

	case ctx.FnAssertEq:
		if ins[0] != ins[1] {
			return fmt.Errorf("refbackend: assert_eq() failed: %v != %v", ins[0], ins[1])
		}
		return nil

	default:
		return fmt.Errorf("refbackend: unhandled foreign function %q", c.Name)
	}
}

// fetchToTmpFile backs input_url(): it downloads url into a freshly
// allocated temp file, the same FileVal shape input_file() hands back
// for a local path, so downstream STORE_FILE/COPY_FILE instructions
// never need to know which special foreign produced the value.
func fetchToTmpFile(ctx context.Context, url string) (*FileVal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	path := freshTmpPath()
	out, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return nil, err
	}
	return &FileVal{Path: path}, nil
}
