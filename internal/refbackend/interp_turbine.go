package refbackend

import (
	"fmt"
	"os"

	"github.com/dfcompiler/dfmid/internal/ir"
)

// execTurbine interprets the thin data-movement family. Several
// members (STRUCT_REF_LOOKUP, ARRAY_LOOKUP_REF_IMM, COPY_REF) are
// meant to hand back a live alias rather than a value snapshot; this
// reference interpreter gets that for free whenever the aliased value
// is itself a pointer/map type (*StructVal, *ArrayVal, *BagVal,
// *FileVal, RefVal) -- Go's own reference semantics do the aliasing
// work a real engine would do explicitly. Only a Ref into a bare
// scalar leaf would need real Cell-level aliasing, and the walker
// never takes that path (finishStructField always routes a scalar
// leaf through plain STRUCT_LOOKUP + copyByValue instead).
func (ip *Interp) execTurbine(env *Env, t *ir.TurbineOp) error {
	switch t.Op() {
	case ir.OpStoreScalar, ir.OpStoreFile, ir.OpStoreArray, ir.OpStoreBag, ir.OpStoreRef, ir.OpStoreRecursive:
		env.Set(t.Out, ip.evalArg(env, t.Ins[0]))
		return nil

	case ir.OpLoadScalar, ir.OpLoadFile, ir.OpLoadArray, ir.OpLoadBag, ir.OpLoadRef, ir.OpLoadRecursive:
		env.Set(t.Out, ip.evalArg(env, t.Ins[0]))
		return nil

	case ir.OpDerefScalar, ir.OpDerefFile:
		ref, ok := ip.evalArg(env, t.Ins[0]).(RefVal)
		if !ok {
			return fmt.Errorf("refbackend: deref of a non-Ref value")
		}
		env.Set(t.Out, ref.Target.Get())
		return nil

	case ir.OpArrayLookupRefImm, ir.OpArrayLookupFuture:
		arr, ok := ip.evalArg(env, t.Ins[0]).(*ArrayVal)
		if !ok {
			return fmt.Errorf("refbackend: array lookup on a non-array value")
		}
		key := keyString(ip.evalArg(env, t.Ins[1]))
		v, ok := arr.Lookup(key)
		if !ok {
			return fmt.Errorf("refbackend: array has no element at key %s", key)
		}
		env.Set(t.Out, v)
		return nil

	case ir.OpArrayInsertImm, ir.OpArrayInsertFuture:
		arr, ok := env.Get(t.Out).(*ArrayVal)
		if !ok {
			return fmt.Errorf("refbackend: array insert on a non-array value")
		}
		arr.Insert(keyString(ip.evalArg(env, t.Ins[0])), ip.evalArg(env, t.Ins[1]))
		return nil

	case ir.OpArrayBuild:
		n := len(t.Ins) / 2
		arr := NewArrayVal()
		for i := 0; i < n; i++ {
			arr.Insert(keyString(ip.evalArg(env, t.Ins[i])), ip.evalArg(env, t.Ins[n+i]))
		}
		env.Set(t.Out, arr)
		return nil

	case ir.OpBagInsert:
		bag, ok := env.Get(t.Out).(*BagVal)
		if !ok {
			return fmt.Errorf("refbackend: bag insert on a non-bag value")
		}
		bag.Insert(ip.evalArg(env, t.Ins[0]))
		return nil

	case ir.OpStructLookup, ir.OpStructRefLookup:
		s, ok := ip.evalArg(env, t.Ins[0]).(*StructVal)
		if !ok {
			return fmt.Errorf("refbackend: struct lookup on a non-struct value")
		}
		env.Set(t.Out, s.Get(t.Field))
		return nil

	case ir.OpCopyRef:
		env.Set(t.Out, ip.evalArg(env, t.Ins[0]))
		return nil

	case ir.OpCopyFile:
		src, ok := ip.evalArg(env, t.Ins[0]).(*FileVal)
		if !ok {
			return fmt.Errorf("refbackend: COPY_FILE of a non-file value")
		}
		dst := &FileVal{Path: freshTmpPath()}
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return fmt.Errorf("refbackend: COPY_FILE read %s: %w", src.Path, err)
		}
		if err := os.WriteFile(dst.Path, data, 0o644); err != nil {
			return fmt.Errorf("refbackend: COPY_FILE write %s: %w", dst.Path, err)
		}
		env.Set(t.Out, dst)
		return nil

	case ir.OpGetFilename, ir.OpGetFilenameVal:
		f, ok := ip.evalArg(env, t.Ins[0]).(*FileVal)
		if !ok {
			return fmt.Errorf("refbackend: GET_FILENAME of a non-file value")
		}
		env.Set(t.Out, f.Path)
		return nil

	case ir.OpSetFilenameVal:
		f, ok := env.Get(t.Out).(*FileVal)
		if !ok {
			return fmt.Errorf("refbackend: SET_FILENAME_VAL on a non-file value")
		}
		path, ok := ip.evalArg(env, t.Ins[0]).(string)
		if !ok {
			return fmt.Errorf("refbackend: SET_FILENAME_VAL with a non-string filename")
		}
		f.Path = path
		return nil

	case ir.OpChooseTmpFilename:
		env.Set(t.Out, &FileVal{Path: freshTmpPath()})
		return nil

	case ir.OpInitLocalOutputFile:
		path, ok := ip.evalArg(env, t.Ins[0]).(string)
		if !ok {
			return fmt.Errorf("refbackend: INIT_LOCAL_OUTPUT_FILE with a non-string mapping")
		}
		env.Set(t.Out, &FileVal{Path: path})
		return nil

	default:
		return fmt.Errorf("refbackend: unhandled turbine opcode %v", t.Op())
	}
}

func keyString(v any) string { return fmt.Sprintf("%v", v) }
