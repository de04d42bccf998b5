package refbackend

import (
	"context"
	"fmt"

	"github.com/dfcompiler/dfmid/internal/arg"
	"github.com/dfcompiler/dfmid/internal/codec"
	"github.com/dfcompiler/dfmid/internal/ir"
)

// execCheckpoint interprets the checkpoint cache primitives against
// ip.Checkpoints. PACK_VALUES/UNPACK_VALUES go through
// internal/codec's wire format, which only ever packs resolved
// constants (codec.Pack rejects a live variable reference) --
// toConstArg re-wraps an already-evaluated runtime value as the
// arg.Arg constant codec expects, since by the time an instruction
// runs here every input has already been reduced to a Go value.
func (ip *Interp) execCheckpoint(ctx context.Context, env *Env, c *ir.CheckpointOp) error {
	switch c.Op() {
	case ir.OpLookupCheckpoint:
		keyBlob, ok := ip.evalArg(env, c.Ins[0]).([]byte)
		if !ok {
			return fmt.Errorf("refbackend: LOOKUP_CHECKPOINT with a non-blob key")
		}
		exists, val, err := ip.Checkpoints.Lookup(ctx, keyBlob)
		if err != nil {
			return fmt.Errorf("refbackend: checkpoint lookup: %w", err)
		}
		env.Set(c.Outs[0], exists)
		env.Set(c.Outs[1], val)
		return nil

	case ir.OpWriteCheckpoint:
		keyBlob, ok := ip.evalArg(env, c.Ins[0]).([]byte)
		if !ok {
			return fmt.Errorf("refbackend: WRITE_CHECKPOINT with a non-blob key")
		}
		valBlob, ok := ip.evalArg(env, c.Ins[1]).([]byte)
		if !ok {
			return fmt.Errorf("refbackend: WRITE_CHECKPOINT with a non-blob value")
		}
		if err := ip.Checkpoints.Write(ctx, keyBlob, valBlob); err != nil {
			return fmt.Errorf("refbackend: checkpoint write: %w", err)
		}
		return nil

	case ir.OpPackValues:
		vals := make([]arg.Arg, 0, len(c.Ins)+1)
		vals = append(vals, arg.Str(c.FnName))
		for _, in := range c.Ins {
			vals = append(vals, toConstArg(ip.evalArg(env, in)))
		}
		blob, err := codec.Pack(vals)
		if err != nil {
			return fmt.Errorf("refbackend: PACK_VALUES: %w", err)
		}
		env.Set(c.Outs[0], blob)
		return nil

	case ir.OpUnpackValues:
		blob, ok := ip.evalArg(env, c.Ins[0]).([]byte)
		if !ok {
			return fmt.Errorf("refbackend: UNPACK_VALUES with a non-blob input")
		}
		decoded, err := codec.Unpack(blob)
		if err != nil {
			return fmt.Errorf("refbackend: UNPACK_VALUES: %w", err)
		}
		if len(decoded) != len(c.Outs)+1 {
			return fmt.Errorf("refbackend: UNPACK_VALUES expected %d values, got %d", len(c.Outs)+1, len(decoded))
		}
		for i, out := range c.Outs {
			env.Set(out, fromCodecValue(decoded[i+1]))
		}
		return nil

	case ir.OpFreeBlob:
		return nil // garbage-collected; nothing to release explicitly

	default:
		return fmt.Errorf("refbackend: unhandled checkpoint opcode %v", c.Op())
	}
}

// containerTag marks which runtime container a packed ListConst came
// from, since the wire format (internal/codec.KindList) is otherwise
// just an untyped nested sequence: it is always the first element of
// the list, ahead of the flattened contents.
const (
	tagArray  = "array"
	tagBag    = "bag"
	tagStruct = "struct"
	tagFile   = "file"
)

// toConstArg re-wraps an already-evaluated runtime value as the
// arg.Arg constant internal/codec expects. Containers are flattened
// recursively into a tagged arg.ListConst so PACK_VALUES/UNPACK_VALUES
// round-trip an array/bag/struct/file argument instead of silently
// dropping its contents.
func toConstArg(v any) arg.Arg {
	switch x := v.(type) {
	case int64:
		return arg.Int(x)
	case int:
		return arg.Int(int64(x))
	case float64:
		return arg.FloatVal(x)
	case bool:
		return arg.Bool(x)
	case string:
		return arg.Str(x)
	case []byte:
		return arg.Blob(x)
	case *ArrayVal:
		items := []arg.Arg{arg.Str(tagArray)}
		for _, kv := range x.Pairs() {
			items = append(items, arg.ListVal([]arg.Arg{arg.Str(kv.Key), toConstArg(kv.Val)}))
		}
		return arg.ListVal(items)
	case *BagVal:
		items := []arg.Arg{arg.Str(tagBag)}
		for _, e := range x.Elems() {
			items = append(items, toConstArg(e))
		}
		return arg.ListVal(items)
	case *StructVal:
		items := []arg.Arg{arg.Str(tagStruct)}
		for _, f := range x.Fields() {
			items = append(items, arg.ListVal([]arg.Arg{arg.Str(f.Key), toConstArg(f.Val)}))
		}
		return arg.ListVal(items)
	case *FileVal:
		return arg.ListVal([]arg.Arg{arg.Str(tagFile), arg.Str(x.Path)})
	default:
		return arg.VoidVal()
	}
}

func fromCodecValue(v codec.Value) any {
	switch v.Kind {
	case codec.KindInt:
		return v.I
	case codec.KindFloat:
		return v.F
	case codec.KindBool:
		return v.B
	case codec.KindString:
		return v.S
	case codec.KindBlob:
		return v.Blob
	case codec.KindList:
		return fromCodecList(v.List)
	default:
		return nil
	}
}

// fromCodecList reconstructs the runtime container fromCodecValue's
// encoding of a KindList: an empty list decodes as the untyped void
// value; otherwise the first element is the containerTag written by
// toConstArg, and the rest its flattened contents.
func fromCodecList(list []codec.Value) any {
	if len(list) == 0 {
		return nil
	}
	tag := list[0]
	if tag.Kind != codec.KindString {
		return nil
	}
	switch tag.S {
	case tagArray:
		arr := NewArrayVal()
		for _, pair := range list[1:] {
			if len(pair.List) != 2 {
				continue
			}
			arr.Insert(pair.List[0].S, fromCodecValue(pair.List[1]))
		}
		return arr
	case tagBag:
		bag := NewBagVal()
		for _, elem := range list[1:] {
			bag.Insert(fromCodecValue(elem))
		}
		return bag
	case tagStruct:
		st := NewStructVal()
		for _, pair := range list[1:] {
			if len(pair.List) != 2 {
				continue
			}
			st.Set(pair.List[0].S, fromCodecValue(pair.List[1]))
		}
		return st
	case tagFile:
		if len(list) != 2 {
			return nil
		}
		return &FileVal{Path: list[1].S}
	default:
		return nil
	}
}
