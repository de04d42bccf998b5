package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dfcompiler/dfmid/internal/ctx"
	"github.com/dfcompiler/dfmid/internal/driver"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// decodeJSONArgs parses a JSON array of -args values into out, keeping
// numbers as json.Number so coerceArg can pick int64 vs float64 based
// on the destination variable's declared kind rather than whatever
// encoding/json would guess on its own.
func decodeJSONArgs(s string, out *[]any) error {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	return dec.Decode(out)
}

func typedNames(ps []fixtureParam) ([]ctx.TypedName, error) {
	out := make([]ctx.TypedName, len(ps))
	for i, p := range ps {
		t, err := parsePrimType(p.Type)
		if err != nil {
			return nil, err
		}
		out[i] = ctx.TypedName{Name: p.Name, Type: t}
	}
	return out, nil
}

func funcSig(ff fixtureFunc) (*ctx.FuncSig, error) {
	inputs, err := typedNames(ff.Inputs)
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", ff.Name, err)
	}
	outputs, err := typedNames(ff.Outputs)
	if err != nil {
		return nil, fmt.Errorf("function %q: %w", ff.Name, err)
	}
	return &ctx.FuncSig{Name: ff.Name, InputTypes: inputsRef(inputs), OutputTypes: inputsRef(outputs)}, nil
}

// inputsRef takes the address of each slice element so FuncSig's
// []*TypedName field can point at them without a second allocation
// pass per element.
func inputsRef(ts []ctx.TypedName) []*ctx.TypedName {
	out := make([]*ctx.TypedName, len(ts))
	for i := range ts {
		out[i] = &ts[i]
	}
	return out
}

func funcSpec(ff fixtureFunc) (driver.FuncSpec, error) {
	inputs, err := typedNames(ff.Inputs)
	if err != nil {
		return driver.FuncSpec{}, fmt.Errorf("function %q: %w", ff.Name, err)
	}
	outputs, err := typedNames(ff.Outputs)
	if err != nil {
		return driver.FuncSpec{}, fmt.Errorf("function %q: %w", ff.Name, err)
	}
	body, err := ff.Body.toTree()
	if err != nil {
		return driver.FuncSpec{}, fmt.Errorf("function %q: %w", ff.Name, err)
	}
	return driver.FuncSpec{Name: ff.Name, Inputs: inputs, Outputs: outputs, Body: body}, nil
}

// coerceArg converts one -args JSON element (already decoded with
// json.Decoder.UseNumber, so numbers arrive as json.Number) into the
// Go value the reference interpreter expects for kind.
func coerceArg(kind dftype.PrimKind, v any) (any, error) {
	switch kind {
	case dftype.Int:
		n, ok := v.(json.Number)
		if !ok {
			return nil, fmt.Errorf("want an int, got %T", v)
		}
		return n.Int64()
	case dftype.Float:
		n, ok := v.(json.Number)
		if !ok {
			return nil, fmt.Errorf("want a float, got %T", v)
		}
		return n.Float64()
	case dftype.Bool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("want a bool, got %T", v)
		}
		return b, nil
	case dftype.String:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("want a string, got %T", v)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported argument kind %v", kind)
	}
}
