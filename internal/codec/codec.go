// Package codec implements the checkpoint value wire format: a
// length-prefixed binary encoding of an argument list, used both to
// build a checkpoint lookup key (packed inputs) and to serialize a
// call's results for storage (packed outputs).
//
// Uses golang.org/x/text/unicode/norm: every string value is
// normalized to NFC before encoding, so two keys differing only in
// Unicode normalization collide correctly.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/text/unicode/norm"

	"github.com/dfcompiler/dfmid/internal/arg"
)

// Value is the decoded form of one packed argument: a codec-level
// union mirroring arg.ConstKind plus an explicit list variant for
// container contents flattened during packing.
type Value struct {
	Kind ValueKind
	I    int64
	F    float64
	B    bool
	S    string
	Blob []byte
	List []Value
}

type ValueKind int

const (
	KindInt ValueKind = iota
	KindFloat
	KindBool
	KindString
	KindBlob
	KindList
)

// Pack encodes vals as a length-prefixed binary blob: a uint32 count,
// then for each value a one-byte kind tag followed by its
// kind-specific payload.
func Pack(vals []arg.Arg) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, uint32(len(vals))); err != nil {
		return nil, fmt.Errorf("codec: pack count: %w", err)
	}
	for _, v := range vals {
		if err := packOne(&buf, v); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func packOne(buf *bytes.Buffer, v arg.Arg) error {
	if !v.IsConst() {
		return fmt.Errorf("codec: cannot pack a live variable reference, only resolved constants")
	}
	switch v.ConstKind() {
	case arg.IntConst:
		buf.WriteByte(byte(KindInt))
		return binary.Write(buf, binary.BigEndian, v.IntVal())
	case arg.FloatConst:
		buf.WriteByte(byte(KindFloat))
		return binary.Write(buf, binary.BigEndian, v.FloatValue())
	case arg.BoolConst:
		buf.WriteByte(byte(KindBool))
		bv := byte(0)
		if v.BoolVal() {
			bv = 1
		}
		return buf.WriteByte(bv)
	case arg.StringConst:
		buf.WriteByte(byte(KindString))
		return writeBytes(buf, []byte(norm.NFC.String(v.StringVal())))
	case arg.BlobConst:
		buf.WriteByte(byte(KindBlob))
		return writeBytes(buf, v.BlobVal())
	case arg.VoidConst:
		buf.WriteByte(byte(KindList))
		return binary.Write(buf, binary.BigEndian, uint32(0))
	case arg.ListConst:
		buf.WriteByte(byte(KindList))
		items := v.ListVal()
		if err := binary.Write(buf, binary.BigEndian, uint32(len(items))); err != nil {
			return err
		}
		for _, item := range items {
			if err := packOne(buf, item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("codec: unknown const kind %v", v.ConstKind())
	}
}

func writeBytes(buf *bytes.Buffer, b []byte) error {
	if err := binary.Write(buf, binary.BigEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := buf.Write(b)
	return err
}

// Unpack decodes a blob produced by Pack back into a Value list.
func Unpack(blob []byte) ([]Value, error) {
	r := bytes.NewReader(blob)
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, fmt.Errorf("codec: unpack count: %w", err)
	}
	out := make([]Value, n)
	for i := range out {
		v, err := unpackOne(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func unpackOne(r *bytes.Reader) (Value, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return Value{}, fmt.Errorf("codec: unpack tag: %w", err)
	}
	switch ValueKind(tagByte) {
	case KindInt:
		var i int64
		if err := binary.Read(r, binary.BigEndian, &i); err != nil {
			return Value{}, err
		}
		return Value{Kind: KindInt, I: i}, nil
	case KindFloat:
		var f float64
		if err := binary.Read(r, binary.BigEndian, &f); err != nil {
			return Value{}, err
		}
		return Value{Kind: KindFloat, F: f}, nil
	case KindBool:
		b, err := r.ReadByte()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindBool, B: b != 0}, nil
	case KindString:
		b, err := readBytes(r)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindString, S: string(b)}, nil
	case KindBlob:
		b, err := readBytes(r)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindBlob, Blob: b}, nil
	case KindList:
		var n uint32
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return Value{}, err
		}
		list := make([]Value, n)
		for i := range list {
			v, err := unpackOne(r)
			if err != nil {
				return Value{}, err
			}
			list[i] = v
		}
		return Value{Kind: KindList, List: list}, nil
	default:
		return Value{}, fmt.Errorf("codec: unknown value tag %d", tagByte)
	}
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
