package codec

import (
	"testing"

	"github.com/dfcompiler/dfmid/internal/arg"
)

func TestPackUnpackRoundTripsScalars(t *testing.T) {
	vals := []arg.Arg{
		arg.Int(42),
		arg.FloatVal(3.5),
		arg.Bool(true),
		arg.Str("hello"),
		arg.Blob([]byte{1, 2, 3}),
	}
	blob, err := Pack(vals)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	got, err := Unpack(blob)
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	if len(got) != len(vals) {
		t.Fatalf("Unpack() returned %d values, want %d", len(got), len(vals))
	}

	if got[0].Kind != KindInt || got[0].I != 42 {
		t.Errorf("got[0] = %+v, want KindInt 42", got[0])
	}
	if got[1].Kind != KindFloat || got[1].F != 3.5 {
		t.Errorf("got[1] = %+v, want KindFloat 3.5", got[1])
	}
	if got[2].Kind != KindBool || got[2].B != true {
		t.Errorf("got[2] = %+v, want KindBool true", got[2])
	}
	if got[3].Kind != KindString || got[3].S != "hello" {
		t.Errorf("got[3] = %+v, want KindString \"hello\"", got[3])
	}
	if got[4].Kind != KindBlob || string(got[4].Blob) != "\x01\x02\x03" {
		t.Errorf("got[4] = %+v, want KindBlob {1,2,3}", got[4])
	}
}

func TestPackUnpackEmptyList(t *testing.T) {
	blob, err := Pack(nil)
	if err != nil {
		t.Fatalf("Pack(nil) error = %v", err)
	}
	got, err := Unpack(blob)
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Unpack(Pack(nil)) = %d values, want 0", len(got))
	}
}

func TestPackVoidConstPacksAsEmptyList(t *testing.T) {
	blob, err := Pack([]arg.Arg{arg.VoidVal()})
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	got, err := Unpack(blob)
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Unpack() returned %d values, want 1", len(got))
	}
	if got[0].Kind != KindList || len(got[0].List) != 0 {
		t.Errorf("got[0] = %+v, want an empty KindList", got[0])
	}
}

func TestPackRejectsLiveVarRef(t *testing.T) {
	// A VarRef carries no *dftype.Var here; we only need IsConst() to be
	// false to exercise the rejection path, which doesn't touch Var().
	_, err := Pack([]arg.Arg{arg.VarRef(nil)})
	if err == nil {
		t.Fatal("Pack() = nil error, want an error packing a live variable reference")
	}
}

func TestPackNormalizesStringsToNFC(t *testing.T) {
	// "e" + combining acute accent (NFD) should normalize to the
	// single precomposed "e with acute" (NFC) codepoint before packing,
	// so two spellings of the same string collide to the same blob.
	decomposed := "é"
	precomposed := "é"

	blobA, err := Pack([]arg.Arg{arg.Str(decomposed)})
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	blobB, err := Pack([]arg.Arg{arg.Str(precomposed)})
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if string(blobA) != string(blobB) {
		t.Errorf("Pack(NFD) and Pack(NFC) of the same string produced different blobs")
	}

	got, err := Unpack(blobA)
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	if got[0].S != precomposed {
		t.Errorf("Unpack() string = %q, want the NFC form %q", got[0].S, precomposed)
	}
}

func TestUnpackTruncatedBlobErrors(t *testing.T) {
	blob, err := Pack([]arg.Arg{arg.Int(7)})
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if _, err := Unpack(blob[:len(blob)-2]); err == nil {
		t.Fatal("Unpack() of a truncated blob = nil error, want an error")
	}
}

func TestUnpackUnknownTagErrors(t *testing.T) {
	blob, err := Pack([]arg.Arg{arg.Int(1)})
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	// Byte 4 is the tag byte following the 4-byte count prefix; stomp
	// it with a value no ValueKind constant uses.
	blob[4] = 0xEE
	if _, err := Unpack(blob); err == nil {
		t.Fatal("Unpack() of an unknown tag byte = nil error, want an error")
	}
}

func TestPackUnpackRoundTripsNestedList(t *testing.T) {
	// Mirrors how internal/refbackend flattens a container value: a
	// tag string followed by its elements, each possibly itself a
	// nested list (e.g. a key/value pair).
	inner := arg.ListVal([]arg.Arg{arg.Str("k"), arg.Int(9)})
	outer := arg.ListVal([]arg.Arg{arg.Str("array"), inner})

	blob, err := Pack([]arg.Arg{outer})
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	got, err := Unpack(blob)
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	if len(got) != 1 || got[0].Kind != KindList || len(got[0].List) != 2 {
		t.Fatalf("Unpack() = %+v, want a 2-element KindList", got)
	}
	if got[0].List[0].S != "array" {
		t.Errorf("List[0] = %+v, want tag string %q", got[0].List[0], "array")
	}
	pair := got[0].List[1]
	if pair.Kind != KindList || len(pair.List) != 2 || pair.List[0].S != "k" || pair.List[1].I != 9 {
		t.Errorf("List[1] = %+v, want the nested [\"k\", 9] pair", pair)
	}
}

func TestPackMultipleValuesPreservesOrder(t *testing.T) {
	vals := []arg.Arg{arg.Int(1), arg.Int(2), arg.Int(3)}
	blob, err := Pack(vals)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	got, err := Unpack(blob)
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	for i, want := range []int64{1, 2, 3} {
		if got[i].I != want {
			t.Errorf("got[%d].I = %d, want %d", i, got[i].I, want)
		}
	}
}
