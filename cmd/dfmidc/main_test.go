package main

import (
	"os"
	"strings"
	"testing"

	"github.com/dfcompiler/dfmid/internal/dftype"
)

func TestParseFixtureAndToTree(t *testing.T) {
	data, err := os.ReadFile("testdata/add.json")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	fx, err := parseFixture(data)
	if err != nil {
		t.Fatalf("parseFixture() error = %v", err)
	}
	if len(fx.Functions) != 1 || fx.Functions[0].Name != "add" {
		t.Fatalf("parseFixture() = %+v, want one function named add", fx)
	}

	tree, err := fx.Functions[0].Body.toTree()
	if err != nil {
		t.Fatalf("toTree() error = %v", err)
	}
	if tree.GetText() != "+" || tree.GetChildCount() != 2 {
		t.Errorf("toTree() = %+v, want a 2-child + operator node", tree)
	}
}

func TestFuncSigAndFuncSpec(t *testing.T) {
	data, err := os.ReadFile("testdata/add.json")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	fx, err := parseFixture(data)
	if err != nil {
		t.Fatalf("parseFixture() error = %v", err)
	}
	ff := fx.Functions[0]

	sig, err := funcSig(ff)
	if err != nil {
		t.Fatalf("funcSig() error = %v", err)
	}
	if len(sig.InputTypes) != 2 || len(sig.OutputTypes) != 1 {
		t.Errorf("funcSig() = %+v, want 2 inputs, 1 output", sig)
	}

	spec, err := funcSpec(ff)
	if err != nil {
		t.Fatalf("funcSpec() error = %v", err)
	}
	if spec.Name != "add" || len(spec.Inputs) != 2 || spec.Body == nil {
		t.Errorf("funcSpec() = %+v, want a populated add spec", spec)
	}
}

func TestCoerceArg(t *testing.T) {
	var raw []any
	if err := decodeJSONArgs(`[2, 3.5, true, "hi"]`, &raw); err != nil {
		t.Fatalf("decodeJSONArgs() error = %v", err)
	}

	i, err := coerceArg(dftype.Int, raw[0])
	if err != nil || i.(int64) != 2 {
		t.Errorf("coerceArg(Int, %v) = %v, %v, want 2, nil", raw[0], i, err)
	}
	f, err := coerceArg(dftype.Float, raw[1])
	if err != nil || f.(float64) != 3.5 {
		t.Errorf("coerceArg(Float, %v) = %v, %v, want 3.5, nil", raw[1], f, err)
	}
	b, err := coerceArg(dftype.Bool, raw[2])
	if err != nil || b.(bool) != true {
		t.Errorf("coerceArg(Bool, %v) = %v, %v, want true, nil", raw[2], b, err)
	}
	s, err := coerceArg(dftype.String, raw[3])
	if err != nil || s.(string) != "hi" {
		t.Errorf("coerceArg(String, %v) = %v, %v, want \"hi\", nil", raw[3], s, err)
	}

	if _, err := coerceArg(dftype.Int, raw[2]); err == nil {
		t.Error("coerceArg(Int, true) = nil error, want a type mismatch error")
	}
}

func TestParseTokenTypeRejectsUnknown(t *testing.T) {
	_, err := parseTokenType("NOT_A_REAL_TYPE")
	if err == nil || !strings.Contains(err.Error(), "unknown node type") {
		t.Errorf("parseTokenType() = %v, want an unknown-node-type error", err)
	}
}
