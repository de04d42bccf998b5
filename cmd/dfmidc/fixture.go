package main

import (
	"encoding/json"
	"fmt"

	"github.com/dfcompiler/dfmid/internal/dfast"
	"github.com/dfcompiler/dfmid/internal/dftype"
)

// fixture is the on-disk JSON shape dfmidc reads: a batch of function
// signatures paired with a hand-authored expression tree for each
// body, standing in for whatever a real surface-language parser would
// otherwise hand the walker.
type fixture struct {
	Functions []fixtureFunc `json:"functions"`
}

type fixtureFunc struct {
	Name    string         `json:"name"`
	Inputs  []fixtureParam `json:"inputs"`
	Outputs []fixtureParam `json:"outputs"`
	Body    fixtureNode    `json:"body"`
}

type fixtureParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// fixtureNode mirrors dfast.Node but with JSON-friendly field names
// and a symbolic token-type string rather than the numeric TokenType.
type fixtureNode struct {
	Type     string        `json:"type"`
	Text     string        `json:"text"`
	Line     int           `json:"line"`
	Children []fixtureNode `json:"children"`
}

func parseFixture(data []byte) (*fixture, error) {
	var f fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("dfmidc: parsing fixture: %w", err)
	}
	return &f, nil
}

func (n fixtureNode) toTree() (*dfast.Node, error) {
	tt, err := parseTokenType(n.Type)
	if err != nil {
		return nil, err
	}
	children := make([]*dfast.Node, len(n.Children))
	for i, c := range n.Children {
		child, err := c.toTree()
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	return dfast.NewNode(tt, n.Text, n.Line, children...), nil
}

func parseTokenType(s string) (dfast.TokenType, error) {
	switch s {
	case "VARIABLE":
		return dfast.Variable, nil
	case "INT_LITERAL":
		return dfast.IntLiteral, nil
	case "FLOAT_LITERAL":
		return dfast.FloatLiteral, nil
	case "STRING_LITERAL":
		return dfast.StringLiteral, nil
	case "BOOL_LITERAL":
		return dfast.BoolLiteral, nil
	case "OPERATOR":
		return dfast.Operator, nil
	case "CALL_FUNCTION":
		return dfast.CallFunction, nil
	case "ARRAY_LOAD":
		return dfast.ArrayLoad, nil
	case "STRUCT_LOAD":
		return dfast.StructLoad, nil
	case "ARRAY_RANGE":
		return dfast.ArrayRange, nil
	case "ARRAY_ELEMS":
		return dfast.ArrayElems, nil
	case "ARRAY_KV_ELEMS":
		return dfast.ArrayKVElems, nil
	default:
		return 0, fmt.Errorf("dfmidc: unknown node type %q", s)
	}
}

func parsePrimType(s string) (*dftype.Type, error) {
	k, err := parsePrimKind(s)
	if err != nil {
		return nil, err
	}
	return dftype.PrimValue(k), nil
}

func parsePrimKind(s string) (dftype.PrimKind, error) {
	switch s {
	case "int":
		return dftype.Int, nil
	case "float":
		return dftype.Float, nil
	case "bool":
		return dftype.Bool, nil
	case "string":
		return dftype.String, nil
	case "blob":
		return dftype.Blob, nil
	case "file":
		return dftype.File, nil
	default:
		return 0, fmt.Errorf("dfmidc: unknown primitive type %q", s)
	}
}
