package parser

import "encoding/json"

type jsonNode struct {
	Kind  string     `json:"kind"`
	Line  int        `json:"line,omitempty"`
	Name  string     `json:"name,omitempty"`
	Value *jsonValue `json:"value,omitempty"`
	Left  *jsonNode  `json:"left,omitempty"`
	Right *jsonNode  `json:"right,omitempty"`
}

type jsonValue struct {
	Type   string   `json:"type"`
	Bool   *bool    `json:"bool,omitempty"`
	Int    *int64   `json:"int,omitempty"`
	Float  *float64 `json:"float,omitempty"`
	String *string  `json:"string,omitempty"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON())
}

func (n *Node) toJSON() *jsonNode {
	jn := &jsonNode{
		Kind: n.Kind.String(),
		Line: n.Line,
		Name: n.Name,
	}

	if n.Value != nil {
		jn.Value = valueToJSON(*n.Value)
	}
	if n.Left != nil {
		jn.Left = n.Left.toJSON()
	}
	if n.Right != nil {
		jn.Right = n.Right.toJSON()
	}

	return jn
}

func valueToJSON(v Value) *jsonValue {
	switch v.Kind {
	case ValueBool:
		return &jsonValue{Type: "bool", Bool: &v.Bool}
	case ValueInt:
		return &jsonValue{Type: "int", Int: &v.Int}
	case ValueFloat:
		return &jsonValue{Type: "float", Float: &v.Float}
	case ValueString:
		return &jsonValue{Type: "string", String: &v.Str}
	}
	return &jsonValue{Type: "nil"}
}
