package parser

import "strconv"

type ValueKind int

const (
	ValueNil ValueKind = iota
	ValueBool
	ValueInt
	ValueFloat
	ValueString
)

// Value is the payload carried by literal and identifier tokens and by
// Literal AST nodes. Exactly one of the typed fields is meaningful,
// selected by Kind.
type Value struct {
	Kind  ValueKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

func NilValue() Value {
	return Value{Kind: ValueNil}
}

func BoolValue(b bool) Value {
	return Value{Kind: ValueBool, Bool: b}
}

func IntValue(n int64) Value {
	return Value{Kind: ValueInt, Int: n}
}

func FloatValue(f float64) Value {
	return Value{Kind: ValueFloat, Float: f}
}

func StringValue(s string) Value {
	return Value{Kind: ValueString, Str: s}
}

func (v Value) String() string {
	switch v.Kind {
	case ValueBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ValueString:
		return strconv.Quote(v.Str)
	}
	return "nil"
}
