package ml

import (
	"math"
	"strconv"
	"strings"
)

// Endpoint identifies one API operation.
type Endpoint struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

func (e Endpoint) String() string {
	return strings.ToUpper(e.Method) + " " + e.Path
}

// Request is one candidate call: the operation plus its parameters in
// definition order.
type Request struct {
	Endpoint Endpoint
	Params   []Param
}

// Param is a named request parameter.
type Param struct {
	Name  string
	Value Value
}

// Value is a parameter value. Leaf reduces wrappers down to the value that
// carries the data.
type Value interface {
	Leaf() Value
}

// Bounds constrains a numeric value; NORMAL encoding uses it when present.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type BoolValue struct {
	V bool
}

type IntValue struct {
	V      int32
	Bounds *Bounds
}

type LongValue struct {
	V      int64
	Bounds *Bounds
}

type FloatValue struct {
	V      float64
	Bounds *Bounds
}

// EnumValue is one of Size alternatives, identified by its ordinal.
type EnumValue struct {
	Index int
	Size  int
}

// NumericStringValue is a string parameter that must hold a number.
type NumericStringValue struct {
	Text   string
	Bounds *Bounds
}

// StringValue is free text. It cannot be encoded.
type StringValue struct {
	V string
}

// ObjectValue is a structured body. It cannot be encoded.
type ObjectValue struct {
	Fields []Param
}

// ArrayValue is a list. It cannot be encoded.
type ArrayValue struct {
	Items []Value
}

// OptionalValue wraps a value that may be omitted from the request.
type OptionalValue struct {
	Present bool
	Inner   Value
}

func (v BoolValue) Leaf() Value          { return v }
func (v IntValue) Leaf() Value           { return v }
func (v LongValue) Leaf() Value          { return v }
func (v FloatValue) Leaf() Value         { return v }
func (v EnumValue) Leaf() Value          { return v }
func (v NumericStringValue) Leaf() Value { return v }
func (v StringValue) Leaf() Value        { return v }
func (v ObjectValue) Leaf() Value        { return v }
func (v ArrayValue) Leaf() Value         { return v }

func (v OptionalValue) Leaf() Value {
	if v.Inner == nil {
		return nil
	}
	return v.Inner.Leaf()
}

// Number parses the text. It fails on NaN and infinities as well as on
// malformed input.
func (v NumericStringValue) Number() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
