package ml

import (
	"errors"
	"fmt"
	"math"
)

// EncoderMode selects how leaf values become features.
type EncoderMode string

const (
	// EncoderRaw passes native values through.
	EncoderRaw EncoderMode = "raw"
	// EncoderNormal rescales values into a fixed range.
	EncoderNormal EncoderMode = "normal"
)

var ErrUnsupportedValue = errors.New("unsupported parameter value")

// Plausible magnitudes used to squash unbounded numbers in NORMAL mode.
const (
	plausibleInt   = 1e6
	plausibleLong  = 1e12
	plausibleFloat = 1e6
)

// Encoder turns requests into feature vectors, one feature per parameter in
// definition order.
type Encoder struct {
	mode EncoderMode
}

// NewEncoder returns an encoder for mode. An empty mode means RAW.
func NewEncoder(mode EncoderMode) (*Encoder, error) {
	switch mode {
	case "":
		mode = EncoderRaw
	case EncoderRaw, EncoderNormal:
	default:
		return nil, fmt.Errorf("unsupported encoder mode %q", mode)
	}
	return &Encoder{mode: mode}, nil
}

// AreAllGenesSupported reports whether every parameter reduces to an encodable
// leaf.
func (e *Encoder) AreAllGenesSupported(req Request) bool {
	for _, p := range req.Params {
		leaf, present := reduce(p.Value)
		if !supportedLeaf(leaf, present) {
			return false
		}
	}
	return true
}

// Encode returns the feature vector for req. A request with no parameters yields
// an empty vector, which callers treat as unknown.
func (e *Encoder) Encode(req Request) ([]float64, error) {
	features := make([]float64, 0, len(req.Params))
	for _, p := range req.Params {
		leaf, present := reduce(p.Value)
		if !supportedLeaf(leaf, present) {
			return nil, fmt.Errorf("param %q (%T): %w", p.Name, leaf, ErrUnsupportedValue)
		}
		if !present {
			features = append(features, 0)
			continue
		}
		features = append(features, e.encodeLeaf(leaf))
	}
	return features, nil
}

func (e *Encoder) encodeLeaf(leaf Value) float64 {
	switch v := leaf.(type) {
	case BoolValue:
		if v.V {
			return 1
		}
		return 0
	case IntValue:
		return e.scale(float64(v.V), v.Bounds, plausibleInt)
	case LongValue:
		return e.scale(float64(v.V), v.Bounds, plausibleLong)
	case FloatValue:
		return e.scale(v.V, v.Bounds, plausibleFloat)
	case EnumValue:
		if e.mode == EncoderRaw {
			return float64(v.Index)
		}
		if v.Size <= 1 {
			return 0
		}
		return clamp(float64(v.Index)/float64(v.Size-1), 0, 1)
	case NumericStringValue:
		f, _ := v.Number()
		return e.scale(f, v.Bounds, plausibleFloat)
	}
	return 0
}

func (e *Encoder) scale(x float64, bounds *Bounds, plausible float64) float64 {
	if e.mode == EncoderRaw {
		return x
	}
	if bounds != nil && bounds.Max > bounds.Min {
		return clamp((x-bounds.Min)/(bounds.Max-bounds.Min), 0, 1)
	}
	scaled := math.Log1p(math.Abs(x)) / math.Log1p(plausible)
	return clamp(math.Copysign(scaled, x), -1, 1)
}

// reduce walks wrappers down to the leaf. present is false when an optional
// somewhere on the way is omitted.
func reduce(v Value) (Value, bool) {
	present := true
	for {
		opt, ok := v.(OptionalValue)
		if !ok {
			break
		}
		present = present && opt.Present
		v = opt.Inner
	}
	if v == nil {
		return nil, present
	}
	return v.Leaf(), present
}

func supportedLeaf(leaf Value, present bool) bool {
	switch v := leaf.(type) {
	case BoolValue, IntValue, LongValue, FloatValue:
		return true
	case EnumValue:
		return v.Size <= 0 || (v.Index >= 0 && v.Index < v.Size)
	case NumericStringValue:
		if !present {
			return true
		}
		_, ok := v.Number()
		return ok
	}
	return false
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
