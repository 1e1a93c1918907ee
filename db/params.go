package db

import (
	"encoding/json"
	"fmt"

	"rejectlearn/ml"
)

const (
	kindBool          = "bool"
	kindInt           = "int"
	kindLong          = "long"
	kindFloat         = "float"
	kindEnum          = "enum"
	kindNumericString = "numeric_string"
	kindString        = "string"
	kindObject        = "object"
	kindArray         = "array"
	kindOptional      = "optional"
)

type paramRecord struct {
	Name  string      `json:"name"`
	Value valueRecord `json:"value"`
}

type valueRecord struct {
	Kind    string        `json:"kind"`
	Bool    bool          `json:"bool,omitempty"`
	Int     int64         `json:"int,omitempty"`
	Float   float64       `json:"float,omitempty"`
	Text    string        `json:"text,omitempty"`
	Index   int           `json:"index,omitempty"`
	Size    int           `json:"size,omitempty"`
	Bounds  *ml.Bounds    `json:"bounds,omitempty"`
	Present bool          `json:"present,omitempty"`
	Inner   *valueRecord  `json:"inner,omitempty"`
	Fields  []paramRecord `json:"fields,omitempty"`
	Items   []valueRecord `json:"items,omitempty"`
}

func encodeParams(params []ml.Param) (string, error) {
	records, err := toParamRecords(params)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func decodeParams(payload string) ([]ml.Param, error) {
	var records []paramRecord
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil, err
	}
	return fromParamRecords(records)
}

func toParamRecords(params []ml.Param) ([]paramRecord, error) {
	records := make([]paramRecord, 0, len(params))
	for _, p := range params {
		v, err := toValueRecord(p.Value)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", p.Name, err)
		}
		records = append(records, paramRecord{Name: p.Name, Value: v})
	}
	return records, nil
}

func toValueRecord(value ml.Value) (valueRecord, error) {
	switch v := value.(type) {
	case ml.BoolValue:
		return valueRecord{Kind: kindBool, Bool: v.V}, nil
	case ml.IntValue:
		return valueRecord{Kind: kindInt, Int: int64(v.V), Bounds: v.Bounds}, nil
	case ml.LongValue:
		return valueRecord{Kind: kindLong, Int: v.V, Bounds: v.Bounds}, nil
	case ml.FloatValue:
		return valueRecord{Kind: kindFloat, Float: v.V, Bounds: v.Bounds}, nil
	case ml.EnumValue:
		return valueRecord{Kind: kindEnum, Index: v.Index, Size: v.Size}, nil
	case ml.NumericStringValue:
		return valueRecord{Kind: kindNumericString, Text: v.Text, Bounds: v.Bounds}, nil
	case ml.StringValue:
		return valueRecord{Kind: kindString, Text: v.V}, nil
	case ml.ObjectValue:
		fields, err := toParamRecords(v.Fields)
		if err != nil {
			return valueRecord{}, err
		}
		return valueRecord{Kind: kindObject, Fields: fields}, nil
	case ml.ArrayValue:
		items := make([]valueRecord, 0, len(v.Items))
		for _, item := range v.Items {
			r, err := toValueRecord(item)
			if err != nil {
				return valueRecord{}, err
			}
			items = append(items, r)
		}
		return valueRecord{Kind: kindArray, Items: items}, nil
	case ml.OptionalValue:
		r := valueRecord{Kind: kindOptional, Present: v.Present}
		if v.Inner != nil {
			inner, err := toValueRecord(v.Inner)
			if err != nil {
				return valueRecord{}, err
			}
			r.Inner = &inner
		}
		return r, nil
	default:
		return valueRecord{}, fmt.Errorf("cannot store value of type %T", value)
	}
}

func fromParamRecords(records []paramRecord) ([]ml.Param, error) {
	params := make([]ml.Param, 0, len(records))
	for _, r := range records {
		v, err := fromValueRecord(r.Value)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", r.Name, err)
		}
		params = append(params, ml.Param{Name: r.Name, Value: v})
	}
	return params, nil
}

func fromValueRecord(r valueRecord) (ml.Value, error) {
	switch r.Kind {
	case kindBool:
		return ml.BoolValue{V: r.Bool}, nil
	case kindInt:
		return ml.IntValue{V: int32(r.Int), Bounds: r.Bounds}, nil
	case kindLong:
		return ml.LongValue{V: r.Int, Bounds: r.Bounds}, nil
	case kindFloat:
		return ml.FloatValue{V: r.Float, Bounds: r.Bounds}, nil
	case kindEnum:
		return ml.EnumValue{Index: r.Index, Size: r.Size}, nil
	case kindNumericString:
		return ml.NumericStringValue{Text: r.Text, Bounds: r.Bounds}, nil
	case kindString:
		return ml.StringValue{V: r.Text}, nil
	case kindObject:
		fields, err := fromParamRecords(r.Fields)
		if err != nil {
			return nil, err
		}
		return ml.ObjectValue{Fields: fields}, nil
	case kindArray:
		items := make([]ml.Value, 0, len(r.Items))
		for _, item := range r.Items {
			v, err := fromValueRecord(item)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return ml.ArrayValue{Items: items}, nil
	case kindOptional:
		opt := ml.OptionalValue{Present: r.Present}
		if r.Inner != nil {
			inner, err := fromValueRecord(*r.Inner)
			if err != nil {
				return nil, err
			}
			opt.Inner = inner
		}
		return opt, nil
	default:
		return nil, fmt.Errorf("unknown value kind %q", r.Kind)
	}
}
