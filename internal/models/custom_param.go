package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DecimalScale is the fixed-point scale of Decimal parameters: 1.0 is stored as 10 000.
const DecimalScale int64 = 10_000

// CustomParam is one typed slot of a template's parameter schema. Kind selects
// which of the remaining fields are meaningful:
//
//	integer, decimal: Min, Max, Default
//	boolean:          DefaultBool
//	choice:           Options, DefaultIndex
type CustomParam struct {
	Name         string    `json:"name"`
	Kind         ParamKind `json:"kind"`
	Min          int64     `json:"min"`
	Max          int64     `json:"max"`
	Default      int64     `json:"default"`
	DefaultBool  bool      `json:"default_bool,omitempty"`
	Options      []string  `json:"options,omitempty"`
	DefaultIndex uint32    `json:"default_index"`
}

func IntegerParam(name string, min, max, def int64) CustomParam {
	return CustomParam{Name: name, Kind: ParamInteger, Min: min, Max: max, Default: def}
}

func DecimalParam(name string, min, max, def int64) CustomParam {
	return CustomParam{Name: name, Kind: ParamDecimal, Min: min, Max: max, Default: def}
}

func BooleanParam(name string, def bool) CustomParam {
	return CustomParam{Name: name, Kind: ParamBoolean, DefaultBool: def}
}

func ChoiceParam(name string, options []string, defaultIndex uint32) CustomParam {
	return CustomParam{Name: name, Kind: ParamChoice, Options: append([]string(nil), options...), DefaultIndex: defaultIndex}
}

// DefaultValue is the value a policy gets when the holder does not supply one.
func (p CustomParam) DefaultValue() CustomParamValue {
	switch p.Kind {
	case ParamInteger, ParamDecimal:
		return CustomParamValue{Name: p.Name, Kind: p.Kind, Int: p.Default}
	case ParamBoolean:
		return CustomParamValue{Name: p.Name, Kind: p.Kind, Bool: p.DefaultBool}
	case ParamChoice:
		return CustomParamValue{Name: p.Name, Kind: p.Kind, Index: p.DefaultIndex}
	default:
		return CustomParamValue{Name: p.Name, Kind: p.Kind}
	}
}

// CustomParamValue is a value supplied for, or resolved from, a CustomParam.
// Int carries Integer and Decimal values, Index carries Choice values.
type CustomParamValue struct {
	Name  string    `json:"name"`
	Kind  ParamKind `json:"kind"`
	Int   int64     `json:"int,omitempty"`
	Bool  bool      `json:"bool,omitempty"`
	Index uint32    `json:"index,omitempty"`
}

func IntegerValue(name string, v int64) CustomParamValue {
	return CustomParamValue{Name: name, Kind: ParamInteger, Int: v}
}

func DecimalValue(name string, v int64) CustomParamValue {
	return CustomParamValue{Name: name, Kind: ParamDecimal, Int: v}
}

func BooleanValue(name string, v bool) CustomParamValue {
	return CustomParamValue{Name: name, Kind: ParamBoolean, Bool: v}
}

func ChoiceValue(name string, index uint32) CustomParamValue {
	return CustomParamValue{Name: name, Kind: ParamChoice, Index: index}
}

// CustomParams is stored as a JSONB column.
type CustomParams []CustomParam

func (c CustomParams) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

func (c *CustomParams) Scan(value any) error {
	b, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("CustomParams: %w", err)
	}
	if b == nil {
		*c = nil
		return nil
	}
	return json.Unmarshal(b, c)
}

// Clone returns a deep copy so stored templates never share option slices.
func (c CustomParams) Clone() CustomParams {
	if c == nil {
		return nil
	}
	out := make(CustomParams, len(c))
	for i, p := range c {
		p.Options = append([]string(nil), p.Options...)
		out[i] = p
	}
	return out
}

// CustomParamValues is stored as a JSONB column, in schema order.
type CustomParamValues []CustomParamValue

func (c CustomParamValues) Value() (driver.Value, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c)
}

func (c *CustomParamValues) Scan(value any) error {
	b, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("CustomParamValues: %w", err)
	}
	if b == nil {
		*c = nil
		return nil
	}
	return json.Unmarshal(b, c)
}

// Lookup returns the resolved value for name.
func (c CustomParamValues) Lookup(name string) (CustomParamValue, bool) {
	for _, v := range c {
		if v.Name == name {
			return v, true
		}
	}
	return CustomParamValue{}, false
}

func jsonBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("scan failed, expected []byte but got %T", value)
	}
}
