package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/epiagent/epiagent-cli/internal/catalogue"
)

// Kind tags the shape carried by a Value.
type Kind string

const (
	KindNull      Kind = "null"
	KindBool      Kind = "bool"
	KindNumber    Kind = "number"
	KindString    Kind = "string"
	KindList      Kind = "list"
	KindRecord    Kind = "record"
	KindDataFrame Kind = "dataframe"
	KindSeries    Kind = "series"
)

// Value is the tagged union of argument and result shapes exchanged with R.
//
// Plain JSON scalars, arrays and objects map to null/bool/number/string/list/
// record. Two tagged object forms carry tabular data:
//
//	{"type": "dataframe", "records": [{...}, ...]}
//	{"type": "series", "values": {...}}
type Value struct {
	Kind    Kind
	Bool    bool
	Number  float64
	String  string
	List    []Value
	Record  map[string]Value
	Records []map[string]Value // dataframe rows
}

// Null, Bool, Number and friends are convenience constructors.
func Null() Value { return Value{Kind: KindNull} }
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }
func Number(f float64) Value { return Value{Kind: KindNumber, Number: f} }
func String(s string) Value { return Value{Kind: KindString, String: s} }
func List(vs ...Value) Value { return Value{Kind: KindList, List: vs} }
func Record(m map[string]Value) Value { return Value{Kind: KindRecord, Record: m} }
func Series(m map[string]Value) Value { return Value{Kind: KindSeries, Record: m} }
func DataFrame(rows []map[string]Value) Value {
	return Value{Kind: KindDataFrame, Records: rows}
}

// MarshalJSON encodes the value in its plain or tagged JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull, "":
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.Bool)
	case KindNumber:
		return json.Marshal(v.Number)
	case KindString:
		return json.Marshal(v.String)
	case KindList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case KindRecord:
		if v.Record == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.Record)
	case KindSeries:
		values := v.Record
		if values == nil {
			values = map[string]Value{}
		}
		return json.Marshal(struct {
			Type   Kind             `json:"type"`
			Values map[string]Value `json:"values"`
		}{KindSeries, values})
	case KindDataFrame:
		rows := v.Records
		if rows == nil {
			rows = []map[string]Value{}
		}
		return json.Marshal(struct {
			Type    Kind               `json:"type"`
			Records []map[string]Value `json:"records"`
		}{KindDataFrame, rows})
	default:
		return nil, fmt.Errorf("%w: unknown value kind %q", catalogue.ErrInvalidInput, v.Kind)
	}
}

// UnmarshalJSON decodes plain JSON or a tagged dataframe/series object.
func (v *Value) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %v", catalogue.ErrInvalidInput, err)
	}
	out, err := FromAny(raw)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// FromAny converts a decoded JSON tree (as produced by encoding/json) into a Value.
func FromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case float64:
		return Number(x), nil
	case int:
		return Number(float64(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: invalid number %q", catalogue.ErrInvalidInput, x.String())
		}
		return Number(f), nil
	case string:
		return String(x), nil
	case []any:
		list := make([]Value, 0, len(x))
		for i, item := range x {
			v, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			list = append(list, v)
		}
		return List(list...), nil
	case map[string]any:
		return fromObject(x)
	default:
		return Value{}, fmt.Errorf("%w: unsupported JSON type %T", catalogue.ErrInvalidInput, raw)
	}
}

func fromObject(m map[string]any) (Value, error) {
	if tag, ok := m["type"].(string); ok {
		switch Kind(tag) {
		case KindDataFrame:
			if recs, ok := m["records"]; ok {
				return dataFrameFromAny(recs)
			}
		case KindSeries:
			if vals, ok := m["values"]; ok {
				obj, isObj := vals.(map[string]any)
				if !isObj {
					return Value{}, fmt.Errorf("%w: series values must be an object", catalogue.ErrInvalidInput)
				}
				rec, err := recordFromAny(obj)
				if err != nil {
					return Value{}, err
				}
				return Series(rec), nil
			}
		}
	}
	rec, err := recordFromAny(m)
	if err != nil {
		return Value{}, err
	}
	return Record(rec), nil
}

func dataFrameFromAny(raw any) (Value, error) {
	rows, ok := raw.([]any)
	if !ok {
		return Value{}, fmt.Errorf("%w: dataframe records must be an array", catalogue.ErrInvalidInput)
	}
	out := make([]map[string]Value, 0, len(rows))
	for i, row := range rows {
		obj, ok := row.(map[string]any)
		if !ok {
			return Value{}, fmt.Errorf("%w: dataframe record %d is not an object", catalogue.ErrInvalidInput, i)
		}
		rec, err := recordFromAny(obj)
		if err != nil {
			return Value{}, fmt.Errorf("dataframe record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return DataFrame(out), nil
}

func recordFromAny(m map[string]any) (map[string]Value, error) {
	out := make(map[string]Value, len(m))
	for _, k := range sortedKeys(m) {
		v, err := FromAny(m[k])
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

// Interface converts the value back to a plain Go tree suitable for json.Marshal.
func (v Value) Interface() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Number
	case KindString:
		return v.String
	case KindList:
		out := make([]any, 0, len(v.List))
		for _, item := range v.List {
			out = append(out, item.Interface())
		}
		return out
	case KindRecord:
		return interfaceMap(v.Record)
	case KindSeries:
		return map[string]any{"type": string(KindSeries), "values": interfaceMap(v.Record)}
	case KindDataFrame:
		rows := make([]any, 0, len(v.Records))
		for _, r := range v.Records {
			rows = append(rows, interfaceMap(r))
		}
		return map[string]any{"type": string(KindDataFrame), "records": rows}
	default:
		return nil
	}
}

func interfaceMap(m map[string]Value) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v.Interface()
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
