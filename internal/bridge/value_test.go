package bridge

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_DecodePlainJSON(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`{"a": [1, "two", true, null], "b": {"c": 2.5}}`), &v))

	require.Equal(t, KindRecord, v.Kind)
	list := v.Record["a"]
	require.Equal(t, KindList, list.Kind)
	require.Len(t, list.List, 4)
	assert.Equal(t, Number(1), list.List[0])
	assert.Equal(t, String("two"), list.List[1])
	assert.Equal(t, Bool(true), list.List[2])
	assert.Equal(t, KindNull, list.List[3].Kind)
	assert.Equal(t, 2.5, v.Record["b"].Record["c"].Number)
}

func TestValue_DecodeTaggedForms(t *testing.T) {
	var df Value
	require.NoError(t, json.Unmarshal([]byte(`{"type":"dataframe","records":[{"date":"2024-01-01","count":3}]}`), &df))
	require.Equal(t, KindDataFrame, df.Kind)
	require.Len(t, df.Records, 1)
	assert.Equal(t, Number(3), df.Records[0]["count"])

	var s Value
	require.NoError(t, json.Unmarshal([]byte(`{"type":"series","values":{"a":1,"b":2}}`), &s))
	require.Equal(t, KindSeries, s.Kind)
	assert.Equal(t, Number(2), s.Record["b"])

	// A "type" key without the companion field is an ordinary record.
	var rec Value
	require.NoError(t, json.Unmarshal([]byte(`{"type":"dataframe"}`), &rec))
	assert.Equal(t, KindRecord, rec.Kind)
}

func TestValue_DecodeRejectsBadDataFrame(t *testing.T) {
	cases := []string{
		`{"type":"dataframe","records":{"a":1}}`,
		`{"type":"dataframe","records":[1,2]}`,
		`{"type":"series","values":[1,2]}`,
	}
	for _, raw := range cases {
		var v Value
		err := json.Unmarshal([]byte(raw), &v)
		require.Error(t, err, raw)
		assert.True(t, errors.Is(err, ErrInvalidInput), raw)
	}
}

func TestValue_EncodeShapes(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"zero", Value{}, `null`},
		{"number", Number(1.5), `1.5`},
		{"empty list", List(), `[]`},
		{"record", Record(map[string]Value{"k": String("v")}), `{"k":"v"}`},
		{"series", Series(map[string]Value{"a": Number(1)}), `{"type":"series","values":{"a":1}}`},
		{"dataframe", DataFrame([]map[string]Value{{"n": Number(2)}}), `{"type":"dataframe","records":[{"n":2}]}`},
		{"empty dataframe", DataFrame(nil), `{"type":"dataframe","records":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.v)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(b))
		})
	}
}

func TestValue_Interface(t *testing.T) {
	v := DataFrame([]map[string]Value{{"n": Number(2), "tags": List(String("x"))}})
	got := v.Interface().(map[string]any)
	assert.Equal(t, "dataframe", got["type"])
	rows := got["records"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, []any{"x"}, rows[0].(map[string]any)["tags"])
}
