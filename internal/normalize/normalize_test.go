package normalize

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_RowSequence(t *testing.T) {
	raw := json.RawMessage(`[{"name":"A"},{"name":"B"}]`)

	rec := Normalize(raw)

	assert.Equal(t, 2, rec.RowCount)
	assert.Equal(t, []string{"name"}, rec.Columns)
	require.Len(t, rec.Preview, 2)
	assert.Equal(t, "A", Cell(rec.Preview[0], "name"))
	assert.Equal(t, "B", Cell(rec.Preview[1], "name"))
	assert.Len(t, rec.FullData, 2)
}

func TestNormalize_SingleRecord(t *testing.T) {
	raw := json.RawMessage(`{"total": 42}`)

	rec := Normalize(raw)

	assert.Equal(t, 1, rec.RowCount)
	assert.Equal(t, []string{"total"}, rec.Columns)
	require.Len(t, rec.FullData, 1)
	assert.Equal(t, "42", Cell(rec.FullData[0], "total"))
	assert.Equal(t, rec.FullData, rec.Preview)
}

func TestNormalize_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"null", `null`},
		{"absent", ``},
		{"empty array", `[]`},
		{"string primitive", `"no structured data"`},
		{"number primitive", `17`},
		{"malformed", `{"unbalanced":`},
		{"array of primitives", `[1,2,3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(json.RawMessage(tt.raw))

			assert.Equal(t, 0, rec.RowCount)
			assert.Equal(t, []string{"Data"}, rec.Columns)
			assert.Empty(t, rec.FullData)
			assert.Empty(t, rec.Preview)
		})
	}
}

func TestNormalize_PreviewBoundary(t *testing.T) {
	build := func(n int) json.RawMessage {
		rows := make([]map[string]any, n)
		for i := range rows {
			rows[i] = map[string]any{"id": i}
		}
		b, err := json.Marshal(rows)
		if err != nil {
			t.Fatal(err)
		}
		return b
	}

	for _, n := range []int{1, 4, 5, 6, 50} {
		t.Run(fmt.Sprintf("%d rows", n), func(t *testing.T) {
			rec := Normalize(build(n))

			want := n
			if want > PreviewLimit {
				want = PreviewLimit
			}
			assert.Len(t, rec.Preview, want)
			assert.Equal(t, n, rec.RowCount)
			assert.Len(t, rec.FullData, n)
		})
	}
}

func TestNormalize_ColumnOrderIsFirstSeen(t *testing.T) {
	raw := json.RawMessage(`[{"zeta":1,"alpha":2,"mid":3},{"alpha":9,"zeta":8}]`)

	rec := Normalize(raw)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, rec.Columns)
}

func TestDecode_SequenceBeatsSingle(t *testing.T) {
	v := Decode(json.RawMessage(`[{"a":1}]`))
	assert.Equal(t, KindRows, v.Kind)

	v = Decode(json.RawMessage(`{"a":1}`))
	assert.Equal(t, KindSingle, v.Kind)
}

func TestDisplayValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "plain", "plain"},
		{"number", json.Number("3.50"), "3.50"},
		{"float", 2.5, "2.5"},
		{"bool", true, "true"},
		{"composite with value field", map[string]any{"value": "inner", "confidence": 0.9}, "inner"},
		{"composite numeric value field", map[string]any{"value": json.Number("42")}, "42"},
		{"composite without value field", map[string]any{"amount": json.Number("7")}, `{"amount":7}`},
		{"list", []any{"a", "b"}, `["a","b"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayValue(tt.in))
		})
	}
}

func TestCell_MissingColumn(t *testing.T) {
	rec := Normalize(json.RawMessage(`[{"a":1},{"b":2}]`))

	assert.Equal(t, "", Cell(rec.FullData[1], "a"))
}

func TestRow_MarshalRoundTripKeepsOrder(t *testing.T) {
	var r Row
	require.NoError(t, json.Unmarshal([]byte(`{"z":1,"a":{"value":"x"},"m":[1,2]}`), &r))

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"z":1,"a":{"value":"x"},"m":[1,2]}`, string(out))
	assert.Equal(t, []string{"z", "a", "m"}, r.Keys)
}
