// Package normalize converts the heterogeneous payloads returned by the
// extraction service into a uniform tabular record that is safe to render
// and export. Normalization is total: any payload shape, including garbage,
// maps onto a defined record.
package normalize

import (
	"bytes"
	"encoding/json"
)

// PreviewLimit bounds the preview prefix of a canonical record.
const PreviewLimit = 5

// Kind tags the decoded shape of a raw extraction payload.
type Kind int

const (
	KindEmpty  Kind = iota // null, empty array, primitive, or malformed
	KindSingle             // one key-value record
	KindRows               // ordered sequence of key-value records
)

// Variant is the tagged decode of a raw payload. Rows holds one element for
// KindSingle, at least one for KindRows, and none for KindEmpty.
type Variant struct {
	Kind Kind
	Rows []Row
}

// CanonicalRecord is the normalized tabular result of one extraction run.
type CanonicalRecord struct {
	RowCount    int
	Columns     []string
	Preview     []Row
	FullData    []Row
	DownloadRef string
}

// Decode classifies a raw payload into its variant. The sequence check runs
// before the single-record check: an array is never treated as one record
// regardless of how permissive the wire encoding is. Sequences containing
// non-record elements degrade to the empty variant.
func Decode(raw json.RawMessage) Variant {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Variant{Kind: KindEmpty}
	}

	switch trimmed[0] {
	case '[':
		var rows []Row
		if err := json.Unmarshal(trimmed, &rows); err != nil || len(rows) == 0 {
			return Variant{Kind: KindEmpty}
		}
		return Variant{Kind: KindRows, Rows: rows}
	case '{':
		var row Row
		if err := json.Unmarshal(trimmed, &row); err != nil {
			return Variant{Kind: KindEmpty}
		}
		return Variant{Kind: KindSingle, Rows: []Row{row}}
	default:
		// primitive
		return Variant{Kind: KindEmpty}
	}
}

// Normalize builds the canonical record for a raw payload. It never fails;
// unusable payloads yield the degenerate zero-row record.
func Normalize(raw json.RawMessage) CanonicalRecord {
	v := Decode(raw)

	switch v.Kind {
	case KindRows, KindSingle:
		n := len(v.Rows)
		prev := n
		if prev > PreviewLimit {
			prev = PreviewLimit
		}
		return CanonicalRecord{
			RowCount: n,
			Columns:  append([]string(nil), v.Rows[0].Keys...),
			Preview:  v.Rows[:prev],
			FullData: v.Rows,
		}
	default:
		return CanonicalRecord{
			RowCount: 0,
			Columns:  []string{"Data"},
			Preview:  []Row{},
			FullData: []Row{},
		}
	}
}
