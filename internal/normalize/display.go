package normalize

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// DisplayValue renders a cell value for previews, reports, and workbooks.
// Composite values carrying a "value" field display that inner value;
// other composites render as JSON; scalars render as-is.
func DisplayValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case map[string]any:
		if inner, ok := t["value"]; ok {
			return renderScalar(inner)
		}
		return renderJSON(t)
	case []any:
		return renderJSON(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Cell renders the display form of one column in a row. A missing column
// renders as an empty string, never as an error.
func Cell(r Row, col string) string {
	v, ok := r.Get(col)
	if !ok {
		return ""
	}
	return DisplayValue(v)
}

// renderScalar is the one-level unwrap of a composite's "value" field;
// it does not recurse into further composites.
func renderScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return renderJSON(t)
	}
}

func renderJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
