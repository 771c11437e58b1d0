// Package report builds the plaintext analysis report for an extraction
// run. Reports are derived on demand and never persisted server-side.
package report

import (
	"fmt"
	"strings"
	"time"

	"docassist/internal/normalize"
)

// EmptyReport is returned when there are no rows to report on.
const EmptyReport = "No data available for report."

// Builder renders reports. Now is injectable so output is byte-stable
// under a frozen clock.
type Builder struct {
	Now func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{Now: time.Now}
}

// Build renders the report for a row set and the query that produced it.
// Identical inputs differ only in the Generated line across calls.
func (b *Builder) Build(rows []normalize.Row, query string) string {
	if len(rows) == 0 {
		return EmptyReport
	}

	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	columns := rows[0].Keys

	var sb strings.Builder
	sb.WriteString("DOCUMENT ANALYSIS REPORT\n")
	fmt.Fprintf(&sb, "Generated: %s\n", now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Query: %s\n\n", query)

	sb.WriteString("EXECUTIVE SUMMARY\n")
	fmt.Fprintf(&sb, "- Total records extracted: %d\n", len(rows))
	fmt.Fprintf(&sb, "- Data fields identified: %s\n\n", strings.Join(columns, ", "))

	sb.WriteString("DETAILED DATA\n")
	for i, row := range rows {
		fmt.Fprintf(&sb, "\nRecord %d:\n", i+1)
		for _, key := range row.Keys {
			fmt.Fprintf(&sb, "  %s: %s\n", key, normalize.Cell(row, key))
		}
	}
	return sb.String()
}
