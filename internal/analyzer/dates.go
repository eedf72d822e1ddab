package analyzer

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/woosin-customs/analytics-cli/internal/dataset"
)

// dateCandidates are tried in this fixed priority order. The first
// column yielding at least one parsed value is used for the whole
// row set — not the column with the most successes.
var dateCandidates = []struct {
	column string
	value  func(dataset.Line) string
}{
	{dataset.ColAcceptanceDate, func(l dataset.Line) string { return l.AcceptanceDate }},
	{dataset.ColDeclaredDate, func(l dataset.Line) string { return l.DeclaredDate }},
	{dataset.ColEntryTime, func(l dataset.Line) string { return l.EntryTime }},
}

// fallbackLayouts are attempted, in order, when a value matches none
// of the explicit shapes. Entry timestamps carry a time component.
var fallbackLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006.01.02",
	"20060102150405",
	time.RFC3339,
}

// ParseDate parses one raw date value. A failure yields ok=false,
// never an error: unparseable values become nulls per row.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// Fixed 8-digit YYYYMMDD.
	if len(s) == 8 && isDigits(s) {
		if t, err := time.Parse("20060102", s); err == nil {
			return t, true
		}
		return time.Time{}, false
	}

	// Hyphen-delimited YYYY-MM-DD.
	if len(s) == 10 && strings.Contains(s, "-") {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t, true
		}
		return time.Time{}, false
	}

	// Slash-delimited.
	if strings.Contains(s, "/") {
		for _, layout := range []string{"2006/01/02", "2006/1/2"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeDates derives the canonical date and weekday for every
// line and returns the name of the selected column, or "" when no
// candidate column produced a single parseable value (the rows are
// then left without dates — not an error).
func NormalizeDates(ds *dataset.Dataset) string {
	for _, cand := range dateCandidates {
		if !ds.Has(cand.column) {
			continue
		}

		parsed := make([]*time.Time, len(ds.Lines))
		successes := 0
		for i := range ds.Lines {
			if t, ok := ParseDate(cand.value(ds.Lines[i])); ok {
				t := t
				parsed[i] = &t
				successes++
			}
		}
		if successes == 0 {
			continue
		}

		for i := range ds.Lines {
			ds.Lines[i].Date = parsed[i]
			if parsed[i] != nil {
				ds.Lines[i].Weekday = parsed[i].Weekday()
			}
		}

		zap.L().Debug("analyzer: date column selected",
			zap.String("column", cand.column),
			zap.Int("parsed", successes),
			zap.Int("rows", len(ds.Lines)),
		)
		return cand.column
	}

	zap.L().Warn("analyzer: no usable date column; weekday metrics will be empty")
	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
