package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woosin-customs/analytics-cli/internal/dataset"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"20240115", "2024-01-15", true},
		{"2024-01-15", "2024-01-15", true},
		{"2024/01/15", "2024-01-15", true},
		{"2024/1/5", "2024-01-05", true},
		{"2024-01-15 10:30:00", "2024-01-15", true},
		{"  20240115 ", "2024-01-15", true},
		{"", "", false},
		{"not a date", "", false},
		{"20241315", "", false}, // month 13
		{"2024-13-01", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got.Format("2006-01-02"), "input %q", tc.in)
		}
	}
}

func TestNormalizeDates_FirstSuccessWins(t *testing.T) {
	// Acceptance date has one parseable value among nulls; declared
	// date is fully parseable. The acceptance column must still win.
	ds := &dataset.Dataset{
		Columns: map[string]bool{
			dataset.ColAcceptanceDate: true,
			dataset.ColDeclaredDate:   true,
		},
		Lines: []dataset.Line{
			{AcceptanceDate: "", DeclaredDate: "20240101"},
			{AcceptanceDate: "20240115", DeclaredDate: "20240102"},
			{AcceptanceDate: "", DeclaredDate: "20240103"},
		},
	}

	selected := NormalizeDates(ds)
	assert.Equal(t, dataset.ColAcceptanceDate, selected)

	assert.Nil(t, ds.Lines[0].Date)
	require.NotNil(t, ds.Lines[1].Date)
	assert.Equal(t, "2024-01-15", ds.Lines[1].Date.Format("2006-01-02"))
	assert.Equal(t, time.Monday, ds.Lines[1].Weekday)
	assert.Nil(t, ds.Lines[2].Date)
}

func TestNormalizeDates_FallsThroughToDeclared(t *testing.T) {
	ds := &dataset.Dataset{
		Columns: map[string]bool{
			dataset.ColAcceptanceDate: true,
			dataset.ColDeclaredDate:   true,
		},
		Lines: []dataset.Line{
			{AcceptanceDate: "garbage", DeclaredDate: "2024-01-16"},
			{AcceptanceDate: "", DeclaredDate: "2024-01-17"},
		},
	}

	selected := NormalizeDates(ds)
	assert.Equal(t, dataset.ColDeclaredDate, selected)
	require.NotNil(t, ds.Lines[0].Date)
	assert.Equal(t, time.Tuesday, ds.Lines[0].Weekday)
}

func TestNormalizeDates_EntryTimestampLast(t *testing.T) {
	ds := &dataset.Dataset{
		Columns: map[string]bool{dataset.ColEntryTime: true},
		Lines: []dataset.Line{
			{EntryTime: "2024-01-18 09:12:44"},
		},
	}

	assert.Equal(t, dataset.ColEntryTime, NormalizeDates(ds))
	require.NotNil(t, ds.Lines[0].Date)
	assert.Equal(t, time.Thursday, ds.Lines[0].Weekday)
}

func TestNormalizeDates_NoUsableColumn(t *testing.T) {
	ds := &dataset.Dataset{
		Columns: map[string]bool{dataset.ColAcceptanceDate: true},
		Lines: []dataset.Line{
			{AcceptanceDate: "junk"},
			{AcceptanceDate: ""},
		},
	}

	assert.Equal(t, "", NormalizeDates(ds))
	for _, line := range ds.Lines {
		assert.Nil(t, line.Date)
	}
}

func TestNormalizeDates_AbsentColumnsSkipped(t *testing.T) {
	ds := &dataset.Dataset{
		Columns: map[string]bool{
			dataset.ColAcceptanceDate: false,
			dataset.ColDeclaredDate:   true,
		},
		Lines: []dataset.Line{
			// The acceptance value would parse, but its column was
			// never present in the source header.
			{AcceptanceDate: "20240101", DeclaredDate: "20240119"},
		},
	}

	assert.Equal(t, dataset.ColDeclaredDate, NormalizeDates(ds))
	require.NotNil(t, ds.Lines[0].Date)
	assert.Equal(t, "2024-01-19", ds.Lines[0].Date.Format("2006-01-02"))
}
