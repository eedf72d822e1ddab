package analyzer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woosin-customs/analytics-cli/internal/dataset"
)

func inspectionDataset(codes map[string]int) *dataset.Dataset {
	ds := &dataset.Dataset{
		Columns: map[string]bool{
			dataset.ColDeclarationNo: true,
			dataset.ColInspection:    true,
		},
	}
	for code, n := range codes {
		for j := 0; j < n; j++ {
			ds.Lines = append(ds.Lines, dataset.Line{
				DeclarationNo:  fmt.Sprintf("%s-%d", code, j),
				InspectionCode: code,
			})
		}
	}
	return ds
}

func TestInspectionBreakdown_RateExample(t *testing.T) {
	ds := inspectionDataset(map[string]int{"Y": 10, "N": 85, "C": 5})

	summaries, stats := testEngine().InspectionBreakdown(ds)
	require.Len(t, summaries, 3)

	assert.Equal(t, 100, stats.TotalDeclarations)
	assert.Equal(t, 3, stats.CodeCount)
	assert.Equal(t, "무검사", stats.TopLabel)
	assert.Equal(t, 85.0, stats.NoInspectionRate)

	// Sorted descending by declaration count.
	assert.Equal(t, "N", summaries[0].Code)
	assert.Equal(t, 85, summaries[0].Declarations)
	assert.Equal(t, 85.0, summaries[0].Share)
	assert.Equal(t, "Y", summaries[1].Code)
	assert.Equal(t, "세관검사", summaries[1].Label)
	assert.Equal(t, "C", summaries[2].Code)
	assert.Equal(t, "서류검사", summaries[2].Label)
}

func TestInspectionBreakdown_TakeFirstDedup(t *testing.T) {
	ds := &dataset.Dataset{
		Columns: map[string]bool{
			dataset.ColDeclarationNo: true,
			dataset.ColInspection:    true,
		},
		Lines: []dataset.Line{
			{DeclarationNo: "D1", InspectionCode: "Y"},
			{DeclarationNo: "D1", InspectionCode: "N"}, // later code ignored
			{DeclarationNo: "D2", InspectionCode: ""},  // uncoded line ignored
			{DeclarationNo: "D2", InspectionCode: "N"},
		},
	}

	summaries, stats := testEngine().InspectionBreakdown(ds)
	require.Len(t, summaries, 2)
	assert.Equal(t, 2, stats.TotalDeclarations)

	byCode := make(map[string]int)
	for _, s := range summaries {
		byCode[s.Code] = s.Declarations
	}
	assert.Equal(t, 1, byCode["Y"])
	assert.Equal(t, 1, byCode["N"])
	assert.Equal(t, 50.0, stats.NoInspectionRate)
}

func TestInspectionBreakdown_UnknownCodeLabelledOther(t *testing.T) {
	ds := inspectionDataset(map[string]int{"X": 2})

	summaries, stats := testEngine().InspectionBreakdown(ds)
	require.Len(t, summaries, 1)
	assert.Equal(t, "기타", summaries[0].Label)
	assert.Equal(t, 0.0, stats.NoInspectionRate)
}

func TestInspectionBreakdown_MissingColumn(t *testing.T) {
	ds := &dataset.Dataset{
		Columns: map[string]bool{dataset.ColDeclarationNo: true},
		Lines:   []dataset.Line{{DeclarationNo: "D1"}},
	}

	summaries, stats := testEngine().InspectionBreakdown(ds)
	assert.Empty(t, summaries)
	assert.Equal(t, 0, stats.TotalDeclarations)
	assert.Equal(t, 0.0, stats.NoInspectionRate)
}
