package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woosin-customs/analytics-cli/internal/dataset"
)

func TestEngineRun_FullReport(t *testing.T) {
	ds := &dataset.Dataset{
		Columns: allColumns(),
		Lines: []dataset.Line{
			{DeclarationNo: "D1", Preparer: "kim", Importer: "ACME", Forwarder: "FastShip",
				LaneCount: "3", InspectionCode: "N", AcceptanceDate: "20240115"},
			{DeclarationNo: "D1", Preparer: "kim", Importer: "ACME", Forwarder: "FastShip",
				InspectionCode: "N", AcceptanceDate: "20240115"},
			{DeclarationNo: "D2", Preparer: "lee", Importer: "GLOBEX", Forwarder: "FastShip",
				LaneCount: "1", InspectionCode: "Y", AcceptanceDate: "20240116"},
		},
	}

	report, err := NewEngine(DefaultLimits()).Run(ds, DefaultWeights())
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, 2, report.Declarations)
	assert.Equal(t, dataset.ColAcceptanceDate, report.DateColumn)
	assert.Len(t, report.Preparers, 2)
	assert.Len(t, report.Importers, 2)
	assert.Len(t, report.Forwarders, 1)
	assert.Len(t, report.Inspections, 2)
	assert.Equal(t, 2, report.Inspection.TotalDeclarations)
	assert.Equal(t, 50.0, report.Inspection.NoInspectionRate)

	for _, p := range report.Preparers {
		assert.GreaterOrEqual(t, p.ComplexityScore, 0.0)
	}
}

func TestEngineRun_EmptyDataset(t *testing.T) {
	_, err := NewEngine(DefaultLimits()).Run(nil, DefaultWeights())
	assert.Error(t, err)

	_, err = NewEngine(DefaultLimits()).Run(&dataset.Dataset{}, DefaultWeights())
	assert.Error(t, err)
}

func TestEngineRun_MissingDeclarationColumn(t *testing.T) {
	ds := &dataset.Dataset{
		Columns: map[string]bool{dataset.ColPreparer: true},
		Lines:   []dataset.Line{{Preparer: "kim"}},
	}
	_, err := NewEngine(DefaultLimits()).Run(ds, DefaultWeights())
	assert.Error(t, err)
}

func TestDefaultLimits(t *testing.T) {
	l := DefaultLimits()
	assert.Equal(t, 5000, l.MaxScoredDeclarations)
	assert.Equal(t, 50, l.MaxPreparers)
	assert.Equal(t, 100, l.MaxImporters)
	assert.Equal(t, 50, l.MaxForwarders)
	assert.Equal(t, 20000, l.PruneRowThreshold)
}
