// Package analyzer is the scoring and aggregation engine for customs
// declaration line data: date normalization, per-declaration
// complexity scoring, entity rollups and inspection classification.
package analyzer

import (
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/woosin-customs/analytics-cli/internal/dataset"
)

// Limits bound compute and memory on large inputs. All caps are
// overridable; zero disables the corresponding guard.
type Limits struct {
	// MaxScoredDeclarations caps the declarations entering a mean
	// complexity computation, keeping those with the most lines.
	MaxScoredDeclarations int `mapstructure:"max_scored_declarations"`
	// MaxPreparers / MaxImporters / MaxForwarders cap each rollup
	// dimension by raw line count.
	MaxPreparers  int `mapstructure:"max_preparers"`
	MaxImporters  int `mapstructure:"max_importers"`
	MaxForwarders int `mapstructure:"max_forwarders"`
	// PruneRowThreshold is the raw row count above which the input
	// table is projected to the essential-column allowlist.
	PruneRowThreshold int `mapstructure:"prune_row_threshold"`
}

// DefaultLimits returns the standard guard values.
func DefaultLimits() Limits {
	return Limits{
		MaxScoredDeclarations: 5000,
		MaxPreparers:          50,
		MaxImporters:          100,
		MaxForwarders:         50,
		PruneRowThreshold:     20000,
	}
}

// Engine runs one-shot batch analyses. It holds only limits; weights
// are passed per run so concurrent runs never share mutable state.
type Engine struct {
	limits Limits
}

// NewEngine creates an Engine with the given limits.
func NewEngine(limits Limits) *Engine {
	return &Engine{limits: limits}
}

// Report holds the four output tables plus the inspection stats
// block for one analysis run.
type Report struct {
	RunID        string              `json:"run_id"`
	Rows         int                 `json:"rows"`
	Declarations int                 `json:"declarations"`
	DateColumn   string              `json:"date_column,omitempty"`
	Preparers    []PreparerSummary   `json:"preparers"`
	Importers    []ImporterSummary   `json:"importers"`
	Forwarders   []ForwarderSummary  `json:"forwarders"`
	Inspections  []InspectionSummary `json:"inspections"`
	Inspection   InspectionStats     `json:"inspection_stats"`
}

// Run executes one full synchronous analysis over the dataset with
// the given weights. Missing dimension columns yield empty tables;
// only a dataset with no usable columns at all is an error.
func (e *Engine) Run(ds *dataset.Dataset, w Weights) (*Report, error) {
	if ds == nil || len(ds.Columns) == 0 {
		return nil, eris.New("analyzer: empty dataset")
	}
	if !ds.Has(dataset.ColDeclarationNo) {
		return nil, eris.Errorf("analyzer: required column %q not found", dataset.ColDeclarationNo)
	}

	report := &Report{
		RunID: uuid.NewString(),
		Rows:  len(ds.Lines),
	}
	log := zap.L().With(zap.String("run_id", report.RunID))
	log.Info("analyzer: run started", zap.Int("rows", report.Rows))

	report.DateColumn = NormalizeDates(ds)
	report.Declarations = len(GroupDeclarations(ds.Lines))

	report.Preparers = e.PreparerRollup(ds, w)
	report.Importers = e.ImporterRollup(ds, w)
	report.Forwarders = e.ForwarderRollup(ds, w)
	report.Inspections, report.Inspection = e.InspectionBreakdown(ds)

	log.Info("analyzer: run complete",
		zap.Int("declarations", report.Declarations),
		zap.Int("preparers", len(report.Preparers)),
		zap.Int("importers", len(report.Importers)),
		zap.Int("forwarders", len(report.Forwarders)),
		zap.Int("inspection_codes", len(report.Inspections)),
	)
	return report, nil
}
