package analyzer

import (
	"sort"

	"github.com/woosin-customs/analytics-cli/internal/dataset"
)

// inspectionLabels maps C/S inspection codes to their regime names.
// Codes outside the map are labelled 기타.
var inspectionLabels = map[string]string{
	"Y": "세관검사",
	"F": "협업검사",
	"N": "무검사",
	"C": "서류검사",
	"S": "표본검사",
}

const inspectionLabelOther = "기타"

// InspectionSummary is one row per distinct inspection code.
type InspectionSummary struct {
	Code         string  `json:"code"`
	Label        string  `json:"label"`
	Declarations int     `json:"declarations"`
	Share        float64 `json:"share"`
}

// InspectionStats is the scalar block accompanying the breakdown.
type InspectionStats struct {
	TotalDeclarations int     `json:"total_declarations"`
	CodeCount         int     `json:"code_count"`
	TopLabel          string  `json:"top_label"`
	NoInspectionRate  float64 `json:"no_inspection_rate"`
}

// InspectionBreakdown groups declarations by inspection code. Lines
// without a code are ignored; each declaration counts once under its
// first-seen code. Returns a nil slice when the inspection column is
// absent from the source.
func (e *Engine) InspectionBreakdown(ds *dataset.Dataset) ([]InspectionSummary, InspectionStats) {
	var stats InspectionStats
	if !ds.Has(dataset.ColInspection) {
		return nil, stats
	}

	// Take-first dedup on declaration number among coded lines.
	declCode := make(map[string]string)
	var declOrder []string
	for _, line := range ds.Lines {
		if line.InspectionCode == "" || line.DeclarationNo == "" {
			continue
		}
		if _, ok := declCode[line.DeclarationNo]; !ok {
			declCode[line.DeclarationNo] = line.InspectionCode
			declOrder = append(declOrder, line.DeclarationNo)
		}
	}

	counts := make(map[string]int)
	var codeOrder []string
	for _, id := range declOrder {
		code := declCode[id]
		if counts[code] == 0 {
			codeOrder = append(codeOrder, code)
		}
		counts[code]++
	}

	total := len(declOrder)
	summaries := make([]InspectionSummary, 0, len(codeOrder))
	for _, code := range codeOrder {
		label, ok := inspectionLabels[code]
		if !ok {
			label = inspectionLabelOther
		}
		share := 0.0
		if total > 0 {
			share = round1(float64(counts[code]) / float64(total) * 100)
		}
		summaries = append(summaries, InspectionSummary{
			Code:         code,
			Label:        label,
			Declarations: counts[code],
			Share:        share,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Declarations > summaries[j].Declarations
	})

	stats.TotalDeclarations = total
	stats.CodeCount = len(summaries)
	if len(summaries) > 0 {
		stats.TopLabel = summaries[0].Label
	}
	if total > 0 {
		stats.NoInspectionRate = round1(float64(counts["N"]) / float64(total) * 100)
	}
	return summaries, stats
}
