package analyzer

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/woosin-customs/analytics-cli/internal/dataset"
)

// WeekdayCounts holds distinct-declaration counts per business
// weekday. Saturday and Sunday are deliberately absent from output.
type WeekdayCounts struct {
	Monday    int `json:"monday"`
	Tuesday   int `json:"tuesday"`
	Wednesday int `json:"wednesday"`
	Thursday  int `json:"thursday"`
	Friday    int `json:"friday"`
}

// EntityMetrics are the metrics shared by all three rollups.
type EntityMetrics struct {
	LineCount                int           `json:"line_count"`
	DeclarationCount         int           `json:"declaration_count"`
	ComplexityScore          float64       `json:"complexity_score"`
	TotalLanes               int           `json:"total_lanes"`
	TotalSpecs               int           `json:"total_specs"`
	RequirementDeclarations  int           `json:"requirement_declarations"`
	FTARate                  float64       `json:"fta_rate"`
	ExemptionRate            float64       `json:"exemption_rate"`
	TransactionTypeDiversity int           `json:"transaction_type_diversity"`
	TradingPartnerCount      int           `json:"trading_partner_count"`
	AvgItemsPerDeclaration   float64       `json:"avg_items_per_declaration"`
	Weekdays                 WeekdayCounts `json:"weekdays"`
}

// PreparerSummary is the internal workload view, one row per staff
// member who prepared declarations.
type PreparerSummary struct {
	Preparer string `json:"preparer"`
	EntityMetrics
	ImporterCount int `json:"importer_count"`
}

// ImporterSummary is the client view, one row per importing company.
type ImporterSummary struct {
	Importer string `json:"importer"`
	EntityMetrics
	PrimaryPreparer   string  `json:"primary_preparer"`
	PreparerCount     int     `json:"preparer_count"`
	DocumentTypeCount int     `json:"document_type_count"`
	RequirementRate   float64 `json:"requirement_rate"`
}

// ForwarderSummary is the logistics-partner view, one row per
// freight forwarder.
type ForwarderSummary struct {
	Forwarder string `json:"forwarder"`
	EntityMetrics
	PrimaryPreparer string  `json:"primary_preparer"`
	PreparerCount   int     `json:"preparer_count"`
	PrimaryImporter string  `json:"primary_importer"`
	ImporterCount   int     `json:"importer_count"`
	AvgLanes        float64 `json:"avg_lanes"`
	AvgSpecs        float64 `json:"avg_specs"`
}

type entityGroup struct {
	key   string
	lines []dataset.Line
	decls []Declaration
}

// groupEntities partitions the dataset by one grouping column.
// Null/empty keys never form an entity. When the dimension exceeds
// maxEntities, only the top-N entities by raw line count survive;
// the rest are omitted outright, not folded into an "other" bucket.
// Returns nil when the grouping column is absent from the source,
// which callers render as an empty table.
func groupEntities(ds *dataset.Dataset, column string, key func(dataset.Line) string, maxEntities int) []entityGroup {
	if !ds.Has(column) {
		zap.L().Warn("analyzer: grouping column absent, dimension skipped",
			zap.String("column", column),
		)
		return nil
	}

	index := make(map[string]int)
	var groups []entityGroup
	for _, line := range ds.Lines {
		k := key(line)
		if k == "" {
			continue
		}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, entityGroup{key: k})
		}
		groups[i].lines = append(groups[i].lines, line)
	}

	if maxEntities > 0 && len(groups) > maxEntities {
		zap.L().Info("analyzer: entity cap applied",
			zap.String("column", column),
			zap.Int("entities", len(groups)),
			zap.Int("cap", maxEntities),
		)
		sort.SliceStable(groups, func(i, j int) bool {
			return len(groups[i].lines) > len(groups[j].lines)
		})
		groups = groups[:maxEntities]
	}

	for i := range groups {
		groups[i].decls = GroupDeclarations(groups[i].lines)
	}
	return groups
}

// commonMetrics computes the shared per-entity metrics.
func (e *Engine) commonMetrics(g entityGroup, w Weights) EntityMetrics {
	m := EntityMetrics{
		LineCount:        len(g.lines),
		DeclarationCount: len(g.decls),
		ComplexityScore:  round1(MeanComplexity(g.decls, w, e.limits.MaxScoredDeclarations)),
	}

	txnTypes := make(map[string]bool)
	traders := make(map[string]bool)
	ftaDecls := 0
	exemptDecls := 0
	for _, d := range g.decls {
		m.TotalLanes += d.LaneCount
		m.TotalSpecs += d.SpecCount
		if d.RequirementDocs > 0 {
			m.RequirementDeclarations++
		}
		if dataset.IsBoolY(d.OriginCert) {
			ftaDecls++
		}
		if dataset.NotBlank(d.ExemptionCode) {
			exemptDecls++
		}
		if d.TransactionType != "" {
			txnTypes[d.TransactionType] = true
		}
		if d.TradingPartner != "" {
			traders[d.TradingPartner] = true
		}
	}
	m.TransactionTypeDiversity = len(txnTypes)
	m.TradingPartnerCount = len(traders)

	if len(g.decls) > 0 {
		n := float64(len(g.decls))
		m.FTARate = round1(float64(ftaDecls) / n * 100)
		m.ExemptionRate = round1(float64(exemptDecls) / n * 100)
		m.AvgItemsPerDeclaration = round1(float64(len(g.lines)) / n)
	}

	m.Weekdays = weekdayDistribution(g.lines)
	return m
}

// weekdayDistribution counts distinct declarations per business
// weekday over the raw lines. A declaration whose lines span several
// weekdays counts once per weekday it appears on.
func weekdayDistribution(lines []dataset.Line) WeekdayCounts {
	seen := make(map[time.Weekday]map[string]bool)
	for _, line := range lines {
		if line.Date == nil || line.DeclarationNo == "" {
			continue
		}
		if seen[line.Weekday] == nil {
			seen[line.Weekday] = make(map[string]bool)
		}
		seen[line.Weekday][line.DeclarationNo] = true
	}
	return WeekdayCounts{
		Monday:    len(seen[time.Monday]),
		Tuesday:   len(seen[time.Tuesday]),
		Wednesday: len(seen[time.Wednesday]),
		Thursday:  len(seen[time.Thursday]),
		Friday:    len(seen[time.Friday]),
	}
}

// mostFrequent returns the modal value of key over the declarations
// (ties broken by first appearance in declaration order) and the
// number of distinct non-empty values.
func mostFrequent(decls []Declaration, key func(Declaration) string) (string, int) {
	counts := make(map[string]int)
	var order []string
	for _, d := range decls {
		k := key(d)
		if k == "" {
			continue
		}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	top := ""
	best := 0
	for _, k := range order {
		if counts[k] > best {
			top = k
			best = counts[k]
		}
	}
	return top, len(order)
}

// PreparerRollup summarizes workload per preparing staff member,
// sorted by complexity score, heaviest first.
func (e *Engine) PreparerRollup(ds *dataset.Dataset, w Weights) []PreparerSummary {
	groups := groupEntities(ds, dataset.ColPreparer, func(l dataset.Line) string { return l.Preparer }, e.limits.MaxPreparers)

	summaries := make([]PreparerSummary, 0, len(groups))
	for _, g := range groups {
		_, importers := mostFrequent(g.decls, func(d Declaration) string { return d.Importer })
		summaries = append(summaries, PreparerSummary{
			Preparer:      g.key,
			EntityMetrics: e.commonMetrics(g, w),
			ImporterCount: importers,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].ComplexityScore > summaries[j].ComplexityScore
	})
	return summaries
}

// ImporterRollup summarizes activity per importing client, sorted by
// raw line count descending.
func (e *Engine) ImporterRollup(ds *dataset.Dataset, w Weights) []ImporterSummary {
	groups := groupEntities(ds, dataset.ColImporter, func(l dataset.Line) string { return l.Importer }, e.limits.MaxImporters)

	summaries := make([]ImporterSummary, 0, len(groups))
	for _, g := range groups {
		m := e.commonMetrics(g, w)
		primary, preparers := mostFrequent(g.decls, func(d Declaration) string { return d.Preparer })

		docTypes := make(map[string]bool)
		for _, line := range g.lines {
			if line.RequirementDoc != "" {
				docTypes[line.RequirementDoc] = true
			}
		}
		reqRate := 0.0
		if m.DeclarationCount > 0 {
			reqRate = round1(float64(m.RequirementDeclarations) / float64(m.DeclarationCount) * 100)
		}

		summaries = append(summaries, ImporterSummary{
			Importer:          g.key,
			EntityMetrics:     m,
			PrimaryPreparer:   primary,
			PreparerCount:     preparers,
			DocumentTypeCount: len(docTypes),
			RequirementRate:   reqRate,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LineCount > summaries[j].LineCount
	})
	return summaries
}

// ForwarderRollup summarizes activity per freight forwarder, sorted
// by raw line count descending.
func (e *Engine) ForwarderRollup(ds *dataset.Dataset, w Weights) []ForwarderSummary {
	groups := groupEntities(ds, dataset.ColForwarder, func(l dataset.Line) string { return l.Forwarder }, e.limits.MaxForwarders)

	summaries := make([]ForwarderSummary, 0, len(groups))
	for _, g := range groups {
		m := e.commonMetrics(g, w)
		primaryPreparer, preparers := mostFrequent(g.decls, func(d Declaration) string { return d.Preparer })
		primaryImporter, importers := mostFrequent(g.decls, func(d Declaration) string { return d.Importer })

		avgLanes, avgSpecs := 0.0, 0.0
		if m.DeclarationCount > 0 {
			n := float64(m.DeclarationCount)
			avgLanes = round1(float64(m.TotalLanes) / n)
			avgSpecs = round1(float64(m.TotalSpecs) / n)
		}

		summaries = append(summaries, ForwarderSummary{
			Forwarder:       g.key,
			EntityMetrics:   m,
			PrimaryPreparer: primaryPreparer,
			PreparerCount:   preparers,
			PrimaryImporter: primaryImporter,
			ImporterCount:   importers,
			AvgLanes:        avgLanes,
			AvgSpecs:        avgSpecs,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LineCount > summaries[j].LineCount
	})
	return summaries
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
