package analyzer

import (
	"sort"

	"github.com/woosin-customs/analytics-cli/internal/dataset"
)

// Weights are the seven complexity coefficients. They are scoped per
// analysis run: callers pass them into Run rather than mutating any
// shared state, so concurrent runs cannot interfere.
type Weights struct {
	Lane        float64 `yaml:"lane" mapstructure:"lane"`
	Spec        float64 `yaml:"spec" mapstructure:"spec"`
	Requirement float64 `yaml:"requirement" mapstructure:"requirement"`
	Exemption   float64 `yaml:"exemption" mapstructure:"exemption"`
	FTA         float64 `yaml:"fta" mapstructure:"fta"`
	Transaction float64 `yaml:"transaction" mapstructure:"transaction"`
	Trader      float64 `yaml:"trader" mapstructure:"trader"`
}

// DefaultWeights returns the standard coefficients.
func DefaultWeights() Weights {
	return Weights{
		Lane:        1.0,
		Spec:        0.5,
		Requirement: 10.0,
		Exemption:   10.0,
		FTA:         10.0,
		Transaction: 5.0,
		Trader:      5.0,
	}
}

// Merge overlays non-nil override fields onto w, field by field.
func (w Weights) Merge(o WeightOverrides) Weights {
	apply := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&w.Lane, o.Lane)
	apply(&w.Spec, o.Spec)
	apply(&w.Requirement, o.Requirement)
	apply(&w.Exemption, o.Exemption)
	apply(&w.FTA, o.FTA)
	apply(&w.Transaction, o.Transaction)
	apply(&w.Trader, o.Trader)
	return w
}

// WeightOverrides is a partial Weights record; nil fields keep the
// base value. Used by the weights YAML file and CLI flags.
type WeightOverrides struct {
	Lane        *float64 `yaml:"lane"`
	Spec        *float64 `yaml:"spec"`
	Requirement *float64 `yaml:"requirement"`
	Exemption   *float64 `yaml:"exemption"`
	FTA         *float64 `yaml:"fta"`
	Transaction *float64 `yaml:"transaction"`
	Trader      *float64 `yaml:"trader"`
}

// Declaration is one customs filing, reduced from the lines sharing
// its declaration number. Reduction rules: take-first (first
// non-null) for lanes, specs, exemption, origin certificate and the
// descriptive fields; count-distinct for transaction types and
// trading partners; count-non-null for requirement documents.
type Declaration struct {
	ID              string
	Lines           int
	LaneCount       int
	SpecCount       int
	ExemptionCode   string
	OriginCert      string
	Preparer        string
	Importer        string
	TradingPartner  string
	TransactionType string

	TransactionTypes int
	TradingPartners  int
	RequirementDocs  int
}

// GroupDeclarations reduces lines to one Declaration per distinct
// non-null declaration number, in order of first appearance. Lines
// without a declaration number are dropped.
func GroupDeclarations(lines []dataset.Line) []Declaration {
	index := make(map[string]int)
	txnSeen := make(map[string]map[string]bool)
	traderSeen := make(map[string]map[string]bool)
	var decls []Declaration

	for _, line := range lines {
		id := line.DeclarationNo
		if id == "" {
			continue
		}

		i, ok := index[id]
		if !ok {
			i = len(decls)
			index[id] = i
			decls = append(decls, Declaration{ID: id, LaneCount: -1, SpecCount: -1})
			txnSeen[id] = make(map[string]bool)
			traderSeen[id] = make(map[string]bool)
		}
		d := &decls[i]
		d.Lines++

		if d.LaneCount < 0 && dataset.NotBlank(line.LaneCount) {
			d.LaneCount = dataset.ParseIntOr(line.LaneCount, 0)
		}
		if d.SpecCount < 0 && dataset.NotBlank(line.SpecCount) {
			d.SpecCount = dataset.ParseIntOr(line.SpecCount, 0)
		}
		if d.ExemptionCode == "" {
			d.ExemptionCode = line.ExemptionCode
		}
		if d.OriginCert == "" {
			d.OriginCert = line.OriginCert
		}
		if d.Preparer == "" {
			d.Preparer = line.Preparer
		}
		if d.Importer == "" {
			d.Importer = line.Importer
		}
		if d.TradingPartner == "" {
			d.TradingPartner = line.TradingPartner
		}
		if d.TransactionType == "" {
			d.TransactionType = line.TransactionType
		}

		if line.TransactionType != "" && !txnSeen[id][line.TransactionType] {
			txnSeen[id][line.TransactionType] = true
			d.TransactionTypes++
		}
		if line.TradingPartner != "" && !traderSeen[id][line.TradingPartner] {
			traderSeen[id][line.TradingPartner] = true
			d.TradingPartners++
		}
		if line.RequirementDoc != "" {
			d.RequirementDocs++
		}
	}

	// Missing numeric fields reduce to 0.
	for i := range decls {
		if decls[i].LaneCount < 0 {
			decls[i].LaneCount = 0
		}
		if decls[i].SpecCount < 0 {
			decls[i].SpecCount = 0
		}
	}
	return decls
}

// Score computes the seven-factor weighted complexity of one
// declaration. Distinct transaction-type and trading-partner counts
// of zero score as one: a declaration always has at least one
// counterparty and one transaction mode even when the export omits
// them. The zero defaults elsewhere are intentional and different.
func (d Declaration) Score(w Weights) float64 {
	score := float64(d.LaneCount) * w.Lane
	score += float64(d.SpecCount) * w.Spec
	score += float64(d.RequirementDocs) * w.Requirement
	if dataset.NotBlank(d.ExemptionCode) {
		score += w.Exemption
	}
	if dataset.IsBoolY(d.OriginCert) {
		score += w.FTA
	}

	txn := d.TransactionTypes
	if txn == 0 {
		txn = 1
	}
	trader := d.TradingPartners
	if trader == 0 {
		trader = 1
	}
	score += float64(txn) * w.Transaction
	score += float64(trader) * w.Trader

	return score
}

// capDeclarations keeps the maxDecls declarations with the most raw
// lines, descending; ties keep first-appearance order. This biases
// the mean toward heavier declarations on oversized subsets, which
// is the intended approximation — not random sampling.
func capDeclarations(decls []Declaration, maxDecls int) []Declaration {
	if maxDecls <= 0 || len(decls) <= maxDecls {
		return decls
	}
	capped := make([]Declaration, len(decls))
	copy(capped, decls)
	sort.SliceStable(capped, func(i, j int) bool {
		return capped[i].Lines > capped[j].Lines
	})
	return capped[:maxDecls]
}

// MeanComplexity is the arithmetic mean of per-declaration scores
// over the reduced subset; an empty subset scores 0.
func MeanComplexity(decls []Declaration, w Weights, maxDecls int) float64 {
	decls = capDeclarations(decls, maxDecls)
	if len(decls) == 0 {
		return 0
	}
	var sum float64
	for _, d := range decls {
		sum += d.Score(w)
	}
	return sum / float64(len(decls))
}
