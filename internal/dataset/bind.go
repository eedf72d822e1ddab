package dataset

import (
	"time"

	"go.uber.org/zap"
)

// Line is one raw declaration line. Source fields are kept as the
// strings they arrived as; empty string means the value was absent.
// Source fields are never mutated after binding — the date normalizer
// only fills the derived Date/Weekday pair.
type Line struct {
	DeclarationNo   string
	Preparer        string
	Importer        string
	Forwarder       string
	TradingPartner  string
	LaneCount       string
	SpecCount       string
	ExemptionCode   string
	OriginCert      string
	TransactionType string
	RequirementDoc  string
	InspectionCode  string
	AcceptanceDate  string
	DeclaredDate    string
	EntryTime       string

	// Derived by the date normalizer. Weekday is meaningful only
	// when Date is non-nil.
	Date    *time.Time
	Weekday time.Weekday
}

// Dataset is a bound row set plus the set of canonical columns that
// were actually present in the source header.
type Dataset struct {
	Columns map[string]bool
	Lines   []Line
}

// Has reports whether a canonical column was present in the source.
func (d *Dataset) Has(canonical string) bool {
	return d != nil && d.Columns[canonical]
}

// Prune projects an oversized raw table down to the essential-column
// allowlist. Below maxRows it is a no-op; allowlisted columns missing
// from the source are skipped, never an error.
func Prune(header []string, records [][]string, maxRows int) ([]string, [][]string) {
	if maxRows <= 0 || len(records) <= maxRows {
		return header, records
	}

	colIdx := mapColumns(header)
	var keep []int
	var kept []string
	seen := make(map[int]bool)
	for _, canonical := range essentialColumns {
		names, ok := aliases[canonical]
		if !ok {
			names = []string{canonical}
		}
		for _, name := range names {
			if idx, found := colIdx[normalizeCol(name)]; found && !seen[idx] {
				seen[idx] = true
				keep = append(keep, idx)
				kept = append(kept, header[idx])
			}
		}
	}

	if len(keep) == len(header) {
		return header, records
	}

	pruned := make([][]string, len(records))
	for i, record := range records {
		row := make([]string, len(keep))
		for j, idx := range keep {
			if idx < len(record) {
				row[j] = record[idx]
			}
		}
		pruned[i] = row
	}

	zap.L().Info("dataset: pruned columns on oversized input",
		zap.Int("rows", len(records)),
		zap.Int("source_columns", len(header)),
		zap.Int("kept_columns", len(keep)),
	)

	return kept, pruned
}

// Bind maps raw records onto typed Lines using the header, resolving
// alternate column names first-present-wins.
func Bind(header []string, records [][]string) *Dataset {
	colIdx := mapColumns(header)

	type binding struct {
		idx int
		ok  bool
	}
	resolve := func(canonical string) binding {
		idx, ok := resolveColumn(colIdx, canonical)
		return binding{idx: idx, ok: ok}
	}

	declNo := resolve(ColDeclarationNo)
	preparer := resolve(ColPreparer)
	importer := resolve(ColImporter)
	forwarder := resolve(ColForwarder)
	trader := resolve(ColTradingPartner)
	lanes := resolve(ColLaneCount)
	specs := resolve(ColSpecCount)
	exemption := resolve(ColExemption)
	origin := resolve(ColOriginCert)
	txn := resolve(ColTransactionType)
	reqDoc := resolve(ColRequirementDoc)
	inspection := resolve(ColInspection)
	acceptDate := resolve(ColAcceptanceDate)
	declDate := resolve(ColDeclaredDate)
	entryTime := resolve(ColEntryTime)

	columns := map[string]bool{
		ColDeclarationNo:   declNo.ok,
		ColPreparer:        preparer.ok,
		ColImporter:        importer.ok,
		ColForwarder:       forwarder.ok,
		ColTradingPartner:  trader.ok,
		ColLaneCount:       lanes.ok,
		ColSpecCount:       specs.ok,
		ColExemption:       exemption.ok,
		ColOriginCert:      origin.ok,
		ColTransactionType: txn.ok,
		ColRequirementDoc:  reqDoc.ok,
		ColInspection:      inspection.ok,
		ColAcceptanceDate:  acceptDate.ok,
		ColDeclaredDate:    declDate.ok,
		ColEntryTime:       entryTime.ok,
	}

	lines := make([]Line, 0, len(records))
	for _, record := range records {
		lines = append(lines, Line{
			DeclarationNo:   getCol(record, declNo.idx, declNo.ok),
			Preparer:        getCol(record, preparer.idx, preparer.ok),
			Importer:        getCol(record, importer.idx, importer.ok),
			Forwarder:       getCol(record, forwarder.idx, forwarder.ok),
			TradingPartner:  getCol(record, trader.idx, trader.ok),
			LaneCount:       getCol(record, lanes.idx, lanes.ok),
			SpecCount:       getCol(record, specs.idx, specs.ok),
			ExemptionCode:   getCol(record, exemption.idx, exemption.ok),
			OriginCert:      getCol(record, origin.idx, origin.ok),
			TransactionType: getCol(record, txn.idx, txn.ok),
			RequirementDoc:  getCol(record, reqDoc.idx, reqDoc.ok),
			InspectionCode:  getCol(record, inspection.idx, inspection.ok),
			AcceptanceDate:  getCol(record, acceptDate.idx, acceptDate.ok),
			DeclaredDate:    getCol(record, declDate.idx, declDate.ok),
			EntryTime:       getCol(record, entryTime.idx, entryTime.ok),
		})
	}

	return &Dataset{Columns: columns, Lines: lines}
}

// Build runs prune and bind in one step. maxRows is the column-prune
// threshold; pass 0 to disable pruning.
func Build(header []string, records [][]string, maxRows int) *Dataset {
	header, records = Prune(header, records, maxRows)
	return Bind(header, records)
}
