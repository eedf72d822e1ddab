package dataset

import (
	"strings"
)

// Canonical source-column names. Korean customs declaration exports
// carry Korean headers; the engine keys everything off these.
const (
	ColDeclarationNo   = "신고번호"
	ColPreparer        = "작성자"
	ColImporter        = "납세자상호"
	ColForwarder       = "운송주선인상호"
	ColTradingPartner  = "무역거래처상호"
	ColLaneCount       = "총란수"
	ColSpecCount       = "총규격수"
	ColExemption       = "관세감면구분"
	ColOriginCert      = "원산지증명유무"
	ColTransactionType = "거래구분"
	ColRequirementDoc  = "발급서류명"
	ColInspection      = "C/S검사구분"
	ColAcceptanceDate  = "수리일자"
	ColDeclaredDate    = "신고일자"
	ColEntryTime       = "입력일시"
)

// aliases maps a canonical column to the source-column names it may
// appear under, in priority order. The first name present in the
// header wins; export formats differ between customs systems.
var aliases = map[string][]string{
	ColRequirementDoc: {ColRequirementDoc, "요건서류명", "세관장확인서류명"},
	ColInspection:     {ColInspection, "검사구분"},
	ColTradingPartner: {ColTradingPartner, "해외거래처상호"},
}

// essentialColumns is the projection allowlist applied by Prune on
// oversized inputs. Anything outside it is unused by the engine.
var essentialColumns = []string{
	ColDeclarationNo,
	ColPreparer,
	ColImporter,
	ColForwarder,
	ColTradingPartner,
	ColLaneCount,
	ColSpecCount,
	ColExemption,
	ColOriginCert,
	ColTransactionType,
	ColRequirementDoc,
	ColInspection,
	ColAcceptanceDate,
	ColDeclaredDate,
	ColEntryTime,
}

// normalizeCol trims and lowercases a header cell for matching.
// Exports pad headers with stray whitespace depending on the system.
func normalizeCol(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// mapColumns builds a normalized header name → index map. The first
// occurrence of a duplicated header wins.
func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		key := normalizeCol(col)
		if _, ok := m[key]; !ok {
			m[key] = i
		}
	}
	return m
}

// resolveColumn returns the header index for a canonical column,
// trying its aliases in priority order.
func resolveColumn(colIdx map[string]int, canonical string) (int, bool) {
	names, ok := aliases[canonical]
	if !ok {
		names = []string{canonical}
	}
	for _, name := range names {
		if idx, found := colIdx[normalizeCol(name)]; found {
			return idx, true
		}
	}
	return 0, false
}

// getCol returns the record value for a resolved index, tolerating
// short records.
func getCol(record []string, idx int, ok bool) string {
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// Capabilities reports which analyses a header supports. Components
// probe for the fields they need and degrade to empty output instead
// of failing the run.
type Capabilities struct {
	Declarations bool `json:"declarations"`
	Preparers    bool `json:"preparers"`
	Importers    bool `json:"importers"`
	Forwarders   bool `json:"forwarders"`
	Inspection   bool `json:"inspection"`
	Dates        bool `json:"dates"`
}

// Probe inspects a raw header and reports available dimensions.
func Probe(header []string) Capabilities {
	colIdx := mapColumns(header)
	has := func(canonical string) bool {
		_, ok := resolveColumn(colIdx, canonical)
		return ok
	}
	return Capabilities{
		Declarations: has(ColDeclarationNo),
		Preparers:    has(ColPreparer),
		Importers:    has(ColImporter),
		Forwarders:   has(ColForwarder),
		Inspection:   has(ColInspection),
		Dates:        has(ColAcceptanceDate) || has(ColDeclaredDate) || has(ColEntryTime),
	}
}
