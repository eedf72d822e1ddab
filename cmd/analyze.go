package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/woosin-customs/analytics-cli/internal/analyzer"
	"github.com/woosin-customs/analytics-cli/internal/config"
	"github.com/woosin-customs/analytics-cli/internal/dataset"
	"github.com/woosin-customs/analytics-cli/internal/fetcher"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full analysis over a declaration export",
	Long: `Runs one batch analysis over an XLSX or CSV declaration-line export.

Produces four tables: per-preparer workload (sorted by complexity),
per-importer and per-forwarder activity (sorted by volume), and the
C/S inspection breakdown with summary stats.

Complexity weights come from config.yaml, optionally overridden by a
weights YAML file (--weights) and then by individual flags; overrides
merge field by field and apply to this run only.

Examples:
  # Full analysis, table output
  customs-analytics analyze --input declarations.xlsx

  # Importer rollup only, exported as CSV
  customs-analytics analyze --input declarations.xlsx --dimension importer --format csv --output importers.csv

  # Custom weights for this run
  customs-analytics analyze --input decl.csv --weights heavy.yaml --lane-weight 2.0`,
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.String("input", "", "path to the XLSX or CSV export (required)")
	f.Int("sheet", 0, "XLSX sheet index")
	f.String("sheet-name", "", "XLSX sheet name (overrides --sheet)")
	f.String("dimension", "all", "dimension to output: all, preparer, importer, forwarder, inspection")
	f.String("format", "table", "output format: table, csv, or json")
	f.String("output", "", "output file path (default: stdout)")
	f.String("weights", "", "YAML file with partial weight overrides")
	f.Float64("lane-weight", 0, "override lane count weight")
	f.Float64("spec-weight", 0, "override spec count weight")
	f.Float64("requirement-weight", 0, "override requirement document weight")
	f.Float64("exemption-weight", 0, "override exemption weight")
	f.Float64("fta-weight", 0, "override origin certificate (FTA) weight")
	f.Float64("transaction-weight", 0, "override transaction type weight")
	f.Float64("trader-weight", 0, "override trading partner weight")
	_ = analyzeCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	input, _ := cmd.Flags().GetString("input")
	dimension, _ := cmd.Flags().GetString("dimension")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	switch dimension {
	case "all", "preparer", "importer", "forwarder", "inspection":
	default:
		return eris.Errorf("analyze: unknown --dimension %q", dimension)
	}
	if format != "table" && format != "csv" && format != "json" {
		return eris.Errorf("analyze: --format must be table, csv, or json (got %q)", format)
	}
	if format == "csv" && dimension == "all" {
		return eris.New("analyze: --format csv needs a single --dimension")
	}

	log := zap.L().With(zap.String("command", "analyze"))

	header, records, err := readInput(cmd, input)
	if err != nil {
		return err
	}
	log.Info("input loaded",
		zap.String("path", input),
		zap.Int("rows", len(records)),
		zap.Int("columns", len(header)),
	)

	weights, err := resolveWeights(cmd, cfg.Weights)
	if err != nil {
		return err
	}

	ds := dataset.Build(header, records, cfg.Limits.PruneRowThreshold)
	engine := analyzer.NewEngine(cfg.Limits)
	report, err := engine.Run(ds, weights)
	if err != nil {
		return eris.Wrapf(err, "analyze: %s", input)
	}

	w, closer, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closer()

	return renderReport(w, report, dimension, format, cfg.Thresholds)
}

// readInput dispatches on file extension: .xlsx goes through the
// spreadsheet reader, everything else is treated as CSV.
func readInput(cmd *cobra.Command, path string) ([]string, [][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		sheet, _ := cmd.Flags().GetInt("sheet")
		sheetName, _ := cmd.Flags().GetString("sheet-name")
		return fetcher.ReadXLSX(path, fetcher.XLSXOptions{SheetIndex: sheet, SheetName: sheetName})
	}
	return fetcher.ReadCSV(path)
}

// resolveWeights merges the config weights with the --weights YAML
// file and then individual flag overrides, in that order.
func resolveWeights(cmd *cobra.Command, base analyzer.Weights) (analyzer.Weights, error) {
	if path, _ := cmd.Flags().GetString("weights"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return base, eris.Wrapf(err, "analyze: read weights file %s", path)
		}
		var overrides analyzer.WeightOverrides
		if err := yaml.Unmarshal(data, &overrides); err != nil {
			return base, eris.Wrapf(err, "analyze: parse weights file %s", path)
		}
		base = base.Merge(overrides)
	}

	flagOverride := func(name string, dst *float64) {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetFloat64(name)
			*dst = v
		}
	}
	flagOverride("lane-weight", &base.Lane)
	flagOverride("spec-weight", &base.Spec)
	flagOverride("requirement-weight", &base.Requirement)
	flagOverride("exemption-weight", &base.Exemption)
	flagOverride("fta-weight", &base.FTA)
	flagOverride("transaction-weight", &base.Transaction)
	flagOverride("trader-weight", &base.Trader)

	return base, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "analyze: create output file %s", path)
	}
	return f, func() { _ = f.Close() }, nil
}

func renderReport(w io.Writer, report *analyzer.Report, dimension, format string, th config.ThresholdsConfig) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		switch dimension {
		case "preparer":
			return enc.Encode(report.Preparers)
		case "importer":
			return enc.Encode(report.Importers)
		case "forwarder":
			return enc.Encode(report.Forwarders)
		case "inspection":
			return enc.Encode(report.Inspections)
		default:
			return enc.Encode(report)
		}
	}

	sections := []struct {
		name   string
		title  string
		header []string
		rows   [][]string
	}{
		{"preparer", "Preparers (by complexity)", preparerHeader, preparerRows(report.Preparers, th)},
		{"importer", "Importers (by volume)", importerHeader, importerRows(report.Importers)},
		{"forwarder", "Forwarders (by volume)", forwarderHeader, forwarderRows(report.Forwarders)},
		{"inspection", "Inspection breakdown", inspectionHeader, inspectionRows(report.Inspections)},
	}

	for _, s := range sections {
		if dimension != "all" && dimension != s.name {
			continue
		}
		if format == "csv" {
			return writeCSV(w, s.header, s.rows)
		}
		if err := writeTable(w, s.title, s.header, s.rows); err != nil {
			return err
		}
	}

	if format == "table" && (dimension == "all" || dimension == "inspection") {
		printInspectionStats(w, report.Inspection)
	}
	return nil
}

var (
	preparerHeader = []string{
		"preparer", "lines", "declarations", "complexity", "band",
		"lanes", "specs", "req_decls", "fta_rate", "exemption_rate",
		"txn_types", "traders", "importers", "avg_items",
		"mon", "tue", "wed", "thu", "fri",
	}
	importerHeader = []string{
		"importer", "lines", "declarations", "complexity",
		"primary_preparer", "preparers", "doc_types", "req_rate",
		"fta_rate", "exemption_rate", "txn_types", "avg_items",
		"mon", "tue", "wed", "thu", "fri",
	}
	forwarderHeader = []string{
		"forwarder", "lines", "declarations", "complexity",
		"primary_preparer", "preparers", "primary_importer", "importers",
		"traders", "avg_lanes", "avg_specs", "fta_rate", "exemption_rate",
		"avg_items", "mon", "tue", "wed", "thu", "fri",
	}
	inspectionHeader = []string{"code", "label", "declarations", "share"}
)

// complexityBand buckets a score against the configured cutoffs.
func complexityBand(score float64, th config.ThresholdsConfig) string {
	switch {
	case score >= th.High:
		return "high"
	case score >= th.Low:
		return "medium"
	default:
		return "low"
	}
}

func preparerRows(summaries []analyzer.PreparerSummary, th config.ThresholdsConfig) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Preparer,
			fmt.Sprintf("%d", s.LineCount),
			fmt.Sprintf("%d", s.DeclarationCount),
			fmt.Sprintf("%.1f", s.ComplexityScore),
			complexityBand(s.ComplexityScore, th),
			fmt.Sprintf("%d", s.TotalLanes),
			fmt.Sprintf("%d", s.TotalSpecs),
			fmt.Sprintf("%d", s.RequirementDeclarations),
			fmt.Sprintf("%.1f", s.FTARate),
			fmt.Sprintf("%.1f", s.ExemptionRate),
			fmt.Sprintf("%d", s.TransactionTypeDiversity),
			fmt.Sprintf("%d", s.TradingPartnerCount),
			fmt.Sprintf("%d", s.ImporterCount),
			fmt.Sprintf("%.1f", s.AvgItemsPerDeclaration),
			fmt.Sprintf("%d", s.Weekdays.Monday),
			fmt.Sprintf("%d", s.Weekdays.Tuesday),
			fmt.Sprintf("%d", s.Weekdays.Wednesday),
			fmt.Sprintf("%d", s.Weekdays.Thursday),
			fmt.Sprintf("%d", s.Weekdays.Friday),
		})
	}
	return rows
}

func importerRows(summaries []analyzer.ImporterSummary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Importer,
			fmt.Sprintf("%d", s.LineCount),
			fmt.Sprintf("%d", s.DeclarationCount),
			fmt.Sprintf("%.1f", s.ComplexityScore),
			s.PrimaryPreparer,
			fmt.Sprintf("%d", s.PreparerCount),
			fmt.Sprintf("%d", s.DocumentTypeCount),
			fmt.Sprintf("%.1f", s.RequirementRate),
			fmt.Sprintf("%.1f", s.FTARate),
			fmt.Sprintf("%.1f", s.ExemptionRate),
			fmt.Sprintf("%d", s.TransactionTypeDiversity),
			fmt.Sprintf("%.1f", s.AvgItemsPerDeclaration),
			fmt.Sprintf("%d", s.Weekdays.Monday),
			fmt.Sprintf("%d", s.Weekdays.Tuesday),
			fmt.Sprintf("%d", s.Weekdays.Wednesday),
			fmt.Sprintf("%d", s.Weekdays.Thursday),
			fmt.Sprintf("%d", s.Weekdays.Friday),
		})
	}
	return rows
}

func forwarderRows(summaries []analyzer.ForwarderSummary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Forwarder,
			fmt.Sprintf("%d", s.LineCount),
			fmt.Sprintf("%d", s.DeclarationCount),
			fmt.Sprintf("%.1f", s.ComplexityScore),
			s.PrimaryPreparer,
			fmt.Sprintf("%d", s.PreparerCount),
			s.PrimaryImporter,
			fmt.Sprintf("%d", s.ImporterCount),
			fmt.Sprintf("%d", s.TradingPartnerCount),
			fmt.Sprintf("%.1f", s.AvgLanes),
			fmt.Sprintf("%.1f", s.AvgSpecs),
			fmt.Sprintf("%.1f", s.FTARate),
			fmt.Sprintf("%.1f", s.ExemptionRate),
			fmt.Sprintf("%.1f", s.AvgItemsPerDeclaration),
			fmt.Sprintf("%d", s.Weekdays.Monday),
			fmt.Sprintf("%d", s.Weekdays.Tuesday),
			fmt.Sprintf("%d", s.Weekdays.Wednesday),
			fmt.Sprintf("%d", s.Weekdays.Thursday),
			fmt.Sprintf("%d", s.Weekdays.Friday),
		})
	}
	return rows
}

func inspectionRows(summaries []analyzer.InspectionSummary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Code,
			s.Label,
			fmt.Sprintf("%d", s.Declarations),
			fmt.Sprintf("%.1f", s.Share),
		})
	}
	return rows
}

func printInspectionStats(w io.Writer, stats analyzer.InspectionStats) {
	fmt.Fprintf(w, "\n--- Inspection summary ---\n")
	fmt.Fprintf(w, "Total declarations: %d\n", stats.TotalDeclarations)
	fmt.Fprintf(w, "Distinct codes:     %d\n", stats.CodeCount)
	fmt.Fprintf(w, "Most frequent:      %s\n", stats.TopLabel)
	fmt.Fprintf(w, "No-inspection rate: %.1f%%\n", stats.NoInspectionRate)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "analyze: write CSV header")
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "analyze: write CSV row")
		}
	}
	return nil
}

func writeTable(w io.Writer, title string, header []string, rows [][]string) error {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}

	var total int
	for _, width := range widths {
		total += width + 2
	}

	if _, err := fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("-", total)); err != nil {
		return eris.Wrap(err, "analyze: write table title")
	}
	writeRow := func(cells []string) error {
		var b strings.Builder
		for i, cell := range cells {
			pad := widths[i] - utf8.RuneCountInString(cell) + 2
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", pad))
		}
		_, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
		return err
	}
	if err := writeRow(header); err != nil {
		return eris.Wrap(err, "analyze: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", total)); err != nil {
		return eris.Wrap(err, "analyze: write table separator")
	}
	for _, row := range rows {
		if err := writeRow(row); err != nil {
			return eris.Wrap(err, "analyze: write table row")
		}
	}
	return nil
}
