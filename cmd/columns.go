package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/woosin-customs/analytics-cli/internal/dataset"
	"github.com/woosin-customs/analytics-cli/internal/fetcher"
)

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Probe an export file for supported analyses",
	Long: `Reads only the header of an XLSX or CSV export and reports which
columns were recognized and which analyses the file supports. Useful
before a long run: a missing dimension column means that rollup will
come back empty, not that the run will fail.

Examples:
  customs-analytics columns --input declarations.xlsx
  customs-analytics columns --input declarations.csv --json`,
	RunE: runColumns,
}

func init() {
	f := columnsCmd.Flags()
	f.String("input", "", "path to the XLSX or CSV export (required)")
	f.Int("sheet", 0, "XLSX sheet index")
	f.Bool("json", false, "emit the capability report as JSON")
	_ = columnsCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(columnsCmd)
}

func runColumns(cmd *cobra.Command, _ []string) error {
	input, _ := cmd.Flags().GetString("input")
	asJSON, _ := cmd.Flags().GetBool("json")

	var header []string
	var err error
	if strings.EqualFold(filepath.Ext(input), ".xlsx") {
		sheet, _ := cmd.Flags().GetInt("sheet")
		header, _, err = fetcher.ReadXLSX(input, fetcher.XLSXOptions{SheetIndex: sheet})
	} else {
		header, _, err = fetcher.ReadCSV(input)
	}
	if err != nil {
		return eris.Wrapf(err, "columns: %s", input)
	}

	caps := dataset.Probe(header)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(caps)
	}

	fmt.Printf("Columns found: %d\n\n", len(header))
	printCapability("declaration grouping", caps.Declarations)
	printCapability("preparer rollup", caps.Preparers)
	printCapability("importer rollup", caps.Importers)
	printCapability("forwarder rollup", caps.Forwarders)
	printCapability("inspection breakdown", caps.Inspection)
	printCapability("weekday metrics", caps.Dates)
	return nil
}

func printCapability(name string, ok bool) {
	mark := "no "
	if ok {
		mark = "yes"
	}
	fmt.Printf("  %-22s %s\n", name, mark)
}
