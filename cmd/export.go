package main

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export enrichment results to XLSX",
	Long: `Converts the output CSV to an Excel workbook for handoff to sales.

Examples:
  export --output leads.xlsx
  export --input risultati.csv --output leads.xlsx --relevant-only`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.String("input", "", "results CSV file (defaults to the configured output file)")
	f.String("output", "leads.xlsx", "destination XLSX file")
	f.Bool("relevant-only", false, "export only rows marked pertinente")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	inputPath := cfg.Output.File
	if v, _ := cmd.Flags().GetString("input"); v != "" {
		inputPath = v
	}
	outputPath, _ := cmd.Flags().GetString("output")
	relevantOnly, _ := cmd.Flags().GetBool("relevant-only")

	f, err := os.Open(inputPath)
	if err != nil {
		return eris.Wrapf(err, "export: open %s", inputPath)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return eris.Wrapf(err, "export: read header of %s", inputPath)
	}
	pertinenzaIdx := -1
	for i, col := range header {
		if strings.TrimSpace(strings.ToLower(col)) == "pertinenza" {
			pertinenzaIdx = i
		}
	}
	if relevantOnly && pertinenzaIdx < 0 {
		return eris.Errorf("export: %s has no pertinenza column", inputPath)
	}

	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	addRow(sheet, header)
	exported, skipped := 0, 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if relevantOnly && !isTrue(cellAt(row, pertinenzaIdx)) {
			continue
		}
		addRow(sheet, row)
		exported++
	}

	if err := wb.Save(outputPath); err != nil {
		return eris.Wrapf(err, "export: save %s", outputPath)
	}

	zap.L().Info("export complete",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Int("rows", exported),
		zap.Int("skipped", skipped),
	)
	return nil
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isTrue(s string) bool {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "true", "1", "yes", "si", "sì":
		return true
	}
	return false
}
