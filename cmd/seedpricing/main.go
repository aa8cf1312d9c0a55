// Command seedpricing converts a CPT fee-schedule Excel workbook into a
// SQL seed file for the reference_pricing table.
// Expected columns on the first sheet, data starting at row index 1:
// A=CPT code, B=procedure name, C=Medicare rate, D=typical range low,
// E=typical range high.
// Usage: go run ./cmd/seedpricing [fee_schedule.xlsx]
// Output: db/seeds/reference_pricing.sql
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const batchSize = 500

type pricingEntry struct {
	code          string
	procedureName string
	medicareRate  float64
	rangeLow      float64
	rangeHigh     float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	xlsxPath := "fee_schedule.xlsx"
	if len(os.Args) > 1 {
		xlsxPath = os.Args[1]
	}
	outPath := "db/seeds/reference_pricing.sql"

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := parseFeeSchedule(f)
	if err != nil {
		return fmt.Errorf("parse fee schedule: %w", err)
	}
	log.Printf("fee schedule: %d entries", len(entries))

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	w := func(s string) error { _, werr := fmt.Fprintln(out, s); return werr }

	for _, line := range []string{
		"-- Reference pricing seed data generated from the fee schedule workbook.",
		fmt.Sprintf("-- %d entries in batches of %d.", len(entries), batchSize),
		"BEGIN;",
		"",
	} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write header: %w", werr)
		}
	}

	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := writeBatch(out, entries[i:end]); err != nil {
			return fmt.Errorf("write batch at offset %d: %w", i, err)
		}
	}

	if err := w("COMMIT;"); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}

	log.Printf("wrote %s", outPath)
	return nil
}

func parseFeeSchedule(f *excelize.File) ([]pricingEntry, error) {
	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var entries []pricingEntry
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 5 {
			continue
		}

		code := strings.TrimSpace(cellVal(row, 0))
		name := strings.TrimSpace(cellVal(row, 1))
		if code == "" || name == "" || seen[code] {
			continue
		}

		rate, ok1 := parseMoney(cellVal(row, 2))
		low, ok2 := parseMoney(cellVal(row, 3))
		high, ok3 := parseMoney(cellVal(row, 4))
		if !ok1 || !ok2 || !ok3 || low > high {
			log.Printf("skipping row %d (code %s): unparseable or inconsistent amounts", i+1, code)
			continue
		}

		seen[code] = true
		entries = append(entries, pricingEntry{
			code:          code,
			procedureName: name,
			medicareRate:  rate,
			rangeLow:      low,
			rangeHigh:     high,
		})
	}
	return entries, nil
}

func cellVal(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseMoney(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func writeBatch(out *os.File, entries []pricingEntry) error {
	if _, err := fmt.Fprintln(out, "INSERT INTO reference_pricing (code, procedure_name, medicare_rate, typical_range_low, typical_range_high) VALUES"); err != nil {
		return err
	}
	for i, e := range entries {
		sep := ","
		if i == len(entries)-1 {
			sep = ""
		}
		line := fmt.Sprintf("('%s', '%s', %.2f, %.2f, %.2f)%s",
			sqlEscape(e.code), sqlEscape(e.procedureName),
			e.medicareRate, e.rangeLow, e.rangeHigh, sep)
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(out, "ON CONFLICT (code) DO UPDATE SET procedure_name = EXCLUDED.procedure_name, medicare_rate = EXCLUDED.medicare_rate, typical_range_low = EXCLUDED.typical_range_low, typical_range_high = EXCLUDED.typical_range_high;")
	return err
}

func sqlEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
