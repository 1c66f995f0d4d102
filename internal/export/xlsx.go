// Package export renders computed reports as downloadable files.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/straye-as/crm-reports/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ContentType is the MIME type of an XLSX workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const maxSheetName = 31

// Workbook writes one sheet per report table plus an info sheet with the
// period and any degradation warnings
func Workbook(w io.Writer, report domain.Report, warnings []string) error {
	period := report.Window()
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	info := domain.Table{
		Name:   "Info",
		Header: []string{"Field", "Value"},
		Rows: [][]interface{}{
			{"Report", string(report.Kind())},
			{"Start", period.Start.Format(time.RFC3339)},
			{"End", period.End.Format(time.RFC3339)},
			{"Days", period.Days},
		},
	}
	for _, warning := range warnings {
		info.Rows = append(info.Rows, []interface{}{"Warning", warning})
	}

	used := make(map[string]bool)
	for i, table := range append([]domain.Table{info}, report.Tables()...) {
		name := sheetName(table.Name, used)
		if i == 0 {
			// NewFile starts with Sheet1; reuse it so the info sheet comes first
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
		if err := writeTable(f, name, table, headerStyle); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, table domain.Table, headerStyle int) error {
	header := make([]interface{}, len(table.Header))
	for i, h := range table.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", sheet, err)
	}
	if len(header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header of %q: %w", sheet, err)
		}
	}

	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+1, sheet, err)
		}
	}
	return nil
}

// sheetName strips characters Excel rejects, truncates to the sheet name
// limit and suffixes duplicates
func sheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, name)
	clean = strings.Trim(clean, "' ")
	if clean == "" {
		clean = "Sheet"
	}
	if len([]rune(clean)) > maxSheetName {
		clean = string([]rune(clean)[:maxSheetName])
	}

	candidate := clean
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := []rune(clean)
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = string(base) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// Filename names a report download, e.g. sales_20240516_20240615.xlsx
func Filename(report domain.Report) string {
	period := report.Window()
	return fmt.Sprintf("%s_%s_%s.xlsx", report.Kind(), period.Start.Format("20060102"), period.End.Format("20060102"))
}
