/*
excel.go - XLSX rendition of the proposal

Layout:
  Rows 1-3   Title (project), client line, date line
  Block A    Resolved inputs, one labelled row each
  Block B    Schedule table with styled header and a totals row
*/
package export

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Excel renders the full document as a single-sheet workbook.
func Excel(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Proposal"
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	if err := f.SetColWidth(sheet, "A", "A", 32); err != nil {
		return nil, fmt.Errorf("set col width: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "C", 18); err != nil {
		return nil, fmt.Errorf("set col width: %w", err)
	}

	// ── Styles ──────────────────────────────────────────────────────────

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}

	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create subtitle style: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	cellStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create cell style: %w", err)
	}

	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	// ── Identification header ───────────────────────────────────────────

	if err := f.MergeCell(sheet, "A1", "C1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheet, "A1", sanitizeCell(doc.Identification.Project))
	f.SetCellStyle(sheet, "A1", "C1", titleStyle)

	idLines := []string{
		"Client: " + doc.Identification.Client,
		fmt.Sprintf("Region: %s    Typology: %s", doc.Identification.Region, doc.Identification.Typology),
		"Date: " + doc.Identification.Date,
	}
	for i, line := range idLines {
		row := i + 2
		if err := f.MergeCell(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row)); err != nil {
			return nil, fmt.Errorf("merge id row: %w", err)
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), sanitizeCell(line))
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), subtitleStyle)
	}

	// ── Inputs block ────────────────────────────────────────────────────

	row := 6
	inputRows := []struct {
		label string
		value string
	}{
		{"Sc - total built area (m²)", doc.Inputs.Sc.String()},
		{"Snr - non-repeated area (m²)", doc.Inputs.Snr.String()},
		{"Sr - repeated area (m²)", doc.Inputs.Sr.String()},
		{"r - repetition coefficient", doc.Inputs.R.String()},
		{"R - productive-area ratio", doc.Inputs.Ratio.String()},
		{"BH - unit benchmark rate", doc.Inputs.UnitRate.StringFixed(2)},
		{"fp - percentage factor", doc.Inputs.Factor.String()},
		{"Surcharge (%)", doc.Inputs.SurchargePercent.String()},
		{"Price excl. surcharge", doc.Results.BasePrice.StringFixed(2)},
		{"Total price", doc.Results.TotalPrice.StringFixed(2)},
	}
	if doc.Inputs.Repetitions != nil {
		inputRows = append(inputRows, struct {
			label string
			value string
		}{"q - repetitions", fmt.Sprintf("%d", *doc.Inputs.Repetitions)})
	}
	for _, ir := range inputRows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), ir.label)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), ir.value)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), cellStyle)
		row++
	}

	// ── Schedule table ──────────────────────────────────────────────────

	row += 1
	headers := []string{"Stage", "Percentage", "Value"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c%d", 'A'+i, row)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), headerStyle)
	row++

	total := decimal.Zero
	for _, line := range doc.Schedule {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), sanitizeCell(line.Stage))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), line.Percentage.String()+"%")
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), line.Value.StringFixed(2))
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), cellStyle)
		total = total.Add(line.Value)
		row++
	}

	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("C%d", row), total.StringFixed(2))
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), totalStyle)

	// ── Write to buffer ─────────────────────────────────────────────────

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeCell prevents formula injection by prefixing dangerous leading
// characters with a single quote.
func sanitizeCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
