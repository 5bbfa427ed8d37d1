package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// GenerateComparisonExcel renders a ComparisonResult as an Excel workbook:
// one row per item with a price column per vendor, followed by the vendor
// score table and the summary. Returns the file contents as a byte slice.
func GenerateComparisonExcel(result *ComparisonResult, title string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := title
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if sheetName == "" {
		sheetName = "Comparison"
	}

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	// Fixed item columns, then one column per vendor, then best offer info.
	fixedHeaders := []string{"#", "Code", "Description", "Qty", "UOM"}
	tailHeaders := []string{"Best Vendor", "Savings/Unit", "Savings %"}
	totalCols := len(fixedHeaders) + len(result.VendorScores) + len(tailHeaders)

	lastCol, err := excelize.ColumnNumberToName(totalCols)
	if err != nil {
		return nil, fmt.Errorf("resolve last column: %w", err)
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

	bestStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 10},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#D5F0D5"}, Pattern: 1},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create best-offer style: %w", err)
	}

	summaryLabelStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary label style: %w", err)
	}

	summaryValueStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
	})
	if err != nil {
		return nil, fmt.Errorf("create summary value style: %w", err)
	}

	// ── Header rows (1-3) ───────────────────────────────────────────────

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheetName, "A1", sanitizeExcelCell(title))
	f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle)

	if err := f.MergeCell(sheetName, "A2", lastCol+"2"); err != nil {
		return nil, fmt.Errorf("merge subtitle: %w", err)
	}
	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Comparison %s — generated %s",
		result.ID, result.GeneratedAt.Format("02 Jan 2006 15:04")))
	f.SetCellStyle(sheetName, "A2", lastCol+"2", subtitleStyle)

	// ── Row 4: column headers ───────────────────────────────────────────

	headers := append([]string{}, fixedHeaders...)
	for _, vs := range result.VendorScores {
		headers = append(headers, vs.VendorName)
	}
	headers = append(headers, tailHeaders...)

	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("resolve column %d: %w", i+1, err)
		}
		f.SetCellValue(sheetName, col+"4", sanitizeExcelCell(h))
	}
	f.SetCellStyle(sheetName, "A4", lastCol+"4", headerStyle)

	// Column widths: narrow index, wide description, medium elsewhere.
	f.SetColWidth(sheetName, "A", "A", 5)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "C", 40)
	f.SetColWidth(sheetName, "D", "E", 8)
	restStart, _ := excelize.ColumnNumberToName(6)
	f.SetColWidth(sheetName, restStart, lastCol, 16)

	// ── Data rows (starting row 5) ──────────────────────────────────────

	row := 5
	for i, item := range result.Items {
		rowStr := fmt.Sprintf("%d", row)

		f.SetCellValue(sheetName, "A"+rowStr, i+1)
		f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(item.Code))
		f.SetCellValue(sheetName, "C"+rowStr, sanitizeExcelCell(item.Description))
		f.SetCellValue(sheetName, "D"+rowStr, item.Qty)
		f.SetCellValue(sheetName, "E"+rowStr, sanitizeExcelCell(item.UOM))
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, cellStyle)

		for vi, entry := range item.Offers {
			col, err := excelize.ColumnNumberToName(len(fixedHeaders) + vi + 1)
			if err != nil {
				return nil, fmt.Errorf("resolve vendor column: %w", err)
			}
			switch {
			case !entry.HasOffer:
				f.SetCellValue(sheetName, col+rowStr, "—")
			case entry.IsExcluded:
				f.SetCellValue(sheetName, col+rowStr, "ESCL. "+FormatEUR(entry.UnitPriceIncVAT))
			default:
				f.SetCellValue(sheetName, col+rowStr, FormatEUR(entry.UnitPriceIncVAT))
			}
			if item.BestOffer != nil && entry.VendorName == item.BestOffer.VendorName {
				f.SetCellStyle(sheetName, col+rowStr, col+rowStr, bestStyle)
			}
		}

		if item.BestOffer != nil {
			bestCol, _ := excelize.ColumnNumberToName(len(fixedHeaders) + len(result.VendorScores) + 1)
			savCol, _ := excelize.ColumnNumberToName(len(fixedHeaders) + len(result.VendorScores) + 2)
			pctCol, _ := excelize.ColumnNumberToName(len(fixedHeaders) + len(result.VendorScores) + 3)
			f.SetCellValue(sheetName, bestCol+rowStr, sanitizeExcelCell(item.BestOffer.VendorName))
			f.SetCellValue(sheetName, savCol+rowStr, FormatEUR(item.BestOffer.Savings))
			f.SetCellValue(sheetName, pctCol+rowStr, fmt.Sprintf("%.1f%%", item.BestOffer.SavingsPercent))
		}

		row++
	}

	// ── Vendor score table ──────────────────────────────────────────────

	row += 2
	scoreHeaders := []string{"Vendor", "Price Score", "Lead Time Score", "Compliance Score",
		"Total Score", "Total (inc VAT)", "Offered", "Excluded", "Missing"}
	for i, h := range scoreHeaders {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("resolve score column: %w", err)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, row), h)
	}
	scoreHeaderEnd, _ := excelize.ColumnNumberToName(len(scoreHeaders))
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", scoreHeaderEnd, row), headerStyle)
	row++

	for _, vs := range result.VendorScores {
		rowStr := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "A"+rowStr, sanitizeExcelCell(vs.VendorName))
		f.SetCellValue(sheetName, "B"+rowStr, round2(vs.PriceScore))
		f.SetCellValue(sheetName, "C"+rowStr, round2(vs.LeadTimeScore))
		f.SetCellValue(sheetName, "D"+rowStr, round2(vs.ComplianceScore))
		f.SetCellValue(sheetName, "E"+rowStr, round2(vs.TotalScore))
		f.SetCellValue(sheetName, "F"+rowStr, FormatEUR(vs.TotalIncVAT))
		f.SetCellValue(sheetName, "G"+rowStr, vs.ItemsOffered)
		f.SetCellValue(sheetName, "H"+rowStr, vs.ItemsExcluded)
		f.SetCellValue(sheetName, "I"+rowStr, vs.MissingItems)
		f.SetCellStyle(sheetName, "A"+rowStr, "I"+rowStr, cellStyle)
		row++
	}

	// ── Summary rows ────────────────────────────────────────────────────

	row++
	summaryRow := fmt.Sprintf("%d", row)
	f.SetCellValue(sheetName, "C"+summaryRow, "Best overall vendor:")
	f.SetCellStyle(sheetName, "C"+summaryRow, "C"+summaryRow, summaryLabelStyle)
	f.SetCellValue(sheetName, "D"+summaryRow, sanitizeExcelCell(result.Summary.BestOverallVendor))
	f.SetCellStyle(sheetName, "D"+summaryRow, "D"+summaryRow, summaryValueStyle)
	row++

	summaryRow = fmt.Sprintf("%d", row)
	f.SetCellValue(sheetName, "C"+summaryRow, "Total savings:")
	f.SetCellStyle(sheetName, "C"+summaryRow, "C"+summaryRow, summaryLabelStyle)
	f.SetCellValue(sheetName, "D"+summaryRow, FormatEUR(result.Summary.TotalSavings))
	f.SetCellStyle(sheetName, "D"+summaryRow, "D"+summaryRow, summaryValueStyle)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
