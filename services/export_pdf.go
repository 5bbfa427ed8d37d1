package services

import (
	"fmt"
	"math"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GenerateComparisonPDF creates a PDF report for a comparison using
// maroto/v2: vendor ranking, per-item best offers and the savings summary.
func GenerateComparisonPDF(result *ComparisonResult, title string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Horizontal).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addComparisonHeader(m, result, title)
	addScoreTable(m, result)
	addBestOfferTable(m, result)
	addComparisonSummary(m, result)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func addComparisonHeader(m core.Maroto, result *ComparisonResult, title string) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("Comparison: %s", result.ID), props.Text{
					Size:  9,
					Align: align.Left,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Date: %s", result.GeneratedAt.Format("02 Jan 2006")), props.Text{
					Size:  9,
					Align: align.Right,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
		),
	)

	m.AddRows(row.New(4))
}

func pdfHeaderRow(cells []string, widths []int) core.Row {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerCell := props.Cell{BackgroundColor: headerBg}

	r := row.New(8)
	for i, c := range cells {
		r.Add(col.New(widths[i]).Add(text.New(c, headerText)).WithStyle(&headerCell))
	}
	return r
}

// addScoreTable renders the vendor ranking with sub-scores and totals.
func addScoreTable(m core.Maroto, result *ComparisonResult) {
	widths := []int{3, 1, 1, 1, 1, 2, 1, 1, 1}
	m.AddRows(pdfHeaderRow([]string{
		"Vendor", "Price", "Lead Time", "Compliance", "Total",
		"Value (inc VAT)", "Offered", "Excl.", "Missing",
	}, widths))

	baseText := props.Text{Size: 8, Align: align.Center}
	leftText := baseText
	leftText.Align = align.Left
	rightText := baseText
	rightText.Align = align.Right

	for _, vs := range result.VendorScores {
		var cellStyle *props.Cell
		if vs.VendorName == result.Summary.BestOverallVendor {
			cellStyle = &props.Cell{BackgroundColor: &props.Color{Red: 213, Green: 240, Blue: 213}}
		}

		cols := []core.Col{
			col.New(3).Add(text.New(vs.VendorName, leftText)),
			col.New(1).Add(text.New(fmt.Sprintf("%.2f", vs.PriceScore), baseText)),
			col.New(1).Add(text.New(fmt.Sprintf("%.2f", vs.LeadTimeScore), baseText)),
			col.New(1).Add(text.New(fmt.Sprintf("%.2f", vs.ComplianceScore), baseText)),
			col.New(1).Add(text.New(fmt.Sprintf("%.2f", vs.TotalScore), baseText)),
			col.New(2).Add(text.New(FormatEUR(vs.TotalIncVAT), rightText)),
			col.New(1).Add(text.New(fmt.Sprintf("%d", vs.ItemsOffered), baseText)),
			col.New(1).Add(text.New(fmt.Sprintf("%d", vs.ItemsExcluded), baseText)),
			col.New(1).Add(text.New(fmt.Sprintf("%d", vs.MissingItems), baseText)),
		}

		r := row.New(7)
		for _, c := range cols {
			if cellStyle != nil {
				c = c.WithStyle(cellStyle)
			}
			r.Add(c)
		}
		m.AddRows(r)
	}

	m.AddRows(row.New(6))
}

// addBestOfferTable lists each item with its winning vendor and savings.
func addBestOfferTable(m core.Maroto, result *ComparisonResult) {
	widths := []int{4, 1, 1, 2, 2, 1, 1}
	m.AddRows(pdfHeaderRow([]string{
		"Item", "Qty", "UOM", "Best Vendor", "Best Price", "Savings", "Sav. %",
	}, widths))

	baseText := props.Text{Size: 7, Align: align.Center}
	leftText := baseText
	leftText.Align = align.Left
	rightText := baseText
	rightText.Align = align.Right

	for _, item := range result.Items {
		bestVendor := "—"
		bestPrice := "—"
		savings := "—"
		savingsPct := "—"
		if item.BestOffer != nil {
			bestVendor = item.BestOffer.VendorName
			bestPrice = FormatEUR(item.BestOffer.UnitPrice)
			savings = FormatEUR(item.BestOffer.Savings)
			savingsPct = fmt.Sprintf("%.1f%%", item.BestOffer.SavingsPercent)
		}

		m.AddRows(
			row.New(6).Add(
				col.New(4).Add(text.New(item.Description, leftText)),
				col.New(1).Add(text.New(formatQty(item.Qty), rightText)),
				col.New(1).Add(text.New(item.UOM, baseText)),
				col.New(2).Add(text.New(bestVendor, leftText)),
				col.New(2).Add(text.New(bestPrice, rightText)),
				col.New(1).Add(text.New(savings, rightText)),
				col.New(1).Add(text.New(savingsPct, rightText)),
			),
		)
	}
}

// addComparisonSummary adds the headline numbers at the bottom of the PDF.
func addComparisonSummary(m core.Maroto, result *ComparisonResult) {
	m.AddRows(row.New(6))

	summaryBg := &props.Color{Red: 240, Green: 240, Blue: 240}
	summaryCell := &props.Cell{BackgroundColor: summaryBg}

	labelStyle := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Right,
	}
	valueStyle := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Right,
	}

	addSummaryLine := func(label, value string) {
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(text.New(label, labelStyle)).WithStyle(summaryCell),
				col.New(4).Add(text.New(value, valueStyle)).WithStyle(summaryCell),
			),
		)
	}

	addSummaryLine("Best Overall Vendor", result.Summary.BestOverallVendor)
	addSummaryLine("Total Savings", FormatEUR(result.Summary.TotalSavings))
	addSummaryLine("Average Savings per Item", FormatEUR(result.Summary.AverageSavings))
	addSummaryLine("Items / Vendors Compared",
		fmt.Sprintf("%d / %d", result.Summary.TotalItems, result.Summary.TotalVendors))
}

// formatQty returns a string representation of the quantity value.
// Whole numbers are formatted without decimals; fractional values get 2 decimal places.
func formatQty(qty float64) string {
	if qty == math.Trunc(qty) {
		return fmt.Sprintf("%.0f", qty)
	}
	return fmt.Sprintf("%.2f", qty)
}
