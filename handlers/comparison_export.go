package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"procuretrack/services"
)

// comparisonTitle builds the export title from the comparison's RFP.
func comparisonTitle(app *pocketbase.PocketBase, record *core.Record) string {
	if rfp, err := app.FindRecordById("rfps", record.GetString("rfp")); err == nil {
		if title := rfp.GetString("title"); title != "" {
			return title
		}
	}
	return "Confronto Offerte"
}

// HandleComparisonExportExcel regenerates the comparison matrix workbook
// from the stored result and streams it as a download.
func HandleComparisonExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findComparison(app, e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "comparison")
		}

		result, err := loadComparisonResult(record)
		if err != nil {
			log.Printf("export_excel: %v", err)
			return apiError(e, http.StatusInternalServerError, "stored comparison is unreadable")
		}

		title := comparisonTitle(app, record)
		xlsxBytes, err := services.GenerateComparisonExcel(result, title)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return apiError(e, http.StatusInternalServerError, "failed to generate Excel file")
		}

		filename := fmt.Sprintf("Confronto_%s_%d.xlsx", sanitizeFilename(title), time.Now().Year())

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleComparisonExportPDF regenerates the comparison summary PDF from the
// stored result and streams it as a download.
func HandleComparisonExportPDF(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findComparison(app, e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "comparison")
		}

		result, err := loadComparisonResult(record)
		if err != nil {
			log.Printf("export_pdf: %v", err)
			return apiError(e, http.StatusInternalServerError, "stored comparison is unreadable")
		}

		title := comparisonTitle(app, record)
		pdfBytes, err := services.GenerateComparisonPDF(result, title)
		if err != nil {
			log.Printf("export_pdf: failed to generate: %v", err)
			return apiError(e, http.StatusInternalServerError, "failed to generate PDF file")
		}

		filename := fmt.Sprintf("Confronto_%s_%d.pdf", sanitizeFilename(title), time.Now().Year())

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}
