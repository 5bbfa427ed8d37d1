package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"procuretrack/services"
)

type awardRequest struct {
	VendorName string `json:"vendorName"`
}

// HandleComparisonAward creates a contract from a stored comparison. Without
// an explicit vendor the best overall vendor wins. The RFP moves to awarded.
func HandleComparisonAward(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findComparison(app, e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "comparison")
		}

		result, err := loadComparisonResult(record)
		if err != nil {
			log.Printf("award: %v", err)
			return apiError(e, http.StatusInternalServerError, "stored comparison is unreadable")
		}

		var req awardRequest
		e.BindBody(&req)

		vendorName := strings.TrimSpace(req.VendorName)
		if vendorName == "" {
			vendorName = result.Summary.BestOverallVendor
		}
		if vendorName == "" {
			return apiError(e, http.StatusUnprocessableEntity, "comparison has no vendor to award")
		}

		var winner *services.VendorScore
		for i := range result.VendorScores {
			if result.VendorScores[i].VendorName == vendorName {
				winner = &result.VendorScores[i]
				break
			}
		}
		if winner == nil {
			return apiError(e, http.StatusUnprocessableEntity, "vendor is not part of this comparison")
		}

		rfp, err := app.FindRecordById("rfps", record.GetString("rfp"))
		if err != nil {
			return notFound(e, "rfp")
		}

		vendors, err := app.FindRecordsByFilter(
			"vendors",
			"name = {:name}",
			"", 1, 0,
			map[string]any{"name": vendorName},
		)
		if err != nil || len(vendors) == 0 {
			return apiError(e, http.StatusUnprocessableEntity, "winning vendor record not found")
		}

		contractsCol, err := app.FindCollectionByNameOrId("contracts")
		if err != nil {
			log.Printf("award: could not find contracts collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not create contract")
		}

		contract := core.NewRecord(contractsCol)
		contract.Set("project", rfp.GetString("project"))
		contract.Set("rfp", rfp.Id)
		contract.Set("vendor", vendors[0].Id)
		contract.Set("comparison", record.Id)
		contract.Set("total_ex_vat", winner.TotalExVAT)
		contract.Set("total_inc_vat", winner.TotalIncVAT)
		contract.Set("status", "draft")
		contract.Set("awarded_date", time.Now().UTC().Format("2006-01-02 15:04:05.000Z"))
		if err := app.Save(contract); err != nil {
			log.Printf("award: could not save contract: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not create contract")
		}

		rfp.Set("status", "awarded")
		if err := app.Save(rfp); err != nil {
			log.Printf("award: could not update rfp %s status: %v", rfp.Id, err)
		}

		log.Printf("award: rfp %s awarded to %q (%s inc. VAT)",
			rfp.Id, vendorName, services.FormatEUR(winner.TotalIncVAT))

		resp := map[string]any{
			"contractId":  contract.Id,
			"vendor":      vendorName,
			"totalExVat":  winner.TotalExVAT,
			"totalIncVat": winner.TotalIncVAT,
			"status":      "draft",
		}
		if budgetTotal, err := rfpBudgetTotal(app, rfp.Id); err == nil && budgetTotal > 0 {
			drift := services.CalcBudgetDrift(budgetTotal, winner.TotalExVAT)
			resp["budget"] = map[string]any{
				"totalBudget":  drift.TotalBudget,
				"totalAwarded": drift.TotalAwarded,
				"drift":        drift.Drift,
				"driftPercent": drift.DriftPercent,
			}
		}

		return e.JSON(http.StatusCreated, resp)
	}
}
