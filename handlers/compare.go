package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"procuretrack/services"
)

type compareRequest struct {
	Weights *services.ScoringWeights `json:"weights"`
}

// loadRawOffers assembles the raw offers of an RFP from the offers and
// offer_lines collections, in submission order.
func loadRawOffers(app *pocketbase.PocketBase, rfpID string) ([]services.RawOffer, error) {
	offers, err := app.FindRecordsByFilter(
		"offers",
		"rfp = {:rfpId}",
		"created", 0, 0,
		map[string]any{"rfpId": rfpID},
	)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}

	raws := make([]services.RawOffer, 0, len(offers))
	for _, offer := range offers {
		vendor, err := app.FindRecordById("vendors", offer.GetString("vendor"))
		if err != nil {
			return nil, fmt.Errorf("vendor %s not found: %w", offer.GetString("vendor"), err)
		}

		lines, err := loadOfferLines(app, offer.Id)
		if err != nil {
			return nil, fmt.Errorf("query offer lines: %w", err)
		}

		raw := services.RawOffer{
			VendorName:  vendor.GetString("name"),
			VendorEmail: vendor.GetString("email"),
			Lines:       make([]services.RawOfferLine, 0, len(lines)),
		}
		for _, line := range lines {
			notes := ""
			if offer.GetBool("vat_inclusive") {
				notes = "IVA inclusa"
			} else if vn := offer.GetString("vat_notes"); vn != "" {
				notes = vn
			}
			exclusions := ""
			if line.GetBool("excluded") {
				exclusions = line.GetString("exclusion_reason")
				if exclusions == "" {
					exclusions = "excluded"
				}
			}
			raw.Lines = append(raw.Lines, services.RawOfferLine{
				Code:        line.GetString("code"),
				Description: line.GetString("description"),
				UOM:         line.GetString("uom"),
				Qty:         line.GetFloat("qty"),
				UnitPrice:   line.GetFloat("unit_price"),
				VATRate:     line.GetString("vat_rate"),
				Notes:       notes,
				Exclusions:  exclusions,
				LeadTime:    line.GetString("lead_time"),
			})
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

// HandleCompare runs the full comparison pipeline for an RFP: it loads every
// submitted offer, normalizes them against the project's VAT default and UOM
// preferences, scores the vendors and persists the result.
func HandleCompare(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		project, err := app.FindRecordById("projects", projectID)
		if err != nil {
			return notFound(e, "project")
		}

		rfp, err := app.FindRecordById("rfps", e.Request.PathValue("id"))
		if err != nil || rfp.GetString("project") != projectID {
			return notFound(e, "rfp")
		}

		weights := services.DefaultWeights()
		var req compareRequest
		if err := e.BindBody(&req); err == nil && req.Weights != nil {
			weights = *req.Weights
		}

		defaultVATRate := project.GetFloat("default_vat_rate")
		if defaultVATRate == 0 {
			defaultVATRate = services.DefaultVATRate
		}
		uomPrefs := map[string]string{}
		project.UnmarshalJSONField("uom_preferences", &uomPrefs)

		raws, err := loadRawOffers(app, rfp.Id)
		if err != nil {
			log.Printf("compare: load offers for rfp %s: %v", rfp.Id, err)
			return apiError(e, http.StatusInternalServerError, "could not load offers")
		}

		normalized := make([]services.NormalizedOffer, 0, len(raws))
		for _, raw := range raws {
			offer, err := services.NormalizeOffer(raw, defaultVATRate, uomPrefs)
			if err != nil {
				log.Printf("compare: normalize offer from %q: %v", raw.VendorName, err)
				return apiError(e, http.StatusUnprocessableEntity, fmt.Sprintf("offer from %q is invalid: %v", raw.VendorName, err))
			}
			normalized = append(normalized, offer)
		}

		result, err := services.CompareOffers(normalized, weights)
		if err != nil {
			log.Printf("compare: rfp %s: %v", rfp.Id, err)
			return apiError(e, http.StatusUnprocessableEntity, err.Error())
		}
		report := services.ValidateComparison(result)

		if err := saveComparison(app, rfp.Id, result, report); err != nil {
			log.Printf("compare: persist result %s: %v", result.ID, err)
			return apiError(e, http.StatusInternalServerError, "could not persist comparison")
		}

		log.Printf("compare: rfp %s compared %d vendor(s) across %d item(s), best %q",
			rfp.Id, result.Summary.TotalVendors, result.Summary.TotalItems, result.Summary.BestOverallVendor)

		return e.JSON(http.StatusOK, map[string]any{
			"result":     result,
			"validation": report,
		})
	}
}

// saveComparison stores a comparison result as a JSON document keyed by its
// generated comparison id.
func saveComparison(app *pocketbase.PocketBase, rfpID string, result *services.ComparisonResult, report services.ValidationReport) error {
	col, err := app.FindCollectionByNameOrId("comparisons")
	if err != nil {
		return fmt.Errorf("comparisons collection not found: %w", err)
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	warningsJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}

	record := core.NewRecord(col)
	record.Set("rfp", rfpID)
	record.Set("comparison_id", result.ID)
	record.Set("result", string(resultJSON))
	record.Set("warnings", string(warningsJSON))
	return app.Save(record)
}

// findComparison looks a comparison up by record id or by its generated
// comparison id (the cmp-... form).
func findComparison(app *pocketbase.PocketBase, id string) (*core.Record, error) {
	if record, err := app.FindRecordById("comparisons", id); err == nil {
		return record, nil
	}
	records, err := app.FindRecordsByFilter(
		"comparisons",
		"comparison_id = {:cid}",
		"", 1, 0,
		map[string]any{"cid": id},
	)
	if err != nil || len(records) == 0 {
		return nil, fmt.Errorf("comparison %q not found", id)
	}
	return records[0], nil
}

// loadComparisonResult unmarshals a stored comparison record.
func loadComparisonResult(record *core.Record) (*services.ComparisonResult, error) {
	var result services.ComparisonResult
	if err := record.UnmarshalJSONField("result", &result); err != nil {
		return nil, fmt.Errorf("unmarshal stored result: %w", err)
	}
	return &result, nil
}

// HandleComparisonView returns a stored comparison result.
func HandleComparisonView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := findComparison(app, e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "comparison")
		}

		result, err := loadComparisonResult(record)
		if err != nil {
			log.Printf("compare: %v", err)
			return apiError(e, http.StatusInternalServerError, "stored comparison is unreadable")
		}

		var report services.ValidationReport
		record.UnmarshalJSONField("warnings", &report)

		return e.JSON(http.StatusOK, map[string]any{
			"rfp":        record.GetString("rfp"),
			"result":     result,
			"validation": report,
		})
	}
}
