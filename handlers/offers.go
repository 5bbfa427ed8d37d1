package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type offerLineRequest struct {
	SortOrder       int     `json:"sortOrder"`
	Code            string  `json:"code"`
	Description     string  `json:"description"`
	Qty             float64 `json:"qty"`
	UOM             string  `json:"uom"`
	UnitPrice       float64 `json:"unitPrice"`
	VATRate         string  `json:"vatRate"`
	LeadTime        string  `json:"leadTime"`
	Excluded        bool    `json:"excluded"`
	ExclusionReason string  `json:"exclusionReason"`
}

type offerRequest struct {
	VendorID     string             `json:"vendorId"`
	ReceivedDate string             `json:"receivedDate"`
	VATInclusive bool               `json:"vatInclusive"`
	VATNotes     string             `json:"vatNotes"`
	Notes        string             `json:"notes"`
	Lines        []offerLineRequest `json:"lines"`
}

func offerLineResponse(r *core.Record) map[string]any {
	return map[string]any{
		"id":              r.Id,
		"sortOrder":       r.GetInt("sort_order"),
		"code":            r.GetString("code"),
		"description":     r.GetString("description"),
		"qty":             r.GetFloat("qty"),
		"uom":             r.GetString("uom"),
		"unitPrice":       r.GetFloat("unit_price"),
		"vatRate":         r.GetString("vat_rate"),
		"leadTime":        r.GetString("lead_time"),
		"excluded":        r.GetBool("excluded"),
		"exclusionReason": r.GetString("exclusion_reason"),
	}
}

func offerResponse(app *pocketbase.PocketBase, r *core.Record) map[string]any {
	vendorName := ""
	if vendor, err := app.FindRecordById("vendors", r.GetString("vendor")); err == nil {
		vendorName = vendor.GetString("name")
	}
	return map[string]any{
		"id":           r.Id,
		"rfp":          r.GetString("rfp"),
		"vendor":       r.GetString("vendor"),
		"vendorName":   vendorName,
		"receivedDate": r.GetString("received_date"),
		"vatInclusive": r.GetBool("vat_inclusive"),
		"vatNotes":     r.GetString("vat_notes"),
		"notes":        r.GetString("notes"),
	}
}

// loadOfferLines returns an offer's lines ordered by sort_order.
func loadOfferLines(app *pocketbase.PocketBase, offerID string) ([]*core.Record, error) {
	return app.FindRecordsByFilter(
		"offer_lines",
		"offer = {:offerId}",
		"sort_order", 0, 0,
		map[string]any{"offerId": offerID},
	)
}

// HandleOfferSubmit records a vendor's complete offer for an RFP: one offer
// record plus a line record per priced item. Lines arrive already parsed;
// normalization happens at comparison time.
func HandleOfferSubmit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rfp, err := app.FindRecordById("rfps", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "rfp")
		}

		var req offerRequest
		if err := e.BindBody(&req); err != nil {
			return apiError(e, http.StatusBadRequest, "invalid JSON body")
		}

		vendor, err := app.FindRecordById("vendors", req.VendorID)
		if err != nil {
			return notFound(e, "vendor")
		}
		if len(req.Lines) == 0 {
			return apiError(e, http.StatusBadRequest, "offer has no lines")
		}
		for i, line := range req.Lines {
			if strings.TrimSpace(line.Description) == "" {
				return apiError(e, http.StatusBadRequest, fmt.Sprintf("offer line %d is missing a description", i+1))
			}
		}

		// One offer per vendor per RFP; resubmission replaces the old one.
		previous, _ := app.FindRecordsByFilter(
			"offers",
			"rfp = {:rfpId} && vendor = {:vendorId}",
			"", 1, 0,
			map[string]any{"rfpId": rfp.Id, "vendorId": vendor.Id},
		)
		for _, old := range previous {
			if err := app.Delete(old); err != nil {
				log.Printf("offers: could not replace previous offer %s: %v", old.Id, err)
				return apiError(e, http.StatusInternalServerError, "could not submit offer")
			}
		}

		offersCol, err := app.FindCollectionByNameOrId("offers")
		if err != nil {
			log.Printf("offers: could not find offers collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not submit offer")
		}
		linesCol, err := app.FindCollectionByNameOrId("offer_lines")
		if err != nil {
			log.Printf("offers: could not find offer_lines collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not submit offer")
		}

		record := core.NewRecord(offersCol)
		record.Set("rfp", rfp.Id)
		record.Set("vendor", vendor.Id)
		if req.ReceivedDate != "" {
			record.Set("received_date", req.ReceivedDate)
		}
		record.Set("vat_inclusive", req.VATInclusive)
		record.Set("vat_notes", req.VATNotes)
		record.Set("notes", req.Notes)
		if err := app.Save(record); err != nil {
			log.Printf("offers: could not save offer: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not submit offer")
		}

		linesOut := make([]map[string]any, 0, len(req.Lines))
		for i, line := range req.Lines {
			sortOrder := line.SortOrder
			if sortOrder == 0 {
				sortOrder = i + 1
			}

			lr := core.NewRecord(linesCol)
			lr.Set("offer", record.Id)
			lr.Set("sort_order", sortOrder)
			lr.Set("code", strings.TrimSpace(line.Code))
			lr.Set("description", strings.TrimSpace(line.Description))
			lr.Set("qty", line.Qty)
			lr.Set("uom", line.UOM)
			lr.Set("unit_price", line.UnitPrice)
			lr.Set("vat_rate", line.VATRate)
			lr.Set("lead_time", line.LeadTime)
			lr.Set("excluded", line.Excluded)
			lr.Set("exclusion_reason", line.ExclusionReason)
			if err := app.Save(lr); err != nil {
				log.Printf("offers: could not save offer line %q: %v", line.Description, err)
				return apiError(e, http.StatusInternalServerError, "could not submit offer")
			}
			linesOut = append(linesOut, offerLineResponse(lr))
		}

		resp := offerResponse(app, record)
		resp["lines"] = linesOut
		return e.JSON(http.StatusCreated, resp)
	}
}

// HandleOfferList lists an RFP's offers with their lines.
func HandleOfferList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rfp, err := app.FindRecordById("rfps", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "rfp")
		}

		offers, err := app.FindRecordsByFilter(
			"offers",
			"rfp = {:rfpId}",
			"created", 0, 0,
			map[string]any{"rfpId": rfp.Id},
		)
		if err != nil {
			log.Printf("offers: list failed: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not list offers")
		}

		out := make([]map[string]any, 0, len(offers))
		for _, offer := range offers {
			resp := offerResponse(app, offer)
			lines, lerr := loadOfferLines(app, offer.Id)
			if lerr != nil {
				log.Printf("offers: could not load lines for %s: %v", offer.Id, lerr)
				return apiError(e, http.StatusInternalServerError, "could not list offers")
			}
			linesOut := make([]map[string]any, 0, len(lines))
			for _, line := range lines {
				linesOut = append(linesOut, offerLineResponse(line))
			}
			resp["lines"] = linesOut
			out = append(out, resp)
		}
		return e.JSON(http.StatusOK, map[string]any{"offers": out})
	}
}

func HandleOfferDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("offers", e.Request.PathValue("offerId"))
		if err != nil {
			return notFound(e, "offer")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("offers: could not delete offer %s: %v", record.Id, err)
			return apiError(e, http.StatusInternalServerError, "could not delete offer")
		}

		return e.JSON(http.StatusOK, map[string]string{"status": "deleted"})
	}
}
