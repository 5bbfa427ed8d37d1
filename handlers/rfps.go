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

var RFPStatusOptions = []string{"draft", "open", "closed", "awarded"}

type rfpRequest struct {
	Title   string `json:"title"`
	Status  string `json:"status"`
	DueDate string `json:"dueDate"`
}

type rfpItemRequest struct {
	SortOrder       int     `json:"sortOrder"`
	Code            string  `json:"code"`
	Description     string  `json:"description"`
	Qty             float64 `json:"qty"`
	UOM             string  `json:"uom"`
	BudgetUnitPrice float64 `json:"budgetUnitPrice"`
}

func rfpResponse(r *core.Record) map[string]any {
	return map[string]any{
		"id":              r.Id,
		"project":         r.GetString("project"),
		"title":           r.GetString("title"),
		"referenceNumber": r.GetString("reference_number"),
		"status":          r.GetString("status"),
		"dueDate":         r.GetString("due_date"),
		"created":         r.GetDateTime("created"),
	}
}

func rfpItemResponse(r *core.Record) map[string]any {
	return map[string]any{
		"id":              r.Id,
		"sortOrder":       r.GetInt("sort_order"),
		"code":            r.GetString("code"),
		"description":     r.GetString("description"),
		"qty":             r.GetFloat("qty"),
		"uom":             r.GetString("uom"),
		"budgetUnitPrice": r.GetFloat("budget_unit_price"),
	}
}

// loadRFPItems returns an RFP's items ordered by sort_order.
func loadRFPItems(app *pocketbase.PocketBase, rfpID string) ([]*core.Record, error) {
	return app.FindRecordsByFilter(
		"rfp_items",
		"rfp = {:rfpId}",
		"sort_order", 0, 0,
		map[string]any{"rfpId": rfpID},
	)
}

func HandleRFPCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return notFound(e, "project")
		}

		var req rfpRequest
		if err := e.BindBody(&req); err != nil {
			return apiError(e, http.StatusBadRequest, "invalid JSON body")
		}

		req.Title = strings.TrimSpace(req.Title)
		if req.Title == "" {
			return apiError(e, http.StatusBadRequest, "rfp title is required")
		}

		refNumber, err := services.GenerateRFPNumber(app, projectID, time.Now())
		if err != nil {
			log.Printf("rfps: could not generate reference number: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not create rfp")
		}

		status := req.Status
		validStatus := false
		for _, s := range RFPStatusOptions {
			if status == s {
				validStatus = true
				break
			}
		}
		if !validStatus {
			status = "draft"
		}

		col, err := app.FindCollectionByNameOrId("rfps")
		if err != nil {
			log.Printf("rfps: could not find rfps collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not create rfp")
		}

		record := core.NewRecord(col)
		record.Set("project", projectID)
		record.Set("title", req.Title)
		record.Set("reference_number", refNumber)
		record.Set("status", status)
		if req.DueDate != "" {
			record.Set("due_date", req.DueDate)
		}

		if err := app.Save(record); err != nil {
			log.Printf("rfps: could not save rfp: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not create rfp")
		}

		return e.JSON(http.StatusCreated, rfpResponse(record))
	}
}

func HandleRFPList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")

		records, err := app.FindRecordsByFilter(
			"rfps",
			"project = {:projectId}",
			"-created", 0, 0,
			map[string]any{"projectId": projectID},
		)
		if err != nil {
			log.Printf("rfps: list failed: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not list rfps")
		}

		out := make([]map[string]any, 0, len(records))
		for _, r := range records {
			out = append(out, rfpResponse(r))
		}
		return e.JSON(http.StatusOK, map[string]any{"rfps": out})
	}
}

// rfpBudgetTotal sums the budgeted totals of an RFP's items.
func rfpBudgetTotal(app *pocketbase.PocketBase, rfpID string) (float64, error) {
	items, err := loadRFPItems(app, rfpID)
	if err != nil {
		return 0, err
	}
	budgetItems := make([]services.BudgetItem, 0, len(items))
	for _, it := range items {
		budgetItems = append(budgetItems, services.BudgetItem{
			Qty:             it.GetFloat("qty"),
			BudgetUnitPrice: it.GetFloat("budget_unit_price"),
		})
	}
	return services.CalcRFPBudget(budgetItems), nil
}

// HandleRFPView returns the RFP with its items and budget totals.
func HandleRFPView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("rfps", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "rfp")
		}

		items, err := loadRFPItems(app, record.Id)
		if err != nil {
			log.Printf("rfps: could not load items for %s: %v", record.Id, err)
			return apiError(e, http.StatusInternalServerError, "could not load rfp items")
		}

		budgetItems := make([]services.BudgetItem, 0, len(items))
		itemsOut := make([]map[string]any, 0, len(items))
		for _, it := range items {
			itemsOut = append(itemsOut, rfpItemResponse(it))
			budgetItems = append(budgetItems, services.BudgetItem{
				Qty:             it.GetFloat("qty"),
				BudgetUnitPrice: it.GetFloat("budget_unit_price"),
			})
		}

		resp := rfpResponse(record)
		resp["items"] = itemsOut
		resp["budgetTotal"] = services.CalcRFPBudget(budgetItems)
		return e.JSON(http.StatusOK, resp)
	}
}

func HandleRFPItemAdd(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		rfp, err := app.FindRecordById("rfps", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "rfp")
		}

		var req rfpItemRequest
		if err := e.BindBody(&req); err != nil {
			return apiError(e, http.StatusBadRequest, "invalid JSON body")
		}

		req.Description = strings.TrimSpace(req.Description)
		if req.Description == "" {
			return apiError(e, http.StatusBadRequest, "item description is required")
		}
		if req.Qty <= 0 {
			return apiError(e, http.StatusBadRequest, "item qty must be positive")
		}

		if req.SortOrder == 0 {
			existing, _ := loadRFPItems(app, rfp.Id)
			req.SortOrder = len(existing) + 1
		}

		uom := services.NormalizeUOM(req.UOM)
		if uom == "" {
			uom = "nr"
		}

		col, err := app.FindCollectionByNameOrId("rfp_items")
		if err != nil {
			log.Printf("rfps: could not find rfp_items collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not add item")
		}

		record := core.NewRecord(col)
		record.Set("rfp", rfp.Id)
		record.Set("sort_order", req.SortOrder)
		record.Set("code", strings.TrimSpace(req.Code))
		record.Set("description", req.Description)
		record.Set("qty", req.Qty)
		record.Set("uom", uom)
		record.Set("budget_unit_price", req.BudgetUnitPrice)

		if err := app.Save(record); err != nil {
			log.Printf("rfps: could not save rfp item: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not add item")
		}

		return e.JSON(http.StatusCreated, rfpItemResponse(record))
	}
}

func HandleRFPItemDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("rfp_items", e.Request.PathValue("itemId"))
		if err != nil {
			return notFound(e, "rfp item")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("rfps: could not delete item %s: %v", record.Id, err)
			return apiError(e, http.StatusInternalServerError, "could not delete item")
		}

		return e.JSON(http.StatusOK, map[string]string{"status": "deleted"})
	}
}
