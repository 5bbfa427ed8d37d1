package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"procuretrack/services"
)

var ProjectStatusOptions = []string{"active", "completed", "on_hold"}

type projectRequest struct {
	Name            string            `json:"name"`
	ClientName      string            `json:"clientName"`
	ReferenceNumber string            `json:"referenceNumber"`
	Status          string            `json:"status"`
	DefaultVATRate  float64           `json:"defaultVatRate"`
	UOMPreferences  map[string]string `json:"uomPreferences"`
}

func projectResponse(r *core.Record) map[string]any {
	prefs := map[string]string{}
	r.UnmarshalJSONField("uom_preferences", &prefs)
	return map[string]any{
		"id":              r.Id,
		"name":            r.GetString("name"),
		"clientName":      r.GetString("client_name"),
		"referenceNumber": r.GetString("reference_number"),
		"status":          r.GetString("status"),
		"defaultVatRate":  r.GetFloat("default_vat_rate"),
		"uomPreferences":  prefs,
		"created":         r.GetDateTime("created"),
		"updated":         r.GetDateTime("updated"),
	}
}

func HandleProjectList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		records, err := app.FindRecordsByFilter("projects", "id != ''", "-created", 0, 0, nil)
		if err != nil {
			log.Printf("projects: list failed: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not list projects")
		}

		out := make([]map[string]any, 0, len(records))
		for _, r := range records {
			out = append(out, projectResponse(r))
		}
		return e.JSON(http.StatusOK, map[string]any{"projects": out})
	}
}

func HandleProjectCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req projectRequest
		if err := e.BindBody(&req); err != nil {
			return apiError(e, http.StatusBadRequest, "invalid JSON body")
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			return apiError(e, http.StatusBadRequest, "project name is required")
		}

		existing, _ := app.FindRecordsByFilter(
			"projects",
			"name = {:name}",
			"", 1, 0,
			map[string]any{"name": req.Name},
		)
		if len(existing) > 0 {
			return apiError(e, http.StatusConflict, "a project with this name already exists")
		}

		status := req.Status
		validStatus := false
		for _, s := range ProjectStatusOptions {
			if status == s {
				validStatus = true
				break
			}
		}
		if !validStatus {
			status = "active"
		}

		vatRate := req.DefaultVATRate
		if vatRate <= 0 || vatRate > 100 {
			vatRate = services.DefaultVATRate
		}

		col, err := app.FindCollectionByNameOrId("projects")
		if err != nil {
			log.Printf("projects: could not find projects collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not create project")
		}

		record := core.NewRecord(col)
		record.Set("name", req.Name)
		record.Set("client_name", strings.TrimSpace(req.ClientName))
		record.Set("reference_number", strings.TrimSpace(req.ReferenceNumber))
		record.Set("status", status)
		record.Set("default_vat_rate", vatRate)
		if req.UOMPreferences != nil {
			record.Set("uom_preferences", req.UOMPreferences)
		} else {
			record.Set("uom_preferences", map[string]string{})
		}

		if err := app.Save(record); err != nil {
			log.Printf("projects: could not save project: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not create project")
		}

		return e.JSON(http.StatusCreated, projectResponse(record))
	}
}

func HandleProjectView(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("projects", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "project")
		}
		return e.JSON(http.StatusOK, projectResponse(record))
	}
}

func HandleProjectUpdate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("projects", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "project")
		}

		var req projectRequest
		if err := e.BindBody(&req); err != nil {
			return apiError(e, http.StatusBadRequest, "invalid JSON body")
		}

		if name := strings.TrimSpace(req.Name); name != "" {
			record.Set("name", name)
		}
		if req.ClientName != "" {
			record.Set("client_name", strings.TrimSpace(req.ClientName))
		}
		if req.ReferenceNumber != "" {
			record.Set("reference_number", strings.TrimSpace(req.ReferenceNumber))
		}
		for _, s := range ProjectStatusOptions {
			if req.Status == s {
				record.Set("status", s)
				break
			}
		}
		if req.DefaultVATRate > 0 && req.DefaultVATRate <= 100 {
			record.Set("default_vat_rate", req.DefaultVATRate)
		}
		if req.UOMPreferences != nil {
			record.Set("uom_preferences", req.UOMPreferences)
		}

		if err := app.Save(record); err != nil {
			log.Printf("projects: could not update project %s: %v", record.Id, err)
			return apiError(e, http.StatusInternalServerError, "could not update project")
		}

		return e.JSON(http.StatusOK, projectResponse(record))
	}
}

func HandleProjectDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("projects", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "project")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("projects: could not delete project %s: %v", record.Id, err)
			return apiError(e, http.StatusInternalServerError, "could not delete project")
		}

		return e.JSON(http.StatusOK, map[string]string{"status": "deleted"})
	}
}
