package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

type vendorRequest struct {
	Name        string `json:"name"`
	VATNumber   string `json:"vatNumber"`
	City        string `json:"city"`
	Province    string `json:"province"`
	Country     string `json:"country"`
	ContactName string `json:"contactName"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Website     string `json:"website"`
	Notes       string `json:"notes"`
}

func vendorResponse(r *core.Record) map[string]any {
	return map[string]any{
		"id":          r.Id,
		"name":        r.GetString("name"),
		"vatNumber":   r.GetString("vat_number"),
		"city":        r.GetString("city"),
		"province":    r.GetString("province"),
		"country":     r.GetString("country"),
		"contactName": r.GetString("contact_name"),
		"phone":       r.GetString("phone"),
		"email":       r.GetString("email"),
		"website":     r.GetString("website"),
		"notes":       r.GetString("notes"),
	}
}

// HandleVendorList lists all vendors, or only a project's linked vendors
// when the projectId path value is present.
func HandleVendorList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")

		var records []*core.Record
		var err error
		if projectID == "" {
			records, err = app.FindRecordsByFilter("vendors", "id != ''", "name", 0, 0, nil)
			if err != nil {
				log.Printf("vendors: list failed: %v", err)
				return apiError(e, http.StatusInternalServerError, "could not list vendors")
			}
		} else {
			links, lerr := app.FindRecordsByFilter(
				"project_vendors",
				"project = {:projectId}",
				"", 0, 0,
				map[string]any{"projectId": projectID},
			)
			if lerr != nil {
				log.Printf("vendors: link query failed: %v", lerr)
				return apiError(e, http.StatusInternalServerError, "could not list vendors")
			}
			for _, link := range links {
				vendor, verr := app.FindRecordById("vendors", link.GetString("vendor"))
				if verr != nil {
					continue
				}
				records = append(records, vendor)
			}
		}

		out := make([]map[string]any, 0, len(records))
		for _, r := range records {
			out = append(out, vendorResponse(r))
		}
		return e.JSON(http.StatusOK, map[string]any{"vendors": out})
	}
}

func HandleVendorCreate(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req vendorRequest
		if err := e.BindBody(&req); err != nil {
			return apiError(e, http.StatusBadRequest, "invalid JSON body")
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			return apiError(e, http.StatusBadRequest, "vendor name is required")
		}

		col, err := app.FindCollectionByNameOrId("vendors")
		if err != nil {
			log.Printf("vendors: could not find vendors collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not create vendor")
		}

		record := core.NewRecord(col)
		record.Set("name", req.Name)
		record.Set("vat_number", strings.TrimSpace(req.VATNumber))
		record.Set("city", strings.TrimSpace(req.City))
		record.Set("province", strings.TrimSpace(req.Province))
		record.Set("country", strings.TrimSpace(req.Country))
		record.Set("contact_name", strings.TrimSpace(req.ContactName))
		record.Set("phone", strings.TrimSpace(req.Phone))
		if req.Email != "" {
			record.Set("email", strings.TrimSpace(req.Email))
		}
		if req.Website != "" {
			record.Set("website", strings.TrimSpace(req.Website))
		}
		record.Set("notes", req.Notes)

		if err := app.Save(record); err != nil {
			log.Printf("vendors: could not save vendor: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not create vendor")
		}

		return e.JSON(http.StatusCreated, vendorResponse(record))
	}
}

func HandleVendorDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		record, err := app.FindRecordById("vendors", e.Request.PathValue("id"))
		if err != nil {
			return notFound(e, "vendor")
		}

		// Vendors with submitted offers stay; delete the offers first.
		offers, _ := app.FindRecordsByFilter(
			"offers",
			"vendor = {:vendorId}",
			"", 1, 0,
			map[string]any{"vendorId": record.Id},
		)
		if len(offers) > 0 {
			return apiError(e, http.StatusConflict, "vendor has submitted offers and cannot be deleted")
		}

		if err := app.Delete(record); err != nil {
			log.Printf("vendors: could not delete vendor %s: %v", record.Id, err)
			return apiError(e, http.StatusInternalServerError, "could not delete vendor")
		}

		return e.JSON(http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// HandleVendorLink associates an existing vendor with a project.
func HandleVendorLink(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		vendorID := e.Request.PathValue("id")

		if _, err := app.FindRecordById("projects", projectID); err != nil {
			return notFound(e, "project")
		}
		if _, err := app.FindRecordById("vendors", vendorID); err != nil {
			return notFound(e, "vendor")
		}

		existing, _ := app.FindRecordsByFilter(
			"project_vendors",
			"project = {:projectId} && vendor = {:vendorId}",
			"", 1, 0,
			map[string]any{"projectId": projectID, "vendorId": vendorID},
		)
		if len(existing) > 0 {
			return e.JSON(http.StatusOK, map[string]string{"status": "already linked"})
		}

		col, err := app.FindCollectionByNameOrId("project_vendors")
		if err != nil {
			log.Printf("vendors: could not find project_vendors collection: %v", err)
			return apiError(e, http.StatusInternalServerError, "could not link vendor")
		}

		record := core.NewRecord(col)
		record.Set("project", projectID)
		record.Set("vendor", vendorID)
		if err := app.Save(record); err != nil {
			log.Printf("vendors: could not link vendor %s to project %s: %v", vendorID, projectID, err)
			return apiError(e, http.StatusInternalServerError, "could not link vendor")
		}

		return e.JSON(http.StatusCreated, map[string]string{"status": "linked"})
	}
}

// HandleVendorUnlink removes a vendor's association with a project. The
// vendor record itself is untouched.
func HandleVendorUnlink(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("projectId")
		vendorID := e.Request.PathValue("id")

		links, err := app.FindRecordsByFilter(
			"project_vendors",
			"project = {:projectId} && vendor = {:vendorId}",
			"", 1, 0,
			map[string]any{"projectId": projectID, "vendorId": vendorID},
		)
		if err != nil || len(links) == 0 {
			return notFound(e, "vendor link")
		}

		if err := app.Delete(links[0]); err != nil {
			log.Printf("vendors: could not unlink vendor %s from project %s: %v", vendorID, projectID, err)
			return apiError(e, http.StatusInternalServerError, "could not unlink vendor")
		}

		return e.JSON(http.StatusOK, map[string]string{"status": "unlinked"})
	}
}
