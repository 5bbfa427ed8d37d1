// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"procuretrack/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestProject creates a project record with the given name and returns it.
func CreateTestProject(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		t.Fatalf("failed to find projects collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("status", "active")
	record.Set("default_vat_rate", 22.0)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}

	return record
}

// CreateTestVendor creates a vendor record with the given name and returns it.
func CreateTestVendor(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("vendors")
	if err != nil {
		t.Fatalf("failed to find vendors collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)
	record.Set("vat_number", "IT01234567890")
	record.Set("city", "Bergamo")
	record.Set("province", "BG")
	record.Set("contact_name", "Test Contact")
	record.Set("phone", "+39 035 000000")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test vendor: %v", err)
	}

	return record
}

// LinkVendorToProject creates a project_vendors link record.
func LinkVendorToProject(t *testing.T, app *pocketbase.PocketBase, projectID, vendorID string) *core.Record {
	t.Helper()
	col, err := app.FindCollectionByNameOrId("project_vendors")
	if err != nil {
		t.Fatalf("failed to find project_vendors collection: %v", err)
	}
	record := core.NewRecord(col)
	record.Set("project", projectID)
	record.Set("vendor", vendorID)
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save project-vendor link: %v", err)
	}
	return record
}

// CreateTestRFP creates an RFP record linked to a project and returns it.
func CreateTestRFP(t *testing.T, app *pocketbase.PocketBase, projectID, title string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("rfps")
	if err != nil {
		t.Fatalf("failed to find rfps collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("project", projectID)
	record.Set("title", title)
	record.Set("status", "open")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test RFP: %v", err)
	}

	return record
}

// CreateTestRFPItem creates an RFP item record.
func CreateTestRFPItem(t *testing.T, app *pocketbase.PocketBase, rfpID string, sortOrder int, description string, qty, budgetUnitPrice float64) *core.Record {
	t.Helper()
	col, err := app.FindCollectionByNameOrId("rfp_items")
	if err != nil {
		t.Fatalf("failed to find rfp_items collection: %v", err)
	}
	record := core.NewRecord(col)
	record.Set("rfp", rfpID)
	record.Set("sort_order", sortOrder)
	record.Set("description", description)
	record.Set("qty", qty)
	record.Set("uom", "mq")
	record.Set("budget_unit_price", budgetUnitPrice)
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test RFP item: %v", err)
	}
	return record
}

// CreateTestOffer creates an offer record linked to an RFP and vendor.
func CreateTestOffer(t *testing.T, app *pocketbase.PocketBase, rfpID, vendorID string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("offers")
	if err != nil {
		t.Fatalf("failed to find offers collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("rfp", rfpID)
	record.Set("vendor", vendorID)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test offer: %v", err)
	}

	return record
}

// CreateTestOfferLine creates an offer line record.
func CreateTestOfferLine(t *testing.T, app *pocketbase.PocketBase, offerID string, sortOrder int, description string, qty, unitPrice float64) *core.Record {
	t.Helper()
	col, err := app.FindCollectionByNameOrId("offer_lines")
	if err != nil {
		t.Fatalf("failed to find offer_lines collection: %v", err)
	}
	record := core.NewRecord(col)
	record.Set("offer", offerID)
	record.Set("sort_order", sortOrder)
	record.Set("description", description)
	record.Set("qty", qty)
	record.Set("uom", "mq")
	record.Set("unit_price", unitPrice)
	record.Set("vat_rate", "22")
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test offer line: %v", err)
	}
	return record
}

// AssertBodyContains checks that body contains all specified fragments.
func AssertBodyContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected body to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
