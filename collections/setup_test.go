package collections_test

import (
	"testing"

	"procuretrack/collections"
	"procuretrack/testhelpers"

	"github.com/pocketbase/pocketbase/core"
)

// expectedCollections is the full list of collections that Setup() must create.
var expectedCollections = []string{
	"projects",
	"vendors",
	"project_vendors",
	"rfps",
	"rfp_items",
	"offers",
	"offer_lines",
	"comparisons",
	"contracts",
}

func TestSetup_AllCollectionsExist(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q not found after Setup(): %v", name, err)
			continue
		}
		if col.Name != name {
			t.Errorf("expected collection name %q, got %q", name, col.Name)
		}
	}
}

func TestSetup_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t) // Setup() already called once via NewTestApp

	// Collect IDs from first run
	ids := make(map[string]string)
	for _, name := range expectedCollections {
		col, _ := app.FindCollectionByNameOrId(name)
		ids[name] = col.Id
	}

	// Run Setup() again
	collections.Setup(app)

	// IDs should not change
	for _, name := range expectedCollections {
		col, err := app.FindCollectionByNameOrId(name)
		if err != nil {
			t.Errorf("collection %q missing after second Setup(): %v", name, err)
			continue
		}
		if col.Id != ids[name] {
			t.Errorf("collection %q id changed after second Setup(): %s -> %s", name, ids[name], col.Id)
		}
	}
}

func TestSetup_ProjectsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("projects")

	fields := []string{"name", "client_name", "reference_number", "status", "default_vat_rate", "uom_preferences", "created", "updated"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("projects: missing field %q", f)
		}
	}

	// Verify status is a select field with expected values
	statusField := col.Fields.GetByName("status")
	if sf, ok := statusField.(*core.SelectField); ok {
		expected := map[string]bool{"active": true, "completed": true, "on_hold": true}
		for _, v := range sf.Values {
			if !expected[v] {
				t.Errorf("unexpected status value: %q", v)
			}
			delete(expected, v)
		}
		for v := range expected {
			t.Errorf("missing status value: %q", v)
		}
	} else {
		t.Errorf("status field is not a SelectField")
	}
}

func TestSetup_RFPsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("rfps")

	fields := []string{"project", "title", "reference_number", "status", "due_date", "created", "updated"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("rfps: missing field %q", f)
		}
	}

	projectField := col.Fields.GetByName("project")
	if rf, ok := projectField.(*core.RelationField); ok {
		if rf.MaxSelect != 1 {
			t.Errorf("rfps.project: expected MaxSelect=1, got %d", rf.MaxSelect)
		}
		if !rf.CascadeDelete {
			t.Error("rfps.project: expected CascadeDelete=true")
		}
	} else {
		t.Errorf("rfps.project is not a RelationField")
	}

	statusField := col.Fields.GetByName("status")
	if sf, ok := statusField.(*core.SelectField); ok {
		expected := []string{"draft", "open", "closed", "awarded"}
		if len(sf.Values) != len(expected) {
			t.Errorf("rfps.status: expected %d values, got %d", len(expected), len(sf.Values))
		}
	}
}

func TestSetup_RFPItemsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("rfp_items")

	fields := []string{"rfp", "sort_order", "code", "description", "qty", "uom", "budget_unit_price"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("rfp_items: missing field %q", f)
		}
	}

	rfpField := col.Fields.GetByName("rfp")
	if rf, ok := rfpField.(*core.RelationField); ok {
		if !rf.CascadeDelete {
			t.Error("rfp_items.rfp: expected CascadeDelete=true")
		}
	}
}

func TestSetup_OfferLinesFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("offer_lines")

	fields := []string{
		"offer", "sort_order", "code", "description", "qty", "uom",
		"unit_price", "vat_rate", "lead_time", "excluded", "exclusion_reason",
	}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("offer_lines: missing field %q", f)
		}
	}

	offerField := col.Fields.GetByName("offer")
	if rf, ok := offerField.(*core.RelationField); ok {
		if !rf.CascadeDelete {
			t.Error("offer_lines.offer: expected CascadeDelete=true")
		}
	}
}

func TestSetup_ComparisonsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("comparisons")

	fields := []string{"rfp", "comparison_id", "result", "warnings", "created"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("comparisons: missing field %q", f)
		}
	}
}

func TestSetup_ContractsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("contracts")

	fields := []string{
		"project", "rfp", "vendor", "comparison",
		"total_ex_vat", "total_inc_vat", "status", "awarded_date",
	}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("contracts: missing field %q", f)
		}
	}

	statusField := col.Fields.GetByName("status")
	if sf, ok := statusField.(*core.SelectField); ok {
		expected := []string{"draft", "signed", "cancelled"}
		if len(sf.Values) != len(expected) {
			t.Errorf("contracts.status: expected %d values, got %d", len(expected), len(sf.Values))
		}
	}
}

func TestSetup_ProjectVendorsFields(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	col, _ := app.FindCollectionByNameOrId("project_vendors")

	fields := []string{"project", "vendor", "created"}
	for _, f := range fields {
		if col.Fields.GetByName(f) == nil {
			t.Errorf("project_vendors: missing field %q", f)
		}
	}

	// Both relations should cascade delete
	for _, relName := range []string{"project", "vendor"} {
		field := col.Fields.GetByName(relName)
		if rf, ok := field.(*core.RelationField); ok {
			if !rf.CascadeDelete {
				t.Errorf("project_vendors.%s: expected CascadeDelete=true", relName)
			}
		}
	}
}

func TestSetup_CascadeDeleteHierarchy(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	// Full hierarchy: project -> rfp -> rfp_item, offer -> offer_line
	proj := testhelpers.CreateTestProject(t, app, "Cascade Test")
	vendor := testhelpers.CreateTestVendor(t, app, "Cascade Vendor")
	rfp := testhelpers.CreateTestRFP(t, app, proj.Id, "Cascade RFP")
	item := testhelpers.CreateTestRFPItem(t, app, rfp.Id, 1, "Scavo", 100, 30)
	offer := testhelpers.CreateTestOffer(t, app, rfp.Id, vendor.Id)
	line := testhelpers.CreateTestOfferLine(t, app, offer.Id, 1, "Scavo", 100, 28)

	if err := app.Delete(rfp); err != nil {
		t.Fatalf("failed to delete RFP: %v", err)
	}

	if _, err := app.FindRecordById("rfp_items", item.Id); err == nil {
		t.Error("rfp_item should have been cascade-deleted")
	}
	if _, err := app.FindRecordById("offers", offer.Id); err == nil {
		t.Error("offer should have been cascade-deleted")
	}
	if _, err := app.FindRecordById("offer_lines", line.Id); err == nil {
		t.Error("offer_line should have been cascade-deleted")
	}

	// Vendors survive RFP deletion
	if _, err := app.FindRecordById("vendors", vendor.Id); err != nil {
		t.Errorf("vendor should survive RFP deletion: %v", err)
	}
}

func TestSetup_RFPCascadeDeleteOnProject(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	proj := testhelpers.CreateTestProject(t, app, "Project Cascade")
	rfp := testhelpers.CreateTestRFP(t, app, proj.Id, "RFP under project")

	if err := app.Delete(proj); err != nil {
		t.Fatalf("failed to delete project: %v", err)
	}

	if _, err := app.FindRecordById("rfps", rfp.Id); err == nil {
		t.Error("rfp should have been cascade-deleted with project")
	}
}
