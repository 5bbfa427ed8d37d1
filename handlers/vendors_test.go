package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"procuretrack/testhelpers"
)

func TestHandleVendorCreate_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandleVendorCreate(app)

	req := jsonRequest(http.MethodPost, "/vendors",
		`{"name":"Delta Scavi S.r.l.","vatNumber":"IT11122233344","city":"Torino","province":"TO"}`)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["name"] != "Delta Scavi S.r.l." {
		t.Errorf("name = %v", body["name"])
	}
	if body["vatNumber"] != "IT11122233344" {
		t.Errorf("vatNumber = %v", body["vatNumber"])
	}
}

func TestHandleVendorCreate_MissingName(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandleVendorCreate(app)

	req := jsonRequest(http.MethodPost, "/vendors", `{"city":"Roma"}`)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleVendorList_Global(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestVendor(t, app, "Vendor A")
	testhelpers.CreateTestVendor(t, app, "Vendor B")
	handler := HandleVendorList(app)

	req := jsonRequest(http.MethodGet, "/vendors", "")
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := decodeBody(t, rec)
	vendors, ok := body["vendors"].([]any)
	if !ok || len(vendors) != 2 {
		t.Errorf("expected 2 vendors, got %v", body["vendors"])
	}
}

func TestHandleVendorList_ProjectScoped(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Scoped")
	linked := testhelpers.CreateTestVendor(t, app, "Linked Vendor")
	testhelpers.CreateTestVendor(t, app, "Unlinked Vendor")
	testhelpers.LinkVendorToProject(t, app, proj.Id, linked.Id)
	handler := HandleVendorList(app)

	req := jsonRequest(http.MethodGet, "/projects/"+proj.Id+"/vendors", "")
	req.SetPathValue("projectId", proj.Id)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := decodeBody(t, rec)
	vendors, ok := body["vendors"].([]any)
	if !ok || len(vendors) != 1 {
		t.Fatalf("expected 1 linked vendor, got %v", body["vendors"])
	}
	first := vendors[0].(map[string]any)
	if first["name"] != "Linked Vendor" {
		t.Errorf("vendor name = %v, want Linked Vendor", first["name"])
	}
}

func TestHandleVendorLink_AndUnlink(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Link Project")
	vendor := testhelpers.CreateTestVendor(t, app, "Linkable")

	link := HandleVendorLink(app)
	req := jsonRequest(http.MethodPost, "/projects/"+proj.Id+"/vendors/"+vendor.Id+"/link", "")
	req.SetPathValue("projectId", proj.Id)
	req.SetPathValue("id", vendor.Id)
	rec := httptest.NewRecorder()
	if err := link(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("link error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	// Linking twice is a no-op
	req = jsonRequest(http.MethodPost, "/projects/"+proj.Id+"/vendors/"+vendor.Id+"/link", "")
	req.SetPathValue("projectId", proj.Id)
	req.SetPathValue("id", vendor.Id)
	rec = httptest.NewRecorder()
	if err := link(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("second link error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for repeat link, got %d", rec.Code)
	}

	unlink := HandleVendorUnlink(app)
	req = jsonRequest(http.MethodDelete, "/projects/"+proj.Id+"/vendors/"+vendor.Id+"/link", "")
	req.SetPathValue("projectId", proj.Id)
	req.SetPathValue("id", vendor.Id)
	rec = httptest.NewRecorder()
	if err := unlink(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("unlink error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	links, _ := app.FindRecordsByFilter("project_vendors", "project = {:p}", "", 0, 0, map[string]any{"p": proj.Id})
	if len(links) != 0 {
		t.Errorf("expected no links after unlink, got %d", len(links))
	}
}

func TestHandleVendorDelete_BlockedByOffers(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Offer Project")
	vendor := testhelpers.CreateTestVendor(t, app, "Has Offers")
	rfp := testhelpers.CreateTestRFP(t, app, proj.Id, "RFP")
	testhelpers.CreateTestOffer(t, app, rfp.Id, vendor.Id)

	handler := HandleVendorDelete(app)
	req := jsonRequest(http.MethodDelete, "/vendors/"+vendor.Id, "")
	req.SetPathValue("id", vendor.Id)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
	if _, err := app.FindRecordById("vendors", vendor.Id); err != nil {
		t.Error("vendor should not have been deleted")
	}
}

func TestHandleVendorDelete_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	vendor := testhelpers.CreateTestVendor(t, app, "Deletable")

	handler := HandleVendorDelete(app)
	req := jsonRequest(http.MethodDelete, "/vendors/"+vendor.Id, "")
	req.SetPathValue("id", vendor.Id)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if _, err := app.FindRecordById("vendors", vendor.Id); err == nil {
		t.Error("vendor should be deleted")
	}
}
