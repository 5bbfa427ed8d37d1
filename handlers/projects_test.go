package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"procuretrack/testhelpers"
)

func jsonRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("response is not valid JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return out
}

func TestHandleProjectCreate_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandleProjectCreate(app)

	req := jsonRequest(http.MethodPost, "/projects",
		`{"name":"Residenza Prova","clientName":"Cliente S.r.l.","defaultVatRate":10}`)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["name"] != "Residenza Prova" {
		t.Errorf("name = %v, want Residenza Prova", body["name"])
	}
	if body["defaultVatRate"] != 10.0 {
		t.Errorf("defaultVatRate = %v, want 10", body["defaultVatRate"])
	}
	if body["status"] != "active" {
		t.Errorf("status = %v, want active (default)", body["status"])
	}
}

func TestHandleProjectCreate_MissingName(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandleProjectCreate(app)

	req := jsonRequest(http.MethodPost, "/projects", `{"clientName":"X"}`)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleProjectCreate_DuplicateName(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestProject(t, app, "Duplicato")
	handler := HandleProjectCreate(app)

	req := jsonRequest(http.MethodPost, "/projects", `{"name":"Duplicato"}`)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestHandleProjectCreate_InvalidVATRateFallsBack(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandleProjectCreate(app)

	req := jsonRequest(http.MethodPost, "/projects", `{"name":"VAT Check","defaultVatRate":150}`)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := decodeBody(t, rec)
	if body["defaultVatRate"] != 22.0 {
		t.Errorf("defaultVatRate = %v, want 22 (fallback)", body["defaultVatRate"])
	}
}

func TestHandleProjectList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestProject(t, app, "Progetto A")
	testhelpers.CreateTestProject(t, app, "Progetto B")
	handler := HandleProjectList(app)

	req := jsonRequest(http.MethodGet, "/projects", "")
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	projects, ok := body["projects"].([]any)
	if !ok || len(projects) != 2 {
		t.Errorf("expected 2 projects, got %v", body["projects"])
	}
}

func TestHandleProjectView_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	handler := HandleProjectView(app)

	req := jsonRequest(http.MethodGet, "/projects/nonexistent", "")
	req.SetPathValue("id", "nonexistent")
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleProjectUpdate_ChangesVATRate(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Da Aggiornare")
	handler := HandleProjectUpdate(app)

	req := jsonRequest(http.MethodPatch, "/projects/"+proj.Id, `{"defaultVatRate":4,"status":"on_hold"}`)
	req.SetPathValue("id", proj.Id)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := decodeBody(t, rec)
	if body["defaultVatRate"] != 4.0 {
		t.Errorf("defaultVatRate = %v, want 4", body["defaultVatRate"])
	}
	if body["status"] != "on_hold" {
		t.Errorf("status = %v, want on_hold", body["status"])
	}
}

func TestHandleProjectDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Da Cancellare")
	handler := HandleProjectDelete(app)

	req := jsonRequest(http.MethodDelete, "/projects/"+proj.Id, "")
	req.SetPathValue("id", proj.Id)
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if _, err := app.FindRecordById("projects", proj.Id); err == nil {
		t.Error("project should be deleted")
	}
}
