package ehr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dental/clinic/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo) {
	return NewHandler(newTestService()), echo.New()
}

func assertHTTPStatus(t *testing.T, err error, want int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if he.Code != want {
		t.Errorf("expected %d, got %d (%v)", want, he.Code, he.Message)
	}
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req.WithContext(auth.ContextWithActor(req.Context(), "dr.smith"))
}

func openTestSession(t *testing.T, h *Handler) string {
	t.Helper()
	view, err := h.svc.OpenSession(context.Background(), 0, 1, 2, "dr.smith")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return view.ID
}

func TestHandler_OpenSession(t *testing.T) {
	h, e := newTestHandler()
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{"patientId":1,"appointmentId":2}`), rec)

	if err := h.OpenSession(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var view SessionView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.ID == "" || view.Record.PatientID != 1 || view.Record.Notation != NotationFDI {
		t.Errorf("unexpected view %s", rec.Body.String())
	}
}

func TestHandler_ToggleTooth(t *testing.T) {
	h, e := newTestHandler()
	sid := openTestSession(t, h)

	for i, want := range []int{1, 0} {
		rec := httptest.NewRecorder()
		c := e.NewContext(jsonRequest(http.MethodPost, "/", ""), rec)
		c.SetParamNames("sid", "number")
		c.SetParamValues(sid, "14")
		if err := h.ToggleTooth(c); err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		var view SessionView
		json.Unmarshal(rec.Body.Bytes(), &view)
		if len(view.Record.Teeth) != want {
			t.Errorf("toggle %d: expected %d teeth, got %d", i, want, len(view.Record.Teeth))
		}
	}
}

func TestHandler_AddEntry(t *testing.T) {
	h, e := newTestHandler()
	sid := openTestSession(t, h)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{"toothNumber":36}`), rec)
	c.SetParamNames("sid", "section")
	c.SetParamValues(sid, SectionTeeth)
	if err := h.AddEntry(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var tooth ToothRecord
	json.Unmarshal(rec.Body.Bytes(), &tooth)
	if tooth.ToothNumber != 36 || tooth.ID == "" {
		t.Errorf("unexpected tooth %s", rec.Body.String())
	}

	c = e.NewContext(jsonRequest(http.MethodPost, "/", ""), httptest.NewRecorder())
	c.SetParamNames("sid", "section")
	c.SetParamValues(sid, "implants")
	assertHTTPStatus(t, h.AddEntry(c), http.StatusBadRequest)
}

func TestHandler_UpdateAndRemoveEntry(t *testing.T) {
	h, e := newTestHandler()
	sid := openTestSession(t, h)
	entry, _ := h.svc.Edit(sid, func(ed *Editor) (interface{}, error) { return ed.AddMedication(), nil })
	id := entry.(Medication).ID

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPatch, "/", `{"field":"name","value":"Amoxicillin"}`), rec)
	c.SetParamNames("sid", "section", "entryId")
	c.SetParamValues(sid, SectionMedications, id)
	if err := h.UpdateEntry(c); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Amoxicillin") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(jsonRequest(http.MethodDelete, "/", ""), rec)
	c.SetParamNames("sid", "section", "entryId")
	c.SetParamValues(sid, SectionMedications, id)
	if err := h.RemoveEntry(c); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	c = e.NewContext(jsonRequest(http.MethodDelete, "/", ""), httptest.NewRecorder())
	c.SetParamNames("sid", "section", "entryId")
	c.SetParamValues(sid, SectionMedications, id)
	assertHTTPStatus(t, h.RemoveEntry(c), http.StatusNotFound)
}

func TestHandler_SaveSession(t *testing.T) {
	h, e := newTestHandler()
	sid := openTestSession(t, h)

	c := e.NewContext(jsonRequest(http.MethodPost, "/?draft=false", ""), httptest.NewRecorder())
	c.SetParamNames("sid")
	c.SetParamValues(sid)
	err := h.SaveSession(c)
	assertHTTPStatus(t, err, http.StatusBadRequest)
	if he := err.(*echo.HTTPError); he.Message != "Primary diagnosis is required" {
		t.Errorf("unexpected message %v", he.Message)
	}

	rec := httptest.NewRecorder()
	c = e.NewContext(jsonRequest(http.MethodPost, "/?draft=true", ""), rec)
	c.SetParamNames("sid")
	c.SetParamValues(sid)
	if err := h.SaveSession(c); err != nil {
		t.Fatalf("save draft: %v", err)
	}
	var saved EHR
	json.Unmarshal(rec.Body.Bytes(), &saved)
	if saved.ID == 0 || saved.Status != StatusDraft || saved.UpdatedBy != "dr.smith" {
		t.Errorf("unexpected saved record %s", rec.Body.String())
	}
}

func TestHandler_SetField(t *testing.T) {
	h, e := newTestHandler()
	sid := openTestSession(t, h)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPatch, "/", `{"field":"allergies","value":"Latex"}`), rec)
	c.SetParamNames("sid")
	c.SetParamValues(sid)
	if err := h.SetField(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"allergies":"Latex"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_UnknownSession(t *testing.T) {
	h, e := newTestHandler()
	c := e.NewContext(jsonRequest(http.MethodGet, "/", ""), httptest.NewRecorder())
	c.SetParamNames("sid")
	c.SetParamValues("missing")
	assertHTTPStatus(t, h.GetSession(c), http.StatusNotFound)
}

func TestHandler_CreateAndUpdateEHR(t *testing.T) {
	h, e := newTestHandler()

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{"patientId":1,"appointmentId":2,"diagnosis":"Caries"}`), rec)
	if err := h.CreateEHR(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	var created EHR
	json.Unmarshal(rec.Body.Bytes(), &created)
	if created.ID == 0 || created.Status != StatusComplete {
		t.Fatalf("unexpected record %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	c = e.NewContext(jsonRequest(http.MethodPut, "/", `{"patientId":1,"appointmentId":2,"diagnosis":"Caries on 16"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.UpdateEHR(c); err != nil {
		t.Fatalf("update: %v", err)
	}
	var resp struct {
		Record  EHR         `json:"record"`
		Changes []ChangeLog `json:"changes"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Changes) != 1 || resp.Changes[0].ChangedBy != "dr.smith" {
		t.Errorf("unexpected update response %s", rec.Body.String())
	}

	c = e.NewContext(jsonRequest(http.MethodGet, "/", ""), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")
	assertHTTPStatus(t, h.GetEHR(c), http.StatusBadRequest)
}

func TestHandler_PatientTimelineRequiresPatient(t *testing.T) {
	h, e := newTestHandler()
	c := e.NewContext(jsonRequest(http.MethodGet, "/", ""), httptest.NewRecorder())
	assertHTTPStatus(t, h.PatientTimeline(c), http.StatusBadRequest)
}
