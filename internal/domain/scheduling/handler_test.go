package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/docbook/docbook/internal/platform/auth"
)

func newTestHandler(autoConfirm bool) (*Handler, *testEnv, *echo.Echo) {
	env := newTestEnv(autoConfirm)
	return NewHandler(env.svc), env, echo.New()
}

func authedRequest(method, target, body, userID string, roles ...string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), auth.UserIDKey, userID)
	ctx = context.WithValue(ctx, auth.UserRolesKey, roles)
	return req.WithContext(ctx)
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		t.Fatal("expected an HTTP error")
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return he.Code
}

func TestHandler_BookAppointment(t *testing.T) {
	h, env, e := newTestHandler(false)
	body := `{"patient_id":"` + uuid.New().String() + `","doctor_id":"` + env.doctorID.String() +
		`","date":"2026-09-07","start":"09:00","end":"09:30"}`
	req := authedRequest(http.MethodPost, "/", body, "staff-1", "staff")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.BookAppointment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var a Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if a.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", a.Status)
	}
}

func TestHandler_BookAppointment_PatientBooksSelf(t *testing.T) {
	h, env, e := newTestHandler(false)
	patientID := uuid.New()
	body := `{"doctor_id":"` + env.doctorID.String() + `","date":"2026-09-07","start":"09:00","end":"09:30"}`
	req := authedRequest(http.MethodPost, "/", body, patientID.String(), "patient")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.BookAppointment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var a Appointment
	json.Unmarshal(rec.Body.Bytes(), &a)
	if a.PatientID != patientID {
		t.Error("expected booking to default to the caller's patient id")
	}
}

func TestHandler_BookAppointment_InvalidRange(t *testing.T) {
	h, env, e := newTestHandler(false)
	body := `{"patient_id":"` + uuid.New().String() + `","doctor_id":"` + env.doctorID.String() +
		`","date":"2026-09-07","start":"09:30","end":"09:00"}`
	req := authedRequest(http.MethodPost, "/", body, "staff-1", "staff")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if code := httpStatus(t, h.BookAppointment(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_BookAppointment_Conflict(t *testing.T) {
	h, env, e := newTestHandler(false)
	env.book(t, 9*60, 9*60+30)

	body := `{"patient_id":"` + uuid.New().String() + `","doctor_id":"` + env.doctorID.String() +
		`","date":"2026-09-07","start":"09:00","end":"09:30"}`
	req := authedRequest(http.MethodPost, "/", body, "staff-1", "staff")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if code := httpStatus(t, h.BookAppointment(c)); code != http.StatusConflict {
		t.Errorf("expected 409, got %d", code)
	}
}

func TestHandler_BookAppointment_BadClock(t *testing.T) {
	h, env, e := newTestHandler(false)
	body := `{"patient_id":"` + uuid.New().String() + `","doctor_id":"` + env.doctorID.String() +
		`","date":"2026-09-07","start":"9am","end":"09:30"}`
	req := authedRequest(http.MethodPost, "/", body, "staff-1", "staff")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if code := httpStatus(t, h.BookAppointment(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_BookAppointment_StorageDown(t *testing.T) {
	source := &failingWindowSource{err: errors.New("dial tcp 10.0.0.5:5432: connection refused")}
	h := NewHandler(NewService(newMockApptRepo(), source, nil, time.UTC, false))
	e := echo.New()

	body := `{"patient_id":"` + uuid.New().String() + `","doctor_id":"` + uuid.New().String() +
		`","date":"2026-09-07","start":"09:00","end":"09:30"}`
	req := authedRequest(http.MethodPost, "/", body, "staff-1", "staff")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if code := httpStatus(t, h.BookAppointment(c)); code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 for a storage failure, got %d", code)
	}
}

func TestHandler_ListSlots(t *testing.T) {
	h, env, e := newTestHandler(false)
	req := authedRequest(http.MethodGet, "/?from=2026-09-07&to=2026-09-07", "", "patient-1", "patient")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(env.doctorID.String())

	if err := h.ListSlots(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	var slots []TimeSlot
	if err := json.Unmarshal(rec.Body.Bytes(), &slots); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(slots) != 2 {
		t.Errorf("expected 2 slots, got %d", len(slots))
	}
}

func TestHandler_ListSlots_BadDate(t *testing.T) {
	h, env, e := newTestHandler(false)
	req := authedRequest(http.MethodGet, "/?from=next-monday&to=2026-09-07", "", "patient-1", "patient")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(env.doctorID.String())

	if code := httpStatus(t, h.ListSlots(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func transitionCtx(e *echo.Echo, id uuid.UUID, body, userID string, roles ...string) (echo.Context, *httptest.ResponseRecorder) {
	req := authedRequest(http.MethodPost, "/", body, userID, roles...)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id.String())
	return c, rec
}

func TestHandler_TransitionAppointment(t *testing.T) {
	h, env, e := newTestHandler(false)
	a := env.seed(StatusPending)
	c, rec := transitionCtx(e, a.ID, `{"target_status":"CONFIRMED","expected_status":"PENDING"}`, "staff-1", "staff")

	if err := h.TransitionAppointment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_TransitionAppointment_IllegalEdge(t *testing.T) {
	h, env, e := newTestHandler(false)
	a := env.seed(StatusCompleted)
	c, _ := transitionCtx(e, a.ID, `{"target_status":"CONFIRMED","expected_status":"COMPLETED"}`, "staff-1", "staff")

	if code := httpStatus(t, h.TransitionAppointment(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
}

func TestHandler_TransitionAppointment_Mismatch(t *testing.T) {
	h, env, e := newTestHandler(false)
	a := env.seed(StatusPending)
	c, _ := transitionCtx(e, a.ID, `{"target_status":"CANCELLED","expected_status":"CONFIRMED"}`, "staff-1", "staff")

	if code := httpStatus(t, h.TransitionAppointment(c)); code != http.StatusConflict {
		t.Errorf("expected 409, got %d", code)
	}
}

func TestHandler_TransitionAppointment_NotFound(t *testing.T) {
	h, _, e := newTestHandler(false)
	c, _ := transitionCtx(e, uuid.New(), `{"target_status":"CONFIRMED","expected_status":"PENDING"}`, "staff-1", "staff")

	if code := httpStatus(t, h.TransitionAppointment(c)); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestHandler_TransitionAppointment_PatientMayOnlyCancel(t *testing.T) {
	h, env, e := newTestHandler(false)
	a := env.seed(StatusPending)
	c, _ := transitionCtx(e, a.ID, `{"target_status":"CONFIRMED","expected_status":"PENDING"}`, "patient-1", "patient")

	if code := httpStatus(t, h.TransitionAppointment(c)); code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", code)
	}
}

func TestHandler_TransitionAppointment_PatientCancels(t *testing.T) {
	h, env, e := newTestHandler(false)
	a := env.seed(StatusPending)
	c, rec := transitionCtx(e, a.ID, `{"target_status":"CANCELLED","expected_status":"PENDING"}`, "patient-1", "patient")

	if err := h.TransitionAppointment(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_GetAppointment_NotFound(t *testing.T) {
	h, _, e := newTestHandler(false)
	req := authedRequest(http.MethodGet, "/", "", "staff-1", "staff")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	if code := httpStatus(t, h.GetAppointment(c)); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestHandler_ListAppointments_PatientScopedToSelf(t *testing.T) {
	h, env, e := newTestHandler(false)
	patientID := uuid.New()
	a := env.seed(StatusPending)
	a.PatientID = patientID
	env.seed(StatusPending)

	req := authedRequest(http.MethodGet, "/", "", patientID.String(), "patient")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListAppointments(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Data  []*Appointment `json:"data"`
		Total int            `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("expected patient to see only their own appointment, got %d", resp.Total)
	}
}

func TestHandler_ListAppointments_BadDateFilter(t *testing.T) {
	h, _, e := newTestHandler(false)
	req := authedRequest(http.MethodGet, "/?from=notadate", "", "staff-1", "staff")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if code := httpStatus(t, h.ListAppointments(c)); code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed date filter, got %d", code)
	}
}
