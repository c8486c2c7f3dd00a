package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/faceledger/internal/attendance"
)

func TestRegister_NewSubject(t *testing.T) {
	handler := NewRegisterHandler(newTestService(t, passthroughLocator{}))

	req := postMultipart(t, "/api/v1/register", map[string]string{"name": "alice"}, jpegBytes(t, verticalFace(0)))
	recorder := httptest.NewRecorder()
	handler.Register(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp RegisterResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Status != attendance.RegisterRegistered {
		t.Errorf("expected status %q, got %q", attendance.RegisterRegistered, resp.Status)
	}
	if resp.SubjectID != 1 {
		t.Errorf("expected subject ID 1, got %d", resp.SubjectID)
	}
	if resp.Name != "alice" {
		t.Errorf("expected name 'alice', got '%s'", resp.Name)
	}
	if !resp.Created {
		t.Error("expected a newly created subject")
	}
	if resp.Samples != 1 {
		t.Errorf("expected 1 sample, got %d", resp.Samples)
	}
	if resp.Message != "Face registered for alice" {
		t.Errorf("unexpected message: '%s'", resp.Message)
	}
}

func TestRegister_ExistingSubject(t *testing.T) {
	svc := newTestService(t, passthroughLocator{})
	registerSample(t, svc, "alice", verticalFace(0))
	handler := NewRegisterHandler(svc)

	req := postMultipart(t, "/api/v1/register", map[string]string{"name": "alice"}, jpegBytes(t, verticalFace(1)))
	recorder := httptest.NewRecorder()
	handler.Register(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp RegisterResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Created {
		t.Error("expected an existing subject")
	}
	if resp.Samples != 2 {
		t.Errorf("expected 2 samples, got %d", resp.Samples)
	}
}

func TestRegister_MissingName(t *testing.T) {
	handler := NewRegisterHandler(newTestService(t, passthroughLocator{}))

	req := postMultipart(t, "/api/v1/register", nil, jpegBytes(t, verticalFace(0)))
	recorder := httptest.NewRecorder()
	handler.Register(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "name is required")
}

func TestRegister_MissingImage(t *testing.T) {
	handler := NewRegisterHandler(newTestService(t, passthroughLocator{}))

	req := postMultipart(t, "/api/v1/register", map[string]string{"name": "alice"}, nil)
	recorder := httptest.NewRecorder()
	handler.Register(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "image file is required")
}

func TestRegister_InvalidImage(t *testing.T) {
	handler := NewRegisterHandler(newTestService(t, passthroughLocator{}))

	req := postMultipart(t, "/api/v1/register", map[string]string{"name": "alice"}, []byte("not an image"))
	recorder := httptest.NewRecorder()
	handler.Register(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "invalid image")
}

func TestRegister_NoFaceIsAnOutcome(t *testing.T) {
	handler := NewRegisterHandler(newTestService(t, noFaceLocator{}))

	req := postMultipart(t, "/api/v1/register", map[string]string{"name": "alice"}, jpegBytes(t, verticalFace(0)))
	recorder := httptest.NewRecorder()
	handler.Register(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp RegisterResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Status != attendance.RegisterNoFace {
		t.Errorf("expected status %q, got %q", attendance.RegisterNoFace, resp.Status)
	}
	if resp.Message != "No face found in the image" {
		t.Errorf("unexpected message: '%s'", resp.Message)
	}
}
