package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kozaktomas/faceledger/internal/attendance"
	"github.com/kozaktomas/faceledger/internal/ledger"
)

// recognizeSample marks attendance directly through the service.
func recognizeSample(t *testing.T, svc *attendance.Service, img *bytes.Reader) attendance.RecognizeResult {
	t.Helper()

	result, err := svc.Recognize(context.Background(), img, attendance.RecognizeOptions{})
	if err != nil {
		t.Fatalf("recognize failed: %v", err)
	}
	if result.Status != attendance.RecognizeRecognized {
		t.Fatalf("expected status %q, got %q", attendance.RecognizeRecognized, result.Status)
	}
	return result
}

func seedAttendance(t *testing.T, svc *attendance.Service) {
	t.Helper()

	registerSample(t, svc, "alice", verticalFace(0))
	registerSample(t, svc, "alice", verticalFace(1))
	registerSample(t, svc, "bob", horizontalFace(0))
	registerSample(t, svc, "bob", horizontalFace(1))

	recognizeSample(t, svc, bytes.NewReader(jpegBytes(t, verticalFace(2))))
	recognizeSample(t, svc, bytes.NewReader(jpegBytes(t, horizontalFace(2))))
	recognizeSample(t, svc, bytes.NewReader(jpegBytes(t, verticalFace(3))))
}

type attendanceListResponse struct {
	Records []ledger.Record `json:"records"`
	Count   int             `json:"count"`
}

func TestAttendanceList_Empty(t *testing.T) {
	handler := NewAttendanceHandler(newTestService(t, passthroughLocator{}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp attendanceListResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Count != 0 || len(resp.Records) != 0 {
		t.Errorf("expected an empty ledger, got count %d with %d records", resp.Count, len(resp.Records))
	}
}

func TestAttendanceList_AllRecords(t *testing.T) {
	svc := newTestService(t, passthroughLocator{})
	seedAttendance(t, svc)
	handler := NewAttendanceHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	var resp attendanceListResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Count != 3 {
		t.Fatalf("expected 3 records, got %d", resp.Count)
	}
	expected := []string{"alice", "bob", "alice"}
	for i, name := range expected {
		if resp.Records[i].Name != name {
			t.Errorf("expected record %d to be %s, got %s", i, name, resp.Records[i].Name)
		}
	}
}

func TestAttendanceList_FilterByName(t *testing.T) {
	svc := newTestService(t, passthroughLocator{})
	seedAttendance(t, svc)
	handler := NewAttendanceHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance?name=bob", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	var resp attendanceListResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Count != 1 {
		t.Fatalf("expected 1 record for bob, got %d", resp.Count)
	}
	if resp.Records[0].Name != "bob" {
		t.Errorf("expected bob, got %s", resp.Records[0].Name)
	}
}

func TestAttendanceList_FilterByDate(t *testing.T) {
	svc := newTestService(t, passthroughLocator{})
	seedAttendance(t, svc)
	handler := NewAttendanceHandler(svc)

	today := time.Now().Format("2006-01-02")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance?date="+today, nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	var resp attendanceListResponse
	parseJSONResponse(t, recorder, &resp)
	if resp.Count != 3 {
		t.Errorf("expected 3 records for today, got %d", resp.Count)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/attendance?date=1999-01-02", nil)
	recorder = httptest.NewRecorder()
	handler.List(recorder, req)

	parseJSONResponse(t, recorder, &resp)
	if resp.Count != 0 {
		t.Errorf("expected no records for a past day, got %d", resp.Count)
	}
}

func TestAttendanceList_InvalidDate(t *testing.T) {
	handler := NewAttendanceHandler(newTestService(t, passthroughLocator{}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance?date=02-01-1999", nil)
	recorder := httptest.NewRecorder()
	handler.List(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "invalid date, expected YYYY-MM-DD")
}
