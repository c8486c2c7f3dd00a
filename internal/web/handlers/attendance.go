package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/kozaktomas/faceledger/internal/attendance"
	"github.com/kozaktomas/faceledger/internal/ledger"
)

// AttendanceHandler handles attendance ledger endpoints.
type AttendanceHandler struct {
	service *attendance.Service
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(svc *attendance.Service) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// List returns attendance records in file order, optionally filtered by
// subject name and calendar day (YYYY-MM-DD).
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := ledger.Filter{
		Name: r.URL.Query().Get("name"),
	}
	if date := r.URL.Query().Get("date"); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		filter.Day = day
	}

	records, err := h.service.Attendance(filter)
	if err != nil {
		log.Printf("web: failed to read attendance: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to read attendance")
		return
	}
	if records == nil {
		records = []ledger.Record{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"count":   len(records),
	})
}
