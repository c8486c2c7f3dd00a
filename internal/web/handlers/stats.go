package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/kozaktomas/faceledger/internal/attendance"
	"github.com/kozaktomas/faceledger/internal/ledger"
)

// StatsHandler handles system statistics endpoints.
type StatsHandler struct {
	service *attendance.Service
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(svc *attendance.Service) *StatsHandler {
	return &StatsHandler{service: svc}
}

// ModelStats summarizes the committed recognition model.
type ModelStats struct {
	Samples    int       `json:"samples"`
	Subjects   int       `json:"subjects"`
	Components int       `json:"components"`
	TrainedAt  time.Time `json:"trained_at"`
}

// StatsResponse represents the system statistics response. Model is null
// until the first successful training run.
type StatsResponse struct {
	Subjects          int         `json:"subjects"`
	Samples           int         `json:"samples"`
	AttendanceRecords int         `json:"attendance_records"`
	Model             *ModelStats `json:"model"`
}

// Get returns counts over the registry, the sample gallery, the attendance
// ledger and the committed model.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	subjects := h.service.Subjects("")

	samples := 0
	for _, subject := range subjects {
		samples += subject.Samples
	}

	records, err := h.service.Attendance(ledger.Filter{})
	if err != nil {
		log.Printf("Failed to read attendance ledger: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to read attendance ledger")
		return
	}

	stats := StatsResponse{
		Subjects:          len(subjects),
		Samples:           samples,
		AttendanceRecords: len(records),
	}
	if info, err := h.service.ModelInfo(); err == nil {
		stats.Model = &ModelStats{
			Samples:    info.Samples,
			Subjects:   info.Subjects,
			Components: info.Components,
			TrainedAt:  info.TrainedAt,
		}
	}

	respondJSON(w, http.StatusOK, stats)
}
