package handlers

import (
	"net/http"

	"github.com/kozaktomas/faceledger/internal/attendance"
)

// SubjectsHandler handles subject roster endpoints.
type SubjectsHandler struct {
	service *attendance.Service
}

// NewSubjectsHandler creates a new subjects handler.
func NewSubjectsHandler(svc *attendance.Service) *SubjectsHandler {
	return &SubjectsHandler{service: svc}
}

// List returns registered subjects with their sample counts. The q parameter
// filters by name, ignoring case and diacritics.
func (h *SubjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	subjects := h.service.Subjects(r.URL.Query().Get("q"))
	if subjects == nil {
		subjects = []attendance.SubjectInfo{}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"subjects": subjects,
		"count":    len(subjects),
	})
}
