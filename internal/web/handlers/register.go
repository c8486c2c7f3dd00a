package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/kozaktomas/faceledger/internal/attendance"
	"github.com/kozaktomas/faceledger/internal/detect"
)

// RegisterHandler handles face registration endpoints.
type RegisterHandler struct {
	service *attendance.Service
}

// NewRegisterHandler creates a new register handler.
func NewRegisterHandler(svc *attendance.Service) *RegisterHandler {
	return &RegisterHandler{service: svc}
}

// RegisterResponse represents the result of a registration request.
type RegisterResponse struct {
	Status    attendance.RegisterStatus `json:"status"`
	SubjectID int                       `json:"subject_id,omitempty"`
	Name      string                    `json:"name,omitempty"`
	Created   bool                      `json:"created,omitempty"`
	Samples   int                       `json:"samples,omitempty"`
	Message   string                    `json:"message"`
}

// Register stores a face sample for a named subject and retrains the model.
// A missing face is a domain outcome and still returns 200.
func (h *RegisterHandler) Register(w http.ResponseWriter, r *http.Request) {
	file := openImageFile(w, r)
	if file == nil {
		return
	}
	defer file.Close()

	name := r.FormValue("name")

	result, err := h.service.Register(r.Context(), name, file)
	switch {
	case errors.Is(err, attendance.ErrEmptyName):
		respondError(w, http.StatusBadRequest, "name is required")
		return
	case errors.Is(err, detect.ErrInvalidImage):
		respondError(w, http.StatusBadRequest, "invalid image")
		return
	case err != nil:
		log.Printf("web: registration for %q failed: %v", sanitizeForLog(name), err)
		respondError(w, http.StatusInternalServerError, "failed to register face")
		return
	}

	respondJSON(w, http.StatusOK, RegisterResponse{
		Status:    result.Status,
		SubjectID: result.SubjectID,
		Name:      result.Name,
		Created:   result.Created,
		Samples:   result.Samples,
		Message:   registerMessage(result),
	})
}

func registerMessage(result attendance.RegisterResult) string {
	switch result.Status {
	case attendance.RegisterNoFace:
		return "No face found in the image"
	case attendance.RegisterTrainingSkipped:
		return fmt.Sprintf("Face stored for %s but training was skipped", result.Name)
	default:
		return fmt.Sprintf("Face registered for %s", result.Name)
	}
}
