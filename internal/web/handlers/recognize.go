package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/kozaktomas/faceledger/internal/attendance"
	"github.com/kozaktomas/faceledger/internal/constants"
	"github.com/kozaktomas/faceledger/internal/detect"
)

// RecognizeHandler handles face recognition endpoints.
type RecognizeHandler struct {
	service *attendance.Service
}

// NewRecognizeHandler creates a new recognize handler.
func NewRecognizeHandler(svc *attendance.Service) *RecognizeHandler {
	return &RecognizeHandler{service: svc}
}

// RecognizeResponse represents the result of a recognition request.
// Confidence is the dissimilarity score; lower values mean a closer match.
type RecognizeResponse struct {
	Status     attendance.RecognizeStatus `json:"status"`
	SubjectID  int                        `json:"subject_id,omitempty"`
	Name       string                     `json:"name"`
	Confidence float64                    `json:"confidence,omitempty"`
	RecordedAt string                     `json:"recorded_at,omitempty"`
	Message    string                     `json:"message"`
}

// Recognize matches the uploaded image against the trained model and marks
// attendance on an accepted match.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	file := openImageFile(w, r)
	if file == nil {
		return
	}
	defer file.Close()

	result, err := h.service.Recognize(r.Context(), file, attendance.RecognizeOptions{})
	switch {
	case errors.Is(err, detect.ErrInvalidImage):
		respondError(w, http.StatusBadRequest, "invalid image")
		return
	case err != nil:
		log.Printf("web: recognition failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to recognize face")
		return
	}

	resp := RecognizeResponse{
		Status:     result.Status,
		SubjectID:  result.SubjectID,
		Name:       result.Name,
		Confidence: result.Score,
		Message:    recognizeMessage(result),
	}
	if result.Recorded {
		resp.RecordedAt = result.At.Format(constants.LedgerTimeLayout)
	}
	respondJSON(w, http.StatusOK, resp)
}

func recognizeMessage(result attendance.RecognizeResult) string {
	switch result.Status {
	case attendance.RecognizeNoFace:
		return "No face found in the image"
	case attendance.RecognizeNoModel:
		return "No trained model found. Register a face first."
	case attendance.RecognizeRejected:
		return "Face not recognized"
	default:
		return fmt.Sprintf("Attendance marked for %s", result.Name)
	}
}
