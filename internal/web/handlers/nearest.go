package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/kozaktomas/faceledger/internal/attendance"
	"github.com/kozaktomas/faceledger/internal/detect"
	"github.com/kozaktomas/faceledger/internal/eigen"
)

// NearestHandler handles nearest-sample lookup endpoints.
type NearestHandler struct {
	service *attendance.Service
}

// NewNearestHandler creates a new nearest handler.
func NewNearestHandler(svc *attendance.Service) *NearestHandler {
	return &NearestHandler{service: svc}
}

// Nearest returns the gallery samples most similar to the uploaded face.
// Diagnostic endpoint; the recognition decision itself uses the exact scan.
func (h *NearestHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	file := openImageFile(w, r)
	if file == nil {
		return
	}
	defer file.Close()

	k := 0
	if v := r.URL.Query().Get("k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		k = n
	}

	neighbors, err := h.service.Nearest(r.Context(), file, k)
	switch {
	case errors.Is(err, detect.ErrInvalidImage):
		respondError(w, http.StatusBadRequest, "invalid image")
		return
	case errors.Is(err, detect.ErrNoFace):
		respondJSON(w, http.StatusOK, map[string]any{
			"neighbors": []attendance.NeighborInfo{},
			"count":     0,
			"message":   "No face found in the image",
		})
		return
	case errors.Is(err, eigen.ErrNoModel):
		respondError(w, http.StatusNotFound, "no trained model available")
		return
	case err != nil:
		log.Printf("web: nearest lookup failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to find nearest samples")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"neighbors": neighbors,
		"count":     len(neighbors),
	})
}
