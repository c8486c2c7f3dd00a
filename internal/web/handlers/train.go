package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/faceledger/internal/attendance"
)

// TrainHandler handles model training endpoints.
type TrainHandler struct {
	service *attendance.Service
	manager *TrainManager
}

// NewTrainHandler creates a new train handler.
func NewTrainHandler(svc *attendance.Service, tm *TrainManager) *TrainHandler {
	return &TrainHandler{
		service: svc,
		manager: tm,
	}
}

// Start kicks off an async retraining job over the full sample gallery.
// Only one job may run at a time.
func (h *TrainHandler) Start(w http.ResponseWriter, r *http.Request) {
	job, ok := h.manager.Begin()
	if !ok {
		respondError(w, http.StatusConflict, "a training job is already running")
		return
	}

	go h.runTrainJob(job.ID)

	respondJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": string(job.Status),
	})
}

// Status returns the status of a training job.
func (h *TrainHandler) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		respondError(w, http.StatusBadRequest, "missing job ID")
		return
	}

	job, ok := h.manager.Get(jobID)
	if !ok {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// runTrainJob runs the training job in the background. The request context is
// gone by the time this runs, so training gets a fresh one.
func (h *TrainHandler) runTrainJob(id string) {
	h.manager.Update(id, func(j *TrainJob) {
		j.Status = JobStatusRunning
	})

	result, err := h.service.Retrain(context.Background(), attendance.TrainOptions{
		OnSample: func(done, total int) {
			h.manager.Update(id, func(j *TrainJob) {
				j.Processed = done
				j.Total = total
			})
		},
	})
	if err != nil {
		h.manager.Finish(id, func(j *TrainJob) {
			j.Status = JobStatusFailed
			j.Error = err.Error()
		})
		return
	}

	h.manager.Finish(id, func(j *TrainJob) {
		j.Status = JobStatusCompleted
		j.Result = &result
	})
}
