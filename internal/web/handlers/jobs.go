package handlers

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/faceledger/internal/attendance"
)

// JobStatus represents the status of an async job.
type JobStatus string

// JobStatus constants define the lifecycle states of an async job.
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// TrainJob represents an async model training job. Values handed out by
// TrainManager are copies, so callers can marshal them without racing the
// background updater.
type TrainJob struct {
	ID          string                  `json:"id"`
	Status      JobStatus               `json:"status"`
	Processed   int                     `json:"processed"`
	Total       int                     `json:"total"`
	Error       string                  `json:"error,omitempty"`
	StartedAt   time.Time               `json:"started_at"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
	Result      *attendance.TrainResult `json:"result,omitempty"`
}

// TrainManager tracks training jobs. Only one job may run at a time; finished
// jobs stay queryable for status polling.
type TrainManager struct {
	jobs    map[string]*TrainJob
	running string // ID of the running job, empty when idle
	mu      sync.RWMutex
}

// NewTrainManager creates a new train manager.
func NewTrainManager() *TrainManager {
	return &TrainManager{
		jobs: make(map[string]*TrainJob),
	}
}

// Begin registers a new pending job. Returns false when another job is still
// running.
func (m *TrainManager) Begin() (TrainJob, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running != "" {
		return TrainJob{}, false
	}

	job := &TrainJob{
		ID:        uuid.New().String(),
		Status:    JobStatusPending,
		StartedAt: time.Now(),
	}
	m.jobs[job.ID] = job
	m.running = job.ID
	return *job, true
}

// Get retrieves a snapshot of a job by ID.
func (m *TrainManager) Get(id string) (TrainJob, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return TrainJob{}, false
	}
	return *job, true
}

// Update applies fn to the job under the manager lock.
func (m *TrainManager) Update(id string, fn func(*TrainJob)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job, ok := m.jobs[id]; ok {
		fn(job)
	}
}

// Finish applies fn, stamps the completion time and releases the
// single-flight slot.
func (m *TrainManager) Finish(id string, fn func(*TrainJob)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job, ok := m.jobs[id]; ok {
		fn(job)
		now := time.Now()
		job.CompletedAt = &now
	}
	if m.running == id {
		m.running = ""
	}
}

// Running reports whether a job is currently in flight.
func (m *TrainManager) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running != ""
}
