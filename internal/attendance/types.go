package attendance

import (
	"time"
)

// RegisterStatus describes the outcome of a registration attempt.
type RegisterStatus string

const (
	// RegisterRegistered means the face was stored and the model retrained.
	RegisterRegistered RegisterStatus = "registered"
	// RegisterNoFace means no face was found; nothing was persisted.
	RegisterNoFace RegisterStatus = "no_face"
	// RegisterTrainingSkipped means the face was stored but the corpus was
	// empty at training time, so no model exists yet.
	RegisterTrainingSkipped RegisterStatus = "training_skipped"
)

// RegisterResult reports what a registration did.
type RegisterResult struct {
	Status    RegisterStatus `json:"status"`
	SubjectID int            `json:"subject_id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Created   bool           `json:"created,omitempty"` // new identity allocated
	Samples   int            `json:"samples,omitempty"` // samples stored for the subject
}

// RecognizeStatus describes the outcome of a recognition attempt.
type RecognizeStatus string

const (
	// RecognizeRecognized means the probe matched below the threshold and
	// attendance was recorded.
	RecognizeRecognized RecognizeStatus = "recognized"
	// RecognizeRejected means the nearest sample was too dissimilar.
	RecognizeRejected RecognizeStatus = "rejected"
	// RecognizeNoFace means no face was found in the probe image.
	RecognizeNoFace RecognizeStatus = "no_face"
	// RecognizeNoModel means no trained model is available yet.
	RecognizeNoModel RecognizeStatus = "no_model"
)

// RecognizeResult reports the decision for one probe.
type RecognizeResult struct {
	Status    RecognizeStatus `json:"status"`
	SubjectID int             `json:"subject_id,omitempty"`
	Name      string          `json:"name"`
	Score     float64         `json:"score,omitempty"`    // dissimilarity, lower = better
	Recorded  bool            `json:"recorded,omitempty"` // ledger row appended
	At        time.Time       `json:"at,omitzero"`
}

// RecognizeOptions tweak a recognition call.
type RecognizeOptions struct {
	// SkipLedger evaluates the probe without recording attendance.
	SkipLedger bool
}

// TrainOptions tweak a retraining run.
type TrainOptions struct {
	// OnSample reports corpus progress while patches are prepared.
	OnSample func(done, total int)
}

// TrainResult summarizes a training run or a stored model.
type TrainResult struct {
	Skipped    bool      `json:"skipped,omitempty"` // empty corpus, no model written
	Samples    int       `json:"samples"`
	Subjects   int       `json:"subjects"`
	Components int       `json:"components"`
	TrainedAt  time.Time `json:"trained_at,omitzero"`
}

// SubjectInfo is one roster entry.
type SubjectInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Samples int    `json:"samples"`
}

// NeighborInfo is one gallery sample returned by a nearest query.
type NeighborInfo struct {
	SubjectID int     `json:"subject_id"`
	Name      string  `json:"name"`
	Distance  float64 `json:"distance"`
}
