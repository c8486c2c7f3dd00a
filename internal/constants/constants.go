// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Face patch constants
const (
	// PatchSize is the edge length of the canonical grayscale face patch.
	// Trainer and recognizer must agree on it; a model trained at a different
	// size cannot be used for prediction.
	PatchSize = 200

	// PatchJPEGQuality is the JPEG quality used when persisting face samples
	PatchJPEGQuality = 85
)

// Detection constants
const (
	// DefaultMinFaceSize is the smallest face edge (pixels) the cascade considers
	DefaultMinFaceSize = 60

	// DefaultShiftFactor controls how far the detection window shifts per step,
	// as a fraction of its size
	DefaultShiftFactor = 0.1

	// DefaultScaleFactor is the growth rate of the detection window between
	// pyramid levels
	DefaultScaleFactor = 1.1

	// DefaultMinQuality is the minimum cluster quality score for a detection
	// to count as a face
	DefaultMinQuality = 5.0

	// DefaultIoUThreshold is the Intersection over Union above which raw
	// detections are merged into one cluster
	DefaultIoUThreshold = 0.2
)

// Recognition constants
const (
	// DefaultDissimilarityThreshold is the maximum Euclidean distance in the
	// projected subspace for a probe to be accepted as a known subject.
	// Lower values = stricter matching.
	DefaultDissimilarityThreshold = 5500.0

	// DefaultNearestLimit is the default number of gallery samples returned
	// by nearest-sample queries
	DefaultNearestLimit = 5
)

// Storage constants
const (
	// LabelsFile is the identity registry file name inside the data directory
	LabelsFile = "labels.json"

	// DatasetDir is the sample gallery directory name inside the data directory
	DatasetDir = "dataset"

	// ModelFile is the trained model file name inside the data directory
	ModelFile = "model_eigen.gob"

	// AttendanceFile is the attendance ledger file name inside the data directory
	AttendanceFile = "attendance.csv"

	// SampleTimeLayout is the timestamp layout for sample file names
	// (microseconds are appended separately)
	SampleTimeLayout = "20060102_150405"

	// LedgerTimeLayout is the timestamp layout for attendance rows
	LedgerTimeLayout = "2006-01-02 15:04:05"
)

// Subject constants
const (
	// UnknownName is the display name reported when no registered subject matches
	UnknownName = "Unknown"
)

// Web constants
const (
	// MaxUploadSize is the maximum memory for parsing multipart uploads (32 MB)
	MaxUploadSize = 32 << 20
)
