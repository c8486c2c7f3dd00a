package cmd

import (
	"fmt"

	"github.com/kozaktomas/faceledger/internal/attendance"
	"github.com/kozaktomas/faceledger/internal/config"
	"github.com/kozaktomas/faceledger/internal/detect"
	"github.com/kozaktomas/faceledger/internal/gallery"
	"github.com/kozaktomas/faceledger/internal/ledger"
	"github.com/kozaktomas/faceledger/internal/registry"
)

// newDetector loads the binary face cascade configured in cfg.
func newDetector(cfg *config.Config) (*detect.Detector, error) {
	detector, err := detect.New(cfg.Data.CascadePath, detect.Options{
		MinFaceSize:  cfg.Detector.MinFaceSize,
		MaxFaceSize:  cfg.Detector.MaxFaceSize,
		ShiftFactor:  cfg.Detector.ShiftFactor,
		ScaleFactor:  cfg.Detector.ScaleFactor,
		MinQuality:   cfg.Detector.MinQuality,
		IoUThreshold: cfg.Detector.IoUThreshold,
		PatchSize:    cfg.Patch.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load face cascade from %s: %w", cfg.Data.CascadePath, err)
	}
	return detector, nil
}

// newService wires the attendance service from the configuration. The locator
// may be nil for commands that never run face detection (train, attendance,
// subjects), so those work without the cascade asset installed.
func newService(cfg *config.Config, locator attendance.FaceLocator) *attendance.Service {
	return attendance.New(
		locator,
		registry.Load(cfg.Data.LabelsPath()),
		gallery.New(cfg.Data.DatasetDir(), cfg.Patch.JPEGQuality),
		ledger.New(cfg.Data.AttendancePath()),
		attendance.Config{
			ModelPath: cfg.Data.ModelPath(),
			PatchSize: cfg.Patch.Size,
			Threshold: cfg.Recognizer.Threshold,
		},
	)
}
