package config

import (
	_ "embed"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/faceledger/internal/constants"
)

//go:embed tuning.yaml
var tuningYAML []byte

type Config struct {
	Data       DataConfig
	Web        WebConfig
	Patch      PatchConfig
	Detector   DetectorConfig
	Recognizer RecognizerConfig
}

type DataConfig struct {
	Dir         string // root directory for all persisted state
	CascadePath string // binary face detection cascade
}

// LabelsPath returns the identity registry file path.
func (c *DataConfig) LabelsPath() string {
	return filepath.Join(c.Dir, constants.LabelsFile)
}

// DatasetDir returns the sample gallery directory path.
func (c *DataConfig) DatasetDir() string {
	return filepath.Join(c.Dir, constants.DatasetDir)
}

// ModelPath returns the trained model file path.
func (c *DataConfig) ModelPath() string {
	return filepath.Join(c.Dir, constants.ModelFile)
}

// AttendancePath returns the attendance ledger file path.
func (c *DataConfig) AttendancePath() string {
	return filepath.Join(c.Dir, constants.AttendanceFile)
}

type WebConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string // extra origins allowed by CORS, localhost is always allowed
}

type PatchConfig struct {
	Size        int `yaml:"size"`         // canonical face patch edge length
	JPEGQuality int `yaml:"jpeg_quality"` // quality for persisted samples
}

type DetectorConfig struct {
	MinFaceSize  int     `yaml:"min_face_size"`
	MaxFaceSize  int     `yaml:"max_face_size"` // 0 = largest image dimension
	ShiftFactor  float64 `yaml:"shift_factor"`
	ScaleFactor  float64 `yaml:"scale_factor"`
	MinQuality   float64 `yaml:"min_quality"`
	IoUThreshold float64 `yaml:"iou_threshold"`
}

type RecognizerConfig struct {
	Threshold float64 `yaml:"threshold"` // max dissimilarity for acceptance
}

type tuning struct {
	Patch      PatchConfig      `yaml:"patch"`
	Detector   DetectorConfig   `yaml:"detector"`
	Recognizer RecognizerConfig `yaml:"recognizer"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envString reads an environment variable, falling back to a default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList reads a comma-separated environment variable into a slice,
// dropping empty entries.
func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	t := loadTuning()

	return &Config{
		Data: DataConfig{
			Dir:         envString("DATA_DIR", "./data"),
			CascadePath: envString("CASCADE_PATH", "./cascade/facefinder"),
		},
		Web: WebConfig{
			Host:           os.Getenv("WEB_HOST"),
			Port:           envInt("WEB_PORT", 8080),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Patch:    t.Patch,
		Detector: t.Detector,
		Recognizer: RecognizerConfig{
			Threshold: envFloat("RECOGNIZE_THRESHOLD", t.Recognizer.Threshold),
		},
	}
}

// loadTuning returns the embedded tuning defaults, overridden by the file at
// CONFIG_TUNING when set. Zero-valued fields fall back to compiled defaults
// so a partial override file stays valid.
func loadTuning() tuning {
	var t tuning
	if err := yaml.Unmarshal(tuningYAML, &t); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded tuning.yaml: " + err.Error())
	}

	if path := os.Getenv("CONFIG_TUNING"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("config: cannot read tuning file %s: %v (using defaults)", path, err)
			return withTuningDefaults(t)
		}
		if err := yaml.Unmarshal(data, &t); err != nil {
			log.Printf("config: cannot parse tuning file %s: %v (using defaults)", path, err)
		}
	}

	return withTuningDefaults(t)
}

func withTuningDefaults(t tuning) tuning {
	if t.Patch.Size <= 0 {
		t.Patch.Size = constants.PatchSize
	}
	if t.Patch.JPEGQuality <= 0 {
		t.Patch.JPEGQuality = constants.PatchJPEGQuality
	}
	if t.Detector.MinFaceSize <= 0 {
		t.Detector.MinFaceSize = constants.DefaultMinFaceSize
	}
	if t.Detector.ShiftFactor <= 0 {
		t.Detector.ShiftFactor = constants.DefaultShiftFactor
	}
	if t.Detector.ScaleFactor <= 1 {
		t.Detector.ScaleFactor = constants.DefaultScaleFactor
	}
	if t.Detector.MinQuality <= 0 {
		t.Detector.MinQuality = constants.DefaultMinQuality
	}
	if t.Detector.IoUThreshold <= 0 {
		t.Detector.IoUThreshold = constants.DefaultIoUThreshold
	}
	if t.Recognizer.Threshold <= 0 {
		t.Recognizer.Threshold = constants.DefaultDissimilarityThreshold
	}
	return t
}
