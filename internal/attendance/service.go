// Package attendance wires face detection, the identity registry, the sample
// gallery, the eigen model and the attendance ledger into the register,
// recognize and retrain use cases shared by the CLI and the HTTP API.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/kozaktomas/faceledger/internal/constants"
	"github.com/kozaktomas/faceledger/internal/detect"
	"github.com/kozaktomas/faceledger/internal/eigen"
	"github.com/kozaktomas/faceledger/internal/gallery"
	"github.com/kozaktomas/faceledger/internal/ledger"
	"github.com/kozaktomas/faceledger/internal/registry"
)

// ErrEmptyName rejects registrations without a display name.
var ErrEmptyName = errors.New("name must not be empty")

// FaceLocator finds the primary face in an image and returns the canonical
// patch. Satisfied by *detect.Detector; stubbed in tests.
type FaceLocator interface {
	Locate(src image.Image) (*image.Gray, image.Rectangle, error)
}

// Config holds the service-level knobs.
type Config struct {
	ModelPath string  // trained model location
	PatchSize int     // canonical patch edge length
	Threshold float64 // max dissimilarity for acceptance
}

// Service owns its stores explicitly; there is no package-level state.
// Registration and retraining serialize on trainMu. Recognition never takes
// that lock: it reads the last committed model from disk, so a retrain in
// flight cannot block or corrupt a running recognition.
type Service struct {
	locator  FaceLocator
	registry *registry.Registry
	gallery  *gallery.Gallery
	ledger   *ledger.Ledger
	cfg      Config

	trainMu sync.Mutex

	// Nearest-sample index, rebuilt lazily whenever the committed model
	// changes. Keyed on the model's TrainedAt.
	indexMu   sync.Mutex
	index     *eigen.Index
	indexFrom time.Time

	now func() time.Time
}

func New(locator FaceLocator, reg *registry.Registry, gal *gallery.Gallery, led *ledger.Ledger, cfg Config) *Service {
	return &Service{
		locator:  locator,
		registry: reg,
		gallery:  gal,
		ledger:   led,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Register decodes the image, locates the face, resolves the identity, stores
// the sample and retrains the model from the full gallery. A missing face is
// an outcome, not an error, and persists nothing.
func (s *Service) Register(ctx context.Context, name string, r io.Reader) (RegisterResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return RegisterResult{}, ErrEmptyName
	}

	img, err := detect.Decode(r)
	if err != nil {
		return RegisterResult{}, err
	}
	patch, _, err := s.locator.Locate(img)
	if errors.Is(err, detect.ErrNoFace) {
		return RegisterResult{Status: RegisterNoFace}, nil
	}
	if err != nil {
		return RegisterResult{}, fmt.Errorf("face detection failed: %w", err)
	}

	s.trainMu.Lock()
	defer s.trainMu.Unlock()

	id, created, err := s.registry.Resolve(name)
	if err != nil {
		return RegisterResult{}, err
	}
	if _, err := s.gallery.Save(id, patch, s.now()); err != nil {
		return RegisterResult{}, fmt.Errorf("failed to store sample: %w", err)
	}

	tr, err := s.retrainLocked(ctx, TrainOptions{})
	if err != nil {
		return RegisterResult{}, err
	}

	result := RegisterResult{
		Status:    RegisterRegistered,
		SubjectID: id,
		Name:      name,
		Created:   created,
		Samples:   s.gallery.Count(id),
	}
	if tr.Skipped {
		result.Status = RegisterTrainingSkipped
	}
	return result, nil
}

// Recognize decodes the probe, locates the face and matches it against the
// last committed model. The model is read from disk per request, so a
// recognition racing a retrain sees either the previous or the new model,
// never a partial one. An accepted match appends to the ledger; rejections
// and missing faces or models never touch it.
func (s *Service) Recognize(ctx context.Context, r io.Reader, opts RecognizeOptions) (RecognizeResult, error) {
	img, err := detect.Decode(r)
	if err != nil {
		return RecognizeResult{}, err
	}
	patch, _, err := s.locator.Locate(img)
	if errors.Is(err, detect.ErrNoFace) {
		return RecognizeResult{Status: RecognizeNoFace, Name: constants.UnknownName}, nil
	}
	if err != nil {
		return RecognizeResult{}, fmt.Errorf("face detection failed: %w", err)
	}

	m, err := s.loadModel()
	if errors.Is(err, eigen.ErrNoModel) {
		return RecognizeResult{Status: RecognizeNoModel, Name: constants.UnknownName}, nil
	}
	if err != nil {
		return RecognizeResult{}, err
	}

	pred, err := m.Predict(patch)
	if err != nil {
		return RecognizeResult{}, fmt.Errorf("prediction failed: %w", err)
	}

	// Strictly below the threshold counts as a match.
	if pred.Score >= s.cfg.Threshold {
		return RecognizeResult{
			Status: RecognizeRejected,
			Name:   constants.UnknownName,
			Score:  pred.Score,
		}, nil
	}

	// A label missing from the registry still marks attendance, under the
	// Unknown sentinel.
	name, _ := s.registry.Name(pred.Label)

	result := RecognizeResult{
		Status:    RecognizeRecognized,
		SubjectID: pred.Label,
		Name:      name,
		Score:     pred.Score,
	}
	if !opts.SkipLedger {
		at := s.now()
		if err := s.ledger.Append(name, at); err != nil {
			return RecognizeResult{}, fmt.Errorf("failed to record attendance: %w", err)
		}
		result.Recorded = true
		result.At = at
	}
	return result, nil
}

// Retrain rebuilds the model from every stored sample and swaps it in
// atomically. An empty corpus skips training and leaves any existing model
// untouched.
func (s *Service) Retrain(ctx context.Context, opts TrainOptions) (TrainResult, error) {
	s.trainMu.Lock()
	defer s.trainMu.Unlock()
	return s.retrainLocked(ctx, opts)
}

func (s *Service) retrainLocked(_ context.Context, opts TrainOptions) (TrainResult, error) {
	samples, err := s.gallery.Samples()
	if err != nil {
		return TrainResult{}, fmt.Errorf("failed to enumerate samples: %w", err)
	}
	if len(samples) == 0 {
		return TrainResult{Skipped: true}, nil
	}

	patches := make([]eigen.LabeledPatch, 0, len(samples))
	for i, sample := range samples {
		// Stored samples are already canonical, but the resize is forced so
		// foreign files dropped into the dataset cannot skew dimensions.
		patch := detect.Normalize(sample.Image, sample.Image.Bounds(), s.cfg.PatchSize)
		patches = append(patches, eigen.LabeledPatch{Label: sample.SubjectID, Patch: patch})
		if opts.OnSample != nil {
			opts.OnSample(i+1, len(samples))
		}
	}

	m, err := eigen.Train(patches, s.cfg.PatchSize, s.cfg.PatchSize)
	if err != nil {
		return TrainResult{}, fmt.Errorf("training failed: %w", err)
	}
	if err := m.Save(s.cfg.ModelPath); err != nil {
		return TrainResult{}, fmt.Errorf("failed to store model: %w", err)
	}

	return TrainResult{
		Samples:    m.SampleCount(),
		Subjects:   m.SubjectCount(),
		Components: m.Components(),
		TrainedAt:  m.TrainedAt,
	}, nil
}

// Nearest locates the face in the probe and returns the k most similar
// gallery samples from the approximate index. This is an exploratory view;
// the recognition decision always uses the exact scan in Recognize.
func (s *Service) Nearest(ctx context.Context, r io.Reader, k int) ([]NeighborInfo, error) {
	if k <= 0 {
		k = constants.DefaultNearestLimit
	}

	img, err := detect.Decode(r)
	if err != nil {
		return nil, err
	}
	patch, _, err := s.locator.Locate(img)
	if err != nil {
		return nil, err
	}

	m, err := s.loadModel()
	if err != nil {
		return nil, err
	}
	coords, err := m.Project(patch)
	if err != nil {
		return nil, err
	}

	neighbors, err := s.nearestIndex(m).Search(coords, k)
	if err != nil {
		return nil, err
	}

	infos := make([]NeighborInfo, 0, len(neighbors))
	for _, n := range neighbors {
		name, _ := s.registry.Name(n.Label)
		infos = append(infos, NeighborInfo{
			SubjectID: n.Label,
			Name:      name,
			Distance:  n.Distance,
		})
	}
	return infos, nil
}

// Subjects returns the roster with per-subject sample counts, optionally
// filtered by a search query.
func (s *Service) Subjects(query string) []SubjectInfo {
	var subjects []registry.Subject
	if query == "" {
		subjects = s.registry.List()
	} else {
		subjects = s.registry.Search(query)
	}

	counts := s.gallery.Counts()
	infos := make([]SubjectInfo, 0, len(subjects))
	for _, subject := range subjects {
		infos = append(infos, SubjectInfo{
			ID:      subject.ID,
			Name:    subject.Name,
			Samples: counts[subject.ID],
		})
	}
	return infos
}

// Attendance reads the ledger back, oldest first.
func (s *Service) Attendance(f ledger.Filter) ([]ledger.Record, error) {
	return s.ledger.List(f)
}

// ModelInfo summarizes the committed model.
func (s *Service) ModelInfo() (TrainResult, error) {
	m, err := s.loadModel()
	if err != nil {
		return TrainResult{}, err
	}
	return TrainResult{
		Samples:    m.SampleCount(),
		Subjects:   m.SubjectCount(),
		Components: m.Components(),
		TrainedAt:  m.TrainedAt,
	}, nil
}

// loadModel reads the committed model, mapping an incompatible patch size to
// a missing model with a logged warning.
func (s *Service) loadModel() (*eigen.Model, error) {
	m, err := eigen.Load(s.cfg.ModelPath, s.cfg.PatchSize, s.cfg.PatchSize)
	if errors.Is(err, eigen.ErrIncompatibleModel) {
		log.Printf("attendance: %v (treating as missing model)", err)
		return nil, eigen.ErrNoModel
	}
	return m, err
}

// nearestIndex returns an up-to-date approximate index for the given model,
// rebuilding it only when the committed model changed.
func (s *Service) nearestIndex(m *eigen.Model) *eigen.Index {
	s.indexMu.Lock()
	defer s.indexMu.Unlock()

	if s.index == nil || !s.indexFrom.Equal(m.TrainedAt) {
		ix := eigen.NewIndex()
		ix.Build(m)
		s.index = ix
		s.indexFrom = m.TrainedAt
	}
	return s.index
}
