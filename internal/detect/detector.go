// Package detect finds the primary face in an image and normalizes it into
// the canonical grayscale patch used for training and recognition.
package detect

import (
	"errors"
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

var (
	// ErrInvalidImage means the input bytes could not be decoded as an image.
	ErrInvalidImage = errors.New("invalid image")

	// ErrNoFace means the image decoded fine but no face was found in it.
	ErrNoFace = errors.New("no face detected")
)

// Options holds cascade detection parameters.
type Options struct {
	MinFaceSize  int     // smallest face edge in pixels
	MaxFaceSize  int     // largest face edge in pixels, 0 = largest image dimension
	ShiftFactor  float64 // detection window shift per step, fraction of its size
	ScaleFactor  float64 // detection window growth between pyramid levels
	MinQuality   float64 // minimum cluster quality score
	IoUThreshold float64 // cluster merge threshold
	PatchSize    int     // canonical patch edge length
}

// Detector wraps an unpacked binary cascade. It is read-only after
// construction and safe for concurrent use.
type Detector struct {
	classifier *pigo.Pigo
	opts       Options
}

// New reads and unpacks the binary cascade at the given path.
func New(cascadePath string, opts Options) (*Detector, error) {
	data, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cascade file: %w", err)
	}

	p := pigo.NewPigo()
	classifier, err := p.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack cascade: %w", err)
	}

	return &Detector{
		classifier: classifier,
		opts:       opts,
	}, nil
}

// Locate runs the cascade over the image, takes the first clustered candidate
// above the quality cutoff and returns the normalized face patch together
// with the face rectangle in source coordinates. Secondary faces are ignored.
func (d *Detector) Locate(src image.Image) (*image.Gray, image.Rectangle, error) {
	nrgba := pigo.ImgToNRGBA(src)
	pixels := pigo.RgbToGrayscale(nrgba)
	cols, rows := nrgba.Bounds().Max.X, nrgba.Bounds().Max.Y

	maxSize := d.opts.MaxFaceSize
	if maxSize <= 0 {
		maxSize = max(cols, rows)
	}

	cParams := pigo.CascadeParams{
		MinSize:     d.opts.MinFaceSize,
		MaxSize:     maxSize,
		ShiftFactor: d.opts.ShiftFactor,
		ScaleFactor: d.opts.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(cParams, 0.0)
	dets = d.classifier.ClusterDetections(dets, d.opts.IoUThreshold)

	for _, det := range dets {
		if float64(det.Q) < d.opts.MinQuality {
			continue
		}
		x := det.Col - det.Scale/2
		y := det.Row - det.Scale/2
		roi := image.Rect(x, y, x+det.Scale, y+det.Scale).Intersect(src.Bounds())
		if roi.Empty() {
			break
		}
		return Normalize(src, roi, d.opts.PatchSize), roi, nil
	}

	return nil, image.Rectangle{}, ErrNoFace
}
