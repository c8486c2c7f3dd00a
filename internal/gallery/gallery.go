// Package gallery stores normalized face samples on disk, one directory per
// subject ID, and enumerates them as the training corpus. The directory name
// is the authoritative label for every sample under it.
package gallery

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/kozaktomas/faceledger/internal/constants"
)

// Sample is one stored face patch together with its subject label.
type Sample struct {
	SubjectID int
	Path      string
	Image     image.Image
}

// Gallery manages the sample directory tree. Writes serialize on the internal
// lock; reads are plain directory walks and need no coordination.
type Gallery struct {
	dir         string
	jpegQuality int
	mu          sync.Mutex
}

func New(dir string, jpegQuality int) *Gallery {
	return &Gallery{
		dir:         dir,
		jpegQuality: jpegQuality,
	}
}

// Save writes a face patch under the subject's directory. The file name is
// the capture timestamp down to microseconds, which keeps names unique
// without explicit counters.
func (g *Gallery) Save(subjectID int, patch *image.Gray, ts time.Time) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	dir := filepath.Join(g.dir, strconv.Itoa(subjectID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create subject directory: %w", err)
	}

	name := fmt.Sprintf("%s%06d.jpg", ts.Format(constants.SampleTimeLayout), ts.Nanosecond()/1000)
	path := filepath.Join(dir, name)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, patch, &jpeg.Options{Quality: g.jpegQuality}); err != nil {
		return "", fmt.Errorf("failed to encode sample: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write sample: %w", err)
	}
	return path, nil
}

// Samples walks every numeric subject directory and decodes every readable
// image. Unreadable or undecodable files are skipped with a warning so one
// damaged sample never blocks training.
func (g *Gallery) Samples() ([]Sample, error) {
	entries, err := os.ReadDir(g.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read gallery directory: %w", err)
	}

	var samples []Sample
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := strconv.Atoi(entry.Name())
		if err != nil || id <= 0 {
			continue
		}

		subjectDir := filepath.Join(g.dir, entry.Name())
		files, err := os.ReadDir(subjectDir)
		if err != nil {
			log.Printf("gallery: cannot read subject directory %s: %v (skipping)", subjectDir, err)
			continue
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			path := filepath.Join(subjectDir, f.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				log.Printf("gallery: cannot read sample %s: %v (skipping)", path, err)
				continue
			}
			img, _, err := image.Decode(bytes.NewReader(data))
			if err != nil {
				log.Printf("gallery: cannot decode sample %s: %v (skipping)", path, err)
				continue
			}
			samples = append(samples, Sample{SubjectID: id, Path: path, Image: img})
		}
	}
	return samples, nil
}

// Count returns the number of stored samples for one subject.
func (g *Gallery) Count(subjectID int) int {
	files, err := os.ReadDir(filepath.Join(g.dir, strconv.Itoa(subjectID)))
	if err != nil {
		return 0
	}
	count := 0
	for _, f := range files {
		if !f.IsDir() {
			count++
		}
	}
	return count
}

// Counts returns per-subject sample counts for every numeric directory.
func (g *Gallery) Counts() map[int]int {
	counts := make(map[int]int)
	entries, err := os.ReadDir(g.dir)
	if err != nil {
		return counts
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := strconv.Atoi(entry.Name())
		if err != nil || id <= 0 {
			continue
		}
		counts[id] = g.Count(id)
	}
	return counts
}
