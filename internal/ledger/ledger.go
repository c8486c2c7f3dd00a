// Package ledger appends attendance records to a CSV file and reads them
// back. The file is append-only: rows are never rewritten or reordered.
package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kozaktomas/faceledger/internal/constants"
)

// Record is one attendance event.
type Record struct {
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Name string    // exact display name
	Day  time.Time // calendar day in local time
}

// Ledger serializes appends on an internal lock; reads open the file
// independently and need no coordination.
type Ledger struct {
	path string
	mu   sync.Mutex
}

func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Append writes one row (name, wall-clock timestamp) to the end of the file,
// creating it on first use. There is no per-day dedup: every accepted
// recognition produces a row.
func (l *Ledger) Append(name string, ts time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{name, ts.Format(constants.LedgerTimeLayout)}); err != nil {
		return fmt.Errorf("failed to write ledger row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush ledger row: %w", err)
	}
	return nil
}

// List reads all records in file order, oldest first. Malformed rows are
// skipped with a warning so one damaged line never hides the rest.
func (l *Ledger) List(f Filter) ([]Record, error) {
	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	var records []Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("ledger: skipping malformed row in %s: %v", l.path, err)
			continue
		}
		if len(row) != 2 {
			log.Printf("ledger: skipping row with %d fields in %s", len(row), l.path)
			continue
		}
		at, err := time.ParseInLocation(constants.LedgerTimeLayout, row[1], time.Local)
		if err != nil {
			log.Printf("ledger: skipping row with bad timestamp %q in %s", row[1], l.path)
			continue
		}

		record := Record{Name: row[0], At: at}
		if matches(record, f) {
			records = append(records, record)
		}
	}
	return records, nil
}

func matches(r Record, f Filter) bool {
	if f.Name != "" && r.Name != f.Name {
		return false
	}
	if !f.Day.IsZero() {
		ry, rm, rd := r.At.Date()
		fy, fm, fd := f.Day.Date()
		if ry != fy || rm != fm || rd != fd {
			return false
		}
	}
	return true
}
