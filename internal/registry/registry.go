// Package registry maps numeric subject IDs to display names. The mapping is
// persisted as a single JSON object with string keys ({"1": "alice"}) and is
// rewritten in full on every mutation.
package registry

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/kozaktomas/faceledger/internal/constants"
)

// Subject is one registered identity.
type Subject struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Registry is the in-memory view of the identity file. Mutations serialize on
// the internal lock and persist the whole file before returning.
type Registry struct {
	path  string
	mu    sync.RWMutex
	names map[int]string
}

// Load reads the registry file into memory. A missing file yields an empty
// registry; a corrupt one yields an empty registry with a logged warning and
// heals itself on the next write.
func Load(path string) *Registry {
	r := &Registry{
		path:  path,
		names: make(map[int]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("registry: cannot read %s: %v (starting empty)", path, err)
		}
		return r
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("registry: cannot parse %s: %v (starting empty)", path, err)
		return r
	}

	for key, name := range raw {
		id, err := strconv.Atoi(key)
		if err != nil || id <= 0 {
			log.Printf("registry: skipping invalid subject id %q in %s", key, path)
			continue
		}
		r.names[id] = name
	}
	return r
}

// Resolve returns the ID for a display name, allocating the next free ID and
// persisting the registry when the name is new. Matching is exact, so
// re-registering an existing name lands new samples under the same subject.
func (r *Registry) Resolve(name string) (id int, created bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.names {
		if existing == name {
			return id, false, nil
		}
	}

	id = r.nextID()
	r.names[id] = name
	if err := r.persist(); err != nil {
		delete(r.names, id)
		return 0, false, fmt.Errorf("failed to persist registry: %w", err)
	}
	return id, true, nil
}

// Name returns the display name for an ID. Unregistered IDs report the
// Unknown sentinel.
func (r *Registry) Name(id int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name, ok := r.names[id]; ok {
		return name, true
	}
	return constants.UnknownName, false
}

// List returns all subjects sorted by ID.
func (r *Registry) List() []Subject {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subjects := make([]Subject, 0, len(r.names))
	for id, name := range r.names {
		subjects = append(subjects, Subject{ID: id, Name: name})
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })
	return subjects
}

// Search returns subjects whose name contains the query, compared without
// case or diacritics ("jiri" finds "Jiří"). An empty query returns everyone.
func (r *Registry) Search(query string) []Subject {
	query = NormalizeSubjectName(query)
	if query == "" {
		return r.List()
	}

	var matches []Subject
	for _, subject := range r.List() {
		if strings.Contains(NormalizeSubjectName(subject.Name), query) {
			matches = append(matches, subject)
		}
	}
	return matches
}

// nextID allocates max(existing)+1 so IDs stay unique even after interior
// deletions of the registry file's history. Callers must hold the lock.
func (r *Registry) nextID() int {
	next := 1
	for id := range r.names {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

// persist rewrites the registry file atomically: the new content lands in a
// temp file in the same directory and replaces the old file via rename.
// Callers must hold the lock.
func (r *Registry) persist() error {
	raw := make(map[string]string, len(r.names))
	for id, name := range r.names {
		raw[strconv.Itoa(id)] = name
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".labels-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp registry file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp registry file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync temp registry file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp registry file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace registry file: %w", err)
	}
	return nil
}
