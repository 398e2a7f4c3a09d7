// Package patterns persists chord progressions as JSON records on disk.
package patterns

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RyanBlaney/sonido-acorde/algorithms/common"
	"github.com/RyanBlaney/sonido-acorde/logging"
	"github.com/RyanBlaney/sonido-acorde/theory"
)

// ErrNotFound is returned when no record has the requested ID
var ErrNotFound = errors.New("pattern not found")

const (
	userDir    = "user"
	presetsDir = "presets"
)

// Record is a saved progression
type Record struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	TempoBPM float64        `json:"tempo_bpm"`
	Key      theory.Key     `json:"key"`
	Tags     []string       `json:"tags"`
	Chords   []theory.Chord `json:"chords"`
	Preset   bool           `json:"preset,omitempty"`
	Created  time.Time      `json:"created"`
	Modified time.Time      `json:"modified"`
}

// Query filters records. Zero fields match everything; Tags matches a
// record carrying any of them.
type Query struct {
	Name string
	Tags []string
	Key  *theory.Key
}

func (q Query) matches(r Record) bool {
	if q.Name != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(q.Name)) {
		return false
	}
	if len(q.Tags) > 0 && !slices.ContainsFunc(q.Tags, func(t string) bool { return slices.Contains(r.Tags, t) }) {
		return false
	}
	if q.Key != nil && r.Key != *q.Key {
		return false
	}
	return true
}

// Store keeps one JSON file per record under dir/user and dir/presets
type Store struct {
	dir    string
	mu     sync.RWMutex
	now    func() time.Time
	logger logging.Logger
}

// NewStore creates the directory layout under dir
func NewStore(dir string, logger logging.Logger) (*Store, error) {
	for _, sub := range []string{userDir, presetsDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create pattern store: %w", err)
		}
	}
	return &Store{dir: dir, now: time.Now, logger: logging.Component(logger, "patterns")}, nil
}

// Dir returns the store's root directory
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(id string, preset bool) string {
	sub := userDir
	if preset {
		sub = presetsDir
	}
	return filepath.Join(s.dir, sub, id+".json")
}

// Save writes record, assigning an ID and creation time on first save and
// refreshing the modification time on every save
func (s *Store) Save(record Record) (Record, error) {
	if strings.TrimSpace(record.Name) == "" {
		return Record{}, common.InvalidInput("save pattern", "name is required")
	}
	if record.TempoBPM <= 0 {
		return Record{}, common.InvalidInput("save pattern", "tempo must be positive, got %v", record.TempoBPM)
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	} else if _, err := uuid.Parse(record.ID); err != nil {
		return Record{}, common.InvalidInput("save pattern", "malformed id %q", record.ID)
	}

	now := s.now().UTC()
	if record.Created.IsZero() {
		record.Created = now
	}
	record.Modified = now
	if record.Tags == nil {
		record.Tags = []string{}
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return Record{}, fmt.Errorf("encode pattern: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	path := s.path(record.ID, record.Preset)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Record{}, fmt.Errorf("write pattern: %w", err)
	}

	s.logger.Info("saved pattern", logging.Fields{"id": record.ID, "name": record.Name, "path": path})
	return record, nil
}

// Load reads a record by ID from either directory
func (s *Store) Load(id string) (Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, common.InvalidInput("load pattern", "malformed id %q", id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, preset := range []bool{false, true} {
		record, err := readRecord(s.path(id, preset))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return record, err
	}
	return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// List returns every record ordered by name, then ID. Files that fail to
// decode are skipped with a warning.
func (s *Store) List() ([]Record, error) {
	return s.Search(Query{})
}

// Search returns the records matching q, ordered like List
func (s *Store) Search(q Query) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []Record
	for _, sub := range []string{userDir, presetsDir} {
		paths, err := filepath.Glob(filepath.Join(s.dir, sub, "*.json"))
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			record, err := readRecord(path)
			if err != nil {
				s.logger.Warn("skipping unreadable pattern", logging.Fields{"path": path, "reason": err.Error()})
				continue
			}
			if q.matches(record) {
				records = append(records, record)
			}
		}
	}

	slices.SortFunc(records, func(a, b Record) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return records, nil
}

// Delete removes a record by ID
func (s *Store) Delete(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.InvalidInput("delete pattern", "malformed id %q", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, preset := range []bool{false, true} {
		err := os.Remove(s.path(id, preset))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("delete pattern: %w", err)
		}
		s.logger.Info("deleted pattern", logging.Fields{"id": id})
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

func readRecord(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return record, nil
}
