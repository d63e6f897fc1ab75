// Package transcript maintains the append-only conversation log. Entries are
// addressed by ID so that in-place amendments never depend on list position.
package transcript

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/locoxsoco/GG-Assist/internal/models"
)

// Store holds the ordered transcript for one session. All methods are safe
// for concurrent use; mutations are serialized by the internal mutex.
type Store struct {
	mu      sync.RWMutex
	entries []models.TranscriptEntry
	index   map[models.EntryID]int
	nextSeq int
	logger  *slog.Logger
	now     func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used to report amendment misses.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = l
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty transcript store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		index:  make(map[models.EntryID]int),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Append adds an entry to the end of the transcript and returns its ID.
// A zero timestamp is filled with the current time.
func (s *Store) Append(entry models.TranscriptEntry) models.EntryID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq++
	entry.ID = models.EntryID(fmt.Sprintf("entry-%d", s.nextSeq))
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}

	s.index[entry.ID] = len(s.entries)
	s.entries = append(s.entries, entry)
	return entry.ID
}

// Amend applies fn to the entry with the given ID. The entry keeps its
// position in the log. Amending an unknown ID is a logged no-op.
func (s *Store) Amend(id models.EntryID, fn func(*models.TranscriptEntry)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		s.logger.Warn("amend target not found, ignoring", "entry_id", string(id))
		return
	}
	fn(&s.entries[i])
	// The ID is the entry's identity; amendments must not change it.
	s.entries[i].ID = id
}

// Get returns a copy of the entry with the given ID.
func (s *Store) Get(id models.EntryID) (models.TranscriptEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return models.TranscriptEntry{}, false
	}
	return cloneEntry(s.entries[i]), true
}

// Entries returns a snapshot of the transcript in append order. The caller
// owns the returned slice; later mutations do not leak into it.
func (s *Store) Entries() []models.TranscriptEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TranscriptEntry, len(s.entries))
	for i, e := range s.entries {
		out[i] = cloneEntry(e)
	}
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func cloneEntry(e models.TranscriptEntry) models.TranscriptEntry {
	e.Payload = e.Payload.Clone()
	return e
}

// Save writes the current transcript snapshot as indented JSON into dir,
// using a timestamped filename. Returns the path written.
func (s *Store) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create transcript dir: %w", err)
	}

	entries := s.Entries()
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal transcript: %w", err)
	}

	name := fmt.Sprintf("conversation-%s.json", s.now().UTC().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}
