// Package store persists the bot's selection state: the set of words ever
// used, the dated selection history, and the queue of pending suggestions.
// One JSON snapshot file backs an RWMutex-guarded in-memory copy; every
// mutation is written back synchronously via temp-file-and-rename.
package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// DateFormat is the calendar-date encoding used throughout the snapshot.
// ISO dates compare correctly as strings, which history queries rely on.
const DateFormat = "2006-01-02"

// WordSet serializes as a sorted JSON array of strings.
type WordSet map[string]struct{}

func (s WordSet) Contains(w string) bool {
	_, ok := s[w]
	return ok
}

func (s WordSet) MarshalJSON() ([]byte, error) {
	words := make([]string, 0, len(s))
	for w := range s {
		words = append(words, w)
	}
	sort.Strings(words)
	return json.Marshal(words)
}

func (s *WordSet) UnmarshalJSON(data []byte) error {
	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return err
	}
	set := make(WordSet, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	*s = set
	return nil
}

// UsedEntry records one past selection. SuggestedBy is empty when the
// sampler chose the word.
type UsedEntry struct {
	Date        string `json:"date"`
	Word        string `json:"word"`
	SuggestedBy string `json:"suggestedBy,omitempty"`
}

// QueueItem is one externally submitted candidate awaiting validation.
type QueueItem struct {
	UserID string `json:"userId"`
	Word   string `json:"word"`
}

// BotState is the full persisted state. Every word in History is also in
// Used; MarkUsed is the only mutation that touches both.
type BotState struct {
	Used    WordSet     `json:"used"`
	History []UsedEntry `json:"history"`
	Queue   []QueueItem `json:"queue"`
}

// MarkUsed records word as selected for date, with optional attribution.
func (s *BotState) MarkUsed(date, word, suggestedBy string) {
	if s.Used == nil {
		s.Used = make(WordSet)
	}
	s.Used[word] = struct{}{}
	s.History = append(s.History, UsedEntry{Date: date, Word: word, SuggestedBy: suggestedBy})
}

// Store guards a BotState with a reader/writer lock and keeps the snapshot
// file in sync. The lock is never exposed; callers work through WithRead
// and WithWrite closures.
type Store struct {
	path  string
	mu    sync.RWMutex
	state BotState
}

func New(path string) *Store {
	return &Store{
		path:  path,
		state: BotState{Used: make(WordSet)},
	}
}

// Load replaces the in-memory state with the snapshot on disk. A missing
// file leaves the empty default in place; a malformed file is an error and
// fatal at startup.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read state %s: %w", s.path, err)
	}
	var state BotState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("parse state %s: %w", s.path, err)
	}
	if state.Used == nil {
		state.Used = make(WordSet)
	}
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return nil
}

// save writes the full state to a temp file, syncs it, then renames it over
// the snapshot path so readers never observe a partial write. Caller holds
// the lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(&s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp state: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp state: %w", err)
	}
	return nil
}

// WithRead runs fn under the shared read lock. fn must not retain the
// *BotState beyond the call.
func (s *Store) WithRead(fn func(*BotState)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.state)
}

// WithWrite runs fn under the exclusive write lock, then persists the full
// state before returning. A failed save is logged and swallowed: the
// in-memory mutation stands, and the next WithWrite rewrites the whole
// snapshot anyway. Until then disk may lag memory.
func (s *Store) WithWrite(fn func(*BotState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	if err := s.save(); err != nil {
		log.Printf("[store] save failed: %v", err)
	}
}
