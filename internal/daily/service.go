// Package daily implements the selection engine: suggestion intake, history
// queries, and the once-per-day scheduler that picks and announces the next
// word.
package daily

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/larkspurlane/starterbot/internal/lexicon"
	"github.com/larkspurlane/starterbot/internal/store"
)

// Rejection reasons returned by SubmitSuggestion. These are user errors,
// not system failures; transports map them to reply text.
var (
	ErrInvalidFormat = errors.New("word must be exactly 5 letters a-z")
	ErrNotInLexicon  = errors.New("word is not in the lexicon")
	ErrAlreadyUsed   = errors.New("word was already used")
	ErrAlreadyQueued = errors.New("word is already queued")
)

const (
	DefaultHistoryDays = 14
	MaxHistoryDays     = 3650
)

// Service answers suggestion submissions and history queries against the
// shared store and the immutable lexicon.
type Service struct {
	store *store.Store
	lex   lexicon.Lexicon
	tz    *time.Location
	now   func() time.Time
}

func NewService(st *store.Store, lex lexicon.Lexicon, tz *time.Location) *Service {
	return &Service{store: st, lex: lex, tz: tz, now: time.Now}
}

// SubmitSuggestion validates and enqueues a candidate word for userID.
// It returns the normalized word, or one of the Err* rejection reasons.
// Acceptance persists the queue before returning.
func (s *Service) SubmitSuggestion(userID, word string) (string, error) {
	w := strings.ToLower(strings.TrimSpace(word))
	if len(w) != 5 {
		return "", ErrInvalidFormat
	}
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return "", ErrInvalidFormat
		}
	}
	if _, ok := s.lex[w]; !ok {
		return "", ErrNotInLexicon
	}

	var rejection error
	s.store.WithRead(func(st *store.BotState) {
		if st.Used.Contains(w) {
			rejection = ErrAlreadyUsed
			return
		}
		for _, item := range st.Queue {
			if strings.EqualFold(item.Word, w) {
				rejection = ErrAlreadyQueued
				return
			}
		}
	})
	if rejection != nil {
		return "", rejection
	}

	s.store.WithWrite(func(st *store.BotState) {
		st.Queue = append(st.Queue, store.QueueItem{UserID: userID, Word: w})
	})
	return w, nil
}

// History returns the selections dated within the last daysBack days
// (clamped to [1, MaxHistoryDays]) in the configured timezone, newest date
// first, ties broken by word ascending.
func (s *Service) History(daysBack int) []store.UsedEntry {
	if daysBack < 1 {
		daysBack = 1
	}
	if daysBack > MaxHistoryDays {
		daysBack = MaxHistoryDays
	}
	cutoff := s.now().In(s.tz).AddDate(0, 0, -daysBack).Format(store.DateFormat)

	var rows []store.UsedEntry
	s.store.WithRead(func(st *store.BotState) {
		for _, e := range st.History {
			if e.Date >= cutoff {
				rows = append(rows, e)
			}
		}
	})
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date > rows[j].Date
		}
		return rows[i].Word < rows[j].Word
	})
	return rows
}
