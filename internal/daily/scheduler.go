package daily

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	rcron "github.com/robfig/cron/v3"

	"github.com/larkspurlane/starterbot/internal/lexicon"
	"github.com/larkspurlane/starterbot/internal/store"
)

// DefaultAlpha is the sampler sharpening exponent used by the daily cycle.
const DefaultAlpha = 2.0

// cycleSpec fires at 23:55 local time, once per day.
const cycleSpec = "55 23 * * *"

// Announcer delivers a selected word to the outbound channel. suggestedBy is
// empty when the sampler chose the word. Implementations must tolerate being
// invoked again with the same date: the reuse check re-announces after a
// failed delivery.
type Announcer interface {
	Announce(ctx context.Context, date, word, suggestedBy string) error
}

// Scheduler runs the daily selection cycle: ensure tomorrow's date has a
// word (reusing an existing entry, draining the suggestion queue, or falling
// back to a weighted draw), then announce it.
type Scheduler struct {
	store     *store.Store
	lex       lexicon.Lexicon
	tz        *time.Location
	announcer Announcer

	alpha float64
	rnd   lexicon.Rand
	now   func() time.Time

	cron *rcron.Cron
}

func NewScheduler(st *store.Store, lex lexicon.Lexicon, tz *time.Location, a Announcer) *Scheduler {
	return &Scheduler{
		store:     st,
		lex:       lex,
		tz:        tz,
		announcer: a,
		alpha:     DefaultAlpha,
		rnd:       lexicon.SystemRand,
		now:       time.Now,
	}
}

// SetAlpha overrides the sampler exponent. Zero or negative keeps the default.
func (s *Scheduler) SetAlpha(alpha float64) {
	if alpha > 0 {
		s.alpha = alpha
	}
}

// Start runs one cycle immediately, then schedules the next one for every
// 23:55 in the configured timezone. Cycle failures are logged and never stop
// the schedule.
func (s *Scheduler) Start(ctx context.Context) {
	go s.runCycle(ctx)

	s.cron = rcron.New(rcron.WithLocation(s.tz))
	if _, err := s.cron.AddFunc(cycleSpec, func() {
		s.runCycle(context.Background())
	}); err != nil {
		// cycleSpec is a constant; this only fires if it is edited badly.
		log.Printf("[scheduler] register cycle: %v", err)
		return
	}
	s.cron.Start()
	log.Printf("[scheduler] daily cycle scheduled at 23:55 %s", s.tz)
}

// Stop halts the schedule and waits briefly for a running cycle.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		log.Printf("[scheduler] stop timeout waiting for running cycle")
	}
	log.Printf("[scheduler] stopped")
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if err := s.RunOnce(ctx); err != nil {
		log.Printf("[scheduler] cycle failed: %v", err)
	}
}

// RunOnce executes one selection cycle for tomorrow's date. It is idempotent
// per date: if a previous cycle already recorded a word for the target date,
// that exact word and attribution are re-announced and nothing else changes.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	target := s.now().In(s.tz).AddDate(0, 0, 1).Format(store.DateFormat)

	// 1) Reuse an existing selection (a previous cycle may have recorded
	// the word but failed before or during the announce).
	var existing *store.UsedEntry
	s.store.WithRead(func(st *store.BotState) {
		for i := len(st.History) - 1; i >= 0; i-- {
			if st.History[i].Date == target {
				e := st.History[i]
				existing = &e
				return
			}
		}
	})
	if existing != nil {
		return s.announcer.Announce(ctx, target, existing.Word, existing.SuggestedBy)
	}

	// 2) Drain the suggestion queue: drop entries that are no longer valid,
	// accept the first one that is in the lexicon and unused. Dropped
	// submitters are not notified.
	var word, suggestedBy string
	for word == "" {
		var item *store.QueueItem
		s.store.WithWrite(func(st *store.BotState) {
			if len(st.Queue) == 0 {
				return
			}
			it := st.Queue[0]
			st.Queue = st.Queue[1:]
			item = &it
		})
		if item == nil {
			break
		}
		w := strings.ToLower(item.Word)
		if _, ok := s.lex[w]; !ok {
			log.Printf("[scheduler] dropping queued %q from %s: not in lexicon", w, item.UserID)
			continue
		}
		var used bool
		s.store.WithRead(func(st *store.BotState) {
			used = st.Used.Contains(w)
		})
		if used {
			log.Printf("[scheduler] dropping queued %q from %s: already used", w, item.UserID)
			continue
		}
		s.store.WithWrite(func(st *store.BotState) {
			st.MarkUsed(target, w, item.UserID)
		})
		word, suggestedBy = w, item.UserID
	}

	// 3) Weighted fallback when no queued suggestion qualified.
	if word == "" {
		var exclude map[string]struct{}
		s.store.WithRead(func(st *store.BotState) {
			exclude = make(map[string]struct{}, len(st.Used))
			for w := range st.Used {
				exclude[w] = struct{}{}
			}
		})
		w, ok := lexicon.PickWeighted(s.lex, exclude, s.alpha, s.rnd)
		if !ok {
			return fmt.Errorf("no candidate words left for %s", target)
		}
		s.store.WithWrite(func(st *store.BotState) {
			st.MarkUsed(target, w, "")
		})
		word = w
	}

	// 4) Announce. On failure the word stays marked used; the next cycle's
	// reuse check re-announces it.
	if err := s.announcer.Announce(ctx, target, word, suggestedBy); err != nil {
		return fmt.Errorf("announce %s: %w", target, err)
	}
	return nil
}
