package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_AbsentFileIsEmptyState(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "state.json"))
	if err := s.Load(); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	s.WithRead(func(st *BotState) {
		if len(st.Used) != 0 || len(st.History) != 0 || len(st.Queue) != 0 {
			t.Errorf("expected empty state, got %+v", st)
		}
	})
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := New(path).Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s := New(path)
	s.WithWrite(func(st *BotState) {
		st.MarkUsed("2026-08-20", "crane", "42")
		st.MarkUsed("2026-08-21", "quash", "")
		st.Queue = append(st.Queue, QueueItem{UserID: "7", Word: "slate"})
	})

	loaded := New(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	loaded.WithRead(func(st *BotState) {
		if !st.Used.Contains("crane") || !st.Used.Contains("quash") {
			t.Errorf("used set lost entries: %v", st.Used)
		}
		if len(st.History) != 2 {
			t.Fatalf("len(history) = %d, want 2", len(st.History))
		}
		if st.History[0] != (UsedEntry{Date: "2026-08-20", Word: "crane", SuggestedBy: "42"}) {
			t.Errorf("history[0] = %+v", st.History[0])
		}
		if st.History[1].SuggestedBy != "" {
			t.Errorf("sampler pick should have no attribution: %+v", st.History[1])
		}
		if len(st.Queue) != 1 || st.Queue[0].Word != "slate" {
			t.Errorf("queue = %+v", st.Queue)
		}
	})
}

func TestWithWrite_AtomicSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	s := New(path)
	s.WithWrite(func(st *BotState) {
		st.MarkUsed("2026-08-22", "fjord", "")
	})

	// the snapshot reflects the mutation
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var st BotState
	if err := json.Unmarshal(data, &st); err != nil {
		t.Fatalf("parse snapshot: %v", err)
	}
	if !st.Used.Contains("fjord") {
		t.Errorf("snapshot missing mutation: %v", st.Used)
	}

	// no temp file remains
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestWordSet_SortedJSON(t *testing.T) {
	set := WordSet{"zzzzz": {}, "aaaaa": {}, "mmmmm": {}}
	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["aaaaa","mmmmm","zzzzz"]` {
		t.Errorf("marshaled = %s, want sorted array", data)
	}
}

func TestWithRead_SeesPriorWrite(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "state.json"))
	s.WithWrite(func(st *BotState) {
		st.MarkUsed("2026-08-23", "gumbo", "9")
	})
	var used bool
	s.WithRead(func(st *BotState) {
		used = st.Used.Contains("gumbo")
	})
	if !used {
		t.Error("read after write did not observe the mutation")
	}
}

func TestWithWrite_SaveFailureKeepsMemoryState(t *testing.T) {
	// a directory at the snapshot path makes the rename fail
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	if err := os.Mkdir(path, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	s := New(path)
	s.WithWrite(func(st *BotState) {
		st.MarkUsed("2026-08-23", "crane", "")
	})

	var used bool
	s.WithRead(func(st *BotState) {
		used = st.Used.Contains("crane")
	})
	if !used {
		t.Error("in-memory mutation should survive a failed save")
	}
}
