package channel

import (
	"fmt"
	"strings"
	"testing"

	"github.com/larkspurlane/starterbot/internal/store"
)

func TestFormatHistory_Empty(t *testing.T) {
	got := formatHistory(nil, 7)
	if got != "No entries in the last 7 days." {
		t.Errorf("formatHistory = %q", got)
	}
}

func TestFormatHistory_Lines(t *testing.T) {
	rows := []store.UsedEntry{
		{Date: "2026-08-22", Word: "quash"},
		{Date: "2026-08-21", Word: "crane"},
	}
	got := formatHistory(rows, 14)
	if !strings.Contains(got, "last 14 days") {
		t.Errorf("missing header: %q", got)
	}
	if !strings.Contains(got, "2026-08-22  quash\n") || !strings.Contains(got, "2026-08-21  crane\n") {
		t.Errorf("missing rows: %q", got)
	}
	if strings.Index(got, "quash") > strings.Index(got, "crane") {
		t.Errorf("rows out of order: %q", got)
	}
}

func TestFormatHistory_StopsAtBudget(t *testing.T) {
	var rows []store.UsedEntry
	for i := 0; i < 1000; i++ {
		rows = append(rows, store.UsedEntry{
			Date: fmt.Sprintf("2026-%02d-%02d", i/31+1, i%31+1),
			Word: "words",
		})
	}
	got := formatHistory(rows, 3650)
	if len(got) > historyCharBudget {
		t.Errorf("len = %d, exceeds budget %d", len(got), historyCharBudget)
	}
	// budget truncates, it does not empty the reply
	if strings.Count(got, "\n") < 10 {
		t.Errorf("suspiciously short reply: %q", got)
	}
}
