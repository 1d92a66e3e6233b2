package channel

import (
	"fmt"
	"strings"

	"github.com/larkspurlane/starterbot/internal/store"
)

// formatHistory renders history rows newest first, stopping before the line
// that would push the reply over historyCharBudget.
func formatHistory(rows []store.UsedEntry, days int) string {
	if len(rows) == 0 {
		return fmt.Sprintf("No entries in the last %d days.", days)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Starting words for the last %d days:\n", days))
	for _, e := range rows {
		line := fmt.Sprintf("%s  %s\n", e.Date, e.Word)
		if sb.Len()+len(line) > historyCharBudget {
			break
		}
		sb.WriteString(line)
	}
	return sb.String()
}
