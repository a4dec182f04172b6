package agent

import (
	"fmt"
	"time"

	"github.com/mavecode/portfolio/internal/storage"
)

// Suggestion is one proactive hint derived from the owner's open tasks.
type Suggestion struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	TaskID  string `json:"task_id,omitempty"`
}

// Suggestions inspects up to 10 open tasks and produces deadline-proximity
// hints. Unparseable deadline strings are skipped silently; the agent stores
// deadlines as literal text, so anything may be in there.
func (a *Agent) Suggestions() ([]Suggestion, error) {
	tasks, err := a.store.ListTasks(storage.TaskFilter{OnlyIncomplete: true, Limit: contextTaskLimit})
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}

	now := a.clock.Now().UTC()
	var suggestions []Suggestion

	for _, t := range tasks {
		due, ok := parseDeadline(t.Deadline)
		if !ok {
			continue
		}
		switch {
		case !due.After(now.Add(24 * time.Hour)):
			suggestions = append(suggestions, Suggestion{
				Type:    "urgent",
				Message: fmt.Sprintf("Task '%s' is due soon!", t.Title),
				TaskID:  t.ID,
			})
		case !due.After(now.Add(72 * time.Hour)):
			suggestions = append(suggestions, Suggestion{
				Type:    "reminder",
				Message: fmt.Sprintf("Don't forget: '%s' is coming up.", t.Title),
				TaskID:  t.ID,
			})
		}
	}

	if len(tasks) > 5 {
		suggestions = append(suggestions, Suggestion{
			Type:    "productivity",
			Message: "You have quite a few tasks. Consider prioritizing the top 3 to focus on today.",
		})
	}
	if len(tasks) == 0 {
		suggestions = append(suggestions, Suggestion{
			Type:    "encouragement",
			Message: "All caught up! Great job staying on top of things.",
		})
	}
	return suggestions, nil
}

// parseDeadline accepts either a full RFC 3339 timestamp or a bare
// YYYY-MM-DD date.
func parseDeadline(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
