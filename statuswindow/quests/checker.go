// Package quests evaluates journal entries against a user's active
// quests. Each completion type (yes/no, accumulation, frequency,
// keyword match) has its own checker; the Matcher builds a shared
// context from one entry and dispatches to the checker a quest's
// template condition names.
package quests

import (
	"github.com/statuswindow/statuswindow/statuswindow/database/models"
)

// Completion types. Unknown tags resolve to no checker and the quest
// is skipped rather than failed.
const (
	TypeYesNo        = "yes_no"
	TypeAccumulation = "accumulation"
	TypeFrequency    = "frequency"
	TypeKeywordMatch = "keyword_match"
)

// Context carries information extracted from one journal entry:
//
//	journal_content    string
//	journal_entry_id   string
//	journal_created_at time.Time
//	detected_<unit>    float64 (minutes, hours, count, pages, ...)
//	manual_completion  bool
//	detected_keywords  []string
type Context map[string]any

// CompletionChecker evaluates a quest's progress against a context.
// Checkers never mutate the quest; the caller applies the result.
type CompletionChecker interface {
	CheckCompletion(quest *models.UserMissionQuest, ctx Context) (complete bool, newProgress int, err error)
}

// condition returns the quest's template completion condition, or nil
// for template-less quests.
func condition(quest *models.UserMissionQuest) map[string]any {
	if quest.Template == nil {
		return nil
	}
	return quest.Template.CompletionCondition
}

// conditionNumber reads a numeric condition field; JSON decoding may
// yield float64 or int64.
func conditionNumber(cond map[string]any, key string) (float64, bool) {
	if cond == nil {
		return 0, false
	}
	switch v := cond[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// contextNumber reads a numeric context value, treating anything
// non-numeric as absent.
func contextNumber(ctx Context, key string) (float64, bool) {
	switch v := ctx[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func contextBool(ctx Context, key string) bool {
	v, _ := ctx[key].(bool)
	return v
}
