package quests

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
)

// completionFlags are the context keys any of which marks a yes/no
// quest complete. manual_completion is the canonical one; the rest are
// accepted for compatibility with older clients.
var completionFlags = []string{
	"manual_completion",
	"quest_completed",
	"quest_complete",
	"completed",
	"is_complete",
}

// YesNoChecker evaluates binary quest completion ("Did you exercise
// today?").
type YesNoChecker struct{}

func (YesNoChecker) CheckCompletion(quest *models.UserMissionQuest, ctx Context) (bool, int, error) {
	if quest.Status == models.QuestCompleted {
		return true, 100, nil
	}
	for _, flag := range completionFlags {
		if contextBool(ctx, flag) {
			return true, 100, nil
		}
	}
	return false, quest.CompletionProgress, nil
}

// AccumulationChecker adds detected amounts toward a numeric target
// ("Run 50 km this month"). The template condition supplies target and
// unit; template-less quests fall back to the instance target and
// "count". Non-numeric detected values count as zero.
type AccumulationChecker struct{}

func (AccumulationChecker) CheckCompletion(quest *models.UserMissionQuest, ctx Context) (bool, int, error) {
	cond := condition(quest)

	target := quest.CompletionTarget
	if v, ok := conditionNumber(cond, "target"); ok {
		target = int(v)
	}
	unit := "count"
	if cond != nil {
		if u, ok := cond["unit"].(string); ok && u != "" {
			unit = u
		}
	}

	detected, ok := contextNumber(ctx, "detected_"+unit)
	if !ok {
		detected, _ = contextNumber(ctx, "detected_amount")
	}

	newProgress := quest.CompletionProgress + int(detected)
	if newProgress > target {
		newProgress = target
	}
	return newProgress >= target, newProgress, nil
}

// EntryGetter resolves a journal entry when the context carries no
// usable date. Absent lookups return (nil, nil).
type EntryGetter interface {
	EntryByID(ctx context.Context, id string) (*models.JournalEntry, error)
}

// FrequencyChecker counts journal occurrences inside the current
// day/week/month window ("Journal 3 times a week"). Occurrences are
// stored in the quest metadata and pruned to the current window on
// every check, which is what resets frequency quests between periods.
type FrequencyChecker struct {
	Entries EntryGetter
}

func (c FrequencyChecker) CheckCompletion(quest *models.UserMissionQuest, ctx Context) (bool, int, error) {
	cond := condition(quest)

	target := 1
	if v, ok := conditionNumber(cond, "target"); ok {
		target = int(v)
	}
	if target <= 0 {
		return true, 100, nil
	}

	period := "week"
	if cond != nil {
		if p, ok := cond["period"].(string); ok && p != "" {
			period = p
		}
	}

	now := time.Now().UTC()
	windowStart, windowEnd := periodWindow(now, period)

	occurrences := currentOccurrences(quest, windowStart, windowEnd)

	entryID, _ := ctx["journal_entry_id"].(string)
	entryDate, found := c.resolveEntryDate(ctx, entryID)
	if found && !entryDate.Before(windowStart) && entryDate.Before(windowEnd) {
		already := false
		for _, occ := range occurrences {
			if occ.entryID == entryID {
				already = true
				break
			}
		}
		if !already {
			occurrences = append(occurrences, occurrence{entryID: entryID, date: entryDate})
		}
	}

	storeOccurrences(quest, occurrences)

	count := len(occurrences)
	progress := int(math.Round(float64(count) / float64(target) * 100))
	if progress > 100 {
		progress = 100
	}
	return count >= target, progress, nil
}

var entryDateKeys = []string{"journal_date", "journal_created_at", "entry_date", "created_at"}

// resolveEntryDate finds the current entry's date from context keys,
// falling back to an entry lookup by id.
func (c FrequencyChecker) resolveEntryDate(ctx Context, entryID string) (time.Time, bool) {
	for _, key := range entryDateKeys {
		if t, ok := parseDateValue(ctx[key]); ok {
			return t, true
		}
	}

	if c.Entries == nil || entryID == "" {
		return time.Time{}, false
	}
	entry, err := c.Entries.EntryByID(context.Background(), entryID)
	if err != nil || entry == nil {
		return time.Time{}, false
	}
	return entry.CreatedAt.UTC(), true
}

type occurrence struct {
	entryID string
	date    time.Time
}

const occurrenceDateLayout = "2006-01-02"

// currentOccurrences loads the stored occurrences that fall inside the
// window. Entries with unparseable dates or from prior periods are
// dropped.
func currentOccurrences(quest *models.UserMissionQuest, windowStart, windowEnd time.Time) []occurrence {
	if quest.Metadata == nil {
		return nil
	}
	raw, _ := quest.Metadata["occurrences"].([]any)

	var current []occurrence
	for _, item := range raw {
		entry, _ := item.(map[string]any)
		if entry == nil {
			continue
		}
		id, _ := entry["entry_id"].(string)
		date, ok := parseDateValue(entry["date"])
		if !ok {
			continue
		}
		if date.Before(windowStart) || !date.Before(windowEnd) {
			continue
		}
		current = append(current, occurrence{entryID: id, date: date})
	}
	return current
}

func storeOccurrences(quest *models.UserMissionQuest, occurrences []occurrence) {
	stored := make([]any, 0, len(occurrences))
	for _, occ := range occurrences {
		stored = append(stored, map[string]any{
			"entry_id": occ.entryID,
			"date":     occ.date.Format(occurrenceDateLayout),
		})
	}
	if quest.Metadata == nil {
		quest.Metadata = make(map[string]any)
	}
	quest.Metadata["occurrences"] = stored
}

func parseDateValue(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d.UTC(), true
	case *time.Time:
		if d == nil {
			return time.Time{}, false
		}
		return d.UTC(), true
	case string:
		for _, layout := range []string{occurrenceDateLayout, time.RFC3339} {
			if t, err := time.Parse(layout, d); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// periodWindow returns the [start, end) window containing now for the
// given period. Unknown periods fall back to week.
func periodWindow(now time.Time, period string) (time.Time, time.Time) {
	year, month, day := now.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)

	switch period {
	case "day":
		return midnight, midnight.AddDate(0, 0, 1)
	case "month":
		first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		return first, first.AddDate(0, 1, 0)
	default: // week, Monday-based
		weekday := int(midnight.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday belongs to the week that started last Monday
		}
		monday := midnight.AddDate(0, 0, -(weekday - 1))
		return monday, monday.AddDate(0, 0, 7)
	}
}

// KeywordMatchChecker completes a quest when any configured keyword
// appears in the journal content or in the pre-extracted
// detected_keywords list.
type KeywordMatchChecker struct {
	matcher *KeywordMatcher
}

func NewKeywordMatchChecker() KeywordMatchChecker {
	return KeywordMatchChecker{matcher: NewKeywordMatcher()}
}

func (c KeywordMatchChecker) CheckCompletion(quest *models.UserMissionQuest, ctx Context) (bool, int, error) {
	keywords := conditionKeywords(condition(quest))
	if len(keywords) == 0 {
		return false, quest.CompletionProgress, nil
	}

	var detected []string
	switch v := ctx["detected_keywords"].(type) {
	case []string:
		detected = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				detected = append(detected, s)
			}
		}
	}
	for _, keyword := range keywords {
		for _, d := range detected {
			if strings.EqualFold(keyword, d) {
				return true, 100, nil
			}
		}
	}

	content, _ := ctx["journal_content"].(string)
	if c.matcher != nil && len(c.matcher.Match(content, keywords)) > 0 {
		return true, 100, nil
	}
	return false, quest.CompletionProgress, nil
}

func conditionKeywords(cond map[string]any) []string {
	if cond == nil {
		return nil
	}
	switch v := cond["keywords"].(type) {
	case []string:
		return v
	case []any:
		keywords := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				keywords = append(keywords, s)
			}
		}
		return keywords
	default:
		return nil
	}
}
