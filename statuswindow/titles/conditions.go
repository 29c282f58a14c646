// Package titles evaluates unlock conditions against a user's current
// state and awards the titles whose conditions hold. Conditions are
// authored JSON with a "type" tag; compound and/or/not conditions nest
// recursively.
package titles

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
)

// ErrMissingConditionField reports malformed authored conditions.
// Malformed config fails loud rather than silently evaluating false.
var ErrMissingConditionField = fmt.Errorf("condition missing required field")

// Store is the persistence surface condition evaluation reads from.
type Store interface {
	ThemeByName(ctx context.Context, userID, name string) (*models.Theme, error)
	ThemesByUser(ctx context.Context, userID string) ([]*models.Theme, error)
	SkillByName(ctx context.Context, userID, name string) (*models.Skill, error)
	HasSkillWithRank(ctx context.Context, userID string, ranks []string) (bool, error)
	QuestByID(ctx context.Context, userID, id string) (*models.UserMissionQuest, error)
	CountCompletedQuests(ctx context.Context, userID string) (int, error)
	CountEntries(ctx context.Context, userID string) (int, error)
	EntriesByUser(ctx context.Context, userID string) ([]*models.JournalEntry, error)
}

// Evaluator resolves one condition tree for one user. An unknown
// condition type evaluates to false so a freshly authored title cannot
// break unlock checks for every other title.
type Evaluator struct {
	store Store
}

func NewEvaluator(store Store) *Evaluator {
	return &Evaluator{store: store}
}

func (e *Evaluator) Evaluate(ctx context.Context, userID string, condition map[string]any) (bool, error) {
	condType, err := requireString(condition, "type")
	if err != nil {
		return false, err
	}

	switch condType {
	case "theme_level":
		return e.themeLevel(ctx, userID, condition)
	case "skill_level":
		return e.skillLevel(ctx, userID, condition)
	case "skill_rank":
		return e.skillRank(ctx, userID, condition)
	case "total_xp":
		return e.totalXP(ctx, userID, condition)
	case "theme_xp":
		return e.themeXP(ctx, userID, condition)
	case "quest_completion_count":
		return e.questCompletionCount(ctx, userID, condition)
	case "specific_quest_completed":
		return e.questStatus(ctx, userID, condition, models.QuestCompleted)
	case "quest_failed":
		return e.questStatus(ctx, userID, condition, models.QuestFailed)
	case "journal_count":
		return e.journalCount(ctx, userID, condition)
	case "journal_streak":
		return e.journalStreak(ctx, userID, condition)
	case "time_based":
		return e.timeBased(ctx, userID, condition)
	case "corrosion_level":
		return e.corrosionLevel(ctx, userID, condition)
	case "and", "or":
		return e.compound(ctx, userID, condition, condType)
	case "not":
		return e.negation(ctx, userID, condition)
	default:
		return false, nil
	}
}

func (e *Evaluator) themeLevel(ctx context.Context, userID string, cond map[string]any) (bool, error) {
	name, err := requireString(cond, "theme")
	if err != nil {
		return false, err
	}
	value, err := requireNumber(cond, "value")
	if err != nil {
		return false, err
	}
	theme, err := e.store.ThemeByName(ctx, userID, name)
	if err != nil || theme == nil {
		return false, err
	}
	return float64(theme.Level) >= value, nil
}

func (e *Evaluator) skillLevel(ctx context.Context, userID string, cond map[string]any) (bool, error) {
	name, err := requireString(cond, "skill")
	if err != nil {
		return false, err
	}
	value, err := requireNumber(cond, "value")
	if err != nil {
		return false, err
	}
	skill, err := e.store.SkillByName(ctx, userID, name)
	if err != nil || skill == nil {
		return false, err
	}
	return float64(skill.Level) >= value, nil
}

// skillRank is satisfied by any skill at the required rank or higher.
func (e *Evaluator) skillRank(ctx context.Context, userID string, cond map[string]any) (bool, error) {
	rank, err := requireString(cond, "rank")
	if err != nil {
		return false, err
	}
	idx := -1
	for i, r := range models.SkillRankOrder {
		if r == rank {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	return e.store.HasSkillWithRank(ctx, userID, models.SkillRankOrder[idx:])
}

func (e *Evaluator) totalXP(ctx context.Context, userID string, cond map[string]any) (bool, error) {
	value, err := requireNumber(cond, "value")
	if err != nil {
		return false, err
	}
	themes, err := e.store.ThemesByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	var total float64
	for _, theme := range themes {
		total += theme.XP
	}
	return total >= value, nil
}

func (e *Evaluator) themeXP(ctx context.Context, userID string, cond map[string]any) (bool, error) {
	name, err := requireString(cond, "theme")
	if err != nil {
		return false, err
	}
	value, err := requireNumber(cond, "value")
	if err != nil {
		return false, err
	}
	theme, err := e.store.ThemeByName(ctx, userID, name)
	if err != nil || theme == nil {
		return false, err
	}
	return theme.XP >= value, nil
}

func (e *Evaluator) questCompletionCount(ctx context.Context, userID string, cond map[string]any) (bool, error) {
	value, err := requireNumber(cond, "value")
	if err != nil {
		return false, err
	}
	count, err := e.store.CountCompletedQuests(ctx, userID)
	if err != nil {
		return false, err
	}
	return float64(count) >= value, nil
}

func (e *Evaluator) questStatus(ctx context.Context, userID string, cond map[string]any, status string) (bool, error) {
	questID, err := requireString(cond, "quest_id")
	if err != nil {
		return false, err
	}
	quest, err := e.store.QuestByID(ctx, userID, questID)
	if err != nil || quest == nil {
		return false, err
	}
	return quest.Status == status, nil
}

func (e *Evaluator) journalCount(ctx context.Context, userID string, cond map[string]any) (bool, error) {
	value, err := requireNumber(cond, "value")
	if err != nil {
		return false, err
	}
	count, err := e.store.CountEntries(ctx, userID)
	if err != nil {
		return false, err
	}
	return float64(count) >= value, nil
}

// journalStreak checks the longest run of consecutive calendar days
// with at least one entry, not just the current streak.
func (e *Evaluator) journalStreak(ctx context.Context, userID string, cond map[string]any) (bool, error) {
	value, err := requireNumber(cond, "value")
	if err != nil {
		return false, err
	}
	days, err := e.distinctEntryDays(ctx, userID)
	if err != nil {
		return false, err
	}
	return float64(maxConsecutiveRun(days)) >= value, nil
}

func (e *Evaluator) timeBased(ctx context.Context, userID string, cond map[string]any) (bool, error) {
	value, err := requireNumber(cond, "days_active")
	if err != nil {
		return false, err
	}
	days, err := e.distinctEntryDays(ctx, userID)
	if err != nil {
		return false, err
	}
	return float64(len(days)) >= value, nil
}

func (e *Evaluator) corrosionLevel(ctx context.Context, userID string, cond map[string]any) (bool, error) {
	name, err := requireString(cond, "theme")
	if err != nil {
		return false, err
	}
	minLevel, err := requireString(cond, "min_level")
	if err != nil {
		return false, err
	}
	minIdx := models.CorrosionIndex(models.CorrosionLevel(minLevel))
	if minIdx < 0 {
		return false, nil
	}
	theme, err := e.store.ThemeByName(ctx, userID, name)
	if err != nil || theme == nil {
		return false, err
	}
	currentIdx := models.CorrosionIndex(theme.Corrosion)
	return currentIdx >= minIdx, nil
}

func (e *Evaluator) compound(ctx context.Context, userID string, cond map[string]any, op string) (bool, error) {
	subs, ok := cond["conditions"].([]any)
	if !ok {
		return false, fmt.Errorf("%w: conditions", ErrMissingConditionField)
	}
	for _, sub := range subs {
		subCond, ok := sub.(map[string]any)
		if !ok {
			return false, fmt.Errorf("%w: conditions", ErrMissingConditionField)
		}
		met, err := e.Evaluate(ctx, userID, subCond)
		if err != nil {
			return false, err
		}
		if op == "and" && !met {
			return false, nil
		}
		if op == "or" && met {
			return true, nil
		}
	}
	return op == "and", nil
}

func (e *Evaluator) negation(ctx context.Context, userID string, cond map[string]any) (bool, error) {
	sub, ok := cond["condition"].(map[string]any)
	if !ok {
		return false, fmt.Errorf("%w: condition", ErrMissingConditionField)
	}
	met, err := e.Evaluate(ctx, userID, sub)
	if err != nil {
		return false, err
	}
	return !met, nil
}

// distinctEntryDays returns the user's journaled calendar days in UTC,
// deduplicated and sorted ascending.
func (e *Evaluator) distinctEntryDays(ctx context.Context, userID string) ([]time.Time, error) {
	entries, err := e.store.EntriesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[time.Time]bool, len(entries))
	for _, entry := range entries {
		at := entry.CreatedAt.UTC()
		day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
		seen[day] = true
	}

	days := make([]time.Time, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

func maxConsecutiveRun(days []time.Time) int {
	if len(days) == 0 {
		return 0
	}
	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}

func requireString(cond map[string]any, key string) (string, error) {
	v, ok := cond[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingConditionField, key)
	}
	return v, nil
}

func requireNumber(cond map[string]any, key string) (float64, error) {
	switch v := cond[key].(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrMissingConditionField, key)
	}
}
