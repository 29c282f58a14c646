package quests

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
	"github.com/statuswindow/statuswindow/statuswindow/events"
)

// Store is the persistence surface the matcher needs.
type Store interface {
	ActiveQuests(ctx context.Context, userID string) ([]*models.UserMissionQuest, error)
	UpdateQuest(ctx context.Context, quest *models.UserMissionQuest) error
	EntryGetter
}

// amountPattern extracts one detected quantity from journal text. Only
// the first match per unit counts.
type amountPattern struct {
	unit string
	re   *regexp.Regexp
}

var amountPatterns = []amountPattern{
	{"minutes", regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:minute|min)s?\b`)},
	{"hours", regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:hour|hr)s?\b`)},
	{"count", regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:time|rep)s?\b`)},
	{"pages", regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*pages?\b`)},
	{"chapters", regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*chapters?\b`)},
	{"km", regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:km|kilometer|kilometre)s?\b`)},
	{"miles", regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*miles?\b`)},
	{"steps", regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*steps?\b`)},
	{"calories", regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:calorie|kcal)s?\b`)},
}

// Matcher runs every active quest of an entry's author through the
// checker its completion type names, persists progress changes, and
// announces completions on the bus.
type Matcher struct {
	store    Store
	bus      *events.Bus
	checkers map[string]CompletionChecker
}

func NewMatcher(store Store, bus *events.Bus) *Matcher {
	return &Matcher{
		store: store,
		bus:   bus,
		checkers: map[string]CompletionChecker{
			TypeYesNo:        YesNoChecker{},
			TypeAccumulation: AccumulationChecker{},
			TypeFrequency:    FrequencyChecker{Entries: store},
			TypeKeywordMatch: NewKeywordMatchChecker(),
		},
	}
}

// MatchJournalEntry evaluates one entry against the author's active
// quests and returns the quests whose state changed. A checker failure
// skips that quest and leaves the rest of the batch untouched.
func (m *Matcher) MatchJournalEntry(ctx context.Context, entry *models.JournalEntry) ([]*models.UserMissionQuest, error) {
	quests, err := m.store.ActiveQuests(ctx, entry.UserID)
	if err != nil {
		return nil, err
	}
	if len(quests) == 0 {
		return nil, nil
	}

	checkCtx := m.buildContext(entry)

	var updated []*models.UserMissionQuest
	for _, quest := range quests {
		checker, ok := m.checkers[quest.CompletionType()]
		if !ok {
			slog.Warn("No checker for completion type",
				slog.String("type", "quest"),
				slog.String("quest_id", quest.ID),
				slog.String("completion_type", quest.CompletionType()))
			continue
		}

		complete, newProgress, err := checker.CheckCompletion(quest, checkCtx)
		if err != nil {
			slog.Warn("Quest check failed",
				slog.String("type", "quest"),
				slog.String("quest_id", quest.ID),
				slog.Any("error", err))
			continue
		}

		switch {
		case complete:
			quest.Complete()
			if err := m.store.UpdateQuest(ctx, quest); err != nil {
				return updated, err
			}
			m.emitCompleted(quest)
			updated = append(updated, quest)
		case newProgress != quest.CompletionProgress:
			quest.CompletionProgress = newProgress
			quest.Start()
			if err := m.store.UpdateQuest(ctx, quest); err != nil {
				return updated, err
			}
			m.emit(events.QuestProgressUpdated, events.Payload{
				"user_id":  quest.UserID,
				"quest_id": quest.ID,
				"progress": quest.CompletionProgress,
				"target":   quest.CompletionTarget,
			})
			updated = append(updated, quest)
		}
	}
	return updated, nil
}

// buildContext extracts everything the checkers read from one entry:
// raw content, detected quantities, and the categorizer's manual
// completion flag and keywords.
func (m *Matcher) buildContext(entry *models.JournalEntry) Context {
	ctx := Context{
		"journal_content":    entry.Content,
		"journal_entry_id":   entry.ID,
		"journal_created_at": entry.CreatedAt,
	}

	for _, p := range amountPatterns {
		match := p.re.FindStringSubmatch(entry.Content)
		if match == nil {
			continue
		}
		amount, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		ctx["detected_"+p.unit] = amount
	}
	// Duration quests are expressed in minutes.
	if _, ok := ctx["detected_minutes"]; !ok {
		if hours, ok := ctx["detected_hours"].(float64); ok {
			ctx["detected_minutes"] = hours * 60
		}
	}

	if entry.AICategories != nil {
		if entry.AICategories.ManualCompletion {
			ctx["manual_completion"] = true
		}
		if len(entry.AICategories.DetectedKeywords) > 0 {
			ctx["detected_keywords"] = entry.AICategories.DetectedKeywords
		}
	}
	return ctx
}

func (m *Matcher) emitCompleted(quest *models.UserMissionQuest) {
	rewardXP, rewardCoins := 0, 0
	if quest.Template != nil {
		rewardXP = quest.Template.RewardXP
		rewardCoins = quest.Template.RewardCoins
	}
	m.emit(events.QuestCompleted, events.Payload{
		"user_id":      quest.UserID,
		"quest_id":     quest.ID,
		"quest_name":   quest.Name,
		"reward_xp":    rewardXP,
		"reward_coins": rewardCoins,
	})
}

func (m *Matcher) emit(eventType string, payload events.Payload) {
	if _, err := m.bus.Emit(eventType, payload); err != nil {
		slog.Error("Event emission failed",
			slog.String("type", "event"),
			slog.String("event_type", eventType),
			slog.Any("error", err))
	}
}
