// Package orchestrator drives one journal entry through the full
// pipeline: categorize, distribute XP, match quests, check title
// unlocks. It owns the entry's processing state machine and is the
// only writer of the processing columns.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/statuswindow/statuswindow/statuswindow/categorize"
	"github.com/statuswindow/statuswindow/statuswindow/database/models"
	"github.com/statuswindow/statuswindow/statuswindow/events"
	"github.com/statuswindow/statuswindow/statuswindow/logger"
	"github.com/statuswindow/statuswindow/statuswindow/quests"
	"github.com/statuswindow/statuswindow/statuswindow/titles"
	"github.com/statuswindow/statuswindow/statuswindow/xp"
)

// MaxRetryCount bounds how many times a failing entry is retried
// before it is parked as failed.
const MaxRetryCount = 3

// stored error messages are truncated to fit the column.
const maxStoredErrorLen = 500

// Store persists processing-state transitions.
type Store interface {
	UpdateEntry(ctx context.Context, entry *models.JournalEntry) error
}

// QuestUpdate is one quest's state after a pipeline run.
type QuestUpdate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Progress int    `json:"progress"`
	Status   string `json:"status"`
}

// TitleAward is one title granted during a pipeline run.
type TitleAward struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Result summarizes one ProcessEntry call. Status mirrors the entry's
// processing status after the call; Error is set for pending/failed.
type Result struct {
	EntryID       string             `json:"entry_id"`
	Status        string             `json:"status"`
	Error         string             `json:"error,omitempty"`
	Categories    *models.Categories `json:"categories,omitempty"`
	XP            *xp.Summary        `json:"xp,omitempty"`
	QuestsUpdated []QuestUpdate      `json:"quests_updated,omitempty"`
	TitlesAwarded []TitleAward       `json:"titles_awarded,omitempty"`
}

// Orchestrator wires the pipeline stages together. Stages run in a
// fixed order because later stages read state earlier stages wrote:
// title conditions depend on levels and quest completions from the
// same entry.
type Orchestrator struct {
	store       Store
	categorizer categorize.Categorizer
	calculator  *xp.Calculator
	matcher     *quests.Matcher
	awarder     *titles.Awarder
	bus         *events.Bus
}

func New(store Store, categorizer categorize.Categorizer, calculator *xp.Calculator, matcher *quests.Matcher, awarder *titles.Awarder, bus *events.Bus) *Orchestrator {
	o := &Orchestrator{
		store:       store,
		categorizer: categorizer,
		calculator:  calculator,
		matcher:     matcher,
		awarder:     awarder,
		bus:         bus,
	}
	o.subscribe()
	return o
}

// subscribe registers observation-only listeners. They never mutate
// state and never fail; the pipeline's behavior must not depend on
// them.
func (o *Orchestrator) subscribe() {
	o.bus.Subscribe(events.JournalEntryCreated, o.observeEntryCreated)
	o.bus.Subscribe(events.XPAwarded, o.observeXPAwarded)
	o.bus.Subscribe(events.ThemeLeveledUp, o.observeLevelUp)
	o.bus.Subscribe(events.SkillLeveledUp, o.observeLevelUp)
	o.bus.Subscribe(events.QuestCompleted, o.observeQuestCompleted)
}

// ProcessEntry runs the state machine on one entry. Pipeline failures
// are reported in the Result, not as a returned error; the returned
// error is reserved for persistence failures while recording state.
func (o *Orchestrator) ProcessEntry(ctx context.Context, entry *models.JournalEntry) (*Result, error) {
	start := time.Now()

	entry.ProcessingStatus = models.ProcessingInProgress
	entry.ProcessingError = ""
	if err := o.store.UpdateEntry(ctx, entry); err != nil {
		return nil, err
	}

	result, pipelineErr := o.runPipeline(ctx, entry)
	if pipelineErr != nil {
		result, err := o.recordFailure(ctx, entry, pipelineErr)
		logger.LogPipeline(entry.ID, time.Since(start), pipelineErr)
		return result, err
	}

	entry.ProcessingStatus = models.ProcessingCompleted
	if err := o.store.UpdateEntry(ctx, entry); err != nil {
		return nil, err
	}

	result.Status = models.ProcessingCompleted
	logger.LogPipeline(entry.ID, time.Since(start), nil)
	return result, nil
}

func (o *Orchestrator) runPipeline(ctx context.Context, entry *models.JournalEntry) (*Result, error) {
	categories, err := o.categorizer.Categorize(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry.AICategories = categories
	entry.AIProcessed = true

	summary, err := o.calculator.ProcessJournalEntry(ctx, entry, categories)
	if err != nil {
		return nil, err
	}

	updated, err := o.matcher.MatchJournalEntry(ctx, entry)
	if err != nil {
		return nil, err
	}

	awarded, err := o.awarder.CheckUserUnlocks(ctx, entry.UserID)
	if err != nil {
		return nil, err
	}

	result := &Result{
		EntryID:    entry.ID,
		Categories: categories,
		XP:         summary,
	}
	for _, quest := range updated {
		result.QuestsUpdated = append(result.QuestsUpdated, QuestUpdate{
			ID:       quest.ID,
			Name:     quest.Name,
			Progress: quest.CompletionProgress,
			Status:   quest.Status,
		})
	}
	for _, title := range awarded {
		award := TitleAward{ID: title.TemplateID}
		if title.Template != nil {
			award.Name = title.Template.Name
		}
		result.TitlesAwarded = append(result.TitlesAwarded, award)
	}
	return result, nil
}

// recordFailure applies the retry policy. A missing transcript can
// never resolve itself, so it fails the entry immediately; anything
// else goes back to pending until the retries run out. The entry row
// is always preserved.
func (o *Orchestrator) recordFailure(ctx context.Context, entry *models.JournalEntry, pipelineErr error) (*Result, error) {
	now := time.Now().UTC()
	entry.RetryCount++
	entry.LastRetryAt = &now
	entry.ProcessingError = truncateError(pipelineErr)

	switch {
	case errors.Is(pipelineErr, categorize.ErrMissingTranscript):
		entry.ProcessingStatus = models.ProcessingFailed
	case entry.RetryCount < MaxRetryCount:
		entry.ProcessingStatus = models.ProcessingPending
	default:
		entry.ProcessingStatus = models.ProcessingFailed
	}

	result := &Result{
		EntryID: entry.ID,
		Status:  entry.ProcessingStatus,
		Error:   entry.ProcessingError,
	}
	if err := o.store.UpdateEntry(ctx, entry); err != nil {
		return result, err
	}
	return result, nil
}

// MatchJournalEntry re-runs quest matching outside the pipeline, e.g.
// from batch reconciliation.
func (o *Orchestrator) MatchJournalEntry(ctx context.Context, entry *models.JournalEntry) ([]*models.UserMissionQuest, error) {
	return o.matcher.MatchJournalEntry(ctx, entry)
}

// CheckUserUnlocks re-checks a user's title unlocks outside the
// pipeline.
func (o *Orchestrator) CheckUserUnlocks(ctx context.Context, userID string) ([]*models.UserTitle, error) {
	return o.awarder.CheckUserUnlocks(ctx, userID)
}

func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > maxStoredErrorLen {
		return msg[:maxStoredErrorLen]
	}
	return msg
}

func (o *Orchestrator) observeEntryCreated(p events.Payload) any {
	slog.Debug("Journal entry created",
		slog.String("type", "pipeline"),
		slog.Any("entry_id", p["entry_id"]),
		slog.Any("user_id", p["user_id"]))
	return nil
}

func (o *Orchestrator) observeXPAwarded(p events.Payload) any {
	slog.Debug("XP awarded",
		slog.String("type", "pipeline"),
		slog.Any("user_id", p["user_id"]),
		slog.Any("target_type", p["target_type"]),
		slog.Any("amount", p["amount"]))
	return nil
}

func (o *Orchestrator) observeLevelUp(p events.Payload) any {
	slog.Debug("Level up",
		slog.String("type", "pipeline"),
		slog.Any("user_id", p["user_id"]),
		slog.Any("new_level", p["new_level"]))
	return nil
}

func (o *Orchestrator) observeQuestCompleted(p events.Payload) any {
	slog.Debug("Quest completed",
		slog.String("type", "pipeline"),
		slog.Any("user_id", p["user_id"]),
		slog.Any("quest_id", p["quest_id"]))
	return nil
}
