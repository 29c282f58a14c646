package titles

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
)

type fakeTitleStore struct {
	themes    []*models.Theme
	skills    []*models.Skill
	quests    map[string]*models.UserMissionQuest
	entries   []*models.JournalEntry
	templates []*models.TitleTemplate
	owned     []*models.UserTitle

	created []*models.UserTitle
}

func (f *fakeTitleStore) ThemeByName(_ context.Context, _, name string) (*models.Theme, error) {
	for _, theme := range f.themes {
		if theme.Name == name {
			return theme, nil
		}
	}
	return nil, nil
}

func (f *fakeTitleStore) ThemesByUser(_ context.Context, _ string) ([]*models.Theme, error) {
	return f.themes, nil
}

func (f *fakeTitleStore) SkillByName(_ context.Context, _, name string) (*models.Skill, error) {
	for _, skill := range f.skills {
		if skill.Name == name {
			return skill, nil
		}
	}
	return nil, nil
}

func (f *fakeTitleStore) HasSkillWithRank(_ context.Context, _ string, ranks []string) (bool, error) {
	for _, skill := range f.skills {
		for _, rank := range ranks {
			if skill.Rank == rank {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeTitleStore) QuestByID(_ context.Context, _, id string) (*models.UserMissionQuest, error) {
	return f.quests[id], nil
}

func (f *fakeTitleStore) CountCompletedQuests(_ context.Context, _ string) (int, error) {
	count := 0
	for _, quest := range f.quests {
		if quest.Status == models.QuestCompleted {
			count++
		}
	}
	return count, nil
}

func (f *fakeTitleStore) CountEntries(_ context.Context, _ string) (int, error) {
	return len(f.entries), nil
}

func (f *fakeTitleStore) EntriesByUser(_ context.Context, _ string) ([]*models.JournalEntry, error) {
	return f.entries, nil
}

func (f *fakeTitleStore) TitleTemplates(_ context.Context) ([]*models.TitleTemplate, error) {
	return f.templates, nil
}

func (f *fakeTitleStore) TitleTemplateByID(_ context.Context, id string) (*models.TitleTemplate, error) {
	for _, template := range f.templates {
		if template.ID == id {
			return template, nil
		}
	}
	return nil, nil
}

func (f *fakeTitleStore) TitlesByUser(_ context.Context, _ string) ([]*models.UserTitle, error) {
	return append(append([]*models.UserTitle{}, f.owned...), f.created...), nil
}

func (f *fakeTitleStore) CreateUserTitle(_ context.Context, title *models.UserTitle) error {
	f.created = append(f.created, title)
	return nil
}

func entryOn(day time.Time) *models.JournalEntry {
	return &models.JournalEntry{UserID: "u1", CreatedAt: day}
}

func TestThemeLevelCondition(t *testing.T) {
	store := &fakeTitleStore{themes: []*models.Theme{{Name: "Education", Level: 10}}}
	eval := NewEvaluator(store)

	met, err := eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "theme_level", "theme": "Education", "value": 10.0,
	})
	require.NoError(t, err)
	assert.True(t, met)

	met, err = eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "theme_level", "theme": "Education", "value": 11.0,
	})
	require.NoError(t, err)
	assert.False(t, met)

	met, err = eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "theme_level", "theme": "Unknown", "value": 1.0,
	})
	require.NoError(t, err)
	assert.False(t, met)
}

func TestThemeLevelMissingFieldFailsLoud(t *testing.T) {
	eval := NewEvaluator(&fakeTitleStore{})

	_, err := eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "theme_level", "value": 10.0,
	})
	assert.ErrorIs(t, err, ErrMissingConditionField)
}

func TestSkillRankConditionRankOrHigher(t *testing.T) {
	store := &fakeTitleStore{skills: []*models.Skill{{Name: "Piano", Rank: models.RankExpert}}}
	eval := NewEvaluator(store)

	met, err := eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "skill_rank", "rank": models.RankAdvanced,
	})
	require.NoError(t, err)
	assert.True(t, met)

	met, err = eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "skill_rank", "rank": models.RankMaster,
	})
	require.NoError(t, err)
	assert.False(t, met)

	met, err = eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "skill_rank", "rank": "Legendary",
	})
	require.NoError(t, err)
	assert.False(t, met)
}

func TestTotalXPCondition(t *testing.T) {
	store := &fakeTitleStore{themes: []*models.Theme{{Name: "A", XP: 300}, {Name: "B", XP: 250}}}
	eval := NewEvaluator(store)

	met, err := eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "total_xp", "value": 500.0,
	})
	require.NoError(t, err)
	assert.True(t, met)
}

func TestQuestConditions(t *testing.T) {
	store := &fakeTitleStore{quests: map[string]*models.UserMissionQuest{
		"q1": {ID: "q1", Status: models.QuestCompleted},
		"q2": {ID: "q2", Status: models.QuestFailed},
	}}
	eval := NewEvaluator(store)

	met, err := eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "specific_quest_completed", "quest_id": "q1",
	})
	require.NoError(t, err)
	assert.True(t, met)

	met, err = eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "quest_failed", "quest_id": "q2",
	})
	require.NoError(t, err)
	assert.True(t, met)

	met, err = eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "quest_failed", "quest_id": "q1",
	})
	require.NoError(t, err)
	assert.False(t, met)

	met, err = eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "quest_completion_count", "value": 1.0,
	})
	require.NoError(t, err)
	assert.True(t, met)
}

func TestJournalStreakCondition(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeTitleStore{entries: []*models.JournalEntry{
		entryOn(base),
		entryOn(base.AddDate(0, 0, 1)),
		entryOn(base.AddDate(0, 0, 1).Add(5 * time.Hour)), // same day twice
		entryOn(base.AddDate(0, 0, 2)),
		entryOn(base.AddDate(0, 0, 7)), // gap breaks the run
	}}
	eval := NewEvaluator(store)

	met, err := eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "journal_streak", "value": 3.0,
	})
	require.NoError(t, err)
	assert.True(t, met)

	met, err = eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "journal_streak", "value": 4.0,
	})
	require.NoError(t, err)
	assert.False(t, met)
}

func TestTimeBasedCondition(t *testing.T) {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeTitleStore{entries: []*models.JournalEntry{
		entryOn(base),
		entryOn(base.AddDate(0, 0, 3)),
		entryOn(base.AddDate(0, 0, 9)),
	}}
	eval := NewEvaluator(store)

	met, err := eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "time_based", "days_active": 3.0,
	})
	require.NoError(t, err)
	assert.True(t, met)

	met, err = eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "time_based", "days_active": 4.0,
	})
	require.NoError(t, err)
	assert.False(t, met)
}

func TestCorrosionLevelCondition(t *testing.T) {
	store := &fakeTitleStore{themes: []*models.Theme{{Name: "Education", Corrosion: models.CorrosionRusty}}}
	eval := NewEvaluator(store)

	met, err := eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "corrosion_level", "theme": "Education", "min_level": "Dusty",
	})
	require.NoError(t, err)
	assert.True(t, met)

	met, err = eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "corrosion_level", "theme": "Education", "min_level": "Forgotten",
	})
	require.NoError(t, err)
	assert.False(t, met)

	met, err = eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "corrosion_level", "theme": "Education", "min_level": "Sparkling",
	})
	require.NoError(t, err)
	assert.False(t, met)
}

func TestCompoundConditions(t *testing.T) {
	store := &fakeTitleStore{themes: []*models.Theme{{Name: "Education", Level: 10, XP: 100}}}
	eval := NewEvaluator(store)

	met, err := eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "and",
		"conditions": []any{
			map[string]any{"type": "theme_level", "theme": "Education", "value": 5.0},
			map[string]any{"type": "theme_xp", "theme": "Education", "value": 50.0},
		},
	})
	require.NoError(t, err)
	assert.True(t, met)

	met, err = eval.Evaluate(context.Background(), "u1", map[string]any{
		"type": "or",
		"conditions": []any{
			map[string]any{"type": "theme_level", "theme": "Education", "value": 99.0},
			map[string]any{"type": "theme_xp", "theme": "Education", "value": 50.0},
		},
	})
	require.NoError(t, err)
	assert.True(t, met)

	met, err = eval.Evaluate(context.Background(), "u1", map[string]any{
		"type":      "not",
		"condition": map[string]any{"type": "theme_level", "theme": "Education", "value": 99.0},
	})
	require.NoError(t, err)
	assert.True(t, met)
}

func TestUnknownConditionTypeIsFalse(t *testing.T) {
	eval := NewEvaluator(&fakeTitleStore{})

	met, err := eval.Evaluate(context.Background(), "u1", map[string]any{"type": "astrology"})
	require.NoError(t, err)
	assert.False(t, met)
}
