package xp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
	"github.com/statuswindow/statuswindow/statuswindow/events"
)

type fakeStore struct {
	themes []*models.Theme
	skills []*models.Skill
	titles []*models.UserTitle

	updatedThemes []*models.Theme
	updatedSkills []*models.Skill
}

func (f *fakeStore) ThemesByIDs(_ context.Context, ids []string) ([]*models.Theme, error) {
	var out []*models.Theme
	for _, theme := range f.themes {
		for _, id := range ids {
			if theme.ID == id {
				out = append(out, theme)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) SkillsByIDs(_ context.Context, ids []string) ([]*models.Skill, error) {
	var out []*models.Skill
	for _, skill := range f.skills {
		for _, id := range ids {
			if skill.ID == id {
				out = append(out, skill)
			}
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateTheme(_ context.Context, theme *models.Theme) error {
	f.updatedThemes = append(f.updatedThemes, theme)
	return nil
}

func (f *fakeStore) UpdateSkill(_ context.Context, skill *models.Skill) error {
	f.updatedSkills = append(f.updatedSkills, skill)
	return nil
}

func (f *fakeStore) EquippedTitles(_ context.Context, _ string) ([]*models.UserTitle, error) {
	return f.titles, nil
}

type fixedConfig map[string]float64

func (c fixedConfig) Get(key string, def float64) float64 {
	if v, ok := c[key]; ok {
		return v
	}
	return def
}

func recordEvents(bus *events.Bus, eventType string, into *[]events.Payload) {
	bus.Subscribe(eventType, func(p events.Payload) any {
		*into = append(*into, p)
		return nil
	})
}

func testTheme(id, name string) *models.Theme {
	t := &models.Theme{ID: id, UserID: "u1", Name: name, Corrosion: models.CorrosionFresh}
	t.XPToNextLevel = t.NextLevelXP()
	return t
}

func testSkill(id, name string) *models.Skill {
	s := &models.Skill{ID: id, UserID: "u1", Name: name, Rank: models.RankBeginner}
	s.XPToNextLevel = s.NextLevelXP()
	return s
}

func TestProcessJournalEntryAwardsAndEmits(t *testing.T) {
	store := &fakeStore{
		themes: []*models.Theme{testTheme("t1", "Health")},
		skills: []*models.Skill{testSkill("s1", "Running")},
	}
	bus := events.NewBus()
	var awards []events.Payload
	recordEvents(bus, events.XPAwarded, &awards)

	calc := NewCalculator(EqualDistributor{}, store, bus, fixedConfig{})
	entry := &models.JournalEntry{ID: "e1", UserID: "u1", Content: "ran"}
	categories := &models.Categories{
		Themes: []models.CategoryRef{{ID: "t1", Name: "Health"}},
		Skills: []models.CategoryRef{{ID: "s1", Name: "Running"}},
	}

	summary, err := calc.ProcessJournalEntry(context.Background(), entry, categories)
	require.NoError(t, err)

	assert.InDelta(t, 50, summary.TotalXP, 0.001)
	require.Len(t, summary.Awards, 2)
	// Themes always precede skills.
	assert.Equal(t, TargetTheme, summary.Awards[0].Type)
	assert.Equal(t, TargetSkill, summary.Awards[1].Type)

	require.Len(t, awards, 2)
	assert.Equal(t, "theme", awards[0]["target_type"])
	assert.Equal(t, "skill", awards[1]["target_type"])

	assert.Len(t, store.updatedThemes, 1)
	assert.Len(t, store.updatedSkills, 1)
	assert.InDelta(t, 25, store.themes[0].XP, 0.001)
}

func TestProcessJournalEntryAppliesMultiplier(t *testing.T) {
	store := &fakeStore{
		themes: []*models.Theme{testTheme("t1", "Health")},
		titles: []*models.UserTitle{
			{
				IsEquipped: true,
				Template: &models.TitleTemplate{
					Effect: &models.TitleEffect{
						Type: models.EffectXPMultiplier, Scope: "theme", Target: "Health", Value: 2.0,
					},
				},
			},
		},
	}
	bus := events.NewBus()
	calc := NewCalculator(EqualDistributor{}, store, bus, fixedConfig{"xp.base_journal_xp": 30})
	entry := &models.JournalEntry{ID: "e1", UserID: "u1"}
	categories := &models.Categories{Themes: []models.CategoryRef{{ID: "t1", Name: "Health"}}}

	summary, err := calc.ProcessJournalEntry(context.Background(), entry, categories)
	require.NoError(t, err)

	assert.InDelta(t, 60, summary.TotalXP, 0.001)
	assert.InDelta(t, 60, store.themes[0].XP, 0.001)
}

func TestProcessJournalEntryEmitsLevelUp(t *testing.T) {
	theme := testTheme("t1", "Health")
	theme.Level = 0
	store := &fakeStore{themes: []*models.Theme{theme}}
	bus := events.NewBus()
	var levelUps []events.Payload
	recordEvents(bus, events.ThemeLeveledUp, &levelUps)

	calc := NewCalculator(EqualDistributor{}, store, bus, fixedConfig{"xp.base_journal_xp": 120})
	entry := &models.JournalEntry{ID: "e1", UserID: "u1"}
	categories := &models.Categories{Themes: []models.CategoryRef{{ID: "t1", Name: "Health"}}}

	_, err := calc.ProcessJournalEntry(context.Background(), entry, categories)
	require.NoError(t, err)

	require.Len(t, levelUps, 1)
	assert.Equal(t, 1, levelUps[0]["new_level"])
	assert.Equal(t, "Health", levelUps[0]["theme_name"])
}

func TestProcessJournalEntrySkipsVanishedTargets(t *testing.T) {
	store := &fakeStore{themes: []*models.Theme{testTheme("t1", "Health")}}
	bus := events.NewBus()
	calc := NewCalculator(EqualDistributor{}, store, bus, fixedConfig{})
	entry := &models.JournalEntry{ID: "e1", UserID: "u1"}
	categories := &models.Categories{
		Themes: []models.CategoryRef{
			{ID: "t1", Name: "Health"},
			{ID: "ghost", Name: "Deleted"},
		},
	}

	summary, err := calc.ProcessJournalEntry(context.Background(), entry, categories)
	require.NoError(t, err)

	require.Len(t, summary.Awards, 1)
	assert.Equal(t, "t1", summary.Awards[0].ID)
	assert.InDelta(t, 25, summary.TotalXP, 0.001)
}

func TestProcessJournalEntryNoCategories(t *testing.T) {
	store := &fakeStore{}
	bus := events.NewBus()
	calc := NewCalculator(EqualDistributor{}, store, bus, fixedConfig{})
	entry := &models.JournalEntry{ID: "e1", UserID: "u1"}

	summary, err := calc.ProcessJournalEntry(context.Background(), entry, &models.Categories{})
	require.NoError(t, err)

	assert.Zero(t, summary.TotalXP)
	assert.Empty(t, summary.Awards)
}
