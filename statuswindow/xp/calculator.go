package xp

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
	"github.com/statuswindow/statuswindow/statuswindow/events"
)

// XPSource is recorded in the target entity's xp_breakdown metadata.
const XPSource = "journal"

const defaultBaseJournalXP = 50

// Store is the persistence surface the calculator needs.
type Store interface {
	ThemesByIDs(ctx context.Context, ids []string) ([]*models.Theme, error)
	SkillsByIDs(ctx context.Context, ids []string) ([]*models.Skill, error)
	UpdateTheme(ctx context.Context, theme *models.Theme) error
	UpdateSkill(ctx context.Context, skill *models.Skill) error
	EquippedTitles(ctx context.Context, userID string) ([]*models.UserTitle, error)
}

// Config exposes numeric tuning values by dotted key.
type Config interface {
	Get(key string, def float64) float64
}

// Award records one target's share of a journal entry's XP.
type Award struct {
	Type string  `json:"type"`
	ID   string  `json:"id"`
	Name string  `json:"name"`
	XP   float64 `json:"xp"`
}

// Summary is the result of distributing one entry's XP.
type Summary struct {
	TotalXP float64 `json:"total_xp"`
	Awards  []Award `json:"awards"`
}

// Calculator orchestrates strategy, title multipliers, leveling and
// event emission for one journal entry's categorized content.
type Calculator struct {
	strategy DistributionStrategy
	store    Store
	bus      *events.Bus
	config   Config
}

func NewCalculator(strategy DistributionStrategy, store Store, bus *events.Bus, config Config) *Calculator {
	return &Calculator{
		strategy: strategy,
		store:    store,
		bus:      bus,
		config:   config,
	}
}

// ProcessJournalEntry distributes XP for one entry across its detected
// categories. Targets that no longer exist are skipped silently. For
// every awarded target an xp.awarded event is emitted, followed by a
// leveled-up event if the award raised the target's level.
func (c *Calculator) ProcessJournalEntry(ctx context.Context, entry *models.JournalEntry, categories *models.Categories) (*Summary, error) {
	baseXP := c.config.Get("xp.base_journal_xp", defaultBaseJournalXP)
	distribution := c.strategy.Distribute(entry, categories, baseXP)

	summary := &Summary{Awards: []Award{}}
	if len(distribution) == 0 {
		return summary, nil
	}

	var themeIDs, skillIDs []string
	for key := range distribution {
		targetType, id, err := SplitTargetKey(key)
		if err != nil {
			continue
		}
		switch targetType {
		case TargetTheme:
			themeIDs = append(themeIDs, id)
		case TargetSkill:
			skillIDs = append(skillIDs, id)
		}
	}

	themes, err := c.store.ThemesByIDs(ctx, themeIDs)
	if err != nil {
		return nil, err
	}
	skills, err := c.store.SkillsByIDs(ctx, skillIDs)
	if err != nil {
		return nil, err
	}

	themeMap := make(map[string]*models.Theme, len(themes))
	for _, theme := range themes {
		themeMap[theme.ID] = theme
	}
	skillMap := make(map[string]*models.Skill, len(skills))
	for _, skill := range skills {
		skillMap[skill.ID] = skill
	}

	titles, err := c.store.EquippedTitles(ctx, entry.UserID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	// Themes first, then skills, each ordered by id, so the event
	// sequence for one entry is deterministic.
	keys := make([]string, 0, len(distribution))
	for key := range distribution {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	sort.SliceStable(keys, func(i, j int) bool {
		ti, _, _ := SplitTargetKey(keys[i])
		tj, _, _ := SplitTargetKey(keys[j])
		return ti > tj // "theme" sorts after "skill" lexically; reverse
	})

	for _, key := range keys {
		targetType, targetID, err := SplitTargetKey(key)
		if err != nil {
			continue
		}
		strategyXP := distribution[key]

		switch targetType {
		case TargetTheme:
			theme, ok := themeMap[targetID]
			if !ok {
				continue
			}
			finalXP := strategyXP * CombinedMultiplier(titles, TargetTheme, theme.Name, now)
			previousLevel := theme.Level
			if err := theme.AddXP(finalXP); err != nil {
				return nil, err
			}
			theme.AddXPBreakdown(XPSource, finalXP)
			if err := c.store.UpdateTheme(ctx, theme); err != nil {
				return nil, err
			}

			summary.Awards = append(summary.Awards, Award{Type: TargetTheme, ID: targetID, Name: theme.Name, XP: finalXP})
			summary.TotalXP += finalXP

			c.emit(events.XPAwarded, events.Payload{
				"user_id":     entry.UserID,
				"amount":      finalXP,
				"source":      XPSource,
				"target_type": TargetTheme,
				"target_id":   targetID,
			})
			if theme.Level > previousLevel {
				c.emit(events.ThemeLeveledUp, events.Payload{
					"user_id":    entry.UserID,
					"theme_id":   targetID,
					"new_level":  theme.Level,
					"theme_name": theme.Name,
				})
			}

		case TargetSkill:
			skill, ok := skillMap[targetID]
			if !ok {
				continue
			}
			finalXP := strategyXP * CombinedMultiplier(titles, TargetSkill, skill.Name, now)
			previousLevel := skill.Level
			if err := skill.AddXP(finalXP); err != nil {
				return nil, err
			}
			skill.AddXPBreakdown(XPSource, finalXP)
			if err := c.store.UpdateSkill(ctx, skill); err != nil {
				return nil, err
			}

			summary.Awards = append(summary.Awards, Award{Type: TargetSkill, ID: targetID, Name: skill.Name, XP: finalXP})
			summary.TotalXP += finalXP

			c.emit(events.XPAwarded, events.Payload{
				"user_id":     entry.UserID,
				"amount":      finalXP,
				"source":      XPSource,
				"target_type": TargetSkill,
				"target_id":   targetID,
			})
			if skill.Level > previousLevel {
				c.emit(events.SkillLeveledUp, events.Payload{
					"user_id":    entry.UserID,
					"skill_id":   targetID,
					"new_level":  skill.Level,
					"skill_name": skill.Name,
					"new_rank":   skill.Rank,
				})
			}
		}
	}

	return summary, nil
}

func (c *Calculator) emit(eventType string, payload events.Payload) {
	if _, err := c.bus.Emit(eventType, payload); err != nil {
		slog.Error("Event emission failed",
			slog.String("type", "event"),
			slog.String("event_type", eventType),
			slog.Any("error", err))
	}
}
