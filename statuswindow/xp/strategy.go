// Package xp distributes journal-entry XP across themes and skills,
// applies title multipliers, and drives the leveling state on the
// target entities.
package xp

import (
	"fmt"
	"strings"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
)

// Target key prefixes used in distribution maps.
const (
	TargetTheme = "theme"
	TargetSkill = "skill"
)

// DistributionStrategy decides how a base XP amount is split across
// the categorized targets of one journal entry. Keys are
// "theme:<id>" or "skill:<id>". An empty map means no XP is awarded.
type DistributionStrategy interface {
	Distribute(entry *models.JournalEntry, categories *models.Categories, baseXP float64) map[string]float64
}

// TargetKey builds a distribution map key.
func TargetKey(targetType, id string) string {
	return targetType + ":" + id
}

// SplitTargetKey returns the target type and id from a distribution
// key.
func SplitTargetKey(key string) (targetType, id string, err error) {
	targetType, id, ok := strings.Cut(key, ":")
	if !ok {
		return "", "", fmt.Errorf("malformed target key: %q", key)
	}
	return targetType, id, nil
}

// EqualDistributor splits the base XP equally across every detected
// theme and skill.
type EqualDistributor struct{}

func (EqualDistributor) Distribute(_ *models.JournalEntry, categories *models.Categories, baseXP float64) map[string]float64 {
	if categories == nil {
		return map[string]float64{}
	}

	total := len(categories.Themes) + len(categories.Skills)
	if total == 0 {
		return map[string]float64{}
	}

	perTarget := baseXP / float64(total)
	result := make(map[string]float64, total)
	for _, theme := range categories.Themes {
		result[TargetKey(TargetTheme, theme.ID)] = perTarget
	}
	for _, skill := range categories.Skills {
		result[TargetKey(TargetSkill, skill.ID)] = perTarget
	}
	return result
}

// WeightedDistributor splits XP proportionally to each category's
// confidence score. Unscored categories weigh 1.0.
type WeightedDistributor struct{}

func (WeightedDistributor) Distribute(_ *models.JournalEntry, categories *models.Categories, baseXP float64) map[string]float64 {
	if categories == nil {
		return map[string]float64{}
	}

	weight := func(ref models.CategoryRef) float64 {
		if ref.Confidence > 0 {
			return ref.Confidence
		}
		return 1.0
	}

	var totalWeight float64
	for _, theme := range categories.Themes {
		totalWeight += weight(theme)
	}
	for _, skill := range categories.Skills {
		totalWeight += weight(skill)
	}
	if totalWeight == 0 {
		return map[string]float64{}
	}

	result := make(map[string]float64, len(categories.Themes)+len(categories.Skills))
	for _, theme := range categories.Themes {
		result[TargetKey(TargetTheme, theme.ID)] = baseXP * weight(theme) / totalWeight
	}
	for _, skill := range categories.Skills {
		result[TargetKey(TargetSkill, skill.ID)] = baseXP * weight(skill) / totalWeight
	}
	return result
}

// ProportionalDistributor splits XP by how often each target's name is
// mentioned in the entry content. Unmentioned targets get nothing; if
// nothing is mentioned the distribution falls back to an equal split.
type ProportionalDistributor struct{}

func (ProportionalDistributor) Distribute(entry *models.JournalEntry, categories *models.Categories, baseXP float64) map[string]float64 {
	if categories == nil {
		return map[string]float64{}
	}
	if len(categories.Themes)+len(categories.Skills) == 0 {
		return map[string]float64{}
	}

	var content string
	if entry != nil {
		content = strings.ToLower(entry.Content)
	}

	type mention struct {
		key   string
		count int
	}

	var mentions []mention
	var totalMentions int
	countFor := func(targetType string, refs []models.CategoryRef) {
		for _, ref := range refs {
			if ref.Name == "" {
				continue
			}
			count := strings.Count(content, strings.ToLower(ref.Name))
			if count > 0 {
				mentions = append(mentions, mention{key: TargetKey(targetType, ref.ID), count: count})
				totalMentions += count
			}
		}
	}
	countFor(TargetTheme, categories.Themes)
	countFor(TargetSkill, categories.Skills)

	if totalMentions == 0 {
		return EqualDistributor{}.Distribute(entry, categories, baseXP)
	}

	result := make(map[string]float64, len(mentions))
	for _, m := range mentions {
		result[m.key] = baseXP * float64(m.count) / float64(totalMentions)
	}
	return result
}
