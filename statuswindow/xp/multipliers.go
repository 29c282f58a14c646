package xp

import (
	"strings"
	"time"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
)

// EffectApplies reports whether a title effect boosts the given
// target. Scope "all" matches everything; otherwise the scope must
// equal the target type and the effect target must be "all" or the
// target's name (case-insensitive).
func EffectApplies(effect *models.TitleEffect, targetType, targetName string) bool {
	if effect == nil || effect.Type != models.EffectXPMultiplier {
		return false
	}

	if effect.Scope == "all" {
		return true
	}
	if effect.Scope != targetType {
		return false
	}
	if effect.Target == "all" {
		return true
	}
	return strings.EqualFold(effect.Target, targetName)
}

// CombinedMultiplier stacks the multipliers of all applicable titles
// multiplicatively. Only equipped, unexpired titles count. Returns 1.0
// when nothing applies.
func CombinedMultiplier(titles []*models.UserTitle, targetType, targetName string, now time.Time) float64 {
	multiplier := 1.0
	for _, title := range titles {
		if !title.IsEquipped || title.Expired(now) || title.Template == nil {
			continue
		}
		if EffectApplies(title.Template.Effect, targetType, targetName) {
			multiplier *= title.Template.Effect.Value
		}
	}
	return multiplier
}
