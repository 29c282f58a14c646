package xp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
)

func equippedTitle(effect *models.TitleEffect) *models.UserTitle {
	return &models.UserTitle{
		IsEquipped: true,
		Template:   &models.TitleTemplate{Effect: effect},
	}
}

func TestEffectApplies(t *testing.T) {
	tests := []struct {
		name       string
		effect     *models.TitleEffect
		targetType string
		targetName string
		want       bool
	}{
		{
			name:   "global scope matches anything",
			effect: &models.TitleEffect{Type: models.EffectXPMultiplier, Scope: "all", Target: "Health", Value: 1.5},
			targetType: TargetSkill, targetName: "Running", want: true,
		},
		{
			name:   "scope mismatch",
			effect: &models.TitleEffect{Type: models.EffectXPMultiplier, Scope: "theme", Target: "all", Value: 1.5},
			targetType: TargetSkill, targetName: "Running", want: false,
		},
		{
			name:   "target all within scope",
			effect: &models.TitleEffect{Type: models.EffectXPMultiplier, Scope: "theme", Target: "all", Value: 1.5},
			targetType: TargetTheme, targetName: "Health", want: true,
		},
		{
			name:   "named target case-insensitive",
			effect: &models.TitleEffect{Type: models.EffectXPMultiplier, Scope: "theme", Target: "health", Value: 1.5},
			targetType: TargetTheme, targetName: "Health", want: true,
		},
		{
			name:   "named target mismatch",
			effect: &models.TitleEffect{Type: models.EffectXPMultiplier, Scope: "theme", Target: "Work", Value: 1.5},
			targetType: TargetTheme, targetName: "Health", want: false,
		},
		{
			name:   "non-multiplier effect ignored",
			effect: &models.TitleEffect{Type: "coin_bonus", Scope: "all", Target: "all", Value: 2},
			targetType: TargetTheme, targetName: "Health", want: false,
		},
		{
			name:       "nil effect",
			effect:     nil,
			targetType: TargetTheme, targetName: "Health", want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectApplies(tt.effect, tt.targetType, tt.targetName))
		})
	}
}

func TestCombinedMultiplierStacks(t *testing.T) {
	now := time.Now().UTC()
	titles := []*models.UserTitle{
		equippedTitle(&models.TitleEffect{Type: models.EffectXPMultiplier, Scope: "all", Target: "all", Value: 1.5}),
		equippedTitle(&models.TitleEffect{Type: models.EffectXPMultiplier, Scope: "theme", Target: "Health", Value: 2.0}),
	}

	assert.InDelta(t, 3.0, CombinedMultiplier(titles, TargetTheme, "Health", now), 0.001)
	assert.InDelta(t, 1.5, CombinedMultiplier(titles, TargetSkill, "Running", now), 0.001)
}

func TestCombinedMultiplierSkipsUnequippedAndExpired(t *testing.T) {
	now := time.Now().UTC()
	expiry := now.Add(-time.Hour)

	unequipped := equippedTitle(&models.TitleEffect{Type: models.EffectXPMultiplier, Scope: "all", Target: "all", Value: 2})
	unequipped.IsEquipped = false

	expired := equippedTitle(&models.TitleEffect{Type: models.EffectXPMultiplier, Scope: "all", Target: "all", Value: 3})
	expired.ExpiresAt = &expiry

	titles := []*models.UserTitle{unequipped, expired, {IsEquipped: true}}

	assert.InDelta(t, 1.0, CombinedMultiplier(titles, TargetTheme, "Health", now), 0.001)
}
