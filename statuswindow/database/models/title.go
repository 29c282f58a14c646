package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TitleEffect describes the bonus a title grants while equipped.
// Scope narrows the effect to "theme", "skill" or "all"; Target names a
// specific entity or "all" within the scope.
type TitleEffect struct {
	Type   string  `json:"type"`
	Scope  string  `json:"scope"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
}

// EffectXPMultiplier is the only effect type the XP engine consumes.
const EffectXPMultiplier = "xp_multiplier"

// TitleTemplate is a global, reusable achievement definition. A nil
// UnlockCondition means the title can only be awarded manually.
// Category "negative" marks debuff titles (e.g. corrosion-based).
type TitleTemplate struct {
	bun.BaseModel `bun:"table:title_templates,alias:tt"`

	ID              string         `bun:"id,pk"`
	Name            string         `bun:"name,notnull"`
	Description     string         `bun:"description"`
	Effect          *TitleEffect   `bun:"effect,type:jsonb"`
	Rank            string         `bun:"rank,notnull,default:'D'"`
	UnlockCondition map[string]any `bun:"unlock_condition,type:jsonb"`
	Category        string         `bun:"category"`
	CreatedAt       time.Time      `bun:"created_at,notnull"`
	UpdatedAt       time.Time      `bun:"updated_at,notnull"`
}

// UserTitle is a user's ownership of a title template. A (user,
// template) pair is unique. Expired equipped titles contribute no
// multiplier.
type UserTitle struct {
	bun.BaseModel `bun:"table:user_titles,alias:ut"`

	ID         string     `bun:"id,pk"`
	UserID     string     `bun:"user_id,notnull"`
	TemplateID string     `bun:"title_template_id,notnull"`
	IsEquipped bool       `bun:"is_equipped,notnull,default:false"`
	AcquiredAt time.Time  `bun:"acquired_at,notnull"`
	ExpiresAt  *time.Time `bun:"expires_at"`

	Template *TitleTemplate `bun:"rel:belongs-to,join:title_template_id=id"`
}

// Expired reports whether the title has lapsed at the given instant.
func (t *UserTitle) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !t.ExpiresAt.After(now)
}
