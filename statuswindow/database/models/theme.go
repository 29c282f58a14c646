package models

import (
	"errors"
	"math"
	"time"

	"github.com/uptrace/bun"
)

// ErrNegativeXP is returned when an XP grant is negative. Negative
// amounts signal a bug in calling code and are never applied.
var ErrNegativeXP = errors.New("xp amount cannot be negative")

const (
	themeBaseXPThreshold = 100.0
	themeXPScalingFactor = 1.15
)

// Corrosion levels from best to worst.
type CorrosionLevel string

const (
	CorrosionFresh     CorrosionLevel = "Fresh"
	CorrosionFamiliar  CorrosionLevel = "Familiar"
	CorrosionDusty     CorrosionLevel = "Dusty"
	CorrosionRusty     CorrosionLevel = "Rusty"
	CorrosionForgotten CorrosionLevel = "Forgotten"
)

var corrosionOrder = []CorrosionLevel{
	CorrosionFresh,
	CorrosionFamiliar,
	CorrosionDusty,
	CorrosionRusty,
	CorrosionForgotten,
}

// CorrosionIndex returns the ordinal position of a corrosion level,
// or -1 for an unknown label.
func CorrosionIndex(level CorrosionLevel) int {
	for i, l := range corrosionOrder {
		if l == level {
			return i
		}
	}
	return -1
}

// Theme is a broad life category (e.g. "Physical Health") leveled via
// XP with exponential thresholds. Sub-themes reference their parent by
// id; deleting a parent orphans the children rather than cascading.
type Theme struct {
	bun.BaseModel `bun:"table:themes,alias:t"`

	ID            string         `bun:"id,pk"`
	UserID        string         `bun:"user_id,notnull"`
	Name          string         `bun:"name,notnull"`
	Description   string         `bun:"description"`
	Level         int            `bun:"level,notnull,default:0"`
	XP            float64        `bun:"xp,notnull,default:0"`
	XPToNextLevel float64        `bun:"xp_to_next_level,notnull,default:100"`
	Corrosion     CorrosionLevel `bun:"corrosion_level,notnull,default:'Fresh'"`
	ParentThemeID *string        `bun:"parent_theme_id"`
	Metadata      map[string]any `bun:"metadata,type:jsonb"`
	CreatedAt     time.Time      `bun:"created_at,notnull"`
	UpdatedAt     time.Time      `bun:"updated_at,notnull"`
}

// AddXP accumulates XP and performs as many level-ups as the amount
// covers, carrying overflow forward. After it returns, XP is always
// strictly below the next-level threshold.
func (t *Theme) AddXP(amount float64) error {
	if amount < 0 {
		return ErrNegativeXP
	}

	t.XP += amount
	for t.XP >= t.XPToNextLevel {
		t.levelUp()
	}
	return nil
}

func (t *Theme) levelUp() {
	t.XP -= t.XPToNextLevel
	t.Level++
	t.XPToNextLevel = t.NextLevelXP()
}

// NextLevelXP computes the threshold for the level after the current
// one: 100 * 1.15^level.
func (t *Theme) NextLevelXP() float64 {
	return themeBaseXPThreshold * math.Pow(themeXPScalingFactor, float64(t.Level))
}

// AddXPBreakdown records the source of an XP grant in the metadata
// xp_breakdown sub-map, accumulating per source.
func (t *Theme) AddXPBreakdown(source string, amount float64) {
	t.Metadata = addBreakdown(t.Metadata, source, amount)
}

func addBreakdown(metadata map[string]any, source string, amount float64) map[string]any {
	if metadata == nil {
		metadata = make(map[string]any)
	}

	breakdown, _ := metadata["xp_breakdown"].(map[string]any)
	if breakdown == nil {
		breakdown = make(map[string]any)
	}

	current, _ := toFloat(breakdown[source])
	breakdown[source] = current + amount
	metadata["xp_breakdown"] = breakdown
	return metadata
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
