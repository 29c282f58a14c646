package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UserStats is a per-user aggregate row maintained outside the
// processing pipeline (batch jobs, CRUD layer). Kept in the core schema
// because stats.updated is part of the event catalog.
type UserStats struct {
	bun.BaseModel `bun:"table:user_stats,alias:us"`

	UserID          string    `bun:"user_id,pk"`
	TotalEntries    int       `bun:"total_entries,notnull,default:0"`
	TotalXP         float64   `bun:"total_xp,notnull,default:0"`
	QuestsCompleted int       `bun:"quests_completed,notnull,default:0"`
	TitlesUnlocked  int       `bun:"titles_unlocked,notnull,default:0"`
	CurrentStreak   int       `bun:"current_streak,notnull,default:0"`
	LongestStreak   int       `bun:"longest_streak,notnull,default:0"`
	UpdatedAt       time.Time `bun:"updated_at,notnull"`
}
