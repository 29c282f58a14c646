package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User owns themes, skills, quests, titles and journal entries. The
// pipeline only reads user ids; account fields belong to the excluded
// API layer.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          string    `bun:"id,pk"`
	Username    string    `bun:"username,notnull"`
	DisplayName string    `bun:"display_name"`
	Coins       int64     `bun:"coins,notnull,default:0"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}
