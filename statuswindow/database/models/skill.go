package models

import (
	"math"
	"time"

	"github.com/uptrace/bun"
)

const (
	skillBaseXPThreshold = 50.0
	skillXPScalingFactor = 1.2

	practiceXPPerMinute = 0.5
)

// Skill ranks from lowest to highest.
const (
	RankBeginner     = "Beginner"
	RankAmateur      = "Amateur"
	RankIntermediate = "Intermediate"
	RankAdvanced     = "Advanced"
	RankExpert       = "Expert"
	RankMaster       = "Master"
)

// SkillRankOrder lists ranks from lowest to highest.
var SkillRankOrder = []string{
	RankBeginner,
	RankAmateur,
	RankIntermediate,
	RankAdvanced,
	RankExpert,
	RankMaster,
}

// Skill is a specific competency, optionally under a theme and
// optionally part of a skill tree via ParentSkillID. It levels like a
// theme but with its own constants and carries a rank derived from the
// level.
type Skill struct {
	bun.BaseModel `bun:"table:skills,alias:s"`

	ID                  string         `bun:"id,pk"`
	UserID              string         `bun:"user_id,notnull"`
	ThemeID             *string        `bun:"theme_id"`
	ParentSkillID       *string        `bun:"parent_skill_id"`
	Name                string         `bun:"name,notnull"`
	Description         string         `bun:"description"`
	Level               int            `bun:"level,notnull,default:0"`
	XP                  float64        `bun:"xp,notnull,default:0"`
	XPToNextLevel       float64        `bun:"xp_to_next_level,notnull,default:50"`
	Rank                string         `bun:"rank,notnull,default:'Beginner'"`
	PracticeTimeMinutes int            `bun:"practice_time_minutes,notnull,default:0"`
	Metadata            map[string]any `bun:"metadata,type:jsonb"`
	CreatedAt           time.Time      `bun:"created_at,notnull"`
	UpdatedAt           time.Time      `bun:"updated_at,notnull"`
}

// AddXP accumulates XP and performs as many level-ups as the amount
// covers, carrying overflow forward and recomputing the rank on every
// level change.
func (s *Skill) AddXP(amount float64) error {
	if amount < 0 {
		return ErrNegativeXP
	}

	s.XP += amount
	for s.XP >= s.XPToNextLevel {
		s.levelUp()
	}
	return nil
}

func (s *Skill) levelUp() {
	s.XP -= s.XPToNextLevel
	s.Level++
	s.XPToNextLevel = s.NextLevelXP()
	s.UpdateRank()
}

// NextLevelXP computes the threshold for the level after the current
// one: 50 * 1.2^level.
func (s *Skill) NextLevelXP() float64 {
	return skillBaseXPThreshold * math.Pow(skillXPScalingFactor, float64(s.Level))
}

// UpdateRank recomputes the rank from the current level using the
// six-tier ladder.
func (s *Skill) UpdateRank() {
	switch {
	case s.Level < 5:
		s.Rank = RankBeginner
	case s.Level < 15:
		s.Rank = RankAmateur
	case s.Level < 30:
		s.Rank = RankIntermediate
	case s.Level < 50:
		s.Rank = RankAdvanced
	case s.Level < 80:
		s.Rank = RankExpert
	default:
		s.Rank = RankMaster
	}
}

// AddPracticeTime logs practice minutes and awards XP at 0.5 XP per
// minute scaled by the multiplier.
func (s *Skill) AddPracticeTime(minutes int, xpMultiplier float64) error {
	if minutes < 0 {
		return ErrNegativeXP
	}

	s.PracticeTimeMinutes += minutes
	return s.AddXP(float64(minutes) * practiceXPPerMinute * xpMultiplier)
}

// AddXPBreakdown records the source of an XP grant in the metadata
// xp_breakdown sub-map, accumulating per source.
func (s *Skill) AddXPBreakdown(source string, amount float64) {
	s.Metadata = addBreakdown(s.Metadata, source, amount)
}
