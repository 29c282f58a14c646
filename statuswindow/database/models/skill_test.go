package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSkill() *Skill {
	s := &Skill{Level: 0, XP: 0, Rank: RankBeginner}
	s.XPToNextLevel = s.NextLevelXP()
	return s
}

func TestSkillAddXPLevelUp(t *testing.T) {
	skill := newSkill()

	// 50 + 60 = 110 crosses two thresholds; 10 carries over.
	require.NoError(t, skill.AddXP(120))

	assert.Equal(t, 2, skill.Level)
	assert.InDelta(t, 10, skill.XP, 0.001)
	assert.InDelta(t, 72, skill.XPToNextLevel, 0.001)
}

func TestSkillRankLadder(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{0, RankBeginner},
		{4, RankBeginner},
		{5, RankAmateur},
		{14, RankAmateur},
		{15, RankIntermediate},
		{29, RankIntermediate},
		{30, RankAdvanced},
		{49, RankAdvanced},
		{50, RankExpert},
		{79, RankExpert},
		{80, RankMaster},
		{200, RankMaster},
	}

	for _, tt := range tests {
		skill := newSkill()
		skill.Level = tt.level
		skill.UpdateRank()
		assert.Equal(t, tt.want, skill.Rank, "level %d", tt.level)
	}
}

func TestSkillAddPracticeTime(t *testing.T) {
	skill := newSkill()

	// 60 minutes * 0.5 XP/min * 2.0 = 60 XP: one level-up, 10 over.
	require.NoError(t, skill.AddPracticeTime(60, 2.0))

	assert.Equal(t, 60, skill.PracticeTimeMinutes)
	assert.Equal(t, 1, skill.Level)
	assert.InDelta(t, 10, skill.XP, 0.001)
}

func TestSkillAddPracticeTimeNegative(t *testing.T) {
	skill := newSkill()

	require.ErrorIs(t, skill.AddPracticeTime(-5, 1.0), ErrNegativeXP)
	assert.Zero(t, skill.PracticeTimeMinutes)
}

func TestSkillRankOrderMatchesLadder(t *testing.T) {
	require.Len(t, SkillRankOrder, 6)
	assert.Equal(t, RankBeginner, SkillRankOrder[0])
	assert.Equal(t, RankMaster, SkillRankOrder[5])
}
