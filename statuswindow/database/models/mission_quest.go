package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Quest statuses. "completed" is terminal and idempotent.
const (
	QuestNotStarted = "not_started"
	QuestInProgress = "in_progress"
	QuestCompleted  = "completed"
	QuestFailed     = "failed"
)

// MissionQuestTemplate is a reusable quest definition shared across
// users. CompletionCondition is authored JSON; its "type" tag selects
// the completion checker (yes_no, accumulation, frequency,
// keyword_match).
type MissionQuestTemplate struct {
	bun.BaseModel `bun:"table:mq_templates,alias:mqt"`

	ID                  string         `bun:"id,pk"`
	Name                string         `bun:"name,notnull"`
	DescriptionTemplate string         `bun:"description_template"`
	Type                string         `bun:"type"`
	Structure           string         `bun:"structure"`
	CompletionCondition map[string]any `bun:"completion_condition,type:jsonb"`
	RewardXP            int            `bun:"reward_xp,notnull,default:0"`
	RewardCoins         int            `bun:"reward_coins,notnull,default:0"`
	Difficulty          string         `bun:"difficulty,notnull,default:'medium'"`
	Category            string         `bun:"category"`
	CreatedAt           time.Time      `bun:"created_at,notnull"`
	UpdatedAt           time.Time      `bun:"updated_at,notnull"`
}

// UserMissionQuest tracks one user's progress against a quest. It may
// reference a template or stand alone. ParentID supports quest
// hierarchies (story arc -> mission -> sub-quest); deleting a parent
// orphans the children. Progress is not validated: it may exceed the
// target on completion or go negative.
type UserMissionQuest struct {
	bun.BaseModel `bun:"table:user_mq,alias:umq"`

	ID                 string         `bun:"id,pk"`
	UserID             string         `bun:"user_id,notnull"`
	TemplateID         *string        `bun:"template_id"`
	ParentID           *string        `bun:"parent_mq_id"`
	Name               string         `bun:"name,notnull"`
	Description        string         `bun:"personalized_description"`
	Status             string         `bun:"status,notnull,default:'not_started'"`
	CompletionProgress int            `bun:"completion_progress,notnull,default:0"`
	CompletionTarget   int            `bun:"completion_target,notnull,default:100"`
	Metadata           map[string]any `bun:"metadata,type:jsonb"`
	CreatedAt          time.Time      `bun:"created_at,notnull"`
	Deadline           *time.Time     `bun:"deadline"`
	CompletedAt        *time.Time     `bun:"completed_at"`

	Template *MissionQuestTemplate `bun:"rel:belongs-to,join:template_id=id"`
}

// CompletionType resolves the checker tag from the template condition,
// defaulting to yes_no for template-less or untyped quests.
func (q *UserMissionQuest) CompletionType() string {
	if q.Template != nil && q.Template.CompletionCondition != nil {
		if t, ok := q.Template.CompletionCondition["type"].(string); ok && t != "" {
			return t
		}
	}
	return "yes_no"
}

// Start marks the quest in progress if it has not been started.
func (q *UserMissionQuest) Start() {
	if q.Status == QuestNotStarted {
		q.Status = QuestInProgress
	}
}

// Complete marks the quest completed, snapping progress to the target.
func (q *UserMissionQuest) Complete() {
	q.Status = QuestCompleted
	q.CompletionProgress = q.CompletionTarget
	now := time.Now().UTC()
	q.CompletedAt = &now
}

// Fail marks the quest failed.
func (q *UserMissionQuest) Fail() {
	q.Status = QuestFailed
}

// UpdateProgress adds to the progress counter and completes the quest
// when the target is reached. Returns whether the quest completed.
func (q *UserMissionQuest) UpdateProgress(amount int) bool {
	q.CompletionProgress += amount

	if q.CompletionProgress >= q.CompletionTarget {
		q.Status = QuestCompleted
		now := time.Now().UTC()
		q.CompletedAt = &now
		return true
	}

	if q.Status == QuestNotStarted {
		q.Status = QuestInProgress
	}
	return false
}

// CompletionPercentage reports progress relative to the target.
func (q *UserMissionQuest) CompletionPercentage() float64 {
	if q.CompletionTarget == 0 {
		if q.CompletionProgress > 0 {
			return 100.0
		}
		return 0.0
	}
	return float64(q.CompletionProgress) / float64(q.CompletionTarget) * 100
}
