package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
)

type QuestRepository interface {
	CreateQuestTemplate(ctx context.Context, template *models.MissionQuestTemplate) error
	QuestTemplateByID(ctx context.Context, id string) (*models.MissionQuestTemplate, error)
	CreateQuest(ctx context.Context, quest *models.UserMissionQuest) error
	QuestByID(ctx context.Context, userID, id string) (*models.UserMissionQuest, error)
	ActiveQuests(ctx context.Context, userID string) ([]*models.UserMissionQuest, error)
	QuestsByUser(ctx context.Context, userID string) ([]*models.UserMissionQuest, error)
	CountCompletedQuests(ctx context.Context, userID string) (int, error)
	UpdateQuest(ctx context.Context, quest *models.UserMissionQuest) error
	DeleteQuest(ctx context.Context, id string) error
}

type questRepository struct {
	db *bun.DB
}

func NewQuestRepository(db *bun.DB) QuestRepository {
	return &questRepository{db: db}
}

func (r *questRepository) CreateQuestTemplate(ctx context.Context, template *models.MissionQuestTemplate) error {
	template.CreatedAt = time.Now()
	template.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(template).Exec(ctx)
	return err
}

func (r *questRepository) QuestTemplateByID(ctx context.Context, id string) (*models.MissionQuestTemplate, error) {
	template := new(models.MissionQuestTemplate)
	err := r.db.NewSelect().
		Model(template).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return template, nil
}

func (r *questRepository) CreateQuest(ctx context.Context, quest *models.UserMissionQuest) error {
	quest.CreatedAt = time.Now()
	_, err := r.db.NewInsert().Model(quest).Exec(ctx)
	return err
}

func (r *questRepository) QuestByID(ctx context.Context, userID, id string) (*models.UserMissionQuest, error) {
	quest := new(models.UserMissionQuest)
	err := r.db.NewSelect().
		Model(quest).
		Relation("Template").
		Where("umq.id = ? AND umq.user_id = ?", id, userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return quest, nil
}

// ActiveQuests returns the user's in-progress quests with templates
// loaded, in a stable order so the matcher's event sequence is
// deterministic.
func (r *questRepository) ActiveQuests(ctx context.Context, userID string) ([]*models.UserMissionQuest, error) {
	var quests []*models.UserMissionQuest
	err := r.db.NewSelect().
		Model(&quests).
		Relation("Template").
		Where("umq.user_id = ? AND umq.status = ?", userID, models.QuestInProgress).
		Order("umq.created_at ASC", "umq.id ASC").
		Scan(ctx)
	return quests, err
}

func (r *questRepository) QuestsByUser(ctx context.Context, userID string) ([]*models.UserMissionQuest, error) {
	var quests []*models.UserMissionQuest
	err := r.db.NewSelect().
		Model(&quests).
		Relation("Template").
		Where("umq.user_id = ?", userID).
		Order("umq.created_at ASC").
		Scan(ctx)
	return quests, err
}

func (r *questRepository) CountCompletedQuests(ctx context.Context, userID string) (int, error) {
	return r.db.NewSelect().
		Model((*models.UserMissionQuest)(nil)).
		Where("user_id = ? AND status = ?", userID, models.QuestCompleted).
		Count(ctx)
}

func (r *questRepository) UpdateQuest(ctx context.Context, quest *models.UserMissionQuest) error {
	_, err := r.db.NewUpdate().
		Model(quest).
		WherePK().
		Exec(ctx)
	return err
}

// DeleteQuest removes a quest instance and orphans its children rather
// than cascading.
func (r *questRepository) DeleteQuest(ctx context.Context, id string) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model((*models.UserMissionQuest)(nil)).
			Set("parent_mq_id = NULL").
			Where("parent_mq_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*models.UserMissionQuest)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}
