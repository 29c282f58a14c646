package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
)

type SkillRepository interface {
	CreateSkill(ctx context.Context, skill *models.Skill) error
	SkillByID(ctx context.Context, id string) (*models.Skill, error)
	SkillsByIDs(ctx context.Context, ids []string) ([]*models.Skill, error)
	SkillsByUser(ctx context.Context, userID string) ([]*models.Skill, error)
	SkillByName(ctx context.Context, userID, name string) (*models.Skill, error)
	HasSkillWithRank(ctx context.Context, userID string, ranks []string) (bool, error)
	UpdateSkill(ctx context.Context, skill *models.Skill) error
	DeleteSkill(ctx context.Context, id string) error
}

type skillRepository struct {
	db *bun.DB
}

func NewSkillRepository(db *bun.DB) SkillRepository {
	return &skillRepository{db: db}
}

func (r *skillRepository) CreateSkill(ctx context.Context, skill *models.Skill) error {
	skill.CreatedAt = time.Now()
	skill.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(skill).Exec(ctx)
	return err
}

func (r *skillRepository) SkillByID(ctx context.Context, id string) (*models.Skill, error) {
	skill := new(models.Skill)
	err := r.db.NewSelect().
		Model(skill).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return skill, nil
}

func (r *skillRepository) SkillsByIDs(ctx context.Context, ids []string) ([]*models.Skill, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var skills []*models.Skill
	err := r.db.NewSelect().
		Model(&skills).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	return skills, err
}

func (r *skillRepository) SkillsByUser(ctx context.Context, userID string) ([]*models.Skill, error) {
	var skills []*models.Skill
	err := r.db.NewSelect().
		Model(&skills).
		Where("user_id = ?", userID).
		Order("name ASC").
		Scan(ctx)
	return skills, err
}

func (r *skillRepository) SkillByName(ctx context.Context, userID, name string) (*models.Skill, error) {
	skill := new(models.Skill)
	err := r.db.NewSelect().
		Model(skill).
		Where("user_id = ? AND name = ?", userID, name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return skill, nil
}

func (r *skillRepository) HasSkillWithRank(ctx context.Context, userID string, ranks []string) (bool, error) {
	if len(ranks) == 0 {
		return false, nil
	}
	return r.db.NewSelect().
		Model((*models.Skill)(nil)).
		Where("user_id = ? AND rank IN (?)", userID, bun.In(ranks)).
		Exists(ctx)
}

func (r *skillRepository) UpdateSkill(ctx context.Context, skill *models.Skill) error {
	skill.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(skill).
		WherePK().
		Exec(ctx)
	return err
}

// DeleteSkill removes a skill and orphans its children in the skill
// tree rather than cascading.
func (r *skillRepository) DeleteSkill(ctx context.Context, id string) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model((*models.Skill)(nil)).
			Set("parent_skill_id = NULL").
			Where("parent_skill_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*models.Skill)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}
