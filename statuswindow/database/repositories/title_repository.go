package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
)

type TitleRepository interface {
	CreateTitleTemplate(ctx context.Context, template *models.TitleTemplate) error
	TitleTemplateByID(ctx context.Context, id string) (*models.TitleTemplate, error)
	TitleTemplates(ctx context.Context) ([]*models.TitleTemplate, error)
	TitlesByUser(ctx context.Context, userID string) ([]*models.UserTitle, error)
	EquippedTitles(ctx context.Context, userID string) ([]*models.UserTitle, error)
	CreateUserTitle(ctx context.Context, title *models.UserTitle) error
	UpdateUserTitle(ctx context.Context, title *models.UserTitle) error
}

type titleRepository struct {
	db *bun.DB
}

func NewTitleRepository(db *bun.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) CreateTitleTemplate(ctx context.Context, template *models.TitleTemplate) error {
	template.CreatedAt = time.Now()
	template.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(template).Exec(ctx)
	return err
}

func (r *titleRepository) TitleTemplateByID(ctx context.Context, id string) (*models.TitleTemplate, error) {
	template := new(models.TitleTemplate)
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

func (r *titleRepository) TitleTemplates(ctx context.Context) ([]*models.TitleTemplate, error) {
	var templates []*models.TitleTemplate
	err := r.db.NewSelect().
		Model(&templates).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	return templates, err
}

func (r *titleRepository) TitlesByUser(ctx context.Context, userID string) ([]*models.UserTitle, error) {
	var titles []*models.UserTitle
	err := r.db.NewSelect().
		Model(&titles).
		Relation("Template").
		Where("ut.user_id = ?", userID).
		Order("ut.acquired_at ASC").
		Scan(ctx)
	return titles, err
}

func (r *titleRepository) EquippedTitles(ctx context.Context, userID string) ([]*models.UserTitle, error) {
	var titles []*models.UserTitle
	err := r.db.NewSelect().
		Model(&titles).
		Relation("Template").
		Where("ut.user_id = ? AND ut.is_equipped = TRUE", userID).
		Scan(ctx)
	return titles, err
}

func (r *titleRepository) CreateUserTitle(ctx context.Context, title *models.UserTitle) error {
	if title.AcquiredAt.IsZero() {
		title.AcquiredAt = time.Now()
	}
	_, err := r.db.NewInsert().Model(title).Exec(ctx)
	return err
}

func (r *titleRepository) UpdateUserTitle(ctx context.Context, title *models.UserTitle) error {
	_, err := r.db.NewUpdate().
		Model(title).
		WherePK().
		Exec(ctx)
	return err
}
