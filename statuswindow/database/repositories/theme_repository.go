package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
)

type ThemeRepository interface {
	CreateTheme(ctx context.Context, theme *models.Theme) error
	ThemeByID(ctx context.Context, id string) (*models.Theme, error)
	ThemesByIDs(ctx context.Context, ids []string) ([]*models.Theme, error)
	ThemesByUser(ctx context.Context, userID string) ([]*models.Theme, error)
	ThemeByName(ctx context.Context, userID, name string) (*models.Theme, error)
	UpdateTheme(ctx context.Context, theme *models.Theme) error
	DeleteTheme(ctx context.Context, id string) error
}

type themeRepository struct {
	db *bun.DB
}

func NewThemeRepository(db *bun.DB) ThemeRepository {
	return &themeRepository{db: db}
}

func (r *themeRepository) CreateTheme(ctx context.Context, theme *models.Theme) error {
	theme.CreatedAt = time.Now()
	theme.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(theme).Exec(ctx)
	return err
}

// ThemeByID returns (nil, nil) when the theme does not exist; the
// pipeline treats vanished targets as a non-error.
func (r *themeRepository) ThemeByID(ctx context.Context, id string) (*models.Theme, error) {
	theme := new(models.Theme)
	err := r.db.NewSelect().
		Model(theme).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return theme, nil
}

func (r *themeRepository) ThemesByIDs(ctx context.Context, ids []string) ([]*models.Theme, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var themes []*models.Theme
	err := r.db.NewSelect().
		Model(&themes).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	return themes, err
}

func (r *themeRepository) ThemesByUser(ctx context.Context, userID string) ([]*models.Theme, error) {
	var themes []*models.Theme
	err := r.db.NewSelect().
		Model(&themes).
		Where("user_id = ?", userID).
		Order("name ASC").
		Scan(ctx)
	return themes, err
}

func (r *themeRepository) ThemeByName(ctx context.Context, userID, name string) (*models.Theme, error) {
	theme := new(models.Theme)
	err := r.db.NewSelect().
		Model(theme).
		Where("user_id = ? AND name = ?", userID, name).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return theme, nil
}

func (r *themeRepository) UpdateTheme(ctx context.Context, theme *models.Theme) error {
	theme.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(theme).
		WherePK().
		Exec(ctx)
	return err
}

// DeleteTheme removes a theme and orphans its sub-themes and skills
// (parent references set to NULL) rather than cascading.
func (r *themeRepository) DeleteTheme(ctx context.Context, id string) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model((*models.Theme)(nil)).
			Set("parent_theme_id = NULL").
			Where("parent_theme_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewUpdate().
			Model((*models.Skill)(nil)).
			Set("theme_id = NULL").
			Where("theme_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*models.Theme)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}
