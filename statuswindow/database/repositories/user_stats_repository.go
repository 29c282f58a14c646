package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
)

type UserStatsRepository interface {
	StatsByUser(ctx context.Context, userID string) (*models.UserStats, error)
	UpsertStats(ctx context.Context, stats *models.UserStats) error
}

type userStatsRepository struct {
	db *bun.DB
}

func NewUserStatsRepository(db *bun.DB) UserStatsRepository {
	return &userStatsRepository{db: db}
}

func (r *userStatsRepository) StatsByUser(ctx context.Context, userID string) (*models.UserStats, error) {
	stats := new(models.UserStats)
	err := r.db.NewSelect().
		Model(stats).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return stats, nil
}

func (r *userStatsRepository) UpsertStats(ctx context.Context, stats *models.UserStats) error {
	stats.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().
		Model(stats).
		On("CONFLICT (user_id) DO UPDATE").
		Set("total_entries = EXCLUDED.total_entries").
		Set("total_xp = EXCLUDED.total_xp").
		Set("quests_completed = EXCLUDED.quests_completed").
		Set("titles_unlocked = EXCLUDED.titles_unlocked").
		Set("current_streak = EXCLUDED.current_streak").
		Set("longest_streak = EXCLUDED.longest_streak").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
