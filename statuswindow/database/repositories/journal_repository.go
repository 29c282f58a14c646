package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
	"github.com/statuswindow/statuswindow/statuswindow/logger"
)

type JournalRepository interface {
	CreateEntry(ctx context.Context, entry *models.JournalEntry) error
	EntryByID(ctx context.Context, id string) (*models.JournalEntry, error)
	EntriesByUser(ctx context.Context, userID string) ([]*models.JournalEntry, error)
	CountEntries(ctx context.Context, userID string) (int, error)
	UpdateEntry(ctx context.Context, entry *models.JournalEntry) error
	PendingRetries(ctx context.Context, limit int) ([]*models.JournalEntry, error)
}

type journalRepository struct {
	db *bun.DB
}

func NewJournalRepository(db *bun.DB) JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) CreateEntry(ctx context.Context, entry *models.JournalEntry) error {
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = time.Now()
	_, err := r.db.NewInsert().Model(entry).Exec(ctx)
	return err
}

func (r *journalRepository) EntryByID(ctx context.Context, id string) (*models.JournalEntry, error) {
	entry := new(models.JournalEntry)
	err := r.db.NewSelect().
		Model(entry).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

func (r *journalRepository) EntriesByUser(ctx context.Context, userID string) ([]*models.JournalEntry, error) {
	var entries []*models.JournalEntry
	err := r.db.NewSelect().
		Model(&entries).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)
	return entries, err
}

func (r *journalRepository) CountEntries(ctx context.Context, userID string) (int, error) {
	return r.db.NewSelect().
		Model((*models.JournalEntry)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
}

func (r *journalRepository) UpdateEntry(ctx context.Context, entry *models.JournalEntry) error {
	entry.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(entry).
		WherePK().
		Exec(ctx)
	return err
}

// PendingRetries returns entries that failed at least once and are
// waiting for another processing attempt, oldest retry first.
func (r *journalRepository) PendingRetries(ctx context.Context, limit int) ([]*models.JournalEntry, error) {
	start := time.Now()
	var entries []*models.JournalEntry
	err := r.db.NewSelect().
		Model(&entries).
		Where("processing_status = ?", models.ProcessingPending).
		Where("retry_count > 0").
		Order("last_retry_at ASC NULLS FIRST").
		Limit(limit).
		Scan(ctx)
	logger.LogQuery("journal_entries.pending_retries", time.Since(start), err)
	return entries, err
}
