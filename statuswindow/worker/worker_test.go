package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
	"github.com/statuswindow/statuswindow/statuswindow/orchestrator"
)

type fakeWorkerStore struct {
	retries []*models.JournalEntry
	userIDs []string
	listErr error
}

func (f *fakeWorkerStore) PendingRetries(_ context.Context, limit int) ([]*models.JournalEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.retries) > limit {
		return f.retries[:limit], nil
	}
	return f.retries, nil
}

func (f *fakeWorkerStore) UserIDs(_ context.Context) ([]string, error) {
	return f.userIDs, nil
}

type fakePipeline struct {
	mu        sync.Mutex
	processed []string
	checked   []string
	status    string
}

func (f *fakePipeline) ProcessEntry(_ context.Context, entry *models.JournalEntry) (*orchestrator.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed = append(f.processed, entry.ID)
	return &orchestrator.Result{EntryID: entry.ID, Status: f.status}, nil
}

func (f *fakePipeline) CheckUserUnlocks(_ context.Context, userID string) ([]*models.UserTitle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checked = append(f.checked, userID)
	return nil, nil
}

func retryEntry(id string) *models.JournalEntry {
	return &models.JournalEntry{
		ID:               id,
		UserID:           "u1",
		ProcessingStatus: models.ProcessingPending,
		RetryCount:       1,
	}
}

func TestRetryPendingProcessesBatch(t *testing.T) {
	store := &fakeWorkerStore{retries: []*models.JournalEntry{retryEntry("e1"), retryEntry("e2")}}
	pipeline := &fakePipeline{status: models.ProcessingCompleted}
	w := New(store, pipeline, Config{PollInterval: time.Second, BatchSize: 10})

	w.retryPending(context.Background())

	assert.Equal(t, []string{"e1", "e2"}, pipeline.processed)
}

func TestRetryPendingHonorsBatchSize(t *testing.T) {
	store := &fakeWorkerStore{retries: []*models.JournalEntry{
		retryEntry("e1"), retryEntry("e2"), retryEntry("e3"),
	}}
	pipeline := &fakePipeline{status: models.ProcessingCompleted}
	w := New(store, pipeline, Config{PollInterval: time.Second, BatchSize: 2})

	w.retryPending(context.Background())

	assert.Len(t, pipeline.processed, 2)
}

func TestRetryPendingSurvivesListError(t *testing.T) {
	store := &fakeWorkerStore{listErr: errors.New("db down")}
	pipeline := &fakePipeline{}
	w := New(store, pipeline, Config{})

	w.retryPending(context.Background())

	assert.Empty(t, pipeline.processed)
}

func TestReconcileTitlesSweepsAllUsers(t *testing.T) {
	store := &fakeWorkerStore{userIDs: []string{"u1", "u2", "u3"}}
	pipeline := &fakePipeline{}
	w := New(store, pipeline, Config{})

	w.reconcileTitles(context.Background())

	assert.ElementsMatch(t, []string{"u1", "u2", "u3"}, pipeline.checked)
}

func TestNewAppliesDefaults(t *testing.T) {
	w := New(&fakeWorkerStore{}, &fakePipeline{}, Config{})

	assert.Equal(t, defaultPollInterval, w.config.PollInterval)
	assert.Equal(t, defaultBatchSize, w.config.BatchSize)
}
