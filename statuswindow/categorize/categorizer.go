// Package categorize defines the categorization collaborator slot.
// Real categorization (AI or otherwise) lives outside this core; the
// pipeline only depends on the interface.
package categorize

import (
	"context"
	"errors"
	"strings"

	"github.com/statuswindow/statuswindow/statuswindow/database/models"
)

// ErrMissingTranscript marks a voice entry whose transcript never
// arrived. The condition is permanent, so the pipeline fails such
// entries immediately instead of retrying.
var ErrMissingTranscript = errors.New("no transcript available for voice entry")

// Categorizer turns one journal entry into detected themes, skills and
// sentiment.
type Categorizer interface {
	Categorize(ctx context.Context, entry *models.JournalEntry) (*models.Categories, error)
}

// voice entry types require a transcript in Content.
func requiresTranscript(entryType string) bool {
	return entryType == models.EntryTypeVoice || entryType == models.EntryTypeVoiceTranscription
}

// Stub is the in-core placeholder categorizer. It detects nothing but
// enforces the transcript precondition shared by every implementation.
type Stub struct{}

func NewStub() Stub {
	return Stub{}
}

func (Stub) Categorize(_ context.Context, entry *models.JournalEntry) (*models.Categories, error) {
	if requiresTranscript(entry.EntryType) && strings.TrimSpace(entry.Content) == "" {
		return nil, ErrMissingTranscript
	}
	return &models.Categories{
		Themes:    []models.CategoryRef{},
		Skills:    []models.CategoryRef{},
		Sentiment: "neutral",
	}, nil
}
