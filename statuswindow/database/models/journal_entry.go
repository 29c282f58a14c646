package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Entry types.
const (
	EntryTypeText               = "text"
	EntryTypeVoice              = "voice"
	EntryTypeVoiceTranscription = "voice_transcription"
	EntryTypeFileUpload         = "file_upload"
)

// Processing statuses. "pending" entries are eligible for retry.
const (
	ProcessingPending    = "pending"
	ProcessingInProgress = "processing"
	ProcessingCompleted  = "completed"
	ProcessingFailed     = "failed"
)

// CategoryRef names one detected theme or skill. Confidence is set by
// categorizers that score their detections; zero means unscored.
type CategoryRef struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Categories is the categorization result attached to an entry.
type Categories struct {
	Themes           []CategoryRef `json:"themes"`
	Skills           []CategoryRef `json:"skills"`
	Sentiment        string        `json:"sentiment"`
	ManualCompletion bool          `json:"manual_completion,omitempty"`
	DetectedKeywords []string      `json:"detected_keywords,omitempty"`
}

// JournalEntry is a user's journal submission. The processing
// orchestrator is the only writer of the processing fields; entries are
// never deleted by the pipeline, so a failed entry remains inspectable.
type JournalEntry struct {
	bun.BaseModel `bun:"table:journal_entries,alias:je"`

	ID               string      `bun:"id,pk"`
	UserID           string      `bun:"user_id,notnull"`
	Content          string      `bun:"content,notnull"`
	EntryType        string      `bun:"entry_type,notnull,default:'text'"`
	AICategories     *Categories `bun:"ai_categories,type:jsonb"`
	AIProcessed      bool        `bun:"ai_processed,notnull,default:false"`
	ProcessingStatus string      `bun:"processing_status,notnull,default:'pending'"`
	ProcessingError  string      `bun:"processing_error"`
	RetryCount       int         `bun:"retry_count,notnull,default:0"`
	LastRetryAt      *time.Time  `bun:"last_retry_at"`
	CreatedAt        time.Time   `bun:"created_at,notnull"`
	UpdatedAt        time.Time   `bun:"updated_at,notnull"`
}
