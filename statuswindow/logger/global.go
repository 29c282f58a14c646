package logger

import (
	"log/slog"
	"time"
)

// LogPipeline logs one journal-entry pipeline run.
func LogPipeline(entryID string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "pipeline"),
		slog.String("entry_id", entryID),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Error("Entry processing failed", append(attrs, slog.Any("error", err))...)
	} else {
		slog.Info("Entry processed", attrs...)
	}
}

// LogQuery logs database operations.
func LogQuery(query string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "db"),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Error("Query failed", append(attrs,
			slog.String("query", query),
			slog.Any("error", err),
		)...)
	} else {
		slog.Info("Query executed", append(attrs,
			slog.String("query", query),
		)...)
	}
}
