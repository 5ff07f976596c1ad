package repositories

import (
	"context"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
)

// TranscriptRepository defines persistence operations for the run catalog
type TranscriptRepository interface {
	// Save stores a record with its episodes and utterances, replacing any
	// earlier record for the same object name
	Save(ctx context.Context, rec *entities.TranscriptRecord) error
	GetByObjectName(ctx context.Context, objectName string) (*entities.TranscriptRecord, error)
	List(ctx context.Context, offset, limit int) ([]*entities.TranscriptRecord, int64, error)
}
