package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/internal/domain/repositories"
)

// TranscriptRepository handles transcript catalog operations
type TranscriptRepository struct {
	db *gorm.DB
}

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(db *gorm.DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// Save replaces the catalog entry for rec.ObjectName in one transaction
func (r *TranscriptRepository) Save(ctx context.Context, rec *entities.TranscriptRecord) error {
	if rec == nil {
		return errors.New("transcript cannot be nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("object_name = ?", rec.ObjectName).Delete(&entities.TranscriptRecord{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Create(rec).Error
	})
}

// GetByObjectName retrieves a record with its episodes and utterances
func (r *TranscriptRepository) GetByObjectName(ctx context.Context, objectName string) (*entities.TranscriptRecord, error) {
	var rec entities.TranscriptRecord
	err := r.db.WithContext(ctx).
		Preload("Episodes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Episodes.Utterances", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("object_name = ?", objectName).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// List returns a page of records, newest first, and the total count
func (r *TranscriptRepository) List(ctx context.Context, offset, limit int) ([]*entities.TranscriptRecord, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&entities.TranscriptRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []*entities.TranscriptRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

var _ repositories.TranscriptRepository = (*TranscriptRepository)(nil)
