package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TranscriptRecord is the catalog row for one processed audio file
type TranscriptRecord struct {
	ID              uuid.UUID                   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SourceFile      string                      `json:"source_file" gorm:"type:varchar(512);not null;index"`
	ObjectName      string                      `json:"object_name" gorm:"type:varchar(512);not null;uniqueIndex"`
	Backend         string                      `json:"backend,omitempty" gorm:"type:varchar(50)"`
	Language        string                      `json:"language,omitempty" gorm:"type:varchar(20)"`
	DurationSeconds float64                     `json:"duration_seconds"`
	EpisodeCount    int                         `json:"episode_count"`
	HasTracks       bool                        `json:"has_tracks" gorm:"default:false"`
	Speakers        datatypes.JSONSlice[string] `json:"speakers,omitempty" gorm:"type:jsonb"`
	ProcessingTime  int                         `json:"processing_time,omitempty"` // in milliseconds
	Episodes        []EpisodeRecord             `json:"episodes,omitempty" gorm:"foreignKey:TranscriptID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time                   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time                   `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (TranscriptRecord) TableName() string {
	return "transcripts"
}

// NewTranscriptRecord creates a catalog record for an audio file
func NewTranscriptRecord(sourceFile, objectName string) *TranscriptRecord {
	return &TranscriptRecord{
		ID:         uuid.New(),
		SourceFile: sourceFile,
		ObjectName: objectName,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}
