package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EpisodeRecord is one persisted episode segment
type EpisodeRecord struct {
	ID              uuid.UUID                   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TranscriptID    uuid.UUID                   `json:"transcript_id" gorm:"type:uuid;not null;index"`
	Position        int                         `json:"position" gorm:"not null"`
	Evidence        datatypes.JSONSlice[string] `json:"boundary_evidence" gorm:"type:jsonb"`
	DurationSeconds float64                     `json:"duration_seconds"`
	Oversized       bool                        `json:"oversized" gorm:"default:false"`
	Announcement    string                      `json:"announcement,omitempty" gorm:"type:text"`
	Utterances      []TranscriptUtterance       `json:"utterances,omitempty" gorm:"foreignKey:EpisodeID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time                   `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (EpisodeRecord) TableName() string {
	return "transcript_episodes"
}

// TranscriptUtterance is one labeled utterance of a persisted episode
type TranscriptUtterance struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	EpisodeID uuid.UUID `json:"episode_id" gorm:"type:uuid;not null;index"`
	Position  int       `json:"position" gorm:"not null"`
	Speaker   string    `json:"speaker" gorm:"type:varchar(100);not null"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	Language  string    `json:"language" gorm:"type:varchar(20)"`
	StartTime float64   `json:"start_time"`
	EndTime   float64   `json:"end_time"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (TranscriptUtterance) TableName() string {
	return "transcript_utterances"
}

// NewEpisodeRecords converts labeled segments into catalog rows for transcriptID
func NewEpisodeRecords(transcriptID uuid.UUID, segments []EpisodeSegment) []EpisodeRecord {
	records := make([]EpisodeRecord, 0, len(segments))
	for i, seg := range segments {
		ep := EpisodeRecord{
			ID:              uuid.New(),
			TranscriptID:    transcriptID,
			Position:        i + 1,
			Evidence:        datatypes.JSONSlice[string](seg.Evidence.Strings()),
			DurationSeconds: seg.DurationSeconds,
			Oversized:       seg.Oversized,
			Announcement:    seg.Announcement,
		}
		for j, u := range seg.Utterances {
			ep.Utterances = append(ep.Utterances, TranscriptUtterance{
				ID:        uuid.New(),
				EpisodeID: ep.ID,
				Position:  j,
				Speaker:   u.Speaker,
				Text:      u.Text,
				Language:  string(u.Language),
				StartTime: u.StartTime,
				EndTime:   u.EndTime,
			})
		}
		records = append(records, ep)
	}
	return records
}
