package transcript

import (
	"time"

	"github.com/johnquangdev/radio-transcriber/internal/adapter/dto/common"
)

// UtteranceResponse is a labeled utterance
type UtteranceResponse struct {
	Index     int      `json:"index"`
	Speaker   string   `json:"speaker"`
	Text      string   `json:"text"`
	Language  string   `json:"language,omitempty"`
	StartTime *float64 `json:"start_time,omitempty"`
	EndTime   *float64 `json:"end_time,omitempty"`
}

// SegmentResponse is one episode segment
type SegmentResponse struct {
	Start           int                 `json:"start"`
	End             int                 `json:"end"`
	Evidence        []string            `json:"boundary_evidence"`
	DurationSeconds float64             `json:"duration_seconds"`
	Oversized       bool                `json:"oversized,omitempty"`
	Announcement    string              `json:"announcement,omitempty"`
	Speakers        []string            `json:"speakers"`
	Utterances      []UtteranceResponse `json:"utterances"`
}

// SegmentResultResponse is the engine output for a segmentation request
type SegmentResultResponse struct {
	Segments []SegmentResponse `json:"segments"`
	Text     string            `json:"text"`
}

// ProcessResponse describes one processed audio file
type ProcessResponse struct {
	AudioPath        string  `json:"audio_path"`
	ObjectName       string  `json:"object_name"`
	Skipped          bool    `json:"skipped"`
	Backend          string  `json:"backend,omitempty"`
	DurationSeconds  float64 `json:"duration_seconds"`
	Episodes         int     `json:"episodes"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
	Text             string  `json:"text,omitempty"`
}

// TranscriptTextResponse is a stored rendered transcript
type TranscriptTextResponse struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// TranscriptSummaryResponse is one catalog entry
type TranscriptSummaryResponse struct {
	ID               string    `json:"id"`
	SourceFile       string    `json:"source_file"`
	ObjectName       string    `json:"object_name"`
	Backend          string    `json:"backend"`
	Language         string    `json:"language"`
	DurationSeconds  float64   `json:"duration_seconds"`
	EpisodeCount     int       `json:"episode_count"`
	HasTracks        bool      `json:"has_tracks"`
	Speakers         []string  `json:"speakers"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// TranscriptListResponse is a page of catalog entries
type TranscriptListResponse struct {
	Transcripts []TranscriptSummaryResponse `json:"transcripts"`
	Pagination  *common.PaginationResponse  `json:"pagination"`
}
