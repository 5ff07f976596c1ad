package transcript

// UtteranceInput is one utterance of a segmentation request. Times are
// optional; an utterance without both is treated as untimed.
type UtteranceInput struct {
	Text      string   `json:"text" validate:"required"`
	StartTime *float64 `json:"start_time,omitempty" validate:"omitempty,gte=0"`
	EndTime   *float64 `json:"end_time,omitempty" validate:"omitempty,gte=0"`
	Language  string   `json:"language,omitempty" validate:"omitempty,oneof=primary narrator unknown"`
}

// TrackInput is one acoustic diarization interval
type TrackInput struct {
	TrackID   string  `json:"track_id" validate:"required"`
	StartTime float64 `json:"start_time" validate:"gte=0"`
	EndTime   float64 `json:"end_time" validate:"gtefield=StartTime"`
}

// SegmentRequest runs the engine over an utterance list
type SegmentRequest struct {
	Utterances    []UtteranceInput `json:"utterances" validate:"required,min=1,dive"`
	Tracks        []TrackInput     `json:"tracks,omitempty" validate:"omitempty,dive"`
	AudioDuration *float64         `json:"audio_duration,omitempty" validate:"omitempty,gt=0"`
}

// ProcessRequest transcribes and segments one audio file
type ProcessRequest struct {
	AudioPath string `json:"audio_path" validate:"required"`
	Force     bool   `json:"force"`
}

// ListRequest pages through the transcript catalog
type ListRequest struct {
	Page     int `query:"page" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" validate:"omitempty,min=1,max=100"`
}
