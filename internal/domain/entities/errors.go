package entities

import "errors"

// Domain errors
var (
	ErrEmptyUtterance    = errors.New("utterance text is empty")
	ErrInvalidTiming     = errors.New("utterance timing is invalid")
	ErrUnknownTrack      = errors.New("speaker track not found")
	ErrTranscriptMissing = errors.New("transcript not found")
	ErrInvalidRequest    = errors.New("invalid request")
)
