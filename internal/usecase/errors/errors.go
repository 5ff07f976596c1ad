package errors

import "errors"

// Transcription errors
var (
	ErrNoBackends        = errors.New("no transcription backend configured")
	ErrUnknownBackend    = errors.New("unknown transcription backend")
	ErrNoTranscript      = errors.New("no transcript source available")
	ErrInvalidSidecar    = errors.New("invalid utterance sidecar")
	ErrEmptyAudioPath    = errors.New("audio path is empty")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// Catalog errors
var (
	ErrCatalogDisabled = errors.New("transcript catalog is disabled")
)
