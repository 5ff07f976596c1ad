package transcription

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
)

// Backend transcribes one audio stream in the primary language
type Backend interface {
	Name() string
	Transcribe(ctx context.Context, audio io.Reader, filename string) (*entities.SourceTranscript, error)
}

// PrefixBackend transcribes short clips in the narrator language
type PrefixBackend interface {
	TranscribePrefix(ctx context.Context, audio io.Reader, filename string) ([]entities.Utterance, error)
}

// Source yields the transcript of an audio file, either an existing one or a
// freshly produced one.
type Source interface {
	Produce(ctx context.Context, audioPath string) (*entities.SourceTranscript, error)
}

// PrefixSource transcribes the opening seconds of a segment in the narrator language
type PrefixSource interface {
	ProducePrefix(ctx context.Context, audioPath string, offset, seconds float64) ([]entities.Utterance, error)
}

// Clipper cuts a window of audio into a temporary file
type Clipper interface {
	Clip(ctx context.Context, path string, offset, seconds float64) (string, error)
}

// Prefixer implements PrefixSource on top of a clipper and a prefix backend
type Prefixer struct {
	clipper Clipper
	backend PrefixBackend
	logger  *zap.Logger
}

// NewPrefixer creates a narrator prefix source
func NewPrefixer(clipper Clipper, backend PrefixBackend, logger *zap.Logger) *Prefixer {
	return &Prefixer{clipper: clipper, backend: backend, logger: logger}
}

// ProducePrefix clips [offset, offset+seconds) and transcribes it. The clip is
// always removed afterwards.
func (p *Prefixer) ProducePrefix(ctx context.Context, audioPath string, offset, seconds float64) ([]entities.Utterance, error) {
	clip, err := p.clipper.Clip(ctx, audioPath, offset, seconds)
	if err != nil {
		return nil, fmt.Errorf("failed to clip prefix: %w", err)
	}
	defer os.Remove(clip)

	f, err := os.Open(clip)
	if err != nil {
		return nil, fmt.Errorf("failed to open prefix clip: %w", err)
	}
	defer f.Close()

	utts, err := p.backend.TranscribePrefix(ctx, f, filepath.Base(clip))
	if err != nil {
		return nil, err
	}
	if p.logger != nil {
		p.logger.Debug("narrator prefix transcribed",
			zap.String("file", filepath.Base(audioPath)),
			zap.Float64("offset", offset),
			zap.Int("utterances", len(utts)),
		)
	}
	return utts, nil
}
