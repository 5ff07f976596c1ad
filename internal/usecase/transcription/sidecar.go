package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/radio-transcriber/internal/usecase/errors"
)

// BackendSidecar names transcripts read from an utterance sidecar file
const BackendSidecar = "sidecar"

// sidecarUtterance keeps times optional so untimed transcripts stay untimed
type sidecarUtterance struct {
	Text     string   `json:"text"`
	Start    *float64 `json:"start"`
	End      *float64 `json:"end"`
	Language string   `json:"language,omitempty"`
}

type sidecarFile struct {
	Duration   *float64                `json:"duration,omitempty"`
	Language   string                  `json:"language,omitempty"`
	Utterances []sidecarUtterance      `json:"utterances"`
	Tracks     []entities.SpeakerTrack `json:"tracks,omitempty"`
}

// SidecarSource serves `<stem><suffix>` files that sit next to the audio and
// defers to next when there is none.
type SidecarSource struct {
	suffix string
	next   Source
	logger *zap.Logger
}

// NewSidecarSource creates a sidecar-first source. next may be nil.
func NewSidecarSource(suffix string, next Source, logger *zap.Logger) *SidecarSource {
	return &SidecarSource{suffix: suffix, next: next, logger: logger}
}

// SidecarPath returns where the sidecar for audioPath lives
func SidecarPath(audioPath, suffix string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + suffix
}

// Produce implements Source
func (s *SidecarSource) Produce(ctx context.Context, audioPath string) (*entities.SourceTranscript, error) {
	path := SidecarPath(audioPath, s.suffix)
	out, err := ReadSidecarFile(path)
	switch {
	case err == nil:
		if s.logger != nil {
			s.logger.Info("📄 Using utterance sidecar",
				zap.String("sidecar", filepath.Base(path)),
				zap.Int("utterances", len(out.Utterances)),
			)
		}
		return out, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	if s.next == nil {
		return nil, fmt.Errorf("%w for %s", usecaseErrors.ErrNoTranscript, filepath.Base(audioPath))
	}
	return s.next.Produce(ctx, audioPath)
}

// ReadSidecarFile loads a sidecar from disk
func ReadSidecarFile(path string) (*entities.SourceTranscript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out, err := ReadSidecar(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return out, nil
}

// ReadSidecar decodes either an object with an "utterances" array or a bare
// array of utterances.
func ReadSidecar(r io.Reader) (*entities.SourceTranscript, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var file sidecarFile
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		err = json.Unmarshal(raw, &file.Utterances)
	} else {
		err = json.Unmarshal(raw, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrInvalidSidecar, err)
	}

	out := &entities.SourceTranscript{
		Backend:  BackendSidecar,
		Language: file.Language,
		Tracks:   file.Tracks,
		Duration: entities.UnknownDuration,
	}
	if file.Duration != nil {
		out.Duration = *file.Duration
	}

	utts := make([]entities.Utterance, 0, len(file.Utterances))
	for _, u := range file.Utterances {
		var utt entities.Utterance
		if u.Start != nil && u.End != nil {
			utt = entities.NewUtterance(0, u.Text, *u.Start, *u.End)
		} else {
			utt = entities.NewUntimedUtterance(0, u.Text)
		}
		if u.Language == string(entities.LanguageNarrator) {
			utt.Language = entities.LanguageNarrator
		}
		utts = append(utts, utt)
	}
	out.Utterances = entities.Normalize(utts)
	return out, nil
}
