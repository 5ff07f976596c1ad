package ai

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

// BackendAssemblyAI is the backend name used in TRANSCRIBE_BACKENDS
const BackendAssemblyAI = "assemblyai"

// AssemblyAISource transcribes audio through the official AssemblyAI SDK with
// speaker labels switched on, so every transcript also carries acoustic tracks.
type AssemblyAISource struct {
	client           *aai.Client
	language         string
	narratorLanguage string
	logger           *zap.Logger
}

// NewAssemblyAISource creates the AssemblyAI backend from configuration
func NewAssemblyAISource(cfg *config.Config, logger *zap.Logger) *AssemblyAISource {
	opts := []aai.ClientOption{aai.WithAPIKey(cfg.Assembly.APIKey)}
	if cfg.Assembly.BaseURL != "" {
		opts = append(opts, aai.WithBaseURL(cfg.Assembly.BaseURL))
	}
	return &AssemblyAISource{
		client:           aai.NewClientWithOptions(opts...),
		language:         cfg.Transcription.Language,
		narratorLanguage: cfg.Transcription.NarratorLanguage,
		logger:           logger,
	}
}

// Name implements the transcription backend contract
func (s *AssemblyAISource) Name() string {
	return BackendAssemblyAI
}

// Transcribe uploads the audio, waits for the transcript and converts its
// utterances into sentence-level utterances plus one speaker track per turn.
func (s *AssemblyAISource) Transcribe(ctx context.Context, audio io.Reader, filename string) (*entities.SourceTranscript, error) {
	if s.logger != nil {
		s.logger.Info("🎙️ Starting AssemblyAI transcription",
			zap.String("file", filename),
			zap.String("language", s.language),
		)
	}

	params := &aai.TranscriptOptionalParams{
		LanguageCode:  aai.TranscriptLanguageCode(s.language),
		SpeakerLabels: aai.Bool(true),
		Punctuate:     aai.Bool(true),
	}
	transcript, err := s.client.Transcripts.TranscribeFromReader(ctx, audio, params)
	if err != nil {
		return nil, fmt.Errorf("assemblyai transcription failed: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		return nil, fmt.Errorf("assemblyai transcription failed: %s", aai.ToString(transcript.Error))
	}

	out := ConvertAssemblyAI(transcript)
	out.Language = s.language

	if s.logger != nil {
		s.logger.Info("✅ AssemblyAI transcript ready",
			zap.String("transcript_id", aai.ToString(transcript.ID)),
			zap.Int("utterances", len(out.Utterances)),
			zap.Int("tracks", len(out.Tracks)),
		)
	}
	return out, nil
}

// TranscribePrefix transcribes a short clip in the narrator language
func (s *AssemblyAISource) TranscribePrefix(ctx context.Context, audio io.Reader, filename string) ([]entities.Utterance, error) {
	params := &aai.TranscriptOptionalParams{
		LanguageCode: aai.TranscriptLanguageCode(s.narratorLanguage),
		Punctuate:    aai.Bool(true),
	}
	transcript, err := s.client.Transcripts.TranscribeFromReader(ctx, audio, params)
	if err != nil {
		return nil, fmt.Errorf("assemblyai prefix transcription failed: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		return nil, fmt.Errorf("assemblyai prefix transcription failed: %s", aai.ToString(transcript.Error))
	}
	return ConvertAssemblyAI(transcript).Utterances, nil
}

// ConvertAssemblyAI maps an AssemblyAI transcript onto the source transcript shape.
// Speaker turns are split into sentences on word timing; each turn becomes one track.
func ConvertAssemblyAI(t aai.Transcript) *entities.SourceTranscript {
	out := &entities.SourceTranscript{Backend: BackendAssemblyAI}
	if t.AudioDuration != nil {
		out.Duration = float64(*t.AudioDuration)
	}

	for _, u := range t.Utterances {
		speaker := strings.TrimSpace(aai.ToString(u.Speaker))
		start, end := msToSeconds(u.Start), msToSeconds(u.End)
		if speaker != "" && u.Start != nil && u.End != nil {
			out.Tracks = append(out.Tracks, entities.SpeakerTrack{
				TrackID:   speaker,
				StartTime: start,
				EndTime:   end,
			})
		}

		sentences := sentencesFromWords(u.Words)
		if len(sentences) == 0 {
			text := strings.TrimSpace(aai.ToString(u.Text))
			if text == "" {
				continue
			}
			if u.Start != nil && u.End != nil {
				out.Utterances = append(out.Utterances, entities.NewUtterance(0, text, start, end))
			} else {
				out.Utterances = append(out.Utterances, entities.NewUntimedUtterance(0, text))
			}
			continue
		}
		out.Utterances = append(out.Utterances, sentences...)
	}

	if len(out.Utterances) == 0 {
		if text := strings.TrimSpace(aai.ToString(t.Text)); text != "" {
			out.Utterances = append(out.Utterances, entities.NewUntimedUtterance(0, text))
		}
	}
	out.Utterances = entities.Normalize(out.Utterances)
	return out
}

// sentencesFromWords groups words into utterances that end on terminal punctuation
func sentencesFromWords(words []aai.TranscriptWord) []entities.Utterance {
	var (
		out        []entities.Utterance
		parts      []string
		start, end float64
		timed      = true
	)
	flush := func() {
		if len(parts) == 0 {
			return
		}
		text := strings.Join(parts, " ")
		if timed {
			out = append(out, entities.NewUtterance(0, text, start, end))
		} else {
			out = append(out, entities.NewUntimedUtterance(0, text))
		}
		parts, timed = nil, true
	}

	for _, w := range words {
		text := strings.TrimSpace(aai.ToString(w.Text))
		if text == "" {
			continue
		}
		if len(parts) == 0 {
			start = msToSeconds(w.Start)
		}
		if w.Start == nil || w.End == nil {
			timed = false
		}
		end = msToSeconds(w.End)
		parts = append(parts, text)
		if endsSentence(text) {
			flush()
		}
	}
	flush()
	return out
}

func endsSentence(word string) bool {
	r := []rune(word)
	for i := len(r) - 1; i >= 0; i-- {
		switch {
		case r[i] == '.' || r[i] == '?' || r[i] == '!':
			return true
		case unicode.IsPunct(r[i]):
			continue
		default:
			return false
		}
	}
	return false
}

func msToSeconds(ms *int64) float64 {
	if ms == nil {
		return 0
	}
	return float64(*ms) / 1000
}
