package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

// BackendOpenAI is the backend name used in TRANSCRIBE_BACKENDS
const BackendOpenAI = "openai"

// OpenAISource transcribes audio with a Whisper-compatible endpoint
type OpenAISource struct {
	client           openai.Client
	model            string
	fallbackModel    string
	language         string
	narratorLanguage string
	logger           *zap.Logger
}

// verboseTranscription is the verbose_json response body
type verboseTranscription struct {
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// NewOpenAISource creates the OpenAI backend. Extra request options are appended
// after the configured key and base URL.
func NewOpenAISource(cfg *config.Config, logger *zap.Logger, opts ...option.RequestOption) *OpenAISource {
	clientOpts := []option.RequestOption{option.WithAPIKey(cfg.OpenAI.APIKey)}
	if cfg.OpenAI.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)

	return &OpenAISource{
		client:           openai.NewClient(clientOpts...),
		model:            cfg.OpenAI.Model,
		fallbackModel:    cfg.OpenAI.FallbackModel,
		language:         cfg.Transcription.Language,
		narratorLanguage: cfg.Transcription.NarratorLanguage,
		logger:           logger,
	}
}

// Name implements the transcription backend contract
func (s *OpenAISource) Name() string {
	return BackendOpenAI
}

// Transcribe sends the audio in the primary language and maps the returned
// segments onto timed utterances.
func (s *OpenAISource) Transcribe(ctx context.Context, audio io.Reader, filename string) (*entities.SourceTranscript, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}

	res, err := s.transcribe(ctx, data, filename, s.language)
	if err != nil {
		return nil, err
	}

	out := &entities.SourceTranscript{
		Utterances: res.utterances(),
		Backend:    BackendOpenAI,
		Language:   s.language,
		Duration:   res.Duration,
	}
	if s.logger != nil {
		s.logger.Info("✅ OpenAI transcript ready",
			zap.String("file", filename),
			zap.Int("utterances", len(out.Utterances)),
			zap.Float64("duration", out.Duration),
		)
	}
	return out, nil
}

// TranscribePrefix transcribes a short clip in the narrator language
func (s *OpenAISource) TranscribePrefix(ctx context.Context, audio io.Reader, filename string) ([]entities.Utterance, error) {
	data, err := io.ReadAll(audio)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	res, err := s.transcribe(ctx, data, filename, s.narratorLanguage)
	if err != nil {
		return nil, err
	}
	return res.utterances(), nil
}

// transcribe tries the configured model first and the fallback model when the
// endpoint rejects the first one.
func (s *OpenAISource) transcribe(ctx context.Context, data []byte, filename, language string) (*verboseTranscription, error) {
	models := []string{s.model}
	if s.fallbackModel != "" && s.fallbackModel != s.model {
		models = append(models, s.fallbackModel)
	}

	var lastErr error
	for _, model := range models {
		res, err := s.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
			File:           openai.File(bytes.NewReader(data), filename, "application/octet-stream"),
			Model:          openai.AudioModel(model),
			Language:       openai.String(language),
			ResponseFormat: openai.AudioResponseFormatVerboseJSON,
		})
		if err == nil {
			var parsed verboseTranscription
			if raw := res.RawJSON(); raw != "" {
				if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
					return nil, fmt.Errorf("failed to decode transcription: %w", err)
				}
			}
			if parsed.Text == "" {
				parsed.Text = res.Text
			}
			return &parsed, nil
		}

		lastErr = err
		if !modelRejected(err) {
			return nil, fmt.Errorf("openai transcription failed: %w", err)
		}
		if s.logger != nil {
			s.logger.Warn("⚠️ Transcription model rejected, trying fallback",
				zap.String("model", model),
				zap.Error(err),
			)
		}
	}
	return nil, fmt.Errorf("openai transcription failed: %w", lastErr)
}

func (v *verboseTranscription) utterances() []entities.Utterance {
	out := make([]entities.Utterance, 0, len(v.Segments))
	for _, seg := range v.Segments {
		out = append(out, entities.NewUtterance(0, seg.Text, seg.Start, seg.End))
	}
	if len(out) == 0 && strings.TrimSpace(v.Text) != "" {
		out = append(out, entities.NewUntimedUtterance(0, v.Text))
	}
	return entities.Normalize(out)
}

func modelRejected(err error) bool {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusNotFound
}
