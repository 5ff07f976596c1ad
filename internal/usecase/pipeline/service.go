package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/radio-transcriber/errors"
	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/internal/domain/repositories"
	"github.com/johnquangdev/radio-transcriber/internal/infrastructure/storage"
	usecaseErrors "github.com/johnquangdev/radio-transcriber/internal/usecase/errors"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/formatter"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/transcription"
)

// DurationOracle probes the length of an audio file, failing closed to
// entities.UnknownDuration
type DurationOracle interface {
	Duration(ctx context.Context, path string) float64
}

// Diarizer produces acoustic speaker tracks for an audio file
type Diarizer interface {
	Diarize(ctx context.Context, audioPath string) ([]entities.SpeakerTrack, error)
}

// Proofreader corrects one rendered episode
type Proofreader interface {
	Proofread(ctx context.Context, text string) (string, error)
}

// Result describes one processed (or skipped) audio file
type Result struct {
	AudioPath       string
	ObjectName      string
	Skipped         bool
	Backend         string
	DurationSeconds float64
	Segments        []entities.EpisodeSegment
	Text            string
	ProcessingTime  time.Duration
}

// Service runs the whole per-file pipeline: duration probe, transcript
// acquisition, segmentation, narrator prefixes, attribution, rendering,
// proofreading and persistence.
type Service struct {
	engine        *Engine
	source        transcription.Source
	store         storage.TranscriptStore
	durations     DurationOracle
	prefixes      transcription.PrefixSource
	prefixSeconds float64
	diarizer      Diarizer
	proofreader   Proofreader
	catalog       repositories.TranscriptRepository
	logger        *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithDurationOracle sets the audio duration probe
func WithDurationOracle(d DurationOracle) Option {
	return func(s *Service) { s.durations = d }
}

// WithPrefixSource enables narrator prefix transcription of the given length
func WithPrefixSource(p transcription.PrefixSource, seconds float64) Option {
	return func(s *Service) {
		s.prefixes = p
		s.prefixSeconds = seconds
	}
}

// WithDiarizer sets the acoustic diarization collaborator
func WithDiarizer(d Diarizer) Option {
	return func(s *Service) { s.diarizer = d }
}

// WithProofreader sets the proofreading collaborator
func WithProofreader(p Proofreader) Option {
	return func(s *Service) { s.proofreader = p }
}

// WithCatalog records every processed file in the run catalog
func WithCatalog(r repositories.TranscriptRepository) Option {
	return func(s *Service) { s.catalog = r }
}

// WithLogger attaches a logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates the pipeline service
func NewService(engine *Engine, source transcription.Source, store storage.TranscriptStore, opts ...Option) *Service {
	s := &Service{engine: engine, source: source, store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine exposes the segmentation core
func (s *Service) Engine() *Engine {
	return s.engine
}

// ObjectNameFor returns the transcript object name of an audio file
func ObjectNameFor(audioPath string) string {
	base := filepath.Base(audioPath)
	return storage.ObjectName(strings.TrimSuffix(base, filepath.Ext(base)))
}

// ProcessFile produces and stores the transcript of one audio file. An
// existing transcript is left alone unless force is set.
func (s *Service) ProcessFile(ctx context.Context, audioPath string, force bool) (*Result, error) {
	started := time.Now()
	if strings.TrimSpace(audioPath) == "" {
		return nil, apperrors.ErrInvalidArgument(usecaseErrors.ErrEmptyAudioPath.Error())
	}
	if _, err := os.Stat(audioPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.ErrAudioNotFound(audioPath)
		}
		return nil, apperrors.ErrInternal(err)
	}

	res := &Result{AudioPath: audioPath, ObjectName: ObjectNameFor(audioPath)}
	log := s.logger
	if log != nil {
		log = log.With(zap.String("file", filepath.Base(audioPath)))
	}

	if !force {
		exists, err := s.store.Exists(ctx, res.ObjectName)
		if err != nil {
			return nil, apperrors.ErrStorageFailed("exists", err)
		}
		if exists {
			if log != nil {
				log.Info("⏭️ Transcript already exists, skipping", zap.String("object", res.ObjectName))
			}
			res.Skipped = true
			res.ProcessingTime = time.Since(started)
			return res, nil
		}
	}

	duration := entities.UnknownDuration
	if s.durations != nil {
		duration = s.durations.Duration(ctx, audioPath)
	}

	if log != nil {
		log.Info("🎧 Acquiring transcript", zap.Float64("duration", duration))
	}
	src, err := s.source.Produce(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	if !entities.DurationKnown(duration) && entities.DurationKnown(src.Duration) {
		duration = src.Duration
	}
	res.Backend = src.Backend
	res.DurationSeconds = duration

	segs := s.engine.Segment(src.Utterances, duration)
	s.announce(ctx, log, audioPath, segs)

	tracks := src.Tracks
	if len(tracks) == 0 && s.diarizer != nil {
		t, err := s.diarizer.Diarize(ctx, audioPath)
		if err != nil {
			if log != nil {
				log.Warn("⚠️ Acoustic diarization unavailable, using text cues", zap.Error(err))
			}
		} else {
			tracks = t
		}
	}
	segs = s.engine.Label(segs, tracks, duration)
	res.Segments = segs

	episodes := make([]string, len(segs))
	for i, seg := range segs {
		episodes[i] = s.proofread(ctx, log, formatter.RenderEpisode(seg))
	}
	res.Text = formatter.JoinEpisodes(episodes)
	if len(segs) == 0 && log != nil {
		log.Warn("⚠️ Transcript has no speech")
	}

	if err := s.store.Save(ctx, res.ObjectName, res.Text); err != nil {
		return nil, apperrors.ErrStorageFailed("save", err)
	}
	res.ProcessingTime = time.Since(started)

	s.record(ctx, log, res, src, tracks)

	if log != nil {
		log.Info("✅ Transcript saved",
			zap.String("object", res.ObjectName),
			zap.String("backend", res.Backend),
			zap.Int("episodes", len(segs)),
			zap.Bool("acoustic", len(tracks) > 0),
			zap.Duration("took", res.ProcessingTime),
		)
	}
	return res, nil
}

// announce fills segment announcements from narrator-language prefixes. A
// segment whose first utterance is already tagged narrator keeps its text.
// Without valid timing only the first segment has a known offset.
func (s *Service) announce(ctx context.Context, log *zap.Logger, audioPath string, segs []entities.EpisodeSegment) {
	if s.prefixes == nil || s.prefixSeconds <= 0 || len(segs) == 0 {
		return
	}
	var all []entities.Utterance
	for _, seg := range segs {
		all = append(all, seg.Utterances...)
	}
	timed := entities.TimingValid(all)

	for i := range segs {
		if len(segs[i].Utterances) == 0 || segs[i].Utterances[0].IsNarrator() {
			continue
		}
		offset := 0.0
		if timed {
			offset = segs[i].Utterances[0].StartTime
		} else if i > 0 {
			break
		}

		prefix, err := s.prefixes.ProducePrefix(ctx, audioPath, offset, s.prefixSeconds)
		if err != nil {
			if log != nil {
				log.Warn("⚠️ Narrator prefix unavailable", zap.Int("episode", i+1), zap.Error(err))
			}
			continue
		}
		if text, ok := s.engine.Announcement(prefix); ok {
			segs[i].Announcement = text
		}
	}
}

func (s *Service) proofread(ctx context.Context, log *zap.Logger, text string) string {
	if s.proofreader == nil || text == "" {
		return text
	}
	out, err := s.proofreader.Proofread(ctx, text)
	if err != nil {
		if log != nil {
			log.Warn("⚠️ Proofreading failed, keeping original text", zap.Error(err))
		}
		return text
	}
	return out
}

func (s *Service) record(ctx context.Context, log *zap.Logger, res *Result, src *entities.SourceTranscript, tracks []entities.SpeakerTrack) {
	if s.catalog == nil {
		return
	}
	rec := entities.NewTranscriptRecord(res.AudioPath, res.ObjectName)
	rec.Backend = res.Backend
	rec.Language = src.Language
	if entities.DurationKnown(res.DurationSeconds) {
		rec.DurationSeconds = res.DurationSeconds
	}
	rec.EpisodeCount = len(res.Segments)
	rec.HasTracks = len(tracks) > 0
	rec.Speakers = s.engine.Speakers(res.Segments)
	rec.ProcessingTime = int(res.ProcessingTime.Milliseconds())
	rec.Episodes = entities.NewEpisodeRecords(rec.ID, res.Segments)

	if err := s.catalog.Save(ctx, rec); err != nil && log != nil {
		log.Warn("⚠️ Failed to record transcript in catalog", zap.Error(err))
	}
}

// GetTranscript loads a stored transcript object
func (s *Service) GetTranscript(ctx context.Context, name string) (string, error) {
	text, err := s.store.Load(ctx, name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperrors.ErrTranscriptNotFound(name)
		}
		return "", apperrors.ErrStorageFailed("load", err)
	}
	return text, nil
}

// ListTranscripts pages through the run catalog
func (s *Service) ListTranscripts(ctx context.Context, page, pageSize int) ([]*entities.TranscriptRecord, int64, error) {
	if s.catalog == nil {
		return nil, 0, usecaseErrors.ErrCatalogDisabled
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	records, total, err := s.catalog.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, apperrors.ErrDBQueryFailed("list transcripts", err)
	}
	return records, total, nil
}

// Combine concatenates every stored transcript into one document and returns
// it with the number of transcripts included.
func (s *Service) Combine(ctx context.Context) (string, int, error) {
	names, err := s.store.List(ctx, storage.TranscriptSuffix)
	if err != nil {
		return "", 0, apperrors.ErrStorageFailed("list", err)
	}
	entries := make([]formatter.CombinedEntry, 0, len(names))
	for _, name := range names {
		text, err := s.store.Load(ctx, name)
		if err != nil {
			return "", 0, apperrors.ErrStorageFailed("load", fmt.Errorf("%s: %w", name, err))
		}
		entries = append(entries, formatter.CombinedEntry{
			Name:    strings.TrimSuffix(name, storage.TranscriptSuffix),
			Content: text,
		})
	}
	return formatter.RenderCombined(entries), len(entries), nil
}
