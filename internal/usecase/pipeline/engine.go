package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/attribution"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/narrator"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/pattern"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/segmenter"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

// Engine is the pure segmentation and attribution core. It holds no per-run
// state and is safe for concurrent use.
type Engine struct {
	detector   *narrator.Detector
	segmenter  *segmenter.Segmenter
	attributor *attribution.Attributor
}

// NewEngine builds the engine from the configured phrasebook and duration policy
func NewEngine(cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	det, err := narrator.New(cfg.Phrases.Narrator)
	if err != nil {
		return nil, fmt.Errorf("failed to build narrator detector: %w", err)
	}
	m, err := pattern.New(cfg.Phrases)
	if err != nil {
		return nil, fmt.Errorf("failed to build pattern matcher: %w", err)
	}
	names, err := attribution.NewNameFinder(cfg.Phrases.Speakers)
	if err != nil {
		return nil, fmt.Errorf("failed to build name finder: %w", err)
	}

	attr := attribution.New(names, m,
		attribution.WithSettings(attribution.SettingsFromConfig(cfg.Segmentation)),
		attribution.WithLogger(logger),
	)
	seg := segmenter.New(det, m,
		segmenter.WithSettings(segmenter.SettingsFromConfig(cfg.Segmentation)),
		segmenter.WithContinuity(attr),
		segmenter.WithLogger(logger),
	)
	return &Engine{detector: det, segmenter: seg, attributor: attr}, nil
}

// DefaultEngine builds the engine over the built-in phrase sets and defaults
func DefaultEngine() *Engine {
	m := pattern.Default()
	attr := attribution.New(attribution.DefaultNameFinder(), m)
	return &Engine{
		detector:   narrator.Default(),
		segmenter:  segmenter.New(narrator.Default(), m, segmenter.WithContinuity(attr)),
		attributor: attr,
	}
}

// Segment tags announcer speech and partitions the utterances into episodes
func (e *Engine) Segment(utts []entities.Utterance, audioDuration float64) []entities.EpisodeSegment {
	return e.segmenter.Segment(e.detector.Tag(entities.Normalize(utts)), audioDuration)
}

// Label attributes speakers across all segments of one run
func (e *Engine) Label(segs []entities.EpisodeSegment, tracks []entities.SpeakerTrack, audioDuration float64) []entities.EpisodeSegment {
	return e.attributor.AttributeAll(segs, tracks, audioDuration)
}

// Run segments and labels in one call
func (e *Engine) Run(utts []entities.Utterance, tracks []entities.SpeakerTrack, audioDuration float64) []entities.EpisodeSegment {
	return e.Label(e.Segment(utts, audioDuration), tracks, audioDuration)
}

// Announcement reports whether a narrator-language prefix is announcer speech
func (e *Engine) Announcement(prefix []entities.Utterance) (string, bool) {
	return e.detector.Announcement(prefix)
}

// Speakers returns the resolved speaker names of labeled segments, most frequent first
func (e *Engine) Speakers(segs []entities.EpisodeSegment) []string {
	var all []entities.Utterance
	for _, s := range segs {
		all = append(all, s.Utterances...)
	}
	return e.attributor.DominantSpeakers(all)
}
