// Package segmenter splits a continuous utterance stream into episode
// segments. Evidence is applied as a cascade: announcer markers, then
// structural phrases, then duration policy, then content fallbacks.
package segmenter

import (
	"go.uber.org/zap"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/narrator"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/pattern"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

// Settings is the duration policy in seconds
type Settings struct {
	MinSeconds    float64
	TargetSeconds float64
	MaxSeconds    float64
	// MaxRevisits caps how often a merged segment is re-examined
	MaxRevisits int
}

// DefaultSettings returns min 90s, target 165s, max 240s
func DefaultSettings() Settings {
	return Settings{MinSeconds: 90, TargetSeconds: 165, MaxSeconds: 240, MaxRevisits: 1}
}

// SettingsFromConfig maps the segmentation config onto Settings
func SettingsFromConfig(cfg config.SegmentationConfig) Settings {
	s := DefaultSettings()
	s.MinSeconds = cfg.MinSeconds
	s.TargetSeconds = cfg.TargetSeconds
	s.MaxSeconds = cfg.MaxSeconds
	return s
}

// SpeakerContinuity supplies the resolved speaker names of a run of utterances,
// used to break merge ties toward the side that shares speakers.
type SpeakerContinuity interface {
	DominantSpeakers(utts []entities.Utterance) []string
}

// Segmenter is safe for concurrent use; each call owns its own state.
type Segmenter struct {
	narrator   *narrator.Detector
	patterns   *pattern.Matcher
	settings   Settings
	continuity SpeakerContinuity
	logger     *zap.Logger
}

// Option configures a Segmenter
type Option func(*Segmenter)

// WithSettings overrides the duration policy
func WithSettings(s Settings) Option {
	return func(sg *Segmenter) {
		if s.MaxRevisits <= 0 {
			s.MaxRevisits = 1
		}
		sg.settings = s
	}
}

// WithContinuity enables speaker-overlap tie-breaks on merges
func WithContinuity(c SpeakerContinuity) Option {
	return func(sg *Segmenter) { sg.continuity = c }
}

// WithLogger attaches a logger
func WithLogger(l *zap.Logger) Option {
	return func(sg *Segmenter) { sg.logger = l }
}

// New creates a Segmenter
func New(det *narrator.Detector, m *pattern.Matcher, opts ...Option) *Segmenter {
	s := &Segmenter{
		narrator: det,
		patterns: m,
		settings: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segment partitions utts into ordered, contiguous episode segments. It never
// fails: an empty input yields an empty list and a non-empty input yields at
// least one segment. audioDuration may be entities.UnknownDuration, which
// disables the duration policy.
func (s *Segmenter) Segment(utts []entities.Utterance, audioDuration float64) []entities.EpisodeSegment {
	if len(utts) == 0 {
		return []entities.EpisodeSegment{}
	}

	p := newPlan(len(utts))
	marks := s.patterns.Classify(utts)
	ms := newMeasure(utts, audioDuration)

	lead := s.narratorPass(utts, p)
	s.structuralPass(marks, p)
	if entities.DurationKnown(audioDuration) {
		s.reconcile(p, ms, marks, utts)
	}
	if p.found == 0 {
		s.fallbackPass(utts, marks, p)
	}

	segments := s.build(utts, p, ms, lead)
	if s.logger != nil {
		s.logger.Debug("segmentation complete",
			zap.Int("utterances", len(utts)),
			zap.Int("segments", len(segments)),
			zap.Bool("timed", ms.timed),
			zap.Float64("audio_duration", audioDuration),
		)
	}
	return segments
}

// narratorPass adds an unconditional boundary before every announcer marker.
// It returns the evidence for the first segment.
func (s *Segmenter) narratorPass(utts []entities.Utterance, p *plan) entities.EvidenceSet {
	var lead entities.EvidenceSet
	for _, m := range s.narrator.Markers(utts) {
		if m.Index == 0 {
			lead = lead.With(entities.EvidenceNarratorMarker)
			continue
		}
		p.add(m.Index, priorityNarrator, entities.EvidenceNarratorMarker)
	}
	return lead
}

// structuralPass closes a unit after its farewell when the unit was at least
// partly present (open+close or transition+close) and another opening follows.
func (s *Segmenter) structuralPass(marks []pattern.Marks, p *plan) {
	n := len(marks)
	open, transition := false, false
	for i := 0; i < n; i++ {
		m := marks[i]
		if m.Has(pattern.KindIntro) {
			open = true
		}
		if m.Has(pattern.KindTransition) {
			transition = true
		}
		if !m.Has(pattern.KindClosing) {
			continue
		}

		end := i
		for end+1 < n && marks[end+1].Has(pattern.KindClosing) && !marks[end+1].Has(pattern.KindIntro) {
			end++
		}
		if open || transition {
			next := pattern.First(marks, pattern.KindIntro, end+1, n)
			if next > 0 && !p.narratorWithin(end+1, next) {
				p.add(end+1, priorityPattern, entities.EvidencePatternMarker)
			}
		}
		open, transition = false, false
		i = end
	}
}

// fallbackPass runs only when no other stage produced a boundary
func (s *Segmenter) fallbackPass(utts []entities.Utterance, marks []pattern.Marks, p *plan) {
	for _, i := range s.narrator.Hints(utts) {
		p.add(i, priorityFallback, entities.EvidenceContentFallback)
	}
	if p.found > 0 {
		return
	}
	for i := 1; i < len(marks); i++ {
		if marks[i].Has(pattern.KindProgramIntro) {
			p.add(i, priorityFallback, entities.EvidenceContentFallback)
		}
	}
}

func (s *Segmenter) build(utts []entities.Utterance, p *plan, ms measure, lead entities.EvidenceSet) []entities.EpisodeSegment {
	segments := make([]entities.EpisodeSegment, 0, p.segmentCount())
	for k := 0; k < p.segmentCount(); k++ {
		from, to := p.bounds(k)
		seg := entities.EpisodeSegment{
			Start:      from,
			Utterances: append([]entities.Utterance(nil), utts[from:to]...),
		}
		if b, ok := p.opening(k); ok {
			seg.Evidence = b.evidence
		} else {
			seg.Evidence = lead
		}
		if ms.available() {
			seg.DurationSeconds = ms.span(from, to)
			seg.Oversized = to-from == 1 && seg.DurationSeconds > s.settings.MaxSeconds
		}
		segments = append(segments, seg)
	}
	return segments
}
