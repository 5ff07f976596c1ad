package segmenter

import (
	"unicode/utf8"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
)

// measure computes segment durations from native timing when it is valid, and
// otherwise proportionally from character counts over the audio duration.
type measure struct {
	utts  []entities.Utterance
	timed bool
	audio float64
	chars []int // prefix sums, len(utts)+1
}

func newMeasure(utts []entities.Utterance, audioDuration float64) measure {
	m := measure{
		utts:  utts,
		timed: entities.TimingValid(utts),
		audio: audioDuration,
		chars: make([]int, len(utts)+1),
	}
	for i, u := range utts {
		m.chars[i+1] = m.chars[i] + utf8.RuneCountInString(u.Text)
	}
	return m
}

// available reports whether any duration can be computed at all
func (m measure) available() bool {
	return m.timed || entities.DurationKnown(m.audio)
}

// span returns the duration of utts[from:to]
func (m measure) span(from, to int) float64 {
	if from >= to {
		return 0
	}
	if m.timed {
		return m.utts[to-1].EndTime - m.utts[from].StartTime
	}
	total := m.chars[len(m.utts)]
	if total == 0 || !entities.DurationKnown(m.audio) {
		return 0
	}
	return m.audio * float64(m.chars[to]-m.chars[from]) / float64(total)
}
