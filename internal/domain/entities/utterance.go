package entities

import (
	"fmt"
	"strings"
)

// LanguageTag marks which of the two modeled languages an utterance is in
type LanguageTag string

const (
	LanguagePrimary  LanguageTag = "primary"
	LanguageNarrator LanguageTag = "narrator"
	LanguageUnknown  LanguageTag = "unknown"
)

// UnknownDuration is returned by a duration oracle that could not probe the audio
const UnknownDuration = -1.0

// DurationKnown reports whether d is a usable audio duration
func DurationKnown(d float64) bool {
	return d > 0
}

// NarratorLabel is the speaker label forced onto scripted announcer speech
const NarratorLabel = "Narrator"

// Utterance is one transcribed unit of speech. It is created once by a transcript
// source; attribution only attaches Speaker.
type Utterance struct {
	Index     int         `json:"index" msgpack:"index"`
	Text      string      `json:"text" msgpack:"text"`
	StartTime float64     `json:"start_time" msgpack:"start_time"`
	EndTime   float64     `json:"end_time" msgpack:"end_time"`
	HasTiming bool        `json:"has_timing" msgpack:"has_timing"`
	Language  LanguageTag `json:"language,omitempty" msgpack:"language"`
	Speaker   string      `json:"speaker,omitempty" msgpack:"speaker,omitempty"`
}

// IsNarrator reports whether the narrator detector tagged this utterance
func (u Utterance) IsNarrator() bool {
	return u.Language == LanguageNarrator
}

// NewUtterance builds a timed primary-language utterance
func NewUtterance(index int, text string, start, end float64) Utterance {
	return Utterance{
		Index:     index,
		Text:      strings.TrimSpace(text),
		StartTime: start,
		EndTime:   end,
		HasTiming: true,
		Language:  LanguagePrimary,
	}
}

// NewUntimedUtterance builds a primary-language utterance without timing
func NewUntimedUtterance(index int, text string) Utterance {
	return Utterance{
		Index:    index,
		Text:     strings.TrimSpace(text),
		Language: LanguagePrimary,
	}
}

// Normalize trims text, drops empty utterances, fills defaults and renumbers.
func Normalize(utts []Utterance) []Utterance {
	out := make([]Utterance, 0, len(utts))
	for _, u := range utts {
		u.Text = strings.TrimSpace(u.Text)
		if u.Text == "" {
			continue
		}
		if u.Language == "" {
			u.Language = LanguagePrimary
		}
		u.Index = len(out)
		out = append(out, u)
	}
	return out
}

// TimingValid reports whether every utterance carries timing that is neither
// inverted nor out of order.
func TimingValid(utts []Utterance) bool {
	if len(utts) == 0 {
		return false
	}
	prev := -1.0
	for _, u := range utts {
		if !u.HasTiming || u.EndTime < u.StartTime || u.StartTime < prev {
			return false
		}
		prev = u.StartTime
	}
	return true
}

// SpeakerLabel names the speaker of an utterance
type SpeakerLabel struct {
	Name string `json:"name"`
}

// Placeholder returns the generic label for the n-th unresolved speaker (0-based):
// "Speaker A" .. "Speaker Z", then "Speaker 27" onwards.
func Placeholder(n int) string {
	if n < 0 {
		n = 0
	}
	if n < 26 {
		return fmt.Sprintf("Speaker %c", 'A'+rune(n))
	}
	return fmt.Sprintf("Speaker %d", n+1)
}

// IsPlaceholder reports whether name is a generic label rather than a resolved name
func IsPlaceholder(name string) bool {
	return strings.HasPrefix(name, "Speaker ")
}

// SpeakerTrack is one acoustic diarization interval
type SpeakerTrack struct {
	TrackID   string  `json:"track_id" msgpack:"track_id"`
	StartTime float64 `json:"start_time" msgpack:"start_time"`
	EndTime   float64 `json:"end_time" msgpack:"end_time"`
}

// SourceTranscript is what a transcript source hands to the engine
type SourceTranscript struct {
	Utterances []Utterance    `json:"utterances" msgpack:"utterances"`
	Tracks     []SpeakerTrack `json:"tracks,omitempty" msgpack:"tracks"`
	Backend    string         `json:"backend,omitempty" msgpack:"backend"`
	Language   string         `json:"language,omitempty" msgpack:"language"`
	Duration   float64        `json:"duration,omitempty" msgpack:"duration"`
}
