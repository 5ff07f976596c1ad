package entities

import "sort"

// BoundaryEvidence records which rule opened a segment
type BoundaryEvidence string

const (
	EvidenceNarratorMarker  BoundaryEvidence = "narrator_marker"
	EvidencePatternMarker   BoundaryEvidence = "pattern_marker"
	EvidenceDurationForced  BoundaryEvidence = "duration_forced"
	EvidenceContentFallback BoundaryEvidence = "content_fallback"
)

var evidenceRank = map[BoundaryEvidence]int{
	EvidenceNarratorMarker:  0,
	EvidencePatternMarker:   1,
	EvidenceDurationForced:  2,
	EvidenceContentFallback: 3,
}

// EvidenceSet is a small ordered set of boundary evidence tags
type EvidenceSet []BoundaryEvidence

// Has reports whether e is in the set
func (s EvidenceSet) Has(e BoundaryEvidence) bool {
	for _, x := range s {
		if x == e {
			return true
		}
	}
	return false
}

// With returns a copy of the set including e, kept in rank order
func (s EvidenceSet) With(e BoundaryEvidence) EvidenceSet {
	if s.Has(e) {
		return s
	}
	out := make(EvidenceSet, 0, len(s)+1)
	out = append(out, s...)
	out = append(out, e)
	sort.SliceStable(out, func(i, j int) bool { return evidenceRank[out[i]] < evidenceRank[out[j]] })
	return out
}

// Strings returns the tags as plain strings
func (s EvidenceSet) Strings() []string {
	out := make([]string, len(s))
	for i, e := range s {
		out[i] = string(e)
	}
	return out
}

// EpisodeSegment is a contiguous run of utterances forming one narrative unit
type EpisodeSegment struct {
	Start           int         `json:"start"`
	Utterances      []Utterance `json:"utterances"`
	Evidence        EvidenceSet `json:"boundary_evidence"`
	DurationSeconds float64     `json:"duration_seconds"`
	Oversized       bool        `json:"oversized,omitempty"`
	Announcement    string      `json:"announcement,omitempty"`
}

// End returns the index one past the segment's last utterance
func (s EpisodeSegment) End() int {
	return s.Start + len(s.Utterances)
}

// Text joins the utterance texts with single spaces
func (s EpisodeSegment) Text() string {
	n := 0
	for _, u := range s.Utterances {
		n += len(u.Text) + 1
	}
	buf := make([]byte, 0, n)
	for i, u := range s.Utterances {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, u.Text...)
	}
	return string(buf)
}

// Speakers returns the distinct speaker labels in order of first appearance
func (s EpisodeSegment) Speakers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, u := range s.Utterances {
		if u.Speaker == "" || seen[u.Speaker] {
			continue
		}
		seen[u.Speaker] = true
		out = append(out, u.Speaker)
	}
	return out
}
