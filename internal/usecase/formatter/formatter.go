// Package formatter renders labeled segments as plain-text transcripts.
package formatter

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
)

// EpisodeSeparator is the line placed between episodes of a transcript
var EpisodeSeparator = strings.Repeat("=", 80)

// RenderEpisode renders a labeled segment as "[Speaker]: text" paragraphs.
// A segment announcement comes first, spoken by the narrator.
func RenderEpisode(seg entities.EpisodeSegment) string {
	lines := make([]string, 0, len(seg.Utterances)+1)
	if a := strings.TrimSpace(seg.Announcement); a != "" {
		lines = append(lines, formatLine(entities.NarratorLabel, a))
	}
	for _, u := range seg.Utterances {
		speaker := u.Speaker
		if speaker == "" {
			speaker = entities.Placeholder(0)
		}
		lines = append(lines, formatLine(speaker, u.Text))
	}
	return strings.Join(lines, "\n\n")
}

// RenderEpisodes renders a whole transcript: episodes separated by
// EpisodeSeparator, ending with a newline. The output depends only on its
// input.
func RenderEpisodes(segs []entities.EpisodeSegment) string {
	parts := make([]string, len(segs))
	for i, seg := range segs {
		parts[i] = RenderEpisode(seg)
	}
	return JoinEpisodes(parts)
}

// JoinEpisodes joins already rendered episodes
func JoinEpisodes(episodes []string) string {
	if len(episodes) == 0 {
		return ""
	}
	return strings.Join(episodes, "\n\n"+EpisodeSeparator+"\n\n") + "\n"
}

// CombinedEntry is one stored transcript in a combined document
type CombinedEntry struct {
	Name    string
	Content string
}

// RenderCombined concatenates stored transcripts into a single document
func RenderCombined(entries []CombinedEntry) string {
	var b strings.Builder
	b.WriteString("Complete Transcript\n")
	fmt.Fprintf(&b, "Total Episodes: %d\n", len(entries))
	b.WriteString(EpisodeSeparator + "\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "\n%s\nEPISODE %d: %s\n%s\n\n", EpisodeSeparator, i+1, e.Name, EpisodeSeparator)
		b.WriteString(strings.TrimSpace(e.Content))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%s\nEND OF TRANSCRIPT\n%s\n", EpisodeSeparator, EpisodeSeparator)
	return b.String()
}

func formatLine(speaker, text string) string {
	return "[" + speaker + "]: " + capitalize(strings.TrimSpace(text))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
