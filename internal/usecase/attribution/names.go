package attribution

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

const namePattern = `(\p{Lu}\p{Ll}+)`

// NameFinder extracts self-declared and addressed names from utterance text
type NameFinder struct {
	declarations []*regexp.Regexp
	// strong vocatives name the addressee of a question or request
	strong []*regexp.Regexp
	// weak vocatives only mark the addressee as not speaking
	weak []*regexp.Regexp
	stop map[string]bool
}

// NewNameFinder compiles the configured speaker phrases
func NewNameFinder(sp config.SpeakerPhrases) (*NameFinder, error) {
	f := &NameFinder{stop: make(map[string]bool, len(sp.StopWords))}
	for _, w := range sp.StopWords {
		f.stop[strings.ToLower(strings.TrimSpace(w))] = true
	}

	for _, expr := range sp.SelfDeclaration {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid self-declaration phrase %q: %w", expr, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("self-declaration phrase %q needs a capture group for the name", expr)
		}
		f.declarations = append(f.declarations, re)
	}

	lead := `^[\s¡¿"'«(-]*`
	if cues := cueAlternation(sp.VocativeCues); cues != "" {
		f.strong = append(f.strong, regexp.MustCompile(lead+namePattern+`\s*,\s*(?i:`+cues+`)`))
	}
	f.strong = append(f.strong,
		regexp.MustCompile(lead+namePattern+`\s*\?`),
		regexp.MustCompile(`(?:^|[\s,.;:!¡])`+namePattern+`\s*,\s*¿`),
	)
	f.weak = append(f.weak, regexp.MustCompile(`,\s*`+namePattern+`\s*[?!.]*\s*$`))
	if greet := cueAlternation(sp.Greetings); greet != "" {
		f.weak = append(f.weak, regexp.MustCompile(lead+`(?i:`+greet+`)[\s,!¡]+`+namePattern))
	}
	return f, nil
}

// DefaultNameFinder uses the built-in speaker phrases
func DefaultNameFinder() *NameFinder {
	f, err := NewNameFinder(config.DefaultPhrasebook().Speakers)
	if err != nil {
		panic(err)
	}
	return f
}

// Declared returns the name a speaker introduces themselves with, if any.
// A name that the same utterance addresses is not a self-declaration.
func (f *NameFinder) Declared(text string) (string, bool) {
	addressed, _, _ := f.Addressed(text)
	for _, re := range f.declarations {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := m[len(m)-1]
			if f.validName(name) && name != addressed {
				return name, true
			}
		}
	}
	return "", false
}

// Addressed returns the name the utterance speaks to. strong is true for a
// question or request aimed at the name, which makes the addressee the likely
// next speaker.
func (f *NameFinder) Addressed(text string) (name string, strong bool, ok bool) {
	for _, re := range f.strong {
		if m := re.FindStringSubmatch(text); m != nil && f.validName(m[1]) {
			return m[1], true, true
		}
	}
	for i, re := range f.weak {
		// a trailing ", Name" only addresses Name in a question
		if i == 0 && !IsQuestion(text) {
			continue
		}
		if m := re.FindStringSubmatch(text); m != nil && f.validName(m[1]) {
			return m[1], false, true
		}
	}
	return "", false, false
}

// IsQuestion reports whether text asks something
func IsQuestion(text string) bool {
	return strings.ContainsAny(text, "?¿")
}

// IsStopWord reports whether word is excluded from name extraction
func (f *NameFinder) IsStopWord(word string) bool {
	return f.stop[strings.ToLower(word)]
}

func (f *NameFinder) validName(name string) bool {
	return len([]rune(name)) >= 2 && !f.IsStopWord(name)
}

func cueAlternation(cues []string) string {
	parts := make([]string, 0, len(cues))
	for _, c := range cues {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, regexp.QuoteMeta(c))
		}
	}
	return strings.Join(parts, "|")
}
