// Package narrator finds the scripted announcer markers ("Section 2, Unit 3,
// Radio 1") that open each episode, whether transcribed in English or
// mis-transcribed into Spanish orthography.
package narrator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

// Marker is one detected announcer phrase. Unit and Episode are 0 when the
// announcer omitted them.
type Marker struct {
	Index   int
	Section int
	Unit    int
	Episode int
	Native  bool
	Text    string
}

func (m Marker) String() string {
	return fmt.Sprintf("section %d unit %d episode %d", m.Section, m.Unit, m.Episode)
}

// Detector holds the compiled marker template
type Detector struct {
	sectionLed *regexp.Regexp
	unitLed    *regexp.Regexp
	ordinal    *regexp.Regexp
	hint       *regexp.Regexp
	native     map[string]bool
	numbers    map[string]int
	indicators map[string]bool
	ratio      float64
}

// leadWindow is how many utterances at the start of the stream, or from a
// marker on, may be tagged by indicator words alone.
const leadWindow = 3

var wordSplitter = regexp.MustCompile(`[\p{L}']+`)

// sentenceLead anchors a marker at the start of the text or of a sentence,
// allowing only punctuation and spaces before it.
const sentenceLead = `(?:^|[.!?…]\s+)[^\p{L}\d]*`

// New compiles the marker template from the configured word lists
func New(words config.NarratorWords) (*Detector, error) {
	if len(words.SectionWords) == 0 {
		return nil, fmt.Errorf("narrator template needs at least one section word")
	}

	numbers := make(map[string]int, len(words.NumberWords))
	for _, w := range words.NumberWords {
		w = strings.ToLower(strings.TrimSpace(w))
		numbers[w] = spelled[w]
	}
	num := `(\d+|(?:` + alternation(words.NumberWords) + `)\b)`
	sep := `[\s,.:;-]*`

	sectionLed := `(?i)` + sentenceLead + `(` + alternation(words.SectionWords) + `)` + sep + num
	if len(words.UnitWords) > 0 {
		sectionLed += `(?:` + sep + `(?:` + alternation(words.UnitWords) + `)` + sep + num + `)?`
	} else {
		sectionLed += `()`
	}
	if len(words.EpisodeWords) > 0 {
		sectionLed += `(?:` + sep + `(?:` + alternation(words.EpisodeWords) + `)` + sep + num + `)?`
	} else {
		sectionLed += `()`
	}

	d := &Detector{
		native:     lowerSet(words.NativeWords),
		numbers:    numbers,
		indicators: lowerSet(words.IndicatorWords),
		ratio:      words.IndicatorRatio,
	}

	var err error
	if d.sectionLed, err = regexp.Compile(sectionLed); err != nil {
		return nil, fmt.Errorf("invalid narrator template: %w", err)
	}
	if len(words.UnitWords) > 0 && len(words.EpisodeWords) > 0 {
		unitLed := `(?i)` + sentenceLead + `(` + alternation(words.UnitWords) + `)` + sep + num +
			sep + `(?:` + alternation(words.EpisodeWords) + `)` + sep + num
		if d.unitLed, err = regexp.Compile(unitLed); err != nil {
			return nil, fmt.Errorf("invalid narrator template: %w", err)
		}
	}
	if d.ordinal, err = regexp.Compile(`(?i)` + sentenceLead + `(\d+)\s*(?:st|nd|rd|th)\s+(` + alternation(words.NativeWords) + `)`); err != nil {
		return nil, fmt.Errorf("invalid narrator template: %w", err)
	}
	if len(words.HintWords) > 0 {
		if d.hint, err = regexp.Compile(`(?i)(?:^|[^\p{L}])(?:` + alternation(words.HintWords) + `)\s*(?:n[uú]mero\s*)?(\d+)(?:[^\p{L}\d]|$)`); err != nil {
			return nil, fmt.Errorf("invalid hint template: %w", err)
		}
	}
	return d, nil
}

// Default returns a Detector over the built-in word lists
func Default() *Detector {
	d, err := New(config.DefaultPhrasebook().Narrator)
	if err != nil {
		panic(err)
	}
	return d
}

// FindMarker reports the announcer marker opening text or one of its
// sentences, if any. A section word alone must be followed by digits; spelled
// numbers count only inside a section plus unit or episode template.
func (d *Detector) FindMarker(text string) (Marker, bool) {
	for _, m := range d.sectionLed.FindAllStringSubmatch(text, -1) {
		if m[3] == "" && m[4] == "" && !isDigits(m[2]) {
			continue
		}
		return Marker{
			Section: d.number(m[2]),
			Unit:    d.number(m[3]),
			Episode: d.number(m[4]),
			Native:  d.native[strings.ToLower(m[1])],
			Text:    markerText(m[0]),
		}, true
	}
	if d.unitLed != nil {
		if m := d.unitLed.FindStringSubmatch(text); m != nil {
			return Marker{
				Unit:    d.number(m[2]),
				Episode: d.number(m[3]),
				Native:  d.native[strings.ToLower(m[1])],
				Text:    markerText(m[0]),
			}, true
		}
	}
	if m := d.ordinal.FindStringSubmatch(text); m != nil {
		n := d.number(m[1])
		return Marker{Episode: n, Native: d.native[strings.ToLower(m[2])], Text: markerText(m[0])}, true
	}
	return Marker{}, false
}

// Markers returns every utterance that carries an announcer marker, in order
func (d *Detector) Markers(utts []entities.Utterance) []Marker {
	var out []Marker
	for i, u := range utts {
		if m, ok := d.FindMarker(u.Text); ok {
			m.Index = i
			out = append(out, m)
		}
	}
	return out
}

// IsNarratorText reports whether text is announcer speech: it carries a marker
// or more than the configured share of its words are indicator words.
func (d *Detector) IsNarratorText(text string) bool {
	if _, ok := d.FindMarker(text); ok {
		return true
	}
	return d.indicatorHeavy(text)
}

func (d *Detector) indicatorHeavy(text string) bool {
	return d.ratio > 0 && d.indicatorShare(text) > d.ratio
}

func (d *Detector) indicatorShare(text string) float64 {
	words := wordSplitter.FindAllString(strings.ToLower(text), -1)
	if len(words) < 2 {
		return 0
	}
	hits := 0
	for _, w := range words {
		if d.indicators[w] {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

// Tag returns a copy of utts with announcer utterances tagged as narrator
// language. Marker utterances are always tagged. Indicator words only tag
// utterances inside a short window at the start of the stream or right after
// a marker, and the window closes at the first primary-language utterance.
// Existing tags are left untouched.
func (d *Detector) Tag(utts []entities.Utterance) []entities.Utterance {
	out := make([]entities.Utterance, len(utts))
	window := leadWindow
	for i, u := range utts {
		switch {
		case u.Language == entities.LanguageNarrator:
		case d.hasMarker(u.Text):
			u.Language = entities.LanguageNarrator
			window = leadWindow - 1
		case window > 0 && d.indicatorHeavy(u.Text):
			u.Language = entities.LanguageNarrator
			window--
		default:
			window = 0
		}
		out[i] = u
	}
	return out
}

func (d *Detector) hasMarker(text string) bool {
	_, ok := d.FindMarker(text)
	return ok
}

// Hints returns the indices of utterances naming a section or episode number
// without the full marker template.
func (d *Detector) Hints(utts []entities.Utterance) []int {
	if d.hint == nil {
		return nil
	}
	var out []int
	for i, u := range utts {
		if d.hint.MatchString(u.Text) {
			out = append(out, i)
		}
	}
	return out
}

// Announcement turns a narrator-language prefix transcription into the
// announcement text for a segment, when the prefix is announcer speech.
func (d *Detector) Announcement(prefix []entities.Utterance) (string, bool) {
	var parts []string
	for _, u := range prefix {
		if t := strings.TrimSpace(u.Text); t != "" {
			parts = append(parts, t)
		}
	}
	text := strings.Join(parts, " ")
	if text == "" {
		return "", false
	}
	for _, u := range prefix {
		if d.hasMarker(u.Text) {
			return text, true
		}
	}
	if d.IsNarratorText(text) {
		return text, true
	}
	return "", false
}

func (d *Detector) number(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return d.numbers[strings.ToLower(s)]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func markerText(match string) string {
	return strings.TrimLeftFunc(match, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// spelled numbers outside this table parse as 0
var spelled = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"uno": 1, "una": 1, "dos": 2, "tres": 3, "cuatro": 4, "cinco": 5, "seis": 6, "siete": 7, "ocho": 8, "nueve": 9, "diez": 10,
}

func alternation(words []string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	if len(quoted) == 0 {
		return `\b\B`
	}
	return strings.Join(quoted, "|")
}

func lowerSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimFunc(w, unicode.IsSpace))] = true
	}
	return set
}
