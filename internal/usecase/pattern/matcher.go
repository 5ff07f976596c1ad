// Package pattern recognizes the structural phrases that bound a radio episode:
// the opening greeting, the word-review transition, the farewell and the
// recurring program introduction.
package pattern

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

// Kind is the structural role of a phrase
type Kind uint8

const (
	KindIntro Kind = 1 << iota
	KindTransition
	KindClosing
	KindProgramIntro
)

func (k Kind) String() string {
	switch k {
	case KindIntro:
		return "intro"
	case KindTransition:
		return "transition"
	case KindClosing:
		return "closing"
	case KindProgramIntro:
		return "program_intro"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Marks is the set of kinds found in one utterance
type Marks uint8

// Has reports whether k was matched
func (m Marks) Has(k Kind) bool {
	return m&Marks(k) != 0
}

// Rule is one entry of the ordered rule list
type Rule struct {
	Kind     Kind
	Priority int
	Phrase   string
	re       *regexp.Regexp
}

// Matcher evaluates the rule list uniformly. Adding a phrase is adding a rule.
type Matcher struct {
	rules []Rule
}

// rule priorities, lower is evaluated first
const (
	priorityClosing = iota + 1
	priorityIntro
	priorityTransition
	priorityProgramIntro
)

// New compiles the structural phrase sets of book into a Matcher
func New(book config.Phrasebook) (*Matcher, error) {
	m := &Matcher{}
	groups := []struct {
		kind     Kind
		priority int
		phrases  []string
	}{
		{KindClosing, priorityClosing, book.Closing},
		{KindIntro, priorityIntro, book.Intro},
		{KindTransition, priorityTransition, book.Transition},
		{KindProgramIntro, priorityProgramIntro, book.ProgramIntro},
	}
	for _, g := range groups {
		for _, phrase := range g.phrases {
			if err := m.Add(g.kind, g.priority, phrase); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Default returns a Matcher over the built-in phrasebook
func Default() *Matcher {
	m, err := New(config.DefaultPhrasebook())
	if err != nil {
		panic(err)
	}
	return m
}

// Add compiles phrase as a case-insensitive rule and keeps the list ordered by priority
func (m *Matcher) Add(kind Kind, priority int, phrase string) error {
	re, err := regexp.Compile("(?i)" + phrase)
	if err != nil {
		return fmt.Errorf("invalid %s phrase %q: %w", kind, phrase, err)
	}
	m.rules = append(m.rules, Rule{Kind: kind, Priority: priority, Phrase: phrase, re: re})
	sort.SliceStable(m.rules, func(i, j int) bool { return m.rules[i].Priority < m.rules[j].Priority })
	return nil
}

// Match returns every kind whose rules match text
func (m *Matcher) Match(text string) Marks {
	var marks Marks
	for _, r := range m.rules {
		if marks.Has(r.Kind) {
			continue
		}
		if r.re.MatchString(text) {
			marks |= Marks(r.Kind)
		}
	}
	return marks
}

// Classify matches every utterance; the result is indexed like utts
func (m *Matcher) Classify(utts []entities.Utterance) []Marks {
	out := make([]Marks, len(utts))
	for i, u := range utts {
		out[i] = m.Match(u.Text)
	}
	return out
}

// First returns the index of the first utterance in [from, to) carrying kind k, or -1
func First(marks []Marks, k Kind, from, to int) int {
	if to > len(marks) {
		to = len(marks)
	}
	for i := max(from, 0); i < to; i++ {
		if marks[i].Has(k) {
			return i
		}
	}
	return -1
}
