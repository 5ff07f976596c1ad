// Package attribution labels every utterance of an episode segment with a
// speaker. Evidence is layered: the narrator override first, then acoustic
// tracks when they exist, then self-declared names, then structural roles.
// A question addressed to a name is never attributed to that name.
package attribution

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/pattern"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

const (
	roleMain    = "\x00main"
	roleGuest   = "\x00guest"
	trackPrefix = "\x00track:"
	otherPrefix = "\x00other:"
)

// Settings tunes the attribution heuristics
type Settings struct {
	// NarratorLeadTokens is how many leading primary-language words of a
	// segment belong to the announcer. Zero disables the rule.
	NarratorLeadTokens int
	// SilenceGapSeconds starts a new turn when timing is reliable
	SilenceGapSeconds float64
}

// DefaultSettings returns four lead tokens and a two second gap
func DefaultSettings() Settings {
	return Settings{NarratorLeadTokens: 4, SilenceGapSeconds: 2}
}

// SettingsFromConfig maps the segmentation config onto Settings
func SettingsFromConfig(cfg config.SegmentationConfig) Settings {
	return Settings{
		NarratorLeadTokens: cfg.NarratorLeadTokens,
		SilenceGapSeconds:  cfg.SilenceGapSeconds,
	}
}

// Attributor is stateless between calls and safe for concurrent use
type Attributor struct {
	names    *NameFinder
	patterns *pattern.Matcher
	settings Settings
	logger   *zap.Logger
}

// Option configures an Attributor
type Option func(*Attributor)

// WithSettings overrides the default heuristics
func WithSettings(s Settings) Option {
	return func(a *Attributor) { a.settings = s }
}

// WithLogger attaches a logger
func WithLogger(l *zap.Logger) Option {
	return func(a *Attributor) { a.logger = l }
}

// New creates an Attributor
func New(names *NameFinder, m *pattern.Matcher, opts ...Option) *Attributor {
	a := &Attributor{
		names:    names,
		patterns: m,
		settings: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// interval is an utterance's position on the audio timeline
type interval struct {
	start, end float64
}

// utteranceInfo is the textual evidence found in one utterance
type utteranceInfo struct {
	declared  string
	addressed string
	strong    bool
	question  bool
}

type turn struct {
	first   int
	members []int
}

// runState carries speaker identity from one segment to the next
type runState struct {
	main         string
	trackNames   map[string]string
	boundNames   map[string]bool
	trackSlots   map[string]string
	placeholders int
}

func newRunState() *runState {
	return &runState{
		trackNames: make(map[string]string),
		boundNames: make(map[string]bool),
		trackSlots: make(map[string]string),
	}
}

// Attribute labels a single segment in isolation. Acoustic tracks are only
// used when the segment carries native timing.
func (a *Attributor) Attribute(seg entities.EpisodeSegment, tracks []entities.SpeakerTrack) entities.EpisodeSegment {
	return a.AttributeAll([]entities.EpisodeSegment{seg}, tracks, entities.UnknownDuration)[0]
}

// AttributeAll labels the segments of one run in order. Track names, the
// main speaker and acoustic placeholders carry across segments. When the
// utterances have no native timing but audioDuration is known, utterance
// positions are estimated from character offsets so tracks still apply.
func (a *Attributor) AttributeAll(segs []entities.EpisodeSegment, tracks []entities.SpeakerTrack, audioDuration float64) []entities.EpisodeSegment {
	out := make([]entities.EpisodeSegment, len(segs))
	sorted := make([]entities.SpeakerTrack, len(tracks))
	copy(sorted, tracks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartTime < sorted[j].StartTime })

	estimated := estimateIntervals(segs, audioDuration)
	st := newRunState()
	for i, seg := range segs {
		var spans []interval
		if len(sorted) > 0 {
			if entities.TimingValid(seg.Utterances) {
				spans = nativeIntervals(seg.Utterances)
			} else if estimated != nil {
				spans = estimated[i]
			}
		}
		out[i] = a.attribute(seg, sorted, spans, st)
	}
	return out
}

// DominantSpeakers returns the resolved names of a run of utterances, most
// frequent first. Narrator and placeholder labels are left out.
func (a *Attributor) DominantSpeakers(utts []entities.Utterance) []string {
	seg := a.attribute(entities.EpisodeSegment{Utterances: utts}, nil, nil, newRunState())
	counts := make(map[string]int)
	var order []string
	for _, u := range seg.Utterances {
		if u.Speaker == entities.NarratorLabel || entities.IsPlaceholder(u.Speaker) || u.Speaker == "" {
			continue
		}
		if counts[u.Speaker] == 0 {
			order = append(order, u.Speaker)
		}
		counts[u.Speaker]++
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	return order
}

func (a *Attributor) attribute(seg entities.EpisodeSegment, tracks []entities.SpeakerTrack, spans []interval, st *runState) entities.EpisodeSegment {
	res := seg
	res.Utterances = make([]entities.Utterance, len(seg.Utterances))
	copy(res.Utterances, seg.Utterances)
	utts := res.Utterances
	if len(utts) == 0 {
		return res
	}

	narr := a.narratorOverride(utts)
	info := a.annotate(utts)

	r := &resolver{st: st}
	var keys []string
	if len(tracks) > 0 && spans != nil {
		keys = a.acousticKeys(utts, narr, info, tracks, spans, st)
		r.acoustic = keys != nil
	}
	if keys == nil {
		keys = a.textualKeys(utts, narr, info, r)
	}

	r.excludeAddressees(keys, narr, info)
	labels := r.label(keys, narr)
	for i := range utts {
		utts[i].Speaker = labels[i]
	}

	if a.logger != nil {
		a.logger.Debug("segment attributed",
			zap.Int("start", seg.Start),
			zap.Int("utterances", len(utts)),
			zap.Bool("acoustic", r.acoustic),
			zap.Strings("speakers", res.Speakers()),
		)
	}
	return res
}

// narratorOverride marks the leading run of narrator-tagged utterances and
// the utterances covering the first lead tokens after it. An utterance
// straddling the mark belongs to the narrator when at least half of its words
// fall inside the window. Narrator tags later in the segment are ignored.
func (a *Attributor) narratorOverride(utts []entities.Utterance) []bool {
	narr := make([]bool, len(utts))
	lead := 0
	for lead < len(utts) && utts[lead].IsNarrator() {
		narr[lead] = true
		lead++
	}

	limit := a.settings.NarratorLeadTokens
	count := 0
	for i := lead; i < len(utts) && count < limit; i++ {
		words := len(strings.Fields(utts[i].Text))
		if words == 0 {
			continue
		}
		if 2*(limit-count) >= words {
			narr[i] = true
		}
		count += words
	}
	return narr
}

func (a *Attributor) annotate(utts []entities.Utterance) []utteranceInfo {
	info := make([]utteranceInfo, len(utts))
	for i, u := range utts {
		name, strong, _ := a.names.Addressed(u.Text)
		declared, _ := a.names.Declared(u.Text)
		info[i] = utteranceInfo{
			declared:  declared,
			addressed: name,
			strong:    strong,
			question:  IsQuestion(u.Text),
		}
	}
	return info
}

// turns groups the non-narrator utterances into speaker turns. A turn ends
// after a question or a vocative, or at a silence gap when timing is valid.
func (a *Attributor) turns(utts []entities.Utterance, narr []bool, info []utteranceInfo) []turn {
	timed := entities.TimingValid(utts)
	var turns []turn
	last := -1
	for i := range utts {
		if narr[i] {
			continue
		}
		change := last < 0 || info[last].question || info[last].addressed != ""
		if !change && timed && a.settings.SilenceGapSeconds > 0 {
			change = utts[i].StartTime-utts[last].EndTime >= a.settings.SilenceGapSeconds
		}
		if change {
			turns = append(turns, turn{first: i})
		}
		turns[len(turns)-1].members = append(turns[len(turns)-1].members, i)
		last = i
	}
	return turns
}

// acousticKeys assigns each utterance the track it overlaps most, binding
// self-declared names to tracks. It returns nil when no track overlaps any
// utterance.
func (a *Attributor) acousticKeys(utts []entities.Utterance, narr []bool, info []utteranceInfo, tracks []entities.SpeakerTrack, spans []interval, st *runState) []string {
	ids := make([]string, len(utts))
	hit := false
	for i := range utts {
		if narr[i] {
			continue
		}
		ids[i] = bestTrack(tracks, spans[i])
		hit = hit || ids[i] != ""
	}
	if !hit {
		return nil
	}

	// utterances between tracks keep the neighbouring track
	prev := ""
	for i := range ids {
		if narr[i] {
			continue
		}
		if ids[i] == "" {
			ids[i] = prev
		}
		prev = ids[i]
	}
	next := ""
	for i := len(ids) - 1; i >= 0; i-- {
		if narr[i] {
			continue
		}
		if ids[i] == "" {
			ids[i] = next
		}
		next = ids[i]
	}

	keys := make([]string, len(utts))
	for i, id := range ids {
		if narr[i] {
			continue
		}
		if name := info[i].declared; name != "" {
			if _, named := st.trackNames[id]; !named && !st.boundNames[name] {
				st.trackNames[id] = name
				st.boundNames[name] = true
			}
		}
		keys[i] = trackPrefix + id
	}
	return keys
}

// bestTrack returns the track with the largest positive overlap. tracks are
// sorted by start, so ties go to the earliest track.
func bestTrack(tracks []entities.SpeakerTrack, span interval) string {
	best, bestOverlap := "", 0.0
	for _, t := range tracks {
		ov := min(span.end, t.EndTime) - max(span.start, t.StartTime)
		if ov > bestOverlap {
			best, bestOverlap = t.TrackID, ov
		}
	}
	return best
}

// textualKeys resolves speakers from the words alone: declared names name
// their whole turn, a turn answering a vocative belongs to the addressee,
// and the rest follows the episode structure.
func (a *Attributor) textualKeys(utts []entities.Utterance, narr []bool, info []utteranceInfo, r *resolver) []string {
	keys := make([]string, len(utts))
	turns := a.turns(utts, narr, info)
	if len(turns) == 0 {
		return keys
	}

	marks := a.patterns.Classify(utts)
	transition, closing, hasOpening := -1, -1, false
	for i, m := range marks {
		if m.Has(pattern.KindIntro) {
			hasOpening = true
		}
		if narr[i] {
			continue
		}
		if transition < 0 && m.Has(pattern.KindTransition) {
			transition = i
		}
	}
	for i, m := range marks {
		if !narr[i] && i >= transition && m.Has(pattern.KindClosing) {
			closing = i
			break
		}
	}

	openingEnd := transition
	if openingEnd < 0 {
		ms := turns[0].members
		openingEnd = ms[len(ms)-1] + 1
	}
	for i := 0; i < openingEnd; i++ {
		if !narr[i] && info[i].declared != "" {
			r.main = info[i].declared
			break
		}
	}
	if r.main == "" && !hasOpening {
		r.main = r.st.main
	}
	for i := range utts {
		if !narr[i] && info[i].declared != "" && info[i].declared != r.main {
			r.guest = info[i].declared
			break
		}
	}
	if r.guest == "" {
		for i := range utts {
			if !narr[i] && info[i].strong && info[i].addressed != r.main {
				r.guest = info[i].addressed
				break
			}
		}
	}

	prev := ""
	for ti, tr := range turns {
		key := ""
		for _, i := range tr.members {
			if info[i].declared != "" {
				key = r.keyFor(info[i].declared)
				break
			}
		}
		if key == "" && ti > 0 {
			ms := turns[ti-1].members
			if last := info[ms[len(ms)-1]]; last.strong {
				if k := r.keyFor(last.addressed); k != prev {
					key = k
				}
			}
		}
		if key == "" {
			outside := (transition >= 0 && tr.first <= transition) || (closing >= 0 && tr.first > closing)
			if outside {
				key = roleMain
			} else {
				key = other(prev)
			}
		}
		for _, i := range tr.members {
			keys[i] = key
		}
		prev = key
	}

	if r.main != "" {
		r.st.main = r.main
	}
	return keys
}

func other(key string) string {
	if key == roleMain {
		return roleGuest
	}
	return roleMain
}

// resolver turns identity keys into labels
type resolver struct {
	st       *runState
	acoustic bool
	main     string
	guest    string
	local    map[string]string
	count    int
}

func (r *resolver) keyFor(name string) string {
	switch name {
	case "":
		return ""
	case r.main:
		return roleMain
	case r.guest:
		return roleGuest
	}
	return name
}

// known returns the resolved name behind key, or "" if it still needs a placeholder
func (r *resolver) known(key string) string {
	switch {
	case key == roleMain:
		return r.main
	case key == roleGuest:
		return r.guest
	case strings.HasPrefix(key, trackPrefix):
		return r.st.trackNames[strings.TrimPrefix(key, trackPrefix)]
	case strings.HasPrefix(key, "\x00"):
		return ""
	}
	return key
}

// excludeAddressees makes sure no utterance addressing a name is labeled
// with that name. The utterance falls back to the preceding speaker, then to
// either structural role, then to a fresh unknown speaker.
func (r *resolver) excludeAddressees(keys []string, narr []bool, info []utteranceInfo) {
	for i := range keys {
		name := info[i].addressed
		if narr[i] || name == "" || r.known(keys[i]) != name {
			continue
		}
		replacement := otherPrefix + name
		candidates := make([]string, 0, 3)
		for j := i - 1; j >= 0; j-- {
			if !narr[j] {
				candidates = append(candidates, keys[j])
				break
			}
		}
		if !r.acoustic {
			candidates = append(candidates, roleMain, roleGuest)
		}
		for _, c := range candidates {
			if r.known(c) != name {
				replacement = c
				break
			}
		}
		keys[i] = replacement
	}
}

// label resolves keys to names, handing out placeholders in order of first
// appearance. Acoustic placeholders are shared by the whole run.
func (r *resolver) label(keys []string, narr []bool) []string {
	labels := make([]string, len(keys))
	for i, key := range keys {
		if narr[i] {
			labels[i] = entities.NarratorLabel
			continue
		}
		if name := r.known(key); name != "" {
			labels[i] = name
			continue
		}
		labels[i] = r.placeholder(key)
	}
	return labels
}

func (r *resolver) placeholder(key string) string {
	if r.acoustic {
		if p, ok := r.st.trackSlots[key]; ok {
			return p
		}
		p := entities.Placeholder(r.st.placeholders)
		r.st.placeholders++
		r.st.trackSlots[key] = p
		return p
	}
	if r.local == nil {
		r.local = make(map[string]string)
	}
	if p, ok := r.local[key]; ok {
		return p
	}
	p := entities.Placeholder(r.count)
	r.count++
	r.local[key] = p
	return p
}

func nativeIntervals(utts []entities.Utterance) []interval {
	spans := make([]interval, len(utts))
	for i, u := range utts {
		spans[i] = interval{u.StartTime, u.EndTime}
	}
	return spans
}

// estimateIntervals spreads audioDuration over all utterances of the run in
// proportion to their character counts. It returns nil when the duration is
// unknown.
func estimateIntervals(segs []entities.EpisodeSegment, audioDuration float64) [][]interval {
	if !entities.DurationKnown(audioDuration) {
		return nil
	}
	total := 0
	for _, seg := range segs {
		for _, u := range seg.Utterances {
			total += len([]rune(u.Text))
		}
	}
	if total == 0 {
		return nil
	}

	out := make([][]interval, len(segs))
	offset := 0
	scale := audioDuration / float64(total)
	for i, seg := range segs {
		out[i] = make([]interval, len(seg.Utterances))
		for j, u := range seg.Utterances {
			n := len([]rune(u.Text))
			out[i][j] = interval{float64(offset) * scale, float64(offset+n) * scale}
			offset += n
		}
	}
	return out
}
