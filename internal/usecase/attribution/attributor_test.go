package attribution

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/pattern"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

func newTestAttributor(opts ...Option) *Attributor {
	return New(DefaultNameFinder(), pattern.Default(), opts...)
}

func noLead() Option {
	return WithSettings(Settings{NarratorLeadTokens: 0, SilenceGapSeconds: 2})
}

func configWithDeclaration(expr string) config.SpeakerPhrases {
	sp := config.DefaultPhrasebook().Speakers
	sp.SelfDeclaration = []string{expr}
	return sp
}

func segmentOf(start int, texts ...string) entities.EpisodeSegment {
	utts := make([]entities.Utterance, len(texts))
	for i, t := range texts {
		utts[i] = entities.NewUntimedUtterance(start+i, t)
	}
	return entities.EpisodeSegment{Start: start, Utterances: utts}
}

type timedText struct {
	text       string
	start, end float64
}

func timedSegment(start int, items ...timedText) entities.EpisodeSegment {
	utts := make([]entities.Utterance, len(items))
	for i, it := range items {
		utts[i] = entities.NewUtterance(start+i, it.text, it.start, it.end)
	}
	return entities.EpisodeSegment{Start: start, Utterances: utts}
}

func labels(seg entities.EpisodeSegment) []string {
	out := make([]string, len(seg.Utterances))
	for i, u := range seg.Utterances {
		out[i] = u.Speaker
	}
	return out
}

func assertLabels(t *testing.T, seg entities.EpisodeSegment, want ...string) {
	t.Helper()
	if got := labels(seg); !reflect.DeepEqual(got, want) {
		t.Fatalf("labels = %q, want %q", got, want)
	}
}

func TestSelfDeclarationNamesWholeTurn(t *testing.T) {
	a := newTestAttributor()
	seg := a.Attribute(segmentOf(0,
		"Hola, te doy la bienvenida a Duolingo Radio.",
		"Soy Carlos.",
		"Hoy vamos a hablar de mi familia.",
		"Tengo dos hermanos y una hermana.",
	), nil)
	assertLabels(t, seg, "Narrator", "Carlos", "Carlos", "Carlos")
}

func TestQuestionEndsTurn(t *testing.T) {
	a := newTestAttributor()
	seg := a.Attribute(segmentOf(0,
		"Hola a todos y bienvenidos al programa.",
		"Soy Carlos.",
		"Vivo en Madrid con mi familia.",
		"¿Cuántos años tienes?",
		"Tengo veinte años.",
		"Qué bien.",
	), nil)
	assertLabels(t, seg, "Narrator", "Carlos", "Carlos", "Carlos", "Speaker A", "Speaker A")
}

func TestVocativeQuestionNotAttributedToAddressee(t *testing.T) {
	a := newTestAttributor()
	seg := a.Attribute(segmentOf(0,
		"Esto es un programa sobre la escuela.",
		"Hoy hablamos con los estudiantes.",
		"Mateo, ¿por qué llegaste tarde?",
		"Perdí el autobús esta mañana.",
	), nil)
	assertLabels(t, seg, "Narrator", "Speaker A", "Speaker A", "Mateo")
}

func TestVocativeOverridesDeclaredTurn(t *testing.T) {
	a := newTestAttributor()
	seg := a.Attribute(segmentOf(0,
		"Hola, te doy la bienvenida a la radio.",
		"Hoy estoy con Mateo.",
		"Soy Mateo y estoy feliz.",
		"Mateo, ¿por qué estás feliz?",
	), nil)
	assertLabels(t, seg, "Narrator", "Mateo", "Mateo", "Speaker A")
}

func TestNarratorOverride(t *testing.T) {
	tagged := func(seg entities.EpisodeSegment, i int) entities.EpisodeSegment {
		seg.Utterances[i].Language = entities.LanguageNarrator
		return seg
	}
	tests := []struct {
		name string
		lead int
		seg  entities.EpisodeSegment
		want []bool
	}{
		{
			name: "straddling utterance mostly inside",
			lead: 4,
			seg:  segmentOf(0, "Radio uno.", "Hoy hace sol.", "Vamos a la playa."),
			want: []bool{true, true, false},
		},
		{
			name: "straddling utterance mostly outside",
			lead: 4,
			seg:  segmentOf(0, "Radio uno.", "Hoy es un día bonito.", "Vamos."),
			want: []bool{true, false, false},
		},
		{
			name: "tagged lead does not count tokens",
			lead: 4,
			seg:  tagged(segmentOf(0, "Section one, unit two.", "Hola amigos.", "Soy Ana y hoy hablamos de cine."), 0),
			want: []bool{true, true, false},
		},
		{
			name: "tag after primary speech is ignored",
			lead: 0,
			seg:  tagged(segmentOf(0, "Soy Carlos.", "Escucho la radio.", "Me gusta mucho."), 1),
			want: []bool{false, false, false},
		},
		{
			name: "lead tokens counted after the tagged run",
			lead: 4,
			seg:  tagged(tagged(segmentOf(0, "Section one.", "Hola amigos.", "Soy Ana y hoy hablamos de cine.", "Radio dos."), 0), 3),
			want: []bool{true, true, false, false},
		},
		{
			name: "disabled",
			lead: 0,
			seg:  tagged(segmentOf(0, "Section one.", "Hola amigos."), 0),
			want: []bool{true, false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAttributor(WithSettings(Settings{NarratorLeadTokens: tt.lead, SilenceGapSeconds: 2}))
			seg := a.Attribute(tt.seg, nil)
			for i, u := range seg.Utterances {
				if got := u.Speaker == entities.NarratorLabel; got != tt.want[i] {
					t.Errorf("utterance %d (%q) narrator = %v, want %v", i, u.Text, got, tt.want[i])
				}
			}
		})
	}
}

func TestAcousticTracks(t *testing.T) {
	a := newTestAttributor()
	seg := a.Attribute(timedSegment(0,
		timedText{"Bienvenidos al programa de hoy.", 0, 4},
		timedText{"Soy Laura y trabajo aquí.", 4, 8},
		timedText{"Yo vivo en Lima.", 8, 12},
		timedText{"Me encanta la ciudad.", 12, 16},
	), []entities.SpeakerTrack{
		{TrackID: "B", StartTime: 9, EndTime: 16},
		{TrackID: "A", StartTime: 3, EndTime: 9},
	})
	assertLabels(t, seg, "Narrator", "Laura", "Speaker A", "Speaker A")
}

func TestAcousticTieGoesToEarliestTrack(t *testing.T) {
	a := newTestAttributor(noLead())
	seg := a.Attribute(timedSegment(0,
		timedText{"Soy Ana.", 0, 8},
		timedText{"Estoy aquí en medio.", 10, 14},
	), []entities.SpeakerTrack{
		{TrackID: "late", StartTime: 12, EndTime: 16},
		{TrackID: "early", StartTime: 0, EndTime: 12},
	})
	assertLabels(t, seg, "Ana", "Ana")
}

func TestTrackKeepsOneNameAcrossSegments(t *testing.T) {
	a := newTestAttributor(noLead())
	segs := a.AttributeAll([]entities.EpisodeSegment{
		timedSegment(0,
			timedText{"Soy Laura.", 0, 5},
			timedText{"Encantado de estar aquí.", 5, 10},
		),
		timedSegment(2,
			timedText{"Sigo aquí con ustedes.", 10, 15},
			timedText{"Y yo soy Laura también.", 15, 20},
		),
	}, []entities.SpeakerTrack{
		{TrackID: "A", StartTime: 0, EndTime: 5},
		{TrackID: "B", StartTime: 5, EndTime: 10},
		{TrackID: "A", StartTime: 10, EndTime: 15},
		{TrackID: "B", StartTime: 15, EndTime: 20},
	}, 20)
	assertLabels(t, segs[0], "Laura", "Speaker A")
	assertLabels(t, segs[1], "Laura", "Speaker A")
}

func TestEstimatedIntervalsWithoutTiming(t *testing.T) {
	a := newTestAttributor(noLead())
	tracks := []entities.SpeakerTrack{
		{TrackID: "A", StartTime: 0, EndTime: 10},
		{TrackID: "B", StartTime: 10, EndTime: 20},
	}
	seg := segmentOf(0, "aaaa bbbb.", "cccc dddd.")

	got := a.AttributeAll([]entities.EpisodeSegment{seg}, tracks, 20)
	assertLabels(t, got[0], "Speaker A", "Speaker B")

	got = a.AttributeAll([]entities.EpisodeSegment{seg}, tracks, entities.UnknownDuration)
	assertLabels(t, got[0], "Speaker A", "Speaker A")
}

func TestMainSpeakerCarriesIntoSegmentWithoutOpening(t *testing.T) {
	a := newTestAttributor(noLead())
	first := segmentOf(0, "Hola, te doy la bienvenida a la radio. Soy Sari.", "Hoy hablamos de cocina.")
	second := segmentOf(2, "Ahora seguimos con la receta.", "Primero cortamos la cebolla.")

	segs := a.AttributeAll([]entities.EpisodeSegment{first, second}, nil, entities.UnknownDuration)
	assertLabels(t, segs[0], "Sari", "Sari")
	assertLabels(t, segs[1], "Sari", "Sari")

	alone := a.Attribute(second, nil)
	assertLabels(t, alone, "Speaker A", "Speaker A")
}

func TestStructuralRoles(t *testing.T) {
	a := newTestAttributor(noLead())
	seg := a.Attribute(segmentOf(0,
		"Hola, te doy la bienvenida a la radio. Soy Sari.",
		"Pero primero, estas son algunas palabras.",
		"¿Te gusta viajar?",
		"Sí, me encanta viajar.",
		"¿Adónde vas este verano?",
		"Voy a la playa.",
		"Gracias por escuchar.",
	), nil)
	assertLabels(t, seg, "Sari", "Sari", "Sari", "Speaker A", "Speaker A", "Sari", "Sari")
}

func TestAttributeLeavesInputUntouched(t *testing.T) {
	a := newTestAttributor()
	in := segmentOf(5, "Soy Carlos.", "Hola.")
	in.Evidence = entities.EvidenceSet{entities.EvidencePatternMarker}
	in.DurationSeconds = 120

	out := a.Attribute(in, nil)
	for _, u := range in.Utterances {
		if u.Speaker != "" {
			t.Fatalf("input utterance %d was labeled %q", u.Index, u.Speaker)
		}
	}
	if out.Start != 5 || out.DurationSeconds != 120 || !out.Evidence.Has(entities.EvidencePatternMarker) {
		t.Fatalf("segment fields not preserved: %+v", out)
	}
	for _, u := range out.Utterances {
		if u.Speaker == "" {
			t.Fatalf("utterance %d left unlabeled", u.Index)
		}
	}

	empty := a.Attribute(entities.EpisodeSegment{}, nil)
	if len(empty.Utterances) != 0 {
		t.Fatalf("empty segment gained utterances")
	}
}

func TestDominantSpeakers(t *testing.T) {
	a := newTestAttributor()
	got := a.DominantSpeakers(segmentOf(0, "Bienvenidos a la radio.", "Soy Carlos.", "Me gusta leer.").Utterances)
	if !reflect.DeepEqual(got, []string{"Carlos"}) {
		t.Fatalf("DominantSpeakers = %q", got)
	}
	if got := a.DominantSpeakers(nil); len(got) != 0 {
		t.Fatalf("DominantSpeakers(nil) = %q", got)
	}
}

func TestAddresseeNeverLabeledRandomized(t *testing.T) {
	pool := []string{
		"Soy Ana.",
		"Mateo, ¿por qué llegaste tarde?",
		"Lucía, cuéntanos algo.",
		"¿Qué opinas, Ana?",
		"Hola, Mateo.",
		"Me llamo Mateo.",
		"Estoy bien.",
		"Hoy hace calor.",
		"Gracias por escuchar.",
		"Pero primero, estas son algunas palabras.",
		"¿Mateo?",
		"Ana, ¿y tú?",
		"Hola, te doy la bienvenida a la radio.",
	}
	finder := DefaultNameFinder()
	a := newTestAttributor()
	rng := rand.New(rand.NewSource(11))

	for run := 0; run < 200; run++ {
		nsegs := 1 + rng.Intn(3)
		segs := make([]entities.EpisodeSegment, nsegs)
		var tracks []entities.SpeakerTrack
		at, index := 0.0, 0
		for s := range segs {
			n := 1 + rng.Intn(8)
			items := make([]timedText, n)
			for i := range items {
				d := 1 + float64(rng.Intn(5))
				items[i] = timedText{pool[rng.Intn(len(pool))], at, at + d}
				tracks = append(tracks, entities.SpeakerTrack{
					TrackID:   string(rune('A' + rng.Intn(3))),
					StartTime: at,
					EndTime:   at + d,
				})
				at += d
			}
			segs[s] = timedSegment(index, items...)
			index += n
		}
		if run%2 == 0 {
			tracks = nil
		}

		for _, seg := range a.AttributeAll(segs, tracks, at) {
			for _, u := range seg.Utterances {
				if u.Speaker == "" {
					t.Fatalf("run %d: utterance %q left unlabeled", run, u.Text)
				}
				if name, _, ok := finder.Addressed(u.Text); ok && u.Speaker == name {
					t.Fatalf("run %d: %q attributed to its addressee", run, u.Text)
				}
			}
		}
	}
}
