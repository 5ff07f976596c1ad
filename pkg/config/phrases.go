package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Phrasebook holds the language-specific phrase sets the engine matches against.
// Entries are regular expression fragments; structural phrases are matched
// case-insensitively.
type Phrasebook struct {
	Intro        []string       `yaml:"intro"`
	Transition   []string       `yaml:"transition"`
	Closing      []string       `yaml:"closing"`
	ProgramIntro []string       `yaml:"program_intro"`
	Narrator     NarratorWords  `yaml:"narrator"`
	Speakers     SpeakerPhrases `yaml:"speakers"`
}

// NarratorWords configures the announcer marker template
// "<section-word> <number> <unit-word> <number> <episode-word> <number>".
type NarratorWords struct {
	SectionWords   []string `yaml:"section_words"`
	UnitWords      []string `yaml:"unit_words"`
	EpisodeWords   []string `yaml:"episode_words"`
	NativeWords    []string `yaml:"native_words"`
	NumberWords    []string `yaml:"number_words"`
	HintWords      []string `yaml:"hint_words"`
	IndicatorWords []string `yaml:"indicator_words"`
	IndicatorRatio float64  `yaml:"indicator_ratio"`
}

// SpeakerPhrases configures name self-declaration and vocative detection
type SpeakerPhrases struct {
	SelfDeclaration []string `yaml:"self_declaration"`
	VocativeCues    []string `yaml:"vocative_cues"`
	Greetings       []string `yaml:"greetings"`
	StopWords       []string `yaml:"stop_words"`
}

// DefaultPhrasebook returns the built-in Spanish / English phrase sets
func DefaultPhrasebook() Phrasebook {
	return Phrasebook{
		Intro: []string{
			`hola,?\s+te doy la bienvenida a`,
			`(^|[¿¡\s])te doy la bienvenida a`,
			`hola,?\s+les doy la bienvenida a`,
			`¡?hola!?,?\s+esto es`,
		},
		Transition: []string{
			`pero primero[^.?!]*palabras`,
			`(estas|aquí) (son|tienes|hay) (unas |algunas )?palabras`,
			`repasemos (unas |algunas )?palabras`,
		},
		Closing: []string{
			`gracias por escuchar`,
			`gracias por acompañarme`,
			`y así termina`,
			`hasta (pronto|la próxima)`,
			`nos vemos pronto`,
		},
		ProgramIntro: []string{
			`soy \p{L}+ y (hoy|si)`,
			`bienvenid[oa]s? a duolingo`,
			`esto es duolingo (radio|podcast)`,
		},
		Narrator: NarratorWords{
			SectionWords: []string{"section", "sección", "seccion", "secsión"},
			UnitWords:    []string{"unit", "unidad", "unió", "unio", "unión", "union"},
			EpisodeWords: []string{"radio", "rádio", "story", "episode", "episodio", "historia", "part", "parte"},
			NativeWords:  []string{"section", "unit", "radio", "story", "episode", "part"},
			NumberWords: []string{
				"one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten",
				"uno", "una", "dos", "tres", "cuatro", "cinco", "seis", "siete", "ocho", "nueve", "diez",
			},
			HintWords: []string{
				"section", "radio", "part", "story", "number", "segment",
				"sección", "parte", "historia", "número", "numero", "segmento", "episodio",
			},
			// "radio" is left out: it is an everyday primary-language word.
			IndicatorWords: []string{
				"section", "unit", "part", "number", "segment", "story", "episode",
				"first", "second", "third", "fourth", "fifth", "sixth", "seventh", "eighth",
			},
			IndicatorRatio: 0.3,
		},
		Speakers: SpeakerPhrases{
			SelfDeclaration: []string{
				`(?:^|[\s¡¿,.;:])(?i:yo soy|soy)\s+(\p{Lu}\p{Ll}+)`,
				`(?i:me llamo)\s+(\p{Lu}\p{Ll}+)`,
				`(?i:mi nombre es)\s+(\p{Lu}\p{Ll}+)`,
				`(?:^|[\s,.;:])(?i:my name is|i am|i'm)\s+(\p{Lu}\p{Ll}+)`,
			},
			VocativeCues: []string{
				"¿", "por qué", "cuéntanos", "cuéntame", "dime", "dinos", "gracias", "qué", "cómo", "tell us",
			},
			Greetings: []string{"hola", "gracias", "adiós", "bienvenido", "bienvenida"},
			StopWords: []string{
				"Hola", "Gracias", "Bienvenida", "Bienvenido", "Soy", "Llamo", "Nombre", "Pero", "Por",
				"Los", "Las", "Nos", "Todo", "Tal", "Eso", "Cada", "Muy", "Ahora", "Antes", "Hasta",
				"Voy", "Hace", "Siempre", "Entonces", "Algunos", "Bueno", "Ideas", "Recuerda", "Pintar",
				"Visite", "Alegre", "Carros", "Colombia", "Sí", "No", "Qué", "Cómo", "Dónde", "Cuándo",
				"Y", "Oye", "Mira", "Claro", "Vale", "Pues", "Bien", "Perfecto", "Exacto", "Genial",
				"Vaya", "Verdad", "Perdón", "Disculpa", "Espera", "Escucha", "Ah", "Eh", "Oh",
				"Amigos", "Chicos", "Señor", "Señora", "También", "Además", "Hoy", "Mañana",
			},
		},
	}
}

// LoadPhrasebook reads a YAML phrasebook and overlays it on the defaults; keys
// missing from the file keep their default values.
func LoadPhrasebook(path string) (Phrasebook, error) {
	book := DefaultPhrasebook()

	data, err := os.ReadFile(path)
	if err != nil {
		return book, fmt.Errorf("failed to read phrasebook %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &book); err != nil {
		return book, fmt.Errorf("failed to parse phrasebook %s: %w", path, err)
	}
	return book, nil
}
