package attribution

import "testing"

func TestDeclared(t *testing.T) {
	f := DefaultNameFinder()
	tests := []struct {
		text string
		want string
	}{
		{"Soy Carlos.", "Carlos"},
		{"Hola, me llamo Lucía y soy profesora.", "Lucía"},
		{"Mi nombre es Pedro.", "Pedro"},
		{"My name is John.", "John"},
		{"Soy Bueno.", ""},
		{"Soy de Madrid.", ""},
		{"Hola, Carlos, soy Ana.", "Ana"},
		{"Hoy hace calor.", ""},
	}
	for _, tt := range tests {
		got, ok := f.Declared(tt.text)
		if got != tt.want || ok != (tt.want != "") {
			t.Errorf("Declared(%q) = %q, %v; want %q", tt.text, got, ok, tt.want)
		}
	}
}

func TestAddressed(t *testing.T) {
	f := DefaultNameFinder()
	tests := []struct {
		text   string
		want   string
		strong bool
	}{
		{"Mateo, ¿por qué llegaste tarde?", "Mateo", true},
		{"¿Mateo?", "Mateo", true},
		{"Y bien, Lucía, ¿qué piensas?", "Lucía", true},
		{"Lucía, cuéntanos algo.", "Lucía", true},
		{"¿Qué piensas tú, Ana?", "Ana", false},
		{"Hola, Carlos.", "Carlos", false},
		{"Bueno, ¿seguimos?", "", false},
		{"Estoy en casa, Pedro.", "", false},
		{"Soy Carlos.", "", false},
	}
	for _, tt := range tests {
		got, strong, ok := f.Addressed(tt.text)
		if got != tt.want || strong != tt.strong || ok != (tt.want != "") {
			t.Errorf("Addressed(%q) = %q, %v, %v; want %q, %v", tt.text, got, strong, ok, tt.want, tt.strong)
		}
	}
}

func TestIsQuestion(t *testing.T) {
	if !IsQuestion("¿Vienes") || !IsQuestion("Vienes?") {
		t.Error("question marks not recognised")
	}
	if IsQuestion("Vengo.") {
		t.Error("statement reported as question")
	}
}

func TestNewNameFinderRejectsPhraseWithoutGroup(t *testing.T) {
	_, err := NewNameFinder(configWithDeclaration(`soy \p{Lu}\p{Ll}+`))
	if err == nil {
		t.Fatal("expected error for phrase without capture group")
	}
	_, err = NewNameFinder(configWithDeclaration(`soy (`))
	if err == nil {
		t.Fatal("expected error for invalid phrase")
	}
}
