package logger

import "testing"

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("development", "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewLevels(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		l, err := New(env, "warn")
		if err != nil {
			t.Fatalf("New(%s): %v", env, err)
		}
		if l.Core().Enabled(-1) {
			t.Fatalf("%s logger should not enable debug at warn level", env)
		}
	}
}
