package database

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/johnquangdev/radio-transcriber/errors"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := Migrations().FindMigrations()
	if err != nil {
		t.Fatalf("FindMigrations: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("found %d migrations, want 2", len(migrations))
	}
	if !strings.Contains(strings.Join(migrations[0].Up, "\n"), "CREATE TABLE IF NOT EXISTS transcripts") {
		t.Fatalf("first migration does not create transcripts: %v", migrations[0].Up)
	}
	for _, m := range migrations {
		if len(m.Down) == 0 {
			t.Errorf("migration %s has no down step", m.Id)
		}
	}
}

func TestNewPostgresDBUnreachable(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Host: "127.0.0.1", Port: "1", User: "postgres", Password: "postgres",
		Name: "radio_transcriber", SSLMode: "disable", MaxConns: 1, MinConns: 1,
	}}
	_, err := NewPostgresDB(cfg, nil)
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_DB_CONNECTION_FAILED {
		t.Fatalf("err = %v, want a database connection error", err)
	}
}
