package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "out")
	s, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	name := ObjectName("radio_02")
	if ok, err := s.Exists(ctx, name); err != nil || ok {
		t.Fatalf("Exists before save = %v, %v", ok, err)
	}
	if err := s.Save(ctx, name, "[Ana]: Hola.\n"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ok, _ := s.Exists(ctx, name); !ok {
		t.Fatal("saved object missing")
	}
	got, err := s.Load(ctx, name)
	if err != nil || got != "[Ana]: Hola.\n" {
		t.Fatalf("Load = %q, %v", got, err)
	}

	s.Save(ctx, ObjectName("radio_01"), "x")
	s.Save(ctx, "notes.md", "y")
	names, err := s.List(ctx, TranscriptSuffix)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"radio_01_transcript.txt", "radio_02_transcript.txt"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("List = %v, want %v", names, want)
	}
}

func TestLocalStoreMissingAndInvalid(t *testing.T) {
	ctx := context.Background()
	s, _ := NewLocalStore(t.TempDir())

	if _, err := s.Load(ctx, "nope_transcript.txt"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load missing = %v, want os.ErrNotExist", err)
	}
	for _, name := range []string{"", "../escape.txt", "a/b.txt", ".."} {
		if err := s.Save(ctx, name, "x"); err == nil {
			t.Errorf("Save(%q) should fail", name)
		}
	}
}

func TestNewSelectsStore(t *testing.T) {
	s, err := New(context.Background(), &config.StorageConfig{Type: "local", LocalDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := s.(*LocalStore); !ok {
		t.Fatalf("New returned %T", s)
	}
	s, err = New(context.Background(), &config.StorageConfig{Type: "s3", BucketName: "b", Region: "us-east-1"})
	if err != nil {
		t.Fatalf("New s3: %v", err)
	}
	if _, ok := s.(*S3Store); !ok {
		t.Fatalf("New returned %T", s)
	}
	if _, err := New(context.Background(), &config.StorageConfig{Type: "ftp"}); err == nil {
		t.Fatal("expected error for unknown type")
	}
}
