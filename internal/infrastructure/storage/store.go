// Package storage persists rendered transcripts. Objects are addressed by
// name, for example "radio_01_transcript.txt".
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

// TranscriptSuffix ends the name of every per-file transcript object
const TranscriptSuffix = "_transcript.txt"

// TranscriptStore reads and writes transcript objects
type TranscriptStore interface {
	Exists(ctx context.Context, name string) (bool, error)
	Save(ctx context.Context, name, content string) error
	// Load returns an error wrapping os.ErrNotExist for a missing object
	Load(ctx context.Context, name string) (string, error)
	// List returns the names of all stored objects ending in suffix, sorted
	List(ctx context.Context, suffix string) ([]string, error)
}

// ObjectName returns the transcript object name for an audio file stem
func ObjectName(stem string) string {
	return stem + TranscriptSuffix
}

// New builds the store selected by cfg.Type
func New(ctx context.Context, cfg *config.StorageConfig) (TranscriptStore, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStore(cfg.LocalDir)
	case "minio":
		return NewMinIOClient(ctx, cfg)
	case "s3":
		return NewS3Store(NewS3Client(cfg), cfg.BucketName, cfg.Prefix), nil
	}
	return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
}

func filterNames(names []string, prefix, suffix string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimPrefix(n, prefix)
		if strings.HasSuffix(n, suffix) && !strings.Contains(n, "/") {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
