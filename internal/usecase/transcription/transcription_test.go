package transcription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/radio-transcriber/errors"
	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/internal/infrastructure/cache"
	usecaseErrors "github.com/johnquangdev/radio-transcriber/internal/usecase/errors"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

// fakeBackend fails the first `failures` calls with err, then succeeds.
// Every call records the bytes it was able to read.
type fakeBackend struct {
	name     string
	failures int
	err      error
	calls    int
	reads    []string
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Transcribe(_ context.Context, audio io.Reader, _ string) (*entities.SourceTranscript, error) {
	data, _ := io.ReadAll(audio)
	f.calls++
	f.reads = append(f.reads, string(data))
	if f.calls <= f.failures {
		return nil, f.err
	}
	return &entities.SourceTranscript{
		Utterances: []entities.Utterance{entities.NewUtterance(0, "hola desde "+f.name, 0, 1)},
	}, nil
}

type countingSource struct {
	calls int
	out   *entities.SourceTranscript
	err   error
}

func (c *countingSource) Produce(context.Context, string) (*entities.SourceTranscript, error) {
	c.calls++
	return c.out, c.err
}

func writeAudio(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "episode.m4a")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestFallback(backends ...Backend) *FallbackSource {
	s := NewFallbackSource(backends, time.Second, zap.NewNop())
	s.backOff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3)
	}
	return s
}

func TestFallbackSourceRetriesTransientErrors(t *testing.T) {
	path := writeAudio(t, "audio-bytes")
	first := &fakeBackend{name: "first", failures: 2, err: errors.New("connection reset by peer")}

	out, err := newTestFallback(first).Produce(context.Background(), path)
	if err != nil {
		t.Fatalf("Produce() error = %v", err)
	}
	if first.calls != 3 {
		t.Fatalf("calls = %d, want 3", first.calls)
	}
	for i, r := range first.reads {
		if r != "audio-bytes" {
			t.Errorf("attempt %d read %q, stream was not rewound", i, r)
		}
	}
	if out.Backend != "first" {
		t.Errorf("backend = %q, want first", out.Backend)
	}
}

func TestFallbackSourceMovesToNextBackend(t *testing.T) {
	path := writeAudio(t, "audio-bytes")
	first := &fakeBackend{name: "first", failures: 100, err: errors.New("status 503 service unavailable")}
	second := &fakeBackend{name: "second"}

	out, err := newTestFallback(first, second).Produce(context.Background(), path)
	if err != nil {
		t.Fatalf("Produce() error = %v", err)
	}
	if first.calls != 4 {
		t.Errorf("first backend calls = %d, want 4", first.calls)
	}
	if second.calls != 1 || second.reads[0] != "audio-bytes" {
		t.Errorf("second backend did not get the full stream: %v", second.reads)
	}
	if out.Backend != "second" || out.Utterances[0].Text != "hola desde second" {
		t.Errorf("unexpected transcript: %+v", out)
	}
}

func TestFallbackSourceDoesNotRetryPermanentErrors(t *testing.T) {
	path := writeAudio(t, "x")
	first := &fakeBackend{name: "first", failures: 100, err: errors.New("401 unauthorized")}

	_, err := newTestFallback(first).Produce(context.Background(), path)
	if err == nil {
		t.Fatal("expected an error")
	}
	if first.calls != 1 {
		t.Errorf("calls = %d, want 1", first.calls)
	}
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_TRANSCRIPTION_FAILED {
		t.Fatalf("expected a transcription failure, got %v", err)
	}
}

func TestFallbackSourceMissingAudio(t *testing.T) {
	_, err := newTestFallback(&fakeBackend{name: "first"}).Produce(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"))
	var appErr apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrorCode_AUDIO_NOT_FOUND {
		t.Fatalf("expected audio not found, got %v", err)
	}
}

func TestFallbackSourceWithoutBackends(t *testing.T) {
	if _, err := newTestFallback().Produce(context.Background(), "a.mp3"); !errors.Is(err, usecaseErrors.ErrNoBackends) {
		t.Fatalf("expected ErrNoBackends, got %v", err)
	}
}

func TestReadSidecar(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantTexts []string
		wantTimed bool
		duration  float64
	}{
		{
			name:      "object with timing",
			body:      `{"duration": 12.5, "utterances": [{"text": " Hola ", "start": 0, "end": 2}, {"text": "", "start": 2, "end": 3}, {"text": "Adiós", "start": 3, "end": 4}]}`,
			wantTexts: []string{"Hola", "Adiós"},
			wantTimed: true,
			duration:  12.5,
		},
		{
			name:      "bare array without timing",
			body:      `[{"text": "Uno"}, {"text": "Dos"}]`,
			wantTexts: []string{"Uno", "Dos"},
			duration:  entities.UnknownDuration,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ReadSidecar(strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("ReadSidecar() error = %v", err)
			}
			if len(out.Utterances) != len(tt.wantTexts) {
				t.Fatalf("got %d utterances, want %d", len(out.Utterances), len(tt.wantTexts))
			}
			for i, u := range out.Utterances {
				if u.Text != tt.wantTexts[i] || u.HasTiming != tt.wantTimed || u.Index != i {
					t.Errorf("utterance %d = %+v", i, u)
				}
			}
			if out.Duration != tt.duration {
				t.Errorf("duration = %v, want %v", out.Duration, tt.duration)
			}
		})
	}
}

func TestReadSidecarRejectsGarbage(t *testing.T) {
	if _, err := ReadSidecar(strings.NewReader("{not json")); !errors.Is(err, usecaseErrors.ErrInvalidSidecar) {
		t.Fatalf("expected ErrInvalidSidecar, got %v", err)
	}
}

func TestSidecarSourcePrefersSidecar(t *testing.T) {
	audio := writeAudio(t, "audio")
	next := &countingSource{out: &entities.SourceTranscript{Backend: "next"}}
	src := NewSidecarSource(".utterances.json", next, nil)

	out, err := src.Produce(context.Background(), audio)
	if err != nil || out.Backend != "next" || next.calls != 1 {
		t.Fatalf("without sidecar: out=%+v err=%v calls=%d", out, err, next.calls)
	}

	sidecar := SidecarPath(audio, ".utterances.json")
	if err := os.WriteFile(sidecar, []byte(`[{"text": "Hola"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = src.Produce(context.Background(), audio)
	if err != nil {
		t.Fatalf("Produce() error = %v", err)
	}
	if out.Backend != BackendSidecar || next.calls != 1 {
		t.Fatalf("sidecar was not used: out=%+v calls=%d", out, next.calls)
	}
}

func TestSidecarSourceWithoutFallback(t *testing.T) {
	src := NewSidecarSource(".utterances.json", nil, nil)
	if _, err := src.Produce(context.Background(), writeAudio(t, "a")); !errors.Is(err, usecaseErrors.ErrNoTranscript) {
		t.Fatalf("expected ErrNoTranscript, got %v", err)
	}
}

func TestCachedSource(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()

	audio := writeAudio(t, "same bytes")
	next := &countingSource{out: &entities.SourceTranscript{
		Utterances: []entities.Utterance{entities.NewUtterance(0, "Hola", 0, 1)},
		Tracks:     []entities.SpeakerTrack{{TrackID: "A", StartTime: 0, EndTime: 1}},
		Backend:    "openai",
	}}
	src := NewCachedSource(next, store, time.Hour, zap.NewNop())

	for i := 0; i < 3; i++ {
		out, err := src.Produce(context.Background(), audio)
		if err != nil {
			t.Fatalf("Produce() error = %v", err)
		}
		if len(out.Utterances) != 1 || out.Utterances[0].Text != "Hola" || len(out.Tracks) != 1 {
			t.Fatalf("unexpected transcript on call %d: %+v", i, out)
		}
	}
	if next.calls != 1 {
		t.Fatalf("next source called %d times, want 1", next.calls)
	}

	key, err := ContentKey(audio)
	if err != nil {
		t.Fatal(err)
	}
	data, found, _ := store.Get(context.Background(), key)
	if !found {
		t.Fatal("transcript was not cached")
	}
	var cached entities.SourceTranscript
	if err := msgpack.Unmarshal(data, &cached); err != nil || cached.Backend != "openai" {
		t.Fatalf("cached entry = %+v, err = %v", cached, err)
	}
}

func TestCachedSourceDoesNotCacheErrors(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()

	next := &countingSource{err: fmt.Errorf("boom")}
	src := NewCachedSource(next, store, time.Hour, nil)
	audio := writeAudio(t, "x")
	for i := 0; i < 2; i++ {
		if _, err := src.Produce(context.Background(), audio); err == nil {
			t.Fatal("expected error")
		}
	}
	if next.calls != 2 {
		t.Fatalf("calls = %d, want 2", next.calls)
	}
}

type fakeClipper struct {
	dir string
}

func (f fakeClipper) Clip(_ context.Context, _ string, offset, seconds float64) (string, error) {
	path := filepath.Join(f.dir, fmt.Sprintf("clip-%.0f.wav", offset))
	return path, os.WriteFile(path, []byte(fmt.Sprintf("%.0f+%.0f", offset, seconds)), 0o644)
}

type fakePrefixBackend struct{}

func (fakePrefixBackend) TranscribePrefix(_ context.Context, audio io.Reader, _ string) ([]entities.Utterance, error) {
	data, _ := io.ReadAll(audio)
	return []entities.Utterance{entities.NewUntimedUtterance(0, "Section "+string(data))}, nil
}

func TestPrefixerRemovesClip(t *testing.T) {
	dir := t.TempDir()
	p := NewPrefixer(fakeClipper{dir: dir}, fakePrefixBackend{}, nil)

	utts, err := p.ProducePrefix(context.Background(), "episode.m4a", 30, 10)
	if err != nil {
		t.Fatalf("ProducePrefix() error = %v", err)
	}
	if len(utts) != 1 || utts[0].Text != "Section 30+10" {
		t.Fatalf("unexpected utterances: %+v", utts)
	}
	if _, err := os.Stat(filepath.Join(dir, "clip-30.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("clip was not removed: %v", err)
	}
}

func TestBackendsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Transcription: config.TranscriptionConfig{Backends: []string{"assemblyai", " OpenAI "}, Language: "es", NarratorLanguage: "en"},
		OpenAI:        config.OpenAIConfig{APIKey: "k", Model: "whisper-1"},
	}
	backends, prefix, err := BackendsFromConfig(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("BackendsFromConfig() error = %v", err)
	}
	if len(backends) != 1 || backends[0].Name() != "openai" {
		t.Fatalf("unexpected backends: %v", backends)
	}
	if prefix == nil {
		t.Fatal("expected a prefix backend")
	}

	cfg.Transcription.Backends = []string{"whisperx"}
	if _, _, err := BackendsFromConfig(cfg, nil); !errors.Is(err, usecaseErrors.ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}
