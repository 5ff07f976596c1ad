package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	apperrors "github.com/johnquangdev/radio-transcriber/errors"
)

func TestJobBeginCarriesMetadata(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), "audio/radio_01.m4a", 3, 2, 0)
	defer cancel()

	meta := GetJobMetadata(ctx)
	if meta.AudioPath != "audio/radio_01.m4a" || meta.WorkerID != 3 || meta.MaxRetries != 2 {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if _, ok := GetJobID(ctx); !ok {
		t.Fatal("job id missing")
	}
	if _, ok := ctx.Deadline(); ok {
		t.Fatal("zero timeout should not set a deadline")
	}
}

func TestJobEndRetriesRetryableErrors(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), "a.mp3", 0, 3, time.Second)
	defer cancel()

	var attempts []int
	err := JobEnd(ctx, time.Millisecond, func(ctx context.Context) error {
		attempts = append(attempts, GetRetryAttempt(ctx))
		if len(attempts) < 3 {
			return errors.New("connection reset by peer")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("JobEnd() error = %v", err)
	}
	if len(attempts) != 3 || attempts[2] != 2 {
		t.Fatalf("attempts = %v", attempts)
	}
}

func TestJobEndStopsOnPermanentError(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), "a.mp3", 0, 5, 0)
	defer cancel()

	calls := 0
	sentinel := errors.New("invalid sidecar")
	err := JobEnd(ctx, time.Millisecond, func(context.Context) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) || calls != 1 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

func TestJobEndRecoversPanics(t *testing.T) {
	ctx, cancel := JobBegin(context.Background(), "a.mp3", 0, 1, 0)
	defer cancel()

	err := JobEnd(ctx, time.Millisecond, func(context.Context) error {
		panic("boom")
	})
	if err == nil || !strings.Contains(err.Error(), "panic recovered: boom") {
		t.Fatalf("err = %v", err)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("groq returned status 503"), true},
		{errors.New("429 Too Many Requests"), true},
		{errors.New("401 Unauthorized"), false},
		{errors.New("invalid utterance sidecar"), false},
		{context.Canceled, false},
		{fmt.Errorf("transcribe: %w", context.DeadlineExceeded), true},
		{apperrors.ErrAudioNotFound("gone.m4a"), false},
		{apperrors.ErrTranscriptionFailed("openai", errors.New("status 503")), true},
	}
	for _, tt := range tests {
		if got := IsRetryableError(tt.err); got != tt.want {
			t.Errorf("IsRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestCalculateBackoff(t *testing.T) {
	if got := CalculateBackoff(2, time.Second); got != 4*time.Second {
		t.Fatalf("CalculateBackoff(2) = %v", got)
	}
	if got := CalculateBackoff(10, time.Second); got != 60*time.Second {
		t.Fatalf("CalculateBackoff(10) = %v, want the 60s cap", got)
	}
}

func TestGetJobMetadataOutsideJob(t *testing.T) {
	meta := GetJobMetadata(context.Background())
	if meta.WorkerID != -1 || meta.MaxRetries != 1 || meta.Elapsed() != 0 {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
	if _, ok := GetJobID(context.Background()); ok {
		t.Fatal("no job id expected outside a job")
	}
}
