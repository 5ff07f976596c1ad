package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/johnquangdev/radio-transcriber/errors"
)

type KeyContext string

const keyJob KeyContext = "job"

// JobMetadata holds metadata for one file job of a batch
type JobMetadata struct {
	JobID        uuid.UUID
	AudioPath    string
	WorkerID     int
	RetryAttempt int
	MaxRetries   int
	StartTime    time.Time
}

// Elapsed is the time since the job began
func (m JobMetadata) Elapsed() time.Duration {
	if m.StartTime.IsZero() {
		return 0
	}
	return time.Since(m.StartTime)
}

// JobBegin derives a job context carrying metadata. A zero timeout leaves the
// job unbounded; transcribing a long recording can take many minutes.
func JobBegin(parentCtx context.Context, audioPath string, workerID, maxRetries int, timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parentCtx, timeout)
	} else {
		ctx, cancel = context.WithCancel(parentCtx)
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	return context.WithValue(ctx, keyJob, JobMetadata{
		JobID:      uuid.New(),
		AudioPath:  audioPath,
		WorkerID:   workerID,
		MaxRetries: maxRetries,
		StartTime:  time.Now(),
	}), cancel
}

// JobEnd runs jobFunc with panic recovery, retrying retryable failures with
// exponential backoff until the job's max retries are used up. Each attempt
// sees its own attempt number in the context metadata.
func JobEnd(ctx context.Context, baseDelay time.Duration, jobFunc func(context.Context) error) error {
	meta := GetJobMetadata(ctx)

	var err error
	for attempt := meta.RetryAttempt; attempt < meta.MaxRetries; {
		meta.RetryAttempt = attempt
		err = runAttempt(context.WithValue(ctx, keyJob, *meta), jobFunc)
		if err == nil {
			return nil
		}
		if !IsRetryableError(err) {
			return err
		}

		attempt++
		if attempt >= meta.MaxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %w", meta.MaxRetries, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		case <-time.After(CalculateBackoff(attempt, baseDelay)):
		}
	}

	return fmt.Errorf("job failed after %d attempts: %w", meta.MaxRetries, err)
}

func runAttempt(ctx context.Context, jobFunc func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic recovered: %v", p)
		}
	}()

	if ctx.Err() != nil {
		return fmt.Errorf("context cancelled before job execution: %w", ctx.Err())
	}
	return jobFunc(ctx)
}

// GetJobID extracts job ID from context
func GetJobID(ctx context.Context) (uuid.UUID, bool) {
	meta, ok := ctx.Value(keyJob).(JobMetadata)
	return meta.JobID, ok
}

// GetRetryAttempt extracts current retry attempt from context
func GetRetryAttempt(ctx context.Context) int {
	meta, _ := ctx.Value(keyJob).(JobMetadata)
	return meta.RetryAttempt
}

// GetJobMetadata extracts a copy of the job metadata. Outside a job it
// reports worker -1 and a single attempt.
func GetJobMetadata(ctx context.Context) *JobMetadata {
	meta, ok := ctx.Value(keyJob).(JobMetadata)
	if !ok {
		return &JobMetadata{WorkerID: -1, MaxRetries: 1}
	}
	return &meta
}

// permanentCodes are application errors that no retry can fix
var permanentCodes = map[apperrors.ErrorCode]bool{
	apperrors.ErrorCode_INVALID_ARGUMENT:     true,
	apperrors.ErrorCode_INVALID_PAYLOAD:      true,
	apperrors.ErrorCode_NOT_FOUND:            true,
	apperrors.ErrorCode_ALREADY_EXISTS:       true,
	apperrors.ErrorCode_NOT_IMPLEMENTED:      true,
	apperrors.ErrorCode_AUDIO_NOT_FOUND:      true,
	apperrors.ErrorCode_TRANSCRIPT_NOT_FOUND: true,
}

// retryableMarkers are message fragments of transient failures: request
// timeouts, network errors, rate limits, 5xx answers and temporary failures.
var retryableMarkers = []string{
	"context deadline exceeded",
	"client.timeout exceeded",
	"connection refused",
	"connection reset",
	"network unreachable",
	"no such host",
	"i/o timeout",
	"unexpected eof",
	"rate limit",
	"too many requests",
	"429",
	"status 5",
	"internal server error",
	"service unavailable",
	"bad gateway",
	"gateway timeout",
	"temporary failure",
	"try again",
}

// IsRetryableError checks if an error should trigger a retry. The job
// context's own cancellation is never retryable; the caller checks it.
func IsRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var appErr apperrors.AppError
	if errors.As(err, &appErr) && permanentCodes[appErr.Code] {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range retryableMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// CalculateBackoff calculates exponential backoff duration
func CalculateBackoff(attempt int, baseDelay time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	// 2^attempt * baseDelay, max 60 seconds
	backoff := time.Duration(1<<uint(attempt)) * baseDelay

	maxBackoff := 60 * time.Second
	if backoff > maxBackoff {
		backoff = maxBackoff
	}

	return backoff
}
