package transcription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/radio-transcriber/errors"
	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/radio-transcriber/internal/usecase/errors"
	"github.com/johnquangdev/radio-transcriber/pkg/jobcontext"
)

// FallbackSource tries each backend in order. A backend is retried with
// exponential backoff while its errors look transient; once it is exhausted the
// audio stream is rewound and the next backend gets the whole file.
type FallbackSource struct {
	backends []Backend
	backOff  func() backoff.BackOff
	logger   *zap.Logger
}

// NewFallbackSource creates a fallback source. maxElapsed bounds the retries of
// each backend.
func NewFallbackSource(backends []Backend, maxElapsed time.Duration, logger *zap.Logger) *FallbackSource {
	return &FallbackSource{
		backends: backends,
		backOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = 2 * time.Second
			bo.MaxInterval = 10 * time.Second
			bo.MaxElapsedTime = maxElapsed
			return bo
		},
		logger: logger,
	}
}

// Produce implements Source
func (s *FallbackSource) Produce(ctx context.Context, audioPath string) (*entities.SourceTranscript, error) {
	if len(s.backends) == 0 {
		return nil, usecaseErrors.ErrNoBackends
	}

	f, err := os.Open(audioPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.ErrAudioNotFound(audioPath)
		}
		return nil, fmt.Errorf("failed to open audio: %w", err)
	}
	defer f.Close()

	return s.transcribe(ctx, f, filepath.Base(audioPath))
}

func (s *FallbackSource) transcribe(ctx context.Context, audio io.ReadSeeker, filename string) (*entities.SourceTranscript, error) {
	var (
		failures []error
		names    []string
	)
	for i, b := range s.backends {
		names = append(names, b.Name())
		if i > 0 && s.logger != nil {
			s.logger.Warn("🔁 Falling back to next transcription backend",
				zap.String("file", filename),
				zap.String("backend", b.Name()),
			)
		}

		var out *entities.SourceTranscript
		op := func() error {
			if _, err := audio.Seek(0, io.SeekStart); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to rewind audio: %w", err))
			}
			res, err := b.Transcribe(ctx, audio, filename)
			if err != nil {
				if !jobcontext.IsRetryableError(err) {
					return backoff.Permanent(err)
				}
				return err
			}
			if res == nil {
				return backoff.Permanent(fmt.Errorf("%s returned no transcript", b.Name()))
			}
			out = res
			return nil
		}
		notify := func(err error, wait time.Duration) {
			if s.logger != nil {
				s.logger.Warn("⚠️ Transcription attempt failed, retrying",
					zap.String("backend", b.Name()),
					zap.Duration("wait", wait),
					zap.Error(err),
				)
			}
		}

		err := backoff.RetryNotify(op, backoff.WithContext(s.backOff(), ctx), notify)
		if err == nil {
			if out.Backend == "" {
				out.Backend = b.Name()
			}
			return out, nil
		}

		if s.logger != nil {
			s.logger.Error("❌ Transcription backend exhausted",
				zap.String("backend", b.Name()),
				zap.Error(err),
			)
		}
		failures = append(failures, apperrors.ErrExhaustedRetries(b.Name(), err))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, apperrors.ErrTranscriptionFailed(strings.Join(names, ","), errors.Join(failures...))
}
