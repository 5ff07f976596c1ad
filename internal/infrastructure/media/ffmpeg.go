// Package media wraps the ffprobe and ffmpeg binaries: probing audio
// duration and cutting short clips for narrator prefix transcription.
package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/pkg/config"
)

// CommandRunner runs an external command and returns its stdout
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args []string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Tools probes and clips audio files
type Tools struct {
	ffmpegPath  string
	ffprobePath string
	tempDir     string
	runner      CommandRunner
	logger      *zap.Logger
}

// Option configures Tools
type Option func(*Tools)

// WithCommandRunner replaces process execution, mainly for tests
func WithCommandRunner(r CommandRunner) Option {
	return func(t *Tools) { t.runner = r }
}

// WithTempDir sets where clips are written
func WithTempDir(dir string) Option {
	return func(t *Tools) { t.tempDir = dir }
}

// WithLogger attaches a logger
func WithLogger(l *zap.Logger) Option {
	return func(t *Tools) { t.logger = l }
}

// New creates Tools from the media config
func New(cfg config.MediaConfig, opts ...Option) *Tools {
	t := &Tools{
		ffmpegPath:  cfg.FFmpegPath,
		ffprobePath: cfg.FFprobePath,
		runner:      execRunner{},
	}
	if t.ffmpegPath == "" {
		t.ffmpegPath = "ffmpeg"
	}
	if t.ffprobePath == "" {
		t.ffprobePath = "ffprobe"
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Duration returns the audio length in seconds. It never fails: any probe
// error yields entities.UnknownDuration.
func (t *Tools) Duration(ctx context.Context, path string) float64 {
	out, err := t.runner.Run(ctx, t.ffprobePath, []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	})
	if err != nil {
		if t.logger != nil {
			t.logger.Warn("⚠️ ffprobe failed, duration unknown", zap.String("path", path), zap.Error(err))
		}
		return entities.UnknownDuration
	}

	d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || !entities.DurationKnown(d) {
		if t.logger != nil {
			t.logger.Warn("⚠️ unparseable ffprobe duration", zap.String("path", path), zap.String("output", string(out)))
		}
		return entities.UnknownDuration
	}
	return d
}

// Clip cuts seconds of audio starting at offset into a temporary mono 16 kHz
// WAV file. The caller removes the returned file.
func (t *Tools) Clip(ctx context.Context, path string, offset, seconds float64) (string, error) {
	if seconds <= 0 {
		return "", fmt.Errorf("clip length must be positive, got %v", seconds)
	}
	f, err := os.CreateTemp(t.tempDir, "prefix-*.wav")
	if err != nil {
		return "", fmt.Errorf("failed to create clip file: %w", err)
	}
	out := f.Name()
	f.Close()

	args := []string{"-y", "-v", "error"}
	if offset > 0 {
		args = append(args, "-ss", formatSeconds(offset))
	}
	args = append(args,
		"-t", formatSeconds(seconds),
		"-i", path,
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		out,
	)
	if _, err := t.runner.Run(ctx, t.ffmpegPath, args); err != nil {
		os.Remove(out)
		return "", fmt.Errorf("failed to clip %s at %.2fs: %w", path, offset, err)
	}
	return out, nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
