package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/johnquangdev/radio-transcriber/pkg/jobcontext"
)

// retryBaseDelay is the first pause between whole-file retries of a batch job
const retryBaseDelay = 5 * time.Second

// BatchOptions controls a multi-file run
type BatchOptions struct {
	Force      bool
	Workers    int
	MaxRetries int
	// Timeout bounds each file; zero means no bound
	Timeout time.Duration
}

// BatchItem is the outcome for one file of a batch
type BatchItem struct {
	AudioPath string
	Result    *Result
	Err       error
}

// ProcessBatch processes files independently, at most opts.Workers at a time.
// Items come back in input order; a failed file never stops the others.
func (s *Service) ProcessBatch(ctx context.Context, paths []string, opts BatchOptions) []BatchItem {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	items := make([]BatchItem, len(paths))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		items[i].AudioPath = path
		g.Go(func() error {
			jobCtx, cancel := jobcontext.JobBegin(ctx, path, i%workers, opts.MaxRetries, opts.Timeout)
			defer cancel()

			items[i].Err = jobcontext.JobEnd(jobCtx, retryBaseDelay, func(ctx context.Context) error {
				res, err := s.ProcessFile(ctx, path, opts.Force)
				if err != nil {
					if s.logger != nil {
						meta := jobcontext.GetJobMetadata(ctx)
						s.logger.Error("❌ File failed",
							zap.String("job_id", meta.JobID.String()),
							zap.String("file", filepath.Base(path)),
							zap.Int("attempt", meta.RetryAttempt+1),
							zap.Error(err),
						)
					}
					return err
				}
				items[i].Result = res
				return nil
			})
			return nil
		})
	}
	_ = g.Wait()
	return items
}

// DiscoverAudio expands files and directories into a sorted list of audio
// files whose extension is in extensions. Directories are walked recursively.
func DiscoverAudio(paths []string, extensions []string) ([]string, error) {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}
	match := func(p string) bool {
		return allowed[strings.ToLower(filepath.Ext(p))]
	}

	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", root, err)
		}
		if !info.IsDir() {
			if match(root) {
				add(root)
			}
			continue
		}
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && match(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("cannot walk %s: %w", root, err)
		}
	}
	sort.Strings(out)
	return out, nil
}
