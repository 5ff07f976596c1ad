package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/radio-transcriber/internal/app"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Transcribe, segment and store audio files",
	Long: `Process audio files and directories. Directories are walked recursively for
files with a configured extension (INPUT_EXTENSIONS). Without arguments the
configured audio directory (INPUT_AUDIO_DIR) is used.

A file whose transcript already exists in the store is skipped unless --force
is given. Files are independent: one failure never stops the others, and the
command fails at the end if any file failed.

Examples:
  transcriber run
  transcriber run ./audio/2024-05-01.m4a --force
  transcriber run ./audio --workers 4 --timeout 30m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		force, _ := cmd.Flags().GetBool("force")
		workers, _ := cmd.Flags().GetInt("workers")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		if !cmd.Flags().Changed("workers") {
			workers = cfg.Input.Workers
		}

		if len(args) == 0 {
			args = []string{cfg.Input.AudioDir}
		}
		paths, err := pipeline.DiscoverAudio(args, cfg.Input.Extensions)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			PrintWarn("No audio files found in %v", args)
			return nil
		}
		PrintInfo("🎧 %d audio file(s), %d worker(s)", len(paths), workers)

		application, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer application.Close()

		started := time.Now()
		items := application.Service.ProcessBatch(cmd.Context(), paths, pipeline.BatchOptions{
			Force:      force,
			Workers:    workers,
			MaxRetries: cfg.Input.MaxRetries,
			Timeout:    timeout,
		})

		var processed, skipped, failed int
		for _, item := range items {
			name := filepath.Base(item.AudioPath)
			switch {
			case item.Err != nil:
				failed++
				PrintFail("❌ %s: %v", name, item.Err)
			case item.Result.Skipped:
				skipped++
				PrintInfo("⏭️  %s: already transcribed", name)
			default:
				processed++
				PrintOK("✅ %s → %s (%d episodes, %s)", name, item.Result.ObjectName,
					len(item.Result.Segments), formatDuration(item.Result.ProcessingTime.Seconds()))
				printVerbose("   backend=%s duration=%s", item.Result.Backend, formatDuration(item.Result.DurationSeconds))
			}
		}

		PrintInfo("Done in %s: %d processed, %d skipped, %d failed",
			formatDuration(time.Since(started).Seconds()), processed, skipped, failed)
		if failed > 0 {
			return fmt.Errorf("%d of %d file(s) failed", failed, len(items))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().Bool("force", false, "reprocess files whose transcript already exists")
	runCmd.Flags().Int("workers", 1, "files processed in parallel (default INPUT_WORKERS)")
	runCmd.Flags().Duration("timeout", 0, "per-file time limit (0 means none)")
}
