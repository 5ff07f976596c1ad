package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/radio-transcriber/pkg/config"
	"github.com/johnquangdev/radio-transcriber/pkg/logger"
)

var (
	// Global flags
	phrasesFile string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "transcriber",
	Short: "Spanish radio transcript segmentation and speaker attribution",
	Long: `transcriber splits long Spanish radio recordings with an English narrator into
episodes and labels who speaks each line.

Audio is transcribed by the configured backends (AssemblyAI, OpenAI), or read from
an utterance sidecar file next to the audio. Rendered transcripts are stored as
<stem>_transcript.txt in the configured store (local, MinIO or S3).

Examples:
  # Process every audio file under ./audio with four workers
  transcriber run ./audio --workers 4

  # Re-segment a transcript you already have
  transcriber segment show.utterances.json --duration 3600

  # Build the combined document
  transcriber combine --out complete_transcript.txt
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// An interrupt cancels the running command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&phrasesFile, "phrases", "", "phrasebook YAML file (overrides SEGMENT_PHRASES_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(segmentCmd)
	rootCmd.AddCommand(combineCmd)
	rootCmd.AddCommand(migrateCmd)
}

// loadConfig reads the environment configuration and applies global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if phrasesFile != "" {
		book, err := config.LoadPhrasebook(phrasesFile)
		if err != nil {
			return nil, err
		}
		cfg.Phrases = book
		cfg.Segmentation.PhrasesFile = phrasesFile
	}
	return cfg, nil
}

// newLogger builds the command logger; --verbose forces debug level
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.App.LogLevel
	if verbose {
		level = "debug"
	}
	l, err := logger.New(cfg.App.Environment, level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}
