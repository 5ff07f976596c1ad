package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/radio-transcriber/internal/adapter/dto/transcript"
	"github.com/johnquangdev/radio-transcriber/internal/adapter/presenter"
	"github.com/johnquangdev/radio-transcriber/internal/domain/entities"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/formatter"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/pipeline"
	"github.com/johnquangdev/radio-transcriber/internal/usecase/transcription"
)

var segmentCmd = &cobra.Command{
	Use:   "segment <utterances.json>",
	Short: "Segment an utterance file without touching audio",
	Long: `Run the segmentation and attribution engine over an utterance file and print
the rendered transcript. The file uses the sidecar format: either a JSON array
of {text, start, end} objects or an object with "utterances" and optional
"tracks" and "duration".

Examples:
  transcriber segment show.utterances.json
  transcriber segment show.utterances.json --duration 3600 --tracks tracks.yaml
  transcriber segment show.utterances.json --json > segments.json`,
	Args: cobra.ExactArgs(1),
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

		src, err := transcription.ReadSidecarFile(args[0])
		if err != nil {
			return err
		}

		duration := src.Duration
		if d, _ := cmd.Flags().GetFloat64("duration"); d > 0 {
			duration = d
		}
		tracks := src.Tracks
		if path, _ := cmd.Flags().GetString("tracks"); path != "" {
			tracks, err = loadTracks(path)
			if err != nil {
				return err
			}
		}

		engine, err := pipeline.NewEngine(cfg, log)
		if err != nil {
			return err
		}
		segs := engine.Run(src.Utterances, tracks, duration)
		printVerbose("%d utterance(s), %d track interval(s) → %d episode(s)", len(src.Utterances), len(tracks), len(segs))

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(presenter.ToSegmentResultResponse(segs))
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderEpisodes(segs))
		return err
	},
}

// loadTracks reads speaker tracks from a YAML or JSON file
func loadTracks(path string) ([]entities.SpeakerTrack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	var in []transcript.TrackInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse tracks: %w", err)
	}
	return presenter.ToTracks(in), nil
}

func init() {
	segmentCmd.Flags().Float64("duration", 0, "audio duration in seconds (overrides the file)")
	segmentCmd.Flags().String("tracks", "", "speaker tracks file (YAML or JSON list of {track_id, start_time, end_time})")
	segmentCmd.Flags().Bool("json", false, "print segments as JSON")
}
