package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/radio-transcriber/internal/app"
)

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Concatenate stored transcripts into one document",
	Long: `Build one document from every stored *_transcript.txt object, in name order,
with a header, per-file episode sections and a closing footer.

Examples:
  transcriber combine
  transcriber combine --out complete_transcript.txt`,
	Args: cobra.NoArgs,
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

		application, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer application.Close()

		text, n, err := application.Service.Combine(cmd.Context())
		if err != nil {
			return err
		}
		if n == 0 {
			PrintWarn("No stored transcripts found")
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		}
		if err := saveToFile(out, []byte(text)); err != nil {
			return err
		}
		PrintOK("✅ Combined %d transcript(s) into %s", n, out)
		return nil
	},
}

// saveToFile saves data to a file
func saveToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

func init() {
	combineCmd.Flags().String("out", "", "output file (default: stdout)")
}
