package commands

import (
	"fmt"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/radio-transcriber/internal/infrastructure/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the catalog schema",
	Long:      `Apply (up, the default) or roll back (down) the embedded SQL migrations of the run catalog.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"up", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := migrate.Up
		if len(args) == 1 {
			switch args[0] {
			case "up":
			case "down":
				dir = migrate.Down
			default:
				return fmt.Errorf("unknown direction %q, want up or down", args[0])
			}
		}
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		db, err := database.NewPostgresDB(cfg, log)
		if err != nil {
			return err
		}
		defer database.CloseDB(db)

		n, err := database.Migrate(db, dir, limit, log)
		if err != nil {
			return err
		}
		PrintOK("✅ Successfully applied %d migration(s)", n)
		return nil
	},
}

func init() {
	migrateCmd.Flags().Int("limit", 0, "maximum number of migrations to apply (0 means all)")
}
