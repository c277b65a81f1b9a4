package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"t2s/internal/config"
	"t2s/internal/db"
)

func newSeedCmd() *cobra.Command {
	var (
		dbPath string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create and populate the demo student database",
		Long: "Creates a SQLite database with the STUDENT demo table and six rows, " +
			"ready for the ask command. Refuses to touch an existing file unless " +
			"--force is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := dbPath
			if path == "" {
				cfg, err := config.LoadFromEnv()
				if err != nil {
					return fmt.Errorf("config: %w", err)
				}
				path = cfg.DBPath
			}

			if err := db.SeedStudentDB(path, force); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]string{"status": "ok", "path": path})
			}
			fmt.Fprintf(os.Stdout, "student database ready at %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "Database file to seed (defaults to T2S_DB_PATH)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace the database file if it already exists")
	return cmd
}
