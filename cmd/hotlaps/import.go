package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/acc-hotlaps/internal/index"
	"github.com/Zuo-Peng/acc-hotlaps/internal/merge"
)

func importCmd(g *globals) *cobra.Command {
	var includeInvalid bool

	cmd := &cobra.Command{
		Use:   "import <zip|dir>...",
		Short: "Fold result archives into the hotlap history database",
		Long: `Scans the given archives and directories (recursively, for .zip files) and
keeps every driver's fastest lap per car and track in the history database.
Archives already imported are skipped by content.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			stats, err := index.ImportAll(db, args, merge.Options{
				IncludeInvalid: includeInvalid || cfg.IncludeInvalid,
				Logger:         logger,
			})
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Done. %s\n", stats)
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeInvalid, "include-invalid", false, "Keep laps not valid for best")

	return cmd
}
