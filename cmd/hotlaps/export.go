package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zuo-Peng/acc-hotlaps/internal/index"
	"github.com/Zuo-Peng/acc-hotlaps/internal/merge"
	"github.com/Zuo-Peng/acc-hotlaps/internal/report"
)

func exportCmd(g *globals) *cobra.Command {
	var output, formatName, sortName string

	cmd := &cobra.Command{
		Use:   "export -o <file>",
		Short: "Write the history leaderboard to CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			order, err := merge.ParseSortOrder(pick(sortName, cfg.Sort))
			if err != nil {
				return err
			}
			format, err := report.ResolveFormat(pick(formatName, cfg.Format), output)
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			agg, err := db.Leaderboard()
			if err != nil {
				return fmt.Errorf("load leaderboard: %w", err)
			}

			entries := agg.Entries(order)
			if err := report.WriteFile(output, entries, format); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			logger.Info("exported hotlaps", zap.String("output", output), zap.Int("entries", len(entries)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file")
	cmd.Flags().StringVar(&formatName, "format", "", "Output format: csv or xlsx (default from extension)")
	cmd.Flags().StringVar(&sortName, "sort", "", "Sort order: laptime or driver")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
