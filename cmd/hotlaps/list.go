package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/acc-hotlaps/internal/index"
	"github.com/Zuo-Peng/acc-hotlaps/internal/laptime"
	"github.com/Zuo-Peng/acc-hotlaps/internal/merge"
	"github.com/Zuo-Peng/acc-hotlaps/internal/search"
	"github.com/Zuo-Peng/acc-hotlaps/internal/tui"
)

func listCmd(g *globals) *cobra.Command {
	var track, car, sortName string
	var limit int

	cmd := &cobra.Command{
		Use:   "list [query]",
		Short: "Browse the hotlap history",
		Long: `Opens a TUI over the history database. Type to filter by driver, car or
track; Enter copies the selected lap to the clipboard.

When stdout is not a terminal the matching rows are printed as TSV:
  position, driver, car, track, lap time, gap, player id`,
		Args: cobra.MaximumNArgs(1),
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

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			query := strings.Join(args, " ")
			opts := search.Options{
				Track: track,
				Car:   car,
				Sort:  order,
				Limit: limit,
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if _, ok := terminal(cmd); ok {
				return tui.Run(db, query, opts)
			}

			opts.Query = query
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No hotlaps found.")
				return nil
			}
			writeTSV(cmd, results)
			return nil
		},
	}

	cmd.Flags().StringVar(&track, "track", "", "Only this track")
	cmd.Flags().StringVar(&car, "car", "", "Only cars whose name or class matches")
	cmd.Flags().StringVar(&sortName, "sort", "", "Sort order: laptime or driver")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = no limit)")

	return cmd
}

// terminal reports whether the command writes to an interactive terminal.
func terminal(cmd *cobra.Command) (int, bool) {
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

func writeTSV(cmd *cobra.Command, results []search.Result) {
	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Position,
			tsvField(r.Name()),
			r.CarName,
			tsvField(r.Track),
			laptime.Format(r.LapTime),
			laptime.FormatGap(r.Gap),
			r.PlayerID,
		)
	}
}

func tsvField(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ").Replace(s)
}
