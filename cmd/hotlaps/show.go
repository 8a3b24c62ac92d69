package main

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/acc-hotlaps/internal/merge"
	"github.com/Zuo-Peng/acc-hotlaps/internal/render"
	"github.com/Zuo-Peng/acc-hotlaps/internal/search"
)

func showCmd(g *globals) *cobra.Command {
	var sortName, query, track string
	var includeInvalid, noColor bool

	cmd := &cobra.Command{
		Use:   "show <zip>...",
		Short: "Print the merged leaderboard of result archives",
		Args:  cobra.MinimumNArgs(1),
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

			res, err := merge.MergeArchives(args, merge.Options{
				IncludeInvalid: includeInvalid || cfg.IncludeInvalid,
				Logger:         logger,
			})
			if err != nil {
				return err
			}

			results := search.Filter(res.Aggregate.Entries(order), search.Options{Query: query, Track: track})
			entries := lo.Map(results, func(r search.Result, _ int) merge.Entry { return r.Entry })

			opts := render.Options{Query: query}
			if fd, ok := terminal(cmd); ok {
				opts.Color = !noColor
				if w, _, err := term.GetSize(fd); err == nil {
					opts.Width = w
				}
			}

			fmt.Fprint(cmd.OutOrStdout(), render.Leaderboard(entries, opts))
			return nil
		},
	}

	cmd.Flags().StringVar(&sortName, "sort", "", "Sort order: laptime or driver")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only rows matching all terms (highlighted)")
	cmd.Flags().StringVar(&track, "track", "", "Only this track")
	cmd.Flags().BoolVar(&includeInvalid, "include-invalid", false, "Keep laps not valid for best")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colors")

	return cmd
}
