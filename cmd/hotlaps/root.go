package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zuo-Peng/acc-hotlaps/internal/config"
	"github.com/Zuo-Peng/acc-hotlaps/internal/log"
	"github.com/Zuo-Peng/acc-hotlaps/internal/merge"
	"github.com/Zuo-Peng/acc-hotlaps/internal/open"
	"github.com/Zuo-Peng/acc-hotlaps/internal/report"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	logLevel   string
	logFormat  string
}

// setup loads the config file and builds the logger. Flags win over the file.
func (g *globals) setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.logFormat != "" {
		cfg.LogFormat = g.logFormat
	}
	logger, err := log.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

type mergeFlags struct {
	inputs         []string
	output         string
	sort           string
	format         string
	includeInvalid bool
	open           bool
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	var f mergeFlags

	rootCmd := &cobra.Command{
		Use:   "hotlaps -i <results.zip> -o <hotlaps.csv>",
		Short: "Merge ACC server results into a per-driver hotlap leaderboard",
		Long: `Reads the session result files of one or more Assetto Corsa Competizione
server archives, keeps each driver's fastest valid lap per car and track, and
writes the leaderboard as CSV (or XLSX).`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, g, f)
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (default ~/.config/hotlaps/config.toml)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "Log format: console or json")

	rootCmd.Flags().StringArrayVarP(&f.inputs, "input", "i", nil, "Results archive (.zip), may be repeated")
	rootCmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file")
	rootCmd.Flags().StringVar(&f.sort, "sort", "", "Sort order: laptime or driver")
	rootCmd.Flags().StringVar(&f.format, "format", "", "Output format: csv or xlsx (default from extension)")
	rootCmd.Flags().BoolVar(&f.includeInvalid, "include-invalid", false, "Keep laps not valid for best")
	rootCmd.Flags().BoolVar(&f.open, "open", false, "Open the report when done")
	_ = rootCmd.MarkFlagRequired("input")
	_ = rootCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(importCmd(g))
	rootCmd.AddCommand(listCmd(g))
	rootCmd.AddCommand(showCmd(g))
	rootCmd.AddCommand(exportCmd(g))
	rootCmd.AddCommand(doctorCmd(g))

	return rootCmd
}

func runMerge(cmd *cobra.Command, g *globals, f mergeFlags) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	order, err := merge.ParseSortOrder(pick(f.sort, cfg.Sort))
	if err != nil {
		return err
	}
	format, err := report.ResolveFormat(pick(f.format, cfg.Format), f.output)
	if err != nil {
		return err
	}

	res, err := merge.MergeArchives(f.inputs, merge.Options{
		IncludeInvalid: f.includeInvalid || cfg.IncludeInvalid,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	entries := res.Aggregate.Entries(order)
	if err := report.WriteFile(f.output, entries, format); err != nil {
		return fmt.Errorf("write %s: %w", f.output, err)
	}

	logger.Info("wrote hotlaps",
		zap.String("output", f.output),
		zap.String("format", string(format)),
		zap.Int("archives", res.Stats.Archives),
		zap.Int("sessions", res.Stats.Sessions),
		zap.Int("skipped", res.Stats.Skipped),
		zap.Int("entries", len(entries)))

	if f.open {
		return open.Report(f.output)
	}
	return nil
}

// pick returns flag unless it is empty.
func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
