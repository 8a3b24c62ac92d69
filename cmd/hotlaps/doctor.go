package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/acc-hotlaps/internal/cars"
	"github.com/Zuo-Peng/acc-hotlaps/internal/config"
	"github.com/Zuo-Peng/acc-hotlaps/internal/index"
)

func doctorCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config and database, show stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, logger, err := g.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			fmt.Fprintln(out, "=== Config ===")
			path := g.configPath
			if path == "" {
				path, err = config.DefaultPath()
			}
			if err != nil {
				fmt.Fprintf(out, "  File: none (%v)\n", err)
			} else {
				checkFile(out, "File", path)
			}
			fmt.Fprintf(out, "  Sort: %s\n", cfg.Sort)
			fmt.Fprintf(out, "  Include invalid: %t\n", cfg.IncludeInvalid)

			fmt.Fprintln(out, "\n=== Database ===")
			fmt.Fprintf(out, "  Path: %s\n", cfg.DBPath)
			info, err := os.Stat(cfg.DBPath)
			if os.IsNotExist(err) {
				fmt.Fprintln(out, "  Status: NOT FOUND (run 'hotlaps import' first)")
				return nil
			}
			if err == nil {
				fmt.Fprintf(out, "  Size: %s\n", humanize.Bytes(uint64(info.Size())))
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			archiveCount, err := db.ArchiveCount()
			if err != nil {
				return fmt.Errorf("count archives: %w", err)
			}
			archives, err := db.Archives()
			if err != nil {
				return fmt.Errorf("list archives: %w", err)
			}
			hotlapCount, err := db.HotlapCount()
			if err != nil {
				return fmt.Errorf("count hotlaps: %w", err)
			}
			tracks, err := db.Tracks()
			if err != nil {
				return fmt.Errorf("list tracks: %w", err)
			}

			fmt.Fprintf(out, "  Archives: %d\n", archiveCount)
			fmt.Fprintf(out, "  Hotlaps:  %d\n", hotlapCount)
			fmt.Fprintf(out, "  Tracks:   %d\n", len(tracks))
			if n := len(archives); n > 0 {
				fmt.Fprintf(out, "  Last import: %s (%s)\n", archives[n-1].Path, humanize.Time(archives[n-1].ImportedAt))
			}
			skipped := 0
			for _, a := range archives {
				skipped += a.Skipped
			}
			if skipped > 0 {
				fmt.Fprintf(out, "  Skipped session files: %d\n", skipped)
			}

			hotlaps, err := db.Hotlaps()
			if err != nil {
				return fmt.Errorf("load hotlaps: %w", err)
			}
			unknown := map[int]bool{}
			for _, h := range hotlaps {
				if !cars.Known(h.CarModel) {
					unknown[h.CarModel] = true
				}
			}
			if len(unknown) > 0 {
				fmt.Fprintf(out, "  Unknown car models: %d (names fall back to the id)\n", len(unknown))
			}

			return nil
		},
	}
}

func checkFile(out io.Writer, name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Fprintf(out, "  %s: %s (NOT FOUND, using defaults)\n", name, path)
	} else if info.IsDir() {
		fmt.Fprintf(out, "  %s: %s (IS A DIRECTORY)\n", name, path)
	} else {
		fmt.Fprintf(out, "  %s: %s (OK)\n", name, path)
	}
}
