package index

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Zuo-Peng/acc-hotlaps/internal/archive"
	"github.com/Zuo-Peng/acc-hotlaps/internal/merge"
	"github.com/Zuo-Peng/acc-hotlaps/internal/parse"
)

type Stats struct {
	Scanned  int
	Imported int
	Skipped  int
	Sessions int
	Improved int
	Errors   int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d imported=%d skipped=%d sessions=%d improved=%d errors=%d",
		s.Scanned, s.Imported, s.Skipped, s.Sessions, s.Improved, s.Errors)
}

// ImportAll folds every archive found under paths into the database.
// Archives already imported (same content) are skipped. A broken archive is
// logged and counted; it does not stop the others.
func ImportAll(db *DB, paths []string, opts merge.Options) (Stats, error) {
	var stats Stats
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	files, err := archive.ScanPaths(paths...)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	for _, p := range files {
		fp, err := archive.Fingerprint(p)
		if err != nil {
			stats.Errors++
			log.Warn("fingerprint archive", zap.String("archive", p), zap.Error(err))
			continue
		}

		fp = importKey(fp, opts)

		seen, err := db.HasArchive(fp)
		if err != nil {
			return stats, err
		}
		if seen {
			stats.Skipped++
			log.Debug("archive already imported", zap.String("archive", p))
			continue
		}

		improved, st, err := importArchive(db, p, fp, opts)
		if err != nil {
			stats.Errors++
			log.Warn("import archive", zap.String("archive", p), zap.Error(err))
			continue
		}
		stats.Imported++
		stats.Sessions += st.Sessions
		stats.Improved += improved
	}

	return stats, nil
}

// importKey separates imports of the same archive made with different lap
// rules, so switching to --include-invalid reads the archive again.
func importKey(fingerprint string, opts merge.Options) string {
	if opts.IncludeInvalid {
		return fingerprint + "+invalid"
	}
	return fingerprint
}

func importArchive(db *DB, path, fingerprint string, opts merge.Options) (int, merge.Stats, error) {
	var hotlaps []parse.Hotlap
	st, err := merge.ReadArchive(path, opts, func(h parse.Hotlap) {
		hotlaps = append(hotlaps, h)
	})
	if err != nil {
		return 0, st, err
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return 0, st, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertHotlap)
	if err != nil {
		return 0, st, err
	}
	defer stmt.Close()

	improved := 0
	for _, h := range hotlaps {
		res, err := stmt.Exec(
			h.PlayerID,
			h.CarModel,
			h.Track,
			h.FirstName,
			h.LastName,
			h.LapTime,
			splitArg(h.Splits, 0),
			splitArg(h.Splits, 1),
			splitArg(h.Splits, 2),
			h.SessionFile,
			h.SessionType,
			h.Timestamp.UTC().Format(timeLayout),
		)
		if err != nil {
			return 0, st, err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			improved++
		}
	}

	_, err = tx.Exec(
		`INSERT INTO archives (fingerprint, path, imported_at, sessions, skipped) VALUES (?, ?, ?, ?, ?)`,
		fingerprint,
		path,
		time.Now().UTC().Format(timeLayout),
		st.Sessions,
		st.Skipped,
	)
	if err != nil {
		return 0, st, err
	}

	return improved, st, tx.Commit()
}
