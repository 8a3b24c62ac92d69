package index

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Zuo-Peng/acc-hotlaps/internal/merge"
	"github.com/Zuo-Peng/acc-hotlaps/internal/parse"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS archives (
    fingerprint TEXT PRIMARY KEY,
    path        TEXT NOT NULL,
    imported_at TEXT NOT NULL DEFAULT '',
    sessions    INTEGER NOT NULL DEFAULT 0,
    skipped     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS hotlaps (
    player_id    TEXT NOT NULL,
    car_model    INTEGER NOT NULL,
    track        TEXT NOT NULL,
    first_name   TEXT NOT NULL DEFAULT '',
    last_name    TEXT NOT NULL DEFAULT '',
    laptime      INTEGER NOT NULL,
    s1           INTEGER,
    s2           INTEGER,
    s3           INTEGER,
    session_file TEXT NOT NULL DEFAULT '',
    session_type TEXT NOT NULL DEFAULT '',
    recorded_at  TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (player_id, car_model, track)
);

CREATE INDEX IF NOT EXISTS hotlaps_track ON hotlaps(track, laptime);

CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);
`

const timeLayout = "2006-01-02T15:04:05Z"

type DB struct {
	db *sql.DB
}

func OpenDB(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	d := &DB{db: db}
	if err := d.migrateSchemaVersion(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

// schemaVersion should be bumped whenever hotlap extraction changes
// to force a full re-import.
const schemaVersion = "1"

func (d *DB) migrateSchemaVersion() error {
	var ver string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	if err == nil && ver == schemaVersion {
		return nil
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// stored laps may come from older extraction rules and would never be
	// replaced by a re-import of an equal or slower lap
	for _, stmt := range []string{
		"DELETE FROM hotlaps",
		"DELETE FROM archives",
		"INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', '" + schemaVersion + "')",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Raw() *sql.DB {
	return d.db
}

type ArchiveRow struct {
	Fingerprint string
	Path        string
	ImportedAt  time.Time
	Sessions    int
	Skipped     int
}

func (d *DB) HasArchive(fingerprint string) (bool, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM archives WHERE fingerprint = ?", fingerprint).Scan(&n)
	return n > 0, err
}

func (d *DB) Archives() ([]ArchiveRow, error) {
	rows, err := d.db.Query("SELECT fingerprint, path, imported_at, sessions, skipped FROM archives ORDER BY imported_at, path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ArchiveRow
	for rows.Next() {
		var a ArchiveRow
		var ts string
		if err := rows.Scan(&a.Fingerprint, &a.Path, &ts, &a.Sessions, &a.Skipped); err != nil {
			return nil, err
		}
		a.ImportedAt, _ = time.Parse(timeLayout, ts)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (d *DB) ArchiveCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM archives").Scan(&n)
	return n, err
}

func (d *DB) HotlapCount() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM hotlaps").Scan(&n)
	return n, err
}

// Tracks returns the distinct tracks with stored laps.
func (d *DB) Tracks() ([]string, error) {
	rows, err := d.db.Query("SELECT DISTINCT track FROM hotlaps ORDER BY track")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// upsertHotlap stores h unless the stored lap for the same key is at least
// as fast, mirroring Aggregator.Add.
const upsertHotlap = `
INSERT INTO hotlaps (player_id, car_model, track, first_name, last_name, laptime, s1, s2, s3, session_file, session_type, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (player_id, car_model, track) DO UPDATE SET
    first_name   = excluded.first_name,
    last_name    = excluded.last_name,
    laptime      = excluded.laptime,
    s1           = excluded.s1,
    s2           = excluded.s2,
    s3           = excluded.s3,
    session_file = excluded.session_file,
    session_type = excluded.session_type,
    recorded_at  = excluded.recorded_at
WHERE excluded.laptime < hotlaps.laptime`

func splitArg(splits []int, i int) interface{} {
	if i < len(splits) {
		return splits[i]
	}
	return nil
}

// Hotlaps returns every stored hotlap.
func (d *DB) Hotlaps() ([]parse.Hotlap, error) {
	rows, err := d.db.Query(`
		SELECT player_id, car_model, track, first_name, last_name, laptime, s1, s2, s3, session_file, session_type, recorded_at
		FROM hotlaps`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []parse.Hotlap
	for rows.Next() {
		h, err := scanHotlap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHotlap(rows rowScanner) (parse.Hotlap, error) {
	var h parse.Hotlap
	var s1, s2, s3 sql.NullInt64
	var ts string
	if err := rows.Scan(&h.PlayerID, &h.CarModel, &h.Track, &h.FirstName, &h.LastName, &h.LapTime,
		&s1, &s2, &s3, &h.SessionFile, &h.SessionType, &ts); err != nil {
		return h, err
	}
	for _, s := range []sql.NullInt64{s1, s2, s3} {
		if !s.Valid {
			break
		}
		h.Splits = append(h.Splits, int(s.Int64))
	}
	h.Timestamp, _ = time.Parse(timeLayout, ts)
	return h, nil
}

// Leaderboard loads the stored hotlaps into an aggregate.
func (d *DB) Leaderboard() (*merge.Aggregator, error) {
	hotlaps, err := d.Hotlaps()
	if err != nil {
		return nil, err
	}
	agg := merge.New()
	for _, h := range hotlaps {
		agg.Add(h)
	}
	return agg, nil
}
