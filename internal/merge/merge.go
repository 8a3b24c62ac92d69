package merge

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Zuo-Peng/acc-hotlaps/internal/archive"
	"github.com/Zuo-Peng/acc-hotlaps/internal/parse"
)

type Options struct {
	IncludeInvalid bool
	Logger         *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

type Stats struct {
	Archives       int
	Members        int
	Sessions       int
	Skipped        int
	Hotlaps        int
	IncompleteLaps int
	Entries        int
}

func (s Stats) String() string {
	return fmt.Sprintf("archives=%d members=%d sessions=%d skipped=%d hotlaps=%d incomplete_laps=%d entries=%d",
		s.Archives, s.Members, s.Sessions, s.Skipped, s.Hotlaps, s.IncompleteLaps, s.Entries)
}

func (s *Stats) add(o Stats) {
	s.Archives += o.Archives
	s.Members += o.Members
	s.Sessions += o.Sessions
	s.Skipped += o.Skipped
	s.Hotlaps += o.Hotlaps
	s.IncompleteLaps += o.IncompleteLaps
}

type Result struct {
	Aggregate *Aggregator
	Stats     Stats
}

// ReadArchive parses every session in the archive at path and passes each
// session's hotlaps to visit. Members that cannot be parsed are skipped with
// a warning; an archive that cannot be opened is returned as an error.
func ReadArchive(path string, opts Options, visit func(parse.Hotlap)) (Stats, error) {
	log := opts.logger().With(zap.String("archive", path))
	stats := Stats{Archives: 1}

	a, err := archive.Open(path)
	if err != nil {
		return stats, err
	}
	defer a.Close()

	members := a.Members()
	stats.Members = len(members)
	if len(members) == 0 {
		log.Warn("archive contains no session files")
	}

	for _, m := range members {
		session, err := readMember(a, m)
		if err != nil {
			stats.Skipped++
			log.Warn("skipping session file", zap.String("member", m.Name), zap.Error(err))
			continue
		}
		if session.Timestamp.IsZero() {
			session.Timestamp = m.Modified
		}
		stats.Sessions++
		stats.IncompleteLaps += session.IncompleteLaps
		if session.IncompleteLaps > 0 {
			log.Warn("session has laps with missing fields",
				zap.String("member", m.Name), zap.Int("laps", session.IncompleteLaps))
		}

		hotlaps := parse.BestLaps(session, parse.BestLapOptions{IncludeInvalid: opts.IncludeInvalid})
		log.Debug("parsed session",
			zap.String("member", m.Name),
			zap.String("track", session.Track),
			zap.String("type", session.SessionType),
			zap.Int("laps", len(session.Laps)),
			zap.Int("hotlaps", len(hotlaps)))

		for _, h := range hotlaps {
			stats.Hotlaps++
			visit(h)
		}
	}

	return stats, nil
}

func readMember(a *archive.Archive, m archive.Member) (*parse.Session, error) {
	rc, err := a.Open(m.Name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return parse.ParseSession(m.Name, rc)
}

// MergeArchives folds the sessions of all archives into one aggregate.
func MergeArchives(paths []string, opts Options) (*Result, error) {
	log := opts.logger()
	res := &Result{Aggregate: New()}

	for _, p := range paths {
		st, err := ReadArchive(p, opts, func(h parse.Hotlap) {
			if res.Aggregate.Add(h) {
				log.Debug("new best",
					zap.String("player", h.PlayerID),
					zap.String("track", h.Track),
					zap.Int("car", h.CarModel),
					zap.Int("laptime", h.LapTime))
			}
		})
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		res.Stats.add(st)
	}

	res.Stats.Entries = res.Aggregate.Len()
	return res, nil
}

func MergeArchive(path string, opts Options) (*Result, error) {
	return MergeArchives([]string{path}, opts)
}
