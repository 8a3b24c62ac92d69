package search

import (
	"strings"

	"github.com/samber/lo"

	"github.com/Zuo-Peng/acc-hotlaps/internal/cars"
	"github.com/Zuo-Peng/acc-hotlaps/internal/index"
	"github.com/Zuo-Peng/acc-hotlaps/internal/laptime"
	"github.com/Zuo-Peng/acc-hotlaps/internal/merge"
)

type Result struct {
	merge.Entry
	CarName string
}

type Options struct {
	Query string          // matched against driver, car, track and lap; "<1:30" bounds the lap
	Track string          // "" = all tracks
	Car   string          // "" = all cars, matched against car name or class
	Sort  merge.SortOrder // "" = by lap time
	Limit int             // 0 = no limit
}

// Search returns leaderboard rows from the history database. Positions and
// gaps are computed on the full track leaderboard before filtering.
func Search(db *index.DB, opts Options) ([]Result, error) {
	agg, err := db.Leaderboard()
	if err != nil {
		return nil, err
	}
	return Filter(agg.Entries(opts.Sort), opts), nil
}

var lapOps = []struct {
	prefix string
	cmp    func(lap, bound int) bool
}{
	{"<=", func(lap, bound int) bool { return lap <= bound }},
	{">=", func(lap, bound int) bool { return lap >= bound }},
	{"<", func(lap, bound int) bool { return lap < bound }},
	{">", func(lap, bound int) bool { return lap > bound }},
}

// lapBound turns a term like "<1:30" or ">=92.5" into a lap time predicate.
// Terms that do not parse are matched as plain text.
func lapBound(term string) (func(int) bool, bool) {
	for _, op := range lapOps {
		rest, ok := strings.CutPrefix(term, op.prefix)
		if !ok {
			continue
		}
		bound, err := laptime.Parse(rest)
		if err != nil {
			return nil, false
		}
		cmp := op.cmp
		return func(lap int) bool { return cmp(lap, bound) }, true
	}
	return nil, false
}

// Filter applies opts to already finalized entries.
func Filter(entries []merge.Entry, opts Options) []Result {
	terms := strings.Fields(strings.ToLower(opts.Query))
	track := strings.ToLower(strings.TrimSpace(opts.Track))
	car := strings.ToLower(strings.TrimSpace(opts.Car))

	results := lo.FilterMap(entries, func(e merge.Entry, _ int) (Result, bool) {
		r := Result{Entry: e, CarName: cars.Name(e.CarModel)}
		if track != "" && strings.ToLower(e.Track) != track {
			return r, false
		}
		if car != "" && !strings.Contains(strings.ToLower(r.CarName), car) &&
			strings.ToLower(cars.Class(e.CarModel)) != car {
			return r, false
		}
		haystack := strings.ToLower(strings.Join([]string{e.Name(), r.CarName, e.Track, e.PlayerID, laptime.Format(e.LapTime)}, " "))
		for _, t := range terms {
			if within, ok := lapBound(t); ok {
				if !within(e.LapTime) {
					return r, false
				}
				continue
			}
			if !strings.Contains(haystack, t) {
				return r, false
			}
		}
		return r, true
	})

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results
}
