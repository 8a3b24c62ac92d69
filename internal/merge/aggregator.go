package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/Zuo-Peng/acc-hotlaps/internal/parse"
)

type SortOrder string

const (
	ByLapTime SortOrder = "laptime"
	ByDriver  SortOrder = "driver"
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", ByLapTime:
		return ByLapTime, nil
	case ByDriver, "name":
		return ByDriver, nil
	}
	return "", fmt.Errorf("unknown sort order %q (want laptime or driver)", s)
}

// Key identifies one aggregate row: a driver in a car on a track.
type Key struct {
	PlayerID string
	CarModel int
	Track    string
}

func KeyOf(h parse.Hotlap) Key {
	return Key{PlayerID: h.PlayerID, CarModel: h.CarModel, Track: h.Track}
}

// Entry is a finalized aggregate row.
type Entry struct {
	parse.Hotlap
	Position int // 1-based rank on the track
	Gap      int // ms behind the fastest lap on the same track
}

// Aggregator keeps the fastest lap seen per Key.
type Aggregator struct {
	best map[Key]parse.Hotlap
}

func New() *Aggregator {
	return &Aggregator{best: make(map[Key]parse.Hotlap)}
}

// Add folds a hotlap in. It reports whether the stored entry changed:
// absent keys are inserted, strictly faster laps replace, anything else is
// ignored.
func (a *Aggregator) Add(h parse.Hotlap) bool {
	k := KeyOf(h)
	if cur, ok := a.best[k]; ok && cur.LapTime <= h.LapTime {
		return false
	}
	h.Splits = append([]int(nil), h.Splits...)
	a.best[k] = h
	return true
}

func (a *Aggregator) Len() int {
	return len(a.best)
}

// Get returns the current best for k.
func (a *Aggregator) Get(k Key) (parse.Hotlap, bool) {
	h, ok := a.best[k]
	return h, ok
}

// Entries returns the aggregate as rows in the requested order. Rows are
// grouped by track; ties are broken by name and player id so the output is
// stable for identical input.
func (a *Aggregator) Entries(order SortOrder) []Entry {
	entries := lo.MapToSlice(a.best, func(_ Key, h parse.Hotlap) Entry {
		return Entry{Hotlap: h}
	})

	sort.Slice(entries, func(i, j int) bool {
		return lessByLapTime(entries[i], entries[j])
	})

	trackBest := make(map[string]int)
	trackPos := make(map[string]int)
	for i := range entries {
		e := &entries[i]
		if _, ok := trackBest[e.Track]; !ok {
			trackBest[e.Track] = e.LapTime
		}
		trackPos[e.Track]++
		e.Position = trackPos[e.Track]
		e.Gap = e.LapTime - trackBest[e.Track]
	}

	if order == ByDriver {
		sort.Slice(entries, func(i, j int) bool {
			return lessByDriver(entries[i], entries[j])
		})
	}
	return entries
}

func lessByLapTime(a, b Entry) bool {
	if a.Track != b.Track {
		return a.Track < b.Track
	}
	if a.LapTime != b.LapTime {
		return a.LapTime < b.LapTime
	}
	return lessIdentity(a, b)
}

func lessByDriver(a, b Entry) bool {
	if a.Track != b.Track {
		return a.Track < b.Track
	}
	an, bn := strings.ToLower(a.Name()), strings.ToLower(b.Name())
	if an != bn {
		return an < bn
	}
	if a.LapTime != b.LapTime {
		return a.LapTime < b.LapTime
	}
	return lessIdentity(a, b)
}

func lessIdentity(a, b Entry) bool {
	an, bn := strings.ToLower(a.Name()), strings.ToLower(b.Name())
	if an != bn {
		return an < bn
	}
	if a.PlayerID != b.PlayerID {
		return a.PlayerID < b.PlayerID
	}
	return a.CarModel < b.CarModel
}
