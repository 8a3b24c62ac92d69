package parse

import (
	"sort"
)

type BestLapOptions struct {
	// IncludeInvalid keeps laps the server did not flag as valid for best.
	IncludeInvalid bool
}

type driverSlot struct {
	carID       int
	driverIndex int
}

type seat struct {
	driver   Driver
	carModel int
}

type hotlapKey struct {
	playerID string
	carModel int
}

// BestLaps returns the fastest lap per (player, car model) in the session.
// Laps that cannot be matched to a leaderboard driver are ignored.
func BestLaps(s *Session, opts BestLapOptions) []Hotlap {
	slots := make(map[driverSlot]seat)
	for _, car := range s.Cars {
		for idx, d := range car.Drivers {
			if d.PlayerID == "" {
				continue
			}
			slots[driverSlot{car.CarID, idx}] = seat{d, car.CarModel}
		}
	}

	best := make(map[hotlapKey]Hotlap)
	for _, lap := range s.Laps {
		if !lap.IsValidForBest && !opts.IncludeInvalid {
			continue
		}
		if lap.LapTime <= 0 {
			continue
		}
		slot, ok := slots[driverSlot{lap.CarID, lap.DriverIndex}]
		if !ok {
			continue
		}

		key := hotlapKey{slot.driver.PlayerID, slot.carModel}
		if cur, ok := best[key]; ok && cur.LapTime <= lap.LapTime {
			continue
		}
		best[key] = Hotlap{
			PlayerID:    slot.driver.PlayerID,
			FirstName:   slot.driver.FirstName,
			LastName:    slot.driver.LastName,
			CarModel:    slot.carModel,
			Track:       s.Track,
			LapTime:     lap.LapTime,
			Splits:      append([]int(nil), lap.Splits...),
			SessionFile: s.File,
			SessionType: s.SessionType,
			Timestamp:   s.Timestamp,
		}
	}

	out := make([]Hotlap, 0, len(best))
	for _, h := range best {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LapTime != out[j].LapTime {
			return out[i].LapTime < out[j].LapTime
		}
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].CarModel < out[j].CarModel
	})
	return out
}
