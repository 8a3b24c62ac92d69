// Package accfixture builds ACC result files and archives for tests.
package accfixture

import (
	"archive/zip"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/text/encoding/unicode"
)

type Driver struct {
	PlayerID  string
	FirstName string
	LastName  string
}

type Car struct {
	CarID    int
	CarModel int
	Drivers  []Driver
}

type Lap struct {
	CarID       int
	DriverIndex int
	LapTime     int
	Invalid     bool
	Splits      []int
}

type Session struct {
	Track       string
	SessionType string
	Cars        []Car
	Laps        []Lap
}

// Member is one file inside a test archive.
type Member struct {
	Name string
	Data []byte
}

// JSON renders the session the way the ACC server writes it.
func (s Session) JSON() []byte {
	type driver struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		ShortName string `json:"shortName"`
		PlayerID  string `json:"playerId"`
	}
	type car struct {
		CarID    int      `json:"carId"`
		CarModel int      `json:"carModel"`
		CarGroup string   `json:"carGroup"`
		Drivers  []driver `json:"drivers"`
	}
	type line struct {
		Car                car `json:"car"`
		CurrentDriverIndex int `json:"currentDriverIndex"`
	}
	type lap struct {
		CarID          int   `json:"carId"`
		DriverIndex    int   `json:"driverIndex"`
		LapTime        int   `json:"laptime"`
		IsValidForBest bool  `json:"isValidForBest"`
		Splits         []int `json:"splits"`
	}

	lines := []line{}
	for _, c := range s.Cars {
		l := line{Car: car{CarID: c.CarID, CarModel: c.CarModel, CarGroup: "GT3", Drivers: []driver{}}}
		for _, d := range c.Drivers {
			short := d.LastName
			if len(short) > 3 {
				short = short[:3]
			}
			l.Car.Drivers = append(l.Car.Drivers, driver{
				FirstName: d.FirstName,
				LastName:  d.LastName,
				ShortName: short,
				PlayerID:  d.PlayerID,
			})
		}
		lines = append(lines, l)
	}

	laps := []lap{}
	for _, l := range s.Laps {
		splits := l.Splits
		if splits == nil {
			splits = SplitEvenly(l.LapTime)
		}
		laps = append(laps, lap{
			CarID:          l.CarID,
			DriverIndex:    l.DriverIndex,
			LapTime:        l.LapTime,
			IsValidForBest: !l.Invalid,
			Splits:         splits,
		})
	}

	sessionType := s.SessionType
	if sessionType == "" {
		sessionType = "FP"
	}

	doc := map[string]any{
		"sessionType":      sessionType,
		"trackName":        s.Track,
		"sessionIndex":     0,
		"raceWeekendIndex": 0,
		"metaData":         s.Track,
		"serverName":       "Test Server",
		"sessionResult": map[string]any{
			"bestlap":          0,
			"bestSplits":       []int{},
			"isWetSession":     0,
			"type":             1,
			"leaderBoardLines": lines,
		},
		"laps":      laps,
		"penalties": []any{},
	}
	b, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		panic(err)
	}
	return b
}

// UTF16 re-encodes the session as UTF-16LE without BOM, like the server does.
func (s Session) UTF16() []byte {
	return EncodeUTF16LE(s.JSON())
}

func EncodeUTF16LE(b []byte) []byte {
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes(b)
	if err != nil {
		panic(err)
	}
	return out
}

// SplitEvenly returns three sector times summing to ms.
func SplitEvenly(ms int) []int {
	third := ms / 3
	return []int{third, third, ms - 2*third}
}

// SoloSession builds a session where every driver runs their own car.
// laps maps player id to lap times in ms; drivers are given in order.
func SoloSession(track string, drivers []Driver, carModel int, laps map[string][]int) Session {
	s := Session{Track: track}
	for i, d := range drivers {
		carID := 1001 + i
		s.Cars = append(s.Cars, Car{CarID: carID, CarModel: carModel, Drivers: []Driver{d}})
		for _, lt := range laps[d.PlayerID] {
			s.Laps = append(s.Laps, Lap{CarID: carID, DriverIndex: 0, LapTime: lt})
		}
	}
	return s
}

// WriteZip writes members into dir/name and returns the archive path.
func WriteZip(tb testing.TB, dir, name string, members ...Member) string {
	tb.Helper()

	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		tb.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	z := zip.NewWriter(f)
	modified := time.Date(2024, 5, 12, 20, 15, 33, 0, time.UTC)
	for _, m := range members {
		w, err := z.CreateHeader(&zip.FileHeader{Name: m.Name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			tb.Fatalf("create member %s: %v", m.Name, err)
		}
		if _, err := w.Write(m.Data); err != nil {
			tb.Fatalf("write member %s: %v", m.Name, err)
		}
	}
	if err := z.Close(); err != nil {
		tb.Fatalf("close zip: %v", err)
	}
	return p
}
