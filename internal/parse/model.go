package parse

import "time"

// Session is one ACC result file.
type Session struct {
	File        string // member name inside the archive
	ServerName  string
	SessionType string // "FP", "Q" or "R"
	Track       string
	Timestamp   time.Time
	Cars        []Car
	Laps        []Lap

	IncompleteLaps int // laps dropped for missing carId, driverIndex or laptime
}

type Car struct {
	CarID    int
	CarModel int
	Drivers  []Driver
}

type Driver struct {
	PlayerID  string
	FirstName string
	LastName  string
	ShortName string
}

// FullName joins first and last name the way the result sheets show it.
func (d Driver) FullName() string {
	switch {
	case d.FirstName == "":
		return d.LastName
	case d.LastName == "":
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

type Lap struct {
	CarID          int
	DriverIndex    int
	LapTime        int // ms
	IsValidForBest bool
	Splits         []int // ms
}

// Hotlap is the fastest lap of one driver in one car within a session.
type Hotlap struct {
	PlayerID    string
	FirstName   string
	LastName    string
	CarModel    int
	Track       string
	LapTime     int   // ms
	Splits      []int // ms
	SessionFile string
	SessionType string
	Timestamp   time.Time
}

// Name returns the driver's display name.
func (h Hotlap) Name() string {
	return Driver{FirstName: h.FirstName, LastName: h.LastName}.FullName()
}
