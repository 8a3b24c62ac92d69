package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/dimchansky/utfbom"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

const maxFileSize = 64 * 1024 * 1024 // 64MB

var (
	ErrMalformed    = errors.New("malformed session file")
	ErrMissingField = errors.New("missing required field")
)

// Top-level object of an ACC results file
type accResult struct {
	SessionType   string            `json:"sessionType"`
	TrackName     *string           `json:"trackName"`
	ServerName    string            `json:"serverName"`
	SessionResult *accSessionResult `json:"sessionResult"`
	Laps          []accLap          `json:"laps"`
}

type accSessionResult struct {
	BestLap          int                  `json:"bestlap"`
	LeaderBoardLines []accLeaderBoardLine `json:"leaderBoardLines"`
}

type accLeaderBoardLine struct {
	Car *accCar `json:"car"`
}

type accCar struct {
	CarID    int         `json:"carId"`
	CarModel int         `json:"carModel"`
	Drivers  []accDriver `json:"drivers"`
}

type accDriver struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ShortName string `json:"shortName"`
	PlayerID  string `json:"playerId"`
}

// laps carry pointers so absent keys can be told apart from zero values
type accLap struct {
	CarID          *int  `json:"carId"`
	DriverIndex    *int  `json:"driverIndex"`
	LapTime        *int  `json:"laptime"`
	IsValidForBest bool  `json:"isValidForBest"`
	Splits         []int `json:"splits"`
}

// ParseSession decodes one result file. name is the member path inside the
// archive and is used for the session timestamp.
func ParseSession(name string, r io.Reader) (*Session, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > maxFileSize {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrMalformed, maxFileSize)
	}

	data, err := decodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var res accResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch {
	case res.SessionResult == nil:
		return nil, fmt.Errorf("%w: sessionResult", ErrMissingField)
	case res.SessionResult.LeaderBoardLines == nil:
		return nil, fmt.Errorf("%w: sessionResult.leaderBoardLines", ErrMissingField)
	case res.Laps == nil:
		return nil, fmt.Errorf("%w: laps", ErrMissingField)
	case res.TrackName == nil:
		return nil, fmt.Errorf("%w: trackName", ErrMissingField)
	}

	session := &Session{
		File:        name,
		ServerName:  res.ServerName,
		SessionType: res.SessionType,
		Track:       *res.TrackName,
		Timestamp:   parseTimestamp(name),
	}

	for _, line := range res.SessionResult.LeaderBoardLines {
		if line.Car == nil {
			continue
		}
		car := Car{
			CarID:    line.Car.CarID,
			CarModel: line.Car.CarModel,
		}
		for _, d := range line.Car.Drivers {
			car.Drivers = append(car.Drivers, Driver{
				PlayerID:  d.PlayerID,
				FirstName: strings.TrimSpace(d.FirstName),
				LastName:  strings.TrimSpace(d.LastName),
				ShortName: d.ShortName,
			})
		}
		session.Cars = append(session.Cars, car)
	}

	for _, l := range res.Laps {
		if l.CarID == nil || l.DriverIndex == nil || l.LapTime == nil {
			session.IncompleteLaps++
			continue
		}
		session.Laps = append(session.Laps, Lap{
			CarID:          *l.CarID,
			DriverIndex:    *l.DriverIndex,
			LapTime:        *l.LapTime,
			IsValidForBest: l.IsValidForBest,
			Splits:         l.Splits,
		})
	}

	return session, nil
}

// decodeText returns raw as UTF-8. The server writes UTF-16LE, usually
// without a byte order mark, so BOM-less UTF-16 is recognised by the
// position of NUL bytes in the first code unit.
func decodeText(raw []byte) ([]byte, error) {
	r, enc := utfbom.Skip(bytes.NewReader(raw))
	switch enc {
	case utfbom.UTF8:
		return io.ReadAll(r)
	case utfbom.UTF16LittleEndian:
		return io.ReadAll(transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()))
	case utfbom.UTF16BigEndian:
		return io.ReadAll(transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()))
	case utfbom.UTF32LittleEndian:
		return io.ReadAll(transform.NewReader(r, utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM).NewDecoder()))
	case utfbom.UTF32BigEndian:
		return io.ReadAll(transform.NewReader(r, utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM).NewDecoder()))
	}

	switch {
	case len(raw) >= 2 && raw[0] != 0 && raw[1] == 0:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	case len(raw) >= 2 && raw[0] == 0 && raw[1] != 0:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	}
	return raw, nil
}

// parseTimestamp reads the server's file naming, e.g. 240512_201533_Q.json.
func parseTimestamp(name string) time.Time {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if len(base) < 13 {
		return time.Time{}
	}
	if t, err := time.Parse("060102_150405", base[:13]); err == nil {
		return t
	}
	return time.Time{}
}
