package parse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/acc-hotlaps/internal/testsupport/accfixture"
)

func mustParse(t *testing.T, s accfixture.Session) *Session {
	t.Helper()
	parsed, err := ParseSession("240512_201533_FP.json", bytes.NewReader(s.JSON()))
	require.NoError(t, err)
	return parsed
}

func TestBestLapsSharedCar(t *testing.T) {
	got := BestLaps(mustParse(t, fixtureSession()), BestLapOptions{})

	require.Len(t, got, 2)
	assert.Equal(t, alice.PlayerID, got[0].PlayerID)
	assert.Equal(t, 107900, got[0].LapTime)
	assert.Equal(t, "Alice Arden", got[0].Name())
	assert.Equal(t, 30, got[0].CarModel)
	assert.Equal(t, "monza", got[0].Track)
	assert.Equal(t, "240512_201533_FP.json", got[0].SessionFile)

	assert.Equal(t, bob.PlayerID, got[1].PlayerID)
	assert.Equal(t, 109100, got[1].LapTime)
	assert.Equal(t, []int{36000, 38000, 35100}, got[1].Splits)
}

func TestBestLapsSkipsInvalid(t *testing.T) {
	s := accfixture.Session{
		Track: "spa",
		Cars:  []accfixture.Car{{CarID: 1, CarModel: 24, Drivers: []accfixture.Driver{alice}}},
		Laps: []accfixture.Lap{
			{CarID: 1, LapTime: 139000, Invalid: true},
			{CarID: 1, LapTime: 141000},
		},
	}

	got := BestLaps(mustParse(t, s), BestLapOptions{})
	require.Len(t, got, 1)
	assert.Equal(t, 141000, got[0].LapTime)

	got = BestLaps(mustParse(t, s), BestLapOptions{IncludeInvalid: true})
	require.Len(t, got, 1)
	assert.Equal(t, 139000, got[0].LapTime)
}

func TestBestLapsUnresolvedLaps(t *testing.T) {
	s := accfixture.Session{
		Track: "spa",
		Cars:  []accfixture.Car{{CarID: 1, CarModel: 24, Drivers: []accfixture.Driver{alice}}},
		Laps: []accfixture.Lap{
			{CarID: 2, LapTime: 120000},                 // unknown car
			{CarID: 1, DriverIndex: 3, LapTime: 120000}, // unknown driver slot
			{CarID: 1, LapTime: 0},                      // out lap without time
		},
	}
	assert.Empty(t, BestLaps(mustParse(t, s), BestLapOptions{}))
}

func TestBestLapsSameDriverTwoCars(t *testing.T) {
	s := accfixture.Session{
		Track: "spa",
		Cars: []accfixture.Car{
			{CarID: 1, CarModel: 24, Drivers: []accfixture.Driver{alice}},
			{CarID: 2, CarModel: 30, Drivers: []accfixture.Driver{alice}},
		},
		Laps: []accfixture.Lap{
			{CarID: 1, LapTime: 139000},
			{CarID: 2, LapTime: 138000},
		},
	}
	got := BestLaps(mustParse(t, s), BestLapOptions{})
	require.Len(t, got, 2)
	assert.Equal(t, 30, got[0].CarModel)
	assert.Equal(t, 24, got[1].CarModel)
}
