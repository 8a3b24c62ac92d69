package merge

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/acc-hotlaps/internal/parse"
)

func hotlap(id, first string, lapMs int) parse.Hotlap {
	return parse.Hotlap{
		PlayerID:  id,
		FirstName: first,
		LastName:  "",
		CarModel:  30,
		Track:     "monza",
		LapTime:   lapMs,
		Splits:    []int{lapMs / 3, lapMs / 3, lapMs - 2*(lapMs/3)},
	}
}

func TestAggregatorExample(t *testing.T) {
	agg := New()
	agg.Add(hotlap("A", "A", 95200))
	agg.Add(hotlap("B", "B", 88100))
	agg.Add(hotlap("A", "A", 93700))

	got := agg.Entries(ByLapTime)
	require.Len(t, got, 2)

	assert.Equal(t, "B", got[0].PlayerID)
	assert.Equal(t, 88100, got[0].LapTime)
	assert.Equal(t, 1, got[0].Position)
	assert.Equal(t, 0, got[0].Gap)

	assert.Equal(t, "A", got[1].PlayerID)
	assert.Equal(t, 93700, got[1].LapTime)
	assert.Equal(t, 2, got[1].Position)
	assert.Equal(t, 5600, got[1].Gap)
}

func TestAggregatorAddRules(t *testing.T) {
	agg := New()
	assert.True(t, agg.Add(hotlap("A", "A", 100000)), "absent key inserts")
	assert.False(t, agg.Add(hotlap("A", "A", 100000)), "equal lap is ignored")
	assert.False(t, agg.Add(hotlap("A", "A", 100001)), "slower lap is ignored")
	assert.True(t, agg.Add(hotlap("A", "A", 99999)), "faster lap replaces")

	h, ok := agg.Get(Key{PlayerID: "A", CarModel: 30, Track: "monza"})
	require.True(t, ok)
	assert.Equal(t, 99999, h.LapTime)
	assert.Equal(t, 1, agg.Len())
}

func TestAggregatorKeepsFirstOnTie(t *testing.T) {
	agg := New()
	first := hotlap("A", "A", 100000)
	first.SessionFile = "first.json"
	second := hotlap("A", "A", 100000)
	second.SessionFile = "second.json"

	agg.Add(first)
	agg.Add(second)
	assert.Equal(t, "first.json", agg.Entries(ByLapTime)[0].SessionFile)
}

func TestAggregatorSplitsAreCopied(t *testing.T) {
	agg := New()
	h := hotlap("A", "A", 90000)
	agg.Add(h)
	h.Splits[0] = 1

	got := agg.Entries(ByLapTime)
	assert.Equal(t, 30000, got[0].Splits[0])
}

func TestAggregatorOrderIndependent(t *testing.T) {
	var input []parse.Hotlap
	players := []string{"A", "B", "C", "D", "E"}
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 60; i++ {
		p := players[r.Intn(len(players))]
		input = append(input, hotlap(p, p, 90000+r.Intn(5000)))
	}

	want := New()
	for _, h := range input {
		want.Add(h)
	}
	wantEntries := want.Entries(ByLapTime)

	// the minimum per driver does not depend on fold order
	for trial := 0; trial < 20; trial++ {
		shuffled := append([]parse.Hotlap(nil), input...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		agg := New()
		for _, h := range shuffled {
			agg.Add(h)
		}
		got := agg.Entries(ByLapTime)
		require.Len(t, got, len(wantEntries))
		for i := range got {
			assert.Equal(t, wantEntries[i].PlayerID, got[i].PlayerID)
			assert.Equal(t, wantEntries[i].LapTime, got[i].LapTime)
		}
	}

	for _, e := range wantEntries {
		min := -1
		for _, h := range input {
			if h.PlayerID == e.PlayerID && (min < 0 || h.LapTime < min) {
				min = h.LapTime
			}
		}
		assert.Equal(t, min, e.LapTime, "player %s", e.PlayerID)
	}
}

func TestAggregatorTracksAndCarsAreSeparate(t *testing.T) {
	agg := New()
	monza := hotlap("A", "Anna", 107000)
	spa := hotlap("A", "Anna", 138000)
	spa.Track = "spa"
	otherCar := hotlap("A", "Anna", 108000)
	otherCar.CarModel = 24
	spaRival := hotlap("B", "Bert", 137000)
	spaRival.Track = "spa"

	for _, h := range []parse.Hotlap{monza, spa, otherCar, spaRival} {
		agg.Add(h)
	}

	got := agg.Entries(ByLapTime)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"monza", "monza", "spa", "spa"},
		[]string{got[0].Track, got[1].Track, got[2].Track, got[3].Track})
	assert.Equal(t, 1000, got[1].Gap)
	assert.Equal(t, "B", got[2].PlayerID)
	assert.Equal(t, 0, got[2].Gap)
	assert.Equal(t, 1000, got[3].Gap)
	assert.Equal(t, 2, got[3].Position)
}

func TestAggregatorByDriver(t *testing.T) {
	agg := New()
	agg.Add(hotlap("1", "zoe", 90000))
	agg.Add(hotlap("2", "Adam", 95000))
	agg.Add(hotlap("3", "mia", 91000))

	got := agg.Entries(ByDriver)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Adam", "mia", "zoe"}, []string{got[0].Name(), got[1].Name(), got[2].Name()})
	// position and gap still reflect lap time
	assert.Equal(t, 3, got[0].Position)
	assert.Equal(t, 5000, got[0].Gap)
	assert.Equal(t, 1, got[2].Position)
}

func TestAggregatorEmpty(t *testing.T) {
	assert.Empty(t, New().Entries(ByLapTime))
}

func TestParseSortOrder(t *testing.T) {
	o, err := ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, ByLapTime, o)

	o, err = ParseSortOrder("Driver")
	require.NoError(t, err)
	assert.Equal(t, ByDriver, o)

	_, err = ParseSortOrder("fastest")
	assert.Error(t, err)
}
