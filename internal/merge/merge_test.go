package merge

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Zuo-Peng/acc-hotlaps/internal/archive"
	"github.com/Zuo-Peng/acc-hotlaps/internal/testsupport/accfixture"
)

var (
	driverA = accfixture.Driver{PlayerID: "S1", FirstName: "Anna", LastName: "Alder"}
	driverB = accfixture.Driver{PlayerID: "S2", FirstName: "Ben", LastName: "Birch"}
	driverC = accfixture.Driver{PlayerID: "S3", FirstName: "Cleo", LastName: "Cole"}
)

func writeSeason(t *testing.T, dir string) string {
	t.Helper()
	fp := accfixture.SoloSession("monza", []accfixture.Driver{driverA, driverB}, 30, map[string][]int{
		driverA.PlayerID: {95200, 96000},
		driverB.PlayerID: {88100},
	})
	q := accfixture.SoloSession("monza", []accfixture.Driver{driverA}, 30, map[string][]int{
		driverA.PlayerID: {93700},
	})
	q.SessionType = "Q"

	return accfixture.WriteZip(t, dir, "season.zip",
		accfixture.Member{Name: "240512_200000_FP.json", Data: fp.UTF16()},
		accfixture.Member{Name: "240512_203000_Q.json", Data: q.JSON()},
		accfixture.Member{Name: "240512_210000_R.json", Data: []byte(`{"trackName": "monza", "laps": [`)},
		accfixture.Member{Name: "entrylist.txt", Data: []byte("not a result")},
	)
}

func TestMergeArchive(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := writeSeason(t, t.TempDir())

	res, err := MergeArchive(p, Options{Logger: zap.New(core)})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Stats.Members)
	assert.Equal(t, 2, res.Stats.Sessions)
	assert.Equal(t, 1, res.Stats.Skipped)
	assert.Equal(t, 3, res.Stats.Hotlaps)
	assert.Equal(t, 2, res.Stats.Entries)

	got := res.Aggregate.Entries(ByLapTime)
	require.Len(t, got, 2)
	assert.Equal(t, "Ben Birch", got[0].Name())
	assert.Equal(t, 88100, got[0].LapTime)
	assert.Equal(t, "Anna Alder", got[1].Name())
	assert.Equal(t, 93700, got[1].LapTime)
	assert.Equal(t, "240512_203000_Q.json", got[1].SessionFile)
	assert.Equal(t, "Q", got[1].SessionType)

	warnings := logs.FilterMessage("skipping session file").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "240512_210000_R.json", warnings[0].ContextMap()["member"])
}

func TestMergeArchiveTwiceIsDeterministic(t *testing.T) {
	p := writeSeason(t, t.TempDir())

	first, err := MergeArchive(p, Options{})
	require.NoError(t, err)
	second, err := MergeArchives([]string{p, p}, Options{})
	require.NoError(t, err)

	assert.Equal(t, first.Aggregate.Entries(ByLapTime), second.Aggregate.Entries(ByLapTime))
	assert.Equal(t, 2, second.Stats.Archives)
}

func TestMergeArchiveAbsentDriver(t *testing.T) {
	dir := t.TempDir()
	// C sits on the entry list but never sets a valid lap
	s := accfixture.SoloSession("spa", []accfixture.Driver{driverA, driverC}, 24, map[string][]int{
		driverA.PlayerID: {139000},
	})
	s.Laps = append(s.Laps, accfixture.Lap{CarID: 1002, LapTime: 120000, Invalid: true})
	p := accfixture.WriteZip(t, dir, "spa.zip", accfixture.Member{Name: "240601_120000_FP.json", Data: s.JSON()})

	res, err := MergeArchive(p, Options{})
	require.NoError(t, err)
	for _, e := range res.Aggregate.Entries(ByLapTime) {
		assert.NotEqual(t, driverC.PlayerID, e.PlayerID)
	}

	withInvalid, err := MergeArchive(p, Options{IncludeInvalid: true})
	require.NoError(t, err)
	got := withInvalid.Aggregate.Entries(ByLapTime)
	require.Len(t, got, 2)
	assert.Equal(t, driverC.PlayerID, got[0].PlayerID)
}

func TestMergeArchiveTimestampFallback(t *testing.T) {
	dir := t.TempDir()
	s := accfixture.SoloSession("spa", []accfixture.Driver{driverA}, 24, map[string][]int{
		driverA.PlayerID: {139000},
	})
	p := accfixture.WriteZip(t, dir, "spa.zip", accfixture.Member{Name: "practice.json", Data: s.JSON()})

	res, err := MergeArchive(p, Options{})
	require.NoError(t, err)
	got := res.Aggregate.Entries(ByLapTime)
	require.Len(t, got, 1)
	assert.Equal(t, 2024, got[0].Timestamp.Year())
}

func TestMergeArchiveFatalErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := MergeArchive(filepath.Join(dir, "missing.zip"), Options{})
	assert.ErrorIs(t, err, archive.ErrInvalidArchive)

	good := writeSeason(t, dir)
	_, err = MergeArchives([]string{good, filepath.Join(dir, "missing.zip")}, Options{})
	assert.ErrorIs(t, err, archive.ErrInvalidArchive)
}

func TestMergeArchiveEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := accfixture.WriteZip(t, t.TempDir(), "empty.zip")

	res, err := MergeArchive(p, Options{Logger: zap.New(core)})
	require.NoError(t, err)
	assert.Zero(t, res.Aggregate.Len())
	assert.Equal(t, 1, logs.FilterMessage("archive contains no session files").Len())
}
