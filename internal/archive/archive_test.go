package archive

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/acc-hotlaps/internal/testsupport/accfixture"
)

func TestOpenListsJSONMembers(t *testing.T) {
	dir := t.TempDir()
	p := accfixture.WriteZip(t, dir, "results.zip",
		accfixture.Member{Name: "results/240512_210000_R.json", Data: []byte(`{"b":1}`)},
		accfixture.Member{Name: "results/240512_200000_Q.JSON", Data: []byte(`{"a":1}`)},
		accfixture.Member{Name: "results/readme.txt", Data: []byte("hi")},
		accfixture.Member{Name: "__MACOSX/results/._240512_200000_Q.json", Data: []byte{0}},
		accfixture.Member{Name: "results/", Data: nil},
	)

	a, err := Open(p)
	require.NoError(t, err)
	defer a.Close()

	members := a.Members()
	require.Len(t, members, 2)
	assert.Equal(t, "results/240512_200000_Q.JSON", members[0].Name)
	assert.Equal(t, "results/240512_210000_R.json", members[1].Name)
	assert.Equal(t, int64(7), members[0].Size)
	assert.False(t, members[0].Modified.IsZero())

	rc, err := a.Open(members[1].Name)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, `{"b":1}`, string(b))

	_, err = a.Open("results/readme.txt")
	assert.Error(t, err)
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.zip"))
	assert.ErrorIs(t, err, ErrInvalidArchive)

	notZip := filepath.Join(dir, "plain.zip")
	require.NoError(t, os.WriteFile(notZip, []byte("definitely not a zip"), 0o644))
	_, err = Open(notZip)
	assert.ErrorIs(t, err, ErrInvalidArchive)
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	a := accfixture.WriteZip(t, dir, "a.zip", accfixture.Member{Name: "x.json", Data: []byte("{}")})
	b := filepath.Join(dir, "b.zip")
	data, err := os.ReadFile(a)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(b, data, 0o644))

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	assert.Len(t, fa, 64)
	assert.Equal(t, fa, fb)
}

func TestScanPaths(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "season1")
	hidden := filepath.Join(dir, ".cache")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.MkdirAll(hidden, 0o755))

	a := accfixture.WriteZip(t, sub, "week1.zip")
	b := accfixture.WriteZip(t, dir, "week2.ZIP")
	accfixture.WriteZip(t, hidden, "stale.zip")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

	files, err := ScanPaths(dir, a)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, files)

	_, err = ScanPaths(filepath.Join(dir, "nope"))
	assert.ErrorIs(t, err, ErrInvalidArchive)
}
