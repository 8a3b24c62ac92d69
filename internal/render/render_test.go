package render

import (
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zuo-Peng/acc-hotlaps/internal/merge"
	"github.com/Zuo-Peng/acc-hotlaps/internal/parse"
)

func sample() []merge.Entry {
	agg := merge.New()
	agg.Add(parse.Hotlap{PlayerID: "S1", FirstName: "Anna", LastName: "Alder", CarModel: 30, Track: "monza", LapTime: 93700, Splits: []int{31000, 32000, 30700}})
	agg.Add(parse.Hotlap{PlayerID: "S2", FirstName: "Bjørn", LastName: "Brænd", CarModel: 24, Track: "monza", LapTime: 88100})
	agg.Add(parse.Hotlap{PlayerID: "S3", FirstName: "Cleo", CarModel: 61, Track: "spa", LapTime: 160000})
	return agg.Entries(merge.ByLapTime)
}

func TestLeaderboardPlain(t *testing.T) {
	out := Leaderboard(sample(), Options{})
	assert.NotContains(t, out, "\033[")

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "monza (2 drivers)", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Pos  Driver"))
	assert.Contains(t, lines[2], "Bjørn Brænd")
	assert.Contains(t, lines[2], "01:28.100")
	assert.Contains(t, lines[3], "+5.600")
	assert.Equal(t, "", lines[4])
	assert.Equal(t, "spa (1 drivers)", lines[5])

	// columns line up in display width
	lapCol := func(line, lap string) int {
		return runewidth.StringWidth(line[:strings.Index(line, lap)])
	}
	assert.Equal(t, lapCol(lines[2], "01:28.100"), lapCol(lines[3], "01:33.700"))
}

func TestLeaderboardColorAndHighlight(t *testing.T) {
	out := Leaderboard(sample(), Options{Color: true, Query: "alder"})
	assert.Contains(t, out, colorBoldRed+"Alder"+colorReset)
	assert.Contains(t, out, colorFastest)
}

func TestHighlightKeywords(t *testing.T) {
	hl := func(s string) string { return colorBoldRed + s + colorReset }
	tests := []struct {
		name, text, query, want string
	}{
		{name: "no query", text: "Anna Alder", query: "", want: "Anna Alder"},
		{name: "case insensitive", text: "Anna Alder", query: "alder", want: "Anna " + hl("Alder")},
		{name: "later term ignores inserted codes", text: "Anna 01:33.700", query: "anna 1", want: hl("Anna") + " 0" + hl("1") + ":33.700"},
		{name: "overlapping terms merge", text: "Birch", query: "bir irc", want: hl("Birc") + "h"},
		{name: "multibyte before match", text: "İlker Öz", query: "lker öz", want: "İ" + hl("lker") + " " + hl("Öz")},
		{name: "regexp metacharacters are literal", text: "Car (999)", query: "(9", want: "Car " + hl("(9") + "99)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, highlightKeywords(tt.text, tt.query))
		})
	}
}

func TestLeaderboardEmpty(t *testing.T) {
	assert.Equal(t, "(no hotlaps)\n", Leaderboard(nil, Options{}))
}

func TestDetails(t *testing.T) {
	e := sample()[1]
	e.SessionFile = "240512_203000_Q.json"
	e.SessionType = "Q"
	e.Timestamp = time.Date(2024, 5, 12, 20, 30, 0, 0, time.UTC)

	out := Details(e, Options{})
	assert.Contains(t, out, "Anna Alder\n")
	assert.Contains(t, out, "Car:      BMW M4 GT3 [GT3]")
	assert.Contains(t, out, "Position: P2")
	assert.Contains(t, out, "S3:     00:30.700")
	assert.Contains(t, out, "Gap:      +5.600")
	assert.Contains(t, out, "Set in Q session 240512_203000_Q.json")
	assert.Contains(t, out, "2024-05-12 20:30")
}

func TestWrapLine(t *testing.T) {
	assert.Equal(t, []string{"abc", "def", "g"}, wrapLine("abcdefg", 3))
	assert.Equal(t, []string{"ab\033[1mc", "d\033[0m"}, wrapLine("ab\033[1mcd\033[0m", 3))
	assert.Equal(t, []string{"x"}, wrapLine("x", 0))
}

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "plain", stripANSI(colorTrack+"plain"+colorReset))
}
