package render

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/acc-hotlaps/internal/cars"
	"github.com/Zuo-Peng/acc-hotlaps/internal/laptime"
	"github.com/Zuo-Peng/acc-hotlaps/internal/merge"
)

const (
	colorReset   = "\033[0m"
	colorTrack   = "\033[1;34m" // bold blue
	colorFastest = "\033[1;35m" // bold magenta, overall best on a track
	colorDim     = "\033[2m"
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

type Options struct {
	Width int    // wrap width (0 = no wrap)
	Query string // terms to highlight
	Color bool
}

// highlightKeywords wraps case-insensitive matches of query terms in bold red ANSI codes.
// Matches are located on the original text and overlapping ones are merged,
// so every term sees the same input.
func highlightKeywords(text, query string) string {
	var spans [][]int
	for _, term := range strings.Fields(query) {
		re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(term))
		if err != nil {
			continue
		}
		spans = append(spans, re.FindAllStringIndex(text, -1)...)
	}
	if len(spans) == 0 {
		return text
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i][0] < spans[j][0] })
	merged := [][]int{spans[0]}
	for _, sp := range spans[1:] {
		last := merged[len(merged)-1]
		if sp[0] <= last[1] {
			if sp[1] > last[1] {
				last[1] = sp[1]
			}
			continue
		}
		merged = append(merged, sp)
	}

	var b strings.Builder
	prev := 0
	for _, sp := range merged {
		b.WriteString(text[prev:sp[0]])
		b.WriteString(colorBoldRed)
		b.WriteString(text[sp[0]:sp[1]])
		b.WriteString(colorReset)
		prev = sp[1]
	}
	b.WriteString(text[prev:])
	return b.String()
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// check for ANSI escape sequence: ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++ // include 'm'
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

type column struct {
	title string
	right bool
}

var columns = []column{
	{title: "Pos", right: true},
	{title: "Driver"},
	{title: "Car"},
	{title: "Lap Time", right: true},
	{title: "S1", right: true},
	{title: "S2", right: true},
	{title: "S3", right: true},
	{title: "Gap", right: true},
}

func cells(e merge.Entry) []string {
	row := []string{
		fmt.Sprintf("%d", e.Position),
		e.Name(),
		cars.Name(e.CarModel),
		laptime.Format(e.LapTime),
	}
	for i := 0; i < 3; i++ {
		if i < len(e.Splits) {
			row = append(row, laptime.Format(e.Splits[i]))
		} else {
			row = append(row, "-")
		}
	}
	gap := "-"
	if e.Gap > 0 {
		gap = "+" + laptime.FormatGap(e.Gap)
	}
	return append(row, gap)
}

// Leaderboard renders entries as one aligned table per track.
func Leaderboard(entries []merge.Entry, opts Options) string {
	if len(entries) == 0 {
		return "(no hotlaps)\n"
	}

	var b strings.Builder
	writeLine := func(s string) {
		if !opts.Color {
			s = stripANSI(s)
		}
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
		}
	}

	for start := 0; start < len(entries); {
		end := start
		for end < len(entries) && entries[end].Track == entries[start].Track {
			end++
		}
		group := entries[start:end]

		if start > 0 {
			writeLine("")
		}
		writeLine(fmt.Sprintf("%s%s%s %s(%d drivers)%s", colorTrack, group[0].Track, colorReset, colorDim, len(group), colorReset))

		rows := make([][]string, 0, len(group))
		widths := make([]int, len(columns))
		for i, c := range columns {
			widths[i] = runewidth.StringWidth(c.title)
		}
		for _, e := range group {
			r := cells(e)
			for i, c := range r {
				if w := runewidth.StringWidth(c); w > widths[i] {
					widths[i] = w
				}
			}
			rows = append(rows, r)
		}

		header := make([]string, len(columns))
		for i, c := range columns {
			header[i] = pad(c.title, widths[i], c.right)
		}
		writeLine(colorDim + strings.Join(header, "  ") + colorReset)

		for ri, r := range rows {
			parts := make([]string, len(r))
			for i, c := range r {
				parts[i] = pad(c, widths[i], columns[i].right)
			}
			line := strings.Join(parts, "  ")
			line = highlightKeywords(line, opts.Query)
			if group[ri].Position == 1 {
				line = colorFastest + line + colorReset
			}
			writeLine(line)
		}

		start = end
	}

	return b.String()
}

// Details renders a single entry as a multi-line card.
func Details(e merge.Entry, opts Options) string {
	var b strings.Builder
	writeLine := func(s string) {
		if !opts.Color {
			s = stripANSI(s)
		}
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
		}
	}

	writeLine(fmt.Sprintf("%s%s%s", colorTrack, highlightKeywords(e.Name(), opts.Query), colorReset))
	writeLine(fmt.Sprintf("%s%s%s", colorDim, e.PlayerID, colorReset))
	writeLine("")
	class := cars.Class(e.CarModel)
	if class != "" {
		class = " [" + class + "]"
	}
	writeLine(fmt.Sprintf("Car:      %s%s", cars.Name(e.CarModel), class))
	writeLine(fmt.Sprintf("Track:    %s", e.Track))
	writeLine(fmt.Sprintf("Position: P%d", e.Position))
	writeLine(fmt.Sprintf("Lap:      %s%s%s", colorFastest, laptime.Format(e.LapTime), colorReset))
	for i, s := range e.Splits {
		writeLine(fmt.Sprintf("  S%d:     %s", i+1, laptime.Format(s)))
	}
	if e.Gap > 0 {
		writeLine(fmt.Sprintf("Gap:      +%s", laptime.FormatGap(e.Gap)))
	}
	writeLine("")
	session := e.SessionType
	if session == "" {
		session = "?"
	}
	writeLine(fmt.Sprintf("%sSet in %s session %s%s", colorDim, session, e.SessionFile, colorReset))
	if !e.Timestamp.IsZero() {
		writeLine(fmt.Sprintf("%s%s%s", colorDim, e.Timestamp.Format("2006-01-02 15:04"), colorReset))
	}
	return b.String()
}

func pad(s string, width int, right bool) string {
	if right {
		return runewidth.FillLeft(s, width)
	}
	return runewidth.FillRight(s, width)
}

// stripANSI drops escape sequences added by the color constants.
func stripANSI(s string) string {
	if !strings.Contains(s, "\033[") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
