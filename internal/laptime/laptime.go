package laptime

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a lap time in milliseconds as mm:ss.mmm.
func Format(ms int) string {
	if ms < 0 {
		ms = 0
	}
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	millis := ms % 1000
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds, millis)
}

// FormatGap renders a gap in milliseconds as seconds with three decimals.
func FormatGap(ms int) string {
	return fmt.Sprintf("%.3f", float64(ms)/1000)
}

// Parse is the inverse of Format. It also accepts "ss.mmm" without minutes.
func Parse(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty lap time")
	}

	minutes := 0
	rest := s
	if i := strings.IndexByte(s, ':'); i >= 0 {
		m, err := strconv.Atoi(s[:i])
		if err != nil || m < 0 {
			return 0, fmt.Errorf("invalid minutes in %q", s)
		}
		minutes = m
		rest = s[i+1:]
	}

	secPart, fracPart, hasFrac := strings.Cut(rest, ".")
	seconds, err := strconv.Atoi(secPart)
	if err != nil || seconds < 0 || (minutes > 0 && seconds > 59) {
		return 0, fmt.Errorf("invalid seconds in %q", s)
	}

	millis := 0
	if hasFrac {
		if len(fracPart) == 0 || len(fracPart) > 3 {
			return 0, fmt.Errorf("invalid fraction in %q", s)
		}
		// pad "7" -> "700"
		fracPart += strings.Repeat("0", 3-len(fracPart))
		millis, err = strconv.Atoi(fracPart)
		if err != nil {
			return 0, fmt.Errorf("invalid fraction in %q", s)
		}
	}

	return minutes*60000 + seconds*1000 + millis, nil
}
