package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Zuo-Peng/acc-hotlaps/internal/cars"
	"github.com/Zuo-Peng/acc-hotlaps/internal/laptime"
	"github.com/Zuo-Peng/acc-hotlaps/internal/merge"
)

var ErrUnwritable = errors.New("output not writable")

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Header is the column layout shared by all formats.
var Header = []string{"Name", "Car", "Track", "Lap Time", "S1", "S2", "S3", "Gap"}

// ResolveFormat picks the output format from an explicit name or, when
// empty, from the file extension. Unknown extensions fall back to CSV.
func ResolveFormat(name, path string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	case "":
	default:
		return "", fmt.Errorf("unknown report format %q (want csv or xlsx)", name)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX, nil
	}
	return FormatCSV, nil
}

// Row renders one entry as report cells.
func Row(e merge.Entry) []string {
	row := []string{
		e.Name(),
		cars.Name(e.CarModel),
		e.Track,
		laptime.Format(e.LapTime),
	}
	for i := 0; i < 3; i++ {
		if i < len(e.Splits) {
			row = append(row, laptime.Format(e.Splits[i]))
		} else {
			row = append(row, "")
		}
	}
	return append(row, laptime.FormatGap(e.Gap))
}

func Write(w io.Writer, entries []merge.Entry, format Format) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, entries)
	default:
		return WriteCSV(w, entries)
	}
}

// WriteFile creates path and writes the report into it.
func WriteFile(path string, entries []merge.Entry, format Format) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnwritable, err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("%w: %v", ErrUnwritable, closeErr)
		}
	}()

	if err := Write(f, entries, format); err != nil {
		return fmt.Errorf("%w: %v", ErrUnwritable, err)
	}
	return nil
}
