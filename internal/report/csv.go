package report

import (
	"encoding/csv"
	"io"

	"github.com/Zuo-Peng/acc-hotlaps/internal/merge"
)

// WriteCSV writes the header row followed by one row per entry.
func WriteCSV(w io.Writer, entries []merge.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(Row(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
