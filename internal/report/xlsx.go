package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/Zuo-Peng/acc-hotlaps/internal/merge"
)

const maxSheetName = 31

// WriteXLSX writes a workbook with one sheet per track.
func WriteXLSX(w io.Writer, entries []merge.Entry) error {
	book := excelize.NewFile()
	defer book.Close()

	headerStyle, err := book.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"1c399e"},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
		Font: &excelize.Font{
			Color: "ffffff",
			Bold:  true,
		},
	})
	if err != nil {
		return err
	}
	fastestStyle, err := book.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"3cb03a"},
		},
		Font: &excelize.Font{
			Bold: true,
		},
	})
	if err != nil {
		return err
	}

	sheets := make(map[string]string) // track -> sheet
	used := map[string]bool{"sheet1": true}
	rows := make(map[string]int)
	var order []string

	for _, e := range entries {
		sheet, ok := sheets[e.Track]
		if !ok {
			sheet = sheetName(e.Track, len(order), used)
			if _, err := book.NewSheet(sheet); err != nil {
				return err
			}
			if err := writeRow(book, sheet, 1, Header); err != nil {
				return err
			}
			last, _ := excelize.CoordinatesToCellName(len(Header), 1)
			if err := book.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
				return err
			}
			sheets[e.Track] = sheet
			rows[e.Track] = 1
			order = append(order, e.Track)
		}

		rows[e.Track]++
		row := rows[e.Track]
		if err := writeRow(book, sheet, row, Row(e)); err != nil {
			return err
		}
		if e.Position == 1 {
			cell, _ := excelize.CoordinatesToCellName(4, row)
			if err := book.SetCellStyle(sheet, cell, cell, fastestStyle); err != nil {
				return err
			}
		}
	}

	if len(order) == 0 {
		if err := writeRow(book, "Sheet1", 1, Header); err != nil {
			return err
		}
	} else {
		idx, err := book.GetSheetIndex(sheets[order[0]])
		if err != nil {
			return err
		}
		book.SetActiveSheet(idx)
		if err := book.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	_, err = book.WriteTo(w)
	return err
}

func writeRow(book *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return book.SetSheetRow(sheet, cell, &cells)
}

// sheetName makes a track name usable as a sheet title. Excel compares sheet
// names case-insensitively, so names already in used get a numeric suffix.
func sheetName(track string, n int, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, track)
	name = strings.Trim(name, "' ")
	if name == "" || strings.EqualFold(name, "Sheet1") {
		name = fmt.Sprintf("Track %d", n+1)
	}
	name = truncateRunes(name, maxSheetName)

	candidate := name
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = truncateRunes(name, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
