package sheet

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/extrame/xls"
)

func decodeXLS(data []byte) (sheets []Sheet, err error) {
	// The BIFF parser panics on some truncated files.
	defer func() {
		if r := recover(); r != nil {
			sheets, err = nil, fmt.Errorf("malformed workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb == nil {
		return nil, errors.New("no workbook stream")
	}

	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}

		rows := make([][]string, 0, int(ws.MaxRow)+1)
		for r := 0; r <= int(ws.MaxRow); r++ {
			rows = append(rows, xlsRow(ws, r))
		}
		rows = trimTrailingBlank(rows)

		sheets = append(sheets, Sheet{
			Name:   ws.Name,
			Extent: extentOf(int(ws.MaxRow)+1, rows),
			Rows:   rows,
		})
	}
	return sheets, nil
}

// xlsRow reads row r as text. Rows absent from the file read as nil;
// WorkSheet.Row dereferences missing rows, hence the recover.
func xlsRow(ws *xls.WorkSheet, r int) (cells []string) {
	defer func() {
		if recover() != nil {
			cells = nil
		}
	}()

	row := ws.Row(r)
	if row == nil {
		return nil
	}
	cells = make([]string, 0, row.LastCol())
	for c := 0; c < row.LastCol(); c++ {
		cells = append(cells, row.Col(c))
	}
	return cells
}

func trimTrailingBlank(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && blank(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func blank(row []string) bool {
	for _, c := range row {
		for _, r := range c {
			if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
				return false
			}
		}
	}
	return true
}
