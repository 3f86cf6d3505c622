package sheet

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

func decodeXLSX(data []byte) ([]Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, Sheet{
			Name:   name,
			Extent: extentOf(declaredRows(f, name), rows),
			Rows:   rows,
		})
	}
	return sheets, nil
}

// declaredRows reads the last row of the sheet dimension ("A1:K120" is
// 120). Zero means the dimension is missing or unusable.
func declaredRows(f *excelize.File, name string) int {
	ref, err := f.GetSheetDimension(name)
	if err != nil || ref == "" {
		return 0
	}
	if i := strings.LastIndexByte(ref, ':'); i >= 0 {
		ref = ref[i+1:]
	}
	_, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return 0
	}
	return row
}
