// Package sheet decodes spreadsheet bytes into plain string rows.
//
// Three formats are accepted: Office Open XML workbooks (.xlsx) through
// excelize, legacy BIFF workbooks (.xls) through extrame/xls, and delimited
// text (.csv). Every cell is returned as text; typed values are not
// interpreted.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format identifies the container a workbook was decoded from.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

var (
	// ErrDecode wraps every failure to parse bytes as a spreadsheet.
	ErrDecode = errors.New("cannot decode spreadsheet")

	// ErrUnsupportedFormat is returned for files that are neither xls, xlsx
	// nor delimited text.
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Extensions lists the accepted file extensions.
var Extensions = []string{".xlsx", ".xls", ".csv"}

// Sheet is one decoded worksheet. Rows are jagged; trailing blank cells
// may be absent. Extent is the number of rows the sheet declares in its
// used range, which can exceed len(Rows).
type Sheet struct {
	Name   string
	Extent int
	Rows   [][]string
}

// Workbook is the decoded content of one file.
type Workbook struct {
	Format Format
	Sheets []Sheet
}

// Decode parses data, choosing the decoder from the file signature and
// falling back to the extension of name.
func Decode(name string, data []byte) (*Workbook, error) {
	format, err := DetectFormat(name, data)
	if err != nil {
		return nil, err
	}

	var sheets []Sheet
	switch format {
	case FormatXLSX:
		sheets, err = decodeXLSX(data)
	case FormatXLS:
		sheets, err = decodeXLS(data)
	case FormatCSV:
		sheets, err = decodeCSV(baseName(name), data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, format, err)
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s: workbook has no sheets", ErrDecode, format)
	}

	return &Workbook{Format: format, Sheets: sheets}, nil
}

// DetectFormat identifies the format of data. Binary signatures win over
// the extension. Text content saved under an .xls name, a common export
// from older municipal tools, is read as delimited text.
func DetectFormat(name string, data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX, nil
	case bytes.HasPrefix(data, oleMagic):
		return FormatXLS, nil
	}

	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv", ".txt", ".tsv":
		return FormatCSV, nil
	case ".xls", ".xlsx":
		if looksLikeMarkup(data) {
			return "", fmt.Errorf("%w: %s file holds HTML or XML, not a spreadsheet", ErrDecode, ext)
		}
		if looksLikeText(data) {
			return FormatCSV, nil
		}
		return "", fmt.Errorf("%w: %s content does not match its extension", ErrDecode, ext)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// SelectSheet returns the index of the sheet with the greatest declared
// extent, the earliest on ties, or -1 for an empty workbook.
func SelectSheet(wb *Workbook) int {
	if wb == nil || len(wb.Sheets) == 0 {
		return -1
	}
	best := 0
	for i, s := range wb.Sheets {
		if s.Extent > wb.Sheets[best].Extent {
			best = i
		}
	}
	return best
}

// Selected returns the sheet chosen by SelectSheet.
func (wb *Workbook) Selected() (Sheet, bool) {
	i := SelectSheet(wb)
	if i < 0 {
		return Sheet{}, false
	}
	return wb.Sheets[i], true
}

// looksLikeMarkup reports whether data starts like an HTML or XML document,
// as written by web exports that name their tables .xls.
func looksLikeMarkup(data []byte) bool {
	head := bytes.TrimLeft(data[:min(len(data), 512)], " \t\r\n\ufeff")
	return len(head) > 0 && head[0] == '<'
}

// looksLikeText reports whether the first bytes of data are printable
// text in some byte-oriented encoding.
func looksLikeText(data []byte) bool {
	head := data[:min(len(data), 512)]
	if len(head) == 0 {
		return false
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return false
	}
	if utf8.Valid(head) {
		return true
	}
	// Truncation may split a rune; latin-1 text has no control bytes.
	for _, b := range head {
		if b < 0x09 || (b > 0x0D && b < 0x20) {
			return false
		}
	}
	return true
}

func baseName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == "/" {
		return "Feuille1"
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// extentOf is the declared row extent, raised to the decoded row count
// when the declaration is missing or stale. Some writers leave "A1" as
// the range of a populated sheet.
func extentOf(declared int, rows [][]string) int {
	return max(declared, len(rows))
}
