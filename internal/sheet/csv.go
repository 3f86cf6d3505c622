package sheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// csvDelimiters are the separators recognized by sniffDelimiter.
var csvDelimiters = []rune{';', ',', '\t', '|'}

func decodeCSV(name string, data []byte) ([]Sheet, error) {
	text := textReader(data)

	br := bufio.NewReader(text)
	first, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}

	r := csv.NewReader(br)
	r.Comma = sniffDelimiter(first)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows := [][]string{}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}

	return []Sheet{{Name: name, Extent: len(rows), Rows: rows}}, nil
}

// textReader decodes data to UTF-8. A byte order mark selects UTF-8 or
// UTF-16 and is stripped. Without one, invalid UTF-8 is read as
// Windows-1252, the default of French spreadsheet exports.
func textReader(data []byte) io.Reader {
	src := bytes.NewReader(data)
	switch {
	case hasBOM(data):
		return transform.NewReader(src, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	case utf8.Valid(data):
		return src
	default:
		return transform.NewReader(src, charmap.Windows1252.NewDecoder())
	}
}

func hasBOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(data, []byte{0xFF, 0xFE}) ||
		bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}

// sniffLines is the number of non-blank lines inspected by sniffDelimiter.
const sniffLines = 10

// sniffDelimiter picks the separator found on the most of the first
// sniffLines non-blank lines, counting only occurrences outside quotes. A
// title line above the header holds no separator and does not decide the
// result. Ties go to the larger total count. Comma wins remaining ties and
// when nothing is found.
func sniffDelimiter(head []byte) rune {
	lines := bytes.FieldsFunc(head, func(r rune) bool { return r == '\n' || r == '\r' })

	linesWith := make(map[rune]int, len(csvDelimiters))
	totals := make(map[rune]int, len(csvDelimiters))
	seen := 0
	for _, line := range lines {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if seen++; seen > sniffLines {
			break
		}
		for d, n := range countDelimiters(line) {
			linesWith[d]++
			totals[d] += n
		}
	}

	best := ','
	for _, d := range csvDelimiters {
		switch {
		case linesWith[d] > linesWith[best]:
			best = d
		case linesWith[d] == linesWith[best] && totals[d] > totals[best]:
			best = d
		}
	}
	return best
}

// countDelimiters counts each known separator on line outside quotes.
func countDelimiters(line []byte) map[rune]int {
	counts := make(map[rune]int, len(csvDelimiters))
	quoted := false
	for _, r := range string(line) {
		if r == '"' {
			quoted = !quoted
			continue
		}
		if quoted {
			continue
		}
		for _, d := range csvDelimiters {
			if r == d {
				counts[d]++
			}
		}
	}
	return counts
}
