package extract

// HeaderScanLimit is the number of leading rows inspected when looking for
// the header line.
const HeaderScanLimit = 10

// headerToken is one column title found in a header row. Index is the
// column the title describes.
type headerToken struct {
	index int
	text  string
}

// DetectHeaderRow returns the index of the row, among the first
// HeaderScanLimit, whose cells name the most distinct fields. Ties go to
// the earliest row; a sheet where nothing is recognized yields 0.
func DetectHeaderRow(rows [][]string, table *AliasTable) int {
	limit := min(len(rows), HeaderScanLimit)

	best, bestCount := 0, 0
	for i := 0; i < limit; i++ {
		keys := make(map[FieldKey]struct{})
		for _, tok := range headerTokens(rows[i]) {
			if k, ok := table.Resolve(tok.text); ok {
				keys[k] = struct{}{}
			}
		}
		if len(keys) > bestCount {
			best, bestCount = i, len(keys)
		}
	}
	return best
}

// headerTokens splits a header row into column titles.
//
// A row with a single non-blank cell holding delimiters is a merged header:
// each part's position in the split is its column index. Otherwise every
// non-blank cell is a title at its own index, and a delimited cell yields
// sub-titles at the cell index plus their offset in the split. Blank parts
// keep their position but produce no token.
func headerTokens(row []string) []headerToken {
	if i, ok := singleMergedCell(row); ok {
		return splitTokens(row[i], 0)
	}

	var tokens []headerToken
	for i, cell := range row {
		if isBlank(cell) {
			continue
		}
		if hasDelimiter(cell) {
			tokens = append(tokens, splitTokens(cell, i)...)
			continue
		}
		tokens = append(tokens, headerToken{index: i, text: cell})
	}
	return tokens
}

func splitTokens(cell string, base int) []headerToken {
	var tokens []headerToken
	for off, part := range splitHeaderCell(cell) {
		if isBlank(part) {
			continue
		}
		tokens = append(tokens, headerToken{index: base + off, text: part})
	}
	return tokens
}

// singleMergedCell reports the position of the only non-blank cell of row
// when that cell contains a delimiter.
func singleMergedCell(row []string) (int, bool) {
	pos := -1
	for i, cell := range row {
		if isBlank(cell) {
			continue
		}
		if pos >= 0 {
			return 0, false
		}
		pos = i
	}
	if pos < 0 || !hasDelimiter(row[pos]) {
		return 0, false
	}
	return pos, true
}
