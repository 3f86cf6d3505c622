package extract

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// EmptySheetWarning is the only warning of an extraction over a sheet with
// fewer than two rows.
const EmptySheetWarning = "sheet is empty or has no data rows below a header"

// IDFunc builds a record ID from the extraction batch and the zero-based
// row index in the sheet.
type IDFunc func(batch string, row int) string

// DefaultID formats IDs as contrib-<batch>-<row>.
func DefaultID(batch string, row int) string {
	return fmt.Sprintf("contrib-%s-%d", batch, row)
}

// Result is the outcome of one extraction.
type Result struct {
	Records   []ContributorRecord `json:"records"`
	Warnings  []string            `json:"warnings"`
	TotalRows int                 `json:"totalRows"`

	HeaderRow int            `json:"headerRow"`
	Columns   ColumnIndexMap `json:"columns"`
	Sheet     string         `json:"sheet,omitempty"`
}

// MissingFieldWarning is the warning emitted for a required field absent
// from the header.
func MissingFieldWarning(key FieldKey) string {
	return fmt.Sprintf("required column %q (%s) not detected in header", key.Label(), key)
}

// ExtractRecords builds one record per non-blank row after headerRow.
// Each extraction draws a fresh batch ID, so IDs from repeated imports of
// the same file do not collide. A nil ids uses DefaultID.
func ExtractRecords(rows [][]string, headerRow int, columns ColumnIndexMap, ids IDFunc) Result {
	if ids == nil {
		ids = DefaultID
	}

	res := Result{
		Records:   []ContributorRecord{},
		Warnings:  []string{},
		HeaderRow: headerRow,
		Columns:   columns,
	}
	for _, k := range columns.Missing(RequiredFields) {
		res.Warnings = append(res.Warnings, MissingFieldWarning(k))
	}

	if headerRow < 0 || headerRow >= len(rows) {
		return res
	}
	res.TotalRows = len(rows) - headerRow - 1

	batch := uuid.NewString()
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if blankRow(row) {
			continue
		}
		rec := ContributorRecord{ID: ids(batch, i)}
		for _, k := range fieldKeys {
			idx, ok := columns[k]
			if !ok || idx < 0 || idx >= len(row) {
				rec.Set(k, "")
				continue
			}
			rec.Set(k, row[idx])
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

func blankRow(row []string) bool {
	for _, c := range row {
		if !isBlank(c) {
			return false
		}
	}
	return true
}

func orSentinel(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return Sentinel
	}
	return v
}
