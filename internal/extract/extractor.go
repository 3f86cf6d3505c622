package extract

import (
	"log/slog"
)

// Extractor runs the full header-detection and row-extraction pipeline.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	aliases *AliasTable
	ids     IDFunc
	logger  *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithAliases replaces the default vocabulary.
func WithAliases(t *AliasTable) Option {
	return func(e *Extractor) {
		if t != nil {
			e.aliases = t
		}
	}
}

// WithIDFunc replaces the record ID generator.
func WithIDFunc(f IDFunc) Option {
	return func(e *Extractor) {
		if f != nil {
			e.ids = f
		}
	}
}

// WithLogger sets the logger used for debug diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Extractor using DefaultAliases and DefaultID unless
// overridden.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		aliases: DefaultAliases(),
		ids:     DefaultID,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Aliases returns the vocabulary in use.
func (e *Extractor) Aliases() *AliasTable {
	return e.aliases
}

// Extract maps rows to contributor records. It never fails: an empty sheet
// and undetected required columns are reported as warnings.
func (e *Extractor) Extract(rows [][]string) Result {
	if len(rows) < 2 {
		e.logger.Debug("sheet too short to extract", "rows", len(rows))
		return Result{
			Records:  []ContributorRecord{},
			Warnings: []string{EmptySheetWarning},
			Columns:  ColumnIndexMap{},
		}
	}

	headerRow := DetectHeaderRow(rows, e.aliases)
	columns := AssignColumns(rows[headerRow], e.aliases)

	res := ExtractRecords(rows, headerRow, columns, e.ids)

	e.logger.Debug("extracted records",
		"header_row", headerRow,
		"columns", len(columns),
		"records", len(res.Records),
		"total_rows", res.TotalRows,
		"warnings", len(res.Warnings),
	)
	return res
}
