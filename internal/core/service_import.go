package core

import (
	"context"
	"fmt"
	"io"

	"github.com/jules-12/card-creator-pro/internal/extract"
	"github.com/jules-12/card-creator-pro/internal/logging"
	"github.com/jules-12/card-creator-pro/internal/sheet"
)

// ImportResult is the extraction result of one uploaded file.
type ImportResult struct {
	extract.Result

	FileName   string       `json:"fileName"`
	Format     sheet.Format `json:"format"`
	Sheets     []string     `json:"sheets"`
	DurationMS int64        `json:"durationMs"`
}

// Import reads an uploaded spreadsheet and extracts its records. size is the
// declared length of r, or -1 when unknown.
//
// Decoding and reading failures abort the import. A sheet without a usable
// header still succeeds, with warnings and no records.
func (s *Service) Import(ctx context.Context, fileName string, r io.Reader, size int64) (*ImportResult, error) {
	if r == nil {
		return nil, ErrNoFile
	}

	// Imports without a signed-in user share one account.
	u, _ := UserFromContext(ctx)
	release, err := s.limiter.Acquire(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	if s.importCfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.importCfg.Timeout)
		defer cancel()
	}

	start := s.now()
	logger := logging.WithFields(ctx, "file", fileName)

	data, err := readUpload(r, size, s.importCfg.MaxFileSize)
	if err != nil {
		return nil, err
	}

	wb, err := sheet.Decode(fileName, data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("import %s: %w", fileName, err)
	}

	res := &ImportResult{
		FileName: fileName,
		Format:   wb.Format,
		Sheets:   make([]string, len(wb.Sheets)),
	}
	for i, sh := range wb.Sheets {
		res.Sheets[i] = sh.Name
	}

	selected, _ := wb.Selected()
	res.Result = s.extractor.Extract(selected.Rows)
	res.Sheet = selected.Name
	res.DurationMS = s.now().Sub(start).Milliseconds()

	logger.Info("import complete",
		"format", wb.Format,
		"sheet", selected.Name,
		"records", len(res.Records),
		"total_rows", res.TotalRows,
		"warnings", len(res.Warnings),
		"duration_ms", res.DurationMS,
	)
	return res, nil
}

// MaxSampleRecords caps SampleRecords.
const MaxSampleRecords = 100

// SampleRecords returns n generated demo records, clamped to
// [1, MaxSampleRecords]. The same seed gives the same records; seed 0 picks a
// random one.
func (s *Service) SampleRecords(n int, seed int64) []extract.ContributorRecord {
	n = max(1, min(n, MaxSampleRecords))
	return extract.SampleRecords(n, seed)
}

