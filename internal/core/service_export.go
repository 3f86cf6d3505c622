package core

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jules-12/card-creator-pro/internal/card"
	"github.com/jules-12/card-creator-pro/internal/extract"
)

// ExportFormat selects the export container.
type ExportFormat string

const (
	ExportPDF ExportFormat = "pdf"
	ExportZIP ExportFormat = "zip"
)

// ParseExportFormat parses "pdf" or "zip"; empty means pdf.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExportPDF:
		return ExportPDF, nil
	case ExportZIP:
		return ExportZIP, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", ErrInvalidRequest, s)
}

// ContentType is the MIME type of the export.
func (f ExportFormat) ContentType() string {
	if f == ExportZIP {
		return "application/zip"
	}
	return "application/pdf"
}

// FileName is the download name for an export.
func (f ExportFormat) FileName() string {
	if f == ExportZIP {
		return "cartes-b2.zip"
	}
	return "cartes-b2.pdf"
}

// Export writes recs to w in format f.
func (s *Service) Export(ctx context.Context, f ExportFormat, recs []extract.ContributorRecord, w io.Writer) error {
	recs = normalizeRecords(recs)
	if f == ExportZIP {
		return s.exporter.Archive(ctx, recs, w)
	}
	return s.exporter.PDF(ctx, recs, w)
}

// ExportCardSet writes a saved card set of the current user to w.
func (s *Service) ExportCardSet(ctx context.Context, id string, f ExportFormat, w io.Writer) error {
	set, err := s.GetCardSet(ctx, id)
	if err != nil {
		return err
	}
	return s.Export(ctx, f, set.Records, w)
}

// RenderCard returns the PNG of one card in a saved set.
func (s *Service) RenderCard(ctx context.Context, setID, recordID string) ([]byte, error) {
	set, err := s.GetCardSet(ctx, setID)
	if err != nil {
		return nil, err
	}
	rec, ok := set.Record(recordID)
	if !ok {
		return nil, ErrCardNotFound
	}
	return s.exporter.Renderer().PNG(rec)
}

// ExportCard writes a one-page PDF of one card in a saved set and returns
// its download name.
func (s *Service) ExportCard(ctx context.Context, setID, recordID string, w io.Writer) (string, error) {
	set, err := s.GetCardSet(ctx, setID)
	if err != nil {
		return "", err
	}
	rec, ok := set.Record(recordID)
	if !ok {
		return "", ErrCardNotFound
	}
	if err := s.exporter.SinglePDF(rec, w); err != nil {
		return "", err
	}
	return card.FileName(rec), nil
}

// QRPayload returns the QR text for rec after filling blank fields.
func (s *Service) QRPayload(rec extract.ContributorRecord) string {
	rec.Fill()
	return card.Payload(rec)
}
