package card

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/sync/errgroup"

	"github.com/jules-12/card-creator-pro/internal/extract"
)

var (
	ErrNothingToExport = errors.New("no cards to export")
	ErrTooManyCards    = errors.New("too many cards in one export")
)

// Names used inside an export archive.
const (
	ArchiveFolder  = "cartes-b2-individuelles"
	ArchiveAllName = "toutes-les-cartes-b2.pdf"
)

const (
	DefaultWorkers  = 4
	DefaultMaxCards = 1000
)

// Exporter turns records into PDF documents. Cards are rasterized in
// parallel; page order always follows record order.
type Exporter struct {
	renderer *Renderer
	workers  int
	maxCards int
}

// NewExporter creates an Exporter. Non-positive workers or maxCards select
// the defaults.
func NewExporter(r *Renderer, workers, maxCards int) *Exporter {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if maxCards <= 0 {
		maxCards = DefaultMaxCards
	}
	return &Exporter{renderer: r, workers: workers, maxCards: maxCards}
}

// Renderer returns the card renderer.
func (e *Exporter) Renderer() *Renderer {
	return e.renderer
}

// PDF writes one page per record to w.
func (e *Exporter) PDF(ctx context.Context, recs []extract.ContributorRecord, w io.Writer) error {
	pages, err := e.renderAll(ctx, recs)
	if err != nil {
		return err
	}
	return writePDF(pages, w)
}

// SinglePDF writes a one-page PDF for rec.
func (e *Exporter) SinglePDF(rec extract.ContributorRecord, w io.Writer) error {
	page, err := e.renderer.PNG(rec)
	if err != nil {
		return err
	}
	return writePDF([][]byte{page}, w)
}

// Archive writes a zip holding a PDF per record under ArchiveFolder and a
// combined PDF named ArchiveAllName.
func (e *Exporter) Archive(ctx context.Context, recs []extract.ContributorRecord, w io.Writer) error {
	pages, err := e.renderAll(ctx, recs)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	names := make(map[string]int, len(recs))

	for i, rec := range recs {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := uniqueName(names, FileName(rec))
		if err := addPDF(zw, ArchiveFolder+"/"+name, pages[i:i+1]); err != nil {
			return err
		}
	}
	if err := addPDF(zw, ArchiveAllName, pages); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}

func (e *Exporter) check(recs []extract.ContributorRecord) error {
	switch {
	case len(recs) == 0:
		return ErrNothingToExport
	case len(recs) > e.maxCards:
		return fmt.Errorf("%w: %d cards, limit is %d", ErrTooManyCards, len(recs), e.maxCards)
	}
	return nil
}

func (e *Exporter) renderAll(ctx context.Context, recs []extract.ContributorRecord) ([][]byte, error) {
	if err := e.check(recs); err != nil {
		return nil, err
	}

	pages := make([][]byte, len(recs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range recs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			page, err := e.renderer.PNG(recs[i])
			if err != nil {
				return fmt.Errorf("render card %s: %w", recs[i].ID, err)
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

func addPDF(zw *zip.Writer, name string, pages [][]byte) error {
	f, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	return writePDF(pages, f)
}

func writePDF(pages [][]byte, w io.Writer) error {
	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: WidthMM, Ht: HeightMM},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCreator("card-creator-pro", true)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, page := range pages {
		name := fmt.Sprintf("card-%d", i)
		doc.AddPage()
		doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(page))
		doc.ImageOptions(name, 0, 0, WidthMM, HeightMM, false, opts, 0, "")
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// uniqueName suffixes repeated names: carte-b2-X.pdf, carte-b2-X-2.pdf, ...
func uniqueName(seen map[string]int, name string) string {
	seen[name]++
	n := seen[name]
	if n == 1 {
		return name
	}
	base := strings.TrimSuffix(name, ".pdf")
	return fmt.Sprintf("%s-%d.pdf", base, n)
}
