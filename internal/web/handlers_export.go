package web

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jules-12/card-creator-pro/internal/core"
	"github.com/jules-12/card-creator-pro/internal/extract"
)

type exportRequest struct {
	Records []extract.ContributorRecord `json:"cards"`
}

// handleExportCardSet downloads a saved set as PDF or zip.
func (s *Server) handleExportCardSet(w http.ResponseWriter, r *http.Request) {
	format, err := core.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	// Rendered into memory first so failures still get an error response.
	var buf bytes.Buffer
	if err := s.service.ExportCardSet(r.Context(), chi.URLParam(r, "id"), format, &buf); err != nil {
		respondError(w, r, err)
		return
	}
	writeDownload(w, format, buf.Bytes())
}

// handleExport downloads the posted records as PDF or zip.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := core.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.service.Export(r.Context(), format, req.Records, &buf); err != nil {
		respondError(w, r, err)
		return
	}
	writeDownload(w, format, buf.Bytes())
}

// handleCardImage serves one rendered card.
func (s *Server) handleCardImage(w http.ResponseWriter, r *http.Request) {
	img, err := s.service.RenderCard(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "recordID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.Header().Set("Cache-Control", "private, max-age=60")
	_, _ = w.Write(img)
}

// handleCardPDF downloads one card as a single-page PDF.
func (s *Server) handleCardPDF(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	name, err := s.service.ExportCard(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "recordID"), &buf)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeFile(w, core.ExportPDF.ContentType(), name, buf.Bytes())
}

// handleQR returns the QR payload of the posted record.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	var rec extract.ContributorRecord
	if err := decodeJSON(w, r, &rec); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"payload": s.service.QRPayload(rec)})
}

func writeDownload(w http.ResponseWriter, format core.ExportFormat, data []byte) {
	writeFile(w, format.ContentType(), format.FileName(), data)
}

func writeFile(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}
