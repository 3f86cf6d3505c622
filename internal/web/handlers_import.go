package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jules-12/card-creator-pro/internal/core"
)

// multipartOverhead leaves room for the form boundary and other fields on
// top of the file size limit.
const multipartOverhead = 1 << 20

// handleImport extracts the records of the uploaded "file" field.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	if err := r.ParseMultipartForm(limit + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, fmt.Errorf("%w: request over %d bytes", core.ErrFileTooLarge, tooLarge.Limit))
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", core.ErrInvalidRequest, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		respondError(w, r, core.ErrNoFile)
		return
	}
	if err != nil {
		respondError(w, r, fmt.Errorf("%w: %w", core.ErrRead, err))
		return
	}
	defer file.Close()

	res, err := s.service.Import(r.Context(), header.Filename, file, header.Size)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleSample returns generated demo records.
func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	n := parseIntParam(r, "n", 5)
	seed := int64(parseIntParam(r, "seed", 0))

	writeJSON(w, http.StatusOK, map[string]any{
		"records": s.service.SampleRecords(n, seed),
	})
}
