package core

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile is returned for a zero-byte upload.
	ErrEmptyFile = errors.New("empty file")

	// ErrRead wraps failures to read the uploaded bytes.
	ErrRead = errors.New("cannot read file")
)

// countingReader tracks bytes read from an upload.
type countingReader struct {
	reader    io.Reader
	bytesRead int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.bytesRead += int64(n)
	return n, err
}

// readUpload reads r fully, failing once more than limit bytes arrive.
// A known size above the limit fails before anything is read.
func readUpload(r io.Reader, size, limit int64) ([]byte, error) {
	if limit > 0 && size > limit {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", ErrFileTooLarge, size, limit)
	}

	cr := &countingReader{reader: r}
	src := io.Reader(cr)
	if limit > 0 {
		src = io.LimitReader(cr, limit+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	if limit > 0 && cr.bytesRead > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, limit)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return data, nil
}
