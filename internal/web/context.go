package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jules-12/card-creator-pro/internal/auth"
	"github.com/jules-12/card-creator-pro/internal/core"
	"github.com/jules-12/card-creator-pro/internal/web/middleware"
)

// maxJSONBody bounds JSON request bodies. Card sets carry up to
// EXPORT_MAX_CARDS records.
const maxJSONBody = 16 << 20

// decodeJSON reads the JSON body of r into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: body over %d bytes", core.ErrInvalidRequest, tooLarge.Limit)
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", core.ErrInvalidRequest)
		}
		return fmt.Errorf("%w: %v", core.ErrInvalidRequest, err)
	}
	return nil
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// optionalUser resolves the session of r without requiring one.
func (s *Server) optionalUser(r *http.Request) (auth.User, bool) {
	token := middleware.SessionToken(r)
	if token == "" {
		return auth.User{}, false
	}
	return s.auth.Lookup(token)
}
