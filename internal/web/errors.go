package web

// errors.go turns errors into HTTP responses.
//
// The technical error is logged with the request id; the client receives
// the mapped core.UserMessage as JSON for API calls and as an HTML page or
// fragment for browser navigation.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jules-12/card-creator-pro/internal/auth"
	"github.com/jules-12/card-creator-pro/internal/card"
	"github.com/jules-12/card-creator-pro/internal/core"
	"github.com/jules-12/card-creator-pro/internal/logging"
	"github.com/jules-12/card-creator-pro/internal/sheet"
	"github.com/jules-12/card-creator-pro/internal/web/templates"
)

// ErrorResponse is the JSON body of API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

var errorStatuses = []struct {
	target error
	status int
}{
	{core.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{sheet.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
	{sheet.ErrDecode, http.StatusUnprocessableEntity},
	{core.ErrEmptyFile, http.StatusUnprocessableEntity},
	{core.ErrNoFile, http.StatusBadRequest},
	{core.ErrRead, http.StatusBadRequest},
	{core.ErrTooManyImports, http.StatusServiceUnavailable},
	{core.ErrImportInProgress, http.StatusConflict},
	{core.ErrCardSetNotFound, http.StatusNotFound},
	{core.ErrCardNotFound, http.StatusNotFound},
	{core.ErrNameRequired, http.StatusBadRequest},
	{core.ErrInvalidRequest, http.StatusBadRequest},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
	{auth.ErrUnauthenticated, http.StatusUnauthorized},
	{auth.ErrEmailTaken, http.StatusConflict},
	{auth.ErrInvalidInput, http.StatusBadRequest},
	{card.ErrNothingToExport, http.StatusUnprocessableEntity},
	{card.ErrTooManyCards, http.StatusRequestEntityTooLarge},
	{errRateLimited, http.StatusTooManyRequests},
	{context.DeadlineExceeded, http.StatusGatewayTimeout},
	{context.Canceled, http.StatusRequestTimeout},
}

// statusFor picks the HTTP status of err.
func statusFor(err error) int {
	for _, es := range errorStatuses {
		if errors.Is(err, es.target) {
			return es.status
		}
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes the user-facing message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = templates.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w)
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, status)
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = templates.ErrorPage(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w)
	}
}

func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client expects a JSON error body.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
