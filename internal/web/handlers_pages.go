package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jules-12/card-creator-pro/internal/core"
	"github.com/jules-12/card-creator-pro/internal/logging"
	"github.com/jules-12/card-creator-pro/internal/sheet"
	"github.com/jules-12/card-creator-pro/internal/web/templates"
)

// handleIndex renders the login form or the import page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := templates.IndexData{
		Extensions:  sheet.Extensions,
		MaxFileSize: s.cfg.Import.MaxFileSize,
		DemoUsers:   s.cfg.Auth.DemoUsers,
	}

	if u, ok := s.optionalUser(r); ok {
		ctx := core.ContextWithUser(r.Context(), u)
		sets, err := s.service.ListCardSets(ctx)
		if err != nil {
			respondError(w, r, err)
			return
		}
		data.User = &u
		data.Sets = sets
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

// handleGallery renders the cards of a saved set. Anonymous visitors are
// sent to the login form.
func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	u, ok := s.optionalUser(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	ctx := core.ContextWithUser(r.Context(), u)
	set, err := s.service.GetCardSet(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Gallery(set, u.FullName).Render(ctx, w); err != nil {
		logging.FromContext(ctx).Error("render gallery", "error", err)
	}
}

type healthResponse struct {
	Status   string                   `json:"status"`
	Database string                   `json:"database"`
	Imports  core.ImportLimiterStatus `json:"imports"`
	Sessions int                      `json:"sessions"`
}

// handleHealth reports store reachability and import slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Database: "ok",
		Imports:  s.service.LimiterStatus(),
		Sessions: s.auth.ActiveSessions(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	if err := s.service.Ping(ctx); err != nil {
		logging.FromContext(ctx).Error("health check failed", "error", err)
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
