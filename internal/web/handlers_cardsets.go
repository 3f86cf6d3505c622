package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jules-12/card-creator-pro/internal/core"
	"github.com/jules-12/card-creator-pro/internal/extract"
)

type createCardSetRequest struct {
	Name    string                      `json:"name"`
	Records []extract.ContributorRecord `json:"cards"`
}

func (s *Server) handleListCardSets(w http.ResponseWriter, r *http.Request) {
	sets, err := s.service.ListCardSets(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sets)
}

func (s *Server) handleCreateCardSet(w http.ResponseWriter, r *http.Request) {
	var req createCardSetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	set, err := s.service.CreateCardSet(r.Context(), req.Name, req.Records)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleGetCardSet(w http.ResponseWriter, r *http.Request) {
	set, err := s.service.GetCardSet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleUpdateCardSet(w http.ResponseWriter, r *http.Request) {
	var upd core.CardSetUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		respondError(w, r, err)
		return
	}

	set, err := s.service.UpdateCardSet(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleDeleteCardSet(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteCardSet(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
