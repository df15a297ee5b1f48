package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mwhite/chorechamp/internal/model"
	"github.com/mwhite/chorechamp/internal/store"
	"github.com/mwhite/chorechamp/internal/suggest"
	"github.com/mwhite/chorechamp/internal/websocket"
)

type ChoreHandler struct {
	chores    *store.ChoreStore
	suggester *suggest.Service
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewChoreHandler(chores *store.ChoreStore, suggester *suggest.Service, hub *websocket.Hub, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{chores: chores, suggester: suggester, hub: hub, logger: logger}
}

func (h *ChoreHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type choreRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
	Icon        string `json:"icon"`
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req choreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	if req.Points < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "points must be >= 0"})
		return
	}

	chore, err := h.chores.Create(req.Title, req.Description, req.Points, req.Icon)
	if err != nil {
		h.logger.Error("create chore", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create chore"})
		return
	}

	h.broadcast(websocket.NewMessage("chore", "created", chore.ID, nil))
	writeJSON(w, http.StatusCreated, chore)
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	chores, err := h.chores.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list chores"})
		return
	}
	if chores == nil {
		chores = []model.Chore{}
	}
	writeJSON(w, http.StatusOK, chores)
}

func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.chores.Delete(id); err != nil {
		h.logger.Error("delete chore", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete chore"})
		return
	}

	h.broadcast(websocket.NewMessage("chore", "deleted", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Suggestions proposes new chore definitions from the suggestion service.
// An unconfigured or failing service yields an empty list, never an error.
func (h *ChoreHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	titles, err := h.chores.Titles()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list chores"})
		return
	}

	candidates := h.suggester.Suggest(r.Context(), titles)
	if candidates == nil {
		candidates = []suggest.Candidate{}
	}
	writeJSON(w, http.StatusOK, candidates)
}
