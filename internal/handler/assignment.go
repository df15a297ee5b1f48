package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mwhite/chorechamp/internal/ledger"
	"github.com/mwhite/chorechamp/internal/model"
	"github.com/mwhite/chorechamp/internal/store"
	"github.com/mwhite/chorechamp/internal/websocket"
)

type AssignmentHandler struct {
	assignments *store.AssignmentStore
	ledger      *ledger.Ledger
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewAssignmentHandler(assignments *store.AssignmentStore, lgr *ledger.Ledger, hub *websocket.Hub, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, ledger: lgr, hub: hub, logger: logger}
}

func (h *AssignmentHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type assignmentRequest struct {
	ChoreID   int64           `json:"chore_id"`
	PersonID  int64           `json:"person_id"`
	Frequency model.Frequency `json:"frequency"`
	DueDate   *string         `json:"due_date"`
	IsActive  *bool           `json:"is_active"`
}

func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if !req.Frequency.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "frequency must be ONCE, DAILY, or WEEKLY"})
		return
	}
	if req.DueDate != nil {
		if _, err := time.Parse("2006-01-02", *req.DueDate); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "due_date must be YYYY-MM-DD"})
			return
		}
	}

	// Chore and person references are not verified here: the assignment is
	// simply filtered out wherever it is joined with a missing entity.
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	assignment, err := h.assignments.Create(req.ChoreID, req.PersonID, req.Frequency, req.DueDate, active)
	if err != nil {
		h.logger.Error("create assignment", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create assignment"})
		return
	}

	h.broadcast(websocket.NewMessage("assignment", "created", assignment.ID, nil))
	writeJSON(w, http.StatusCreated, assignment)
}

func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.assignments.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list assignments"})
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.assignments.Delete(id); err != nil {
		h.logger.Error("delete assignment", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete assignment"})
		return
	}

	h.broadcast(websocket.NewMessage("assignment", "deleted", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *AssignmentHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	assignment, err := h.assignments.Toggle(id)
	if err != nil {
		h.logger.Error("toggle assignment", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to toggle assignment"})
		return
	}
	if assignment == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "assignment not found"})
		return
	}

	h.broadcast(websocket.NewMessage("assignment", "toggled", id, nil))
	writeJSON(w, http.StatusOK, assignment)
}

// Complete runs the earn operation: points to the person, completion stamp
// on the assignment, EARN entry in the ledger — atomically.
func (h *AssignmentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	record, err := h.ledger.CompleteChore(id, time.Now())
	if errors.Is(err, ledger.ErrAssignmentInactive) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "assignment is inactive"})
		return
	}
	if err != nil {
		h.logger.Error("complete chore", "assignment_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to complete chore"})
		return
	}
	if record == nil {
		// Assignment, chore, or person no longer resolves.
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "assignment not found"})
		return
	}

	h.broadcast(websocket.NewMessage("assignment", "completed", id, map[string]any{
		"person_id":      record.PersonID,
		"transaction_id": record.ID,
	}))
	writeJSON(w, http.StatusCreated, record)
}
