package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mwhite/chorechamp/internal/ledger"
	"github.com/mwhite/chorechamp/internal/model"
	"github.com/mwhite/chorechamp/internal/schedule"
	"github.com/mwhite/chorechamp/internal/store"
	"github.com/mwhite/chorechamp/internal/websocket"
)

type PersonHandler struct {
	people       *store.PersonStore
	chores       *store.ChoreStore
	assignments  *store.AssignmentStore
	transactions *store.TransactionStore
	ledger       *ledger.Ledger
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewPersonHandler(
	people *store.PersonStore,
	chores *store.ChoreStore,
	assignments *store.AssignmentStore,
	transactions *store.TransactionStore,
	lgr *ledger.Ledger,
	hub *websocket.Hub,
	logger *slog.Logger,
) *PersonHandler {
	return &PersonHandler{
		people:       people,
		chores:       chores,
		assignments:  assignments,
		transactions: transactions,
		ledger:       lgr,
		hub:          hub,
		logger:       logger,
	}
}

func (h *PersonHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	people, err := h.people.List()
	if err != nil {
		h.logger.Error("list people", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list people"})
		return
	}
	if people == nil {
		people = []model.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

func (h *PersonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	person, err := h.people.Create(req.Name)
	if err != nil {
		h.logger.Error("create person", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create person"})
		return
	}

	h.broadcast(websocket.NewMessage("person", "created", person.ID, nil))
	writeJSON(w, http.StatusCreated, person)
}

func (h *PersonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.people.Delete(id); err != nil {
		h.logger.Error("delete person", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete person"})
		return
	}

	h.broadcast(websocket.NewMessage("person", "deleted", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Balance reports a person's stored balance alongside the ledger totals it
// must equal.
func (h *PersonHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	person, err := h.people.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get person"})
		return
	}
	if person == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "person not found"})
		return
	}

	earned, spent, err := h.transactions.PointTotals(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to compute totals"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"person_id":    id,
		"balance":      person.Balance,
		"total_earned": earned,
		"total_spent":  spent,
	})
}

// Tasks lists the assignments currently due for a person, joined with their
// chores and ordered for display.
func (h *PersonHandler) Tasks(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	assignments, err := h.assignments.ListByPerson(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list assignments"})
		return
	}
	chores, err := h.chores.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list chores"})
		return
	}

	tasks := schedule.AvailableTasks(assignments, chores, id, time.Now())
	if tasks == nil {
		tasks = []schedule.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *PersonHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	transactions, err := h.transactions.ListByPerson(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list transactions"})
		return
	}
	if transactions == nil {
		transactions = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactions)
}

// Redeem spends points. When the person has a PIN set, the request must
// carry it.
func (h *PersonHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Amount      int    `json:"amount"`
		Description string `json:"description"`
		PIN         string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "description is required"})
		return
	}

	hash, err := h.people.GetPINHash(id)
	if err == nil && hash != "" {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)) != nil {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "incorrect PIN"})
			return
		}
	}

	record, err := h.ledger.RedeemPoints(id, req.Amount, req.Description, time.Now())
	switch {
	case errors.Is(err, ledger.ErrPersonNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "person not found"})
		return
	case errors.Is(err, ledger.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be positive"})
		return
	case errors.Is(err, ledger.ErrInsufficientBalance):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "insufficient balance"})
		return
	case err != nil:
		h.logger.Error("redeem points", "person_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to redeem points"})
		return
	}

	h.broadcast(websocket.NewMessage("transaction", "redeemed", record.ID, map[string]any{"person_id": id}))
	writeJSON(w, http.StatusCreated, record)
}

func (h *PersonHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(req.PIN) < 4 || !isDigits(req.PIN) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "PIN must be at least 4 digits"})
		return
	}

	person, err := h.people.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get person"})
		return
	}
	if person == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "person not found"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to hash PIN"})
		return
	}
	if err := h.people.SetPIN(id, string(hash)); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to set PIN"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "pin set"})
}

func (h *PersonHandler) ClearPIN(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	if err := h.people.ClearPIN(id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear PIN"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "pin cleared"})
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
