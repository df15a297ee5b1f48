package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mwhite/chorechamp/internal/handler"
	"github.com/mwhite/chorechamp/internal/ledger"
	"github.com/mwhite/chorechamp/internal/middleware"
	"github.com/mwhite/chorechamp/internal/store"
	"github.com/mwhite/chorechamp/internal/suggest"
	ws "github.com/mwhite/chorechamp/internal/websocket"
)

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	personH     *handler.PersonHandler
	choreH      *handler.ChoreHandler
	assignmentH *handler.AssignmentHandler
	snapshotH   *handler.SnapshotHandler
	logger      *slog.Logger
}

func New(db *sql.DB, suggestSvc *suggest.Service, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	personStore := store.NewPersonStore(db)
	choreStore := store.NewChoreStore(db)
	assignmentStore := store.NewAssignmentStore(db)
	transactionStore := store.NewTransactionStore(db)
	snapshotStore := store.NewSnapshotStore(db)
	lgr := ledger.New(db)

	return &Server{
		db:  db,
		hub: hub,
		personH: handler.NewPersonHandler(
			personStore, choreStore, assignmentStore, transactionStore,
			lgr, hub, logger.With("component", "person"),
		),
		choreH:      handler.NewChoreHandler(choreStore, suggestSvc, hub, logger.With("component", "chore")),
		assignmentH: handler.NewAssignmentHandler(assignmentStore, lgr, hub, logger.With("component", "assignment")),
		snapshotH:   handler.NewSnapshotHandler(snapshotStore, hub, logger.With("component", "snapshot")),
		logger:      logger,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// People
	mux.HandleFunc("GET /api/people", s.personH.List)
	mux.HandleFunc("POST /api/people", s.personH.Create)
	mux.HandleFunc("DELETE /api/people/{id}", s.personH.Delete)
	mux.HandleFunc("GET /api/people/{id}/balance", s.personH.Balance)
	mux.HandleFunc("GET /api/people/{id}/tasks", s.personH.Tasks)
	mux.HandleFunc("GET /api/people/{id}/history", s.personH.History)
	mux.HandleFunc("POST /api/people/{id}/redeem", s.personH.Redeem)
	mux.HandleFunc("POST /api/people/{id}/pin", s.personH.SetPIN)
	mux.HandleFunc("DELETE /api/people/{id}/pin", s.personH.ClearPIN)

	// Chore library
	mux.HandleFunc("GET /api/chores", s.choreH.List)
	mux.HandleFunc("POST /api/chores", s.choreH.Create)
	mux.HandleFunc("DELETE /api/chores/{id}", s.choreH.Delete)
	mux.HandleFunc("GET /api/chores/suggestions", s.choreH.Suggestions)

	// Assignments
	mux.HandleFunc("GET /api/assignments", s.assignmentH.List)
	mux.HandleFunc("POST /api/assignments", s.assignmentH.Create)
	mux.HandleFunc("DELETE /api/assignments/{id}", s.assignmentH.Delete)
	mux.HandleFunc("POST /api/assignments/{id}/toggle", s.assignmentH.Toggle)
	mux.HandleFunc("POST /api/assignments/{id}/complete", s.assignmentH.Complete)

	// Snapshot export / restore
	mux.HandleFunc("GET /api/snapshot", s.snapshotH.Export)
	mux.HandleFunc("POST /api/snapshot", s.snapshotH.Restore)

	// WebSocket change notifications
	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "websocket")))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
