package handler

import (
	"log/slog"
	"net/http"

	"github.com/mwhite/chorechamp/internal/store"
	"github.com/mwhite/chorechamp/internal/websocket"
)

type SnapshotHandler struct {
	snapshots *store.SnapshotStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewSnapshotHandler(snapshots *store.SnapshotStore, hub *websocket.Hub, logger *slog.Logger) *SnapshotHandler {
	return &SnapshotHandler{snapshots: snapshots, hub: hub, logger: logger}
}

// Export writes the full state as one JSON document.
func (h *SnapshotHandler) Export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshots.Export()
	if err != nil {
		h.logger.Error("export snapshot", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to export snapshot"})
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="chorechamp-snapshot.json"`)
	writeJSON(w, http.StatusOK, snap)
}

// Restore replaces the full state with the posted snapshot. Collections that
// are missing or do not parse restore as empty rather than failing the whole
// document.
func (h *SnapshotHandler) Restore(w http.ResponseWriter, r *http.Request) {
	snap := store.DecodeSnapshot(r.Body)

	if err := h.snapshots.Import(snap); err != nil {
		h.logger.Error("restore snapshot", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to restore snapshot"})
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("snapshot", "restored", 0, map[string]any{
			"people":       len(snap.People),
			"chores":       len(snap.Chores),
			"assignments":  len(snap.Assignments),
			"transactions": len(snap.Transactions),
		}))
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}
