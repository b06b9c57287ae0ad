package http

import (
	"context"
	"net/http"

	"carpool/infrastructure/ws"
)

// Pinger reports storage liveness. Implemented by db.MongoStore.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db  Pinger
	hub ws.IHub
}

func NewHealthHandler(db Pinger, hub ws.IHub) *HealthHandler {
	return &HealthHandler{
		db:  db,
		hub: hub,
	}
}

// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		writeMessage(w, http.StatusServiceUnavailable, "Database unreachable")
		return
	}

	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "OK", Data: map[string]int{
		"connectedClients": h.hub.GetClientCount(),
	}})
}
