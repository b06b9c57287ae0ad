// Package websocket serves the notification socket. Browsers can't set an
// Authorization header on the upgrade request, so the access token rides in
// the ?token= query parameter.
package websocket

import (
	"log"
	"net/http"

	"carpool/infrastructure/ws"
	"carpool/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Handler struct {
	hub    ws.IHub
	authUc usecase.AuthUsecase
}

func NewHandler(hub ws.IHub, authUc usecase.AuthUsecase) *Handler {
	return &Handler{
		hub:    hub,
		authUc: authUc,
	}
}

// GET /ws/{userId}?token=
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userId := chi.URLParam(r, "userId")
	if userId == "" {
		http.Error(w, "Missing user ID", http.StatusBadRequest)
		return
	}

	claims, err := h.authUc.ValidateAccessToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}
	if claims.UserId != userId {
		http.Error(w, "Token does not match user", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Upgrade error: %v", err)
		return
	}

	client := ws.NewClient(userId, h.hub, conn)
	h.hub.RegisterClient(client)

	go client.WritePump()
	client.ReadPump()
}
