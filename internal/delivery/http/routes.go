package http

import (
	wsDelivery "carpool/internal/delivery/websocket"

	"github.com/go-chi/chi/v5"
)

func MapHttpRoutes(
	r *chi.Mux,
	httpHandler *HttpHandler,
	websocketHandler *wsDelivery.Handler,
	dispatcher *AuthDispatcher,
	authMiddleware *AuthMiddleware,
	healthHandler *HealthHandler,
) {
	r.Use(CORS)

	// The auth endpoint gates its own methods (OPTIONS preflight, POST, 405).
	r.HandleFunc("/api/auth", dispatcher.Dispatch)

	r.Get("/health", healthHandler.Health)
	r.Get("/ws/{userId}", websocketHandler.HandleWebSocket)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Route("/api/groups", func(r chi.Router) {
			r.Post("/", httpHandler.CreateGroup)
			r.Get("/", httpHandler.ListGroups)
			r.Post("/join", httpHandler.JoinGroupByCode)

			r.Route("/{groupId}", func(r chi.Router) {
				r.Get("/", httpHandler.GetGroup)
				r.Post("/join", httpHandler.JoinGroup)
				r.Post("/members/{userId}/approve", httpHandler.ApproveMember)
				r.Put("/preferences", httpHandler.SubmitPreferences)
				r.Get("/preferences", httpHandler.ListPreferences)
				r.Post("/schedule/generate", httpHandler.GenerateSchedule)
				r.Get("/schedule", httpHandler.GetSchedule)
			})
		})

		r.Post("/api/schedules/{scheduleId}/activate", httpHandler.ActivateSchedule)

		r.Get("/api/notifications", httpHandler.ListNotifications)
		r.Post("/api/notifications/{notificationId}/read", httpHandler.MarkNotificationRead)

		r.Get("/api/family", httpHandler.GetFamily)
		r.Post("/api/family/{familyId}/join", httpHandler.JoinFamily)
		r.Put("/api/family/children", httpHandler.SetChildren)
	})
}
