package http

import (
	"encoding/json"
	"log"
	"net/http"

	"carpool/internal/entity"
	"carpool/internal/usecase"

	"github.com/go-chi/chi/v5"
)

// HttpHandler serves the bearer-protected carpool REST surface.
type HttpHandler struct {
	groupUc        usecase.GroupUsecase
	prefUc         usecase.PreferenceUsecase
	scheduleUc     usecase.ScheduleUsecase
	notificationUc usecase.NotificationUsecase
	userUc         usecase.UserUsecase
}

func NewHttpHandler(
	groupUc usecase.GroupUsecase,
	prefUc usecase.PreferenceUsecase,
	scheduleUc usecase.ScheduleUsecase,
	notificationUc usecase.NotificationUsecase,
	userUc usecase.UserUsecase,
) *HttpHandler {
	return &HttpHandler{
		groupUc:        groupUc,
		prefUc:         prefUc,
		scheduleUc:     scheduleUc,
		notificationUc: notificationUc,
		userUc:         userUc,
	}
}

func (h *HttpHandler) writeError(w http.ResponseWriter, err error) {
	status := statusForRestError(err)
	if status == http.StatusInternalServerError {
		log.Printf("handler error: %v", err)
		writeMessage(w, status, "internal server error")
		return
	}
	writeMessage(w, status, err.Error())
}

// POST /api/groups
func (h *HttpHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Name   string `json:"name"`
		School string `json:"school"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.School == "" {
		writeMessage(w, http.StatusBadRequest, "name and school are required")
		return
	}

	group, err := h.groupUc.Create(r.Context(), req.Name, req.School, claims.UserId)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, Envelope{Success: true, Message: "Group created", Data: group})
}

// GET /api/groups
func (h *HttpHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	groups, err := h.groupUc.ListForUser(r.Context(), claims.UserId)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "success", Data: groups})
}

// GET /api/groups/{groupId}
func (h *HttpHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	group, err := h.groupUc.Get(r.Context(), chi.URLParam(r, "groupId"), claims.UserId)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "success", Data: group})
}

// POST /api/groups/{groupId}/join
func (h *HttpHandler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		InviteCode string `json:"inviteCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InviteCode == "" {
		writeMessage(w, http.StatusBadRequest, "inviteCode is required")
		return
	}

	err := h.groupUc.RequestJoin(r.Context(), chi.URLParam(r, "groupId"), claims.UserId, req.InviteCode)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Join request submitted")
}

// POST /api/groups/join — invite-link flow, the code identifies the group.
func (h *HttpHandler) JoinGroupByCode(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		InviteCode string `json:"inviteCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InviteCode == "" {
		writeMessage(w, http.StatusBadRequest, "inviteCode is required")
		return
	}

	if err := h.groupUc.RequestJoinByCode(r.Context(), claims.UserId, req.InviteCode); err != nil {
		h.writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Join request submitted")
}

// POST /api/groups/{groupId}/members/{userId}/approve
func (h *HttpHandler) ApproveMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := h.groupUc.ApproveMember(r.Context(), chi.URLParam(r, "groupId"), claims.UserId, chi.URLParam(r, "userId"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Member approved")
}

// PUT /api/groups/{groupId}/preferences
func (h *HttpHandler) SubmitPreferences(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		WeekStartDate string            `json:"weekStartDate"`
		Slots         map[string]string `json:"slots"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.WeekStartDate == "" || len(req.Slots) == 0 {
		writeMessage(w, http.StatusBadRequest, "weekStartDate and slots are required")
		return
	}

	err := h.prefUc.Submit(r.Context(), chi.URLParam(r, "groupId"), claims.UserId, req.WeekStartDate, req.Slots)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Preferences submitted")
}

// GET /api/groups/{groupId}/preferences?week=
func (h *HttpHandler) ListPreferences(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	prefs, err := h.prefUc.List(r.Context(), chi.URLParam(r, "groupId"), claims.UserId, r.URL.Query().Get("week"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "success", Data: prefs})
}

// POST /api/groups/{groupId}/schedule/generate?week=
func (h *HttpHandler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	schedule, err := h.scheduleUc.Generate(r.Context(), chi.URLParam(r, "groupId"), claims.UserId, r.URL.Query().Get("week"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "Schedule generated", Data: schedule})
}

// POST /api/schedules/{scheduleId}/activate
func (h *HttpHandler) ActivateSchedule(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	schedule, err := h.scheduleUc.Activate(r.Context(), chi.URLParam(r, "scheduleId"), claims.UserId)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "Schedule activated", Data: schedule})
}

// GET /api/groups/{groupId}/schedule?week=
func (h *HttpHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	schedule, err := h.scheduleUc.Get(r.Context(), chi.URLParam(r, "groupId"), claims.UserId, r.URL.Query().Get("week"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "success", Data: schedule})
}

// GET /api/notifications
func (h *HttpHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	notifications, err := h.notificationUc.ListForUser(r.Context(), claims.UserId, 50)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "success", Data: notifications})
}

// POST /api/notifications/{notificationId}/read
func (h *HttpHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := h.notificationUc.MarkRead(r.Context(), chi.URLParam(r, "notificationId"), claims.UserId)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Notification marked as read")
}

// GET /api/family
func (h *HttpHandler) GetFamily(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	family, err := h.userUc.GetFamily(r.Context(), claims.UserId)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "success", Data: family})
}

// POST /api/family/{familyId}/join
func (h *HttpHandler) JoinFamily(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.userUc.JoinFamily(r.Context(), claims.UserId, chi.URLParam(r, "familyId")); err != nil {
		h.writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Joined family")
}

// PUT /api/family/children
func (h *HttpHandler) SetChildren(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Children []entity.Child `json:"children"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.userUc.SetChildren(r.Context(), claims.UserId, req.Children); err != nil {
		h.writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Children updated")
}
