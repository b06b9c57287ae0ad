package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"carpool/internal/repository"
	"carpool/internal/usecase"
)

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message"`
	Data             any      `json:"data,omitempty"`
	SupportedActions []string `json:"supportedActions,omitempty"`
	Error            string   `json:"error,omitempty"` // only outside production
}

// writeCORS attaches the CORS header set carried by every response,
// preflight included.
func writeCORS(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	h.Set("Access-Control-Max-Age", "86400")
}

func writeJSON(w http.ResponseWriter, status int, envelope Envelope) {
	writeCORS(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: status < 400, Message: message})
}

// statusForAuthError maps collaborator errors to HTTP status. Credential and
// token failures are 401, duplicate registration is 409, other recognized
// rejections are 400; anything unrecognized is an internal error.
func statusForAuthError(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrInvalidRefreshToken),
		errors.Is(err, usecase.ErrExpiredRefreshToken),
		errors.Is(err, usecase.ErrRevokedRefreshToken),
		errors.Is(err, usecase.ErrInvalidAccessToken):
		return http.StatusUnauthorized
	case errors.Is(err, usecase.ErrEmailAlreadyTaken):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrInvalidRole),
		errors.Is(err, usecase.ErrWeakPassword),
		errors.Is(err, usecase.ErrInvalidResetToken),
		errors.Is(err, usecase.ErrEntraTokenInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// statusForRestError maps usecase/repository errors on the REST surface.
func statusForRestError(err error) int {
	switch {
	case errors.Is(err, repository.ErrGroupNotFound),
		errors.Is(err, repository.ErrScheduleNotFound),
		errors.Is(err, repository.ErrNotificationNotFound),
		errors.Is(err, repository.ErrFamilyNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, usecase.ErrNoFamily):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrNotGroupAdmin),
		errors.Is(err, usecase.ErrNotGroupMember),
		errors.Is(err, usecase.ErrNotNotificationOwner):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrInvalidWeek),
		errors.Is(err, usecase.ErrInvalidSlots),
		errors.Is(err, usecase.ErrInvalidInvite),
		errors.Is(err, usecase.ErrAlreadyMember),
		errors.Is(err, usecase.ErrAlreadyRequested),
		errors.Is(err, usecase.ErrNoJoinRequest),
		errors.Is(err, usecase.ErrAlreadyInFamily),
		errors.Is(err, usecase.ErrScheduleNotDraft):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
