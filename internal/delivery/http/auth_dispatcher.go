package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"carpool/internal/entity"
	"carpool/internal/usecase"
)

// SupportedActions is the fixed, ordered set of auth actions. Echoed back to
// the caller on action-resolution errors.
var SupportedActions = []string{
	"login",
	"register",
	"refresh",
	"logout",
	"forgot-password",
	"reset-password",
	"change-password",
	"entra-login",
}

// registerFields are checked individually, in this order; the first missing
// one is named in the error message.
var registerFields = []string{"email", "firstName", "lastName", "role", "password"}

var (
	errNoAuthHeader  = errors.New("Authorization header is required")
	errBadAuthHeader = errors.New("Invalid authorization token")
)

type actionHandler func(w http.ResponseWriter, r *http.Request, body map[string]any)

// AuthDispatcher is the single auth endpoint. It multiplexes the supported
// actions by the ?action= query parameter, validates per-action required
// fields, and delegates to the auth usecase. Every outcome is normalized into
// the Envelope shape with the CORS header set.
type AuthDispatcher struct {
	authUc  usecase.AuthUsecase
	actions map[string]actionHandler
	devMode bool
}

func NewAuthDispatcher(authUc usecase.AuthUsecase, devMode bool) *AuthDispatcher {
	d := &AuthDispatcher{
		authUc:  authUc,
		devMode: devMode,
	}
	d.actions = map[string]actionHandler{
		"login":           d.handleLogin,
		"register":        d.handleRegister,
		"refresh":         d.handleRefresh,
		"logout":          d.handleLogout,
		"forgot-password": d.handleForgotPassword,
		"reset-password":  d.handleResetPassword,
		"change-password": d.handleChangePassword,
		"entra-login":     d.handleEntraLogin,
	}
	return d
}

// Dispatch handles POST /api/auth?action=... and the CORS preflight. Steps
// run in strict order; each failure is terminal.
func (d *AuthDispatcher) Dispatch(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("auth dispatch panic: %v", rec)
			envelope := Envelope{Success: false, Message: "Internal server error"}
			if d.devMode {
				envelope.Error = fmt.Sprint(rec)
			}
			writeJSON(w, http.StatusInternalServerError, envelope)
		}
	}()

	// Preflight short-circuits before any body parsing or action lookup.
	if r.Method == http.MethodOptions {
		writeCORS(w)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodPost {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed. Use POST.")
		return
	}

	action := strings.ToLower(r.URL.Query().Get("action"))
	if action == "" {
		writeJSON(w, http.StatusBadRequest, Envelope{
			Success:          false,
			Message:          "Action parameter is required. Use ?action=<name>.",
			SupportedActions: SupportedActions,
		})
		return
	}

	handler, ok := d.actions[action]
	if !ok {
		writeJSON(w, http.StatusBadRequest, Envelope{
			Success:          false,
			Message:          "Unknown action: " + action,
			SupportedActions: SupportedActions,
		})
		return
	}

	body, err := parseBody(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	handler(w, r, body)
}

// parseBody reads the request body into a generic parameter map. An absent or
// empty body is an empty map, never an error.
func parseBody(r *http.Request) (map[string]any, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}

func (d *AuthDispatcher) handleLogin(w http.ResponseWriter, r *http.Request, body map[string]any) {
	email := stringField(body, "email")
	password := stringField(body, "password")
	if email == "" || password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := d.authUc.Authenticate(r.Context(), entity.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		d.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "Login successful", Data: result})
}

func (d *AuthDispatcher) handleRegister(w http.ResponseWriter, r *http.Request, body map[string]any) {
	for _, field := range registerFields {
		if stringField(body, field) == "" {
			writeMessage(w, http.StatusBadRequest, "Missing required field: "+field)
			return
		}
	}

	result, err := d.authUc.Register(r.Context(), entity.RegisterRequest{
		Email:      stringField(body, "email"),
		FirstName:  stringField(body, "firstName"),
		LastName:   stringField(body, "lastName"),
		Role:       stringField(body, "role"),
		Password:   stringField(body, "password"),
		Phone:      stringField(body, "phone"),
		FamilyName: stringField(body, "familyName"),
	})
	if err != nil {
		d.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, Envelope{Success: true, Message: "Registration successful", Data: result})
}

func (d *AuthDispatcher) handleRefresh(w http.ResponseWriter, r *http.Request, body map[string]any) {
	token := stringField(body, "refreshToken")
	if token == "" {
		writeMessage(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	result, err := d.authUc.Refresh(r.Context(), token)
	if err != nil {
		d.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "Token refreshed successfully", Data: result})
}

func (d *AuthDispatcher) handleLogout(w http.ResponseWriter, r *http.Request, body map[string]any) {
	token := stringField(body, "token")
	if token == "" {
		writeMessage(w, http.StatusBadRequest, "Token is required for logout")
		return
	}

	// Revocation is best-effort; logout always reports success so clients
	// can drop their local state.
	if err := d.authUc.Logout(r.Context(), token); err != nil {
		log.Printf("Logout error: %v", err)
	}

	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "Logout successful"})
}

func (d *AuthDispatcher) handleForgotPassword(w http.ResponseWriter, r *http.Request, body map[string]any) {
	email := stringField(body, "email")
	if email == "" {
		writeMessage(w, http.StatusBadRequest, "Email is required")
		return
	}

	ticket, err := d.authUc.RequestPasswordReset(r.Context(), email)
	if err != nil {
		d.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "Password reset requested", Data: ticket})
}

func (d *AuthDispatcher) handleResetPassword(w http.ResponseWriter, r *http.Request, body map[string]any) {
	token := stringField(body, "token")
	newPassword := stringField(body, "newPassword")
	if token == "" || newPassword == "" {
		writeMessage(w, http.StatusBadRequest, "Reset token and new password are required")
		return
	}

	if err := d.authUc.ResetPassword(r.Context(), token, newPassword); err != nil {
		d.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "Password reset successful"})
}

func (d *AuthDispatcher) handleChangePassword(w http.ResponseWriter, r *http.Request, body map[string]any) {
	currentPassword := stringField(body, "currentPassword")
	newPassword := stringField(body, "newPassword")
	if currentPassword == "" || newPassword == "" {
		writeMessage(w, http.StatusBadRequest, "Current password and new password are required")
		return
	}

	token, err := bearerToken(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := d.authUc.ChangePassword(r.Context(), token, currentPassword, newPassword); err != nil {
		d.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "Password changed successfully"})
}

func (d *AuthDispatcher) handleEntraLogin(w http.ResponseWriter, r *http.Request, body map[string]any) {
	accessToken := stringField(body, "accessToken")
	if accessToken == "" {
		writeMessage(w, http.StatusBadRequest, "Access token is required for Entra authentication")
		return
	}

	result, err := d.authUc.EntraLogin(r.Context(), accessToken)
	if err != nil {
		d.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: "Login successful", Data: result})
}

// writeAuthError reports a collaborator failure. Domain rejections carry the
// collaborator's message verbatim; anything unrecognized is the single fatal
// path and stays generic outside dev mode.
func (d *AuthDispatcher) writeAuthError(w http.ResponseWriter, err error) {
	status := statusForAuthError(err)
	if status == http.StatusInternalServerError {
		log.Printf("auth action error: %v", err)
		envelope := Envelope{Success: false, Message: "Internal server error"}
		if d.devMode {
			envelope.Error = err.Error()
		}
		writeJSON(w, status, envelope)
		return
	}

	writeMessage(w, status, err.Error())
}

func stringField(body map[string]any, key string) string {
	if v, ok := body[key].(string); ok {
		return v
	}
	return ""
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errNoAuthHeader
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errBadAuthHeader
	}

	return parts[1], nil
}
