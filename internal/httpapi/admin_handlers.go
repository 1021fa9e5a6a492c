package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"crewdesk.org/internal/audit"
	"crewdesk.org/internal/auth"
	"crewdesk.org/internal/obs"
	"crewdesk.org/internal/stream"
	"crewdesk.org/internal/useradmin"
)

type adminResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId,omitempty"`
}

// handleAdminUsers is the single privileged entry point. The request carries
// an action discriminator; the caller's tenant and role are resolved from the
// store, never from the payload.
func (a *API) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if a.admin == nil {
		writeError(w, r, http.StatusServiceUnavailable, "admin service unavailable")
		return
	}

	callerID, ok := auth.CallerFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing caller identity")
		return
	}

	var req useradmin.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	cmd, err := useradmin.ParseCommand(req)
	if err != nil {
		a.writeAdminError(w, r, "parse", err)
		return
	}

	result, err := a.admin.Execute(r.Context(), callerID, cmd)
	if err != nil {
		a.writeAdminError(w, r, cmd.Action(), err)
		return
	}

	obs.ObserveAdminAction(cmd.Action(), "ok")
	event := "admin.users." + cmd.Action()
	fields := auditFields(cmd, result)
	_ = audit.LogEvent(r.Context(), event, fields)
	a.publishEvent(r, event, callerID, fields)
	writeJSON(w, http.StatusOK, adminResponse{Success: true, UserID: result.UserID})
}

// writeAdminError maps the domain error taxonomy to HTTP statuses. Unexpected
// failures reach the caller as a generic message only; the detail is logged
// server-side.
func (a *API) writeAdminError(w http.ResponseWriter, r *http.Request, action string, err error) {
	var vErr *useradmin.ValidationError
	switch {
	case errors.As(err, &vErr):
		obs.ObserveAdminAction(action, "validation")
		writeErrorDetails(w, r, http.StatusBadRequest, "validation failed", fieldDetails(vErr))
	case errors.Is(err, useradmin.ErrInvalidInput):
		obs.ObserveAdminAction(action, "validation")
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, useradmin.ErrUnauthenticated):
		obs.ObserveAdminAction(action, "unauthenticated")
		writeError(w, r, http.StatusUnauthorized, "invalid caller credential")
	case errors.Is(err, useradmin.ErrForbidden):
		obs.ObserveAdminAction(action, "forbidden")
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, useradmin.ErrNotFound):
		obs.ObserveAdminAction(action, "not_found")
		writeError(w, r, http.StatusNotFound, "target not found")
	case errors.Is(err, useradmin.ErrConflict):
		obs.ObserveAdminAction(action, "conflict")
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		obs.ObserveAdminAction(action, "error")
		obs.LogError("admin action failed", err, map[string]any{
			"action":     action,
			"request_id": audit.RequestIDFromContext(r.Context()),
		})
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func (a *API) publishEvent(r *http.Request, event, userID string, fields map[string]any) {
	if a.events == nil {
		return
	}
	a.events.Publish(stream.Event{
		Event:     event,
		RequestID: audit.RequestIDFromContext(r.Context()),
		UserID:    userID,
		Fields:    fields,
	})
}

func fieldDetails(vErr *useradmin.ValidationError) string {
	msgs := make([]string, 0, len(vErr.Fields))
	for _, f := range vErr.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return strings.Join(msgs, "; ")
}

func auditFields(cmd useradmin.Command, result useradmin.Result) map[string]any {
	fields := map[string]any{"action": cmd.Action()}
	switch c := cmd.(type) {
	case useradmin.CreateUser:
		fields["email"] = c.Email
		fields["role"] = c.Role.String()
		fields["user_id"] = result.UserID
	case useradmin.UpdateRole:
		fields["target_user_id"] = c.UserID
		fields["new_role"] = c.NewRole.String()
	case useradmin.ToggleActive:
		fields["profile_id"] = c.ProfileID
		fields["is_active"] = c.IsActive
	case useradmin.DeleteUser:
		fields["target_user_id"] = c.UserID
	case useradmin.UpdateProfile:
		fields["profile_id"] = c.ProfileID
	}
	return fields
}
