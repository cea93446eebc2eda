// Package api implements the HTTP handlers of the user directory server.
// Access control is not decided here — the per-route guards in
// internal/middleware run before these handlers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pageguard/internal/domain"
	"pageguard/internal/middleware"
	"pageguard/internal/service"
)

// Handler bundles the HTTP handlers with their backing services.
type Handler struct {
	users *service.UserService
	audit *service.AuditService
	keys  *service.APIKeyService
}

// NewHandler creates a new Handler.
func NewHandler(users *service.UserService, audit *service.AuditService, keys *service.APIKeyService) *Handler {
	return &Handler{users: users, audit: audit, keys: keys}
}

// userResponse is the JSON shape of a user record.
type userResponse struct {
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Staff     bool      `json:"is_staff"`
	Superuser bool      `json:"is_superuser"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		Username:  u.Username,
		Email:     u.Email,
		Staff:     u.Staff,
		Superuser: u.Superuser,
		CreatedAt: u.CreatedAt,
	}
}

// GetProfile serves a user's profile page (guarded: owner or staff).
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	u, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// GetSettings serves a user's settings page (guarded: owner only).
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	u, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"username": u.Username,
		"email":    u.Email,
	})
}

// ListUsers lists all users (guarded: staff only).
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, total, err := h.users.List(r.Context(), pageFromQuery(r))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]userResponse, len(users))
	for i := range users {
		resp[i] = toUserResponse(&users[i])
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users": resp,
		"total": total,
	})
}

// createUserRequest is the JSON body accepted by CreateUser.
type createUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Staff     bool   `json:"is_staff"`
	Superuser bool   `json:"is_superuser"`
}

// CreateUser registers a new user (guarded: staff only).
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(http.StatusBadRequest, "invalid JSON body"))
		return
	}
	created, err := h.users.Create(r.Context(), actorName(r), &domain.User{
		Username:  req.Username,
		Email:     req.Email,
		Staff:     req.Staff,
		Superuser: req.Superuser,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(created))
}

// DeleteUser removes a user (guarded: superuser only).
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.users.Delete(r.Context(), actorName(r), username); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apiKeyResponse is the JSON shape of an API key record. The raw key value
// appears only in the creation response.
type apiKeyResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	KeyPrefix string     `json:"key_prefix"`
	Key       string     `json:"key,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toAPIKeyResponse(k *domain.APIKey) apiKeyResponse {
	return apiKeyResponse{
		ID:        k.ID,
		Name:      k.Name,
		KeyPrefix: k.KeyPrefix,
		ExpiresAt: k.ExpiresAt,
		CreatedAt: k.CreatedAt,
	}
}

// createAPIKeyRequest is the JSON body accepted by CreateAPIKey.
type createAPIKeyRequest struct {
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CreateAPIKey mints an API key for the page owner (guarded: owner only).
func (h *Handler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req createAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(http.StatusBadRequest, "invalid JSON body"))
		return
	}

	username := chi.URLParam(r, "username")
	rawKey, key, err := h.keys.Create(r.Context(), actorName(r), username, req.Name, req.ExpiresAt)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := toAPIKeyResponse(key)
	resp.Key = rawKey
	writeJSON(w, http.StatusCreated, resp)
}

// ListAPIKeys lists the page owner's API keys (guarded: owner only).
func (h *Handler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keys.List(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]apiKeyResponse, len(keys))
	for i := range keys {
		resp[i] = toAPIKeyResponse(&keys[i])
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"keys": resp})
}

// DeleteAPIKey revokes one of the page owner's API keys (guarded: owner only).
func (h *Handler) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.keys.Delete(r.Context(), actorName(r), username, chi.URLParam(r, "keyID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// auditEntryResponse is the JSON shape of an audit log record.
type auditEntryResponse struct {
	ID        string    `json:"id"`
	Principal string    `json:"principal"`
	Action    string    `json:"action"`
	Path      string    `json:"path,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ListAudit lists audit entries (guarded: staff only).
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	filter := domain.AuditFilter{Page: pageFromQuery(r)}
	if v := r.URL.Query().Get("principal"); v != "" {
		filter.Principal = &v
	}
	if v := r.URL.Query().Get("action"); v != "" {
		filter.Action = &v
	}

	entries, total, err := h.audit.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]auditEntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = auditEntryResponse{
			ID:        e.ID,
			Principal: e.Principal,
			Action:    e.Action,
			Path:      e.Path,
			Status:    e.Status,
			CreatedAt: e.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": resp,
		"total":   total,
	})
}

// Healthz reports liveness. Public.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// actorName returns the authenticated principal's identifier for audit
// attribution.
func actorName(r *http.Request) string {
	return middleware.PrincipalFromContext(r.Context()).Identifier
}

func pageFromQuery(r *http.Request) domain.PageRequest {
	var page domain.PageRequest
	if v := r.URL.Query().Get("max_results"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page.MaxResults = n
		}
	}
	if v := r.URL.Query().Get("page_token"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page.PageToken = n
		}
	}
	return page
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errorBody(code int, message string) map[string]interface{} {
	return map[string]interface{}{"code": code, "message": message}
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		notFound   *domain.NotFoundError
		validation *domain.ValidationError
		conflict   *domain.ConflictError
	)
	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorBody(http.StatusNotFound, notFound.Message))
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorBody(http.StatusBadRequest, validation.Message))
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorBody(http.StatusConflict, conflict.Message))
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody(http.StatusInternalServerError, "internal error"))
	}
}
