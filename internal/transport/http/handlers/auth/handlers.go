package authhandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"rrhh/internal/domain/audit"
	"rrhh/internal/domain/auth"
	"rrhh/internal/transport/http/api"
	"rrhh/internal/transport/http/middleware"
	"rrhh/internal/transport/http/shared"
)

type Handler struct {
	Service *auth.Service
	Audit   audit.Recorder
}

func NewHandler(service *auth.Service, recorder audit.Recorder) *Handler {
	return &Handler{Service: service, Audit: recorder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.With(middleware.RequireAdmin).Post("/register", h.handleRegister)
		r.With(middleware.RequireAuth).Get("/me", h.handleMe)
		r.With(middleware.RequireAuth).Put("/change-password", h.handleChangePassword)
	})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if !shared.DecodeJSON(w, r, requestID, &payload) {
		return
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if !shared.ValidateStruct(w, requestID, payload) {
		return
	}

	result, err := h.Service.Login(r.Context(), payload.Username, payload.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", requestID)
		return
	case errors.Is(err, auth.ErrUserInactive):
		api.Fail(w, http.StatusUnauthorized, "user_inactive", "user inactive", requestID)
		return
	case err != nil:
		slog.Error("login failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", requestID)
		return
	}
	audit.Log(r.Context(), h.Audit, result.User.ID, "auth.login", "user", result.User.ID, nil, nil)
	api.Success(w, result, requestID)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	actor, _ := middleware.GetUser(r.Context())

	var payload auth.RegisterInput
	if !shared.DecodeJSON(w, r, requestID, &payload) {
		return
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if !shared.ValidateStruct(w, requestID, payload) {
		return
	}

	user, err := h.Service.Register(r.Context(), payload)
	switch {
	case errors.Is(err, auth.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
		return
	case errors.Is(err, auth.ErrUsernameTaken):
		api.Fail(w, http.StatusBadRequest, "username_taken", "username already exists", requestID)
		return
	case err != nil:
		slog.Error("register user failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "register_failed", "failed to register user", requestID)
		return
	}
	audit.Log(r.Context(), h.Audit, actor.UserID, "user.create", "user", user.ID, nil, user)
	api.Created(w, user, requestID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	profile, err := h.Service.Me(r.Context(), user.UserID)
	if errors.Is(err, auth.ErrUserNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
		return
	}
	if err != nil {
		slog.Error("load profile failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "profile_failed", "failed to load profile", requestID)
		return
	}
	api.Success(w, profile, requestID)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload changePasswordRequest
	if !shared.DecodeJSON(w, r, requestID, &payload) {
		return
	}
	if !shared.ValidateStruct(w, requestID, payload) {
		return
	}

	err := h.Service.ChangePassword(r.Context(), user.UserID, payload.CurrentPassword, payload.NewPassword)
	switch {
	case errors.Is(err, auth.ErrWrongPassword):
		api.Fail(w, http.StatusUnauthorized, "wrong_password", "current password is incorrect", requestID)
		return
	case errors.Is(err, auth.ErrUserNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", requestID)
		return
	case err != nil:
		slog.Error("change password failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "password_change_failed", "failed to change password", requestID)
		return
	}
	audit.Log(r.Context(), h.Audit, user.UserID, "user.password_change", "user", user.UserID, nil, nil)
	api.Success(w, map[string]string{"message": "password updated"}, requestID)
}
