package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authservice "github.com/zixuanzhao/chat-relay/internal/auth"
	"github.com/zixuanzhao/chat-relay/internal/model/user"
	"github.com/zixuanzhao/chat-relay/pkg/utils"
)

// Handler exposes signup and login.
type Handler struct {
	authSvc *authservice.Service
}

// New creates the auth handler.
func New(authSvc *authservice.Service) *Handler {
	return &Handler{authSvc: authSvc}
}

// RegisterRoutes registers the credential routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.handleSignUp)
	r.Post("/login", h.handleLogIn)
}

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.authSvc.SignUp(r.Context(), payload.Username, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, authservice.ErrMissingField):
			utils.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, user.ErrUsernameTaken):
			utils.RespondError(w, http.StatusBadRequest, "username already registered")
		default:
			utils.RespondError(w, http.StatusInternalServerError, "signup failed")
		}
		return
	}

	utils.RespondJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleLogIn(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.authSvc.LogIn(r.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrInvalidCredentials) {
			utils.RespondError(w, http.StatusUnauthorized, "incorrect username or password")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "login failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}
