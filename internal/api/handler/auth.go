package handler

import (
	"net/http"

	"github.com/mcoot/chessgame-go/internal/api/middleware"
	"github.com/mcoot/chessgame-go/internal/api/request"
	"github.com/mcoot/chessgame-go/internal/api/response"
	"github.com/mcoot/chessgame-go/internal/services/auth"
)

// AuthHandler handles account endpoints
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	handle := req.HandleOrUsername()
	if handle == "" || req.Password == "" {
		WriteError(w, NewInvalidRequestError("Handle and password are required"))
		return
	}

	if err := h.authService.Register(r.Context(), handle, req.Password); err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.Message{Message: "User registered successfully"})
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	handle := req.HandleOrUsername()
	if handle == "" || req.Password == "" {
		WriteError(w, NewInvalidRequestError("Handle and password are required"))
		return
	}

	session, err := h.authService.Login(r.Context(), handle, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LoginResponse{Token: session.Token, ExpiresAt: session.ExpiresAt})
}

// Me handles GET /me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session == nil {
		WriteError(w, NewUnauthorizedError())
		return
	}
	response.JSON(w, http.StatusOK, response.MeResponse{Handle: session.Handle, ExpiresAt: session.ExpiresAt})
}
