package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/auth"
	"go.uber.org/zap"
)

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries a signed staff token
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthHandler issues staff tokens against a single configured account
type AuthHandler struct {
	tokens       *auth.Manager
	username     string
	passwordHash string
	logger       *zap.SugaredLogger
}

// NewAuthHandler creates a new auth handler. An empty passwordHash disables login.
func NewAuthHandler(tokens *auth.Manager, username, passwordHash string, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{tokens: tokens, username: username, passwordHash: passwordHash, logger: logger}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	if h.passwordHash == "" || req.Username != h.username || !auth.CheckPassword(h.passwordHash, req.Password) {
		h.logger.Warnw("Failed staff login", "username", req.Username, "remote", r.RemoteAddr)
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, expiresAt, err := h.tokens.Issue(req.Username, auth.RoleStaff)
	if err != nil {
		h.logger.Errorw("Failed to issue token", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	h.logger.Infow("Staff logged in", "username", req.Username)
	respondJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: expiresAt})
}
