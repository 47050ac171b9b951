package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"pd-smartdoc/internal/config"

	"go.uber.org/zap"
)

// AuthHandler checks the single configured credential pair. The product has
// one user; a token is issued so the frontend has something to hold, but
// nothing validates it yet.
type AuthHandler struct {
	auth   config.AuthConfig
	logger *zap.Logger
}

func NewAuthHandler(auth config.AuthConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := readBodyJSON(r, 1<<20, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	if req.Username != h.auth.User || req.Password != h.auth.Password {
		h.logger.Warn("Login rejected", zap.String("username", req.Username))
		writeJSON(w, http.StatusUnauthorized, Fail("invalid credentials"))
		return
	}

	token := make([]byte, 16)
	_, _ = rand.Read(token)
	writeJSON(w, http.StatusOK, Ok(loginResponse{
		Token:    hex.EncodeToString(token),
		Username: req.Username,
	}))
}
