package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"kinnected/backend/internal/graph"
	"kinnected/backend/internal/identity"
)

// AuthService is the slice of the identity service the auth endpoints use
type AuthService interface {
	Register(ctx context.Context, req identity.RegisterRequest) (*graph.Account, string, error)
	Login(ctx context.Context, username, password string) (*graph.Account, string, error)
}

// AuthHandler serves registration, login, logout, and the session probe
type AuthHandler struct {
	svc          AuthService
	tokenTTL     time.Duration
	secureCookie bool
}

// NewAuthHandler creates an auth handler. secureCookie marks the session
// cookie Secure, which production deployments behind TLS should set.
func NewAuthHandler(svc AuthService, tokenTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		svc:          svc,
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req identity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	acc, token, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	respond(c, http.StatusCreated, gin.H{
		"token": token,
		"user":  acc,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	acc, token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, token)
	respond(c, http.StatusOK, gin.H{
		"token": token,
		"user":  acc,
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearSessionCookie(c)
	respond(c, http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// Me handles GET /api/auth/me, returning the authenticated account
func (h *AuthHandler) Me(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{
		"user": CurrentAccount(c),
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, token, int(h.tokenTTL.Seconds()), "/", "", h.secureCookie, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, "", -1, "/", "", h.secureCookie, true)
}
