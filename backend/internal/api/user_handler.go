package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"kinnected/backend/internal/graph"
	"kinnected/backend/pkg/apperrors"
)

// UserService is the slice of the identity service the user endpoints use
type UserService interface {
	GetProfile(ctx context.Context, username string) (*graph.Account, error)
	UpdateProfile(ctx context.Context, userID string, update graph.AccountUpdate) (*graph.Account, error)
	Search(ctx context.Context, query string) ([]*graph.AccountSummary, error)
	Delete(ctx context.Context, userID string) error
}

// UserHandler serves profile reads, updates, search, and account deletion
type UserHandler struct {
	svc          UserService
	secureCookie bool
}

// NewUserHandler creates a user handler
func NewUserHandler(svc UserService, secureCookie bool) *UserHandler {
	return &UserHandler{svc: svc, secureCookie: secureCookie}
}

// Profile handles GET /api/users/profile and GET /api/users/profile/:username.
// Without a handle it returns the caller's own profile.
func (h *UserHandler) Profile(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		respond(c, http.StatusOK, gin.H{
			"user": CurrentAccount(c),
		})
		return
	}

	acc, err := h.svc.GetProfile(c.Request.Context(), username)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"user": acc,
	})
}

// UpdateProfile handles PUT /api/users/profile. The body is decoded strictly,
// so an unrecognized field fails the whole request instead of being dropped.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var update graph.AccountUpdate
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&update); err != nil {
		respondError(c, apperrors.Validation("Invalid updates"))
		return
	}

	acc, err := h.svc.UpdateProfile(c.Request.Context(), CurrentAccount(c).ID, update)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"user": acc,
	})
}

// Search handles GET /api/users/search?query=
func (h *UserHandler) Search(c *gin.Context) {
	results, err := h.svc.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"users": results,
	})
}

// Delete handles DELETE /api/users/account, removing the caller's account and
// ending the session
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), CurrentAccount(c).ID); err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookieName, "", -1, "/", "", h.secureCookie, true)
	respond(c, http.StatusOK, gin.H{
		"message": "Account deleted successfully",
	})
}
