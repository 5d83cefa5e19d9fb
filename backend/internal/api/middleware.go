package api

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"kinnected/backend/internal/auth"
	"kinnected/backend/internal/graph"
	"kinnected/backend/pkg/apperrors"
)

const accountContextKey = "account"

// CookieName is the session cookie carrying the JWT
const CookieName = "token"

// AccountLoader resolves an authenticated account by ID
type AccountLoader interface {
	GetByID(ctx context.Context, id string) (*graph.Account, error)
}

// RequireAuth extracts the session token from the Authorization header or the
// session cookie, verifies it, and loads the account into the request context
func RequireAuth(tokens *auth.TokenManager, accounts AccountLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""

		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		} else if cookie, err := c.Cookie(CookieName); err == nil {
			token = cookie
		}

		if token == "" {
			respondError(c, apperrors.Authentication("No token provided"))
			return
		}

		userID, err := tokens.Parse(token)
		if err != nil {
			respondError(c, err)
			return
		}

		acc, err := accounts.GetByID(c.Request.Context(), userID)
		if err != nil || acc == nil {
			respondError(c, apperrors.Authentication("User not found"))
			return
		}

		c.Set(accountContextKey, acc)
		c.Next()
	}
}

// CurrentAccount returns the authenticated account set by RequireAuth
func CurrentAccount(c *gin.Context) *graph.Account {
	val, ok := c.Get(accountContextKey)
	if !ok {
		return nil
	}
	acc, ok := val.(*graph.Account)
	if !ok {
		return nil
	}
	return acc
}

// CORS allows the configured frontend origins with credentials
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; ok {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// RequestLogger logs each request with method, path, status, latency, and ip
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
