// Package api wires the HTTP surface: routing, middleware, and the JSON
// response envelope.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"kinnected/backend/internal/auth"
	"kinnected/backend/pkg/logger"
)

// Rate limit windows per route group
const (
	apiRateLimit   = 100
	apiRateWindow  = 15 * time.Minute
	authRateLimit  = 20
	authRateWindow = 15 * time.Minute
	aiRateLimit    = 50
	aiRateWindow   = time.Hour
)

// Services bundles the handler dependencies for the router
type Services struct {
	Auth     AuthService
	Users    UserService
	Family   FamilyService
	Chat     ChatService
	Accounts AccountLoader
}

// Options carries router configuration
type Options struct {
	Tokens         *auth.TokenManager
	AllowedOrigins []string
	Production     bool
}

// NewRouter builds the gin engine with all routes and middleware attached
func NewRouter(svcs Services, opts Options) *gin.Engine {
	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger.Named("http")))
	r.Use(CORS(opts.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := NewAuthHandler(svcs.Auth, opts.Tokens.TTL(), opts.Production)
	userHandler := NewUserHandler(svcs.Users, opts.Production)
	connHandler := NewConnectionHandler(svcs.Family)
	aiHandler := NewAIHandler(svcs.Chat)
	requireAuth := RequireAuth(opts.Tokens, svcs.Accounts)

	api := r.Group("/api")
	api.Use(RateLimit(apiRateLimit, apiRateWindow, "Too many requests from this IP, please try again later"))

	authGroup := api.Group("/auth")
	authGroup.Use(RateLimit(authRateLimit, authRateWindow, "Too many attempts, please try again later"))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", requireAuth, authHandler.Me)
	}

	users := api.Group("/users", requireAuth)
	{
		users.GET("/profile", userHandler.Profile)
		users.GET("/profile/:username", userHandler.Profile)
		users.PUT("/profile", userHandler.UpdateProfile)
		users.GET("/search", userHandler.Search)
		users.DELETE("/account", userHandler.Delete)
	}

	connections := api.Group("/connections", requireAuth)
	{
		connections.POST("", connHandler.Create)
		connections.GET("/relations", connHandler.Relations)
		connections.GET("/relations/:userId", connHandler.Relations)
		connections.GET("/pending", connHandler.Pending)
		connections.PATCH("/accept/:requestId", connHandler.Accept)
		connections.PATCH("/reject/:requestId", connHandler.Reject)
	}

	ai := api.Group("/ai", requireAuth)
	ai.Use(RateLimit(aiRateLimit, aiRateWindow, "AI query limit reached, please try again later"))
	{
		ai.POST("/query", aiHandler.Query)
		ai.POST("/suggestions", aiHandler.Suggestions)
	}

	return r
}
