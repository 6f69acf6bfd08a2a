package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/davidnrm/critiq/internal/auth"
	"github.com/davidnrm/critiq/internal/handlers"
	"github.com/davidnrm/critiq/internal/middleware"
)

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(db *gorm.DB, tokens *iauth.TokenService, sessions *iauth.SessionService, credentials *iauth.CredentialVerifier) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token service must be provided")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if credentials == nil {
		return nil, fmt.Errorf("credential verifier must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	// Health and metrics (public)
	r.GET("/check", handlers.Health(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userHandler := handlers.NewUserHandler(credentials)
	sessionHandler := handlers.NewSessionHandler(sessions)
	productHandler := handlers.NewProductHandler(db)

	// Identity runs on every API route; it attaches the authenticated
	// user when possible and otherwise lets the request continue
	// anonymously. RequireUser is the gate on protected operations.
	api := r.Group("/api")
	api.Use(middleware.Identity(tokens, sessions))
	requireUser := middleware.RequireUser()

	api.POST("/users", userHandler.Register)

	api.POST("/sessions", sessionHandler.Create)
	api.GET("/sessions", requireUser, sessionHandler.List)
	api.DELETE("/sessions", requireUser, sessionHandler.Delete)

	api.POST("/products", requireUser, productHandler.Create)
	api.GET("/products/:productId", productHandler.Get)
	api.PUT("/products/:productId", requireUser, productHandler.Update)
	api.DELETE("/products/:productId", requireUser, productHandler.Delete)

	return r, nil
}
