package server

import (
	"log"
	"os"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// setupRoutes builds the gin engine and registers all API endpoints.
func (s *Server) setupRoutes() {
	r := gin.New()

	r.Use(s.requestLoggingMiddleware())
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(s.corsMiddleware())
	r.Use(s.securityHeadersMiddleware())

	// Optional OpenAPI request validation, same switch style as the rest
	// of the env-driven knobs.
	if os.Getenv("ADVISORD_API_VALIDATE") == "1" {
		if v, err := newOpenAPIValidator(); err == nil {
			s.apiValidator = v
			r.Use(v.Middleware())
		} else {
			log.Printf("WARN: OpenAPI validation disabled: %v", err)
		}
	}

	api := r.Group("/api")
	{
		api.POST("/user-data", s.handleCreateUserData)
		api.GET("/user-data", s.handleListUserData)
		api.POST("/proxy/ai", s.handleAIProxy)
		api.GET("/health", s.handleHealth)
	}

	s.router = r
}
