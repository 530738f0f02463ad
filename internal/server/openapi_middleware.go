package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
	"github.com/gin-gonic/gin"
)

// openAPIValidator validates incoming API requests against the OpenAPI doc.
type openAPIValidator struct {
	router routers.Router
}

// newOpenAPIValidator loads the OpenAPI document and prepares a route
// matcher for request validation.
func newOpenAPIValidator() (*openAPIValidator, error) {
	b, err := loadOpenAPISpec()
	if err != nil {
		return nil, err
	}
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(b)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, err
	}
	r, err := legacyrouter.NewRouter(doc)
	if err != nil {
		return nil, err
	}
	return &openAPIValidator{router: r}, nil
}

// Middleware validates requests under /api/ against the document. Requests
// that do not match a documented route, or whose body fails validation,
// are rejected with 400 before reaching a handler.
func (v *openAPIValidator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Next()
			return
		}
		route, pathParams, err := v.router.FindRoute(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Request not in API description"})
			return
		}
		input := &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
		}
		if err := openapi3filter.ValidateRequest(c.Request.Context(), input); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Request failed validation"})
			return
		}
		c.Next()
	}
}

// loadOpenAPISpec tries the env override first, then the dev-tree paths.
func loadOpenAPISpec() ([]byte, error) {
	if p := os.Getenv("ADVISORD_OPENAPI_PATH"); p != "" {
		if b, err := os.ReadFile(p); err == nil {
			return b, nil
		}
	}
	if b, err := os.ReadFile(filepath.Join("docs", "api", "openapi.yaml")); err == nil {
		return b, nil
	}
	// Package dir during tests: two levels up from internal/server.
	if b, err := os.ReadFile(filepath.Join("..", "..", "docs", "api", "openapi.yaml")); err == nil {
		return b, nil
	}
	return nil, os.ErrNotExist
}
