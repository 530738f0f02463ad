package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"advisord/internal/upstream"

	"github.com/gin-gonic/gin"
)

// aiProxyRequest is the POST /api/proxy/ai body.
type aiProxyRequest struct {
	InputValue string `json:"input_value" binding:"required"`
}

// handleAIProxy relays one inference request to the upstream endpoint.
// Timeouts map to 504; every other upstream failure maps to 500 with a
// generic message. Upstream status codes and raw errors go to the log,
// never to the caller.
func (s *Server) handleAIProxy(c *gin.Context) {
	var req aiProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: input_value is required"})
		return
	}

	payload, err := json.Marshal(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	body, err := s.upstream.Relay(c.Request.Context(), payload)
	if err != nil {
		var ue *upstream.UpstreamError
		switch {
		case errors.Is(err, upstream.ErrTimeout):
			log.Printf("WARN: ai proxy: upstream call exceeded %s deadline", s.upstream.Timeout())
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Upstream AI service timed out"})
		case errors.As(err, &ue):
			log.Printf("WARN: ai proxy: upstream returned status %d", ue.Status)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Upstream AI service request failed"})
		default:
			log.Printf("WARN: ai proxy: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Upstream AI service request failed"})
		}
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}
