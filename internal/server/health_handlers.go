package server

import (
	"net/http"

	"advisord/internal/health"

	"github.com/gin-gonic/gin"
)

// handleHealth reports lifecycle state and per-component status. The
// storage status is refreshed with a live ping so a handle that died
// after startup is not reported healthy forever.
func (s *Server) handleHealth(c *gin.Context) {
	if s.store != nil {
		if err := s.store.Ping(c.Request.Context()); err != nil {
			s.health.Setf("storage", health.LevelError, "store unreachable: "+err.Error())
		} else {
			s.health.Setf("storage", health.LevelOK, "store ready at "+s.store.Path())
		}
	}

	status := http.StatusOK
	if s.health.Overall() >= health.LevelError {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"state":      s.life.Current().String(),
		"version":    s.version,
		"components": s.health.Snapshot(),
	})
}
