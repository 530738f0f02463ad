package server

import (
	"log"
	"net/http"

	"advisord/internal/persistence"

	"github.com/gin-gonic/gin"
)

// userDataRequest is the POST /api/user-data body. Budget is a pointer so
// an explicit zero budget passes required-field validation.
type userDataRequest struct {
	Budget         *float64 `json:"budget" binding:"required"`
	City           string   `json:"city" binding:"required"`
	InvestmentType string   `json:"investmentType" binding:"required"`
	TargetAudience string   `json:"targetAudience" binding:"required"`
}

// handleCreateUserData stores one submission and echoes the persisted row.
func (s *Server) handleCreateUserData(c *gin.Context) {
	var req userDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: budget, city, investmentType and targetAudience are required"})
		return
	}

	record, err := s.store.InsertRecord(c.Request.Context(), persistence.Fields{
		Budget:         *req.Budget,
		City:           req.City,
		InvestmentType: req.InvestmentType,
		TargetAudience: req.TargetAudience,
	})
	if err != nil {
		log.Printf("WARN: user-data insert failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store user data"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// handleListUserData returns all submissions, newest first.
func (s *Server) handleListUserData(c *gin.Context) {
	records, err := s.store.ListRecords(c.Request.Context())
	if err != nil {
		log.Printf("WARN: user-data list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user data"})
		return
	}
	c.JSON(http.StatusOK, records)
}
