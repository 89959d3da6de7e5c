package server

import (
	"net/http"
	"strings"

	conceptdomain "github.com/citylights/billing/internal/concept/domain"
	"github.com/gin-gonic/gin"
)

type addConceptRequest struct {
	Key         string  `json:"key"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

func (s *Server) ListConcepts(c *gin.Context) {
	var query struct {
		ActiveOnly bool `form:"active_only"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	concepts, err := s.conceptSvc.List(c.Request.Context(), conceptdomain.ListRequest{
		ActiveOnly: query.ActiveOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": concepts})
}

func (s *Server) AddConcept(c *gin.Context) {
	var req addConceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	concept, err := s.conceptSvc.Add(c.Request.Context(), conceptdomain.AddConceptRequest{
		Key:         strings.TrimSpace(req.Key),
		Label:       strings.TrimSpace(req.Label),
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": concept})
}

func (s *Server) UpdateConcept(c *gin.Context) {
	var req struct {
		Label       *string  `json:"label"`
		Description *string  `json:"description"`
		Amount      *float64 `json:"amount"`
		Active      *bool    `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	concept, err := s.conceptSvc.Update(c.Request.Context(), c.Param("key"), conceptdomain.UpdateConceptRequest{
		Label:       req.Label,
		Description: req.Description,
		Amount:      req.Amount,
		Active:      req.Active,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": concept})
}

func (s *Server) DeactivateConcept(c *gin.Context) {
	if err := s.conceptSvc.Deactivate(c.Request.Context(), c.Param("key")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "concept deactivated"})
}

func (s *Server) GetDuesConfiguration(c *gin.Context) {
	configuration, err := s.conceptSvc.Configuration(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": configuration})
}

func (s *Server) UpdateDuesConfiguration(c *gin.Context) {
	var req map[string]float64
	if err := c.ShouldBindJSON(&req); err != nil || len(req) == 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	configuration, err := s.conceptSvc.UpdateConfiguration(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    configuration,
		"message": "configuration updated",
	})
}
