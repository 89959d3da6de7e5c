package server

import (
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListInvoices(c *gin.Context) {
	artifacts, err := s.invoiceSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": artifacts})
}

func (s *Server) GeneratePayrollInvoice(c *gin.Context) {
	paymentID, err := parseSnowflakeID(c.Param("paymentId"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	artifact, err := s.invoiceSvc.PayrollInvoice(c.Request.Context(), paymentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if artifact.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"success": true, "data": artifact})
}

func (s *Server) GenerateDueReceipt(c *gin.Context) {
	dueID, err := parseSnowflakeID(c.Param("dueId"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	artifact, err := s.invoiceSvc.DueReceipt(c.Request.Context(), dueID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if artifact.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"success": true, "data": artifact})
}

func parseSnowflakeID(raw string) (snowflake.ID, error) {
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(parsed), nil
}
