package server

import (
	"net/http"
	"strings"

	paymentdomain "github.com/citylights/billing/internal/payment/domain"
	"github.com/gin-gonic/gin"
)

type openSessionRequest struct {
	ResidentID    string `json:"resident_id"`
	ResidentName  string `json:"resident_name"`
	ResidentEmail string `json:"resident_email"`
	Year          int    `json:"year"`
	Month         int    `json:"month"`
}

func (s *Server) OpenPaymentSession(c *gin.Context) {
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if strings.TrimSpace(req.ResidentID) == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.paymentSvc.OpenSession(c.Request.Context(), paymentdomain.OpenSessionRequest{
		ResidentID:    strings.TrimSpace(req.ResidentID),
		ResidentName:  strings.TrimSpace(req.ResidentName),
		ResidentEmail: strings.TrimSpace(req.ResidentEmail),
		Year:          req.Year,
		Month:         req.Month,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

func (s *Server) ConfirmPayment(c *gin.Context) {
	result, err := s.paymentSvc.ConfirmSession(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	message := "payment confirmed"
	if result.AlreadyPaid {
		message = "payment was already confirmed"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result, "message": message})
}
