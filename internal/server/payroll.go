package server

import (
	"net/http"
	"strconv"
	"strings"

	payrolldomain "github.com/citylights/billing/internal/payroll/domain"
	"github.com/gin-gonic/gin"
)

type payWorkerRequest struct {
	WorkerID   int64   `json:"worker_id"`
	WorkerName string  `json:"worker_name"`
	Year       int     `json:"year"`
	Month      int     `json:"month"`
	Amount     float64 `json:"amount"`
	PaidBy     string  `json:"paid_by"`
}

func (s *Server) PayWorker(c *gin.Context) {
	var req payWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	payment, err := s.payrollSvc.Pay(c.Request.Context(), payrolldomain.PayRequest{
		WorkerID:   req.WorkerID,
		WorkerName: strings.TrimSpace(req.WorkerName),
		Year:       req.Year,
		Month:      req.Month,
		Amount:     req.Amount,
		PaidBy:     strings.TrimSpace(req.PaidBy),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Invoice generation is best effort; the payment record is the source
	// of truth.
	_, _ = s.invoiceSvc.PayrollInvoice(c.Request.Context(), payment.ID)

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": payment})
}

func (s *Server) VerifyPayroll(c *gin.Context) {
	workerID, err := strconv.ParseInt(c.Param("workerId"), 10, 64)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var query struct {
		Year  int `form:"year"`
		Month int `form:"month"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.payrollSvc.Verify(c.Request.Context(), workerID, query.Year, query.Month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

func (s *Server) PayrollHistory(c *gin.Context) {
	var query struct {
		WorkerID int64 `form:"worker_id"`
		Year     int   `form:"year"`
		Month    int   `form:"month"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	payments, err := s.payrollSvc.History(c.Request.Context(), payrolldomain.HistoryRequest{
		WorkerID: query.WorkerID,
		Year:     query.Year,
		Month:    query.Month,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": payments})
}
