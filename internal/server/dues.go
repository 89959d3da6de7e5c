package server

import (
	"net/http"
	"strings"

	duesdomain "github.com/citylights/billing/internal/dues/domain"
	"github.com/gin-gonic/gin"
)

type generateDuesRequest struct {
	Year      int `json:"year"`
	Month     int `json:"month"`
	Residents []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"residents"`
}

func (s *Server) ListDues(c *gin.Context) {
	var query struct {
		ResidentID string `form:"resident_id"`
		Year       int    `form:"year"`
		Month      int    `form:"month"`
		State      string `form:"state"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	dues, err := s.duesSvc.List(c.Request.Context(), duesdomain.ListRequest{
		ResidentID: strings.TrimSpace(query.ResidentID),
		Year:       query.Year,
		Month:      query.Month,
		State:      duesdomain.State(strings.ToUpper(strings.TrimSpace(query.State))),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": dues})
}

// GenerateDues creates the period's dues for the request roster, or for
// the directory roster when the request names none.
func (s *Server) GenerateDues(c *gin.Context) {
	var req generateDuesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	residents := make([]duesdomain.Resident, 0, len(req.Residents))
	for _, r := range req.Residents {
		residents = append(residents, duesdomain.Resident{ID: r.ID, Name: r.Name, Email: r.Email})
	}

	if len(residents) == 0 {
		roster, err := s.directory.ActiveResidents(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		for _, r := range roster {
			residents = append(residents, duesdomain.Resident{ID: r.ID, Name: r.Name, Email: r.Email})
		}
	}
	if len(residents) == 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.duesSvc.GenerateForPeriod(c.Request.Context(), duesdomain.GenerateRequest{
		Residents: residents,
		Year:      req.Year,
		Month:     req.Month,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

func (s *Server) VerifyDue(c *gin.Context) {
	var query struct {
		Year  int `form:"year"`
		Month int `form:"month"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.duesSvc.Verify(c.Request.Context(), c.Param("residentId"), query.Year, query.Month)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// DuesStats summarizes the dues ledger: counts and totals by state plus
// the delinquency aggregate.
func (s *Server) DuesStats(c *gin.Context) {
	var query struct {
		Year  int `form:"year"`
		Month int `form:"month"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	dues, err := s.duesSvc.List(c.Request.Context(), duesdomain.ListRequest{
		Year:  query.Year,
		Month: query.Month,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	stats := struct {
		Total     int     `json:"total"`
		Paid      int     `json:"paid"`
		Unpaid    int     `json:"unpaid"`
		Collected float64 `json:"collected"`
		Pending   float64 `json:"pending"`
	}{}
	for _, due := range dues {
		stats.Total++
		if due.Paid() {
			stats.Paid++
			stats.Collected += due.TotalAmount
		} else {
			stats.Unpaid++
			stats.Pending += due.TotalAmount
		}
	}

	delinquency, err := s.delinquencySvc.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"dues":        stats,
			"delinquency": delinquency,
		},
	})
}
