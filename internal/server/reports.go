package server

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) FinancialSummary(c *gin.Context) {
	from, to, err := parseReportRange(c)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	summary, err := s.reportSvc.Summary(c.Request.Context(), from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}

func (s *Server) FinancialReportPDF(c *gin.Context) {
	from, to, err := parseReportRange(c)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	reader, err := s.reportSvc.RenderPDF(c.Request.Context(), from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	streamAttachment(c, reader, "financial_report.pdf", "application/pdf")
}

func (s *Server) FinancialReportXLSX(c *gin.Context) {
	from, to, err := parseReportRange(c)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	reader, err := s.reportSvc.RenderXLSX(c.Request.Context(), from, to)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	streamAttachment(c, reader, "financial_report.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

func parseReportRange(c *gin.Context) (time.Time, time.Time, error) {
	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		// Include the whole end day.
		to = parsed.AddDate(0, 0, 1).Add(-time.Second)
	}
	return from, to, nil
}

func streamAttachment(c *gin.Context, reader io.Reader, filename, contentType string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}
