package server

import (
	"context"
	"net/http"
	"time"

	conceptdomain "github.com/citylights/billing/internal/concept/domain"
	"github.com/citylights/billing/internal/config"
	delinquencydomain "github.com/citylights/billing/internal/delinquency/domain"
	duesdomain "github.com/citylights/billing/internal/dues/domain"
	invoicedomain "github.com/citylights/billing/internal/invoice/domain"
	"github.com/citylights/billing/internal/observability"
	obslogger "github.com/citylights/billing/internal/observability/logger"
	obsmetrics "github.com/citylights/billing/internal/observability/metrics"
	paymentdomain "github.com/citylights/billing/internal/payment/domain"
	payrolldomain "github.com/citylights/billing/internal/payroll/domain"
	"github.com/citylights/billing/internal/providers/directory"
	reportdomain "github.com/citylights/billing/internal/report/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log, obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	conceptSvc     conceptdomain.Service
	duesSvc        duesdomain.Service
	delinquencySvc delinquencydomain.Service
	paymentSvc     paymentdomain.Service
	payrollSvc     payrolldomain.Service
	invoiceSvc     invoicedomain.Service
	reportSvc      reportdomain.Service
	directory      directory.Provider
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	ConceptSvc     conceptdomain.Service
	DuesSvc        duesdomain.Service
	DelinquencySvc delinquencydomain.Service
	PaymentSvc     paymentdomain.Service
	PayrollSvc     payrolldomain.Service
	InvoiceSvc     invoicedomain.Service
	ReportSvc      reportdomain.Service
	Directory      directory.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		conceptSvc:     p.ConceptSvc,
		duesSvc:        p.DuesSvc,
		delinquencySvc: p.DelinquencySvc,
		paymentSvc:     p.PaymentSvc,
		payrollSvc:     p.PayrollSvc,
		invoiceSvc:     p.InvoiceSvc,
		reportSvc:      p.ReportSvc,
		directory:      p.Directory,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	concepts := api.Group("/concepts")
	concepts.GET("", s.ListConcepts)
	concepts.POST("", s.AddConcept)
	concepts.PATCH("/:key", s.UpdateConcept)
	concepts.DELETE("/:key", s.DeactivateConcept)

	configGroup := api.Group("/config")
	configGroup.GET("/dues", s.GetDuesConfiguration)
	configGroup.PUT("/dues", s.UpdateDuesConfiguration)

	dues := api.Group("/dues")
	dues.GET("", s.ListDues)
	dues.POST("/generate", s.GenerateDues)
	dues.GET("/resident/:residentId/verify", s.VerifyDue)
	dues.GET("/stats", s.DuesStats)

	payments := api.Group("/payments")
	payments.POST("/session", s.OpenPaymentSession)
	payments.POST("/confirm/:sessionId", s.ConfirmPayment)

	payroll := api.Group("/payroll")
	payroll.POST("/pay", s.PayWorker)
	payroll.GET("/worker/:workerId/verify", s.VerifyPayroll)
	payroll.GET("/history", s.PayrollHistory)

	delinquency := api.Group("/delinquency")
	delinquency.POST("/sweep", s.RunDelinquencySweep)
	delinquency.GET("/summary", s.DelinquencySummary)

	invoices := api.Group("/invoices")
	invoices.GET("", s.ListInvoices)
	invoices.POST("/payroll/:paymentId", s.GeneratePayrollInvoice)
	invoices.POST("/due/:dueId", s.GenerateDueReceipt)

	reports := api.Group("/reports")
	reports.GET("/financial", s.FinancialSummary)
	reports.GET("/financial/pdf", s.FinancialReportPDF)
	reports.GET("/financial/xlsx", s.FinancialReportXLSX)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
