package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	conceptdomain "github.com/citylights/billing/internal/concept/domain"
	"github.com/citylights/billing/internal/config"
	delinquencydomain "github.com/citylights/billing/internal/delinquency/domain"
	duesdomain "github.com/citylights/billing/internal/dues/domain"
	invoicedomain "github.com/citylights/billing/internal/invoice/domain"
	paymentdomain "github.com/citylights/billing/internal/payment/domain"
	payrolldomain "github.com/citylights/billing/internal/payroll/domain"
	"github.com/citylights/billing/internal/providers/directory"
	reportdomain "github.com/citylights/billing/internal/report/domain"
	"github.com/gin-gonic/gin"
)

type conceptStub struct {
	err error
}

func (s *conceptStub) List(ctx context.Context, req conceptdomain.ListRequest) ([]conceptdomain.Concept, error) {
	return []conceptdomain.Concept{}, s.err
}

func (s *conceptStub) Add(ctx context.Context, req conceptdomain.AddConceptRequest) (conceptdomain.Concept, error) {
	if s.err != nil {
		return conceptdomain.Concept{}, s.err
	}
	return conceptdomain.Concept{Key: req.Key, Label: req.Label, Amount: req.Amount, Active: true}, nil
}

func (s *conceptStub) Update(ctx context.Context, key string, patch conceptdomain.UpdateConceptRequest) (conceptdomain.Concept, error) {
	return conceptdomain.Concept{}, s.err
}

func (s *conceptStub) Deactivate(ctx context.Context, key string) error { return s.err }

func (s *conceptStub) Configuration(ctx context.Context) (conceptdomain.Configuration, error) {
	return conceptdomain.Configuration{Total: 180}, s.err
}

func (s *conceptStub) UpdateConfiguration(ctx context.Context, amounts map[string]float64) (conceptdomain.Configuration, error) {
	return conceptdomain.Configuration{}, s.err
}

type duesStub struct {
	err error
}

func (s *duesStub) EnsureDue(ctx context.Context, resident duesdomain.Resident, year, month int) (duesdomain.MonthlyDue, bool, error) {
	return duesdomain.MonthlyDue{}, false, s.err
}

func (s *duesStub) GenerateForPeriod(ctx context.Context, req duesdomain.GenerateRequest) (duesdomain.GenerateResult, error) {
	if s.err != nil {
		return duesdomain.GenerateResult{}, s.err
	}
	return duesdomain.GenerateResult{Year: req.Year, Month: req.Month, Created: len(req.Residents), Total: len(req.Residents)}, nil
}

func (s *duesStub) List(ctx context.Context, req duesdomain.ListRequest) ([]duesdomain.MonthlyDue, error) {
	return []duesdomain.MonthlyDue{}, s.err
}

func (s *duesStub) Verify(ctx context.Context, residentID string, year, month int) (duesdomain.VerifyResult, error) {
	if s.err != nil {
		return duesdomain.VerifyResult{}, s.err
	}
	return duesdomain.VerifyResult{Exists: true, Year: year, Month: month}, nil
}

func (s *duesStub) GetByID(ctx context.Context, id snowflake.ID) (duesdomain.MonthlyDue, error) {
	return duesdomain.MonthlyDue{}, s.err
}

func (s *duesStub) FindBySession(ctx context.Context, sessionID string) (duesdomain.MonthlyDue, error) {
	return duesdomain.MonthlyDue{}, s.err
}

func (s *duesStub) AttachSession(ctx context.Context, id snowflake.ID, sessionID string) error {
	return s.err
}

func (s *duesStub) MarkPaid(ctx context.Context, id snowflake.ID, paidAt time.Time, method string) (duesdomain.MonthlyDue, error) {
	return duesdomain.MonthlyDue{}, s.err
}

type delinquencyStub struct {
	err error
}

func (s *delinquencyStub) Sweep(ctx context.Context, now time.Time) (delinquencydomain.SweepResult, error) {
	return delinquencydomain.SweepResult{Scanned: 1, Updated: 1}, s.err
}

func (s *delinquencyStub) Summary(ctx context.Context) (delinquencydomain.Summary, error) {
	return delinquencydomain.Summary{}, s.err
}

type paymentStub struct {
	openErr    error
	confirmErr error
	confirm    paymentdomain.ConfirmResult
}

func (s *paymentStub) OpenSession(ctx context.Context, req paymentdomain.OpenSessionRequest) (paymentdomain.OpenSessionResult, error) {
	if s.openErr != nil {
		return paymentdomain.OpenSessionResult{}, s.openErr
	}
	return paymentdomain.OpenSessionResult{SessionID: "cs_test_1", DueID: "42", Amount: 180}, nil
}

func (s *paymentStub) ConfirmSession(ctx context.Context, sessionID string) (paymentdomain.ConfirmResult, error) {
	if s.confirmErr != nil {
		return paymentdomain.ConfirmResult{}, s.confirmErr
	}
	return s.confirm, nil
}

type payrollStub struct {
	err error
}

func (s *payrollStub) Pay(ctx context.Context, req payrolldomain.PayRequest) (payrolldomain.PayrollPayment, error) {
	if s.err != nil {
		return payrolldomain.PayrollPayment{}, s.err
	}
	return payrolldomain.PayrollPayment{WorkerID: req.WorkerID, Year: req.Year, Month: req.Month, Amount: req.Amount}, nil
}

func (s *payrollStub) Verify(ctx context.Context, workerID int64, year, month int) (payrolldomain.VerifyResult, error) {
	return payrolldomain.VerifyResult{}, s.err
}

func (s *payrollStub) GetByID(ctx context.Context, id snowflake.ID) (payrolldomain.PayrollPayment, error) {
	return payrolldomain.PayrollPayment{}, s.err
}

func (s *payrollStub) History(ctx context.Context, req payrolldomain.HistoryRequest) ([]payrolldomain.PayrollPayment, error) {
	return []payrolldomain.PayrollPayment{}, s.err
}

type invoiceStub struct {
	err error
}

func (s *invoiceStub) PayrollInvoice(ctx context.Context, paymentID snowflake.ID) (invoicedomain.Artifact, error) {
	return invoicedomain.Artifact{}, s.err
}

func (s *invoiceStub) DueReceipt(ctx context.Context, dueID snowflake.ID) (invoicedomain.Artifact, error) {
	return invoicedomain.Artifact{}, s.err
}

func (s *invoiceStub) List(ctx context.Context) ([]invoicedomain.Artifact, error) {
	return []invoicedomain.Artifact{}, s.err
}

type reportStub struct {
	err error
}

func (s *reportStub) Summary(ctx context.Context, from, to time.Time) (reportdomain.FinancialSummary, error) {
	return reportdomain.FinancialSummary{}, s.err
}

func (s *reportStub) RenderPDF(ctx context.Context, from, to time.Time) (io.Reader, error) {
	if s.err != nil {
		return nil, s.err
	}
	return bytes.NewReader([]byte("%PDF-1.4")), nil
}

func (s *reportStub) RenderXLSX(ctx context.Context, from, to time.Time) (io.Reader, error) {
	if s.err != nil {
		return nil, s.err
	}
	return bytes.NewReader([]byte("PK")), nil
}

type directoryStub struct {
	residents []directory.Resident
	err       error
}

func (s *directoryStub) ActiveResidents(ctx context.Context) ([]directory.Resident, error) {
	return s.residents, s.err
}

type deps struct {
	concepts    *conceptStub
	dues        *duesStub
	delinquency *delinquencyStub
	payments    *paymentStub
	payroll     *payrollStub
	invoices    *invoiceStub
	reports     *reportStub
	directory   *directoryStub
}

func newDeps() *deps {
	return &deps{
		concepts:    &conceptStub{},
		dues:        &duesStub{},
		delinquency: &delinquencyStub{},
		payments:    &paymentStub{},
		payroll:     &payrollStub{},
		invoices:    &invoiceStub{},
		reports:     &reportStub{},
		directory:   &directoryStub{},
	}
}

func setupServer(t *testing.T, d *deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	NewServer(ServerParams{
		Gin:            engine,
		Cfg:            config.Config{},
		ConceptSvc:     d.concepts,
		DuesSvc:        d.dues,
		DelinquencySvc: d.delinquency,
		PaymentSvc:     d.payments,
		PayrollSvc:     d.payroll,
		InvoiceSvc:     d.invoices,
		ReportSvc:      d.reports,
		Directory:      d.directory,
	})
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return payload
}

func TestOpenPaymentSession(t *testing.T) {
	engine := setupServer(t, newDeps())

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/payments/session", gin.H{
		"resident_id": "res-1",
		"year":        2025,
		"month":       3,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	payload := decodeEnvelope(t, rec)
	if payload["success"] != true {
		t.Fatalf("expected success envelope, got %v", payload)
	}
}

func TestOpenPaymentSessionRejectsMissingResident(t *testing.T) {
	engine := setupServer(t, newDeps())

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/payments/session", gin.H{"year": 2025})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["success"] != false {
		t.Fatalf("expected error envelope, got %v", payload)
	}
}

func TestConfirmPaymentErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"unpaid session conflicts", paymentdomain.ErrSessionUnpaid, http.StatusConflict},
		{"unknown session not found", paymentdomain.ErrSessionNotFound, http.StatusNotFound},
		{"provider failure is upstream", paymentdomain.ErrProvider, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newDeps()
			d.payments.confirmErr = tc.err
			engine := setupServer(t, d)

			rec := doJSON(t, engine, http.MethodPost, "/api/v1/payments/confirm/cs_test_1", nil)
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d: %s", tc.code, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestPayWorkerCreated(t *testing.T) {
	engine := setupServer(t, newDeps())

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/payroll/pay", gin.H{
		"worker_id": 7,
		"year":      2025,
		"month":     4,
		"amount":    1200,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPayWorkerConflict(t *testing.T) {
	d := newDeps()
	d.payroll.err = payrolldomain.ErrAlreadyPaid
	engine := setupServer(t, d)

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/payroll/pay", gin.H{
		"worker_id": 7,
		"year":      2025,
		"month":     4,
		"amount":    1200,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	errPayload, ok := payload["error"].(map[string]interface{})
	if !ok || errPayload["type"] != "conflict" {
		t.Fatalf("expected conflict error payload, got %v", payload)
	}
}

func TestAddConceptDuplicate(t *testing.T) {
	d := newDeps()
	d.concepts.err = conceptdomain.ErrDuplicateKey
	engine := setupServer(t, d)

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/concepts", gin.H{
		"key":    "agua",
		"label":  "Agua",
		"amount": 35,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGenerateDuesFallsBackToDirectory(t *testing.T) {
	d := newDeps()
	d.directory.residents = []directory.Resident{{ID: "res-1"}, {ID: "res-2"}}
	engine := setupServer(t, d)

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/dues/generate", gin.H{
		"year":  2025,
		"month": 3,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	payload := decodeEnvelope(t, rec)
	data, ok := payload["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing data envelope: %v", payload)
	}
	if data["created"] != float64(2) {
		t.Fatalf("expected 2 created from roster, got %v", data["created"])
	}
}

func TestGenerateDuesDirectoryDown(t *testing.T) {
	d := newDeps()
	d.directory.err = directory.ErrUpstream
	engine := setupServer(t, d)

	rec := doJSON(t, engine, http.MethodPost, "/api/v1/dues/generate", gin.H{
		"year":  2025,
		"month": 3,
	})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestFinancialReportInvalidRange(t *testing.T) {
	d := newDeps()
	d.reports.err = reportdomain.ErrInvalidRange
	engine := setupServer(t, d)

	rec := doJSON(t, engine, http.MethodGet, "/api/v1/reports/financial", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFinancialReportPDFStreams(t *testing.T) {
	engine := setupServer(t, newDeps())

	rec := doJSON(t, engine, http.MethodGet, "/api/v1/reports/financial/pdf", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got == "" {
		t.Fatal("expected attachment disposition")
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected report bytes")
	}
}
