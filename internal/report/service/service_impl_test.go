package service

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/citylights/billing/internal/clock"
	duesdomain "github.com/citylights/billing/internal/dues/domain"
	payrolldomain "github.com/citylights/billing/internal/payroll/domain"
	"github.com/citylights/billing/internal/providers/pdf"
	"github.com/citylights/billing/internal/report/domain"
	"go.uber.org/zap"
)

type duesStub struct {
	dues []duesdomain.MonthlyDue
}

func (d *duesStub) EnsureDue(ctx context.Context, resident duesdomain.Resident, year, month int) (duesdomain.MonthlyDue, bool, error) {
	return duesdomain.MonthlyDue{}, false, nil
}

func (d *duesStub) GenerateForPeriod(ctx context.Context, req duesdomain.GenerateRequest) (duesdomain.GenerateResult, error) {
	return duesdomain.GenerateResult{}, nil
}

func (d *duesStub) List(ctx context.Context, req duesdomain.ListRequest) ([]duesdomain.MonthlyDue, error) {
	return d.dues, nil
}

func (d *duesStub) Verify(ctx context.Context, residentID string, year, month int) (duesdomain.VerifyResult, error) {
	return duesdomain.VerifyResult{}, nil
}

func (d *duesStub) GetByID(ctx context.Context, id snowflake.ID) (duesdomain.MonthlyDue, error) {
	return duesdomain.MonthlyDue{}, duesdomain.ErrNotFound
}

func (d *duesStub) FindBySession(ctx context.Context, sessionID string) (duesdomain.MonthlyDue, error) {
	return duesdomain.MonthlyDue{}, duesdomain.ErrNotFound
}

func (d *duesStub) AttachSession(ctx context.Context, id snowflake.ID, sessionID string) error {
	return nil
}

func (d *duesStub) MarkPaid(ctx context.Context, id snowflake.ID, paidAt time.Time, method string) (duesdomain.MonthlyDue, error) {
	return duesdomain.MonthlyDue{}, nil
}

type payrollStub struct {
	payments []payrolldomain.PayrollPayment
}

func (p *payrollStub) Pay(ctx context.Context, req payrolldomain.PayRequest) (payrolldomain.PayrollPayment, error) {
	return payrolldomain.PayrollPayment{}, nil
}

func (p *payrollStub) Verify(ctx context.Context, workerID int64, year, month int) (payrolldomain.VerifyResult, error) {
	return payrolldomain.VerifyResult{}, nil
}

func (p *payrollStub) GetByID(ctx context.Context, id snowflake.ID) (payrolldomain.PayrollPayment, error) {
	return payrolldomain.PayrollPayment{}, payrolldomain.ErrNotFound
}

func (p *payrollStub) History(ctx context.Context, req payrolldomain.HistoryRequest) ([]payrolldomain.PayrollPayment, error) {
	return p.payments, nil
}

func setupReportService(fake *clock.FakeClock, dues *duesStub, payroll *payrollStub) domain.Service {
	return New(Params{
		Log:     zap.NewNop(),
		Clock:   fake,
		PDF:     pdf.NewProvider(),
		Dues:    dues,
		Payroll: payroll,
	})
}

func paidDue(year, month int, total float64) duesdomain.MonthlyDue {
	return duesdomain.MonthlyDue{
		Year:        year,
		Month:       month,
		TotalAmount: total,
		State:       duesdomain.StatePaid,
	}
}

func TestSummaryAggregatesByMonth(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	service := setupReportService(fake,
		&duesStub{dues: []duesdomain.MonthlyDue{
			paidDue(2025, 1, 180),
			paidDue(2025, 1, 180),
			paidDue(2025, 2, 198),
		}},
		&payrollStub{payments: []payrolldomain.PayrollPayment{
			{Year: 2025, Month: 1, Amount: 250},
			{Year: 2025, Month: 3, Amount: 250},
		}},
	)

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)
	summary, err := service.Summary(context.Background(), from, to)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if summary.TotalIncome != 558 {
		t.Fatalf("expected income 558, got %v", summary.TotalIncome)
	}
	if summary.TotalExpense != 500 {
		t.Fatalf("expected expense 500, got %v", summary.TotalExpense)
	}
	if summary.TotalNet != 58 {
		t.Fatalf("expected net 58, got %v", summary.TotalNet)
	}
	if summary.PaidDues != 3 || summary.Payments != 2 {
		t.Fatalf("unexpected counts: %d dues, %d payments", summary.PaidDues, summary.Payments)
	}

	if len(summary.Rows) != 3 {
		t.Fatalf("expected 3 month rows, got %d", len(summary.Rows))
	}
	jan := summary.Rows[0]
	if jan.Period() != "01/2025" || jan.Income != 360 || jan.Expense != 250 || jan.Net != 110 {
		t.Fatalf("unexpected january row: %+v", jan)
	}
	march := summary.Rows[2]
	if march.Period() != "03/2025" || march.Income != 0 || march.Expense != 250 || march.Net != -250 {
		t.Fatalf("unexpected march row: %+v", march)
	}
}

func TestSummaryDefaultsToCurrentYear(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	service := setupReportService(fake, &duesStub{}, &payrollStub{})

	summary, err := service.Summary(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	wantFrom := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !summary.From.Equal(wantFrom) {
		t.Fatalf("expected from %v, got %v", wantFrom, summary.From)
	}
	if !summary.To.Equal(fake.Now()) {
		t.Fatalf("expected to %v, got %v", fake.Now(), summary.To)
	}
}

func TestSummaryInvalidRange(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	service := setupReportService(fake, &duesStub{}, &payrollStub{})
	ctx := context.Background()

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := service.Summary(ctx, from, to); err != domain.ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange for reversed range, got %v", err)
	}
	if _, err := service.Summary(ctx, from, time.Time{}); err != domain.ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange for one-sided range, got %v", err)
	}
}

func TestRenderPDF(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	service := setupReportService(fake,
		&duesStub{dues: []duesdomain.MonthlyDue{paidDue(2025, 1, 180)}},
		&payrollStub{},
	)

	reader, err := service.RenderPDF(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty PDF")
	}
}

func TestRenderXLSX(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	service := setupReportService(fake,
		&duesStub{dues: []duesdomain.MonthlyDue{paidDue(2025, 1, 180)}},
		&payrollStub{payments: []payrolldomain.PayrollPayment{{Year: 2025, Month: 1, Amount: 90}}},
	)

	reader, err := service.RenderXLSX(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("render xlsx: %v", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		t.Fatalf("read xlsx: %v", err)
	}
	// XLSX files are zip archives.
	if buf.Len() < 4 || buf.Bytes()[0] != 'P' || buf.Bytes()[1] != 'K' {
		t.Fatal("expected zip container output")
	}
}
