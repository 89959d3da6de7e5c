package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/citylights/billing/internal/clock"
	duesdomain "github.com/citylights/billing/internal/dues/domain"
	payrolldomain "github.com/citylights/billing/internal/payroll/domain"
	"github.com/citylights/billing/internal/providers/pdf"
	"github.com/citylights/billing/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	PDF     pdf.Provider
	Dues    duesdomain.Service
	Payroll payrolldomain.Service
}

type Service struct {
	log     *zap.Logger
	clock   clock.Clock
	pdf     pdf.Provider
	dues    duesdomain.Service
	payroll payrolldomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("report.service"),
		clock:   p.Clock,
		pdf:     p.PDF,
		dues:    p.Dues,
		payroll: p.Payroll,
	}
}

func (s *Service) Summary(ctx context.Context, from, to time.Time) (domain.FinancialSummary, error) {
	from, to, err := s.normalizeRange(from, to)
	if err != nil {
		return domain.FinancialSummary{}, err
	}

	paid, err := s.dues.List(ctx, duesdomain.ListRequest{
		State:    duesdomain.StatePaid,
		PaidFrom: &from,
		PaidTo:   &to,
	})
	if err != nil {
		return domain.FinancialSummary{}, err
	}

	payments, err := s.payroll.History(ctx, payrolldomain.HistoryRequest{
		PaidFrom: &from,
		PaidTo:   &to,
	})
	if err != nil {
		return domain.FinancialSummary{}, err
	}

	type key struct{ year, month int }
	rows := make(map[key]*domain.MonthRow)
	row := func(year, month int) *domain.MonthRow {
		k := key{year, month}
		r, ok := rows[k]
		if !ok {
			r = &domain.MonthRow{Year: year, Month: month}
			rows[k] = r
		}
		return r
	}

	summary := domain.FinancialSummary{From: from, To: to, PaidDues: len(paid), Payments: len(payments)}
	for _, due := range paid {
		r := row(due.Year, due.Month)
		r.Income += due.TotalAmount
		summary.TotalIncome += due.TotalAmount
	}
	for _, payment := range payments {
		r := row(payment.Year, payment.Month)
		r.Expense += payment.Amount
		summary.TotalExpense += payment.Amount
	}

	keys := make([]key, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})
	for _, k := range keys {
		r := rows[k]
		r.Net = r.Income - r.Expense
		summary.Rows = append(summary.Rows, *r)
	}
	summary.TotalNet = summary.TotalIncome - summary.TotalExpense

	return summary, nil
}

func (s *Service) RenderPDF(ctx context.Context, from, to time.Time) (io.Reader, error) {
	summary, err := s.Summary(ctx, from, to)
	if err != nil {
		return nil, err
	}

	data := pdf.ReportData{
		Title:        "Financial Report",
		RangeLabel:   summary.From.Format("2006-01-02") + " to " + summary.To.Format("2006-01-02"),
		GeneratedAt:  s.clock.Now().Format("2006-01-02 15:04"),
		TotalIncome:  money(summary.TotalIncome),
		TotalExpense: money(summary.TotalExpense),
		TotalNet:     money(summary.TotalNet),
	}
	for _, r := range summary.Rows {
		data.Rows = append(data.Rows, pdf.ReportRow{
			Period:  r.Period(),
			Income:  money(r.Income),
			Expense: money(r.Expense),
			Net:     money(r.Net),
		})
	}

	return s.pdf.GenerateReport(ctx, data)
}

func (s *Service) normalizeRange(from, to time.Time) (time.Time, time.Time, error) {
	if from.IsZero() && to.IsZero() {
		// Default to the current calendar year.
		now := s.clock.Now()
		from = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		to = now
	}
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return time.Time{}, time.Time{}, domain.ErrInvalidRange
	}
	return from.UTC(), to.UTC(), nil
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
