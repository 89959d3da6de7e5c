package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/citylights/billing/internal/clock"
	"github.com/citylights/billing/internal/config"
	duesdomain "github.com/citylights/billing/internal/dues/domain"
	"github.com/citylights/billing/internal/invoice/domain"
	payrolldomain "github.com/citylights/billing/internal/payroll/domain"
	"github.com/citylights/billing/internal/providers/pdf"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Clock   clock.Clock
	PDF     pdf.Provider
	Dues    duesdomain.Service
	Payroll payrolldomain.Service
}

type Service struct {
	dir     string
	log     *zap.Logger
	clock   clock.Clock
	pdf     pdf.Provider
	dues    duesdomain.Service
	payroll payrolldomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		dir:     p.Cfg.ArtifactsDir,
		log:     p.Log.Named("invoice.service"),
		clock:   p.Clock,
		pdf:     p.PDF,
		dues:    p.Dues,
		payroll: p.Payroll,
	}
}

func (s *Service) PayrollInvoice(ctx context.Context, paymentID snowflake.ID) (domain.Artifact, error) {
	number := fmt.Sprintf("NOM-%08d", paymentID)
	prefix := fmt.Sprintf("invoice_payroll_%d_", paymentID)

	if existing := s.findExisting(prefix); existing != "" {
		return domain.Artifact{
			Number: number,
			File:   existing,
			Path:   filepath.Join(s.dir, existing),
		}, nil
	}

	payment, err := s.payroll.GetByID(ctx, paymentID)
	if err != nil {
		if err == payrolldomain.ErrNotFound {
			return domain.Artifact{}, domain.ErrNotFound
		}
		return domain.Artifact{}, err
	}

	data := pdf.InvoiceData{
		InvoiceNumber: number,
		WorkerName:    payment.WorkerName,
		Period:        fmt.Sprintf("%02d/%d", payment.Month, payment.Year),
		Reference:     payment.Reference,
		PaidBy:        payment.PaidBy,
		DatePaid:      payment.PaidAt.Format("2006-01-02"),
		Amount:        fmt.Sprintf("$%.2f", payment.Amount),
	}

	reader, err := s.pdf.GenerateInvoice(ctx, data)
	if err != nil {
		return domain.Artifact{}, err
	}

	file := fmt.Sprintf("%s%d.pdf", prefix, s.clock.Now().UnixMilli())
	path, err := s.write(file, reader)
	if err != nil {
		return domain.Artifact{}, err
	}

	s.log.Info("payroll invoice generated",
		zap.String("number", number),
		zap.String("file", file),
	)
	return domain.Artifact{Number: number, File: file, Path: path, Created: true}, nil
}

func (s *Service) DueReceipt(ctx context.Context, dueID snowflake.ID) (domain.Artifact, error) {
	number := fmt.Sprintf("CUO-%08d", dueID)
	prefix := fmt.Sprintf("receipt_due_%d_", dueID)

	if existing := s.findExisting(prefix); existing != "" {
		return domain.Artifact{
			Number: number,
			File:   existing,
			Path:   filepath.Join(s.dir, existing),
		}, nil
	}

	due, err := s.dues.GetByID(ctx, dueID)
	if err != nil {
		if err == duesdomain.ErrNotFound {
			return domain.Artifact{}, domain.ErrNotFound
		}
		return domain.Artifact{}, err
	}
	if !due.Paid() {
		return domain.Artifact{}, domain.ErrNotPaid
	}

	paidAt := due.UpdatedAt
	if due.PaidAt != nil {
		paidAt = *due.PaidAt
	}
	data := pdf.ReceiptData{
		ReceiptNumber: number,
		ResidentName:  due.ResidentName,
		ResidentEmail: due.ResidentEmail,
		Period:        due.Period(),
		PaymentMethod: due.PaymentMethod,
		DatePaid:      paidAt.Format("2006-01-02"),
		Items: []pdf.LineItem{
			{Description: "Monthly dues " + due.Period(), Amount: fmt.Sprintf("$%.2f", due.BaseAmount)},
		},
		BaseAmount: fmt.Sprintf("$%.2f", due.BaseAmount),
		Surcharge:  fmt.Sprintf("$%.2f", due.SurchargeAmount),
		Total:      fmt.Sprintf("$%.2f", due.TotalAmount),
	}
	if due.SurchargeAmount > 0 {
		data.Items = append(data.Items, pdf.LineItem{
			Description: fmt.Sprintf("Late surcharge (%d days)", due.DelinquencyDays),
			Amount:      fmt.Sprintf("$%.2f", due.SurchargeAmount),
		})
	}

	reader, err := s.pdf.GenerateReceipt(ctx, data)
	if err != nil {
		return domain.Artifact{}, err
	}

	file := fmt.Sprintf("%s%d.pdf", prefix, s.clock.Now().UnixMilli())
	path, err := s.write(file, reader)
	if err != nil {
		return domain.Artifact{}, err
	}

	s.log.Info("due receipt generated",
		zap.String("number", number),
		zap.String("file", file),
	)
	return domain.Artifact{Number: number, File: file, Path: path, Created: true}, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Artifact, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Artifact{}, nil
		}
		return nil, err
	}

	artifacts := make([]domain.Artifact, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".pdf") {
			continue
		}
		artifacts = append(artifacts, domain.Artifact{
			Number: numberFromFile(name),
			File:   name,
			Path:   filepath.Join(s.dir, name),
		})
	}
	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].File > artifacts[j].File })
	return artifacts, nil
}

// findExisting returns the first artifact whose name carries the prefix.
// Generation is idempotent per payment or due.
func (s *Service) findExisting(prefix string) string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			return entry.Name()
		}
	}
	return ""
}

func (s *Service) write(file string, reader io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, file)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return path, nil
}

func numberFromFile(name string) string {
	trimmed := strings.TrimSuffix(name, ".pdf")
	parts := strings.Split(trimmed, "_")
	if len(parts) < 3 {
		return ""
	}
	id := parts[len(parts)-2]
	switch {
	case strings.HasPrefix(name, "invoice_payroll_"):
		return "NOM-" + pad8(id)
	case strings.HasPrefix(name, "receipt_due_"):
		return "CUO-" + pad8(id)
	default:
		return ""
	}
}

func pad8(id string) string {
	if len(id) >= 8 {
		return id
	}
	return strings.Repeat("0", 8-len(id)) + id
}
