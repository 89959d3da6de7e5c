package pdf

import (
	"context"
	"io"
)

// LineItem is one concept row on a receipt or a report.
type LineItem struct {
	Description string
	Amount      string
}

// ReceiptData renders the payment receipt a resident gets after settling
// a monthly due.
type ReceiptData struct {
	ReceiptNumber string
	ResidentName  string
	ResidentEmail string
	Period        string
	PaymentMethod string
	DatePaid      string
	Items         []LineItem
	BaseAmount    string
	Surcharge     string
	Total         string
}

// InvoiceData renders the salary invoice emitted for a payroll payment.
type InvoiceData struct {
	InvoiceNumber string
	WorkerName    string
	Period        string
	Reference     string
	PaidBy        string
	DatePaid      string
	Amount        string
}

// ReportRow is one month of aggregated income and expense.
type ReportRow struct {
	Period  string
	Income  string
	Expense string
	Net     string
}

type ReportData struct {
	Title        string
	RangeLabel   string
	GeneratedAt  string
	Rows         []ReportRow
	TotalIncome  string
	TotalExpense string
	TotalNet     string
}

type Provider interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
	GenerateInvoice(ctx context.Context, data InvoiceData) (io.Reader, error)
	GenerateReport(ctx context.Context, data ReportData) (io.Reader, error)
}
