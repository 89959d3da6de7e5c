package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type State string

const (
	StateCompleted State = "COMPLETED"
)

// PayrollPayment records one salary disbursement. The (worker_id, year,
// month) unique index guarantees a worker is paid at most once per period.
type PayrollPayment struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	WorkerID   int64        `gorm:"not null;uniqueIndex:idx_payroll_payments_period,priority:1" json:"worker_id"`
	WorkerName string       `json:"worker_name"`
	Year       int          `gorm:"not null;uniqueIndex:idx_payroll_payments_period,priority:2" json:"year"`
	Month      int          `gorm:"not null;uniqueIndex:idx_payroll_payments_period,priority:3" json:"month"`
	Amount     float64      `gorm:"not null" json:"amount"`
	State      State        `gorm:"not null;default:COMPLETED" json:"state"`
	Reference  string       `gorm:"not null" json:"reference"`
	PaidBy     string       `json:"paid_by"`
	PaidAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"paid_at"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (PayrollPayment) TableName() string { return "payroll_payments" }
