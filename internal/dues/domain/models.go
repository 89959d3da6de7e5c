package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type State string

const (
	StatePending    State = "PENDING"
	StateOverdue    State = "OVERDUE"
	StateDelinquent State = "DELINQUENT"
	StatePaid       State = "PAID"
)

// MonthlyDue is one resident's billing obligation for one calendar month.
// The (resident_id, year, month) unique index is the concurrency guard
// against duplicate creation. A PAID due is terminal and immutable.
type MonthlyDue struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	ResidentID       string       `gorm:"not null;uniqueIndex:idx_monthly_dues_period,priority:1" json:"resident_id"`
	ResidentName     string       `json:"resident_name"`
	ResidentEmail    string       `json:"resident_email"`
	Year             int          `gorm:"not null;uniqueIndex:idx_monthly_dues_period,priority:2" json:"year"`
	Month            int          `gorm:"not null;uniqueIndex:idx_monthly_dues_period,priority:3" json:"month"`
	BaseAmount       float64      `gorm:"not null;default:0" json:"base_amount"`
	SurchargeAmount  float64      `gorm:"not null;default:0" json:"surcharge_amount"`
	TotalAmount      float64      `gorm:"not null;default:0" json:"total_amount"`
	State            State        `gorm:"not null;default:PENDING;index" json:"state"`
	DueDate          time.Time    `gorm:"not null" json:"due_date"`
	GraceDate        time.Time    `gorm:"not null" json:"grace_date"`
	DelinquencyDays  int          `gorm:"not null;default:0" json:"delinquency_days"`
	SurchargePercent float64      `gorm:"not null;default:10" json:"surcharge_percent"`
	SessionID        string       `gorm:"index" json:"session_id,omitempty"`
	PaidAt           *time.Time   `json:"paid_at,omitempty"`
	PaymentMethod    string       `json:"payment_method,omitempty"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (MonthlyDue) TableName() string { return "monthly_dues" }

func (d MonthlyDue) Paid() bool { return d.State == StatePaid }

// Period formats the due's calendar period as MM/YYYY.
func (d MonthlyDue) Period() string {
	return formatPeriod(d.Year, d.Month)
}

// Resident identifies one member of the building roster.
type Resident struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
