package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Concept is a named billable line item composing the monthly due total.
// Concepts are never hard-deleted so historic invoices keep their references.
type Concept struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Key         string       `gorm:"uniqueIndex:idx_concepts_key;not null" json:"key"`
	Label       string       `gorm:"not null" json:"label"`
	Description string       `json:"description,omitempty"`
	Amount      float64      `gorm:"not null;default:0" json:"amount"`
	Active      bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Concept) TableName() string { return "concepts" }

// Configuration is the derived dues configuration: active concept amounts and
// their sum. It is recomputed on every read, never stored as its own row.
type Configuration struct {
	Concepts  map[string]float64 `json:"concepts"`
	Total     float64            `json:"total"`
	UpdatedAt time.Time          `json:"updated_at"`
}
