package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *PayrollPayment) error
	FindByPeriod(ctx context.Context, db *gorm.DB, workerID int64, year, month int) (*PayrollPayment, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PayrollPayment, error)
	List(ctx context.Context, db *gorm.DB, req HistoryRequest) ([]*PayrollPayment, error)
}
