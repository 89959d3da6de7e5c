package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, due *MonthlyDue) error
	FindByPeriod(ctx context.Context, db *gorm.DB, residentID string, year, month int) (*MonthlyDue, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*MonthlyDue, error)
	FindBySession(ctx context.Context, db *gorm.DB, sessionID string) (*MonthlyDue, error)
	List(ctx context.Context, db *gorm.DB, req ListRequest) ([]*MonthlyDue, error)
	Update(ctx context.Context, db *gorm.DB, due *MonthlyDue) error
	// FindSweepable returns unpaid dues whose grace date has passed at now.
	// Already-delinquent dues are included so each sweep keeps their day
	// count and surcharge current.
	FindSweepable(ctx context.Context, db *gorm.DB, now time.Time) ([]*MonthlyDue, error)
	// Delinquent returns every due currently in DELINQUENT state.
	Delinquent(ctx context.Context, db *gorm.DB) ([]*MonthlyDue, error)
}
