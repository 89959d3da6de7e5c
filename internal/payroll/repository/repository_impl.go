package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/citylights/billing/internal/payroll/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.PayrollPayment) error {
	return db.WithContext(ctx).Create(payment).Error
}

func (r *repo) FindByPeriod(ctx context.Context, db *gorm.DB, workerID int64, year, month int) (*domain.PayrollPayment, error) {
	var payment domain.PayrollPayment
	err := db.WithContext(ctx).
		Where("worker_id = ? AND year = ? AND month = ?", workerID, year, month).
		Limit(1).
		Find(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PayrollPayment, error) {
	var payment domain.PayrollPayment
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.HistoryRequest) ([]*domain.PayrollPayment, error) {
	var payments []*domain.PayrollPayment
	stmt := db.WithContext(ctx).Model(&domain.PayrollPayment{})
	if req.WorkerID != 0 {
		stmt = stmt.Where("worker_id = ?", req.WorkerID)
	}
	if req.Year != 0 {
		stmt = stmt.Where("year = ?", req.Year)
	}
	if req.Month != 0 {
		stmt = stmt.Where("month = ?", req.Month)
	}
	if req.PaidFrom != nil {
		stmt = stmt.Where("paid_at >= ?", *req.PaidFrom)
	}
	if req.PaidTo != nil {
		stmt = stmt.Where("paid_at <= ?", *req.PaidTo)
	}
	err := stmt.
		Order("year desc, month desc, created_at desc").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
