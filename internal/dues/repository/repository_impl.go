package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/citylights/billing/internal/dues/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, due *domain.MonthlyDue) error {
	return db.WithContext(ctx).Create(due).Error
}

func (r *repo) FindByPeriod(ctx context.Context, db *gorm.DB, residentID string, year, month int) (*domain.MonthlyDue, error) {
	var due domain.MonthlyDue
	err := db.WithContext(ctx).
		Where("resident_id = ? AND year = ? AND month = ?", residentID, year, month).
		Limit(1).
		Find(&due).Error
	if err != nil {
		return nil, err
	}
	if due.ID == 0 {
		return nil, nil
	}
	return &due, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.MonthlyDue, error) {
	var due domain.MonthlyDue
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&due).Error
	if err != nil {
		return nil, err
	}
	if due.ID == 0 {
		return nil, nil
	}
	return &due, nil
}

func (r *repo) FindBySession(ctx context.Context, db *gorm.DB, sessionID string) (*domain.MonthlyDue, error) {
	var due domain.MonthlyDue
	err := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Limit(1).
		Find(&due).Error
	if err != nil {
		return nil, err
	}
	if due.ID == 0 {
		return nil, nil
	}
	return &due, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListRequest) ([]*domain.MonthlyDue, error) {
	var dues []*domain.MonthlyDue
	stmt := db.WithContext(ctx).Model(&domain.MonthlyDue{})
	if req.ResidentID != "" {
		stmt = stmt.Where("resident_id = ?", req.ResidentID)
	}
	if req.Year != 0 {
		stmt = stmt.Where("year = ?", req.Year)
	}
	if req.Month != 0 {
		stmt = stmt.Where("month = ?", req.Month)
	}
	if req.State != "" {
		stmt = stmt.Where("state = ?", req.State)
	}
	if req.PaidFrom != nil {
		stmt = stmt.Where("paid_at >= ?", *req.PaidFrom)
	}
	if req.PaidTo != nil {
		stmt = stmt.Where("paid_at <= ?", *req.PaidTo)
	}
	err := stmt.
		Order("year desc, month desc, created_at desc").
		Find(&dues).Error
	if err != nil {
		return nil, err
	}
	return dues, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, due *domain.MonthlyDue) error {
	return db.WithContext(ctx).Save(due).Error
}

func (r *repo) FindSweepable(ctx context.Context, db *gorm.DB, now time.Time) ([]*domain.MonthlyDue, error) {
	var dues []*domain.MonthlyDue
	err := db.WithContext(ctx).
		Where("state IN ? AND grace_date < ?", []domain.State{domain.StatePending, domain.StateOverdue, domain.StateDelinquent}, now).
		Order("grace_date asc").
		Find(&dues).Error
	if err != nil {
		return nil, err
	}
	return dues, nil
}

func (r *repo) Delinquent(ctx context.Context, db *gorm.DB) ([]*domain.MonthlyDue, error) {
	var dues []*domain.MonthlyDue
	err := db.WithContext(ctx).
		Where("state = ?", domain.StateDelinquent).
		Order("year desc, month desc").
		Find(&dues).Error
	if err != nil {
		return nil, err
	}
	return dues, nil
}
