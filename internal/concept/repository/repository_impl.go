package repository

import (
	"context"

	"github.com/citylights/billing/internal/concept/domain"
	duesdomain "github.com/citylights/billing/internal/dues/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, concept *domain.Concept) error {
	return db.WithContext(ctx).Create(concept).Error
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, key string) (*domain.Concept, error) {
	var concept domain.Concept
	err := db.WithContext(ctx).
		Where("key = ?", key).
		Limit(1).
		Find(&concept).Error
	if err != nil {
		return nil, err
	}
	if concept.ID == 0 {
		return nil, nil
	}
	return &concept, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]*domain.Concept, error) {
	var concepts []*domain.Concept
	stmt := db.WithContext(ctx).Model(&domain.Concept{})
	if activeOnly {
		stmt = stmt.Where("active = ?", true)
	}
	err := stmt.Order("id asc").Find(&concepts).Error
	if err != nil {
		return nil, err
	}
	return concepts, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, concept *domain.Concept) error {
	return db.WithContext(ctx).Save(concept).Error
}

func (r *repo) RepriceTo(ctx context.Context, db *gorm.DB, total float64) (int64, error) {
	res := db.WithContext(ctx).
		Model(&duesdomain.MonthlyDue{}).
		Where("state = ?", duesdomain.StatePending).
		Updates(map[string]any{
			"base_amount":  total,
			"total_amount": total,
		})
	return res.RowsAffected, res.Error
}
