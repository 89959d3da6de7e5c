package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, concept *Concept) error
	FindByKey(ctx context.Context, db *gorm.DB, key string) (*Concept, error)
	List(ctx context.Context, db *gorm.DB, activeOnly bool) ([]*Concept, error)
	Update(ctx context.Context, db *gorm.DB, concept *Concept) error
	// RepriceTo applies the given base amount to every monthly due still in
	// PENDING state. Surcharge is zero for pending dues, so total follows base.
	RepriceTo(ctx context.Context, db *gorm.DB, total float64) (int64, error)
}
