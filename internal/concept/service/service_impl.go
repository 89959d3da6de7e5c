package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/citylights/billing/internal/concept/domain"
	"github.com/citylights/billing/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("concept.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Concept, error) {
	items, err := s.repo.List(ctx, s.db, req.ActiveOnly)
	if err != nil {
		return nil, err
	}

	concepts := make([]domain.Concept, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		concepts = append(concepts, *item)
	}
	return concepts, nil
}

func (s *Service) Add(ctx context.Context, req domain.AddConceptRequest) (domain.Concept, error) {
	key := normalizeKey(req.Key)
	if key == "" {
		return domain.Concept{}, domain.ErrInvalidKey
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return domain.Concept{}, domain.ErrInvalidLabel
	}
	if req.Amount < 0 {
		return domain.Concept{}, domain.ErrInvalidAmount
	}

	existing, err := s.repo.FindByKey(ctx, s.db, key)
	if err != nil {
		return domain.Concept{}, err
	}
	if existing != nil {
		return domain.Concept{}, domain.ErrDuplicateKey
	}

	now := time.Now().UTC()
	concept := domain.Concept{
		ID:          s.genID.Generate(),
		Key:         key,
		Label:       label,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &concept); err != nil {
		// The unique index is the real guard against concurrent adds.
		if db.IsDuplicateKeyErr(err) {
			return domain.Concept{}, domain.ErrDuplicateKey
		}
		return domain.Concept{}, err
	}

	return concept, nil
}

func (s *Service) Update(ctx context.Context, key string, patch domain.UpdateConceptRequest) (domain.Concept, error) {
	concept, err := s.findByKey(ctx, key)
	if err != nil {
		return domain.Concept{}, err
	}

	if patch.Label != nil {
		label := strings.TrimSpace(*patch.Label)
		if label == "" {
			return domain.Concept{}, domain.ErrInvalidLabel
		}
		concept.Label = label
	}
	if patch.Description != nil {
		concept.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Amount != nil {
		if *patch.Amount < 0 {
			return domain.Concept{}, domain.ErrInvalidAmount
		}
		concept.Amount = *patch.Amount
	}
	if patch.Active != nil {
		concept.Active = *patch.Active
	}
	concept.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, concept); err != nil {
		return domain.Concept{}, err
	}
	return *concept, nil
}

func (s *Service) Deactivate(ctx context.Context, key string) error {
	concept, err := s.findByKey(ctx, key)
	if err != nil {
		return err
	}
	if !concept.Active {
		return nil
	}

	concept.Active = false
	concept.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, s.db, concept)
}

func (s *Service) Configuration(ctx context.Context) (domain.Configuration, error) {
	items, err := s.repo.List(ctx, s.db, true)
	if err != nil {
		return domain.Configuration{}, err
	}
	if len(items) == 0 {
		return domain.DefaultConfiguration(), nil
	}

	concepts := make(map[string]float64, len(items))
	total := 0.0
	updatedAt := time.Time{}
	for _, item := range items {
		concepts[item.Key] = item.Amount
		total += item.Amount
		if item.UpdatedAt.After(updatedAt) {
			updatedAt = item.UpdatedAt
		}
	}

	return domain.Configuration{
		Concepts:  concepts,
		Total:     total,
		UpdatedAt: updatedAt,
	}, nil
}

func (s *Service) UpdateConfiguration(ctx context.Context, amounts map[string]float64) (domain.Configuration, error) {
	if len(amounts) == 0 {
		return domain.Configuration{}, domain.ErrInvalidAmount
	}

	active, err := s.repo.List(ctx, s.db, true)
	if err != nil {
		return domain.Configuration{}, err
	}
	byKey := make(map[string]*domain.Concept, len(active))
	for _, item := range active {
		byKey[item.Key] = item
	}

	for key, amount := range amounts {
		if _, ok := byKey[normalizeKey(key)]; !ok {
			return domain.Configuration{}, domain.ErrUnknownConcept
		}
		if amount < 0 {
			return domain.Configuration{}, domain.ErrInvalidAmount
		}
	}

	now := time.Now().UTC()
	var repriced int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, amount := range amounts {
			concept := byKey[normalizeKey(key)]
			concept.Amount = amount
			concept.UpdatedAt = now
			if err := s.repo.Update(ctx, tx, concept); err != nil {
				return err
			}
		}

		total := 0.0
		for _, item := range active {
			total += item.Amount
		}

		// Only PENDING dues follow a configuration change; delinquent and
		// paid dues keep the amounts they were computed with.
		n, err := s.repo.RepriceTo(ctx, tx, total)
		if err != nil {
			return err
		}
		repriced = n
		return nil
	})
	if err != nil {
		return domain.Configuration{}, err
	}

	config, err := s.Configuration(ctx)
	if err != nil {
		return domain.Configuration{}, err
	}

	s.log.Info("dues configuration updated",
		zap.Float64("total", config.Total),
		zap.Int64("pending_dues_repriced", repriced),
	)
	return config, nil
}

func (s *Service) findByKey(ctx context.Context, key string) (*domain.Concept, error) {
	normalized := normalizeKey(key)
	if normalized == "" {
		return nil, domain.ErrInvalidKey
	}
	concept, err := s.repo.FindByKey(ctx, s.db, normalized)
	if err != nil {
		return nil, err
	}
	if concept == nil {
		return nil, domain.ErrNotFound
	}
	return concept, nil
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
