package domain

import (
	"context"
	"errors"
)

type AddConceptRequest struct {
	Key         string
	Label       string
	Description string
	Amount      float64
}

// UpdateConceptRequest is a partial patch; nil fields are left untouched.
type UpdateConceptRequest struct {
	Label       *string
	Description *string
	Amount      *float64
	Active      *bool
}

type ListRequest struct {
	ActiveOnly bool
}

type Service interface {
	List(ctx context.Context, req ListRequest) ([]Concept, error)
	Add(ctx context.Context, req AddConceptRequest) (Concept, error)
	Update(ctx context.Context, key string, patch UpdateConceptRequest) (Concept, error)
	Deactivate(ctx context.Context, key string) error

	// Configuration builds the current dues configuration from active
	// concepts, falling back to the default set when the catalog is empty.
	Configuration(ctx context.Context) (Configuration, error)
	// UpdateConfiguration validates and persists new amounts, then applies
	// the new total to every due still in PENDING state.
	UpdateConfiguration(ctx context.Context, amounts map[string]float64) (Configuration, error)
}

var (
	ErrInvalidKey     = errors.New("invalid_key")
	ErrInvalidLabel   = errors.New("invalid_label")
	ErrInvalidAmount  = errors.New("invalid_amount")
	ErrDuplicateKey   = errors.New("duplicate_key")
	ErrUnknownConcept = errors.New("unknown_concept")
	ErrNotFound       = errors.New("not_found")
)
