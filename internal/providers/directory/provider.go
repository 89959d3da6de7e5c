package directory

import (
	"context"
	"errors"
)

// Resident is one entry in the building roster served by the directory
// service.
type Resident struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Provider fetches the active resident roster. Dues generation iterates
// this roster once per period.
type Provider interface {
	ActiveResidents(ctx context.Context) ([]Resident, error)
}

// ErrUpstream marks roster fetches that failed at the directory service
// rather than locally.
var ErrUpstream = errors.New("directory_unavailable")

// NoOpProvider is wired when no directory service is configured. Batch
// generation then requires an explicit resident list in the request.
type NoOpProvider struct{}

func (p *NoOpProvider) ActiveResidents(ctx context.Context) ([]Resident, error) {
	return nil, nil
}
