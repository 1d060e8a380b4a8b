// Package store persists perfumes and their equivalences in the remote
// record backend. Creation is idempotent at the perfume level: the
// backend's uniqueness constraint is the final authority, the lookup is
// only a cheap guard in front of it.
package store

import (
	"context"

	"github.com/insanerask77/tienda-perfumes/internal/model"
)

// Store is the persistence boundary used by the ingestion pipeline.
type Store interface {
	// FindPerfumeByTitle returns the perfume whose normalized title matches,
	// or (nil, nil) when none exists. Matching is case-insensitive.
	FindPerfumeByTitle(ctx context.Context, title string) (*model.Perfume, error)

	// CreatePerfume writes a new perfume record. A uniqueness rejection
	// from the backend surfaces as *ConflictError, anything else as
	// *StoreError.
	CreatePerfume(ctx context.Context, draft model.PerfumeDraft) (*model.Perfume, error)

	// CreateEquivalence writes one retailer offer linked to perfumeID.
	CreateEquivalence(ctx context.Context, perfumeID string, draft model.EquivalenceDraft) (*model.Equivalence, error)

	// Health verifies the backend is reachable; called once at startup.
	Health(ctx context.Context) error

	Close() error
}
