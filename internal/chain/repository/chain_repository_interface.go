package repository

import (
	"context"

	chaindomain "momentum-backend/internal/chain/domain"
)

// ChainRepository defines the fan-out operations on the document store.
// Every mutation is a single atomic batch scoped to one event; partial
// fan-out states are never visible to readers.
type ChainRepository interface {
	// FanOut writes the full chain payload to every participant's
	// user_chains copy in one batch (create-or-replace).
	FanOut(ctx context.Context, chain chaindomain.Chain) error
	// MergeFanOut upserts the chain payload into every participant's
	// user_chains copy with merge semantics: fields absent from the
	// payload are preserved on the existing document.
	MergeFanOut(ctx context.Context, chain chaindomain.Chain) error
	// RemoveFanOut deletes the chain's user_chains copies for the given
	// participants in one batch. Missing documents are not an error.
	RemoveFanOut(ctx context.Context, chainID string, participants []string) error
	// DeleteExpired deletes every chain whose deadline is strictly
	// before cutoff (RFC-3339 string compare), together with all its
	// user_chains copies, as one batch. Returns the number of chains
	// deleted.
	DeleteExpired(ctx context.Context, cutoff string) (int, error)
}
