package usecase

import (
	"context"
	"time"

	chaindomain "momentum-backend/internal/chain/domain"
)

// ChainFanoutUsecase reacts to chain document mutations and the expiry
// schedule. The mutation handlers return a nil error for malformed
// input (discard-and-log, so the trigger source never redelivers a bad
// event) and a non-nil error only for store failures.
type ChainFanoutUsecase interface {
	HandleChainCreated(ctx context.Context, chainID string, data map[string]interface{}) error
	HandleChainUpdated(ctx context.Context, chainID string, data map[string]interface{}) error
	HandleChainDeleted(ctx context.Context, chainID string, data map[string]interface{}) error
	// SweepExpiredChains deletes every chain whose deadline passed
	// before now, plus its fan-out copies. Returns the number of chains
	// removed.
	SweepExpiredChains(ctx context.Context, now time.Time) (int, error)
}

// Notifier is the push side effect of chain creation. Implementations
// are best-effort and must never surface an error into the fan-out
// outcome.
type Notifier interface {
	NotifyChainCreated(ctx context.Context, chain chaindomain.Chain)
}
