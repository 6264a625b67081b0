package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	chaindomain "momentum-backend/internal/chain/domain"
	chainrepo "momentum-backend/internal/chain/repository"
)

// chainFanoutUsecase implements ChainFanoutUsecase
type chainFanoutUsecase struct {
	chainRepo chainrepo.ChainRepository
	notifier  Notifier
}

// NewChainFanoutUsecase creates a new chainFanoutUsecase. notifier may
// be nil when push messaging is not configured.
func NewChainFanoutUsecase(chainRepo chainrepo.ChainRepository, notifier Notifier) ChainFanoutUsecase {
	return &chainFanoutUsecase{
		chainRepo: chainRepo,
		notifier:  notifier,
	}
}

// HandleChainCreated copies the new chain into every participant's
// personal index, then notifies participants. Notifications start only
// after the batch write has committed.
func (u *chainFanoutUsecase) HandleChainCreated(ctx context.Context, chainID string, data map[string]interface{}) error {
	chain := chaindomain.DecodeChain(chainID, data)
	if err := chain.Validate(); err != nil {
		log.Printf("[FanOut] Discarding create event: %v", err)
		return nil
	}

	if err := u.chainRepo.FanOut(ctx, chain); err != nil {
		return fmt.Errorf("error processing new chain: %w", err)
	}
	log.Printf("[FanOut] Chain %s added to %d participants", chain.ID, len(chain.Participants))

	if u.notifier != nil {
		u.notifier.NotifyChainCreated(ctx, chain)
	}
	return nil
}

// HandleChainUpdated re-propagates the post-update state to every
// participant's index entry with merge semantics. Participants dropped
// by this update keep their stale entry until the chain is deleted or
// expires.
func (u *chainFanoutUsecase) HandleChainUpdated(ctx context.Context, chainID string, data map[string]interface{}) error {
	chain := chaindomain.DecodeChain(chainID, data)
	if err := chain.Validate(); err != nil {
		log.Printf("[FanOut] Discarding update event: %v", err)
		return nil
	}

	if err := u.chainRepo.MergeFanOut(ctx, chain); err != nil {
		return fmt.Errorf("error processing chain update: %w", err)
	}
	log.Printf("[FanOut] Chain %s updated for %d participants", chain.ID, len(chain.Participants))
	return nil
}

// HandleChainDeleted removes the chain's index entries for every
// participant recorded in the deleted document's last-known data.
func (u *chainFanoutUsecase) HandleChainDeleted(ctx context.Context, chainID string, data map[string]interface{}) error {
	if chainID == "" {
		log.Printf("[FanOut] Discarding delete event with no chain id")
		return nil
	}
	chain := chaindomain.DecodeChain(chainID, data)
	if len(chain.Participants) == 0 {
		log.Printf("[FanOut] Chain %s deleted with no participants, nothing to clean up", chainID)
		return nil
	}

	if err := u.chainRepo.RemoveFanOut(ctx, chain.ID, chain.Participants); err != nil {
		return fmt.Errorf("error processing chain deletion: %w", err)
	}
	log.Printf("[FanOut] Chain %s removed from %d participants", chain.ID, len(chain.Participants))
	return nil
}

// SweepExpiredChains deletes every chain whose deadline is strictly
// before now, together with all fan-out copies, in one batch. A chain
// whose deadline equals the sweep instant survives until the next run.
func (u *chainFanoutUsecase) SweepExpiredChains(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.UTC().Format(time.RFC3339)
	deleted, err := u.chainRepo.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("error cleaning up expired chains: %w", err)
	}
	if deleted == 0 {
		log.Printf("[FanOut] No expired chains found")
		return 0, nil
	}
	log.Printf("[FanOut] Deleted %d expired chains", deleted)
	return deleted, nil
}
