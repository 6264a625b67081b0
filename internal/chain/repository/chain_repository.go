package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	chaindomain "momentum-backend/internal/chain/domain"
)

const (
	chainsCollection     = "chains"
	userChainsCollection = "user_chains"
)

// chainRepository implements ChainRepository on Firestore
type chainRepository struct {
	client *firestore.Client
}

// NewChainRepository creates a new instance of chainRepository
func NewChainRepository(client *firestore.Client) ChainRepository {
	return &chainRepository{
		client: client,
	}
}

func (r *chainRepository) chains() *firestore.CollectionRef {
	return r.client.Collection(chainsCollection)
}

// userChainDoc resolves user_chains/{participantID}/user_chains/{chainID}.
func (r *chainRepository) userChainDoc(participantID, chainID string) *firestore.DocumentRef {
	return r.client.Collection(userChainsCollection).
		Doc(participantID).
		Collection(userChainsCollection).
		Doc(chainID)
}

// FanOut copies the chain into every participant's personal index as
// one atomic batch.
func (r *chainRepository) FanOut(ctx context.Context, chain chaindomain.Chain) error {
	batch := r.client.Batch()
	payload := chain.Map()
	for _, participantID := range chain.Participants {
		batch.Set(r.userChainDoc(participantID, chain.ID), payload)
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit fan-out batch for chain %s: %w", chain.ID, err)
	}
	return nil
}

// MergeFanOut re-propagates the chain to every participant's personal
// index with merge semantics, as one atomic batch.
func (r *chainRepository) MergeFanOut(ctx context.Context, chain chaindomain.Chain) error {
	batch := r.client.Batch()
	payload := chain.Map()
	for _, participantID := range chain.Participants {
		batch.Set(r.userChainDoc(participantID, chain.ID), payload, firestore.MergeAll)
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit merge batch for chain %s: %w", chain.ID, err)
	}
	return nil
}

// RemoveFanOut deletes the chain's index entries for the given
// participants. Deleting an already-deleted document is a success.
func (r *chainRepository) RemoveFanOut(ctx context.Context, chainID string, participants []string) error {
	if len(participants) == 0 {
		return nil
	}
	batch := r.client.Batch()
	for _, participantID := range participants {
		batch.Delete(r.userChainDoc(participantID, chainID))
	}
	if _, err := batch.Commit(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil
		}
		return fmt.Errorf("failed to commit delete batch for chain %s: %w", chainID, err)
	}
	return nil
}

// DeleteExpired removes every chain with deadline < cutoff plus its
// fan-out copies in a single batch, so a failed run leaves the store
// untouched for the next scheduled attempt.
func (r *chainRepository) DeleteExpired(ctx context.Context, cutoff string) (int, error) {
	iter := r.chains().Where("deadline", "<", cutoff).Documents(ctx)
	defer iter.Stop()

	batch := r.client.Batch()
	count := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to query expired chains: %w", err)
		}

		batch.Delete(doc.Ref)

		chain := chaindomain.DecodeChain(doc.Ref.ID, doc.Data())
		for _, participantID := range chain.Participants {
			batch.Delete(r.userChainDoc(participantID, doc.Ref.ID))
		}
		count++
	}

	if count == 0 {
		return 0, nil
	}

	if _, err := batch.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit expiry batch: %w", err)
	}
	return count, nil
}
