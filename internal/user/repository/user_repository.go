package repository

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	userdomain "momentum-backend/internal/user/domain"
)

const usersCollection = "users"

// maxInQuerySize is the store's cap on "in" membership filters. Token
// resolution for chains with more participants than this is truncated,
// not chunked: notifications are best-effort and the fan-out write is
// unaffected.
const maxInQuerySize = 30

// UserRepository defines the interface for participant profile lookups
type UserRepository interface {
	// FindByUIDs resolves a set of user identities to their profile
	// documents. Identities with no profile are simply absent from the
	// result.
	FindByUIDs(ctx context.Context, uids []string) ([]userdomain.User, error)
}

// userRepository implements UserRepository on Firestore
type userRepository struct {
	client *firestore.Client
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(client *firestore.Client) UserRepository {
	return &userRepository{
		client: client,
	}
}

func (r *userRepository) FindByUIDs(ctx context.Context, uids []string) ([]userdomain.User, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	if len(uids) > maxInQuerySize {
		log.Printf("[Users] Participant set of %d exceeds in-query cap of %d, resolving first %d only",
			len(uids), maxInQuerySize, maxInQuerySize)
		uids = uids[:maxInQuerySize]
	}

	iter := r.client.Collection(usersCollection).Where("uid", "in", uids).Documents(ctx)
	defer iter.Stop()

	var users []userdomain.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query users: %w", err)
		}
		var user userdomain.User
		if err := doc.DataTo(&user); err != nil {
			log.Printf("[Users] Skipping malformed user document %s: %v", doc.Ref.ID, err)
			continue
		}
		users = append(users, user)
	}
	return users, nil
}
