package notification

import (
	"context"
	"fmt"
	"log"
	"sync"

	chaindomain "momentum-backend/internal/chain/domain"
	userdomain "momentum-backend/internal/user/domain"
	userrepo "momentum-backend/internal/user/repository"
	"momentum-backend/pkg/fcm"
)

// Sender delivers a push notification to one device token.
type Sender interface {
	SendToDevice(ctx context.Context, token string, notification fcm.NotificationData) error
}

// ChainNotifier sends chain push notifications to participants.
type ChainNotifier struct {
	userRepo userrepo.UserRepository
	sender   Sender
}

// NewChainNotifier creates a new ChainNotifier
func NewChainNotifier(userRepo userrepo.UserRepository, sender Sender) *ChainNotifier {
	return &ChainNotifier{
		userRepo: userRepo,
		sender:   sender,
	}
}

// NotifyChainCreated tells every participant except the creator that a
// new chain started. Sends run concurrently and each failure is logged
// without touching the sibling sends; a failed token lookup degrades to
// sending nothing. Callers invoke this only after the fan-out batch has
// committed.
func (n *ChainNotifier) NotifyChainCreated(ctx context.Context, chain chaindomain.Chain) {
	if n.sender == nil {
		log.Printf("[Notify] FCM sender not available, skipping notifications for chain %s", chain.ID)
		return
	}

	users, err := n.userRepo.FindByUIDs(ctx, chain.Participants)
	if err != nil {
		log.Printf("[Notify] Error resolving participants for chain %s: %v", chain.ID, err)
		return
	}

	notification := fcm.NotificationData{
		Title: "New Chain Started!",
		Body:  fmt.Sprintf("You've been added to a new chain: %s", chain.Theme),
		Data: map[string]string{
			"type":    "chain_created",
			"chainId": chain.ID,
		},
	}

	var wg sync.WaitGroup
	sent := 0
	for _, user := range users {
		if user.UID == chain.CreatedBy {
			continue
		}
		if user.FCMToken == "" {
			log.Printf("[Notify] No FCM token for user %s, skipping", user.UID)
			continue
		}
		sent++
		wg.Add(1)
		go func(u userdomain.User) {
			defer wg.Done()
			if err := n.sender.SendToDevice(ctx, u.FCMToken, notification); err != nil {
				log.Printf("[Notify] Failed to notify user %s for chain %s: %v", u.UID, chain.ID, err)
			}
		}(user)
	}
	wg.Wait()

	log.Printf("[Notify] Notifications dispatched for chain %s (%d recipients)", chain.ID, sent)
}
