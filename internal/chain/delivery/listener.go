package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"momentum-backend/internal/chain/usecase"
)

// Event types carried on the chain-events topic.
const (
	EventChainCreated = "created"
	EventChainUpdated = "updated"
	EventChainDeleted = "deleted"
)

// ChainEvent is the JSON envelope published for every mutation on
// chains/{chainId}. Data is the document payload: the new state for
// created/updated events, the last-known state for deleted events.
type ChainEvent struct {
	Type    string                 `json:"type"`
	ChainID string                 `json:"chainId"`
	Data    map[string]interface{} `json:"data"`
}

// Listener consumes chain mutation events from a Pub/Sub subscription
// and dispatches them to the fan-out usecase.
type Listener struct {
	pubsubClient *pubsub.Client
	fanout       usecase.ChainFanoutUsecase
	topicName    string
	subName      string
}

// NewListener creates a new Listener
func NewListener(projectID, topicName, subName string, fanout usecase.ChainFanoutUsecase, credentialsFile string) (*Listener, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	if subName == "" {
		subName = topicName + "-sub" // Convention: topic-sub
	}

	return &Listener{
		pubsubClient: client,
		fanout:       fanout,
		topicName:    topicName,
		subName:      subName,
	}, nil
}

// Start blocks receiving chain events until ctx is cancelled. Every
// message is acked regardless of handler outcome: redelivering a
// mutation event is not safe once it has been partially processed, so
// handler errors are drop-and-log.
func (l *Listener) Start(ctx context.Context) {
	log.Printf("[PubSub] Starting chain event listener with topic: %s, subscription: %s", l.topicName, l.subName)

	sub := l.pubsubClient.Subscription(l.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[PubSub] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := l.pubsubClient.Topic(l.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[PubSub] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[PubSub] Topic %s does not exist, cannot create subscription", l.topicName)
			return
		}

		sub, err = l.pubsubClient.CreateSubscription(ctx, l.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[PubSub] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[PubSub] Created subscription: %s", l.subName)
	}

	log.Printf("[PubSub] Listening for chain events on subscription: %s", l.subName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		l.handleMessage(ctx, msg)
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Error receiving messages: %v", err)
	}
}

// Close releases the underlying Pub/Sub client.
func (l *Listener) Close() error {
	return l.pubsubClient.Close()
}

func (l *Listener) handleMessage(ctx context.Context, msg *pubsub.Message) {
	event, err := decodeEvent(msg.Data)
	if err != nil {
		log.Printf("[PubSub] Dropping malformed chain event: %v", err)
		return
	}
	if err := l.dispatch(ctx, event); err != nil {
		log.Printf("[PubSub] Error handling %s event for chain %s: %v", event.Type, event.ChainID, err)
	}
}

func (l *Listener) dispatch(ctx context.Context, event ChainEvent) error {
	switch event.Type {
	case EventChainCreated:
		return l.fanout.HandleChainCreated(ctx, event.ChainID, event.Data)
	case EventChainUpdated:
		return l.fanout.HandleChainUpdated(ctx, event.ChainID, event.Data)
	case EventChainDeleted:
		return l.fanout.HandleChainDeleted(ctx, event.ChainID, event.Data)
	default:
		return fmt.Errorf("unknown event type %q", event.Type)
	}
}

func decodeEvent(raw []byte) (ChainEvent, error) {
	var event ChainEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return ChainEvent{}, fmt.Errorf("failed to unmarshal chain event: %w", err)
	}
	if event.Type == "" {
		return ChainEvent{}, fmt.Errorf("chain event has no type")
	}
	return event, nil
}
