package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const brokerChannel = "campuslink:events"

// RedisBroker relays events between API instances. Publish goes to Redis
// only; every instance, this one included, receives it back in Run and
// delivers it to its local Hub.
type RedisBroker struct {
	client *redis.Client
	hub    *Hub
	logger *zap.Logger
}

func NewRedisBroker(client *redis.Client, hub *Hub, logger *zap.Logger) *RedisBroker {
	return &RedisBroker{client: client, hub: hub, logger: logger}
}

func (b *RedisBroker) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.client.Publish(ctx, brokerChannel, data).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Run relays events from Redis into the hub until ctx is cancelled.
func (b *RedisBroker) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, brokerChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", brokerChannel, err)
	}
	b.logger.Info("realtime broker subscribed", zap.String("channel", brokerChannel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				b.logger.Warn("dropping malformed event", zap.Error(err))
				continue
			}
			b.hub.Deliver(e)
		}
	}
}
