package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ctchen222/tictactoe-ai/internal/events"
)

const subscriptionBuffer = 16

type redisEventBus struct {
	rdb *redis.Client
}

// NewEventBus creates an EventBus on Redis pub/sub.
func NewEventBus(rdb *redis.Client) EventBus {
	return &redisEventBus{rdb: rdb}
}

func (b *redisEventBus) Publish(ctx context.Context, gameID string, event events.Event) error {
	ctx, span := tracer.Start(ctx, "EventBus.Publish", trace.WithAttributes(
		attribute.String("game.id", gameID),
		attribute.String("event.type", event.Type),
	))
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.rdb.Publish(ctx, events.Channel(gameID), data).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish event")
		return fmt.Errorf("failed to publish %s for game %s: %w", event.Type, gameID, err)
	}
	return nil
}

// Subscribe returns once Redis has confirmed the subscription, so events
// published after it returns are not missed.
func (b *redisEventBus) Subscribe(ctx context.Context, gameID string) (Subscription, error) {
	ctx, span := tracer.Start(ctx, "EventBus.Subscribe", trace.WithAttributes(attribute.String("game.id", gameID)))
	defer span.End()

	pubsub := b.rdb.Subscribe(ctx, events.Channel(gameID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to subscribe")
		return nil, fmt.Errorf("failed to subscribe to game %s: %w", gameID, err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		out:    make(chan events.Event, subscriptionBuffer),
		done:   make(chan struct{}),
	}
	go sub.run(gameID)
	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	out    chan events.Event
	done   chan struct{}
	once   sync.Once
}

func (s *redisSubscription) run(gameID string) {
	defer close(s.out)
	for msg := range s.pubsub.Channel() {
		var ev events.Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			slog.Warn("dropping malformed event", "game.id", gameID, "error", err)
			continue
		}
		select {
		case s.out <- ev:
		case <-s.done:
			return
		}
	}
}

func (s *redisSubscription) Events() <-chan events.Event {
	return s.out
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}
