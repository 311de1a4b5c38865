package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "journal:events:"

// RedisBroker fans events out through Redis Pub/Sub so every API instance sees them.
type RedisBroker struct {
	client *redis.Client
	logger *zap.Logger

	mu     sync.RWMutex
	topics map[string]int
}

// NewRedisBroker wraps a go-redis client.
func NewRedisBroker(client *redis.Client, logger *zap.Logger) *RedisBroker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBroker{client: client, logger: logger, topics: make(map[string]int)}
}

// Publish JSON-encodes evt onto the topic channel.
func (b *RedisBroker) Publish(ctx context.Context, topic string, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.client.Publish(ctx, channelPrefix+topic, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Subscribe opens a Pub/Sub subscription and forwards decoded events to handler.
func (b *RedisBroker) Subscribe(ctx context.Context, topic string, handler Handler) (func(), error) {
	pubsub := b.client.Subscribe(ctx, channelPrefix+topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}

	b.mu.Lock()
	b.topics[topic]++
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range pubsub.Channel() {
			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				b.logger.Warn("discard malformed event", zap.String("topic", topic), zap.Error(err))
				continue
			}
			handler(evt)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = pubsub.Close()
			<-done
			b.mu.Lock()
			b.topics[topic]--
			if b.topics[topic] <= 0 {
				delete(b.topics, topic)
			}
			b.mu.Unlock()
		})
	}, nil
}

// Topics lists topics with a live subscription on this instance.
func (b *RedisBroker) Topics() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	topics := make([]string, 0, len(b.topics))
	for topic := range b.topics {
		topics = append(topics, topic)
	}
	return topics
}
