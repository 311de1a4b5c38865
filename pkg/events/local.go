package events

import (
	"context"
	"sync"
)

// LocalBroker delivers events in-process. Handlers run synchronously on the publisher goroutine.
type LocalBroker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]Handler
}

// NewLocalBroker constructs an empty in-process broker.
func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[string]map[int]Handler)}
}

// Publish delivers evt to every current subscriber of topic.
func (b *LocalBroker) Publish(_ context.Context, topic string, evt Event) error {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(evt)
	}
	return nil
}

// Subscribe registers handler on topic until the returned func is called.
func (b *LocalBroker) Subscribe(_ context.Context, topic string, handler Handler) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	b.subs[topic][id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[topic], id)
			if len(b.subs[topic]) == 0 {
				delete(b.subs, topic)
			}
		})
	}, nil
}

// Topics lists topics that currently have subscribers.
func (b *LocalBroker) Topics() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	topics := make([]string, 0, len(b.subs))
	for topic := range b.subs {
		topics = append(topics, topic)
	}
	return topics
}
