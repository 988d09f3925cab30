// Package bus provides the in-process publish/subscribe channel that
// keeps open views in step with the persistent store.
package bus

import "sync"

// Topics corresponding to persisted collections and session state.
// UI-signal topics are free-form strings published alongside these.
const (
	TopicUsers           = "users"
	TopicTasks           = "tasks"
	TopicRecordings      = "recordings"
	TopicClassifications = "classifications"
	TopicMessages        = "messages"
	TopicAuth            = "auth"
	TopicMemberStatus    = "member-status"
)

// Handler receives a payload-free "something changed" signal. Handlers
// must re-read whatever state they mirror; the bus never carries values.
type Handler func()

type subscriber struct {
	topic   string
	handler Handler
}

// Bus is a topic-keyed pub/sub channel. Delivery is synchronous and
// handlers run in subscription order within the publishing goroutine.
type Bus struct {
	mu   sync.Mutex
	subs []*subscriber
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers handler for topic and returns a function that
// removes the subscription. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(topic string, handler Handler) func() {
	sub := &subscriber{topic: topic, handler: handler}
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s == sub {
					b.subs = append(b.subs[:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish invokes every handler subscribed to topic, in subscription
// order. Publishing to a topic with no subscribers is a no-op.
func (b *Bus) Publish(topic string) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.topic == topic {
			handlers = append(handlers, s.handler)
		}
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h()
	}
}
