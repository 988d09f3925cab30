package bus

import (
	"context"
	"testing"
	"time"

	"go.vokalia.id/voicecheck/store"
)

func TestPublishOrderedDelivery(t *testing.T) {
	b := New()

	var order []int
	b.Subscribe(TopicTasks, func() { order = append(order, 1) })
	b.Subscribe(TopicTasks, func() { order = append(order, 2) })
	b.Subscribe(TopicTasks, func() { order = append(order, 3) })
	b.Subscribe(TopicUsers, func() { order = append(order, 99) })

	b.Publish(TopicTasks)

	if len(order) != 3 {
		t.Fatalf("expected 3 deliveries, got %d", len(order))
	}
	for i, v := range order {
		if v != i+1 {
			t.Errorf("delivery out of subscription order: %v", order)
			break
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()

	calls := 0
	unsub := b.Subscribe(TopicRecordings, func() { calls++ })

	b.Publish(TopicRecordings)
	unsub()
	unsub() // double unsubscribe is harmless
	b.Publish(TopicRecordings)

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	b := New()
	b.Publish("ui-signal-with-no-listeners") // must not panic
}

func TestTopicForKey(t *testing.T) {
	cases := []struct {
		key, topic string
	}{
		{"tasks", TopicTasks},
		{"users", TopicUsers},
		{"recordings", TopicRecordings},
		{"classifications", TopicClassifications},
		{"messages", TopicMessages},
		{"isLoggedIn", TopicAuth},
		{"token", TopicAuth},
		{"member_npm001_active", TopicMemberStatus},
		{"user_Budi_active", TopicMemberStatus},
		{"recording_listened_npm001", TopicMemberStatus},
		{"unrelated", ""},
	}
	for _, c := range cases {
		if got := TopicForKey(c.key); got != c.topic {
			t.Errorf("TopicForKey(%q) = %q, want %q", c.key, got, c.topic)
		}
	}
}

func TestBindStoreRelaysExternalWrites(t *testing.T) {
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.BindStore(ctx, st)

	signaled := make(chan struct{}, 1)
	b.Subscribe(TopicTasks, func() {
		select {
		case signaled <- struct{}{}:
		default:
		}
	})

	time.Sleep(50 * time.Millisecond)

	// A write that does not go through any repository, as another view
	// would produce.
	if err := st.Write("tasks", []string{}); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-signaled:
	case <-time.After(2 * time.Second):
		t.Fatal("store write did not reach bus subscriber")
	}
}
