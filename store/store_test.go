package store

import (
	"context"
	"testing"
	"time"

	"go.vokalia.id/voicecheck/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReadWriteRoundTrip(t *testing.T) {
	s := openTestStore(t)

	in := []types.Task{
		{ID: "task_1", Title: "Tes A", Instruction: "Nyanyikan do-re-mi", CreatedAt: 100,
			Status: map[string]string{"npm001": "pending"}},
		{ID: "task_2", Title: "Tes B", Instruction: "Nyanyikan skala", CreatedAt: 200,
			Status: map[string]string{"npm002": "done"}},
	}
	if err := s.Write("tasks", in); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := Read[[]types.Task](s, "tasks")
	if len(out) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(out))
	}
	if out[0].ID != "task_1" || out[1].ID != "task_2" {
		t.Errorf("order not preserved: %q, %q", out[0].ID, out[1].ID)
	}
	if out[0].Status["npm001"] != "pending" {
		t.Errorf("status lost on round trip: %v", out[0].Status)
	}
}

func TestReadMissingKeyReturnsDefault(t *testing.T) {
	s := openTestStore(t)

	if got := Read[[]types.Recording](s, "recordings"); len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
	if got := Read[map[string]types.Classification](s, "classifications"); len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}

func TestReadMalformedValueReturnsDefault(t *testing.T) {
	s := openTestStore(t)

	if err := s.WriteString("tasks", "{definitely not json"); err != nil {
		t.Fatalf("write raw: %v", err)
	}

	if got := Read[[]types.Task](s, "tasks"); len(got) != 0 {
		t.Errorf("malformed value should read as empty, got %v", got)
	}
}

func TestScalarsAndFlags(t *testing.T) {
	s := openTestStore(t)

	if err := s.WriteString("username", "Budi"); err != nil {
		t.Fatalf("write string: %v", err)
	}
	if got := s.ReadString("username"); got != "Budi" {
		t.Errorf("got %q", got)
	}
	if s.ReadBool("member_npm001_active") {
		t.Error("absent flag should be false")
	}
	if err := s.WriteBool("member_npm001_active", true); err != nil {
		t.Fatalf("write bool: %v", err)
	}
	if !s.ReadBool("member_npm001_active") {
		t.Error("flag should be true")
	}

	if err := s.Delete("username"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := s.ReadString("username"); got != "" {
		t.Errorf("deleted key should read empty, got %q", got)
	}
	if err := s.Delete("never-existed"); err != nil {
		t.Errorf("deleting absent key: %v", err)
	}
}

func TestWatchDeliversKeyNames(t *testing.T) {
	s := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 16)
	s.Watch(ctx, func(keys []string) {
		for _, k := range keys {
			got <- k
		}
	})

	// Subscription setup races the first write; give it a moment.
	time.Sleep(50 * time.Millisecond)

	if err := s.Write("users", []types.User{{NPM: "npm001", Nama: "Budi"}}); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case key := <-got:
			if key == "users" {
				return
			}
		case <-deadline:
			t.Fatal("no watch notification for users write")
		}
	}
}

// Two views read the same collection, both append, both write the full
// result back. The second write replaces the first wholesale: exactly
// one of the appended items survives. This is the accepted hazard, not
// a bug; the test pins the behavior so a silent merge or a crash would
// be noticed.
func TestConcurrentReadModifyWriteLastWriteWins(t *testing.T) {
	s := openTestStore(t)

	base := []types.Recording{{ID: "rec_0", Username: "npm001", DataURL: "data:audio/ogg;base64,AA=="}}
	if err := s.Write("recordings", base); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Both contexts read before either writes.
	viewA := Read[[]types.Recording](s, "recordings")
	viewB := Read[[]types.Recording](s, "recordings")

	viewA = append(viewA, types.Recording{ID: "rec_a", Username: "npm001", DataURL: "data:audio/ogg;base64,AA=="})
	viewB = append(viewB, types.Recording{ID: "rec_b", Username: "npm002", DataURL: "data:audio/ogg;base64,AA=="})

	if err := s.Write("recordings", viewA); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := s.Write("recordings", viewB); err != nil {
		t.Fatalf("write b: %v", err)
	}

	final := Read[[]types.Recording](s, "recordings")
	if len(final) != 2 {
		t.Fatalf("expected exactly one surviving append (2 total), got %d", len(final))
	}
	if final[1].ID != "rec_b" {
		t.Errorf("last write should win, survivor is %q", final[1].ID)
	}
}
