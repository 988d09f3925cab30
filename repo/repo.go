// Package repo provides CRUD façades over the persistent store, one
// per persisted collection. Each repository owns one storage key, one
// shape and one ID-generation policy, and publishes its topic on the
// bus after every mutation. Mutations are read-modify-write over the
// whole collection; there is no locking across views, so interleaved
// writers race with last-write-wins.
package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"go.vokalia.id/voicecheck/bus"
	"go.vokalia.id/voicecheck/store"
)

// Storage keys owned by the repositories. They double as bus topics.
const (
	keyUsers           = bus.TopicUsers
	keyTasks           = bus.TopicTasks
	keyRecordings      = bus.TopicRecordings
	keyClassifications = bus.TopicClassifications
	keyMessages        = bus.TopicMessages
)

// ValidationError rejects an operation before any store mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func required(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Reason: "must not be empty"}
	}
	return nil
}

// Repositories bundles one repository per persisted collection, all
// sharing a store and a bus.
type Repositories struct {
	Users           *Users
	Tasks           *Tasks
	Recordings      *Recordings
	Classifications *Classifications
	Messages        *Messages
}

// New wires the repositories over the shared store and bus.
func New(st *store.Store, b *bus.Bus) *Repositories {
	return &Repositories{
		Users:           &Users{st: st, bus: b},
		Tasks:           &Tasks{st: st, bus: b},
		Recordings:      &Recordings{st: st, bus: b},
		Classifications: &Classifications{st: st, bus: b},
		Messages:        &Messages{st: st, bus: b},
	}
}

// newID generates a collection-unique ID: coarse unix-ms timestamp plus
// a random suffix. Collisions are treated as negligible, not excluded.
func newID(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}

func nowMilli() int64 {
	return time.Now().UnixMilli()
}
