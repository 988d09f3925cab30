package repo

import (
	"fmt"
	"strings"

	"go.vokalia.id/voicecheck/bus"
	"go.vokalia.id/voicecheck/internal/types"
	"go.vokalia.id/voicecheck/store"
)

// Classifications stores voice-type labels under the "classifications"
// key as a map of composite "<taskID>:<username>" keys. The composite
// key makes entries unique per (task, member) by construction: a second
// write to the same pair overwrites, never appends. Labels are written
// by the external classification collaborator and read by both
// dashboards; only the latest label per pair is kept.
type Classifications struct {
	st  *store.Store
	bus *bus.Bus
}

// Key builds the composite key for one (task, member) pair.
func (r *Classifications) Key(taskID, username string) string {
	return fmt.Sprintf("%s:%s", taskID, username)
}

// All returns the full classification map.
func (r *Classifications) All() map[string]types.Classification {
	m := store.Read[map[string]types.Classification](r.st, keyClassifications)
	if m == nil {
		m = map[string]types.Classification{}
	}
	return m
}

// Set records a label for one (task, member) pair, overwriting any
// prior entry with a fresh timestamp. A missing task or member id makes
// the call a no-op.
func (r *Classifications) Set(taskID, username, label string) error {
	if taskID == "" || username == "" {
		return nil
	}
	all := r.All()
	all[r.Key(taskID, username)] = types.Classification{
		Label: label,
		At:    nowMilli(),
	}
	if err := r.st.Write(keyClassifications, all); err != nil {
		return err
	}
	r.bus.Publish(bus.TopicClassifications)
	return nil
}

// For returns the classification for one (task, member) pair.
func (r *Classifications) For(taskID, username string) (types.Classification, bool) {
	c, ok := r.All()[r.Key(taskID, username)]
	return c, ok
}

// LatestFor returns the most recent classification attached to a
// member across all tasks. Both dashboards read this: the roster's
// voice-type column and the member summary show the same label.
func (r *Classifications) LatestFor(username string) (types.Classification, bool) {
	var best types.Classification
	found := false
	suffix := ":" + username
	for key, c := range r.All() {
		if !strings.HasSuffix(key, suffix) {
			continue
		}
		if !found || c.At >= best.At {
			best = c
			found = true
		}
	}
	return best, found
}

// LabelFor returns the most recent label for a member, or "" when the
// member has never been classified.
func (r *Classifications) LabelFor(username string) string {
	c, _ := r.LatestFor(username)
	return c.Label
}
