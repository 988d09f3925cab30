package repo

import (
	"go.vokalia.id/voicecheck/bus"
	"go.vokalia.id/voicecheck/internal/types"
	"go.vokalia.id/voicecheck/store"
)

// Recordings stores encoded audio submissions under the "recordings"
// key. The collection is append-only; entries are never edited or
// deleted.
type Recordings struct {
	st  *store.Store
	bus *bus.Bus
}

// List returns all recordings in submission order.
func (r *Recordings) List() []types.Recording {
	return store.Read[[]types.Recording](r.st, keyRecordings)
}

// ByUsername returns the recordings submitted by one member.
func (r *Recordings) ByUsername(npm string) []types.Recording {
	var out []types.Recording
	for _, rec := range r.List() {
		if rec.Username == npm {
			out = append(out, rec)
		}
	}
	return out
}

// ForTask returns the recordings attached to one task. A recording
// whose TaskID dangles is simply not returned for any live task.
func (r *Recordings) ForTask(taskID string) []types.Recording {
	if taskID == "" {
		return nil
	}
	var out []types.Recording
	for _, rec := range r.List() {
		if rec.TaskID == taskID {
			out = append(out, rec)
		}
	}
	return out
}

// Add stamps an ID and creation time and appends the recording. The
// caller provides username, file name, MIME and the self-contained
// data URL; TaskID may be empty.
func (r *Recordings) Add(rec types.Recording) (types.Recording, error) {
	if err := required("username", rec.Username); err != nil {
		return types.Recording{}, err
	}
	if err := required("dataUrl", rec.DataURL); err != nil {
		return types.Recording{}, err
	}

	rec.ID = newID("rec")
	rec.CreatedAt = nowMilli()

	all := r.List()
	all = append(all, rec)
	if err := r.st.Write(keyRecordings, all); err != nil {
		return types.Recording{}, err
	}
	r.bus.Publish(bus.TopicRecordings)
	return rec, nil
}
