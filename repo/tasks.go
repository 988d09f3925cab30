package repo

import (
	"strings"

	"go.vokalia.id/voicecheck/bus"
	"go.vokalia.id/voicecheck/internal/types"
	"go.vokalia.id/voicecheck/store"
)

// Tasks stores voice-test assignments under the "tasks" key. Tasks are
// append-only: new tasks are added, never edited or deleted, and
// "latest" is derived from creation time rather than a mutable pointer.
type Tasks struct {
	st  *store.Store
	bus *bus.Bus
}

// TaskInput describes a task to create. When AllMembers is set the
// task is assigned to every currently registered member; otherwise
// Assignees lists the member NPMs explicitly. Members who register
// later are not retroactively assigned.
type TaskInput struct {
	Title       string
	Instruction string
	Assignees   []string
	AllMembers  bool
}

// List returns all tasks in creation order.
func (r *Tasks) List() []types.Task {
	return store.Read[[]types.Task](r.st, keyTasks)
}

// ByID resolves a task id. Dangling references (for example from a
// recording whose task was lost to a concurrent write) simply report
// not-found.
func (r *Tasks) ByID(id string) (types.Task, bool) {
	if id == "" {
		return types.Task{}, false
	}
	for _, t := range r.List() {
		if t.ID == id {
			return t, true
		}
	}
	return types.Task{}, false
}

// Add validates and appends a new task, seeding status to pending for
// exactly the assigned member set.
func (r *Tasks) Add(users *Users, in TaskInput) (types.Task, error) {
	if err := required("title", in.Title); err != nil {
		return types.Task{}, err
	}
	if err := required("instruction", in.Instruction); err != nil {
		return types.Task{}, err
	}

	assignees := in.Assignees
	if in.AllMembers {
		members := users.Members()
		assignees = make([]string, 0, len(members))
		for _, m := range members {
			assignees = append(assignees, m.NPM)
		}
	}
	if len(assignees) == 0 {
		return types.Task{}, &ValidationError{Field: "assignees", Reason: "at least one member required"}
	}

	task := types.Task{
		ID:          newID("task"),
		Title:       strings.TrimSpace(in.Title),
		Instruction: in.Instruction,
		CreatedAt:   nowMilli(),
		Status:      make(map[string]string, len(assignees)),
	}
	for _, npm := range assignees {
		task.Status[npm] = types.StatusPending
	}

	all := r.List()
	all = append(all, task)
	if err := r.st.Write(keyTasks, all); err != nil {
		return types.Task{}, err
	}
	r.bus.Publish(bus.TopicTasks)
	return task, nil
}

// AssignedTo returns the tasks whose status map contains npm, in
// creation order.
func (r *Tasks) AssignedTo(npm string) []types.Task {
	var assigned []types.Task
	for _, t := range r.List() {
		if _, ok := t.Status[npm]; ok {
			assigned = append(assigned, t)
		}
	}
	return assigned
}

// Latest returns the most recently created task across all members.
func (r *Tasks) Latest() (types.Task, bool) {
	return latest(r.List())
}

// LatestFor returns the most recently created task assigned to npm,
// falling back to the global latest when the member has no assignment
// so that posted instructions remain visible to unassigned members.
func (r *Tasks) LatestFor(npm string) (types.Task, bool) {
	if t, ok := latest(r.AssignedTo(npm)); ok {
		return t, true
	}
	return r.Latest()
}

// MarkDone flips a member's status on a task to done. Unknown task ids
// and unassigned members are no-ops.
func (r *Tasks) MarkDone(taskID, npm string) error {
	all := r.List()
	changed := false
	for i := range all {
		if all[i].ID != taskID {
			continue
		}
		if _, ok := all[i].Status[npm]; ok {
			all[i].Status[npm] = types.StatusDone
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := r.st.Write(keyTasks, all); err != nil {
		return err
	}
	r.bus.Publish(bus.TopicTasks)
	return nil
}

func latest(tasks []types.Task) (types.Task, bool) {
	var best types.Task
	found := false
	for _, t := range tasks {
		if !found || t.CreatedAt > best.CreatedAt {
			best = t
			found = true
		}
	}
	return best, found
}
