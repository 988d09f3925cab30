package repo

import (
	"strings"

	"go.vokalia.id/voicecheck/bus"
	"go.vokalia.id/voicecheck/internal/types"
	"go.vokalia.id/voicecheck/store"
)

// Messages stores coach/member notes under the "messages" key.
type Messages struct {
	st  *store.Store
	bus *bus.Bus
}

// List returns all messages in send order.
func (r *Messages) List() []types.Message {
	return store.Read[[]types.Message](r.st, keyMessages)
}

// ForUser returns the messages visible to one member: those addressed
// to them and those they sent.
func (r *Messages) ForUser(npm string) []types.Message {
	var out []types.Message
	for _, m := range r.List() {
		if m.To == npm || m.From == npm {
			out = append(out, m)
		}
	}
	return out
}

// Send appends a message, or, when msg.ID is set, edits the existing
// message with that id in place (find-and-replace in the full list,
// preserving the original send time). An id that matches nothing is
// appended as-is, which makes a concurrent edit of a lost message an
// overwrite rather than an error.
func (r *Messages) Send(msg types.Message) (types.Message, error) {
	msg.Text = strings.TrimSpace(msg.Text)
	if err := required("text", msg.Text); err != nil {
		return types.Message{}, err
	}
	if err := required("to", msg.To); err != nil {
		return types.Message{}, err
	}
	if msg.From == "" {
		msg.From = types.CoachSender
	}

	all := r.List()
	if msg.ID != "" {
		replaced := false
		for i := range all {
			if all[i].ID == msg.ID {
				msg.CreatedAt = all[i].CreatedAt
				all[i] = msg
				replaced = true
				break
			}
		}
		if !replaced {
			msg.CreatedAt = nowMilli()
			all = append(all, msg)
		}
	} else {
		msg.ID = newID("msg")
		msg.CreatedAt = nowMilli()
		all = append(all, msg)
	}

	if err := r.st.Write(keyMessages, all); err != nil {
		return types.Message{}, err
	}
	r.bus.Publish(bus.TopicMessages)
	return msg, nil
}
