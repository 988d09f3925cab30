package bus

import (
	"context"
	"strings"

	"go.vokalia.id/voicecheck/store"
)

// Session scalar keys that map onto the auth topic.
var sessionKeys = map[string]bool{
	"isLoggedIn": true,
	"role":       true,
	"username":   true,
	"npm":        true,
	"token":      true,
}

// TopicForKey maps a store key to the bus topic it should signal.
// Collection keys map to their own topic; session scalars map to auth;
// the ad-hoc per-member flag keys map to member-status.
func TopicForKey(key string) string {
	switch key {
	case TopicUsers, TopicTasks, TopicRecordings, TopicClassifications, TopicMessages:
		return key
	}
	if sessionKeys[key] {
		return TopicAuth
	}
	if strings.HasPrefix(key, "member_") ||
		strings.HasPrefix(key, "user_") ||
		strings.HasPrefix(key, "recording_listened_") {
		return TopicMemberStatus
	}
	return ""
}

// BindStore bridges store change notifications onto the bus so that a
// write from another view reaches the same subscribers as an in-process
// publish. Signals arrive asynchronously and carry no payload; a
// mutation made through a repository therefore fans out twice (once
// from the repository's own publish, once from the watch), which is
// harmless because subscribers re-read wholesale. Runs until ctx is
// cancelled.
func (b *Bus) BindStore(ctx context.Context, s *store.Store) {
	s.Watch(ctx, func(keys []string) {
		seen := make(map[string]bool, len(keys))
		for _, key := range keys {
			topic := TopicForKey(key)
			if topic == "" || seen[topic] {
				continue
			}
			seen[topic] = true
			b.Publish(topic)
		}
	})
}
