// Package types provides shared type definitions for the application.
package types

import "strings"

// Roles recognized by the application. Role strings are compared
// case-insensitively at the boundary; normalize once with NormalizeRole.
const (
	RoleMember = "member"
	RoleCoach  = "coach"
)

// CoachSender is the sentinel used in Message.From for coach-authored
// messages.
const CoachSender = "coach"

// Task status values per assigned member.
const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// NormalizeRole lowercases and trims a role string. Unknown roles are
// passed through unchanged apart from normalization.
func NormalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// User is a registered account. NPM is the natural key; duplicate
// registrations are rejected before any write.
type User struct {
	NPM       string `json:"npm"`
	Nama      string `json:"nama"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	CreatedAt int64  `json:"createdAt"`
}

// IsCoach reports whether the user holds the coach role.
func (u User) IsCoach() bool {
	return NormalizeRole(u.Role) == RoleCoach
}

// Task is a voice-test assignment created by a coach. Status holds one
// entry per assigned member; absence means "not assigned", not
// "not started". Tasks are append-only and never edited.
type Task struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Instruction string            `json:"instruction"`
	CreatedAt   int64             `json:"createdAt"`
	Status      map[string]string `json:"status"`
}

// Recording is an encoded audio submission. Append-only; never mutated
// after creation. TaskID may be empty (no task) or dangle if the task
// collection was written concurrently; reads tolerate both.
type Recording struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FileName  string `json:"fileName"`
	MIME      string `json:"mime"`
	DataURL   string `json:"dataUrl"`
	TaskID    string `json:"taskId,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// Classification is a voice-type label attached to one (task, member)
// pair. At most one entry per pair; a rewrite replaces the prior label.
type Classification struct {
	Label string `json:"label"`
	At    int64  `json:"at"`
}

// Message is a note between the coach and a member. From is either the
// coach sentinel or a member NPM; To is a member NPM.
type Message struct {
	ID        string `json:"id"`
	To        string `json:"to"`
	From      string `json:"from"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
}
