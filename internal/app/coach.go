package app

import (
	"errors"
	"fmt"

	"go.vokalia.id/voicecheck/bus"
	"go.vokalia.id/voicecheck/internal/types"
	"go.vokalia.id/voicecheck/repo"
)

// ErrNotCoach is returned when a member invokes a coach action.
var ErrNotCoach = errors.New("coach role required")

// CreateTask creates a voice-test task assigned to the given members,
// or to every current member when allMembers is set.
func (s *Service) CreateTask(title, instruction string, assignees []string, allMembers bool) (types.Task, error) {
	if err := s.requireCoach(); err != nil {
		return types.Task{}, err
	}
	return s.repos.Tasks.Add(s.repos.Users, repo.TaskInput{
		Title:       title,
		Instruction: instruction,
		Assignees:   assignees,
		AllMembers:  allMembers,
	})
}

// SendMessage sends (or, with id set, edits) a coach message to a
// member.
func (s *Service) SendMessage(id, to, text string) (types.Message, error) {
	user := s.auth.CurrentUser()
	if user == nil {
		return types.Message{}, errors.New("not logged in")
	}
	from := user.NPM
	if user.Role == types.RoleCoach {
		from = types.CoachSender
	}
	return s.repos.Messages.Send(types.Message{ID: id, To: to, From: from, Text: text})
}

// SetMemberActive flips a member's activation flag. Members cannot
// start a voice check until a coach activates them.
func (s *Service) SetMemberActive(npm string, active bool) error {
	if err := s.requireCoach(); err != nil {
		return err
	}
	if err := s.store.WriteBool(memberActiveKey(npm), active); err != nil {
		return err
	}
	s.bus.Publish(bus.TopicMemberStatus)
	return nil
}

// IsMemberActive reads a member's activation flag.
func (s *Service) IsMemberActive(npm string) bool {
	return s.store.ReadBool(memberActiveKey(npm))
}

// MarkRecordingListened records that the coach has played back one of
// the member's recordings, which is what "voice check done" means on
// the roster.
func (s *Service) MarkRecordingListened(username string) error {
	if err := s.store.WriteBool(listenedKey(username), true); err != nil {
		return err
	}
	s.bus.Publish(bus.TopicMemberStatus)
	return nil
}

// HasListened reads the coach-playback flag for a member.
func (s *Service) HasListened(username string) bool {
	return s.store.ReadBool(listenedKey(username))
}

// RosterEntry is one member row on the coach dashboard.
type RosterEntry struct {
	NPM        string
	Nama       string
	VoiceLabel string
	Active     bool
	Checked    bool
	JoinedAt   int64
	Recordings int
}

// Roster assembles the coach's member overview, ordered by name.
func (s *Service) Roster() ([]RosterEntry, error) {
	if err := s.requireCoach(); err != nil {
		return nil, err
	}
	members := s.repos.Users.SortedByName()
	entries := make([]RosterEntry, 0, len(members))
	for _, m := range members {
		entries = append(entries, RosterEntry{
			NPM:        m.NPM,
			Nama:       m.Nama,
			VoiceLabel: s.repos.Classifications.LabelFor(m.NPM),
			Active:     s.IsMemberActive(m.NPM),
			Checked:    s.HasListened(m.NPM),
			JoinedAt:   m.CreatedAt,
			Recordings: len(s.repos.Recordings.ByUsername(m.NPM)),
		})
	}
	return entries, nil
}

func (s *Service) requireCoach() error {
	user := s.auth.CurrentUser()
	if user == nil || user.Role != types.RoleCoach {
		return ErrNotCoach
	}
	return nil
}

func memberActiveKey(npm string) string {
	return fmt.Sprintf("member_%s_active", npm)
}

func listenedKey(username string) string {
	return fmt.Sprintf("recording_listened_%s", username)
}
