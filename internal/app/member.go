package app

import (
	"context"
	"errors"
	"time"

	"go.vokalia.id/voicecheck/internal/types"
	"go.vokalia.id/voicecheck/recording"
)

// ErrInactive is returned when a member whose account the coach has
// not activated tries to start a voice check.
var ErrInactive = errors.New("account not activated by coach")

// ErrCheckRunning is returned when a voice check is already in flight.
var ErrCheckRunning = errors.New("voice check already in progress")

// StartVoiceCheck opens the microphone and begins a capture for the
// logged-in member. The activation gate mirrors the coach's roster
// switch: inactive members are refused before any device access.
func (s *Service) StartVoiceCheck(ctx context.Context) error {
	user := s.auth.CurrentUser()
	if user == nil {
		return errors.New("not logged in")
	}
	if !s.IsMemberActive(user.NPM) {
		return ErrInactive
	}
	if s.session != nil && s.session.State() != recording.StateIdle {
		return ErrCheckRunning
	}

	s.session = recording.NewSession(s.repos.Recordings, s.repos.Tasks, recording.Options{
		Username:   user.NPM,
		SampleRate: s.cfg.SampleRate,
	})
	return s.session.Start(ctx)
}

// StopVoiceCheck ends the capture and encodes the take.
func (s *Service) StopVoiceCheck() error {
	if s.session == nil {
		return nil
	}
	return s.session.Stop()
}

// SendVoiceCheck persists the encoded take.
func (s *Service) SendVoiceCheck() (types.Recording, error) {
	if s.session == nil {
		return types.Recording{}, recording.ErrNotReady
	}
	return s.session.Send()
}

// ResetVoiceCheck discards the take for a re-record.
func (s *Service) ResetVoiceCheck() error {
	if s.session == nil {
		return nil
	}
	return s.session.Reset()
}

// VoiceCheck returns the active session, or nil between checks.
func (s *Service) VoiceCheck() *recording.Session {
	return s.session
}

// UploadRecording persists an existing audio file for the logged-in
// member, the non-capture path to the same recordings collection.
func (s *Service) UploadRecording(path string) (types.Recording, error) {
	user := s.auth.CurrentUser()
	if user == nil {
		return types.Recording{}, errors.New("not logged in")
	}
	return recording.Upload(s.repos.Recordings, s.repos.Tasks, user.NPM, path)
}

// MemberSummary is the member dashboard's stat-card data.
type MemberSummary struct {
	TotalTasks   int
	Done         int
	Pending      int
	Recordings   int
	LatestTask   *types.Task
	VoiceLabel   string
	ClassifiedAt time.Time
}

// Summary assembles the member dashboard numbers for the logged-in
// member: task totals, their done/pending split, recording count and
// their latest classification across tasks.
func (s *Service) Summary() (MemberSummary, error) {
	user := s.auth.CurrentUser()
	if user == nil {
		return MemberSummary{}, errors.New("not logged in")
	}

	var sum MemberSummary
	tasks := s.repos.Tasks.List()
	sum.TotalTasks = len(tasks)
	for _, t := range tasks {
		switch t.Status[user.NPM] {
		case types.StatusDone:
			sum.Done++
		case types.StatusPending:
			sum.Pending++
		}
	}
	sum.Recordings = len(s.repos.Recordings.ByUsername(user.NPM))

	if latest, ok := s.repos.Tasks.LatestFor(user.NPM); ok {
		sum.LatestTask = &latest
	}
	if c, ok := s.repos.Classifications.LatestFor(user.NPM); ok {
		sum.VoiceLabel = c.Label
		sum.ClassifiedAt = time.UnixMilli(c.At)
	}
	return sum, nil
}
