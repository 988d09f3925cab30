// Package recording implements the audio-capture state machine that
// turns a microphone take into a persisted recording.
//
// A session moves through
//
//	Idle → Requesting → Capturing → Stopped → Encoding → Ready →
//	(Persisted | Error)
//
// with Ready/Stopped → Idle on reset and Error → Idle on acknowledge.
// The capture device is released on every exit from Capturing,
// including teardown.
package recording

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"go.vokalia.id/voicecheck/audiocapture"
	"go.vokalia.id/voicecheck/internal/types"
	"go.vokalia.id/voicecheck/repo"
)

// State is a session lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateCapturing
	StateStopped
	StateEncoding
	StateReady
	StatePersisted
	StateError
)

var stateNames = [...]string{
	"idle", "requesting", "capturing", "stopped",
	"encoding", "ready", "persisted", "error",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrNotIdle is returned when starting a session that is mid-flight.
	ErrNotIdle = errors.New("session not idle")
	// ErrNotReady is returned when sending before a take was encoded.
	ErrNotReady = errors.New("no encoded recording to send")
	// ErrCapturing is returned when resetting while the device is open.
	ErrCapturing = errors.New("capture in progress, stop first")
)

// PermissionError reports that the capture device was denied or
// unavailable. The session surfaces the message and no partial
// recording is persisted.
type PermissionError struct {
	Cause error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("microphone unavailable: %v", e.Cause)
}

func (e *PermissionError) Unwrap() error { return e.Cause }

// Clip is the encoded audio object produced by a stopped capture.
type Clip struct {
	Data []byte
	MIME string
	Ext  string
}

// Options configures a session. Zero values pick the stock setup:
// 48 kHz capture, the registered platform device, the Ogg/Opus
// encoder, and a one-second elapsed tick.
type Options struct {
	Username     string
	SampleRate   int
	Encoders     []Encoder
	OpenDevice   audiocapture.Factory
	TickInterval time.Duration
	PreviewDir   string
}

// Session is the audio-capture state machine. Sessions are not
// reusable across members; create one per voice check.
type Session struct {
	recordings *repo.Recordings
	tasks      *repo.Tasks
	opts       Options

	mu       sync.Mutex
	state    State
	capturer audiocapture.Capturer
	chunks   []float32
	monitor  *audiocapture.RingBuffer
	clip     *Clip
	preview  string
	errMsg   string
	secs     int
	tickStop chan struct{}
}

// NewSession creates an idle session that persists through recs and
// resolves the member's latest task through tasks.
func NewSession(recs *repo.Recordings, tasks *repo.Tasks, opts Options) *Session {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 48000
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if len(opts.Encoders) == 0 {
		opts.Encoders = []Encoder{NewOggOpus()}
	}
	if opts.OpenDevice == nil {
		opts.OpenDevice = audiocapture.New
	}
	if opts.PreviewDir == "" {
		opts.PreviewDir = os.TempDir()
	}
	return &Session{recordings: recs, tasks: tasks, opts: opts}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed returns whole seconds spent capturing, reset to zero at every
// Capturing entry.
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secs
}

// Recent returns up to the n most recently captured samples, for a
// live level or waveform readout while the device is open. Empty
// before the first capture and after a discard.
func (s *Session) Recent(n int) []float32 {
	s.mu.Lock()
	monitor := s.monitor
	s.mu.Unlock()
	if monitor == nil {
		return nil
	}
	return monitor.Last(n)
}

// Err returns the surfaced message when the session is in Error.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Preview returns the path of the locally previewable copy of the
// encoded take, or "" before Ready.
func (s *Session) Preview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// Clip returns the encoded audio object once Ready.
func (s *Session) Clip() (Clip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clip == nil {
		return Clip{}, false
	}
	return *s.clip, true
}

// Start requests the capture device and begins buffering audio.
// Opening the device may block on a permission prompt; no timeout is
// enforced, so a hung prompt leaves the session at Requesting. A denial
// or unavailable device moves the session to Error with the message
// surfaced through Err.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("start from %s: %w", state, ErrNotIdle)
	}
	s.state = StateRequesting
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return s.fail(err)
	}

	cap, err := s.opts.OpenDevice(s.opts.SampleRate)
	if err != nil {
		return s.fail(&PermissionError{Cause: err})
	}
	if err := cap.Start(s.onSamples); err != nil {
		if stopErr := cap.Stop(); stopErr != nil {
			slog.Warn("release capture device", "error", stopErr)
		}
		return s.fail(&PermissionError{Cause: err})
	}

	s.mu.Lock()
	s.capturer = cap
	s.chunks = nil
	// One second of context for the live monitor.
	s.monitor = audiocapture.NewRingBuffer(s.opts.SampleRate)
	s.secs = 0
	s.state = StateCapturing
	stop := make(chan struct{})
	s.tickStop = stop
	s.mu.Unlock()

	go s.tick(stop)
	return nil
}

// Stop ends the capture, releases the device and synchronously encodes
// the buffered audio with the negotiated codec. Safe to call on a
// session that is not capturing (external stops may race the stop
// action); that is a no-op. Once encoding starts it cannot be
// cancelled; it is fast and synchronous by construction.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state != StateCapturing {
		s.mu.Unlock()
		return nil
	}
	cap := s.capturer
	s.capturer = nil
	if s.tickStop != nil {
		close(s.tickStop)
		s.tickStop = nil
	}
	s.state = StateStopped
	pcm := s.chunks
	s.mu.Unlock()

	if err := cap.Stop(); err != nil {
		slog.Warn("release capture device", "error", err)
	}

	s.mu.Lock()
	s.state = StateEncoding
	s.mu.Unlock()

	enc := negotiate(s.opts.Encoders)
	if enc == nil {
		return s.fail(errors.New("no audio encoder available"))
	}
	data, err := enc.Encode(pcm, s.opts.SampleRate)
	if err != nil {
		return s.fail(fmt.Errorf("encode audio: %w", err))
	}

	preview := s.writePreview(data, enc.Ext())

	s.mu.Lock()
	s.clip = &Clip{Data: data, MIME: enc.MIME(), Ext: enc.Ext()}
	s.preview = preview
	s.state = StateReady
	s.mu.Unlock()

	slog.Info("take encoded", "mime", enc.MIME(), "bytes", len(data))
	return nil
}

// Send converts the encoded take into a self-contained data URL and
// hands it to the recordings repository, attached to the member's
// latest task when one exists. On a persist failure the session stays
// Ready so the user can re-invoke.
func (s *Session) Send() (types.Recording, error) {
	s.mu.Lock()
	if s.state != StateReady || s.clip == nil {
		state := s.state
		s.mu.Unlock()
		return types.Recording{}, fmt.Errorf("send from %s: %w", state, ErrNotReady)
	}
	clip := *s.clip
	s.mu.Unlock()

	dataURL := "data:" + clip.MIME + ";base64," + base64.StdEncoding.EncodeToString(clip.Data)

	taskID := ""
	if s.tasks != nil {
		if t, ok := s.tasks.LatestFor(s.opts.Username); ok {
			taskID = t.ID
		}
	}

	rec, err := s.recordings.Add(types.Recording{
		Username: s.opts.Username,
		FileName: takeFileName(time.Now(), clip.Ext),
		MIME:     clip.MIME,
		DataURL:  dataURL,
		TaskID:   taskID,
	})
	if err != nil {
		return types.Recording{}, err
	}

	s.mu.Lock()
	s.state = StatePersisted
	s.mu.Unlock()
	return rec, nil
}

// Reset discards the buffered take and preview and returns to Idle
// ("record again"). Invalid while the device is open; Stop or Close
// first.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCapturing || s.state == StateRequesting {
		return ErrCapturing
	}
	s.discardLocked()
	s.state = StateIdle
	return nil
}

// Acknowledge clears a surfaced error and returns the session to Idle.
// A no-op in any other state.
func (s *Session) Acknowledge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateError {
		return
	}
	s.discardLocked()
	s.state = StateIdle
}

// Close tears the session down from any state, releasing the capture
// device and any preview resource.
func (s *Session) Close() error {
	s.mu.Lock()
	cap := s.capturer
	s.capturer = nil
	if s.tickStop != nil {
		close(s.tickStop)
		s.tickStop = nil
	}
	s.discardLocked()
	s.state = StateIdle
	s.mu.Unlock()

	if cap != nil {
		return cap.Stop()
	}
	return nil
}

func (s *Session) onSamples(samples []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCapturing {
		return
	}
	s.chunks = append(s.chunks, samples...)
	s.monitor.Write(samples)
}

func (s *Session) tick(stop chan struct{}) {
	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.state == StateCapturing {
				s.secs++
			}
			s.mu.Unlock()
		}
	}
}

// fail moves the session to Error with the message surfaced to the
// caller. Nothing is persisted on this path.
func (s *Session) fail(err error) error {
	s.mu.Lock()
	s.state = StateError
	s.errMsg = err.Error()
	s.mu.Unlock()
	return err
}

// discardLocked drops the buffered take and removes the preview file.
// Caller holds s.mu.
func (s *Session) discardLocked() {
	if s.preview != "" {
		if err := os.Remove(s.preview); err != nil && !os.IsNotExist(err) {
			slog.Warn("remove preview", "path", s.preview, "error", err)
		}
		s.preview = ""
	}
	s.chunks = nil
	s.monitor = nil
	s.clip = nil
	s.errMsg = ""
	s.secs = 0
}

// writePreview stores the encoded take in a temp file so the host UI
// can play it back before sending. A preview failure is not fatal to
// the take.
func (s *Session) writePreview(data []byte, ext string) string {
	f, err := os.CreateTemp(s.opts.PreviewDir, "voicecheck-preview-*."+ext)
	if err != nil {
		slog.Warn("create preview", "error", err)
		return ""
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		slog.Warn("write preview", "error", err)
		return ""
	}
	return f.Name()
}

// takeFileName derives the generated file name from the timestamp and
// the chosen codec's extension, e.g. rec_2026-08-28T10-11-12-000Z.ogg.
func takeFileName(t time.Time, ext string) string {
	stamp := t.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return fmt.Sprintf("rec_%s.%s", stamp, ext)
}
