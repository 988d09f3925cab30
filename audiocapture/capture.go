// Package audiocapture provides the microphone capture boundary.
//
// The actual device binding is platform work; backends register
// themselves through Register, and New reports ErrUnsupported when no
// backend is available, which callers surface as a device-unavailable
// condition.
package audiocapture

import (
	"errors"
	"sync"
)

// ErrUnsupported is returned when no capture backend is available on
// this platform.
var ErrUnsupported = errors.New("audio capture not supported on this platform")

// ErrAlreadyCapturing is returned when starting a capturer twice.
var ErrAlreadyCapturing = errors.New("already capturing audio")

// Capturer is an open handle on an audio input device.
//
// Start begins delivering mono float32 samples in [-1, 1] to onSamples
// from the capture goroutine. Stop releases the device; it is
// idempotent, and after Stop returns Released reports true and no
// further samples are delivered.
type Capturer interface {
	Start(onSamples func(samples []float32)) error
	Stop() error
	Released() bool
}

// Factory opens a capture device at the given sample rate.
type Factory func(sampleRate int) (Capturer, error)

var (
	backendMu sync.RWMutex
	backend   Factory
)

// Register installs the platform capture backend. Later registrations
// replace earlier ones; tests register fakes the same way.
func Register(fn Factory) {
	backendMu.Lock()
	defer backendMu.Unlock()
	backend = fn
}

// New opens a capture device at sampleRate (48 kHz when zero, matching
// the Opus encoder's native rate). Requesting the device may block on a
// permission prompt; there is no timeout here, that is the caller's
// decision.
func New(sampleRate int) (Capturer, error) {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	backendMu.RLock()
	fn := backend
	backendMu.RUnlock()
	if fn == nil {
		return nil, ErrUnsupported
	}
	return fn(sampleRate)
}
