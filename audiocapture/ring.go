package audiocapture

import "sync"

// RingBuffer is a fixed-capacity circular buffer of audio samples.
// Writes past capacity overwrite the oldest data, so readers always
// see the most recent window of the stream.
type RingBuffer struct {
	mu       sync.RWMutex
	data     []float32
	writePos int
	filled   int
}

// NewRingBuffer creates a ring buffer holding up to size samples.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{data: make([]float32, size)}
}

// Write appends samples, overwriting the oldest once full.
func (rb *RingBuffer) Write(samples []float32) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	for _, s := range samples {
		rb.data[rb.writePos] = s
		rb.writePos = (rb.writePos + 1) % len(rb.data)
		if rb.filled < len(rb.data) {
			rb.filled++
		}
	}
}

// Last returns up to the n most recent samples in arrival order.
func (rb *RingBuffer) Last(n int) []float32 {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	if n > rb.filled {
		n = rb.filled
	}
	if n <= 0 {
		return nil
	}
	out := make([]float32, n)
	start := (rb.writePos - n + len(rb.data)) % len(rb.data)
	for i := 0; i < n; i++ {
		out[i] = rb.data[(start+i)%len(rb.data)]
	}
	return out
}

// Len returns the number of buffered samples, at most the capacity.
func (rb *RingBuffer) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.filled
}

// Clear empties the buffer.
func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.writePos = 0
	rb.filled = 0
}
