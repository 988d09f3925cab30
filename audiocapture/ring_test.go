package audiocapture

import "testing"

func TestRingBufferLastReturnsRecentWindow(t *testing.T) {
	rb := NewRingBuffer(4)

	rb.Write([]float32{1, 2})
	if got := rb.Last(8); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("partial fill: %v", got)
	}

	// Overflow: 1 and 2 fall out, window is the last four.
	rb.Write([]float32{3, 4, 5, 6})
	if rb.Len() != 4 {
		t.Fatalf("len = %d, want capacity", rb.Len())
	}
	got := rb.Last(4)
	want := []float32{3, 4, 5, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("after wrap: got %v, want %v", got, want)
		}
	}

	if got := rb.Last(2); got[0] != 5 || got[1] != 6 {
		t.Errorf("last 2: %v", got)
	}
	if got := rb.Last(0); got != nil {
		t.Errorf("zero read should be nil, got %v", got)
	}
}

func TestRingBufferClear(t *testing.T) {
	rb := NewRingBuffer(3)
	rb.Write([]float32{1, 2, 3})
	rb.Clear()
	if rb.Len() != 0 {
		t.Errorf("len after clear = %d", rb.Len())
	}
	if got := rb.Last(3); got != nil {
		t.Errorf("cleared buffer returned %v", got)
	}

	// Write positions reset cleanly.
	rb.Write([]float32{7})
	if got := rb.Last(1); len(got) != 1 || got[0] != 7 {
		t.Errorf("write after clear: %v", got)
	}
}
