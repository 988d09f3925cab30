// Package viewsync reconciles in-memory view state with the persistent
// store whenever the bus signals a topic. A view binds one reload
// function per topic it depends on; reloads re-read and replace the
// view's working copy wholesale, never patching incrementally.
package viewsync

import (
	"sync"

	"go.vokalia.id/voicecheck/bus"
)

type binding struct {
	topic  string
	reload func()
}

// View holds a set of topic bindings for one mounted view.
type View struct {
	name string
	bus  *bus.Bus

	mu       sync.Mutex
	bindings []binding
	unsubs   []func()
	mounted  bool
}

// NewView creates an unmounted view. The name is used only for
// diagnostics.
func NewView(name string, b *bus.Bus) *View {
	return &View{name: name, bus: b}
}

// Bind registers a reload for topic. Bindings added after Mount take
// effect on the next Mount.
func (v *View) Bind(topic string, reload func()) *View {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bindings = append(v.bindings, binding{topic: topic, reload: reload})
	return v
}

// Mount performs the initial read for every binding, then subscribes
// each to its topic for the lifetime of the view. Mounting twice is a
// no-op until Unmount.
func (v *View) Mount() {
	v.mu.Lock()
	if v.mounted {
		v.mu.Unlock()
		return
	}
	v.mounted = true
	bindings := make([]binding, len(v.bindings))
	copy(bindings, v.bindings)
	v.mu.Unlock()

	for _, b := range bindings {
		b.reload()
	}

	unsubs := make([]func(), 0, len(bindings))
	for _, b := range bindings {
		unsubs = append(unsubs, v.bus.Subscribe(b.topic, b.reload))
	}

	v.mu.Lock()
	v.unsubs = unsubs
	v.mu.Unlock()
}

// Unmount tears down every subscription. The bindings stay registered
// so the view can be mounted again.
func (v *View) Unmount() {
	v.mu.Lock()
	unsubs := v.unsubs
	v.unsubs = nil
	v.mounted = false
	v.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}
