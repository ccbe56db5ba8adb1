// Package events fans ledger operation events out to subscribers. The
// service registers one subscription per websocket client and forwards
// everything the state layer reports through its event handler.
package events

import (
	"fmt"
	"sync"
)

// Events maintains the set of subscriber channels keyed by a unique
// subscription id.
type Events struct {
	subs map[string]chan string
	mu   sync.RWMutex
}

// New constructs an Events value for use.
func New() *Events {
	return &Events{
		subs: make(map[string]chan string),
	}
}

// Shutdown closes and removes every subscription handed out by Acquire.
func (evt *Events) Shutdown() {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for id, ch := range evt.subs {
		delete(evt.subs, id)
		close(ch)
	}
}

// Acquire returns the channel for the specified subscription id, creating
// the subscription on first use.
func (evt *Events) Acquire(id string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.subs[id]
	if exists {
		return ch
	}

	// A slow websocket writer drops messages once this buffer is full
	// rather than stalling the ledger's apply path.
	const messageBuffer = 100

	evt.subs[id] = make(chan string, messageBuffer)
	return evt.subs[id]
}

// Release closes and removes the subscription for the specified id.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.subs[id]
	if !exists {
		return fmt.Errorf("subscription %q does not exist", id)
	}

	delete(evt.subs, id)
	close(ch)
	return nil
}

// Send delivers the message to every subscriber without blocking. A
// subscriber whose buffer is full misses the message.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.subs {
		select {
		case ch <- s:
		default:
		}
	}
}
