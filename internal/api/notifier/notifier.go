// Package notifier fan-outs processing updates to SSE listeners.
package notifier

import "sync"

// Update describes a change in an image's processing state.
type Update struct {
	ImageID string `json:"imageId"`
	S3Key   string `json:"s3Key"`
	Status  string `json:"status"`
}

// Notifier broadcasts processing updates to all subscribed listeners.
// Each listener gets a buffered channel; slow listeners drop updates
// rather than blocking the broadcaster, and catch up from the store.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Update]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Update]struct{}),
	}
}

// Subscribe returns a channel that receives processing updates.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe() chan Update {
	ch := make(chan Update, 8)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan Update) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Broadcast sends an update to all listeners.
// Non-blocking: if a listener's buffer is full, the update is dropped.
func (n *Notifier) Broadcast(u Update) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- u:
		default:
			// buffer full, listener re-syncs from the store
		}
	}
}
