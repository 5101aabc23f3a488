// Package notifier provides a simple broadcast mechanism for view-state updates.
package notifier

import "sync"

// Notifier broadcasts the store key of a changed grid view state to all
// subscribed listeners. Listeners should re-fetch the named store on
// receipt.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan string]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan string]struct{}),
	}
}

// Subscribe returns a channel that receives the store key of each update.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe() chan string {
	ch := make(chan string, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan string) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Broadcast sends the store key to all listeners.
// Non-blocking: if a listener's channel is full, the update is skipped.
func (n *Notifier) Broadcast(storeKey string) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- storeKey:
		default:
			// Channel full, skip (listener will catch up on next broadcast)
		}
	}
}
