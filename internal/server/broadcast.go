package server

import (
	"sync"

	"github.com/oszuidwest/zwfm-ffpath/internal/resolver"
	"github.com/oszuidwest/zwfm-ffpath/internal/types"
)

// Broadcaster is the status surface backing the web UI: it pushes every
// state change to all connected WebSocket clients and replays the current
// state to clients that connect later. It is safe for concurrent use.
//
// Exactly one style class is active per state; pushing a new state replaces
// the previous one entirely on the client side.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[chan<- any]struct{}
	status  resolver.Status
	path    string
}

// NewBroadcaster returns a Broadcaster with no clients and an Idle state
// for the given persisted path.
func NewBroadcaster(path string) *Broadcaster {
	return &Broadcaster{
		clients: make(map[chan<- any]struct{}),
		status:  resolver.StatusIdleState(path),
		path:    path,
	}
}

// Register adds a client send channel and replays the current state to it.
func (b *Broadcaster) Register(send chan<- any) {
	b.mu.Lock()
	b.clients[send] = struct{}{}
	update := b.updateLocked()
	b.mu.Unlock()

	trySend(send, "status", update)
}

// Unregister removes a client send channel.
func (b *Broadcaster) Unregister(send chan<- any) {
	b.mu.Lock()
	delete(b.clients, send)
	b.mu.Unlock()
}

// SetStatus implements resolver.Surface.
func (b *Broadcaster) SetStatus(status resolver.Status) {
	b.mu.Lock()
	b.status = status
	b.broadcastLocked()
	b.mu.Unlock()
}

// SetPath implements resolver.Surface.
func (b *Broadcaster) SetPath(path string) {
	b.mu.Lock()
	b.path = path
	b.broadcastLocked()
	b.mu.Unlock()
}

// updateLocked builds the wire representation of the current state.
// Caller must hold b.mu.
func (b *Broadcaster) updateLocked() types.WSStatusUpdate {
	return types.WSStatusUpdate{
		Type:  "status",
		Text:  b.status.Text,
		Class: b.status.StyleClass(),
		Path:  b.path,
	}
}

// broadcastLocked pushes the current state to all clients. Caller must hold b.mu.
func (b *Broadcaster) broadcastLocked() {
	update := b.updateLocked()
	for send := range b.clients {
		trySend(send, "status", update)
	}
}
