package statushub

import (
	"encoding/json"
	"log"
	"time"
)

// fullSyncInterval and deltaCountSync mirror the teacher's periodic
// full-resync policy (broadcast.go): each update goes out as a "delta"
// message, which carries the whole snapshot rather than a diff, and a
// "full" message goes out every fullSyncInterval and in place of every
// deltaCountSync-th update.
const (
	fullSyncInterval = 5 * time.Second
	deltaCountSync   = 100
)

// Broadcaster watches a channel of status updates and pushes them to the
// hub as full or delta messages.
type Broadcaster struct {
	hub      *Hub
	updates  <-chan Snapshot
	lastFull Snapshot
	seq      int64
	logger   *log.Logger
}

// NewBroadcaster creates a Broadcaster reading from updates.
func NewBroadcaster(h *Hub, updates <-chan Snapshot, logger *log.Logger) *Broadcaster {
	if logger == nil {
		logger = log.Default()
	}
	return &Broadcaster{hub: h, updates: updates, logger: logger}
}

// Run is the broadcaster's main loop. Run it in a goroutine.
func (b *Broadcaster) Run() {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	var deltaCount int64
	for {
		select {
		case snap, ok := <-b.updates:
			if !ok {
				return
			}
			b.seq++
			deltaCount++
			b.lastFull = snap
			if deltaCount >= deltaCountSync {
				b.sendFull(snap)
				deltaCount = 0
			} else {
				b.sendDelta(snap)
			}

		case <-ticker.C:
			b.seq++
			b.sendFull(b.lastFull)
		}
	}
}

// SendInitialState pushes the last known full snapshot to a newly
// connected client.
func (b *Broadcaster) SendInitialState(c *Client) {
	b.seq++
	data, err := json.Marshal(newFullMessage(b.seq, b.lastFull))
	if err != nil {
		b.logger.Printf("marshal initial snapshot: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (b *Broadcaster) sendFull(snap Snapshot) {
	data, err := json.Marshal(newFullMessage(b.seq, snap))
	if err != nil {
		b.logger.Printf("marshal full message: %v", err)
		return
	}
	b.hub.Broadcast(data)
}

func (b *Broadcaster) sendDelta(snap Snapshot) {
	data, err := json.Marshal(newDeltaMessage(b.seq, snap))
	if err != nil {
		b.logger.Printf("marshal delta message: %v", err)
		return
	}
	b.hub.Broadcast(data)
}
