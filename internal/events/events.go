// Package events carries the engine's notifications: one event per
// successful registration, draw, and reset. The bus is append-only from the
// engine's point of view; subscribers that fall behind miss events rather
// than block a mutating operation.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeParticipantRegistered Type = "participant_registered"
	TypeWinnerDrawn           Type = "winner_drawn"
	TypeEngineReset           Type = "engine_reset"
)

// Event is a single notification. Identity, Name and Number are zero-valued
// for TypeEngineReset.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Identity  string    `json:"identity,omitempty"`
	Name      string    `json:"name,omitempty"`
	Number    int       `json:"number,omitempty"`
}

const subscriberBuffer = 64

// Bus fans events out to subscribers. Publish never blocks: a subscriber
// whose buffer is full drops the event.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber. The returned cancel func closes the
// channel and must be called when the subscriber is done.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish stamps the event with an ID and timestamp (when unset) and fans it
// out.
func (b *Bus) Publish(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
