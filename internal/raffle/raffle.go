// Package raffle implements the allocation-and-drawing engine: participants
// register once and receive a unique number from a bounded pool, the
// operator draws winners one at a time excluding prior winners, and the
// operator may reset everything back to an empty pool.
package raffle

import (
	"sync"

	"github.com/google/logger"

	"github.com/SachPlayZ/edu-lottery-shirts/internal/events"
	"github.com/SachPlayZ/edu-lottery-shirts/internal/models"
	"github.com/SachPlayZ/edu-lottery-shirts/internal/random"
)

// DefaultMaxNumber is the pool size when none is configured.
const DefaultMaxNumber = 100

// Engine holds the raffle state for a single pool. All mutating operations
// take the write lock, so they apply atomically with respect to each other;
// queries take the read lock and observe a consistent snapshot.
type Engine struct {
	mu       sync.RWMutex
	operator string
	max      int
	entropy  random.Source
	bus      *events.Bus

	participants map[string]*models.Participant
	order        []string // identities in registration order
	assigned     map[int]bool
	winners      []models.WinnerRecord
}

// New creates an engine owned by operator with numbers [1, max] available.
// The operator identity is fixed for the engine's lifetime and survives
// Reset. bus may be nil when nobody listens for notifications.
func New(operator string, max int, src random.Source, bus *events.Bus) *Engine {
	if max <= 0 {
		max = DefaultMaxNumber
	}
	return &Engine{
		operator:     operator,
		max:          max,
		entropy:      src,
		bus:          bus,
		participants: make(map[string]*models.Participant),
		assigned:     make(map[int]bool),
	}
}

// Enter registers caller with the given display name and allocates a random
// unassigned number from [1, max]. Names are recorded verbatim; empty names
// are accepted. Fails with ErrAlreadyRegistered on re-registration and
// ErrPoolExhausted once all numbers are taken.
func (e *Engine) Enter(caller, name string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.participants[caller]; ok {
		return 0, ErrAlreadyRegistered
	}

	available := make([]int, 0, e.max-len(e.participants))
	for n := 1; n <= e.max; n++ {
		if !e.assigned[n] {
			available = append(available, n)
		}
	}
	if len(available) == 0 {
		return 0, ErrPoolExhausted
	}

	number := available[e.entropy.Index(caller, len(available))]
	e.assigned[number] = true
	e.participants[caller] = &models.Participant{Identity: caller, Name: name, Number: number}
	e.order = append(e.order, caller)

	logger.Infof("registered %s (%q) with number %d, %d left in pool", caller, name, number, len(available)-1)
	e.publish(events.Event{
		Type:     events.TypeParticipantRegistered,
		Identity: caller,
		Name:     name,
		Number:   number,
	})
	return number, nil
}

// DrawWinner selects one not-yet-winning participant and appends them to the
// winner sequence. Only the operator may call it. Selection is two-pass:
// count the eligible participants, draw an index modulo that count, then
// walk the registration order again to find the Nth eligible entry.
func (e *Engine) DrawWinner(caller string) (models.WinnerRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.operator {
		return models.WinnerRecord{}, ErrUnauthorized
	}

	eligible := 0
	for _, id := range e.order {
		if !e.hasWon(id) {
			eligible++
		}
	}
	if eligible == 0 {
		return models.WinnerRecord{}, ErrNoEligibleParticipants
	}

	target := e.entropy.Index(caller, eligible)
	seen := 0
	for _, id := range e.order {
		if e.hasWon(id) {
			continue
		}
		if seen == target {
			p := e.participants[id]
			record := models.WinnerRecord{Identity: p.Identity, Name: p.Name, Number: p.Number}
			e.winners = append(e.winners, record)

			logger.Infof("drew winner %s (%q, number %d), %d still eligible", p.Identity, p.Name, p.Number, eligible-1)
			e.publish(events.Event{
				Type:     events.TypeWinnerDrawn,
				Identity: record.Identity,
				Name:     record.Name,
				Number:   record.Number,
			})
			return record, nil
		}
		seen++
	}

	// Unreachable: target < eligible by construction.
	return models.WinnerRecord{}, ErrNoEligibleParticipants
}

// Reset clears all participants, winners and number assignments, restoring
// the pool to [1, max]. Only the operator may call it; the operator identity
// itself is untouched.
func (e *Engine) Reset(caller string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.operator {
		return ErrUnauthorized
	}

	e.participants = make(map[string]*models.Participant)
	e.order = nil
	e.assigned = make(map[int]bool)
	e.winners = nil

	logger.Infof("raffle reset by operator, pool restored to [1, %d]", e.max)
	e.publish(events.Event{Type: events.TypeEngineReset})
	return nil
}

// ParticipantCount reports how many identities are registered.
func (e *Engine) ParticipantCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.participants)
}

// WinnerCount reports how many winners have been drawn since the last reset.
func (e *Engine) WinnerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.winners)
}

// WinnerByIndex returns the i-th winner in draw order, 0-based.
func (e *Engine) WinnerByIndex(i int) (models.WinnerRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if i < 0 || i >= len(e.winners) {
		return models.WinnerRecord{}, ErrIndexOutOfBounds
	}
	return e.winners[i], nil
}

// LatestWinner returns the most recently drawn winner.
func (e *Engine) LatestWinner() (models.WinnerRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.winners) == 0 {
		return models.WinnerRecord{}, ErrNoWinnersYet
	}
	return e.winners[len(e.winners)-1], nil
}

// ParticipantInfo returns the name and number for an identity. A missing
// identity yields zero values and exists=false, not an error.
func (e *Engine) ParticipantInfo(identity string) (name string, number int, exists bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.participants[identity]
	if !ok {
		return "", 0, false
	}
	return p.Name, p.Number, true
}

// IsWinner reports whether identity appears in the winner sequence.
func (e *Engine) IsWinner(identity string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hasWon(identity)
}

// MaxNumber returns the configured pool size.
func (e *Engine) MaxNumber() int {
	return e.max
}

// hasWon scans the winner sequence. Callers hold at least the read lock.
func (e *Engine) hasWon(identity string) bool {
	for _, w := range e.winners {
		if w.Identity == identity {
			return true
		}
	}
	return false
}

func (e *Engine) publish(ev events.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}
