// Package random provides the index-selection entropy used by the raffle
// engine.
//
// The Weak source mirrors the original allocation scheme: a digest of the
// current time, a beacon value, the caller identity and the candidate count,
// reduced modulo that count. Those inputs are observable or semi-predictable,
// so the result is NOT cryptographically secure; a motivated caller could
// bias which index they receive. Swap in a verifiable source behind the same
// interface if that ever matters.
package random

import (
	crand "crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"sync"
	"time"
)

// Source picks an index in [0, n) for the given caller. n must be positive.
type Source interface {
	Index(caller string, n int) int
}

// Weak derives indices from time, an internal beacon, the caller identity
// and the candidate count. The beacon is seeded from crypto/rand at
// construction and folded forward on every draw so consecutive calls within
// the same nanosecond still diverge.
type Weak struct {
	mu     sync.Mutex
	beacon [sha256.Size]byte
	now    func() time.Time
}

// NewWeak seeds a Weak source from crypto/rand.
func NewWeak() *Weak {
	w := &Weak{now: time.Now}
	_, _ = crand.Read(w.beacon[:])
	return w
}

func (w *Weak) Index(caller string, n int) int {
	if n <= 0 {
		return 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	h := sha256.New()
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(w.now().UnixNano()))
	h.Write(ts[:])
	h.Write(w.beacon[:])
	h.Write([]byte(caller))
	var size [8]byte
	binary.BigEndian.PutUint64(size[:], uint64(n))
	h.Write(size[:])

	sum := h.Sum(nil)
	copy(w.beacon[:], sum)

	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(n))
}

// Fixed always selects the same value reduced modulo the candidate count.
// Test use only.
type Fixed int

func (f Fixed) Index(_ string, n int) int {
	if n <= 0 {
		return 0
	}
	return int(f) % n
}

// Sequence replays a fixed list of values, each reduced modulo the candidate
// count, and repeats the last value once exhausted. Test use only.
type Sequence struct {
	Values []int
	pos    int
}

func (s *Sequence) Index(_ string, n int) int {
	if n <= 0 || len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.pos]
	if s.pos < len(s.Values)-1 {
		s.pos++
	}
	return v % n
}
