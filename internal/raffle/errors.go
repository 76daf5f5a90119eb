package raffle

import "errors"

// ErrUnauthorized is the only authorization failure; everything else below
// is a state precondition the caller can correct.
var ErrUnauthorized = errors.New("caller is not the operator")

var (
	ErrAlreadyRegistered      = errors.New("identity already registered")
	ErrPoolExhausted          = errors.New("no numbers left in the pool")
	ErrNoEligibleParticipants = errors.New("no eligible participants to draw from")
	ErrIndexOutOfBounds       = errors.New("winner index out of bounds")
	ErrNoWinnersYet           = errors.New("no winners drawn yet")
)
