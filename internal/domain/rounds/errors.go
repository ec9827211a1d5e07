package rounds

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrAlreadyFinalized reports a score write or repeat finalize
	// against a finalized round. Recoverable: state is unchanged.
	ErrAlreadyFinalized = errors.New("round already finalized")

	// ErrInvalidRound reports a round number below 1.
	ErrInvalidRound = errors.New("round must be >= 1")
)
