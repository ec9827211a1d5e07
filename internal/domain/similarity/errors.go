package similarity

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrPairNotFound = errors.New("similarity pair not found")
)
