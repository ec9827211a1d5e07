package config

import "errors"

// ErrInvalidConfig marks a configuration value outside its valid
// range.
var ErrInvalidConfig = errors.New("invalid configuration")
