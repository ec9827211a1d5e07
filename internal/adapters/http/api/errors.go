package api

import "errors"

// ErrBadRequest marks malformed or unvalidatable request input.
var ErrBadRequest = errors.New("bad request")
