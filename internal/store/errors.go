package store

import "errors"

// errInsufficientItems signals a ConsumeUserItem call that would drive
// an inventory count negative. It is returned unwrapped; callers that
// pre-check quantities report their own bizerr precondition instead.
var errInsufficientItems = errors.New("insufficient items")

// ErrInsufficientItems is the exported sentinel callers can check with
// errors.Is.
var ErrInsufficientItems = errInsufficientItems
