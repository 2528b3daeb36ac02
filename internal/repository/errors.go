package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist or is not
// visible to the requesting user. Ownership misses are indistinguishable
// from absence by design.
var ErrNotFound = errors.New("not found")
