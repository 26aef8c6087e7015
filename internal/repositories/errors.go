package repositories

import "errors"

// ErrConflict indicates the attempted write would violate a uniqueness constraint.
var ErrConflict = errors.New("record conflict")
