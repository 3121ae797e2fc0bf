package storage

import "errors"

// ErrNotFound marks lookups for records that do not exist. Callers test
// with errors.Is; the wrapped message carries the record identity.
var ErrNotFound = errors.New("record not found")
