package cache

import "errors"

var (
	// ErrNotFound indicates the record is absent from both the cache and
	// the upstream source.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidKey indicates a key that can never resolve.
	ErrInvalidKey = errors.New("invalid key")

	// ErrCacheConsistency indicates a record went missing between write
	// and verification.
	ErrCacheConsistency = errors.New("cache consistency violation")
)
