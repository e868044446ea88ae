package upstream

import "errors"

// Sentinel kinds for upstream errors.
var (
	ErrUpstream      = errors.New("upstream query failed")
	ErrNotFound      = errors.New("record not found upstream")
	ErrDecode        = errors.New("upstream payload decode failed")
	ErrInvalidKey    = errors.New("invalid key")
	ErrBatchTooLarge = errors.New("batch exceeds upstream limit")
)
