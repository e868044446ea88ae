package store

import "errors"

// Sentinel kinds for store errors.
var (
	ErrLoad   = errors.New("document load failed")
	ErrSave   = errors.New("document save failed")
	ErrDecode = errors.New("document decode failed")
	ErrEncode = errors.New("document encode failed")
)
