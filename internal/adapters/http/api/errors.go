package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest         = errors.New("bad request")
	ErrInvalidTeamNumber  = errors.New("invalid team number")
	ErrInvalidMatchID     = errors.New("invalid match id")
	ErrMissingTeamNumbers = errors.New("missing numbers parameter")
	ErrMissingEventCodes  = errors.New("missing codes parameter")
)
