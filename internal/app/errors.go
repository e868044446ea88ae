package service

import "errors"

var (
	// ErrNotStarted indicates a call before Start.
	ErrNotStarted = errors.New("service not started")

	// ErrNoRatings indicates no rating run has completed yet.
	ErrNoRatings = errors.New("no rating run available")

	// ErrUnknownTeam indicates a team outside the last built region.
	ErrUnknownTeam = errors.New("team not in region")

	// ErrUnknownMatch indicates a match outside the last built region.
	ErrUnknownMatch = errors.New("match not in region")
)
