package region

import "errors"

var (
	// ErrNoSeed indicates a build request with no seed event or team.
	ErrNoSeed = errors.New("no seed event or team")

	// ErrUnboundedWalk indicates discovery exceeded the round bound.
	ErrUnboundedWalk = errors.New("region discovery did not converge")
)
