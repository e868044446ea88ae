// Package model contains domain models passed between layers.
//
// Identifiers get distinct types so a team number can never be compared
// against an event code or a match id without an explicit conversion.
package model

import (
	"strconv"
	"strings"
)

// TeamNumber identifies a team across the whole system.
type TeamNumber int

// String returns the decimal form used in wire payloads and logs.
func (n TeamNumber) String() string { return strconv.Itoa(int(n)) }

// Valid reports whether the number is a plausible team number.
func (n TeamNumber) Valid() bool { return n > 0 }

// EventCode identifies an event. Codes are case-normalized to upper.
type EventCode string

// ParseEventCode normalizes a raw code from user input or a wire payload.
func ParseEventCode(s string) EventCode {
	return EventCode(strings.ToUpper(strings.TrimSpace(s)))
}

// Valid reports whether the code is non-empty after normalization.
func (c EventCode) Valid() bool { return c != "" }

func (c EventCode) String() string { return string(c) }

// MatchID identifies a match within one event. The id range doubles as the
// phase discriminant: ids below QualificationIDThreshold are qualification
// matches, everything above is elimination bracket play.
type MatchID int

// QualificationIDThreshold separates qualification ids from elimination ids.
const QualificationIDThreshold MatchID = 1000

// Phase is the competitive phase a match belongs to.
type Phase int

const (
	PhaseQualification Phase = iota
	PhaseElimination
)

// Phase derives the match phase from the id range.
func (id MatchID) Phase() Phase {
	if id < QualificationIDThreshold {
		return PhaseQualification
	}
	return PhaseElimination
}

// EventType classifies an event. The zero value is unknown and treated as
// official.
type EventType string

// Event types observed in upstream payloads.
const (
	EventTypeQualifier        EventType = "Qualifier"
	EventTypeChampionship     EventType = "Championship"
	EventTypeLeagueMeet       EventType = "LeagueMeet"
	EventTypeLeagueTournament EventType = "LeagueTournament"
	EventTypeScrimmage        EventType = "Scrimmage"
)

// Official reports whether matches at this event carry full rating weight.
// Scrimmages still replay, but with damped deltas and fractional match counts.
func (t EventType) Official() bool { return t != EventTypeScrimmage }
