package model

import "time"

// Persisted cache record shapes. These mirror the durable document on disk:
// one JSON document with top-level teams, events and a reserved epaModel
// section. Timestamps are epoch milliseconds throughout.

// Millis converts a time to the epoch-millisecond representation used by the
// cache document.
func Millis(t time.Time) int64 { return t.UnixMilli() }

// AllianceScore holds one alliance's category points for a single match.
type AllianceScore struct {
	Total            float64 `json:"total"`
	Auto             float64 `json:"auto"`
	DriverControlled float64 `json:"driverControlled"`
	Endgame          float64 `json:"endgame"`
}

// MatchScores carries both alliances' normalized category points.
type MatchScores struct {
	Red  AllianceScore `json:"red"`
	Blue AllianceScore `json:"blue"`
}

// TeamEventRef links a team to an event it attended.
type TeamEventRef struct {
	EventCode string `json:"eventCode"`
}

// TeamMatchRef is one entry of a team's match history. Scores is nil until
// the match has final scores upstream.
type TeamMatchRef struct {
	EventCode string       `json:"eventCode"`
	MatchID   MatchID      `json:"matchId"`
	Scores    *MatchScores `json:"scores,omitempty"`
}

// TeamRecord is the cached upstream payload for one team.
type TeamRecord struct {
	Number      TeamNumber     `json:"number"`
	Name        string         `json:"name"`
	Events      []TeamEventRef `json:"events"`
	Matches     []TeamMatchRef `json:"matches"`
	LastUpdated int64          `json:"last_updated"`
}

// ScheduledMatch is one match of an event schedule as cached from upstream.
// Start is the actual start time in epoch milliseconds (0 if unscheduled).
type ScheduledMatch struct {
	ID     MatchID    `json:"id"`
	Start  int64      `json:"start"`
	Played bool       `json:"played"`
	Red1   TeamNumber `json:"red1"`
	Red2   TeamNumber `json:"red2"`
	Blue1  TeamNumber `json:"blue1"`
	Blue2  TeamNumber `json:"blue2"`
}

// EventRecord is the cached upstream payload for one event.
type EventRecord struct {
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Start       int64            `json:"start"`
	End         int64            `json:"end"`
	Type        EventType        `json:"type"`
	Matches     []ScheduledMatch `json:"matches"`
	Teams       []TeamNumber     `json:"teams"`
	LastUpdated int64            `json:"last_updated"`
}

// EventCode returns the normalized code for keying the record.
func (e EventRecord) EventCode() EventCode { return ParseEventCode(e.Code) }

// CacheEntryInfo is the listing shape for loaded teams/events.
type CacheEntryInfo struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	LastUpdated time.Time `json:"last_updated"`
}
