// Package types contains common read shapes returned across the application.
package types

import "time"

// EPA mirrors the decomposed contribution estimate in API responses.
type EPA struct {
	Total            float64 `json:"total"`
	Auto             float64 `json:"auto"`
	DriverControlled float64 `json:"driver_controlled"`
	Endgame          float64 `json:"endgame"`
}

// TeamRating is the query shape for one rated team.
type TeamRating struct {
	Number        int     `json:"number"`
	Elo           float64 `json:"elo"`
	EPA           EPA     `json:"epa"`
	MatchesPlayed float64 `json:"matches_played"`
}

// MatchPrediction is the query shape for one match prediction.
// Stored is true when the value was computed during the last replay;
// false means it was recomputed on demand from current ratings.
type MatchPrediction struct {
	EventCode         string  `json:"event_code"`
	MatchID           int     `json:"match_id"`
	RedWinProbability float64 `json:"red_win_probability"`
	Stored            bool    `json:"stored"`
}

// RegionSummary sizes the last built region and its replay outcome.
type RegionSummary struct {
	Teams         int       `json:"teams"`
	Events        int       `json:"events"`
	Matches       int       `json:"matches"`
	LoadedMatches int       `json:"loaded_matches"`
	Accuracy      float64   `json:"accuracy"`
	ReplayedAt    time.Time `json:"replayed_at"`
}
