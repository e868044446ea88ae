package upstream

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/robostats/scoutrank/internal/domain/model"
)

// Wire payload shapes. These mirror the upstream schema; conversion to the
// cached record types happens here so nothing above this package sees raw
// upstream fields.

type teamPayload struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Events []struct {
		EventCode string `json:"eventCode"`
	} `json:"events"`
	Matches []struct {
		EventCode string        `json:"eventCode"`
		MatchID   int           `json:"matchId"`
		Match     *matchPayload `json:"match"`
	} `json:"matches"`
}

type matchPayload struct {
	HasBeenPlayed   bool       `json:"hasBeenPlayed"`
	ActualStartTime string     `json:"actualStartTime"`
	Scores          *rawScores `json:"scores"`
}

type eventPayload struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Matches []struct {
		ID              int    `json:"id"`
		ActualStartTime string `json:"actualStartTime"`
		HasBeenPlayed   bool   `json:"hasBeenPlayed"`
		Teams           []struct {
			TeamNumber int    `json:"teamNumber"`
			Alliance   string `json:"alliance"`
		} `json:"teams"`
	} `json:"matches"`
	Teams []struct {
		TeamNumber int `json:"teamNumber"`
	} `json:"teams"`
}

// parseUpstreamTime accepts the two timestamp shapes the upstream emits:
// RFC3339 instants for match times and bare dates for event start/end.
func parseUpstreamTime(s string) int64 {
	if s == "" {
		return 0
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return model.Millis(t)
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return model.Millis(t)
	}
	return 0
}

func decodeTeam(raw json.RawMessage, now time.Time) (*model.TeamRecord, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ErrNotFound
	}

	var p teamPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: team payload: %w", ErrDecode, err)
	}

	rec := &model.TeamRecord{
		Number:      model.TeamNumber(p.Number),
		Name:        p.Name,
		Events:      make([]model.TeamEventRef, 0, len(p.Events)),
		Matches:     make([]model.TeamMatchRef, 0, len(p.Matches)),
		LastUpdated: model.Millis(now),
	}
	for _, e := range p.Events {
		rec.Events = append(rec.Events, model.TeamEventRef{
			EventCode: string(model.ParseEventCode(e.EventCode)),
		})
	}
	for _, m := range p.Matches {
		ref := model.TeamMatchRef{
			EventCode: string(model.ParseEventCode(m.EventCode)),
			MatchID:   model.MatchID(m.MatchID),
		}
		if m.Match != nil && m.Match.Scores != nil {
			scores := normalizeScores(m.Match.Scores)
			ref.Scores = &scores
		}
		rec.Matches = append(rec.Matches, ref)
	}
	return rec, nil
}

func decodeEvent(raw json.RawMessage, now time.Time) (*model.EventRecord, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, ErrNotFound
	}

	var p eventPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: event payload: %w", ErrDecode, err)
	}

	rec := &model.EventRecord{
		Code:        string(model.ParseEventCode(p.Code)),
		Name:        p.Name,
		Type:        model.EventType(p.Type),
		Start:       parseUpstreamTime(p.Start),
		End:         parseUpstreamTime(p.End),
		Matches:     make([]model.ScheduledMatch, 0, len(p.Matches)),
		Teams:       make([]model.TeamNumber, 0, len(p.Teams)),
		LastUpdated: model.Millis(now),
	}

	for _, m := range p.Matches {
		sm := model.ScheduledMatch{
			ID:     model.MatchID(m.ID),
			Start:  parseUpstreamTime(m.ActualStartTime),
			Played: m.HasBeenPlayed,
		}
		var red, blue []model.TeamNumber
		for _, t := range m.Teams {
			if strings.EqualFold(t.Alliance, "red") {
				red = append(red, model.TeamNumber(t.TeamNumber))
			} else {
				blue = append(blue, model.TeamNumber(t.TeamNumber))
			}
		}
		if len(red) > 0 {
			sm.Red1 = red[0]
		}
		if len(red) > 1 {
			sm.Red2 = red[1]
		}
		if len(blue) > 0 {
			sm.Blue1 = blue[0]
		}
		if len(blue) > 1 {
			sm.Blue2 = blue[1]
		}
		rec.Matches = append(rec.Matches, sm)
	}

	for _, t := range p.Teams {
		rec.Teams = append(rec.Teams, model.TeamNumber(t.TeamNumber))
	}
	return rec, nil
}
