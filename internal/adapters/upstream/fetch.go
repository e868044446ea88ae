package upstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robostats/scoutrank/internal/domain/model"
)

// FetchTeam retrieves one team record.
func (c *Client) FetchTeam(ctx context.Context, number model.TeamNumber) (*model.TeamRecord, error) {
	if !number.Valid() {
		return nil, fmt.Errorf("%w: team number %d", ErrInvalidKey, number)
	}

	data, err := c.query(ctx, "team", c.buildTeamQuery(number.String()))
	if err != nil {
		return nil, err
	}
	return decodeTeam(data["teamByNumber"], time.Now())
}

// FetchTeams retrieves up to MaxBatchSize team records in one round trip.
// Team numbers absent upstream are silently missing from the result; the
// caller compares against the requested set.
func (c *Client) FetchTeams(ctx context.Context, numbers []model.TeamNumber) ([]model.TeamRecord, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	if len(numbers) > c.maxBatchSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(numbers), c.maxBatchSize)
	}

	aliases := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if !n.Valid() {
			return nil, fmt.Errorf("%w: team number %d", ErrInvalidKey, n)
		}
		aliases = append(aliases, n.String())
	}

	data, err := c.query(ctx, "teams", c.buildTeamBatchQuery(aliases))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]model.TeamRecord, 0, len(data))
	for _, n := range aliases {
		rec, err := decodeTeam(data["team"+n], now)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// FetchEvent retrieves one event record.
func (c *Client) FetchEvent(ctx context.Context, code model.EventCode) (*model.EventRecord, error) {
	if !code.Valid() {
		return nil, fmt.Errorf("%w: empty event code", ErrInvalidKey)
	}

	data, err := c.query(ctx, "event", c.buildEventQuery(code.String()))
	if err != nil {
		return nil, err
	}
	return decodeEvent(data["eventByCode"], time.Now())
}

// FetchEvents retrieves multiple event records in one round trip.
func (c *Client) FetchEvents(ctx context.Context, codes []model.EventCode) ([]model.EventRecord, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	aliases := make([]string, 0, len(codes))
	for _, code := range codes {
		if !code.Valid() {
			return nil, fmt.Errorf("%w: empty event code", ErrInvalidKey)
		}
		aliases = append(aliases, code.String())
	}

	data, err := c.query(ctx, "events", c.buildEventBatchQuery(aliases))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]model.EventRecord, 0, len(data))
	for _, code := range aliases {
		rec, err := decodeEvent(data[code], now)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}
