package model

import "sort"

// Region is the transient in-memory graph a rating run operates on. Teams,
// events and matches are owned by the Region (arena) with lookup tables by
// natural id; they are rebuilt from the cache snapshot on every run and never
// shared across Region instances.

// EPA is a decomposed scoring-contribution estimate for one team.
type EPA struct {
	Total            float64 `json:"total"`
	Auto             float64 `json:"auto"`
	DriverControlled float64 `json:"driverControlled"`
	Endgame          float64 `json:"endgame"`
}

// Add returns the component-wise sum.
func (e EPA) Add(o EPA) EPA {
	return EPA{
		Total:            e.Total + o.Total,
		Auto:             e.Auto + o.Auto,
		DriverControlled: e.DriverControlled + o.DriverControlled,
		Endgame:          e.Endgame + o.Endgame,
	}
}

// Team is a rated participant. MatchesPlayed is fractional: unofficial
// matches count for less than a full match.
type Team struct {
	Number        TeamNumber
	Name          string
	Elo           float64
	EPA           EPA
	MatchesPlayed float64
	Loaded        bool
}

// EPASnapshot captures both alliances' summed EPA at prediction time.
type EPASnapshot struct {
	Red  EPA `json:"red"`
	Blue EPA `json:"blue"`
}

// Match is one playable match inside an Event. Loaded is true only once
// final scores are set; unloaded matches are excluded from replay.
type Match struct {
	ID     MatchID
	Start  int64
	Played bool
	Red1   TeamNumber
	Red2   TeamNumber
	Blue1  TeamNumber
	Blue2  TeamNumber

	Loaded bool
	Red    AllianceScore
	Blue   AllianceScore

	// Set once, during replay, from pre-match state.
	PredictedWinProbability float64
	EPAAtPrediction         EPASnapshot
	PredictionStored        bool
}

// SetScores marks the match loaded with final category scores.
func (m *Match) SetScores(red, blue AllianceScore) {
	m.Red = red
	m.Blue = blue
	m.Loaded = true
}

// Teams returns the four participants in station order.
func (m *Match) Teams() [4]TeamNumber {
	return [4]TeamNumber{m.Red1, m.Red2, m.Blue1, m.Blue2}
}

// Event owns an ordered sequence of matches.
type Event struct {
	Code    EventCode
	Name    string
	Start   int64
	End     int64
	Type    EventType
	Matches []*Match

	matchByID map[MatchID]*Match
}

// AddMatch inserts a match, replacing any previous match with the same id.
func (e *Event) AddMatch(m *Match) {
	if e.matchByID == nil {
		e.matchByID = make(map[MatchID]*Match)
	}
	if prev, ok := e.matchByID[m.ID]; ok {
		*prev = *m
		return
	}
	e.matchByID[m.ID] = m
	e.Matches = append(e.Matches, m)
}

// Match looks a match up by id. Returns nil when absent.
func (e *Event) Match(id MatchID) *Match {
	return e.matchByID[id]
}

// SortMatches orders matches ascending by start time, ties broken by id so
// replay order is deterministic.
func (e *Event) SortMatches() {
	sort.SliceStable(e.Matches, func(i, j int) bool {
		a, b := e.Matches[i], e.Matches[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.ID < b.ID
	})
}

// Region is the owned team/event graph plus its lookup tables.
type Region struct {
	teams  map[TeamNumber]*Team
	events map[EventCode]*Event

	teamOrder  []TeamNumber
	eventOrder []EventCode
}

// NewRegion returns an empty Region.
func NewRegion() *Region {
	return &Region{
		teams:  make(map[TeamNumber]*Team),
		events: make(map[EventCode]*Event),
	}
}

// AddTeam inserts a fresh team if absent and returns the owned instance.
// Re-adding an existing number is a no-op returning the existing team.
func (r *Region) AddTeam(number TeamNumber) *Team {
	if t, ok := r.teams[number]; ok {
		return t
	}
	t := &Team{Number: number}
	r.teams[number] = t
	r.teamOrder = append(r.teamOrder, number)
	return t
}

// Team looks a team up by number. Returns nil when absent.
func (r *Region) Team(number TeamNumber) *Team { return r.teams[number] }

// AddEvent inserts an event if its code is new and returns the owned
// instance; re-adding an existing code is a no-op.
func (r *Region) AddEvent(e *Event) *Event {
	if existing, ok := r.events[e.Code]; ok {
		return existing
	}
	r.events[e.Code] = e
	r.eventOrder = append(r.eventOrder, e.Code)
	return e
}

// Event looks an event up by code. Returns nil when absent.
func (r *Region) Event(code EventCode) *Event { return r.events[code] }

// HasTeam reports whether the number is already part of the graph.
func (r *Region) HasTeam(number TeamNumber) bool {
	_, ok := r.teams[number]
	return ok
}

// HasEvent reports whether the code is already part of the graph.
func (r *Region) HasEvent(code EventCode) bool {
	_, ok := r.events[code]
	return ok
}

// Teams returns all teams in insertion order.
func (r *Region) Teams() []*Team {
	out := make([]*Team, 0, len(r.teamOrder))
	for _, n := range r.teamOrder {
		out = append(out, r.teams[n])
	}
	return out
}

// Events returns all events ascending by start time, ties broken by code.
func (r *Region) Events() []*Event {
	out := make([]*Event, 0, len(r.eventOrder))
	for _, c := range r.eventOrder {
		out = append(out, r.events[c])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// Matches returns every match in chronological event order, matches sorted
// within each event.
func (r *Region) Matches() []*Match {
	var out []*Match
	for _, e := range r.Events() {
		e.SortMatches()
		out = append(out, e.Matches...)
	}
	return out
}

// TeamCount and EventCount size the graph for stats reporting.
func (r *Region) TeamCount() int  { return len(r.teams) }
func (r *Region) EventCount() int { return len(r.events) }
