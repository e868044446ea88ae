package model

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestIdentifiers(t *testing.T) {
	Convey("Match ids discriminate the phase", t, func() {
		So(MatchID(1).Phase(), ShouldEqual, PhaseQualification)
		So(MatchID(999).Phase(), ShouldEqual, PhaseQualification)
		So(MatchID(1000).Phase(), ShouldEqual, PhaseElimination)
		So(MatchID(1001).Phase(), ShouldEqual, PhaseElimination)
	})

	Convey("Event codes normalize to upper case", t, func() {
		So(ParseEventCode(" usnyc "), ShouldEqual, EventCode("USNYC"))
		So(ParseEventCode("").Valid(), ShouldBeFalse)
		So(ParseEventCode("  ").Valid(), ShouldBeFalse)
	})

	Convey("Team numbers must be positive", t, func() {
		So(TeamNumber(254).Valid(), ShouldBeTrue)
		So(TeamNumber(0).Valid(), ShouldBeFalse)
		So(TeamNumber(-3).Valid(), ShouldBeFalse)
	})

	Convey("Only scrimmages are unofficial", t, func() {
		So(EventTypeQualifier.Official(), ShouldBeTrue)
		So(EventTypeChampionship.Official(), ShouldBeTrue)
		So(EventTypeScrimmage.Official(), ShouldBeFalse)
		So(EventType("").Official(), ShouldBeTrue)
	})
}

func TestRegionGraph(t *testing.T) {
	Convey("Given a region", t, func() {
		r := NewRegion()

		Convey("Adding a team twice returns the same instance", func() {
			a := r.AddTeam(7)
			a.Name = "first"
			b := r.AddTeam(7)

			So(b, ShouldEqual, a)
			So(b.Name, ShouldEqual, "first")
			So(r.TeamCount(), ShouldEqual, 1)
		})

		Convey("Adding an event twice keeps the original", func() {
			first := r.AddEvent(&Event{Code: "USNYC", Name: "first"})
			second := r.AddEvent(&Event{Code: "USNYC", Name: "second"})

			So(second, ShouldEqual, first)
			So(r.Event("USNYC").Name, ShouldEqual, "first")
		})

		Convey("Adding a match with an existing id replaces it in place", func() {
			e := r.AddEvent(&Event{Code: "USNYC"})
			e.AddMatch(&Match{ID: 5, Start: 100})
			e.AddMatch(&Match{ID: 5, Start: 200})

			So(len(e.Matches), ShouldEqual, 1)
			So(e.Match(5).Start, ShouldEqual, int64(200))
		})

		Convey("Events sort by start time with code tiebreak", func() {
			r.AddEvent(&Event{Code: "ZZZ", Start: 100})
			r.AddEvent(&Event{Code: "AAA", Start: 100})
			r.AddEvent(&Event{Code: "MMM", Start: 50})

			events := r.Events()
			So(events[0].Code, ShouldEqual, EventCode("MMM"))
			So(events[1].Code, ShouldEqual, EventCode("AAA"))
			So(events[2].Code, ShouldEqual, EventCode("ZZZ"))
		})

		Convey("Matches sort by start with id tiebreak", func() {
			e := r.AddEvent(&Event{Code: "USNYC"})
			e.AddMatch(&Match{ID: 3, Start: 300})
			e.AddMatch(&Match{ID: 2, Start: 100})
			e.AddMatch(&Match{ID: 1, Start: 100})
			e.SortMatches()

			So(e.Matches[0].ID, ShouldEqual, MatchID(1))
			So(e.Matches[1].ID, ShouldEqual, MatchID(2))
			So(e.Matches[2].ID, ShouldEqual, MatchID(3))
		})

		Convey("SetScores marks the match loaded", func() {
			m := &Match{ID: 1}
			So(m.Loaded, ShouldBeFalse)
			m.SetScores(AllianceScore{Total: 10}, AllianceScore{Total: 20})
			So(m.Loaded, ShouldBeTrue)
			So(m.Blue.Total, ShouldEqual, 20)
		})
	})
}
