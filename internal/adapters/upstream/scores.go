package upstream

import (
	"github.com/robostats/scoutrank/internal/domain/model"
)

// Season score table. Upstream breakdowns arrive as raw element counts and
// park/ascent states; these constants convert them to category points.
const (
	pointsSampleNet    = 2
	pointsSampleLow    = 4
	pointsSampleHigh   = 8
	pointsSpecimenLow  = 6
	pointsSpecimenHigh = 10

	pointsParkObservation = 3
	pointsAscent1         = 3
	pointsAscent2         = 15
	pointsAscent3         = 30
)

// rawAllianceScore is one alliance's raw breakdown as sent upstream.
type rawAllianceScore struct {
	TotalPoints      float64 `json:"totalPoints"`
	AutoPark1        string  `json:"autoPark1"`
	AutoPark2        string  `json:"autoPark2"`
	AutoSampleLow    float64 `json:"autoSampleLow"`
	AutoSampleHigh   float64 `json:"autoSampleHigh"`
	AutoSpecimenLow  float64 `json:"autoSpecimenLow"`
	AutoSpecimenHigh float64 `json:"autoSpecimenHigh"`
	DcSampleNet      float64 `json:"dcSampleNet"`
	DcSampleLow      float64 `json:"dcSampleLow"`
	DcSampleHigh     float64 `json:"dcSampleHigh"`
	DcSpecimenLow    float64 `json:"dcSpecimenLow"`
	DcSpecimenHigh   float64 `json:"dcSpecimenHigh"`
	DcPark1          string  `json:"dcPark1"`
	DcPark2          string  `json:"dcPark2"`
}

type rawScores struct {
	Red  rawAllianceScore `json:"red"`
	Blue rawAllianceScore `json:"blue"`
}

// parkPoints maps a park/ascent state to its point value. Unknown states
// (including "None") score zero.
func parkPoints(state string) float64 {
	switch state {
	case "ObservationZone":
		return pointsParkObservation
	case "Ascent1":
		return pointsAscent1
	case "Ascent2":
		return pointsAscent2
	case "Ascent3":
		return pointsAscent3
	default:
		return 0
	}
}

// normalizeAlliance converts a raw breakdown to category points. The
// endgame category is the driver-controlled period park/ascent score.
func normalizeAlliance(r rawAllianceScore) model.AllianceScore {
	auto := parkPoints(r.AutoPark1) + parkPoints(r.AutoPark2) +
		r.AutoSampleLow*pointsSampleLow + r.AutoSampleHigh*pointsSampleHigh +
		r.AutoSpecimenLow*pointsSpecimenLow + r.AutoSpecimenHigh*pointsSpecimenHigh

	dc := r.DcSampleNet*pointsSampleNet + r.DcSampleLow*pointsSampleLow +
		r.DcSampleHigh*pointsSampleHigh +
		r.DcSpecimenLow*pointsSpecimenLow + r.DcSpecimenHigh*pointsSpecimenHigh

	endgame := parkPoints(r.DcPark1) + parkPoints(r.DcPark2)

	return model.AllianceScore{
		Total:            r.TotalPoints,
		Auto:             auto,
		DriverControlled: dc,
		Endgame:          endgame,
	}
}

func normalizeScores(r *rawScores) model.MatchScores {
	return model.MatchScores{
		Red:  normalizeAlliance(r.Red),
		Blue: normalizeAlliance(r.Blue),
	}
}
