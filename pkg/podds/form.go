package podds

import "math"

// FormRecord is a team's recent-results line (typically the last few games)
type FormRecord struct {
	Team         string  `json:"team" yaml:"team"`
	GamesPlayed  int     `json:"gp" yaml:"gp"`
	Points       float64 `json:"pts" yaml:"pts"`
	GoalsFor     float64 `json:"gf" yaml:"gf"`
	GoalsAgainst float64 `json:"ga" yaml:"ga"`
	// OpponentsPPG is the average points per game of the opponents faced
	OpponentsPPG float64 `json:"opponentsPpg" yaml:"opponents_ppg"`
}

// FormRating is the normalised reading of a FormRecord
type FormRating struct {
	Rating             float64 `json:"formRating"`
	AttackForm         float64 `json:"attackForm"`
	DefenseForm        float64 `json:"defenseForm"`
	StrengthOfSchedule float64 `json:"strengthOfSchedule"`
	Momentum           float64 `json:"momentum"`
	// Confidence grows with games played and reaches 1 at four games
	Confidence float64 `json:"confidence"`
}

// NeutralForm is returned when there are no games to rate
func NeutralForm() FormRating {
	return FormRating{
		Rating:             0.5,
		AttackForm:         0.5,
		DefenseForm:        0.5,
		StrengthOfSchedule: 0.5,
		Momentum:           0.5,
		Confidence:         0,
	}
}

// RateForm converts a FormRecord into ratings on a 0-1 scale
func RateForm(r FormRecord) FormRating {
	if r.GamesPlayed <= 0 {
		return NeutralForm()
	}
	gp := float64(r.GamesPlayed)
	rating := r.Points / (gp * 3)
	// goal difference per game nudges momentum either side of the raw form
	gd := r.GoalsFor - r.GoalsAgainst
	return FormRating{
		Rating:             finiteOr(rating, 0.5),
		AttackForm:         math.Min(r.GoalsFor/gp/3, 1),
		DefenseForm:        1 - math.Min(r.GoalsAgainst/gp/3, 1),
		StrengthOfSchedule: math.Min(r.OpponentsPPG/3, 1),
		Momentum:           math.Max(0, finiteOr(rating*(1+gd/gp*0.1), 0.5)),
		Confidence:         math.Min(gp/4, 1),
	}
}
