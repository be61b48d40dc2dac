package podds

import (
	"fmt"
	"math"
	"strings"
)

// PressureLevel classifies the table situation a team is playing under
type PressureLevel string

const (
	PressureNeutral            PressureLevel = "NEUTRAL"
	PressureModerateEuropean   PressureLevel = "MODERATE_EUROPEAN"
	PressureHighEuropean       PressureLevel = "HIGH_EUROPEAN"
	PressureLowRelegation      PressureLevel = "LOW_RELEGATION"
	PressureHighRelegation     PressureLevel = "HIGH_RELEGATION"
	PressureCriticalRelegation PressureLevel = "CRITICAL_RELEGATION"
)

// IsEuropean is true for teams chasing European qualification
func (p PressureLevel) IsEuropean() bool {
	return p == PressureHighEuropean || p == PressureModerateEuropean
}

// IsRelegationFight is true for the high and critical relegation levels
func (p PressureLevel) IsRelegationFight() bool {
	return p == PressureHighRelegation || p == PressureCriticalRelegation
}

// Standing is one row of a league table
type Standing struct {
	Team         string  `json:"team" yaml:"team"`
	Position     int     `json:"position" yaml:"position"`
	Played       int     `json:"played" yaml:"played"`
	Won          int     `json:"won" yaml:"won"`
	Drawn        int     `json:"drawn" yaml:"drawn"`
	Lost         int     `json:"lost" yaml:"lost"`
	GoalsFor     float64 `json:"goalsFor" yaml:"goals_for"`
	GoalsAgainst float64 `json:"goalsAgainst" yaml:"goals_against"`
	Points       float64 `json:"points" yaml:"points"`
}

// Validate checks the required columns of a table row
func (s Standing) Validate() error {
	if strings.TrimSpace(s.Team) == "" {
		return fmt.Errorf("standing has no team: %w", ErrInvalidInput)
	}
	if s.Position <= 0 {
		return fmt.Errorf("standing for %s has invalid position %d: %w", s.Team, s.Position, ErrInvalidInput)
	}
	if s.Played < 0 || s.Won < 0 || s.Drawn < 0 || s.Lost < 0 {
		return fmt.Errorf("standing for %s has negative match counts: %w", s.Team, ErrInvalidInput)
	}
	return nil
}

// ContextSignals are the table and form signals for one team
type ContextSignals struct {
	Team      string        `json:"team"`
	Position  int           `json:"position"`
	Sentiment float64       `json:"sentiment"`
	Pressure  PressureLevel `json:"pressure"`

	TotalPressure      float64 `json:"totalPressure"`
	EuropeanPressure   float64 `json:"europeanPressure"`
	RelegationPressure float64 `json:"relegationPressure"`
	PointsFromSafety   float64 `json:"pointsFromSafety"`

	ChampionsLeagueZone   bool `json:"championsLeagueZone"`
	EuropaLeagueZone      bool `json:"europaLeagueZone"`
	EuropeanQualification bool `json:"europeanQualification"`
	RelegationZone        bool `json:"relegationZone"`
	RelegationThreat      bool `json:"relegationThreat"`

	// Form is optional, nil when no recent results were supplied
	Form *FormRating `json:"form,omitempty"`
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// pointsAt returns the points of the team at a table position, or the fallback when nobody holds it
func pointsAt(standings []Standing, position int, fallback float64) float64 {
	for _, s := range standings {
		if s.Position == position {
			return s.Points
		}
	}
	return fallback
}

// PressureFor maps a total pressure score to its level
func PressureFor(total float64) PressureLevel {
	switch {
	case total < -20:
		return PressureCriticalRelegation
	case total < -10:
		return PressureHighRelegation
	case total > 20:
		return PressureHighEuropean
	case total > 10:
		return PressureModerateEuropean
	case total < 0:
		return PressureLowRelegation
	default:
		return PressureNeutral
	}
}

// BuildLeagueContext computes sentiment and pressure signals for every team in a table
// Invalid rows are skipped and returned as errors, the rest of the table is still scored
func BuildLeagueContext(cfg *Config, standings []Standing) (map[string]ContextSignals, []error) {
	var errs []error
	valid := make([]Standing, 0, len(standings))
	for _, s := range standings {
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		valid = append(valid, s)
	}

	result := make(map[string]ContextSignals, len(valid))
	if len(valid) == 0 {
		return result, errs
	}

	league := cfg.League
	n := len(valid)
	cl := league.ChampionsLeagueSpots
	europa := cl + league.EuropaLeagueSpots
	games := float64(league.GamesPerSeason)

	// reference points for the chase and the drop
	clPoints := pointsAt(valid, cl, 60)
	europaPoints := pointsAt(valid, europa, 50)
	safePoints := pointsAt(valid, n-league.RelegationSpots, 30)

	adjusted := make([]float64, n)
	for i, s := range valid {
		played := float64(s.Played)
		winRate := round(safeDiv(float64(s.Won), played, 0), 3)
		lossRate := round(safeDiv(float64(s.Lost), played, 0), 3)
		gdPerMatch := round(safeDiv(s.GoalsFor-s.GoalsAgainst, played, 0), 2)
		performance := winRate*50 + gdPerMatch*10 + safeDiv(s.Points, played, 0)

		sig := ContextSignals{
			Team:                s.Team,
			Position:            s.Position,
			ChampionsLeagueZone: s.Position <= cl,
			EuropaLeagueZone:    s.Position > cl && s.Position <= europa,
			RelegationZone:      s.Position > n-league.RelegationSpots,
			RelegationThreat:    s.Position > n-league.RelegationThreatSpots,
		}
		sig.EuropeanQualification = s.Position <= europa

		switch {
		case sig.ChampionsLeagueZone:
			sig.EuropeanPressure = 25
		case sig.EuropaLeagueZone:
			sig.EuropeanPressure = 15
		case s.Position <= league.EuropeanChaseTo:
			sig.EuropeanPressure = 5
		}

		switch {
		case sig.RelegationZone:
			sig.RelegationPressure = -30
		case sig.RelegationThreat:
			sig.RelegationPressure = -15
		}

		progress := math.Min(played, games) / games
		var formPressure float64
		switch {
		case winRate > 0.6 && progress > 0.6 && sig.EuropeanQualification:
			formPressure = 20
		case lossRate > 0.6 && progress > 0.6 && sig.RelegationThreat:
			formPressure = -20
		}

		var europeanPoints float64
		switch {
		case s.Position > cl && s.Position <= europa+1 && clPoints-s.Points <= 6:
			europeanPoints = 15
		case s.Position > europa && s.Position <= league.EuropeanChaseTo && europaPoints-s.Points <= 4:
			europeanPoints = 10
		}

		sig.PointsFromSafety = safePoints - s.Points
		var safetyPoints float64
		switch {
		case sig.RelegationThreat && sig.PointsFromSafety > 6:
			safetyPoints = -25
		case sig.RelegationThreat && sig.PointsFromSafety <= 3:
			safetyPoints = -5
		}

		sig.TotalPressure = sig.EuropeanPressure + sig.RelegationPressure + formPressure + europeanPoints + safetyPoints
		sig.Pressure = PressureFor(sig.TotalPressure)
		adjusted[i] = performance + sig.TotalPressure
		result[s.Team] = sig
	}

	lo, hi := adjusted[0], adjusted[0]
	for _, v := range adjusted[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	for i, s := range valid {
		sig := result[s.Team]
		if hi > lo {
			sig.Sentiment = 100 * (adjusted[i] - lo) / (hi - lo)
		} else {
			sig.Sentiment = 50
		}
		result[s.Team] = sig
	}
	return result, errs
}
