package podds

import (
	"fmt"
	"math"
)

// CornerProfile is a team's measured corner record
type CornerProfile struct {
	Team                   string  `json:"team" yaml:"team"`
	CornersForPerMatch     float64 `json:"cornersForPerMatch" yaml:"corners_for_per_match"`
	CornersAgainstPerMatch float64 `json:"cornersAgainstPerMatch" yaml:"corners_against_per_match"`
	TotalCornersPerMatch   float64 `json:"totalCornersPerMatch" yaml:"total_corners_per_match"`
	Over85                 float64 `json:"over85" yaml:"over_85"`
	Over95                 float64 `json:"over95" yaml:"over_95"`
	Over105                float64 `json:"over105" yaml:"over_105"`
}

// DefaultCornerProfile is a league-average team
func DefaultCornerProfile(team string) CornerProfile {
	return CornerProfile{
		Team:                   team,
		CornersForPerMatch:     4.5,
		CornersAgainstPerMatch: 4.5,
		TotalCornersPerMatch:   9.0,
		Over85:                 0.5,
		Over95:                 0.5,
		Over105:                0.5,
	}
}

// Normalize turns percentage columns (55 rather than 0.55) into fractions
func (c CornerProfile) Normalize() CornerProfile {
	for _, p := range []*float64{&c.Over85, &c.Over95, &c.Over105} {
		if *p > 1 {
			*p /= 100
		}
	}
	return c
}

// Validate rejects negative or non-finite values
func (c CornerProfile) Validate() error {
	for _, v := range []float64{c.CornersForPerMatch, c.CornersAgainstPerMatch, c.TotalCornersPerMatch, c.Over85, c.Over95, c.Over105} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("corner profile for %s has invalid value %v: %w", c.Team, v, ErrInvalidInput)
		}
	}
	return nil
}

// CornerEstimate is the attacking-pressure proxy used when no corner data exists
type CornerEstimate struct {
	AvgCorners float64 `json:"avgCorners"`
	// Frequency is attacking pressure per 90 normalised to 0-1
	Frequency float64 `json:"frequency"`
}

// EstimateCorners derives a corner estimate from a squad's attacking output
func EstimateCorners(players []ResolvedPlayer) CornerEstimate {
	if len(players) == 0 {
		return CornerEstimate{AvgCorners: 4.5, Frequency: 0.5}
	}
	var minutes, pressure float64
	for _, p := range players {
		minutes += p.Minutes
		pressure += p.Goals*2 + p.XG*3 + p.ProgressivePasses*0.1 + p.ProgressiveCarries*0.1 + p.Assists*1.5
	}
	frequency := 5.0
	if minutes > 0 {
		frequency = pressure / (minutes / 90)
	}
	return CornerEstimate{
		AvgCorners: round(clamp(frequency*0.25, 3, 7), 1),
		Frequency:  math.Min(frequency/12, 1),
	}
}

// CornerPrediction is the corner market block of an evaluation
type CornerPrediction struct {
	ExpectedTotal float64 `json:"expectedTotal"`
	ExpectedHome  float64 `json:"expectedHome"`
	ExpectedAway  float64 `json:"expectedAway"`
	// Estimated is set when the numbers come from the attacking-pressure proxy rather than corner data
	Estimated bool `json:"estimated"`

	Total map[string]float64 `json:"total"`
	Team  map[string]float64 `json:"team"`
}

// overUnder derives Under from the clamped Over so the pair always sums to 1
func overUnder(target map[string]float64, label string, over, lo, hi float64) {
	over = clamp(finiteOr(over, 0.5), lo, hi)
	target["Over "+label] = over
	target["Under "+label] = 1 - over
}

// PredictCorners uses measured profiles when both teams have one, otherwise the squad estimate
func PredictCorners(ctx MatchContext) CornerPrediction {
	if ctx.Home.Corners != nil && ctx.Away.Corners != nil {
		return cornersFromData(ctx.Home.Corners.Normalize(), ctx.Away.Corners.Normalize(), ctx.HomeDesignated)
	}
	return cornersFromEstimate(EstimateCorners(ctx.Home.Aggregate.players), EstimateCorners(ctx.Away.Aggregate.players), ctx.HomeDesignated)
}

func cornersFromData(home, away CornerProfile, homeDesignated bool) CornerPrediction {
	homeMultiplier, awayMultiplier := 1.0, 1.0
	if homeDesignated {
		homeMultiplier, awayMultiplier = 1.1, 0.95
	}
	homeExpected := home.CornersForPerMatch * homeMultiplier
	awayExpected := away.CornersForPerMatch * awayMultiplier
	total := homeExpected + awayExpected

	over85 := (home.Over85 + away.Over85) / 2
	over95 := (home.Over95 + away.Over95) / 2
	over105 := (home.Over105 + away.Over105) / 2
	switch {
	case total > 10.5:
		over85 = math.Min(over85*1.2, 0.95)
		over95 = math.Min(over95*1.15, 0.85)
		over105 = math.Min(over105*1.1, 0.75)
	case total < 8.0:
		over85 = math.Max(over85*0.8, 0.05)
		over95 = math.Max(over95*0.7, 0.05)
		over105 = math.Max(over105*0.6, 0.05)
	}

	p := CornerPrediction{
		ExpectedTotal: round(total, 1),
		ExpectedHome:  round(homeExpected, 1),
		ExpectedAway:  round(awayExpected, 1),
		Total:         map[string]float64{},
		Team:          map[string]float64{},
	}
	overUnder(p.Total, "8.5", over85, 0.05, 0.95)
	overUnder(p.Total, "9.5", over95, 0.05, 0.95)
	overUnder(p.Total, "10.5", over105, 0.05, 0.95)
	overUnder(p.Team, "4.5", 0.5+(homeExpected-4.5)*0.15, 0.05, 0.95)
	overUnder(p.Team, "3.5", 0.5+(awayExpected-3.5)*0.15, 0.05, 0.95)
	p.Team = teamLabels(p.Team)
	return p
}

func cornersFromEstimate(home, away CornerEstimate, homeDesignated bool) CornerPrediction {
	homeCorners, awayCorners := home.AvgCorners, away.AvgCorners
	if homeDesignated {
		homeCorners *= 1.15
		awayCorners *= 0.9
	}
	homeCorners *= 1 + home.Frequency*0.15
	awayCorners *= 1 + away.Frequency*0.15
	total := homeCorners + awayCorners

	p := CornerPrediction{
		ExpectedTotal: round(total, 1),
		ExpectedHome:  round(homeCorners, 1),
		ExpectedAway:  round(awayCorners, 1),
		Estimated:     true,
		Total:         map[string]float64{},
		Team:          map[string]float64{},
	}
	overUnder(p.Total, "8.5", 0.5+(total-8.5)*0.25, 0.1, 0.9)
	overUnder(p.Total, "9.5", 0.5+(total-9.5)*0.3, 0.1, 0.9)
	overUnder(p.Team, "4.5", 0.5+(homeCorners-4.5)*0.3, 0.1, 0.9)
	overUnder(p.Team, "3.5", 0.5+(awayCorners-3.5)*0.3, 0.1, 0.9)
	p.Team = teamLabels(p.Team)
	return p
}

// teamLabels prefixes the team lines, home is quoted at 4.5 and away at 3.5
func teamLabels(lines map[string]float64) map[string]float64 {
	return map[string]float64{
		"Home Over 4.5":  lines["Over 4.5"],
		"Home Under 4.5": lines["Under 4.5"],
		"Away Over 3.5":  lines["Over 3.5"],
		"Away Under 3.5": lines["Under 3.5"],
	}
}
