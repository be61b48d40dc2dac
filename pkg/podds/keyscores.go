package podds

import (
	"fmt"
	"math"
	"strings"
)

// KeyScore is a shortlisted scoreline with the reasons it is plausible
type KeyScore struct {
	Score       string  `json:"score"`
	Probability float64 `json:"probability"`
	Rationale   string  `json:"rationale"`
}

// keyScoreInputs carries what the rationale rules look at
type keyScoreInputs struct {
	home, away       string
	lambdaHome       float64
	lambdaAway       float64
	homeEff, awayEff float64
}

type rationaleRule struct {
	when   func(k keyScoreInputs) bool
	reason func(k keyScoreInputs) string
}

type keyScoreRules struct {
	home, away int
	rules      []rationaleRule
	fallback   string
}

func text(s string) func(keyScoreInputs) string {
	return func(keyScoreInputs) string { return s }
}

// keyScoreTable lists the shortlisted scorelines in report order
var keyScoreTable = []keyScoreRules{
	{1, 0, []rationaleRule{
		{func(k keyScoreInputs) bool { return k.lambdaHome > k.lambdaAway }, func(k keyScoreInputs) string {
			return fmt.Sprintf("%s has stronger attack (%.2f expected goals vs %.2f)", k.home, k.lambdaHome, k.lambdaAway)
		}},
		{func(k keyScoreInputs) bool { return k.awayEff < 0.9 }, func(k keyScoreInputs) string {
			return fmt.Sprintf("%s poor finishing (xG efficiency: %.2f)", k.away, k.awayEff)
		}},
		{func(k keyScoreInputs) bool { return k.lambdaAway < 0.8 }, func(k keyScoreInputs) string {
			return fmt.Sprintf("%s limited attacking threat", k.away)
		}},
		{func(k keyScoreInputs) bool { return k.homeEff > 1.1 }, func(k keyScoreInputs) string {
			return fmt.Sprintf("%s clinical finishing (xG efficiency: %.2f)", k.home, k.homeEff)
		}},
	}, "Balanced match with home edge"},
	{0, 0, []rationaleRule{
		{func(k keyScoreInputs) bool { return k.lambdaHome < 1 && k.lambdaAway < 1 }, text("Both teams have low expected goals")},
		{func(k keyScoreInputs) bool { return k.homeEff < 0.9 && k.awayEff < 0.9 }, text("Both teams inefficient in front of goal")},
		{func(k keyScoreInputs) bool { return k.lambdaHome+k.lambdaAway < 1.5 }, text("Very low total expected goals")},
	}, "Defensive stalemate"},
	{2, 0, []rationaleRule{
		{func(k keyScoreInputs) bool { return k.lambdaHome > 1.5 }, func(k keyScoreInputs) string {
			return fmt.Sprintf("%s strong attacking performance expected", k.home)
		}},
		{func(k keyScoreInputs) bool { return k.lambdaAway < 0.5 }, func(k keyScoreInputs) string {
			return fmt.Sprintf("%s very limited attacking threat", k.away)
		}},
		{func(k keyScoreInputs) bool { return k.homeEff > 1.2 }, func(k keyScoreInputs) string {
			return fmt.Sprintf("%s excellent finishing quality", k.home)
		}},
		{func(k keyScoreInputs) bool { return k.awayEff < 0.8 }, func(k keyScoreInputs) string {
			return fmt.Sprintf("%s wasteful in front of goal", k.away)
		}},
	}, "Home dominance expected"},
	{1, 1, []rationaleRule{
		{func(k keyScoreInputs) bool { return math.Abs(k.lambdaHome-k.lambdaAway) < 0.3 }, text("Evenly matched teams")},
		{func(k keyScoreInputs) bool { return k.lambdaHome > 1 && k.lambdaAway > 1 }, text("Both teams have decent attacking threat")},
		{func(k keyScoreInputs) bool { return k.homeEff > 1 && k.awayEff > 1 }, text("Both teams efficient finishers")},
	}, "Balanced match with goals both ends"},
	{0, 1, []rationaleRule{
		{func(k keyScoreInputs) bool { return k.lambdaAway > k.lambdaHome }, func(k keyScoreInputs) string {
			return fmt.Sprintf("%s has stronger attack (%.2f expected goals vs %.2f)", k.away, k.lambdaAway, k.lambdaHome)
		}},
		{func(k keyScoreInputs) bool { return k.homeEff < 0.9 }, func(k keyScoreInputs) string {
			return fmt.Sprintf("%s poor finishing (xG efficiency: %.2f)", k.home, k.homeEff)
		}},
		{func(k keyScoreInputs) bool { return k.lambdaHome < 0.8 }, func(k keyScoreInputs) string {
			return fmt.Sprintf("%s limited attacking threat", k.home)
		}},
		{func(k keyScoreInputs) bool { return k.awayEff > 1.1 }, func(k keyScoreInputs) string {
			return fmt.Sprintf("%s clinical finishing (xG efficiency: %.2f)", k.away, k.awayEff)
		}},
	}, "Away team advantage"},
}

// KeyScores returns the shortlisted scorelines with their cell probability and rationale
func KeyScores(dist *ScorelineDistribution, home, away TeamAggregate) []KeyScore {
	in := keyScoreInputs{
		home:       home.Team,
		away:       away.Team,
		lambdaHome: dist.LambdaHome,
		lambdaAway: dist.LambdaAway,
		homeEff:    home.Efficiency,
		awayEff:    away.Efficiency,
	}
	scores := make([]KeyScore, 0, len(keyScoreTable))
	for _, entry := range keyScoreTable {
		var reasons []string
		for _, r := range entry.rules {
			if r.when(in) {
				reasons = append(reasons, r.reason(in))
			}
		}
		rationale := entry.fallback
		if len(reasons) > 0 {
			rationale = strings.Join(reasons, " | ")
		}
		scores = append(scores, KeyScore{
			Score:       fmt.Sprintf("%d-%d", entry.home, entry.away),
			Probability: dist.Cell(entry.home, entry.away),
			Rationale:   rationale,
		})
	}
	return scores
}
