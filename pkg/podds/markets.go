package podds

import (
	"fmt"
	"math"
	"sort"
)

// MarketProbability maps market name -> outcome label -> probability
type MarketProbability map[string]map[string]float64

// Market names, these match the keys of the odds sheets
const (
	Market1X2           = "1X2"
	MarketBTTS          = "Both Teams to Score"
	MarketBTTSMatrix    = "Both Teams to Score (Matrix)"
	MarketDoubleChance  = "Double Chance"
	MarketDrawNoBet     = "Draw No Bet"
	MarketCorrectScore  = "Correct Score"
	MarketAsianHandicap = "Asian Handicap"
	MarketFirstGoal     = "First Goal"
	MarketFirstHalfGoal = "First Half Goal"
	MarketTotalCorners  = "Total Corners"
	MarketTeamCorners   = "Team Corners"

	MarketHomeFirstHalfGoal  = "Home 1st Half Goal"
	MarketHomeSecondHalfGoal = "Home 2nd Half Goal"
	MarketAwayFirstHalfGoal  = "Away 1st Half Goal"
	MarketAwaySecondHalfGoal = "Away 2nd Half Goal"
)

// CorrectScoreOther is the correct score outcome covering every scoreline not listed
const CorrectScoreOther = "Other"

// OverUnderMarket names the goals market for a line, e.g. "Over/Under 2.5"
func OverUnderMarket(line float64) string {
	return fmt.Sprintf("Over/Under %.1f", line)
}

// Markets sorted by name, for deterministic iteration
func (m MarketProbability) Markets() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Outcomes of one market sorted by label
func (m MarketProbability) Outcomes(market string) []string {
	labels := make([]string, 0, len(m[market]))
	for label := range m[market] {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// HalfTime holds the per-half goal expectations and scoring probabilities
type HalfTime struct {
	FirstHalfShare       float64 `json:"firstHalfShare"`
	HomeFirstHalfGoals   float64 `json:"homeFirstHalfGoals"`
	HomeSecondHalfGoals  float64 `json:"homeSecondHalfGoals"`
	AwayFirstHalfGoals   float64 `json:"awayFirstHalfGoals"`
	AwaySecondHalfGoals  float64 `json:"awaySecondHalfGoals"`
	HomeScoresFirstHalf  float64 `json:"homeScoresFirstHalf"`
	HomeScoresSecondHalf float64 `json:"homeScoresSecondHalf"`
	AwayScoresFirstHalf  float64 `json:"awayScoresFirstHalf"`
	AwayScoresSecondHalf float64 `json:"awayScoresSecondHalf"`
}

// Markets is the output of the derived market calculator
type Markets struct {
	Probabilities MarketProbability `json:"probabilities"`
	HalfTime      HalfTime          `json:"halfTime"`
	Corners       CornerPrediction  `json:"corners"`
	KeyScores     []KeyScore        `json:"keyScores"`
}

// scoreAtLeastOnce is 1 - Poisson(0; lambda)
func scoreAtLeastOnce(lambda float64) float64 {
	return 1 - math.Exp(-math.Max(0, lambda))
}

// HalfTimeProbabilities splits each side's lambda between the halves
// An attacking home side starts faster and a defensive away side slows the first half down
func HalfTimeProbabilities(cfg *Config, lambdaHome, lambdaAway float64, home, away TeamAggregate) HalfTime {
	share := cfg.FirstHalfShare
	if home.Style == StyleAttacking {
		share += cfg.AttackingFirstHalfBonus
	}
	if away.Style == StyleDefensive {
		share -= cfg.DefensiveFirstHalfPenalty
	}
	share = clamp(share, 0, 1)
	h := HalfTime{
		FirstHalfShare:      share,
		HomeFirstHalfGoals:  lambdaHome * share,
		HomeSecondHalfGoals: lambdaHome * (1 - share),
		AwayFirstHalfGoals:  lambdaAway * share,
		AwaySecondHalfGoals: lambdaAway * (1 - share),
	}
	h.HomeScoresFirstHalf = scoreAtLeastOnce(h.HomeFirstHalfGoals)
	h.HomeScoresSecondHalf = scoreAtLeastOnce(h.HomeSecondHalfGoals)
	h.AwayScoresFirstHalf = scoreAtLeastOnce(h.AwayFirstHalfGoals)
	h.AwayScoresSecondHalf = scoreAtLeastOnce(h.AwaySecondHalfGoals)
	return h
}

// binary sets a Yes/No pair with No derived from Yes
func binary(yes float64) map[string]float64 {
	yes = clamp(finiteOr(yes, 0.5), 0, 1)
	return map[string]float64{"Yes": yes, "No": 1 - yes}
}

// DeriveMarkets projects the scoreline distribution and the team aggregates onto the betting markets
func DeriveMarkets(cfg *Config, dist *ScorelineDistribution, ctx MatchContext) Markets {
	home, away := ctx.Home.Aggregate, ctx.Away.Aggregate
	probs := MarketProbability{}

	outcomes := dist.Outcomes()
	probs[Market1X2] = map[string]float64{
		"Home": outcomes.HomeWin,
		"Draw": outcomes.Draw,
		"Away": outcomes.AwayWin,
	}

	for _, line := range cfg.GoalLines {
		over := dist.OverProbability(line)
		probs[OverUnderMarket(line)] = map[string]float64{"Over": over, "Under": 1 - over}
	}

	// style heuristic, kept next to the matrix value for comparison
	probs[MarketBTTS] = binary(clamp((home.AttackRatio+away.AttackRatio)*cfg.BTTSWeight, cfg.BTTSMin, cfg.BTTSMax))
	probs[MarketBTTSMatrix] = binary(dist.BothScoreProbability())

	// each outcome is its own binary bet against the remaining 1X2 result, they do not sum to 1
	probs[MarketDoubleChance] = map[string]float64{
		"Home or Draw": math.Min(outcomes.HomeWin+outcomes.Draw, 1),
		"Home or Away": math.Min(outcomes.HomeWin+outcomes.AwayWin, 1),
		"Draw or Away": math.Min(outcomes.Draw+outcomes.AwayWin, 1),
	}

	dnbHome := safeDiv(outcomes.HomeWin, outcomes.HomeWin+outcomes.AwayWin, 0.5)
	probs[MarketDrawNoBet] = map[string]float64{"Home": dnbHome, "Away": 1 - dnbHome}

	correct := map[string]float64{}
	var listed float64
	for i := 0; i <= cfg.CorrectScoreMax; i++ {
		for j := 0; j <= cfg.CorrectScoreMax; j++ {
			p := dist.Cell(i, j)
			correct[fmt.Sprintf("%d-%d", i, j)] = p
			listed += p
		}
	}
	correct[CorrectScoreOther] = math.Max(0, 1-listed)
	probs[MarketCorrectScore] = correct

	// away winning by two or more is the only way the +1.5 handicap loses
	var awayByTwo float64
	for i := 0; i <= dist.MaxGoals; i++ {
		for j := i + 2; j <= dist.MaxGoals; j++ {
			awayByTwo += dist.Cells[i][j]
		}
	}
	awayByTwo = math.Min(awayByTwo, 1)
	probs[MarketAsianHandicap] = map[string]float64{"Home +1.5": 1 - awayByTwo, "Away -1.5": awayByTwo}

	// the first goal goes to each side in proportion to its rate
	goalless := dist.Cell(0, 0)
	homeShare := safeDiv(dist.LambdaHome, dist.LambdaHome+dist.LambdaAway, 0.5)
	probs[MarketFirstGoal] = map[string]float64{
		"Home": homeShare * (1 - goalless),
		"Away": (1 - homeShare) * (1 - goalless),
		"None": goalless,
	}

	half := HalfTimeProbabilities(cfg, dist.LambdaHome, dist.LambdaAway, home, away)
	probs[MarketHomeFirstHalfGoal] = binary(half.HomeScoresFirstHalf)
	probs[MarketHomeSecondHalfGoal] = binary(half.HomeScoresSecondHalf)
	probs[MarketAwayFirstHalfGoal] = binary(half.AwayScoresFirstHalf)
	probs[MarketAwaySecondHalfGoal] = binary(half.AwayScoresSecondHalf)
	probs[MarketFirstHalfGoal] = binary(scoreAtLeastOnce(half.HomeFirstHalfGoals + half.AwayFirstHalfGoals))

	corners := PredictCorners(ctx)
	probs[MarketTotalCorners] = corners.Total
	probs[MarketTeamCorners] = corners.Team

	return Markets{
		Probabilities: probs,
		HalfTime:      half,
		Corners:       corners,
		KeyScores:     KeyScores(dist, home, away),
	}
}
