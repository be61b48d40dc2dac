package podds

import (
	"math"

	"github.com/richard-senior/matchodds/internal/logger"
)

// topScorerCount is how many likely scorers are listed per team
const topScorerCount = 3

// Summary is the headline of an evaluation
type Summary struct {
	HomeTeam       string      `json:"homeTeam"`
	AwayTeam       string      `json:"awayTeam"`
	LambdaHome     float64     `json:"lambdaHome"`
	LambdaAway     float64     `json:"lambdaAway"`
	HomeWin        float64     `json:"homeWin"`
	Draw           float64     `json:"draw"`
	AwayWin        float64     `json:"awayWin"`
	ExpectedGoals  float64     `json:"expectedGoals"`
	MostLikelyHome int         `json:"mostLikelyHome"`
	MostLikelyAway int         `json:"mostLikelyAway"`
	TopScorelines  []Scoreline `json:"topScorelines"`
	TailMass       float64     `json:"tailMass"`
}

// Scorer is a player's chance of scoring in this match
type Scorer struct {
	Player string `json:"player"`
	// SeasonShare is the player's slice of the team's season xG
	SeasonShare float64 `json:"seasonShare"`
	Probability float64 `json:"probability"`
}

// Evaluation is the complete result of one match evaluation
type Evaluation struct {
	Summary      Summary                `json:"summary"`
	Distribution *ScorelineDistribution `json:"distribution"`
	Markets      MarketProbability      `json:"markets"`
	HalfTime     HalfTime               `json:"halfTime"`
	Corners      CornerPrediction       `json:"corners"`
	KeyScores    []KeyScore             `json:"keyScores"`
	Insights     []Insight              `json:"insights"`
	Confidence   Confidence             `json:"confidence"`
	ValueBets    []ValueBet             `json:"valueBets"`
	// RejectedOdds lists quoted prices the scanner could not use
	RejectedOdds []string      `json:"rejectedOdds,omitempty"`
	Adjustments  []Adjustment  `json:"adjustments"`
	Home         TeamAggregate `json:"home"`
	Away         TeamAggregate `json:"away"`
	HomeScorers  []Scorer      `json:"homeScorers"`
	AwayScorers  []Scorer      `json:"awayScorers"`
}

// Evaluate runs the whole pipeline for one match
func Evaluate(cfg *Config, ctx MatchContext, odds OddsQuote) (*Evaluation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rates, err := Adjust(cfg, ctx)
	if err != nil {
		return nil, err
	}

	lambdaHome, lambdaAway := Lambdas(cfg, rates)
	dist, err := NewScorelineDistribution(lambdaHome, lambdaAway, cfg.MaxGoals)
	if err != nil {
		return nil, err
	}

	outcomes := dist.Outcomes()
	expected := dist.ExpectedGoals()
	top := dist.TopScorelines(cfg.TopScorelines)

	markets := DeriveMarkets(cfg, dist, ctx)
	bets, rejected := ScanValueBets(cfg, markets.Probabilities, odds)

	eval := &Evaluation{
		Summary: Summary{
			HomeTeam:       ctx.Home.Aggregate.Team,
			AwayTeam:       ctx.Away.Aggregate.Team,
			LambdaHome:     lambdaHome,
			LambdaAway:     lambdaAway,
			HomeWin:        outcomes.HomeWin,
			Draw:           outcomes.Draw,
			AwayWin:        outcomes.AwayWin,
			ExpectedGoals:  expected,
			MostLikelyHome: dist.MostLikelyGoals(HomeSide),
			MostLikelyAway: dist.MostLikelyGoals(AwaySide),
			TopScorelines:  top,
			TailMass:       dist.TailMass,
		},
		Distribution: dist,
		Markets:      markets.Probabilities,
		HalfTime:     markets.HalfTime,
		Corners:      markets.Corners,
		KeyScores:    markets.KeyScores,
		Insights:     BuildInsights(ctx, outcomes, markets, top),
		Confidence:   buildConfidence(outcomes, expected, ctx.Home.Aggregate, ctx.Away.Aggregate),
		ValueBets:    bets,
		Adjustments:  rates.Trace,
		Home:         ctx.Home.Aggregate,
		Away:         ctx.Away.Aggregate,
		HomeScorers:  likelyScorers(ctx.Home.Aggregate, lambdaHome),
		AwayScorers:  likelyScorers(ctx.Away.Aggregate, lambdaAway),
	}
	for _, r := range rejected {
		eval.RejectedOdds = append(eval.RejectedOdds, r.Error())
	}

	logger.Debug("Evaluated match", eval.Summary.HomeTeam, eval.Summary.AwayTeam, lambdaHome, lambdaAway)
	return eval, nil
}

// likelyScorers spreads a side's lambda over its players by season share
func likelyScorers(team TeamAggregate, lambda float64) []Scorer {
	shares := PlayerGoalShares(team.players)
	var total float64
	for _, s := range shares {
		total += s.ExpectedGoals
	}
	n := int(math.Min(float64(len(shares)), topScorerCount))
	scorers := make([]Scorer, 0, n)
	for _, s := range shares[:n] {
		fraction := safeDiv(s.ExpectedGoals, total, 0)
		scorers = append(scorers, Scorer{
			Player:      s.Player,
			SeasonShare: s.ExpectedGoals,
			Probability: scoreAtLeastOnce(lambda * fraction),
		})
	}
	return scorers
}

// NewMatchContext aggregates both squads and attaches any signals found for them
func NewMatchContext(cfg *Config, home, away string, players []PlayerRecord, signals map[string]ContextSignals, homeDesignated bool) MatchContext {
	var homePlayers, awayPlayers []PlayerRecord
	for _, p := range players {
		switch p.Team {
		case home:
			homePlayers = append(homePlayers, p)
		case away:
			awayPlayers = append(awayPlayers, p)
		}
	}
	ctx := MatchContext{
		Home:           TeamSide{Aggregate: Aggregate(cfg, home, homePlayers)},
		Away:           TeamSide{Aggregate: Aggregate(cfg, away, awayPlayers)},
		HomeDesignated: homeDesignated,
	}
	if s, ok := signals[home]; ok {
		ctx.Home.Signals = &s
	}
	if s, ok := signals[away]; ok {
		ctx.Away.Signals = &s
	}
	return ctx
}
