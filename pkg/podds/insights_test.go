package podds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchType(t *testing.T) {
	tests := []struct {
		goals float64
		want  string
	}{
		{1.4, "Low-Scoring"},
		{2.0, "Average-Scoring"},
		{2.8, "Average-Scoring"},
		{3.1, "High-Scoring"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchType(tt.goals))
	}
}

func TestGoalExpectation(t *testing.T) {
	tests := []struct {
		name string
		home float64
		away float64
		want string
	}{
		{"as expected", 1, 1, "Both teams converting chances as expected"},
		{"clinical hosts", 1.25, 1, "Home team OVERPERFORMING xG by 20%+ (clinical finishers)"},
		{"wasteful visitors", 1, 0.85, "Away team UNDERPERFORMING xG (wasteful in front of goal)"},
		{"very wasteful visitors", 1, 0.6, "Away team significantly underperforming xG (poor finishing)"},
		{"both", 1.15, 0.6, "Home team slightly overperforming xG (efficient finishing) | Away team significantly underperforming xG (poor finishing)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GoalExpectation(tt.home, tt.away))
		})
	}
}

func TestEfficiencyAdvantage(t *testing.T) {
	tests := []struct {
		name string
		home float64
		away float64
		want string
	}{
		{"strong home", 1.5, 1.0, "STRONG advantage to Reds - much more clinical finishing"},
		{"moderate away", 1.0, 1.2, "Moderate advantage to Blues - better finishing quality"},
		{"slight home", 1.2, 1.1, "Slight advantage to Reds - marginally better finishing"},
		{"both poor", 0.8, 0.7, "Both teams inefficient - may waste scoring opportunities"},
		{"even", 1.0, 1.0, "Similar finishing efficiency - no clear advantage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EfficiencyAdvantage(tt.home, tt.away, "Reds", "Blues"))
		})
	}
}

func TestBuildInsights(t *testing.T) {
	cfg := DefaultConfig()
	ctx := squadContext(cfg)
	ctx.Home.Signals = &ContextSignals{Team: "Reds", ChampionsLeagueZone: true, Pressure: PressureHighEuropean,
		Form: &FormRating{Rating: 0.9, Momentum: 1.3, StrengthOfSchedule: 0.8, Confidence: 1}}
	ctx.Away.Signals = &ContextSignals{Team: "Blues", RelegationZone: true, Pressure: PressureCriticalRelegation,
		Form: &FormRating{Rating: 0.2, Confidence: 1}}

	d, err := NewScorelineDistribution(2.2, 0.7, cfg.MaxGoals)
	require.NoError(t, err)
	markets := DeriveMarkets(cfg, d, ctx)
	insights := BuildInsights(ctx, d.Outcomes(), markets, d.TopScorelines(3))

	byCategory := map[string][]string{}
	for _, i := range insights {
		byCategory[i.Category] = append(byCategory[i.Category], i.Text)
	}
	require.NotEmpty(t, byCategory[InsightPrediction])
	assert.Contains(t, byCategory[InsightPrediction][0], "Predicted: Home Win")
	assert.Contains(t, byCategory[InsightForm], "Reds in EXCELLENT form vs Blues in POOR form")
	assert.Contains(t, byCategory[InsightForm], "Reds's strong form came against TOUGH opponents")
	assert.Contains(t, byCategory[InsightForm], "Reds has STRONG positive momentum")
	assert.Contains(t, byCategory[InsightEuropean], "Reds in CHAMPIONS LEAGUE spots - high motivation")
	assert.Contains(t, byCategory[InsightRelegation], "Blues in RELEGATION ZONE - fighting for survival")
	assert.NotEmpty(t, byCategory[InsightCorners])
	assert.Len(t, byCategory[InsightLikelyScore], 1)
}
