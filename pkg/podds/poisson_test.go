package podds

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorelineDistributionSumsToOne(t *testing.T) {
	for _, lh := range []float64{0, 0.3, 1.1, 2.5, 4, 7} {
		for _, la := range []float64{0, 0.6, 1.4, 3.2, 6} {
			t.Run(fmt.Sprintf("%.1f-%.1f", lh, la), func(t *testing.T) {
				d, err := NewScorelineDistribution(lh, la, 10)
				require.NoError(t, err)
				assert.InDelta(t, 1, d.Sum(), 1e-9)
				o := d.Outcomes()
				assert.InDelta(t, 1, o.HomeWin+o.Draw+o.AwayWin, 1e-9)
				for i := range d.Cells {
					for _, p := range d.Cells[i] {
						assert.GreaterOrEqual(t, p, 0.0)
					}
				}
			})
		}
	}
}

func TestScorelineDistributionZeroRates(t *testing.T) {
	d, err := NewScorelineDistribution(0, 0, 6)
	require.NoError(t, err)
	assert.Equal(t, 1.0, d.Cell(0, 0))
	assert.Equal(t, 1.0, d.Outcomes().Draw)
	assert.Zero(t, d.ExpectedGoals())
	assert.Zero(t, d.BothScoreProbability())
	assert.Zero(t, d.OverProbability(0.5))
}

func TestScorelineDistributionRejectsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		lh, la   float64
		maxGoals int
	}{
		{"negative home", -0.1, 1, 10},
		{"NaN away", 1, math.NaN(), 10},
		{"infinite home", math.Inf(1), 1, 10},
		{"grid too small", 1, 1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScorelineDistribution(tt.lh, tt.la, tt.maxGoals)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestEqualTeams(t *testing.T) {
	cfg := DefaultConfig()
	lh, la := Lambdas(cfg, AdjustedRates{AttackHome: 50, AttackAway: 50})
	assert.InDelta(t, 0.8, lh, 1e-12)
	assert.InDelta(t, 0.6, la, 1e-12)

	d, err := NewScorelineDistribution(lh, la, cfg.MaxGoals)
	require.NoError(t, err)
	assert.InDelta(t, 1.4, d.ExpectedGoals(), 1e-6)

	o := d.Outcomes()
	assert.Greater(t, o.Draw, o.HomeWin)
	assert.Greater(t, o.HomeWin, o.AwayWin)
	assert.Equal(t, 0, d.MostLikelyGoals(HomeSide))
	assert.Equal(t, 0, d.MostLikelyGoals(AwaySide))
}

func TestLambdasFloorTheAttackTotal(t *testing.T) {
	lh, la := Lambdas(DefaultConfig(), AdjustedRates{})
	assert.Zero(t, lh)
	assert.Zero(t, la)
}

func TestLopsidedMatch(t *testing.T) {
	d, err := NewScorelineDistribution(4, 1, 10)
	require.NoError(t, err)
	assert.Greater(t, d.Outcomes().HomeWin, 0.85)
	assert.GreaterOrEqual(t, d.MostLikelyGoals(HomeSide), 3)
	assert.Greater(t, d.TailMass, 0.0)
	assert.Greater(t, d.OverProbability(2.5), 0.8)
}

func TestTopScorelinesTieBreak(t *testing.T) {
	// at lambda 1 the 0 and 1 goal probabilities are identical
	d, err := NewScorelineDistribution(1, 1, 8)
	require.NoError(t, err)

	top := d.TopScorelines(4)
	var labels []string
	for _, s := range top {
		labels = append(labels, s.Label())
	}
	assert.Equal(t, []string{"0-0", "0-1", "1-0", "1-1"}, labels)

	assert.Len(t, d.TopScorelines(1000), 81)
	assert.Empty(t, d.TopScorelines(-1))
}

func TestCellOutsideGrid(t *testing.T) {
	d, err := NewScorelineDistribution(1.2, 0.9, 6)
	require.NoError(t, err)
	assert.Zero(t, d.Cell(7, 0))
	assert.Zero(t, d.Cell(0, -1))
}

func TestOverProbabilityIsMonotonic(t *testing.T) {
	d, err := NewScorelineDistribution(1.7, 1.3, 10)
	require.NoError(t, err)
	prev := 1.0
	for _, line := range []float64{0.5, 1.5, 2.5, 3.5, 4.5, 5.5} {
		over := d.OverProbability(line)
		assert.LessOrEqual(t, over, prev)
		prev = over
	}
}
