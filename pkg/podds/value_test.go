package podds

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedValueAndKelly(t *testing.T) {
	assert.InDelta(t, 0.4, ExpectedValue(0.7, 2.0), 1e-12)
	assert.InDelta(t, -0.2, ExpectedValue(0.4, 2.0), 1e-12)

	tests := []struct {
		name string
		p    float64
		odds float64
		want float64
	}{
		{"value", 0.7, 2.0, 0.1},
		{"no value", 0.3, 2.0, 0},
		{"certain", 1, 3, 0.25},
		{"odds of one", 0.9, 1, 0},
		{"NaN odds", 0.9, math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := Kelly(tt.p, tt.odds, 0.25)
			assert.InDelta(t, tt.want, k, 1e-12)
			assert.GreaterOrEqual(t, k, 0.0)
			assert.LessOrEqual(t, k, 0.25)
		})
	}
}

func TestScanValueBets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bankroll = 100
	markets := MarketProbability{
		Market1X2:  {"Home": 0.70, "Draw": 0.20, "Away": 0.10},
		MarketBTTS: {"Yes": 0.60, "No": 0.40},
	}
	odds := OddsQuote{
		Market1X2:  {"Home": 2.00, "Draw": 4.00, "Away": 12.00},
		MarketBTTS: {"Yes": 1.95, "No": 2.50},
		"Unknown":  {"Yes": 5},
	}

	bets, rejected := ScanValueBets(cfg, markets, odds)
	require.Empty(t, rejected)
	require.Len(t, bets, 2)

	top := bets[0]
	assert.Equal(t, Market1X2, top.Market)
	assert.Equal(t, "Home", top.Outcome)
	assert.InDelta(t, 0.5, top.ImpliedProbability, 1e-12)
	assert.InDelta(t, 0.2, top.Edge, 1e-12)
	assert.InDelta(t, 0.4, top.ExpectedValue, 1e-12)
	assert.InDelta(t, 0.1, top.Kelly, 1e-12)
	assert.True(t, top.Stake.Equal(decimal.NewFromInt(10)), "stake %s", top.Stake)

	assert.Equal(t, MarketBTTS, bets[1].Market)
	assert.InDelta(t, 0.6-1/1.95, bets[1].Edge, 1e-12)
	assert.Greater(t, bets[0].ExpectedValue, bets[1].ExpectedValue)
}

func TestScanValueBetsRejectsBadOdds(t *testing.T) {
	markets := MarketProbability{Market1X2: {"Home": 0.9, "Draw": 0.05, "Away": 0.05}}
	odds := OddsQuote{Market1X2: {"Home": 1.0, "Draw": math.NaN(), "Away": 0.5}}

	bets, rejected := ScanValueBets(DefaultConfig(), markets, odds)
	assert.Empty(t, bets)
	require.Len(t, rejected, 3)
	for _, err := range rejected {
		assert.ErrorIs(t, err, ErrInvalidOdds)
	}
}

func TestScanValueBetsThreshold(t *testing.T) {
	markets := MarketProbability{MarketDrawNoBet: {"Home": 0.54, "Away": 0.46}}
	odds := OddsQuote{MarketDrawNoBet: {"Home": 2.0, "Away": 2.0}}

	bets, _ := ScanValueBets(DefaultConfig(), markets, odds)
	assert.Empty(t, bets)

	cfg := DefaultConfig()
	cfg.EdgeThreshold = 0.01
	bets, _ = ScanValueBets(cfg, markets, odds)
	require.Len(t, bets, 1)
	assert.True(t, bets[0].Stake.IsZero())
}

func TestScanValueBetsIsDeterministic(t *testing.T) {
	markets := MarketProbability{
		"A": {"x": 0.6, "y": 0.6},
		"B": {"x": 0.6},
	}
	odds := OddsQuote{
		"A": {"x": 2.0, "y": 2.0},
		"B": {"x": 2.0},
	}
	bets, _ := ScanValueBets(DefaultConfig(), markets, odds)
	require.Len(t, bets, 3)
	assert.Equal(t, []string{"A/x", "A/y", "B/x"}, []string{
		bets[0].Market + "/" + bets[0].Outcome,
		bets[1].Market + "/" + bets[1].Outcome,
		bets[2].Market + "/" + bets[2].Outcome,
	})
}
