package podds

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// ValueBet is a priced outcome where the model rates the chance higher than the bookmaker
type ValueBet struct {
	Market             string          `json:"market"`
	Outcome            string          `json:"outcome"`
	Odds               float64         `json:"odds"`
	Probability        float64         `json:"probability"`
	ImpliedProbability float64         `json:"impliedProbability"`
	Edge               float64         `json:"edge"`
	ExpectedValue      float64         `json:"expectedValue"`
	Kelly              float64         `json:"kelly"`
	Stake              decimal.Decimal `json:"stake"`
}

// ExpectedValue per unit staked
func ExpectedValue(p, odds float64) float64 {
	return (odds-1)*p - (1 - p)
}

// Kelly is the fractional Kelly stake, zero for odds that cannot pay out
func Kelly(p, odds, fraction float64) float64 {
	if odds <= 1 || math.IsNaN(odds) {
		return 0
	}
	return math.Max(0, (p*odds-1)/(odds-1)) * fraction
}

// ScanValueBets compares model probabilities with quoted odds
// Invalid prices are skipped and reported, they never stop the scan
func ScanValueBets(cfg *Config, markets MarketProbability, odds OddsQuote) ([]ValueBet, []error) {
	var bets []ValueBet
	var rejected []error
	bankroll := decimal.NewFromFloat(cfg.Bankroll)

	for _, market := range markets.Markets() {
		quoted, ok := odds[market]
		if !ok {
			continue
		}
		for _, outcome := range markets.Outcomes(market) {
			price, ok := quoted[outcome]
			if !ok {
				continue
			}
			if math.IsNaN(price) || math.IsInf(price, 0) || price <= 1 {
				rejected = append(rejected, fmt.Errorf("%s / %s quoted at %v: %w", market, outcome, price, ErrInvalidOdds))
				continue
			}
			p := clamp(finiteOr(markets[market][outcome], 0), 0, 1)
			implied := 1 / price
			edge := p - implied
			if edge <= cfg.EdgeThreshold {
				continue
			}
			bet := ValueBet{
				Market:             market,
				Outcome:            outcome,
				Odds:               price,
				Probability:        p,
				ImpliedProbability: implied,
				Edge:               edge,
				ExpectedValue:      ExpectedValue(p, price),
				Kelly:              Kelly(p, price, cfg.KellyFraction),
				Stake:              decimal.Zero,
			}
			if cfg.Bankroll > 0 {
				bet.Stake = bankroll.Mul(decimal.NewFromFloat(bet.Kelly)).Round(2)
			}
			bets = append(bets, bet)
		}
	}

	sort.SliceStable(bets, func(i, j int) bool {
		a, b := bets[i], bets[j]
		if a.ExpectedValue != b.ExpectedValue {
			return a.ExpectedValue > b.ExpectedValue
		}
		if a.Edge != b.Edge {
			return a.Edge > b.Edge
		}
		if a.Market != b.Market {
			return a.Market < b.Market
		}
		return a.Outcome < b.Outcome
	})
	return bets, rejected
}
