package podds

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// OddsQuote maps market name -> outcome label -> decimal odds
type OddsQuote map[string]map[string]float64

// Clone returns an independent copy
func (q OddsQuote) Clone() OddsQuote {
	out := make(OddsQuote, len(q))
	for market, outcomes := range q {
		out[market] = make(map[string]float64, len(outcomes))
		for label, odds := range outcomes {
			out[market][label] = odds
		}
	}
	return out
}

// Merge overlays other on top of q, returning a new quote
func (q OddsQuote) Merge(other OddsQuote) OddsQuote {
	out := q.Clone()
	for market, outcomes := range other {
		if out[market] == nil {
			out[market] = map[string]float64{}
		}
		for label, odds := range outcomes {
			out[market][label] = odds
		}
	}
	return out
}

// UnmarshalJSON accepts fractional and "evens" prices as well as numbers
func (q *OddsQuote) UnmarshalJSON(data []byte) error {
	parsed, err := ParseOddsQuote(data)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// ParseOdds reads a price as decimal ("2.10"), fractional ("5/2") or "evens"
func ParseOdds(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "evs" || s == "evens" {
		return decimal.NewFromInt(2), nil
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := decimal.NewFromString(strings.TrimSpace(num))
		if err != nil {
			return decimal.Zero, fmt.Errorf("bad fractional odds %q: %w", s, ErrInvalidOdds)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(den))
		if err != nil || !d.IsPositive() {
			return decimal.Zero, fmt.Errorf("bad fractional odds %q: %w", s, ErrInvalidOdds)
		}
		return n.Div(d).Add(decimal.NewFromInt(1)), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad decimal odds %q: %w", s, ErrInvalidOdds)
	}
	return d, nil
}

// ParseOddsQuote decodes a YAML (or JSON) odds sheet
// Prices may be numbers or strings in any form ParseOdds accepts
func ParseOddsQuote(data []byte) (OddsQuote, error) {
	var raw map[string]map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse odds sheet: %w", err)
	}
	quote := make(OddsQuote, len(raw))
	for market, outcomes := range raw {
		quote[market] = make(map[string]float64, len(outcomes))
		for label, v := range outcomes {
			var price decimal.Decimal
			switch t := v.(type) {
			case int:
				price = decimal.NewFromInt(int64(t))
			case float64:
				price = decimal.NewFromFloat(t)
			case string:
				p, err := ParseOdds(t)
				if err != nil {
					return nil, fmt.Errorf("%s / %s: %w", market, label, err)
				}
				price = p
			default:
				return nil, fmt.Errorf("%s / %s has unsupported price %v: %w", market, label, v, ErrInvalidOdds)
			}
			quote[market][label] = price.InexactFloat64()
		}
	}
	return quote, nil
}

// LoadOddsQuote reads an odds sheet from disk
func LoadOddsQuote(path string) (OddsQuote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read odds sheet %s: %w", path, err)
	}
	return ParseOddsQuote(data)
}

// DefaultOddsQuote is a sample bookmaker sheet covering every market the model prices
func DefaultOddsQuote() OddsQuote {
	return OddsQuote{
		Market1X2:            {"Home": 3.67, "Draw": 3.76, "Away": 1.96},
		OverUnderMarket(2.5): {"Over": 1.70, "Under": 2.15},
		OverUnderMarket(1.5): {"Over": 1.22, "Under": 4.20},
		OverUnderMarket(3.5): {"Over": 2.70, "Under": 1.45},
		MarketDoubleChance:   {"Home or Draw": 1.78, "Home or Away": 1.27, "Draw or Away": 1.28},
		MarketBTTS:           {"Yes": 1.65, "No": 2.25},
		MarketDrawNoBet:      {"Home": 2.70, "Away": 1.47},
		MarketAsianHandicap:  {"Home +1.5": 1.31, "Away -1.5": 3.30},
		MarketFirstGoal:      {"Home": 2.25, "Away": 1.63, "None": 13.50},
		MarketCorrectScore:   {"0-0": 13.50, "1-0": 12.50, "0-1": 8.90, "1-1": 6.90, "2-0": 21.00, "0-2": 10.50, "2-1": 12.50, "1-2": 8.60, "2-2": 13.00},
		MarketTotalCorners:   {"Over 8.5": 1.95, "Under 8.5": 1.85, "Over 9.5": 2.20, "Under 9.5": 1.65},
		MarketTeamCorners:    {"Home Over 4.5": 2.10, "Home Under 4.5": 1.70, "Away Over 3.5": 2.30, "Away Under 3.5": 1.60},
		"First Half Corners": {"Over 4.5": 2.05, "Under 4.5": 1.75},
	}
}
