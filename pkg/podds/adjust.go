package podds

import (
	"fmt"
	"math"
	"strings"

	"github.com/richard-senior/matchodds/internal/logger"
)

// Side identifies one of the two teams in a match
type Side string

const (
	HomeSide Side = "home"
	AwaySide Side = "away"
)

// TeamSide is everything known about one team for an evaluation
type TeamSide struct {
	Aggregate TeamAggregate   `json:"aggregate"`
	Signals   *ContextSignals `json:"signals,omitempty"`
	Corners   *CornerProfile  `json:"corners,omitempty"`
}

// MatchContext is the immutable input to one evaluation
// Home is team A; HomeDesignated says whether team A is actually playing at home
type MatchContext struct {
	Home           TeamSide `json:"home"`
	Away           TeamSide `json:"away"`
	HomeDesignated bool     `json:"homeDesignated"`
	Venue          string   `json:"venue,omitempty"`
}

// Validate rejects a context the adjuster cannot work with
func (m MatchContext) Validate() error {
	for i, t := range []TeamSide{m.Home, m.Away} {
		side := HomeSide
		if i == 1 {
			side = AwaySide
		}
		if strings.TrimSpace(t.Aggregate.Team) == "" {
			return fmt.Errorf("%s team has no name: %w", side, ErrInvalidInput)
		}
		a := t.Aggregate
		if math.IsNaN(a.AttackIndex) || math.IsInf(a.AttackIndex, 0) || a.AttackIndex < 0 {
			return fmt.Errorf("%s team %s has invalid attack index %v: %w", side, a.Team, a.AttackIndex, ErrInvalidInput)
		}
		if math.IsNaN(a.DefenseRate) || a.DefenseRate < 0 {
			return fmt.Errorf("%s team %s has invalid defense rate %v: %w", side, a.Team, a.DefenseRate, ErrInvalidInput)
		}
	}
	return nil
}

// Adjustment is one entry of the adjustment trace
type Adjustment struct {
	Step   string  `json:"step"`
	Side   Side    `json:"side"`
	Target string  `json:"target"` // attack or defense
	Factor float64 `json:"factor"`
	Value  float64 `json:"value"` // running value after the factor
}

// AdjustedRates are the inputs to the Poisson model
type AdjustedRates struct {
	AttackHome  float64      `json:"attackHome"`
	AttackAway  float64      `json:"attackAway"`
	DefenseHome float64      `json:"defenseHome"`
	DefenseAway float64      `json:"defenseAway"`
	Trace       []Adjustment `json:"trace"`
}

// sideRates is the running state of one side while the steps are applied
type sideRates struct {
	side    Side
	attack  float64
	defense float64
	trace   *[]Adjustment
}

func (s *sideRates) scaleAttack(step string, factor float64) {
	factor = math.Max(0, finiteOr(factor, 1))
	s.attack = math.Max(0, s.attack*factor)
	*s.trace = append(*s.trace, Adjustment{Step: step, Side: s.side, Target: "attack", Factor: factor, Value: s.attack})
}

func (s *sideRates) scaleDefense(step string, factor float64) {
	factor = math.Max(0, finiteOr(factor, 1))
	s.defense = math.Max(0, s.defense*factor)
	*s.trace = append(*s.trace, Adjustment{Step: step, Side: s.side, Target: "defense", Factor: factor, Value: s.defense})
}

// Adjust applies the ordered context corrections to both sides
func Adjust(cfg *Config, ctx MatchContext) (AdjustedRates, error) {
	if err := ctx.Validate(); err != nil {
		return AdjustedRates{}, err
	}

	var trace []Adjustment
	home := &sideRates{side: HomeSide, attack: ctx.Home.Aggregate.AttackIndex, defense: ctx.Home.Aggregate.DefenseRate, trace: &trace}
	away := &sideRates{side: AwaySide, attack: ctx.Away.Aggregate.AttackIndex, defense: ctx.Away.Aggregate.DefenseRate, trace: &trace}

	sides := []struct {
		rates *sideRates
		own   TeamSide
		other TeamSide
	}{
		{home, ctx.Home, ctx.Away},
		{away, ctx.Away, ctx.Home},
	}

	// 1. style
	for _, s := range sides {
		s.rates.scaleAttack("style", 1+s.own.Aggregate.AttackRatio*cfg.StyleBonus)
	}

	// 2. finishing efficiency
	for _, s := range sides {
		s.rates.scaleAttack("efficiency", 1+(s.own.Aggregate.Efficiency-1)*cfg.EfficiencyBonus)
	}

	// 3. recent form, skipped when there were no games to rate
	for _, s := range sides {
		if s.own.Signals == nil || s.own.Signals.Form == nil || s.own.Signals.Form.Confidence == 0 {
			continue
		}
		f := s.own.Signals.Form
		s.rates.scaleAttack("form", 1+(f.Rating-0.5)*cfg.FormBonus)
		s.rates.scaleAttack("momentum", 1+(f.Momentum-1)*cfg.MomentumBonus)
		s.rates.scaleDefense("defense_form", 1+(f.DefenseForm-0.5)*cfg.DefenseFormBonus)
	}

	// role composition, off unless a league profile turns it on
	for _, s := range sides {
		roles := s.own.Aggregate.Roles
		if cfg.RoleAttackWeight != 0 {
			s.rates.scaleAttack("role_attack", 1+roles.AttackerShare()*cfg.RoleAttackWeight)
		}
		if cfg.RoleDefenseWeight != 0 {
			s.rates.scaleDefense("role_defense", 1+roles.DefenderShare()*cfg.RoleDefenseWeight)
		}
	}

	// 4. table pressure
	for _, s := range sides {
		sig := s.own.Signals
		if sig == nil {
			continue
		}
		switch {
		case sig.Pressure.IsEuropean() && sig.ChampionsLeagueZone:
			s.rates.scaleAttack("champions_league_pressure", cfg.ChampionsLeagueBoost)
		case sig.Pressure.IsEuropean() && sig.EuropaLeagueZone:
			s.rates.scaleAttack("europa_league_pressure", cfg.EuropaLeagueBoost)
		case sig.Pressure == PressureHighRelegation:
			s.rates.scaleAttack("relegation_pressure", cfg.RelegationBoost)
		case sig.Pressure == PressureCriticalRelegation:
			s.rates.scaleAttack("critical_relegation_pressure", cfg.CriticalRelegationBoost)
		}
	}

	// 5. home venue
	if ctx.HomeDesignated {
		home.scaleAttack("home_advantage", cfg.HomeAdvantage)
		if sig := ctx.Home.Signals; sig != nil {
			switch {
			case sig.Pressure.IsEuropean():
				home.scaleAttack("home_european", cfg.HomeEuropeanBoost)
			case sig.Pressure.IsRelegationFight():
				home.scaleAttack("home_relegation", cfg.HomeRelegationBoost)
			}
		}
	}

	// 6. sentiment differential, needs both sides
	if ctx.Home.Signals != nil && ctx.Away.Signals != nil {
		multiplier := 1.0
		if ctx.Home.Signals.Pressure.IsRelegationFight() || ctx.Away.Signals.Pressure.IsRelegationFight() {
			multiplier = cfg.RelegationSentimentMultiplier
		}
		for _, s := range sides {
			diff := s.own.Signals.Sentiment - s.other.Signals.Sentiment
			s.rates.scaleAttack("sentiment", 1+diff*cfg.SentimentWeight*multiplier)
		}
	}

	rates := AdjustedRates{
		AttackHome:  home.attack,
		AttackAway:  away.attack,
		DefenseHome: clamp(home.defense, 0, cfg.MaxDefenseRate),
		DefenseAway: clamp(away.defense, 0, cfg.MaxDefenseRate),
		Trace:       trace,
	}
	logger.Debug("Adjusted rates", rates.AttackHome, rates.AttackAway, rates.DefenseHome, rates.DefenseAway)
	return rates, nil
}
