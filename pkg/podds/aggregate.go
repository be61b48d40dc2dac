package podds

import (
	"math"
	"sort"
	"strings"

	"github.com/richard-senior/matchodds/internal/logger"
)

// Style is a team's playing style derived from the roles in its squad
type Style string

const (
	StyleAttacking  Style = "Attacking"
	StyleDefensive  Style = "Defensive"
	StylePossession Style = "Possession-based"
	StyleBalanced   Style = "Balanced"
)

// TeamAggregate is the per-evaluation summary of one squad
type TeamAggregate struct {
	Team        string `json:"team"`
	PlayerCount int    `json:"playerCount"`

	// Season totals
	Goals              float64 `json:"goals"`
	Assists            float64 `json:"assists"`
	XG                 float64 `json:"xg"`
	XA                 float64 `json:"xa"`
	NPXG               float64 `json:"npxg"`
	Minutes            float64 `json:"minutes"`
	ProgressivePasses  float64 `json:"progressivePasses"`
	ProgressiveCarries float64 `json:"progressiveCarries"`

	AttackIndex   float64 `json:"attackIndex"`
	AttackRatio   float64 `json:"attackRatio"`
	DefenseRatio  float64 `json:"defenseRatio"`
	MidfieldRatio float64 `json:"midfieldRatio"`
	DefenseRate   float64 `json:"defenseRate"`
	Style         Style   `json:"style"`

	Efficiency      float64 `json:"efficiency"`
	CreativeThreat  float64 `json:"creativeThreat"`
	PenaltyReliance float64 `json:"penaltyReliance"`
	DefenseIndex    float64 `json:"defenseIndex"`
	Discipline      float64 `json:"discipline"`

	Roles RoleComposition `json:"roles"`

	// Degenerate is set when the squad produced no attacking signal at all
	Degenerate bool     `json:"degenerate"`
	Defaulted  []string `json:"defaulted,omitempty"`
	Rejected   []string `json:"rejected,omitempty"`

	players []ResolvedPlayer
}

// Players returns the resolved player rows behind the aggregate
func (t TeamAggregate) Players() []ResolvedPlayer {
	return append([]ResolvedPlayer(nil), t.players...)
}

/////////////////////////////////////////////////////////////////////////
////// Role buckets
/////////////////////////////////////////////////////////////////////////

type styleBucket int

const (
	bucketNone styleBucket = iota
	bucketAttack
	bucketDefense
	bucketMidfield
)

var styleBuckets = map[string]styleBucket{
	"FW": bucketAttack, "LW": bucketAttack, "RW": bucketAttack, "AM": bucketAttack,
	"WM": bucketAttack, "LM": bucketAttack, "RM": bucketAttack,
	"DF": bucketDefense, "FB": bucketDefense, "LB": bucketDefense, "RB": bucketDefense,
	"CB": bucketDefense, "DM": bucketDefense, "GK": bucketDefense,
	"MF": bucketMidfield, "CM": bucketMidfield,
}

// primaryRole returns the first position token, so "FW,MF" is treated as a forward
func primaryRole(role string) string {
	fields := strings.FieldsFunc(strings.ToUpper(role), func(r rune) bool {
		return r == ',' || r == '/' || r == ' ' || r == '-'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

/////////////////////////////////////////////////////////////////////////
////// Aggregation
/////////////////////////////////////////////////////////////////////////

// Aggregate reduces a squad's player rows to a TeamAggregate
// An empty squad is not an error: it yields the neutral aggregate flagged as degenerate
func Aggregate(cfg *Config, team string, players []PlayerRecord) TeamAggregate {
	agg := TeamAggregate{Team: team}

	defaulted := map[string]bool{}
	for _, p := range players {
		if err := p.Validate(); err != nil {
			logger.Warn("Dropping player row", err)
			agg.Rejected = append(agg.Rejected, p.Player)
			continue
		}
		r := p.Resolve()
		for _, name := range r.Defaulted {
			defaulted[name] = true
		}
		agg.players = append(agg.players, r)
	}
	for name := range defaulted {
		agg.Defaulted = append(agg.Defaulted, name)
	}
	sort.Strings(agg.Defaulted)

	agg.PlayerCount = len(agg.players)
	if agg.PlayerCount == 0 {
		return neutralAggregate(cfg, agg)
	}

	var attackCount, defenseCount, midfieldCount float64
	for _, p := range agg.players {
		agg.Goals += p.Goals
		agg.Assists += p.Assists
		agg.XG += p.XG
		agg.XA += p.XA
		agg.NPXG += p.NPXG
		agg.Minutes += p.Minutes
		agg.ProgressivePasses += p.ProgressivePasses
		agg.ProgressiveCarries += p.ProgressiveCarries
		agg.DefenseIndex += p.Tackles*2 + p.Interceptions*2 + p.Clearances*1.5 + p.Blocks*1.5
		agg.Discipline -= p.YellowCards*0.5 + p.RedCards*2

		switch styleBuckets[primaryRole(p.Role)] {
		case bucketAttack:
			attackCount++
		case bucketDefense:
			defenseCount++
		case bucketMidfield:
			midfieldCount++
		}
	}

	n := float64(agg.PlayerCount)
	w := cfg.AttackWeights
	agg.AttackIndex = w.Goals*agg.Goals + w.Assists*agg.Assists + w.XG*agg.XG + w.XA*agg.XA

	agg.AttackRatio = attackCount / n
	agg.DefenseRatio = defenseCount / n
	agg.MidfieldRatio = midfieldCount / n
	agg.Style = classifyStyle(cfg.StyleThreshold, agg.AttackRatio, agg.DefenseRatio, agg.MidfieldRatio)
	agg.DefenseRate = agg.DefenseRatio * cfg.DefenseRateScale

	if agg.XG > 0 {
		agg.Efficiency = safeDiv(agg.Goals, agg.XG, cfg.NeutralEfficiency)
	} else {
		agg.Efficiency = cfg.NeutralEfficiency
	}
	agg.Efficiency = math.Min(agg.Efficiency, cfg.MaxEfficiency)

	agg.PenaltyReliance = clamp((agg.XG-agg.NPXG)/math.Max(agg.XG, 1), 0, 1)
	progressive := agg.ProgressivePasses + agg.ProgressiveCarries
	agg.CreativeThreat = safeDiv(agg.XA+cfg.ProgressiveThreatWeight*progressive, n*cfg.CreativeThreatScale, 0)

	agg.Roles = ComposeRoles(agg.players)
	agg.Degenerate = agg.AttackIndex == 0

	logger.Debug("Aggregated team", agg.Team, agg.AttackIndex, string(agg.Style))
	return agg
}

// neutralAggregate is the documented default for a squad with no usable rows
func neutralAggregate(cfg *Config, agg TeamAggregate) TeamAggregate {
	agg.DefenseRatio = cfg.EmptyDefenseRatio
	agg.DefenseRate = cfg.EmptyDefenseRatio * cfg.DefenseRateScale
	agg.Style = StyleBalanced
	agg.Efficiency = cfg.NeutralEfficiency
	agg.CreativeThreat = 0.5
	agg.Roles = ComposeRoles(nil)
	agg.Degenerate = true
	return agg
}

// classifyStyle checks attack, then defense, then midfield against the threshold
func classifyStyle(threshold, attack, defense, midfield float64) Style {
	switch {
	case attack > threshold:
		return StyleAttacking
	case defense > threshold:
		return StyleDefensive
	case midfield > threshold:
		return StylePossession
	default:
		return StyleBalanced
	}
}
