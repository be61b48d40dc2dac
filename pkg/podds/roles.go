package podds

import (
	"math"
	"sort"
	"strings"
)

// RoleCategory is the broad positional group a player belongs to
type RoleCategory string

const (
	Attackers   RoleCategory = "Attackers"
	Midfielders RoleCategory = "Midfielders"
	Defenders   RoleCategory = "Defenders"
	Goalkeepers RoleCategory = "Goalkeepers"
	UnknownRole RoleCategory = "Unknown"
)

// RoleComposition summarises the squad by positional group
type RoleComposition struct {
	Distribution       map[RoleCategory]float64 `json:"distribution"`
	AttackerStrength   float64                  `json:"attackerStrength"`
	MidfielderStrength float64                  `json:"midfielderStrength"`
	DefenderStrength   float64                  `json:"defenderStrength"`
	PrimaryStrength    string                   `json:"primaryStrength"`
	Weakness           string                   `json:"weakness"`
	PlayingStyle       Style                    `json:"playingStyle"`
}

// AttackerShare is the attackers' part of the combined role strength
func (r RoleComposition) AttackerShare() float64 {
	return r.AttackerStrength / r.totalStrength()
}

// DefenderShare is the defenders' part of the combined role strength
func (r RoleComposition) DefenderShare() float64 {
	return r.DefenderStrength / r.totalStrength()
}

func (r RoleComposition) totalStrength() float64 {
	return math.Max(r.AttackerStrength+r.MidfielderStrength+r.DefenderStrength, 1)
}

const compositionStyleThreshold = 0.35

// roleCategories is checked in order, CAM resolves to Attackers
var roleCategories = []struct {
	category  RoleCategory
	positions []string
	keywords  []string
}{
	{Attackers, []string{"FW", "ST", "LW", "RW", "CF", "WF", "SS", "AM", "RAM", "LAM", "CAM"}, []string{"FORWARD", "ATTACK", "STRIKER", "WINGER"}},
	{Midfielders, []string{"MF", "CM", "CDM", "LM", "RM", "WM", "LCM", "RCM", "DM", "CMF", "OMF", "DMF"}, []string{"MIDFIELD", "CENTRE", "CENTRAL"}},
	{Defenders, []string{"DF", "CB", "LB", "RB", "LWB", "RWB", "FB", "LCB", "RCB", "SW"}, []string{"DEFENSE", "BACK", "DEFENDER"}},
	{Goalkeepers, []string{"GK", "G"}, []string{"GOALKEEPER", "KEEPER"}},
}

// ClassifyRole maps a raw position string to a RoleCategory
func ClassifyRole(role string) RoleCategory {
	token := primaryRole(role)
	if token == "" {
		return UnknownRole
	}
	for _, c := range roleCategories {
		for _, p := range c.positions {
			if token == p {
				return c.category
			}
		}
	}
	upper := strings.ToUpper(role)
	for _, c := range roleCategories {
		for _, k := range c.keywords {
			if strings.Contains(upper, k) {
				return c.category
			}
		}
	}
	return UnknownRole
}

// RoleScore rates a player for the job their position asks of them
func RoleScore(p ResolvedPlayer, category RoleCategory) float64 {
	var score float64
	switch category {
	case Attackers:
		score = p.Goals*5 + p.XG*4 + p.Assists*4 + p.XA*3
	case Midfielders:
		score = p.Assists*4 + p.XA*3 + p.ProgressivePasses*0.3 + p.ProgressiveCarries*0.3 +
			p.Tackles*2 + p.Interceptions*2 + p.Goals*3
	case Defenders:
		score = p.Tackles*4 + p.Interceptions*4 + p.Clearances*3 + p.Blocks*3 +
			p.ProgressivePasses*0.5 - p.YellowCards - p.RedCards*5
	case Goalkeepers:
		score = p.Clearances * 2
	}
	// 900 minutes is ten full games
	if p.Minutes > 0 {
		score *= math.Min(p.Minutes/900, 1.5)
	}
	return math.Max(finiteOr(score, 0), 0)
}

// ComposeRoles builds the role composition of a squad
func ComposeRoles(players []ResolvedPlayer) RoleComposition {
	comp := RoleComposition{
		Distribution:    map[RoleCategory]float64{},
		PrimaryStrength: "Unknown",
		Weakness:        "Unknown",
		PlayingStyle:    StyleBalanced,
	}
	if len(players) == 0 {
		return comp
	}

	counts := map[RoleCategory]float64{}
	for _, p := range players {
		category := ClassifyRole(p.Role)
		counts[category]++
		score := RoleScore(p, category)
		switch category {
		case Attackers:
			comp.AttackerStrength += score
		case Midfielders:
			comp.MidfielderStrength += score
		case Defenders:
			comp.DefenderStrength += score
		}
	}
	n := float64(len(players))
	for category, count := range counts {
		comp.Distribution[category] = count / n
	}

	strengths := []struct {
		name  string
		value float64
	}{
		{"Attacking", comp.AttackerStrength},
		{"Midfield Control", comp.MidfielderStrength},
		{"Defensive Solidarity", comp.DefenderStrength},
	}
	if comp.AttackerStrength+comp.MidfielderStrength+comp.DefenderStrength > 0 {
		best, worst := strengths[0], strengths[0]
		for _, s := range strengths[1:] {
			if s.value > best.value {
				best = s
			}
			if s.value < worst.value {
				worst = s
			}
		}
		comp.PrimaryStrength = best.name
		comp.Weakness = worst.name
	}

	switch {
	case comp.Distribution[Attackers] > compositionStyleThreshold:
		comp.PlayingStyle = StyleAttacking
	case comp.Distribution[Defenders] > compositionStyleThreshold:
		comp.PlayingStyle = StyleDefensive
	case comp.Distribution[Midfielders] > compositionStyleThreshold:
		comp.PlayingStyle = StylePossession
	}
	return comp
}

// PlayerShare is one player's slice of a team's expected goals
type PlayerShare struct {
	Player        string  `json:"player"`
	ExpectedGoals float64 `json:"expectedGoals"`
}

// PlayerGoalShares weights each player by xG + 0.5 goals and rescales the weights
// so they add up to the team's season xG (or goals when there is no xG)
func PlayerGoalShares(players []ResolvedPlayer) []PlayerShare {
	var teamXG, teamGoals, total float64
	shares := make([]PlayerShare, 0, len(players))
	for _, p := range players {
		teamXG += p.XG
		teamGoals += p.Goals
		w := p.XG + 0.5*p.Goals
		total += w
		shares = append(shares, PlayerShare{Player: p.Player, ExpectedGoals: w})
	}
	target := teamXG
	if target == 0 {
		target = teamGoals
	}
	if target == 0 {
		target = 1
	}
	if total == 0 {
		total = 1
	}
	scale := target / total
	for i := range shares {
		shares[i].ExpectedGoals *= scale
	}
	sort.SliceStable(shares, func(i, j int) bool {
		if shares[i].ExpectedGoals != shares[j].ExpectedGoals {
			return shares[i].ExpectedGoals > shares[j].ExpectedGoals
		}
		return shares[i].Player < shares[j].Player
	})
	return shares
}
