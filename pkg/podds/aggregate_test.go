package podds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squad is a small but complete team used across the package tests
func squad(team string) []PlayerRecord {
	return []PlayerRecord{
		{Player: team + " Striker", Team: team, Role: "FW", Goals: 12, Assists: 3, XG: 10, XA: 2, Minutes: 2400,
			NPXG: Float(8.5), ProgressivePasses: Float(20), ProgressiveCarries: Float(40)},
		{Player: team + " Winger", Team: team, Role: "FW,MF", Goals: 6, Assists: 7, XG: 5, XA: 6, Minutes: 2100,
			NPXG: Float(5), ProgressivePasses: Float(45), ProgressiveCarries: Float(70)},
		{Player: team + " Playmaker", Team: team, Role: "MF", Goals: 3, Assists: 8, XG: 2.5, XA: 7, Minutes: 2600,
			NPXG: Float(2.5), ProgressivePasses: Float(150), ProgressiveCarries: Float(50), Tackles: Float(40), Interceptions: Float(25)},
		{Player: team + " Centre Back", Team: team, Role: "DF", Goals: 1, Assists: 0, XG: 1.5, XA: 0.3, Minutes: 2900,
			NPXG: Float(1.5), Tackles: Float(50), Interceptions: Float(40), Clearances: Float(120), Blocks: Float(30), YellowCards: Float(6)},
		{Player: team + " Keeper", Team: team, Role: "GK", Minutes: 3060, Clearances: Float(25)},
	}
}

func TestAggregateEmptySquad(t *testing.T) {
	cfg := DefaultConfig()
	agg := Aggregate(cfg, "Nobody FC", nil)

	assert.Equal(t, "Nobody FC", agg.Team)
	assert.True(t, agg.Degenerate)
	assert.Zero(t, agg.AttackIndex)
	assert.Equal(t, 0.5, agg.DefenseRatio)
	assert.InDelta(t, 0.15, agg.DefenseRate, 1e-12)
	assert.Equal(t, StyleBalanced, agg.Style)
	assert.Equal(t, 0.5, agg.Efficiency)
	assert.Equal(t, 0.5, agg.CreativeThreat)
	assert.Equal(t, "Unknown", agg.Roles.PrimaryStrength)
}

func TestAggregateTotalsAndIndex(t *testing.T) {
	cfg := DefaultConfig()
	agg := Aggregate(cfg, "Reds", squad("Reds"))

	require.Equal(t, 5, agg.PlayerCount)
	assert.False(t, agg.Degenerate)
	assert.InDelta(t, 22, agg.Goals, 1e-9)
	assert.InDelta(t, 18, agg.Assists, 1e-9)
	assert.InDelta(t, 19, agg.XG, 1e-9)
	assert.InDelta(t, 15.3, agg.XA, 1e-9)

	want := 3*22 + 2.5*18 + 2*19 + 1.5*15.3
	assert.InDelta(t, want, agg.AttackIndex, 1e-9)
	assert.InDelta(t, 22.0/19.0, agg.Efficiency, 1e-9)
	assert.InDelta(t, 1.5/19, agg.PenaltyReliance, 1e-9)
	assert.Greater(t, agg.DefenseIndex, 0.0)
	assert.InDelta(t, -3, agg.Discipline, 1e-9)
}

func TestAggregateStyle(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  Style
	}{
		{"attacking with compound roles", []string{"FW", "FW,MF", "DF", "MF"}, StyleAttacking},
		{"defensive", []string{"DF", "CB", "GK", "FW"}, StyleDefensive},
		{"possession", []string{"MF", "CM", "MF,DF", "FW", "DF"}, StylePossession},
		{"balanced", []string{"FW", "MF", "DF", "XX", "XX"}, StyleBalanced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var players []PlayerRecord
			for i, role := range tt.roles {
				players = append(players, PlayerRecord{
					Player: string(rune('A' + i)), Team: "T", Role: role, Goals: 1, XG: 1, Minutes: 900,
				})
			}
			agg := Aggregate(DefaultConfig(), "T", players)
			assert.Equal(t, tt.want, agg.Style)
		})
	}
}

func TestAggregateEfficiency(t *testing.T) {
	tests := []struct {
		name  string
		goals float64
		xg    float64
		want  float64
	}{
		{"capped", 10, 2, 2.0},
		{"no xG is neutral", 4, 0, 0.5},
		{"underperforming", 3, 6, 0.5},
		{"on par", 5, 5, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := Aggregate(DefaultConfig(), "T", []PlayerRecord{
				{Player: "P", Team: "T", Role: "FW", Goals: tt.goals, XG: tt.xg, Minutes: 1000},
			})
			assert.InDelta(t, tt.want, agg.Efficiency, 1e-12)
		})
	}
}

func TestAggregateDropsInvalidRows(t *testing.T) {
	players := append(squad("Blues"), PlayerRecord{Player: "Ghost", Team: "Blues", Role: "FW", Goals: -1})
	agg := Aggregate(DefaultConfig(), "Blues", players)

	assert.Equal(t, 5, agg.PlayerCount)
	assert.Equal(t, []string{"Ghost"}, agg.Rejected)
	assert.Len(t, agg.Players(), 5)
}

func TestAggregateReportsDefaultedColumns(t *testing.T) {
	agg := Aggregate(DefaultConfig(), "T", []PlayerRecord{
		{Player: "P", Team: "T", Role: "FW", Goals: 2, XG: 3, Minutes: 1000},
	})
	assert.Contains(t, agg.Defaulted, "npxG")
	assert.Contains(t, agg.Defaulted, "Tackles")
	// npxG defaults to xG so there is no penalty share
	assert.Zero(t, agg.PenaltyReliance)
}

func TestAggregateZeroAttackIsDegenerate(t *testing.T) {
	agg := Aggregate(DefaultConfig(), "T", []PlayerRecord{
		{Player: "Keeper", Team: "T", Role: "GK", Minutes: 900},
	})
	assert.True(t, agg.Degenerate)
	assert.Equal(t, 1, agg.PlayerCount)
}
