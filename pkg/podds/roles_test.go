package podds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyRole(t *testing.T) {
	tests := []struct {
		role string
		want RoleCategory
	}{
		{"FW", Attackers},
		{"FW,MF", Attackers},
		{"MF,FW", Midfielders},
		{"CAM", Attackers},
		{"DM", Midfielders},
		{"df", Defenders},
		{"LWB", Defenders},
		{"GK", Goalkeepers},
		{"Left Winger", Attackers},
		{"Goalkeeper", Goalkeepers},
		{"", UnknownRole},
		{"XYZ", UnknownRole},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyRole(tt.role))
		})
	}
}

func TestRoleScore(t *testing.T) {
	striker := ResolvedPlayer{Goals: 10, XG: 8, Assists: 2, XA: 1, Minutes: 1800}
	// 1800 minutes is capped at one and a half times the full weight
	assert.InDelta(t, 93*1.5, RoleScore(striker, Attackers), 1e-9)

	striker.Minutes = 450
	assert.InDelta(t, 93*0.5, RoleScore(striker, Attackers), 1e-9)

	striker.Minutes = 0
	assert.InDelta(t, 93, RoleScore(striker, Attackers), 1e-9)

	reckless := ResolvedPlayer{YellowCards: 10, RedCards: 3, Minutes: 900}
	assert.Zero(t, RoleScore(reckless, Defenders))
}

func TestComposeRoles(t *testing.T) {
	t.Run("empty squad", func(t *testing.T) {
		comp := ComposeRoles(nil)
		assert.Equal(t, "Unknown", comp.PrimaryStrength)
		assert.Equal(t, "Unknown", comp.Weakness)
		assert.Equal(t, StyleBalanced, comp.PlayingStyle)
		assert.Zero(t, comp.AttackerShare())
	})

	t.Run("full squad", func(t *testing.T) {
		var players []ResolvedPlayer
		for _, p := range squad("Reds") {
			players = append(players, p.Resolve())
		}
		comp := ComposeRoles(players)

		require.Len(t, comp.Distribution, 4)
		assert.InDelta(t, 0.4, comp.Distribution[Attackers], 1e-12)
		assert.InDelta(t, 0.2, comp.Distribution[Goalkeepers], 1e-12)
		assert.Equal(t, StyleAttacking, comp.PlayingStyle)
		assert.Greater(t, comp.AttackerStrength, 0.0)
		assert.Greater(t, comp.DefenderStrength, 0.0)
		assert.NotEqual(t, comp.PrimaryStrength, comp.Weakness)

		total := comp.AttackerStrength + comp.MidfielderStrength + comp.DefenderStrength
		assert.InDelta(t, comp.AttackerStrength/total, comp.AttackerShare(), 1e-12)
	})
}

func TestPlayerGoalShares(t *testing.T) {
	players := []ResolvedPlayer{
		{Player: "Backup", XG: 2},
		{Player: "Star", XG: 4, Goals: 4},
		{Player: "Keeper"},
	}
	shares := PlayerGoalShares(players)

	require.Len(t, shares, 3)
	assert.Equal(t, "Star", shares[0].Player)
	assert.InDelta(t, 4.5, shares[0].ExpectedGoals, 1e-12)
	assert.Equal(t, "Backup", shares[1].Player)
	assert.InDelta(t, 1.5, shares[1].ExpectedGoals, 1e-12)
	assert.Zero(t, shares[2].ExpectedGoals)
}

func TestPlayerGoalSharesWithoutOutput(t *testing.T) {
	shares := PlayerGoalShares([]ResolvedPlayer{{Player: "B"}, {Player: "A"}})
	require.Len(t, shares, 2)
	// ties are ordered by name
	assert.Equal(t, "A", shares[0].Player)
	assert.Zero(t, shares[0].ExpectedGoals)
}
