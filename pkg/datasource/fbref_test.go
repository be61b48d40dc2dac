package datasource

import (
	"testing"

	"github.com/richard-senior/matchodds/pkg/podds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squadPage = `<html><body>
<div id="all_stats_standard">
<table id="stats_standard_9">
<thead><tr><th data-stat="player">Player</th><th data-stat="position">Pos</th></tr></thead>
<tbody>
<tr><th data-stat="player"><a href="/p/1">Erling Haaland</a></th><td data-stat="position">FW</td>
<td data-stat="minutes">2,652</td><td data-stat="goals">27</td><td data-stat="assists">5</td>
<td data-stat="xg">29.2</td><td data-stat="xg_assist">3.4</td><td data-stat="npxg">24.5</td>
<td data-stat="cards_yellow">1</td></tr>
<tr class="thead"><th data-stat="player">Player</th><td data-stat="position">Pos</td></tr>
<tr><th data-stat="player">Rodri</th><td data-stat="position">MF</td>
<td data-stat="minutes">2,931</td><td data-stat="goals">8</td><td data-stat="assists">9</td>
<td data-stat="xg">4.1</td><td data-stat="xg_assist">5.0</td><td data-stat="npxg"></td>
<td data-stat="cards_yellow">8</td></tr>
<tr><th data-stat="player">Broken Row</th><td data-stat="position">DF</td>
<td data-stat="minutes">90</td><td data-stat="goals">many</td></tr>
</tbody>
<tfoot><tr><th data-stat="player">Squad Total</th><td data-stat="goals">96</td></tr></tfoot>
</table>
</div>
<div id="all_stats_defense">
<!--
<table id="stats_defense_9">
<tbody>
<tr><th data-stat="player">Rodri</th><td data-stat="tackles">65</td><td data-stat="interceptions">30</td>
<td data-stat="blocks">22</td><td data-stat="clearances">18</td></tr>
</tbody>
</table>
-->
</div>
</body></html>`

const leaguePage = `<html><body>
<table id="results2024-202591_overall">
<tbody>
<tr><th data-stat="rank">1</th><td data-stat="team"><a href="/s/1">Liverpool</a></td><td data-stat="games">38</td>
<td data-stat="wins">25</td><td data-stat="ties">9</td><td data-stat="losses">4</td>
<td data-stat="goals_for">86</td><td data-stat="goals_against">41</td><td data-stat="points">84</td></tr>
<tr><th data-stat="rank">2</th><td data-stat="team">Arsenal</td><td data-stat="games">38</td>
<td data-stat="wins">20</td><td data-stat="ties">14</td><td data-stat="losses">4</td>
<td data-stat="goals_for">69</td><td data-stat="goals_against">34</td><td data-stat="points">74</td></tr>
<tr><th data-stat="rank"></th><td data-stat="team">Nobody</td><td data-stat="points">0</td></tr>
</tbody>
</table>
</body></html>`

func TestParsePlayerStats(t *testing.T) {
	players, rejected, err := ParsePlayerStats([]byte(squadPage), "Manchester City")
	require.NoError(t, err)
	require.Len(t, players, 2)
	require.Len(t, rejected, 1)
	assert.Contains(t, rejected[0].Error(), "Broken Row")

	haaland := players[0]
	assert.Equal(t, "Erling Haaland", haaland.Player)
	assert.Equal(t, "Manchester City", haaland.Team)
	assert.Equal(t, "FW", haaland.Role)
	assert.Equal(t, 2652.0, haaland.Minutes)
	assert.Equal(t, 27.0, haaland.Goals)
	assert.Equal(t, 3.4, haaland.XA)
	require.NotNil(t, haaland.NPXG)
	assert.Equal(t, 24.5, *haaland.NPXG)
	assert.Nil(t, haaland.Tackles)

	rodri := players[1]
	assert.Nil(t, rodri.NPXG, "blank cells stay absent")
	require.NotNil(t, rodri.Tackles, "commented tables are read")
	assert.Equal(t, 65.0, *rodri.Tackles)
	assert.Equal(t, 18.0, *rodri.Clearances)
	assert.Equal(t, 8.0, *rodri.YellowCards)
}

func TestParseStandings(t *testing.T) {
	standings, rejected, err := ParseStandings([]byte(leaguePage))
	require.NoError(t, err)
	assert.Len(t, rejected, 1)
	require.Len(t, standings, 2)
	assert.Equal(t, podds.Standing{
		Team: "Liverpool", Position: 1, Played: 38, Won: 25, Drawn: 9, Lost: 4,
		GoalsFor: 86, GoalsAgainst: 41, Points: 84,
	}, standings[0])
	assert.Equal(t, "Arsenal", standings[1].Team)
}

func TestParseWithoutTables(t *testing.T) {
	_, _, err := ParsePlayerStats([]byte("<html><body><p>blocked</p></body></html>"), "X")
	assert.ErrorIs(t, err, ErrNoTable)

	_, _, err = ParseStandings([]byte(squadPage))
	assert.ErrorIs(t, err, ErrNoTable)
}
