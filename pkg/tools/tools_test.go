package tools

import (
	"encoding/json"
	"testing"

	"github.com/richard-senior/matchodds/pkg/podds"
	"github.com/richard-senior/matchodds/pkg/predictor"
	"github.com/richard-senior/matchodds/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newToolbox(t *testing.T) *Toolbox {
	t.Helper()
	svc, err := predictor.New(nil, nil, nil)
	require.NoError(t, err)
	return NewToolbox(svc)
}

// arguments decodes JSON the way the server hands tool arguments over
func arguments(t *testing.T, s string) map[string]any {
	t.Helper()
	var args map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &args))
	return args
}

const matchArgs = `{
	"home_team": "Reds FC",
	"away_team": "Blues",
	"players": [
		{"player": "R9", "team": "Reds", "role": "FW", "goals": 18, "assists": 3, "xg": 15, "xa": 3, "minutes": 2600},
		{"player": "R8", "team": "Reds", "role": "MF", "goals": 6, "assists": 10, "xg": 5, "xa": 8, "minutes": 2800, "progressivePasses": 150},
		{"player": "R4", "team": "Reds", "role": "DF", "goals": 1, "assists": 1, "xg": 1, "xa": 0.5, "minutes": 3000, "tackles": 60},
		{"player": "B9", "team": "Blues", "role": "FW", "goals": 7, "assists": 1, "xg": 8, "xa": 1, "minutes": 2400},
		{"player": "B8", "team": "Blues", "role": "MF", "goals": 2, "assists": 4, "xg": 2, "xa": 3, "minutes": 2500},
		{"player": "B4", "team": "Blues", "role": "DF", "goals": 0, "assists": 0, "xg": 0.5, "xa": 0.2, "minutes": 2900, "tackles": 70}
	],
	"standings": [
		{"team": "Reds", "position": 1, "played": 20, "won": 15, "drawn": 3, "lost": 2, "goalsFor": 45, "goalsAgainst": 15, "points": 48},
		{"team": "Blues", "position": 18, "played": 20, "won": 4, "drawn": 3, "lost": 13, "goalsFor": 17, "goalsAgainst": 37, "points": 15}
	],
	"odds": {"1X2": {"Home": "49/1", "Draw": 4.2, "Away": 0.5}}
}`

func TestToolDefinitions(t *testing.T) {
	for _, tool := range []protocol.Tool{PredictMatchTool(), ScanValueBetsTool(), LeagueContextTool(), MatchReportTool()} {
		assert.NotEmpty(t, tool.Name)
		assert.NotEmpty(t, tool.Description)
		assert.Equal(t, "object", tool.InputSchema.Type)
		for _, req := range tool.InputSchema.Required {
			assert.Contains(t, tool.InputSchema.Properties, req, tool.Name)
		}
	}
}

func TestHandlePredictMatch(t *testing.T) {
	tb := newToolbox(t)
	out, err := tb.HandlePredictMatch(arguments(t, matchArgs))
	require.NoError(t, err)

	res, ok := out.(*predictor.Result)
	require.True(t, ok)
	eval := res.Evaluation
	assert.Equal(t, "Reds", eval.Summary.HomeTeam)
	assert.Greater(t, eval.Summary.HomeWin, eval.Summary.AwayWin)
	require.NotEmpty(t, eval.ValueBets)
	assert.Equal(t, 50.0, eval.ValueBets[0].Odds)
	assert.Len(t, eval.RejectedOdds, 1)
}

func TestHandlePredictMatchBadParams(t *testing.T) {
	tb := newToolbox(t)

	tests := []struct {
		name   string
		params any
	}{
		{"nil", nil},
		{"not an object", "Reds vs Blues"},
		{"missing away team", map[string]any{"home_team": "Reds"}},
		{"players not a list", map[string]any{"home_team": "Reds", "away_team": "Blues", "players": "lots"}},
		{"no data anywhere", map[string]any{"home_team": "Reds", "away_team": "Blues"}},
		{"same team", arguments(t, `{"home_team": "Reds", "away_team": "reds", "players": [{"player": "A", "team": "Reds", "role": "FW", "goals": 1, "xg": 1, "minutes": 90}]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tb.HandlePredictMatch(tt.params)
			require.Error(t, err)
			assert.Equal(t, protocol.ErrInvalidParams, protocol.ErrorCode(err, protocol.ErrToolExecutionFailed))
		})
	}
}

func TestHandleMatchReport(t *testing.T) {
	tb := newToolbox(t)
	out, err := tb.HandleMatchReport(arguments(t, matchArgs))
	require.NoError(t, err)

	md, ok := out.(string)
	require.True(t, ok)
	assert.Contains(t, md, "Reds vs Blues")
	assert.Contains(t, md, "Value bets")
}

func TestHandleScanValueBetsWithProbabilities(t *testing.T) {
	tb := newToolbox(t)
	out, err := tb.HandleScanValueBets(arguments(t, `{
		"probabilities": {"1X2": {"Home": 0.7, "Draw": 0.2, "Away": 0.1}},
		"odds": {"1X2": {"Home": 2.0, "Draw": "evens", "Away": 1.0}},
		"bankroll": 1000
	}`))
	require.NoError(t, err)

	result := out.(map[string]any)
	bets := result["valueBets"].([]podds.ValueBet)
	require.Len(t, bets, 1)
	assert.Equal(t, "Home", bets[0].Outcome)
	assert.InDelta(t, 0.2, bets[0].Edge, 1e-9)
	assert.InDelta(t, 0.4, bets[0].ExpectedValue, 1e-9)
	assert.Equal(t, "100", bets[0].Stake.String())
	assert.Len(t, result["rejectedOdds"], 1)
}

func TestHandleScanValueBetsEvaluatesMatch(t *testing.T) {
	tb := newToolbox(t)
	out, err := tb.HandleScanValueBets(arguments(t, matchArgs))
	require.NoError(t, err)
	assert.Greater(t, out.(map[string]any)["count"], 0)
}

func TestHandleScanValueBetsBadParams(t *testing.T) {
	tb := newToolbox(t)

	tests := []struct {
		name string
		args string
	}{
		{"no odds", `{"probabilities": {"1X2": {"Home": 0.5}}}`},
		{"bad threshold", `{"odds": {"1X2": {"Home": 2}}, "probabilities": {"1X2": {"Home": 0.5}}, "edge_threshold": 2}`},
		{"not a number", `{"odds": {"1X2": {"Home": 2}}, "probabilities": {"1X2": {"Home": 0.5}}, "bankroll": "lots"}`},
		{"nothing to price", `{"odds": {"1X2": {"Home": 2}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tb.HandleScanValueBets(arguments(t, tt.args))
			require.Error(t, err)
			assert.Equal(t, protocol.ErrInvalidParams, protocol.ErrorCode(err, protocol.ErrToolExecutionFailed))
		})
	}
}

func TestHandleLeagueContext(t *testing.T) {
	tb := newToolbox(t)
	out, err := tb.HandleLeagueContext(arguments(t, `{
		"standings": [
			{"team": "Blues", "position": 20, "played": 30, "won": 3, "drawn": 5, "lost": 22, "goalsFor": 20, "goalsAgainst": 60, "points": 14},
			{"team": "Reds", "position": 1, "played": 30, "won": 22, "drawn": 5, "lost": 3, "goalsFor": 70, "goalsAgainst": 20, "points": 71},
			{"team": "", "position": 3}
		],
		"form": [{"team": "Greens", "gp": 5, "pts": 10, "gf": 8, "ga": 4, "opponentsPpg": 1.5}]
	}`))
	require.NoError(t, err)

	result := out.(map[string]any)
	teams := result["teams"].([]podds.ContextSignals)
	require.Len(t, teams, 3)
	assert.Equal(t, "Reds", teams[0].Team)
	assert.True(t, teams[0].ChampionsLeagueZone)
	assert.Equal(t, "Blues", teams[1].Team)
	assert.True(t, teams[1].RelegationZone)
	assert.Equal(t, "Greens", teams[2].Team)
	assert.NotNil(t, teams[2].Form)
	assert.Len(t, result["rejectedRows"], 1)

	_, err = tb.HandleLeagueContext(map[string]any{})
	assert.Equal(t, protocol.ErrInvalidParams, protocol.ErrorCode(err, protocol.ErrToolExecutionFailed))
}
