package predictor

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/richard-senior/matchodds/pkg/metrics"
	"github.com/richard-senior/matchodds/pkg/podds"
	"github.com/richard-senior/matchodds/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squad(team string, scale float64) []podds.PlayerRecord {
	return []podds.PlayerRecord{
		{Player: team + " Nine", Team: team, Role: "FW", Goals: 14 * scale, Assists: 2, XG: 12 * scale, XA: 2, Minutes: 2500},
		{Player: team + " Ten", Team: team, Role: "MF", Goals: 5 * scale, Assists: 9, XG: 4 * scale, XA: 8, Minutes: 2700,
			ProgressivePasses: podds.Float(140)},
		{Player: team + " Four", Team: team, Role: "DF", Goals: 1, Assists: 1, XG: 1, XA: 0.5, Minutes: 3000,
			Tackles: podds.Float(60), Interceptions: podds.Float(40), Clearances: podds.Float(90)},
		{Player: team + " One", Team: team, Role: "GK", Minutes: 3060},
	}
}

func table() []podds.Standing {
	return []podds.Standing{
		{Team: "Reds", Position: 1, Played: 20, Won: 15, Drawn: 3, Lost: 2, GoalsFor: 44, GoalsAgainst: 14, Points: 48},
		{Team: "Greens", Position: 10, Played: 20, Won: 7, Drawn: 6, Lost: 7, GoalsFor: 25, GoalsAgainst: 25, Points: 27},
		{Team: "Blues", Position: 20, Played: 20, Won: 2, Drawn: 4, Lost: 14, GoalsFor: 14, GoalsAgainst: 40, Points: 10},
	}
}

func newService(t *testing.T, st *store.Store, m *metrics.EvaluationMetrics) *Service {
	t.Helper()
	s, err := New(nil, st, m)
	require.NoError(t, err)
	return s
}

func inlineRequest() Request {
	return Request{
		HomeTeam:  "Reds",
		AwayTeam:  "Blues",
		Players:   append(squad("Reds", 1.2), squad("Blues", 0.6)...),
		Standings: table(),
		Odds:      podds.OddsQuote{podds.Market1X2: {"Home": 50, "Draw": 1.5, "Away": 0.9}},
	}
}

func TestEvaluateInline(t *testing.T) {
	m := metrics.New()
	s := newService(t, nil, m)

	res, err := s.Evaluate(context.Background(), inlineRequest())
	require.NoError(t, err)

	assert.Len(t, res.ID, 36)
	assert.False(t, res.Saved)
	sum := res.Evaluation.Summary
	assert.Equal(t, "Reds", sum.HomeTeam)
	assert.Equal(t, "Blues", sum.AwayTeam)
	assert.Greater(t, sum.HomeWin, sum.AwayWin)
	require.NotEmpty(t, res.Evaluation.ValueBets)
	assert.Equal(t, "Home", res.Evaluation.ValueBets[0].Outcome)
	assert.Len(t, res.Evaluation.RejectedOdds, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues(metrics.StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectedOdds.WithLabelValues()))
}

func TestEvaluateResolvesTeamNames(t *testing.T) {
	s := newService(t, nil, nil)
	req := inlineRequest()
	req.HomeTeam = "Reds FC"
	req.AwayTeam = "blues"

	res, err := s.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Reds", res.Evaluation.Summary.HomeTeam)
	assert.Equal(t, "Blues", res.Evaluation.Summary.AwayTeam)
	assert.Empty(t, res.Warnings)
}

func TestEvaluateUnknownTeamIsDegenerate(t *testing.T) {
	s := newService(t, nil, nil)
	req := inlineRequest()
	req.AwayTeam = "Purples"

	res, err := s.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Evaluation.Away.Degenerate)
	assert.Contains(t, res.Warnings, "no players found for Purples")
}

func TestEvaluateDoesNotSwapClubs(t *testing.T) {
	s := newService(t, nil, nil)
	req := Request{
		HomeTeam: "Manchester United",
		AwayTeam: "Arsenal",
		Players:  append(squad("Manchester City", 1.2), squad("Arsenal", 1.0)...),
	}

	res, err := s.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Manchester United", res.Evaluation.Summary.HomeTeam)
	assert.True(t, res.Evaluation.Home.Degenerate)
	assert.Zero(t, res.Evaluation.Home.Goals)
	assert.Contains(t, res.Warnings, "no players found for Manchester United")
}

func TestEvaluateWarnsOnFuzzyName(t *testing.T) {
	s := newService(t, nil, nil)
	req := Request{
		HomeTeam: "Manchestr City",
		AwayTeam: "Arsenal",
		Players:  append(squad("Manchester City", 1.2), squad("Arsenal", 1.0)...),
	}

	res, err := s.Evaluate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Manchester City", res.Evaluation.Summary.HomeTeam)
	assert.Contains(t, res.Warnings, "Manchestr City resolved as Manchester City")
}

func TestEvaluateErrors(t *testing.T) {
	s := newService(t, nil, nil)

	tests := []struct {
		name   string
		modify func(*Request)
		want   error
	}{
		{"same team", func(r *Request) { r.AwayTeam = "reds" }, podds.ErrInvalidInput},
		{"abbreviation of the home team", func(r *Request) { r.AwayTeam = "Red" }, podds.ErrInvalidInput},
		{"no data", func(r *Request) { r.Players = nil }, ErrNoSeasonData},
		{"unknown league", func(r *Request) { r.League = "Sunday League" }, podds.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := inlineRequest()
			tt.modify(&req)
			_, err := s.Evaluate(context.Background(), req)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestEvaluateCancelled(t *testing.T) {
	s := newService(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Evaluate(ctx, inlineRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateFromStore(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.SavePlayers("2024", append(squad("Reds", 1.2), squad("Blues", 0.6)...)))
	require.NoError(t, st.SaveStandings("2024", table()))
	require.NoError(t, st.SaveCorners("2024", []podds.CornerProfile{
		podds.DefaultCornerProfile("Reds"), podds.DefaultCornerProfile("Blues"),
	}))
	require.NoError(t, st.SaveForm("2024", []podds.FormRecord{
		{Team: "Reds", GamesPlayed: 5, Points: 13, GoalsFor: 11, GoalsAgainst: 3, OpponentsPPG: 1.4},
	}))

	s := newService(t, st, nil)
	res, err := s.Evaluate(context.Background(), Request{Season: "2024", HomeTeam: "Reds", AwayTeam: "Blues", Save: true})
	require.NoError(t, err)

	assert.True(t, res.Saved)
	assert.False(t, res.Evaluation.Corners.Estimated)

	var sawForm bool
	for _, a := range res.Evaluation.Adjustments {
		if a.Step == "form" {
			sawForm = true
			assert.Equal(t, podds.HomeSide, a.Side)
		}
	}
	assert.True(t, sawForm)

	stored, err := st.Evaluation(res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Evaluation.Summary.HomeWin, stored.Summary.HomeWin)
}

func TestEvaluateEmptySeason(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	s := newService(t, st, nil)
	_, err = s.Evaluate(context.Background(), Request{Season: "1999", HomeTeam: "Reds", AwayTeam: "Blues"})
	assert.ErrorIs(t, err, ErrNoSeasonData)
}

func TestEvaluateBatchKeepsOrder(t *testing.T) {
	m := metrics.New()
	s := newService(t, nil, m)

	reverse := inlineRequest()
	reverse.HomeTeam, reverse.AwayTeam = "Blues", "Reds"
	broken := inlineRequest()
	broken.Players = nil

	reqs := []Request{inlineRequest(), broken, reverse, inlineRequest()}
	results, errs := s.EvaluateBatch(context.Background(), reqs)
	require.Len(t, results, 4)
	require.Len(t, errs, 4)

	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], ErrNoSeasonData)
	assert.Nil(t, results[1])
	assert.Equal(t, "Blues", results[2].Evaluation.Summary.HomeTeam)
	assert.Equal(t, results[0].Evaluation.Summary, results[3].Evaluation.Summary)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues(metrics.StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EvaluationsTotal.WithLabelValues(metrics.StatusError)))
}

func TestLeagueContextAddsForm(t *testing.T) {
	cfg := podds.DefaultConfig()
	signals, errs := LeagueContext(cfg, append(table(), podds.Standing{Team: "", Position: 4}), []podds.FormRecord{
		{Team: "Reds FC", GamesPlayed: 4, Points: 12, GoalsFor: 9, GoalsAgainst: 1, OpponentsPPG: 1.5},
		{Team: "Yellows", GamesPlayed: 4, Points: 1, GoalsFor: 2, GoalsAgainst: 9, OpponentsPPG: 1.2},
	})

	assert.Len(t, errs, 1)
	require.Contains(t, signals, "Reds")
	require.NotNil(t, signals["Reds"].Form)
	assert.Equal(t, 1.0, signals["Reds"].Form.Rating)

	yellows := signals["Yellows"]
	require.NotNil(t, yellows.Form)
	assert.Equal(t, podds.PressureNeutral, yellows.Pressure)
	assert.Equal(t, 50.0, yellows.Sentiment)
	assert.Nil(t, signals["Blues"].Form)
}

func TestImport(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	m := metrics.New()
	s := newService(t, st, m)

	players := append(squad("Reds", 1), podds.PlayerRecord{Player: "Ghost", Team: "Reds", Role: "FW", Goals: -2})
	rejected, err := s.Import("2024", SeasonData{
		Players:   players,
		Standings: table(),
		Corners:   []podds.CornerProfile{{Team: "Reds", CornersForPerMatch: 6, CornersAgainstPerMatch: 3, TotalCornersPerMatch: 9, Over85: 55, Over95: 45, Over105: 30}},
	})
	require.NoError(t, err)
	assert.Len(t, rejected, 1)

	stored, err := st.Players("2024", "Reds")
	require.NoError(t, err)
	assert.Len(t, stored, 4)

	corners, err := st.Corners("2024")
	require.NoError(t, err)
	assert.Equal(t, 0.55, corners["Reds"].Over85)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.StoredRecords.WithLabelValues("players")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectedRows.WithLabelValues("players")))
}

func TestImportNeedsStoreAndSeason(t *testing.T) {
	_, err := newService(t, nil, nil).Import("2024", SeasonData{})
	assert.ErrorIs(t, err, ErrNoStore)

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	_, err = newService(t, st, nil).Import("", SeasonData{})
	assert.ErrorIs(t, err, podds.ErrInvalidInput)
}
