package report

import (
	"testing"

	"github.com/richard-senior/matchodds/pkg/podds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluation(t *testing.T, odds podds.OddsQuote) *podds.Evaluation {
	t.Helper()
	var players []podds.PlayerRecord
	for _, team := range []string{"Reds", "Blues"} {
		players = append(players,
			podds.PlayerRecord{Player: team + " Nine", Team: team, Role: "FW", Goals: 15, Assists: 3, XG: 13, XA: 2, Minutes: 2600},
			podds.PlayerRecord{Player: team + " Eight", Team: team, Role: "MF", Goals: 4, Assists: 8, XG: 3, XA: 7, Minutes: 2800},
			podds.PlayerRecord{Player: team + " Five", Team: team, Role: "DF", Goals: 1, Assists: 1, XG: 1, XA: 1, Minutes: 3000},
		)
	}
	cfg := podds.DefaultConfig()
	ctx := podds.NewMatchContext(cfg, "Reds", "Blues", players, nil, true)
	eval, err := podds.Evaluate(cfg, ctx, odds)
	require.NoError(t, err)
	return eval
}

func TestHTML(t *testing.T) {
	html, err := HTML(evaluation(t, nil))
	require.NoError(t, err)

	assert.Contains(t, html, "<h1>Reds vs Blues</h1>")
	assert.Contains(t, html, "No value found at the quoted prices.")
	assert.Contains(t, html, "<h3>1X2</h3>")
	assert.Contains(t, html, "Reds Nine (Reds)")
}

func TestCorrectScoreIsTrimmed(t *testing.T) {
	v := newView(evaluation(t, nil))
	for _, m := range v.Markets {
		if m.Name == podds.MarketCorrectScore {
			require.Len(t, m.Outcomes, correctScoreShown)
			for i := 1; i < len(m.Outcomes); i++ {
				assert.GreaterOrEqual(t, m.Outcomes[i-1].Probability, m.Outcomes[i].Probability)
			}
			return
		}
	}
	t.Fatal("correct score market missing")
}

func TestMarkdown(t *testing.T) {
	eval := evaluation(t, podds.OddsQuote{podds.Market1X2: {"Home": 40, "Draw": 40, "Away": 40}})
	md, err := Markdown(eval)
	require.NoError(t, err)

	assert.Contains(t, md, "# Reds vs Blues")
	assert.Contains(t, md, "## Value bets")
	assert.Contains(t, md, "**Home Win**")
	assert.Contains(t, md, "@ 40.00")
	assert.NotContains(t, md, "<li>")
}

func TestNilEvaluation(t *testing.T) {
	_, err := Markdown(nil)
	assert.Error(t, err)
}
