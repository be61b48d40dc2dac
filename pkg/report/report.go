// Package report renders an evaluation for people: HTML for browsers, markdown for MCP clients
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"sort"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/richard-senior/matchodds/pkg/podds"
)

var funcs = template.FuncMap{
	"pct": func(p float64) string { return fmt.Sprintf("%.1f%%", p*100) },
	"f2":  func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"f1":  func(v float64) string { return fmt.Sprintf("%.1f", v) },
}

var page = template.Must(template.New("report").Funcs(funcs).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Summary.HomeTeam}} vs {{.Summary.AwayTeam}}</title></head>
<body>
<h1>{{.Summary.HomeTeam}} vs {{.Summary.AwayTeam}}</h1>
<h2>Prediction</h2>
<ul>
<li><strong>Home Win</strong>: {{pct .Summary.HomeWin}}</li>
<li><strong>Draw</strong>: {{pct .Summary.Draw}}</li>
<li><strong>Away Win</strong>: {{pct .Summary.AwayWin}}</li>
<li><strong>Expected goals</strong>: {{f2 .Summary.LambdaHome}} - {{f2 .Summary.LambdaAway}} ({{f2 .Summary.ExpectedGoals}} total)</li>
<li><strong>Most likely</strong>: {{.Summary.MostLikelyHome}}-{{.Summary.MostLikelyAway}}</li>
<li><strong>Match type</strong>: {{.Confidence.MatchType}}, margin {{pct .Confidence.Margin}}</li>
</ul>
<h2>Top scorelines</h2>
<ol>{{range .Summary.TopScorelines}}
<li>{{.Home}}-{{.Away}}: {{pct .Probability}}</li>{{end}}
</ol>
{{if .ValueBets}}<h2>Value bets</h2>
<ol>{{range .ValueBets}}
<li><strong>{{.Market}} / {{.Outcome}}</strong> @ {{f2 .Odds}}: model {{pct .Probability}}, edge {{pct .Edge}}, EV {{f2 .ExpectedValue}}, stake {{.Stake.StringFixed 2}}</li>{{end}}
</ol>{{else}}<h2>Value bets</h2>
<p>No value found at the quoted prices.</p>{{end}}
<h2>Markets</h2>
{{range .Markets}}<h3>{{.Name}}</h3>
<ul>{{range .Outcomes}}
<li>{{.Label}}: {{pct .Probability}}</li>{{end}}
</ul>
{{end}}
<h2>Corners</h2>
<ul>
<li>Expected: {{f1 .Corners.ExpectedHome}} - {{f1 .Corners.ExpectedAway}} ({{f1 .Corners.ExpectedTotal}} total){{if .Corners.Estimated}}, estimated from attacking output{{end}}</li>
</ul>
<h2>Half time</h2>
<ul>
<li>{{.Summary.HomeTeam}} scores in the first half: {{pct .HalfTime.HomeScoresFirstHalf}}</li>
<li>{{.Summary.AwayTeam}} scores in the first half: {{pct .HalfTime.AwayScoresFirstHalf}}</li>
</ul>
<h2>Key scores</h2>
<ul>{{range .KeyScores}}
<li><strong>{{.Score}}</strong> ({{pct .Probability}}): {{.Rationale}}</li>{{end}}
</ul>
<h2>Likely scorers</h2>
<ul>{{range .HomeScorers}}
<li>{{.Player}} ({{$.Summary.HomeTeam}}): {{pct .Probability}}</li>{{end}}{{range .AwayScorers}}
<li>{{.Player}} ({{$.Summary.AwayTeam}}): {{pct .Probability}}</li>{{end}}
</ul>
<h2>Insights</h2>
<ul>{{range .Insights}}
<li><em>{{.Category}}</em>: {{.Text}}</li>{{end}}
</ul>
<h2>Adjustments</h2>
<ul>{{range .Adjustments}}
<li>{{.Step}} ({{.Side}}): x{{f2 .Factor}}</li>{{end}}
</ul>
</body></html>
`))

type outcomeView struct {
	Label       string
	Probability float64
}

type marketView struct {
	Name     string
	Outcomes []outcomeView
}

type view struct {
	*podds.Evaluation
	Markets []marketView
}

// correct score has dozens of cells, only the likeliest are shown
const correctScoreShown = 10

func newView(eval *podds.Evaluation) view {
	v := view{Evaluation: eval}
	for _, name := range eval.Markets.Markets() {
		m := marketView{Name: name}
		for _, label := range eval.Markets.Outcomes(name) {
			m.Outcomes = append(m.Outcomes, outcomeView{Label: label, Probability: eval.Markets[name][label]})
		}
		if name == podds.MarketCorrectScore {
			sort.SliceStable(m.Outcomes, func(i, j int) bool {
				return m.Outcomes[i].Probability > m.Outcomes[j].Probability
			})
			if len(m.Outcomes) > correctScoreShown {
				m.Outcomes = m.Outcomes[:correctScoreShown]
			}
		}
		v.Markets = append(v.Markets, m)
	}
	return v
}

// WriteHTML renders the evaluation as a standalone HTML page
func WriteHTML(w io.Writer, eval *podds.Evaluation) error {
	if eval == nil {
		return fmt.Errorf("no evaluation to render")
	}
	if err := page.Execute(w, newView(eval)); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// HTML renders the evaluation to a string
func HTML(eval *podds.Evaluation) (string, error) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, eval); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Markdown renders the evaluation and converts the page to markdown
func Markdown(eval *podds.Evaluation) (string, error) {
	html, err := HTML(eval)
	if err != nil {
		return "", err
	}
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert report to markdown: %w", err)
	}
	return markdown, nil
}
