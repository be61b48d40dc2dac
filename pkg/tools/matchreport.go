package tools

import (
	"context"

	"github.com/richard-senior/matchodds/pkg/protocol"
	"github.com/richard-senior/matchodds/pkg/report"
)

func MatchReportTool() protocol.Tool {
	return protocol.Tool{
		Name: "match_report",
		Description: `
		Writes a readable markdown preview of a football match: the prediction, top scorelines, value bets,
		every derived market, corners, half time scoring, likely scorers and the reasoning behind the numbers.
		Takes the same arguments as predict_match.
		`,
		InputSchema: protocol.InputSchema{
			Type:       "object",
			Properties: withMatchProperties(nil),
			Required:   []string{"home_team", "away_team"},
		},
	}
}

// HandleMatchReport evaluates a match and renders it as markdown
func (t *Toolbox) HandleMatchReport(params any) (any, error) {
	args, err := paramsMap(params)
	if err != nil {
		return nil, err
	}
	req, err := matchRequest(args)
	if err != nil {
		return nil, err
	}
	res, err := t.svc.Evaluate(context.Background(), req)
	if err != nil {
		return nil, requestError(err)
	}
	return report.Markdown(res.Evaluation)
}
