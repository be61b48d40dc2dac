package tools

import (
	"context"

	"github.com/richard-senior/matchodds/internal/logger"
	"github.com/richard-senior/matchodds/pkg/protocol"
)

func PredictMatchTool() protocol.Tool {
	return protocol.Tool{
		Name: "predict_match",
		Description: `
		Predicts a football match from player statistics and league context.
		Returns the expected goals of each side, the home/draw/away probabilities, the most likely scorelines,
		derived markets (over/under, both teams to score, double chance, draw no bet, correct score, asian handicap,
		corners, half time), analyst insights and any value bets found against the supplied odds.
		Squads and tables can be sent inline or read from a previously imported season.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: withMatchProperties(map[string]protocol.ToolProperty{
				"save": {
					Type:        "boolean",
					Description: "Store the evaluation so it can be looked up later by its id.",
				},
			}),
			Required: []string{"home_team", "away_team"},
		},
	}
}

// HandlePredictMatch evaluates one match
func (t *Toolbox) HandlePredictMatch(params any) (any, error) {
	args, err := paramsMap(params)
	if err != nil {
		return nil, err
	}
	req, err := matchRequest(args)
	if err != nil {
		return nil, err
	}
	logger.Info("Predicting", req.HomeTeam, "vs", req.AwayTeam)
	res, err := t.svc.Evaluate(context.Background(), req)
	if err != nil {
		return nil, requestError(err)
	}
	return res, nil
}
