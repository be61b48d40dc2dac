package tools

import (
	"context"

	"github.com/richard-senior/matchodds/pkg/podds"
	"github.com/richard-senior/matchodds/pkg/protocol"
)

func ScanValueBetsTool() protocol.Tool {
	return protocol.Tool{
		Name: "scan_value_bets",
		Description: `
		Compares model probabilities with bookmaker odds and lists the bets where the model rates an outcome
		more likely than the price implies, ranked by expected value, with a fractional Kelly stake.
		Either send 'probabilities' (market -> outcome -> probability, as returned by predict_match in 'markets')
		or send the match arguments and the match is evaluated first.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: withMatchProperties(map[string]protocol.ToolProperty{
				"probabilities": {
					Type:        "object",
					Description: `Model probabilities, e.g. {"1X2": {"Home": 0.52, "Draw": 0.26, "Away": 0.22}}.`,
				},
				"edge_threshold": {
					Type:        "number",
					Description: "Minimum probability edge over the implied probability (default 0.05).",
				},
				"kelly_fraction": {
					Type:        "number",
					Description: "Fraction of the full Kelly stake to suggest (default 0.25).",
				},
				"bankroll": {
					Type:        "number",
					Description: "Bankroll used to turn Kelly fractions into stakes.",
				},
			}),
			Required: []string{"odds"},
		},
	}
}

// HandleScanValueBets finds value in a set of quoted prices
func (t *Toolbox) HandleScanValueBets(params any) (any, error) {
	args, err := paramsMap(params)
	if err != nil {
		return nil, err
	}

	var odds podds.OddsQuote
	if err := decodeArg(args, "odds", &odds); err != nil {
		return nil, err
	}
	if len(odds) == 0 {
		return nil, protocol.InvalidParams("no odds parameter was sent")
	}

	cfg := t.svc.Config().Clone()
	overrides := []struct {
		key    string
		target *float64
	}{
		{"edge_threshold", &cfg.EdgeThreshold},
		{"kelly_fraction", &cfg.KellyFraction},
		{"bankroll", &cfg.Bankroll},
	}
	for _, o := range overrides {
		v, ok, err := floatArg(args, o.key)
		if err != nil {
			return nil, err
		}
		if ok {
			*o.target = v
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, protocol.InvalidParams("%v", err)
	}

	var probabilities podds.MarketProbability
	if err := decodeArg(args, "probabilities", &probabilities); err != nil {
		return nil, err
	}
	if len(probabilities) == 0 {
		req, err := matchRequest(args)
		if err != nil {
			return nil, protocol.InvalidParams("send either probabilities or a match to evaluate: %v", err)
		}
		res, err := t.svc.Evaluate(context.Background(), req)
		if err != nil {
			return nil, requestError(err)
		}
		probabilities = res.Evaluation.Markets
	}

	bets, rejected := podds.ScanValueBets(cfg, probabilities, odds)
	result := map[string]any{
		"valueBets": bets,
		"count":     len(bets),
	}
	if len(rejected) > 0 {
		messages := make([]string, len(rejected))
		for i, r := range rejected {
			messages[i] = r.Error()
		}
		result["rejectedOdds"] = messages
	}
	return result, nil
}
