package tools

import (
	"sort"

	"github.com/richard-senior/matchodds/pkg/podds"
	"github.com/richard-senior/matchodds/pkg/predictor"
	"github.com/richard-senior/matchodds/pkg/protocol"
)

func LeagueContextTool() protocol.Tool {
	return protocol.Tool{
		Name: "league_context",
		Description: `
		Reads a league table and describes the situation of every team: a 0-100 sentiment score, the pressure level
		(European chase or relegation fight), zone membership and points from safety, plus recent form when given.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"standings": matchProperties["standings"],
				"form":      matchProperties["form"],
				"season":    matchProperties["season"],
				"league":    matchProperties["league"],
			},
			Required: []string{},
		},
	}
}

// HandleLeagueContext scores a league table
func (t *Toolbox) HandleLeagueContext(params any) (any, error) {
	args, err := paramsMap(params)
	if err != nil {
		return nil, err
	}

	var standings []podds.Standing
	var form []podds.FormRecord
	if err := decodeArg(args, "standings", &standings); err != nil {
		return nil, err
	}
	if err := decodeArg(args, "form", &form); err != nil {
		return nil, err
	}

	season := stringArg(args, "season")
	if st := t.svc.Store(); st != nil && season != "" {
		if len(standings) == 0 {
			if standings, err = st.Standings(season); err != nil {
				return nil, err
			}
		}
		if len(form) == 0 {
			stored, err := st.Form(season)
			if err != nil {
				return nil, err
			}
			for _, f := range stored {
				form = append(form, f)
			}
		}
	}
	if len(standings) == 0 && len(form) == 0 {
		return nil, protocol.InvalidParams("no standings were sent and none are stored for season %q", season)
	}

	cfg, err := t.svc.Config().ForLeague(stringArg(args, "league"))
	if err != nil {
		return nil, protocol.InvalidParams("%v", err)
	}
	signals, errs := predictor.LeagueContext(cfg, standings, form)

	teams := make([]podds.ContextSignals, 0, len(signals))
	for _, s := range signals {
		teams = append(teams, s)
	}
	// table order, form-only teams last
	sort.Slice(teams, func(i, j int) bool {
		a, b := teams[i], teams[j]
		if (a.Position == 0) != (b.Position == 0) {
			return b.Position == 0
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.Team < b.Team
	})

	result := map[string]any{"teams": teams}
	if len(errs) > 0 {
		messages := make([]string, len(errs))
		for i, e := range errs {
			messages[i] = e.Error()
		}
		result["rejectedRows"] = messages
	}
	return result, nil
}
