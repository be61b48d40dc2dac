package tools

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/richard-senior/matchodds/pkg/podds"
	"github.com/richard-senior/matchodds/pkg/predictor"
	"github.com/richard-senior/matchodds/pkg/protocol"
	"github.com/richard-senior/matchodds/pkg/util"
)

// Toolbox binds the match tools to a prediction service
type Toolbox struct {
	svc *predictor.Service
}

func NewToolbox(svc *predictor.Service) *Toolbox {
	return &Toolbox{svc: svc}
}

// matchProperties are the arguments shared by every tool that evaluates a match
var matchProperties = map[string]protocol.ToolProperty{
	"home_team": {
		Type:        "string",
		Description: "The home team (team A). Spelling does not need to be exact, 'Man Utd FC' finds 'Manchester Utd' when that is what the data calls it.",
	},
	"away_team": {
		Type:        "string",
		Description: "The away team (team B).",
	},
	"season": {
		Type:        "string",
		Description: "Season key of previously imported data, e.g. '2024-2025'. Used for anything not supplied inline.",
	},
	"league": {
		Type:        "string",
		Description: "Optional league profile from the configuration, e.g. 'premier-league'.",
	},
	"neutral": {
		Type:        "boolean",
		Description: "True when neither side is playing at home.",
	},
	"players": {
		Type: "array",
		Description: `Player statistics for both squads. Each entry: {"player","team","role" (FW/MF/DF/GK, compound such as "FW,MF" allowed),
		"goals","assists","xg","xa","minutes"} plus optional "npxg","progressivePasses","progressiveCarries","tackles",
		"interceptions","clearances","blocks","yellowCards","redCards".`,
	},
	"standings": {
		Type:        "array",
		Description: `League table rows: {"team","position","played","won","drawn","lost","goalsFor","goalsAgainst","points"}.`,
	},
	"corners": {
		Type:        "array",
		Description: `Corner profiles: {"team","cornersForPerMatch","cornersAgainstPerMatch","totalCornersPerMatch","over85","over95","over105"}.`,
	},
	"form": {
		Type:        "array",
		Description: `Recent form lines: {"team","gp","pts","gf","ga","opponentsPpg"}.`,
	},
	"odds": {
		Type:        "object",
		Description: `Bookmaker prices, market -> outcome -> odds, e.g. {"1X2": {"Home": 2.1, "Draw": "5/2", "Away": "evens"}}.`,
	},
}

func withMatchProperties(extra map[string]protocol.ToolProperty) map[string]protocol.ToolProperty {
	out := make(map[string]protocol.ToolProperty, len(matchProperties)+len(extra))
	for k, v := range matchProperties {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func paramsMap(params any) (map[string]any, error) {
	if params == nil {
		return nil, protocol.InvalidParams("no params given")
	}
	m, ok := params.(map[string]any)
	if !ok {
		return nil, protocol.InvalidParams("couldn't read the parameters as an object")
	}
	return m, nil
}

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return ""
	}
	s, err := util.GetAsString(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func requiredString(args map[string]any, key string) (string, error) {
	s := stringArg(args, key)
	if s == "" {
		return "", protocol.InvalidParams("no %s parameter was sent", key)
	}
	return s, nil
}

func boolArg(args map[string]any, key string) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true") || v == "1"
	}
	return false
}

// floatArg returns the named number, ok is false when it was not sent
func floatArg(args map[string]any, key string) (float64, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	f, err := util.GetAsFloat(v)
	if err != nil {
		return 0, false, protocol.InvalidParams("%s is not a number: %v", key, err)
	}
	return f, true, nil
}

// decodeArg converts a loosely typed argument into target by way of JSON
func decodeArg(args map[string]any, key string, target any) error {
	v, ok := args[key]
	if !ok || v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return protocol.InvalidParams("%s: %v", key, err)
	}
	if err := json.Unmarshal(b, target); err != nil {
		return protocol.InvalidParams("%s: %v", key, err)
	}
	return nil
}

// matchRequest reads the shared match arguments
func matchRequest(args map[string]any) (predictor.Request, error) {
	var req predictor.Request
	var err error
	if req.HomeTeam, err = requiredString(args, "home_team"); err != nil {
		return req, err
	}
	if req.AwayTeam, err = requiredString(args, "away_team"); err != nil {
		return req, err
	}
	req.Season = stringArg(args, "season")
	req.League = stringArg(args, "league")
	req.Venue = stringArg(args, "venue")
	req.Neutral = boolArg(args, "neutral")
	req.Save = boolArg(args, "save")

	targets := []struct {
		key    string
		target any
	}{
		{"players", &req.Players},
		{"standings", &req.Standings},
		{"corners", &req.Corners},
		{"form", &req.Form},
		{"odds", &req.Odds},
	}
	for _, t := range targets {
		if err := decodeArg(args, t.key, t.target); err != nil {
			return req, err
		}
	}
	return req, nil
}

// requestError reports bad input as invalid params and anything else as a failed tool
func requestError(err error) error {
	if errors.Is(err, podds.ErrInvalidInput) || errors.Is(err, podds.ErrInvalidConfig) || errors.Is(err, predictor.ErrNoSeasonData) {
		return protocol.InvalidParams("%v", err)
	}
	return err
}
