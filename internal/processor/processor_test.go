package processor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/richard-senior/matchodds/pkg/predictor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const single = `{
	"homeTeam": "Reds", "awayTeam": "Blues",
	"players": [
		{"player": "R9", "team": "Reds", "role": "FW", "goals": 15, "assists": 2, "xg": 13, "xa": 2, "minutes": 2500},
		{"player": "B9", "team": "Blues", "role": "FW", "goals": 6, "assists": 1, "xg": 7, "xa": 1, "minutes": 2500}
	],
	"odds": {"1X2": {"Home": "6/4", "Draw": 3.4, "Away": 5}}
}`

func service(t *testing.T) *predictor.Service {
	t.Helper()
	svc, err := predictor.New(nil, nil, nil)
	require.NoError(t, err)
	return svc
}

func TestProcessSingleRequest(t *testing.T) {
	out, err := ProcessRequest(context.Background(), service(t), []byte(single))
	require.NoError(t, err)

	var res predictor.Result
	require.NoError(t, json.Unmarshal(out, &res))
	assert.Equal(t, "Reds", res.Evaluation.Summary.HomeTeam)
	assert.Len(t, res.ID, 36)
}

func TestProcessBatch(t *testing.T) {
	input := `[` + single + `, {"homeTeam": "Reds", "awayTeam": "Blues"}]`
	out, err := ProcessRequest(context.Background(), service(t), []byte(input))
	require.NoError(t, err)

	var batch BatchResponse
	require.NoError(t, json.Unmarshal(out, &batch))
	require.Len(t, batch.Results, 2)
	require.Len(t, batch.Errors, 2)
	assert.NotNil(t, batch.Results[0])
	assert.Empty(t, batch.Errors[0])
	assert.Nil(t, batch.Results[1])
	assert.Contains(t, batch.Errors[1], "no season data")
}

func TestProcessErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
	}{
		{"empty", "  ", "invalid_request"},
		{"bad json", `{"homeTeam": `, "invalid_request"},
		{"bad odds", `{"homeTeam": "A", "awayTeam": "B", "odds": {"1X2": {"Home": "x/y"}}}`, "invalid_request"},
		{"same team", `{"homeTeam": "Reds", "awayTeam": "Reds", "players": [{"player": "P", "team": "Reds", "role": "FW", "goals": 1, "xg": 1, "minutes": 90}]}`, "invalid_request"},
		{"unknown league", `{"homeTeam": "A", "awayTeam": "B", "league": "nowhere", "players": [{"player": "P", "team": "A", "role": "FW", "goals": 1, "xg": 1, "minutes": 90}]}`, "invalid_config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ProcessRequest(context.Background(), service(t), []byte(tt.input))
			require.NoError(t, err)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(out, &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}
