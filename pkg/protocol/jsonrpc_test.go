package protocol

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJsonRpcRequest(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantErr      bool
		notification bool
	}{
		{"request", `{"jsonrpc":"2.0","method":"tools/list","id":1}`, false, false},
		{"notification", `{"jsonrpc":"2.0","method":"notifications/initialized"}`, false, true},
		{"wrong version", `{"jsonrpc":"1.0","method":"tools/list","id":1}`, true, false},
		{"no method", `{"jsonrpc":"2.0","id":1}`, true, false},
		{"not json", `{"jsonrpc":`, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseJsonRpcRequest([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.notification, req.IsNotification())
		})
	}
}

func TestNewTextResult(t *testing.T) {
	res, err := NewTextResult("# Report")
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	assert.Equal(t, "# Report", res.Content[0].Text)

	res, err = NewTextResult(map[string]int{"goals": 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"goals": 3}`, res.Content[0].Text)
	assert.False(t, res.IsError)
}

func TestErrorCode(t *testing.T) {
	err := fmt.Errorf("predict_match: %w", InvalidParams("missing %s", "home_team"))
	assert.Equal(t, ErrInvalidParams, ErrorCode(err, ErrToolExecutionFailed))
	assert.Contains(t, err.Error(), "missing home_team")
	assert.Equal(t, ErrToolExecutionFailed, ErrorCode(fmt.Errorf("engine failed"), ErrToolExecutionFailed))
}

func TestErrorResponse(t *testing.T) {
	resp := NewJsonRpcErrorResponse(ErrMethodNotFound, "Method not found: nope", nil, 7)
	assert.JSONEq(t, `{"jsonrpc":"2.0","error":{"code":-32601,"message":"Method not found: nope"},"id":7}`, resp.String())
}
