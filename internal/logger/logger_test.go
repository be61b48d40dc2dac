package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DEBUG, false},
		{"WARN", WARN, false},
		{" highlight ", HIGHLIGHT, false},
		{"verbose", INFO, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	previous := GetLevel()
	defer SetLevel(previous)

	SetLevel(WARN)
	Info("hidden message")
	Warn("shown message", 3, 1.2345, errors.New("boom"))

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "shown message 3 1.23 boom")
}

func TestObjectsAreLoggedAsJSON(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	previous := GetLevel()
	defer SetLevel(previous)
	SetLevel(DEBUG)

	Debug("payload", map[string]int{"goals": 2})

	out := buf.String()
	assert.Contains(t, out, "[Object of type map[string]int]")
	assert.Contains(t, out, `"goals": 2`)
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matchodds.log")
	SetLogFile(path)
	SetLogOutput('f')
	defer SetWriter(os.Stdout)

	Error("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
