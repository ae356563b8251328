package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func reset(t *testing.T) {
	t.Cleanup(func() {
		Close()
		defaultLogger = nil
	})
}

func TestSilentBeforeInit(t *testing.T) {
	reset(t)
	defaultLogger = nil

	// None of these may panic without a logger
	Debug("debug")
	Info("info")
	LogPass("ssa", "main", 3)
	LogError("ssa", "main", os.ErrNotExist)
	LogUnresolved("main", "b0", "y")

	l := With("function", "main")
	require.NotNil(t, l)
	l.Info("hello")
	l.Warn("odd")
}

func TestJSONOutput(t *testing.T) {
	reset(t)
	var buf bytes.Buffer
	require.NoError(t, Init(Config{Level: LevelDebug, Format: "json", Output: &buf}))

	LogPass("unssa", "main", 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "INFO", rec["level"])
	require.Equal(t, "Pass complete", rec["msg"])
	require.Equal(t, "unssa", rec["pass"])
	require.Equal(t, "main", rec["function"])
	require.Equal(t, float64(2), rec["changes"])
}

func TestLevelFiltering(t *testing.T) {
	reset(t)
	var buf bytes.Buffer
	require.NoError(t, Init(Config{Level: LevelWarn, Format: "text", Output: &buf}))

	LogFixpoint("live", "main", 7)
	LogPhase("optimize")
	require.Empty(t, buf.String())

	LogError("ssa", "main", os.ErrInvalid)
	require.Contains(t, buf.String(), "level=ERROR")
	require.Contains(t, buf.String(), "phase=ssa")

	buf.Reset()
	With("function", "main").Warn("odd")
	require.Contains(t, buf.String(), "function=main")

	buf.Reset()
	LogUnresolved("main", "join", "x")
	require.Contains(t, buf.String(), "level=WARN")
	require.Contains(t, buf.String(), "variable=x")
}

func TestLogFile(t *testing.T) {
	reset(t)
	path := filepath.Join(t.TempDir(), "brilssa.log")
	require.NoError(t, Init(Config{Level: LevelInfo, LogFile: path}))

	LogComplete(true, "1ms")
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "Run successful"))

	err = Init(Config{LogFile: filepath.Join(t.TempDir(), "missing", "x.log")})
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}
