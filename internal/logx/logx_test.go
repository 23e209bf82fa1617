package logx

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_DefaultLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf})
	l.Debug("hidden")
	l.Info("shown", "iter", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "shown", entry["message"])
	require.Equal(t, float64(3), entry["iter"])
}

func TestNew_DebugLevelEmitsDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Output: &buf, Level: LevelDebug})
	l.Debug("visible")

	require.Contains(t, buf.String(), "visible")
}

func TestDiscard_EmitsNothing(t *testing.T) {
	l := Discard()
	l.Error("should not appear") // must not panic, no assertion possible on stdout
	_ = l
}
