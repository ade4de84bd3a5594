package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func restore(t *testing.T) {
	prev, prevJSON, prevVerbosity := Logger, JSONOutput, Verbosity
	t.Cleanup(func() { Logger, JSONOutput, Verbosity = prev, prevJSON, prevVerbosity })
}

func TestInitializeJSON(t *testing.T) {
	restore(t)
	var buf bytes.Buffer
	require.NoError(t, initialize(&buf, true, VerbosityInfo))
	assert.True(t, JSONOutput)

	ComponentLogger("prov").Infow("Lineage built", FieldNodes, 3, FieldStrategy, "ancestors+2")
	Debugw("below the level")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Lineage built", entry["msg"])
	assert.Equal(t, "prov", entry["logger"])
	assert.Equal(t, float64(3), entry[FieldNodes])
	assert.Equal(t, "ancestors+2", entry[FieldStrategy])
}

func TestInitializeConsole(t *testing.T) {
	restore(t)
	var buf bytes.Buffer
	require.NoError(t, initialize(&buf, false, VerbosityUser))

	Infow("hidden at the default verbosity")
	Warnw("Schema skipped", FieldTypeURN, "urn:op:mill")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "Schema skipped")
	assert.Contains(t, out, "urn:op:mill")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(0))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(1))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(2))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(7))
	assert.False(t, ShouldLogTrace(2))
	assert.True(t, ShouldLogTrace(3))
}

func TestOrNop(t *testing.T) {
	l := OrNop(nil)
	require.NotNil(t, l)
	l.Infow("discarded")
}
