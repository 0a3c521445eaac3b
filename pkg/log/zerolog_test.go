package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]interface{}
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestZerologAdapterFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapter(&buf, FormatJSON, zerolog.DebugLevel)

	logger.Info("file digested",
		String("algorithm", "md5"),
		Int("index", 1),
		Int64("bytes", 5),
		Uint32("count", 2),
		Bool("extended", false),
		Duration("elapsed", time.Millisecond),
		Err(errors.New("boom")),
	)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "file digested", line["message"])
	assert.Equal(t, "md5", line["algorithm"])
	assert.EqualValues(t, 1, line["index"])
	assert.EqualValues(t, 5, line["bytes"])
	assert.EqualValues(t, 2, line["count"])
	assert.Equal(t, false, line["extended"])
	assert.Equal(t, "boom", line["error"])
	assert.Contains(t, line, "time")
}

func TestZerologAdapterWith(t *testing.T) {
	var buf bytes.Buffer
	base := NewZerologAdapter(&buf, FormatJSON, zerolog.InfoLevel)
	child := base.With(String("session", "abc"), String("remote", "127.0.0.1:5000"))

	child.Warn("session failed")
	base.Info("accepting")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "abc", lines[0]["session"])
	assert.Equal(t, "127.0.0.1:5000", lines[0]["remote"])
	assert.NotContains(t, lines[1], "session")
}

func TestZerologAdapterLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologAdapter(&buf, FormatJSON, zerolog.WarnLevel)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Error("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["message"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NewNoopLogger()
	l.Info("ignored", String("k", "v"))
	assert.NotNil(t, l.With(String("k", "v")))
}
