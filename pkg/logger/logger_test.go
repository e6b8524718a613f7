package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, LevelWarn)

	log.Info("hold acquired id=%s", "h1")
	log.Warn("slot taken stylist=%d", 7)

	out := buf.String()
	assert.NotContains(t, out, "hold acquired")
	assert.Contains(t, out, "[WARN] slot taken stylist=7")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("ERROR")
	require.NoError(t, err)
	assert.Equal(t, LevelError, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, lvl)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}
