package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 16*time.Millisecond, cfg.TickInterval)
	assert.True(t, cfg.AudioEnabled)
	assert.Equal(t, "data/journal.db", cfg.JournalPath)
	assert.InDelta(t, 0.05, cfg.DragScale, 1e-9)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FIELD_MEDIC_TICK_INTERVAL", "50ms")
	t.Setenv("FIELD_MEDIC_AUDIO", "false")
	t.Setenv("FIELD_MEDIC_GRAPH_DIR", "/tmp/graphs")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, cfg.TickInterval)
	assert.False(t, cfg.AudioEnabled)
	assert.Equal(t, "/tmp/graphs", cfg.GraphDir)
}

func TestLoadErrors(t *testing.T) {
	t.Run("parse", func(t *testing.T) {
		t.Setenv("FIELD_MEDIC_TICK_INTERVAL", "soon")
		_, err := Load()
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "parse env:"), err.Error())
	})
	t.Run("volume", func(t *testing.T) {
		t.Setenv("FIELD_MEDIC_VOLUME", "1.5")
		_, err := Load()
		assert.ErrorContains(t, err, "volume")
	})
	t.Run("tick", func(t *testing.T) {
		t.Setenv("FIELD_MEDIC_TICK_INTERVAL", "0s")
		_, err := Load()
		assert.ErrorContains(t, err, "tick interval")
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger("warn", &buf)
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown", "injury", "arm")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "injury=arm")

	_, err = NewLogger("loud", &buf)
	assert.Error(t, err)
}
