package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 2*time.Second, cfg.RoundCooldown)
	assert.Equal(t, 3, cfg.WinScore)
	assert.Equal(t, 10, cfg.CardMax)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("ROUND_COOLDOWN", "500ms")
	t.Setenv("WIN_SCORE", "5")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 500*time.Millisecond, cfg.RoundCooldown)
	assert.Equal(t, 5, cfg.WinScore)
}
