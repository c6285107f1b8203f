package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SLOT_MAX_MINUTES", "")
	t.Setenv("SERVER_PORT", "")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 30*time.Minute, cfg.SlotDefault)
	assert.Equal(t, 4*time.Hour, cfg.SlotMax)
	assert.Equal(t, 30, cfg.HorizonDefaultDays)
	assert.Equal(t, 90, cfg.HorizonMaxDays)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SLOT_DEFAULT_MINUTES", "15")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg := Load()

	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, 15*time.Minute, cfg.SlotDefault)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, 0, cfg.RedisDB)
}
