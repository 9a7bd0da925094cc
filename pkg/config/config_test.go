package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 9, cfg.Stats.RiskAbsences)
	assert.Equal(t, 12, cfg.Stats.CriticalAbsences)
	assert.Equal(t, 3.0, cfg.Stats.TrendMargin)
	assert.Equal(t, 30*time.Minute, cfg.Exports.SignedURLTTL)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	v.Set("DASHBOARD_CACHE_TTL", "not-a-duration")
	v.Set("EXPORTS_CLEANUP_INTERVAL", "15m")
	v.Set("STATS_TIMEZONE", "Mars/Olympus")

	cfg := fromViper(v)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.Exports.CleanupInterval)
	assert.Equal(t, time.UTC, cfg.Stats.Location())
}
