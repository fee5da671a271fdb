package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("SLOT_MINUTES", "")
	t.Setenv("CLINIC_TZ_OFFSET_HOURS", "")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 15, cfg.SlotMinutes)
	assert.Equal(t, 6, cfg.TZOffsetHours)
	assert.Equal(t, 30*time.Second, cfg.IdempotencyTTL)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SLOT_MINUTES", "30")
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("CORS_ORIGINS", "https://front.clinic.kz, ,http://localhost:5173")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, 30, cfg.SlotMinutes)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, []string{"https://front.clinic.kz", "http://localhost:5173"}, cfg.CORSOrigins)
}
