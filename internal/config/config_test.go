package config

import (
	"testing"
	"time"

	"github.com/jason-s-yu/dalmuti/internal/ai"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, logrus.InfoLevel, cfg.Level())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.NatsURL)
	assert.Equal(t, "dalmuti", cfg.RedisChannelPrefix)
	assert.False(t, cfg.Debug)

	cc := cfg.Coordinator()
	assert.Equal(t, time.Second, cc.AIDelay)
	assert.Equal(t, time.Second, cc.TurnUnit)
	assert.Equal(t, ai.Medium, cc.DefaultDifficulty)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("DALMUTI_PORT", "9090")
	t.Setenv("DALMUTI_LOG_LEVEL", "debug")
	t.Setenv("DALMUTI_AI_DELAY_MS", "250")
	t.Setenv("DALMUTI_AI_DIFFICULTY", "hard")
	t.Setenv("DALMUTI_REDIS_ADDR", "localhost:6379")
	t.Setenv("DALMUTI_NATS_URL", "nats://localhost:4222")
	t.Setenv("DALMUTI_ALLOWED_ORIGINS", "example.com,*.example.org")
	t.Setenv("DALMUTI_DEBUG", "true")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, logrus.DebugLevel, cfg.Level())
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "nats://localhost:4222", cfg.NatsURL)
	assert.Equal(t, []string{"example.com", "*.example.org"}, cfg.AllowedOrigins)
	assert.True(t, cfg.Debug)

	cc := cfg.Coordinator()
	assert.Equal(t, 250*time.Millisecond, cc.AIDelay)
	assert.Equal(t, ai.Hard, cc.DefaultDifficulty)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port out of range", map[string]string{"DALMUTI_PORT": "70000"}},
		{"negative delay", map[string]string{"DALMUTI_AI_DELAY_MS": "-1"}},
		{"unknown difficulty", map[string]string{"DALMUTI_AI_DIFFICULTY": "godlike"}},
		{"bad log level", map[string]string{"DALMUTI_LOG_LEVEL": "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(New())
			assert.Error(t, err)
		})
	}
}
