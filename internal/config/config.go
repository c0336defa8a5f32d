// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/jason-s-yu/dalmuti/internal/ai"
	"github.com/jason-s-yu/dalmuti/internal/coordinator"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment variable the server reads, e.g.
// DALMUTI_PORT or DALMUTI_REDIS_ADDR.
const EnvPrefix = "DALMUTI"

// Config is the server's runtime configuration.
type Config struct {
	Port           int      `mapstructure:"port"`
	LogLevel       string   `mapstructure:"log_level"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// AIDelayMS is the pause before each AI move.
	AIDelayMS    int    `mapstructure:"ai_delay_ms"`
	AIDifficulty string `mapstructure:"ai_difficulty"`

	// RedisAddr enables the Redis event mirror when set.
	RedisAddr          string `mapstructure:"redis_addr"`
	RedisDB            int    `mapstructure:"redis_db"`
	RedisChannelPrefix string `mapstructure:"redis_channel_prefix"`

	// NatsURL enables the NATS event mirror when set.
	NatsURL           string `mapstructure:"nats_url"`
	NatsSubjectPrefix string `mapstructure:"nats_subject_prefix"`

	// Debug mounts the runtime dashboard at /debug/statsviz/.
	Debug bool `mapstructure:"debug"`
}

// New returns a viper instance holding the defaults and bound to the
// DALMUTI_ environment.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("ai_delay_ms", 1000)
	v.SetDefault("ai_difficulty", string(ai.Medium))
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_channel_prefix", "dalmuti")
	v.SetDefault("nats_url", "")
	v.SetDefault("nats_subject_prefix", "dalmuti")
	v.SetDefault("debug", false)
	return v
}

// Load decodes and validates v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	// A comma separated env value arrives as one element.
	if len(cfg.AllowedOrigins) == 1 && strings.Contains(cfg.AllowedOrigins[0], ",") {
		cfg.AllowedOrigins = splitList(cfg.AllowedOrigins[0])
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.AIDelayMS < 0 {
		return fmt.Errorf("ai_delay_ms must not be negative, got %d", c.AIDelayMS)
	}
	if _, err := ai.ParseDifficulty(c.AIDifficulty); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Level is the parsed LogLevel. Validate has already rejected bad values.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// Coordinator derives the coordinator's pacing from c.
func (c *Config) Coordinator() coordinator.Config {
	cc := coordinator.DefaultConfig()
	cc.AIDelay = time.Duration(c.AIDelayMS) * time.Millisecond
	if d, err := ai.ParseDifficulty(c.AIDifficulty); err == nil {
		cc.DefaultDifficulty = d
	}
	return cc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
