package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := load(newViper(map[string]any{"ADMIN_TOKEN": "secret"}))
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, 500*time.Millisecond, cfg.Catalog.SearchDebounce)
		assert.Equal(t, 10, cfg.Catalog.PageLimit)
		assert.Equal(t, 2*time.Second, cfg.Settlement.Delay)
		assert.Equal(t, 300*time.Millisecond, cfg.Gateway.FastLatency)
		assert.Equal(t, 800*time.Millisecond, cfg.Gateway.NormalLatency)
		assert.Empty(t, cfg.Kafka.Brokers)
		assert.Empty(t, cfg.Redis.URL)
		assert.True(t, cfg.Gateway.Seed)
	})

	t.Run("broker list is split and trimmed", func(t *testing.T) {
		cfg, err := load(newViper(map[string]any{
			"ADMIN_TOKEN":   "secret",
			"KAFKA_BROKERS": "kafka-1:9092, kafka-2:9092,,",
		}))
		require.NoError(t, err)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	})

	t.Run("admin token is required", func(t *testing.T) {
		_, err := load(newViper(nil))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ADMIN_TOKEN")
	})

	t.Run("failure rate must be a probability", func(t *testing.T) {
		_, err := load(newViper(map[string]any{"ADMIN_TOKEN": "secret", "GATEWAY_FAILURE_RATE": 1.5}))
		require.Error(t, err)
	})

	t.Run("env overrides defaults", func(t *testing.T) {
		t.Setenv("SETTLEMENT_DELAY", "5s")
		t.Setenv("ADMIN_TOKEN", "from-env")
		v := viper.New()
		setDefaults(v)
		v.AutomaticEnv()

		cfg, err := load(v)
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.Settlement.Delay)
		assert.Equal(t, "from-env", cfg.Server.AdminToken)
	})
}
