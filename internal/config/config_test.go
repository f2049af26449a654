package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("POLL_INTERVAL", "500ms")
	t.Setenv("CHEF_CAPACITY", "5")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := Load()
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 5, cfg.ChefCapacity)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Second, cfg.DirectoryTTL)
	assert.Equal(t, "order_events", cfg.OrderEventsTopic)
	assert.Equal(t, 3, cfg.BridgeMaxAttempts)
}
