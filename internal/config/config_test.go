package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Checkout.FreeDeliveryThreshold.Equal(decimal.NewFromInt(199)))
	assert.True(t, cfg.Checkout.DeliveryFee.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "top_products", cfg.Ranking.Key)
	assert.Equal(t, 5, cfg.Ranking.DefaultTopK)
	assert.False(t, cfg.Orders.StrictTransitions)
	assert.Equal(t, NotifierBackendLocal, cfg.Notifier.Backend)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CHECKOUT_FREE_DELIVERY_THRESHOLD", "250.50")
	t.Setenv("CHECKOUT_DELIVERY_FEE", "35")
	t.Setenv("CHECKOUT_LOCK_TTL", "10s")
	t.Setenv("ORDER_STRICT_TRANSITIONS", "true")
	t.Setenv("NOTIFIER_BACKEND", "Kafka")
	t.Setenv("NOTIFIER_KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "250.5", cfg.Checkout.FreeDeliveryThreshold.String())
	assert.Equal(t, "35", cfg.Checkout.DeliveryFee.String())
	assert.Equal(t, 10*time.Second, cfg.Checkout.LockTTL)
	assert.True(t, cfg.Orders.StrictTransitions)
	assert.Equal(t, NotifierBackendKafka, cfg.Notifier.Backend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Notifier.KafkaBrokers)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CHECKOUT_DELIVERY_FEE", "fifty")
	t.Setenv("RANKING_DEFAULT_TOP_K", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Checkout.DeliveryFee.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 5, cfg.Ranking.DefaultTopK)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.JWT.Secret = "short" },
			wantErr: "JWT_SECRET",
		},
		{
			name:    "negative delivery fee",
			mutate:  func(c *Config) { c.Checkout.DeliveryFee = decimal.NewFromInt(-1) },
			wantErr: "CHECKOUT_DELIVERY_FEE",
		},
		{
			name:    "unknown notifier backend",
			mutate:  func(c *Config) { c.Notifier.Backend = "carrier-pigeon" },
			wantErr: "NOTIFIER_BACKEND",
		},
		{
			name:    "kafka without topic",
			mutate:  func(c *Config) { c.Notifier.Backend = NotifierBackendKafka; c.Notifier.KafkaTopic = "" },
			wantErr: "NOTIFIER_KAFKA",
		},
		{
			name:    "zero top k",
			mutate:  func(c *Config) { c.Ranking.DefaultTopK = 0 },
			wantErr: "RANKING_DEFAULT_TOP_K",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
