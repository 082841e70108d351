package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "dev", cfg.Env)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "memory", cfg.StorageMode)
	require.Equal(t, "memory", cfg.PaymentsMode)
	require.Equal(t, 180, cfg.BookingHorizonDays)
	require.Equal(t, "USD", cfg.PriceCurrency)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestLoadMongoModeRequiresURI(t *testing.T) {
	t.Setenv("STORAGE_MODE", "mongo")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "mongo", cfg.StorageMode)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("BOOKING_HORIZON_DAYS", "0")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("BOOKING_HORIZON_DAYS", "90")
	t.Setenv("PRICE_CURRENCY", "DOLLARS")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("PRICE_CURRENCY", "eur")
	t.Setenv("PAYMENTS_MODE", "carrier-pigeon")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("PAYMENTS_MODE", "http")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 90, cfg.BookingHorizonDays)
	require.Equal(t, "EUR", cfg.PriceCurrency)
}

func TestLoadParsesBrokersAndDurations(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("SESSION_TTL", "12h")
	t.Setenv("OUTBOX_POLL_INTERVAL", "2s")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 12*time.Hour, cfg.SessionTTL)
	require.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
}
