package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
env: dev
escrow_db:
  driver: sqlite
  dsn: "file:escrow.db"
kafka-service:
  brokers: ["kafka:9092"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "sqlite", cfg.EscrowDB.Driver)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaService.Brokers)
	assert.Equal(t, "escrow-events", cfg.KafkaService.EventsTopic)
	assert.Equal(t, "payment-confirmations", cfg.KafkaService.PaymentsTopic)
	assert.Equal(t, "KES", cfg.Escrow.DefaultCurrency)
	assert.Equal(t, 7, cfg.Escrow.DefaultAutoReleaseDays)
	assert.Equal(t, "@every 1m", cfg.Escrow.SweepSchedule)
	assert.Equal(t, 10*time.Second, cfg.HTTPServer.ReadTimeout)
	assert.Equal(t, 5*time.Second, cfg.ListingService.Timeout)
}

func TestLoadRejectsNegativePolicy(t *testing.T) {
	path := writeConfig(t, `
escrow:
  default_auto_release_days: -1
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadPaymentGatewayToken(t *testing.T) {
	path := writeConfig(t, `
payment_gateway:
  token: from-file
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.PaymentGateway.Token)

	t.Setenv("PAYMENT_GATEWAY_TOKEN", "from-env")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.PaymentGateway.Token)
}
