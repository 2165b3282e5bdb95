package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig("")
	assert.Equal(t, "foodshare", cfg.System.Appid)
	assert.Equal(t, 1816, cfg.Web.Port)
	assert.Equal(t, 1, cfg.Orders.MinQuantity)
	assert.Equal(t, 20, cfg.Orders.MaxQuantity)
	assert.Equal(t, 15, cfg.Orders.ExpiryMinutes)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "foodshare.yml")
	data := `
web:
  port: 9090
orders:
  max_quantity: 5
  expiry_minutes: 30
`
	require.NoError(t, os.WriteFile(cfile, []byte(data), 0o644))

	cfg := LoadConfig(cfile)
	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, 5, cfg.Orders.MaxQuantity)
	assert.Equal(t, 30, cfg.Orders.ExpiryMinutes)
	// untouched sections keep defaults
	assert.Equal(t, "postgres", cfg.Database.User)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("FOODSHARE_WEB_PORT", "8088")
	t.Setenv("FOODSHARE_ORDERS_MAX_QUANTITY", "10")
	t.Setenv("FOODSHARE_DB_HOST", "db.internal")

	cfg := LoadConfig("")
	assert.Equal(t, 8088, cfg.Web.Port)
	assert.Equal(t, 10, cfg.Orders.MaxQuantity)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}
