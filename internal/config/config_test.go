package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_ExpandsEnvAndAppliesDefaults(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "s3cret")
	path := writeConfig(t, `
[database]
host = "localhost"
port = 5432
user = "app"
password = "${TEST_DB_PASSWORD}"
dbname = "consultations"

[user_service]
url = "http://users:8080"

[meeting_service]
url = "http://meetings:8080"

[booking]
timezone = "America/Sao_Paulo"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Contains(t, cfg.Database.DSN(), "password=s3cret")
	assert.Contains(t, cfg.Database.DSN(), "sslmode=disable")
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 90, cfg.Booking.MaxRangeDays)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)

	loc, err := cfg.Booking.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", loc.String())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `[database`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `
[database]
host = "localhost"
dbname = "x"
[user_service]
url = "http://users"
`))
	assert.ErrorContains(t, err, "meeting_service.url")

	_, err = Load(writeConfig(t, `
[database]
host = "localhost"
dbname = "x"
[user_service]
url = "http://users"
[meeting_service]
url = "http://meetings"
[redis]
enabled = true
`))
	assert.ErrorContains(t, err, "redis.addr")
}
