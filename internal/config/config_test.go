package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "LOG_LEVEL", "MONGODB_URI", "MONGODB_DB_NAME", "MONGODB_TRANSACTIONS",
		"ANTHROPIC_API_KEY", "ANTHROPIC_MODEL", "ANTHROPIC_BASE_URL", "WEATHER_API_KEY", "WEATHER_BASE_URL",
		"DETECTION_BASE_URL", "DETECTION_TIMEOUT", "GOOGLE_SHEETS_CREDENTIALS_PATH",
		"GOOGLE_SHEET_DATABASE_ID", "DIGEST_CRON_SCHEDULE", "TIMEZONE",
	} {
		// Setenv registers the restore; Unsetenv lets godotenv fill the key.
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "farmhub", cfg.MongoDB.DBName)
	assert.False(t, cfg.MongoDB.Transactions)
	assert.Equal(t, 30*time.Second, cfg.Detection.Timeout)
	assert.Equal(t, "0 21 * * *", cfg.Reporting.CronSchedule)
	assert.False(t, cfg.Sheets.Enabled())
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "MONGODB_URI=mongodb://db:27017\nAPP_PORT=9090\nMONGODB_TRANSACTIONS=true\nDETECTION_TIMEOUT=5s\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoDB.URI)
	assert.True(t, cfg.MongoDB.Transactions)
	assert.Equal(t, 5*time.Second, cfg.Detection.Timeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080"},
			MongoDB:   MongoDBConfig{URI: "mongodb://localhost", DBName: "farmhub"},
			Detection: DetectionConfig{Timeout: time.Second},
			Reporting: ReportingConfig{CronSchedule: "0 21 * * *", Timezone: "UTC"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"missing mongo uri", func(c *Config) { c.MongoDB.URI = "" }, false},
		{"missing port", func(c *Config) { c.Server.Port = "" }, false},
		{"bad cron", func(c *Config) { c.Reporting.CronSchedule = "every day" }, false},
		{"bad timezone", func(c *Config) { c.Reporting.Timezone = "Mars/Olympus" }, false},
		{"half sheets config", func(c *Config) { c.Sheets.SpreadsheetID = "abc" }, false},
		{"full sheets config", func(c *Config) {
			c.Sheets.SpreadsheetID = "abc"
			c.Sheets.CredentialsPath = "/tmp/creds.json"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
