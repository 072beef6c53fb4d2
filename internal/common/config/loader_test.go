// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
camunda:
  broker_address: ${TEST_ZEEBE_ADDRESS}
database:
  postgres:
    host: localhost
    database: formquali
    user: quali
  redis:
    address: localhost:6379
integrations:
  zendesk:
    subdomain: acme
  webhook:
    url: https://hooks.example.com/monitoria
workers:
  validate-evaluation:
    enabled: true
  lookup-ticket:
    enabled: false
    timeout: 2000
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("TEST_ZEEBE_ADDRESS", "zeebe:26500")

	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "zeebe:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "monitorias", cfg.Database.Elasticsearch.Index)
	assert.False(t, cfg.Database.Elasticsearch.Enabled())
	assert.Equal(t, "formquali_formData", cfg.Drafts.KeyPrefix)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "gemini-pro", cfg.Integrations.Gemini.Model)
	assert.Equal(t, NotificationModeProcess, cfg.Notifications.Mode)
	assert.False(t, cfg.Notifications.Inline())
	assert.Equal(t, "https://acme.zendesk.com/api/v2", cfg.Integrations.Zendesk.APIBaseURL())

	validate := cfg.Workers["validate-evaluation"]
	assert.Equal(t, 5, validate.MaxJobsActive)
	assert.Equal(t, 30000, validate.Timeout)
	assert.Equal(t, 3, validate.MaxRetries)

	assert.False(t, IsWorkerEnabled(cfg, "lookup-ticket"))
	assert.True(t, IsWorkerEnabled(cfg, "not-configured"))
	assert.Equal(t, 2000, GetWorkerConfig(cfg, "lookup-ticket").Timeout)
	assert.Equal(t, 2*time.Second, GetDuration(GetWorkerConfig(cfg, "lookup-ticket").Timeout))
}

func TestLoadFromFile_SecretFallbacks(t *testing.T) {
	t.Setenv("TEST_ZEEBE_ADDRESS", "zeebe:26500")
	t.Setenv("ZENDESK_API_TOKEN", "tok")
	t.Setenv("VITE_GEMINI_API_KEY", "gem")

	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "tok", cfg.Integrations.Zendesk.APIToken)
	assert.Equal(t, "gem", cfg.Integrations.Gemini.APIKey)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		errText string
	}{
		{
			name:    "missing broker",
			yaml:    "database:\n  postgres:\n    host: h\n",
			errText: "camunda.broker_address is required",
		},
		{
			name: "missing redis",
			yaml: `
camunda:
  broker_address: zeebe:26500
database:
  postgres:
    host: h
    database: d
    user: u
`,
			errText: "database.redis.address is required",
		},
		{
			name: "relative webhook url",
			yaml: `
camunda:
  broker_address: zeebe:26500
database:
  postgres:
    host: h
    database: d
    user: u
  redis:
    address: r:6379
integrations:
  webhook:
    url: /hooks
`,
			errText: "integrations.webhook.url",
		},
		{
			name: "unknown notification mode",
			yaml: `
camunda:
  broker_address: zeebe:26500
database:
  postgres:
    host: h
    database: d
    user: u
  redis:
    address: r:6379
notifications:
  mode: batch
`,
			errText: "notifications.mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "formquali", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=formquali sslmode=disable", p.GetDSN())
}
