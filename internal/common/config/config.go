// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
)

type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Integrations  IntegrationConfig       `mapstructure:"integrations"`
	Session       SessionConfig           `mapstructure:"session"`
	Drafts        DraftsConfig            `mapstructure:"drafts"`
	Server        ServerConfig            `mapstructure:"server"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
	Index     string   `mapstructure:"index"`
}

func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

// Enabled reports whether any Elasticsearch address is configured.
func (e ElasticsearchConfig) Enabled() bool {
	return e.GetURL() != ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

type IntegrationConfig struct {
	Zendesk ZendeskConfig `mapstructure:"zendesk"`
	Webhook WebhookConfig `mapstructure:"webhook"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Discord DiscordConfig `mapstructure:"discord"`
	AWS     AWSConfig     `mapstructure:"aws"`
}

type ZendeskConfig struct {
	Subdomain string `mapstructure:"subdomain"`
	Email     string `mapstructure:"email"`
	APIToken  string `mapstructure:"api_token"`
	BaseURL   string `mapstructure:"base_url"`  // overrides https://{subdomain}.zendesk.com
	Timeout   int    `mapstructure:"timeout"`   // milliseconds
	CacheTTL  int    `mapstructure:"cache_ttl"` // seconds
}

// APIBaseURL returns the REST root for the configured account.
func (z ZendeskConfig) APIBaseURL() string {
	if z.BaseURL != "" {
		return strings.TrimRight(z.BaseURL, "/") + "/api/v2"
	}
	return fmt.Sprintf("https://%s.zendesk.com/api/v2", z.Subdomain)
}

type WebhookConfig struct {
	URL     string `mapstructure:"url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type GeminiConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

type DiscordConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	BotToken  string `mapstructure:"bot_token"`
	ChannelID string `mapstructure:"channel_id"`
}

type AWSConfig struct {
	Region string `mapstructure:"region"`
	SES    struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"ses"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

type SessionConfig struct {
	TTL int `mapstructure:"ttl"` // seconds
}

type DraftsConfig struct {
	KeyPrefix string `mapstructure:"key_prefix"`
	TTL       int    `mapstructure:"ttl"` // seconds, 0 keeps drafts forever
}

type ServerConfig struct {
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	AllowedOrigin   string `mapstructure:"allowed_origin"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// Notification modes. In process mode saved evaluations are handed to the
// workflow engine, which runs the notify worker. Inline mode notifies from
// the submitting process itself.
const (
	NotificationModeProcess = "process"
	NotificationModeInline  = "inline"
)

type NotificationConfig struct {
	Mode  string `mapstructure:"mode"`
	Email struct {
		Enabled bool   `mapstructure:"enabled"`
		Subject string `mapstructure:"subject"`
	} `mapstructure:"email"`
	CriticalAlerts struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"critical_alerts"`
}

// Inline reports whether notifications are sent from the submitting process.
func (n NotificationConfig) Inline() bool {
	return strings.EqualFold(n.Mode, NotificationModeInline)
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
