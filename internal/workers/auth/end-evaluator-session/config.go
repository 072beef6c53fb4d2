// internal/workers/auth/end-evaluator-session/config.go
package endevaluatorsession

import (
	"time"

	"formquali-workers/internal/common/config"
)

type Config struct {
	Enabled bool
	Timeout time.Duration
}

func createConfigFromAppConfig(appConfig *config.Config) *Config {
	cfg := &Config{Enabled: true, Timeout: 5 * time.Second}
	if appConfig == nil {
		return cfg
	}
	wc := config.GetWorkerConfig(appConfig, TaskType)
	cfg.Enabled = wc.Enabled
	if wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	return cfg
}
