// internal/workers/auth/verify-evaluator-credentials/config.go
package verifyevaluatorcredentials

import (
	"time"

	"formquali-workers/internal/common/config"
)

type Config struct {
	Enabled bool
	Timeout time.Duration
}

func createConfigFromAppConfig(appConfig *config.Config) *Config {
	cfg := &Config{Enabled: true, Timeout: 10 * time.Second}
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
