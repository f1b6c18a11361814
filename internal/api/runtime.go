package api

import (
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/vantagesource/qualis/internal/config"
	"github.com/vantagesource/qualis/internal/infrastructure"
	"github.com/vantagesource/qualis/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Agent          gaconfig.AgentConfig
	Extraction     config.ExtractionConfig
	Pagination     pagination.Config
	MaxUploadBytes int64
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Tasks:     infra.Tasks,
		},
		Agent:          cfg.Agent,
		Extraction:     cfg.Extraction,
		Pagination:     cfg.API.Pagination,
		MaxUploadBytes: cfg.API.MaxUploadSizeBytes(),
	}
}
