package api

import (
	"net/http"

	"github.com/vantagesource/qualis/internal/config"
	"github.com/vantagesource/qualis/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Audits.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
	)
	routes.Register(
		mux,
		domain.Suppliers.Handler().Routes(),
	)
	routes.Register(
		mux,
		domain.Prompts.Handler().Routes(),
	)
}
