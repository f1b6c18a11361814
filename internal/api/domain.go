package api

import (
	"github.com/vantagesource/qualis/internal/audits"
	"github.com/vantagesource/qualis/internal/extraction"
	"github.com/vantagesource/qualis/internal/prompts"
	"github.com/vantagesource/qualis/internal/suppliers"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Audits    audits.System
	Suppliers suppliers.System
	Prompts   prompts.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	promptsSystem := prompts.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	suppliersSystem := suppliers.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	extractionRuntime := &extraction.Runtime{
		Agent:            runtime.Agent,
		Storage:          runtime.Storage,
		Prompts:          promptsSystem,
		Logger:           runtime.Logger.With("system", "extraction"),
		MaxPages:         runtime.Extraction.MaxPages,
		MaxDocumentBytes: runtime.MaxUploadBytes,
		RetryAttempts:    runtime.Extraction.RetryAttempts,
		RetryBackoff:     runtime.Extraction.RetryBackoffDuration(),
	}

	auditsSystem := audits.New(
		runtime.Database.Connection(),
		runtime.Storage,
		suppliersSystem,
		runtime.Tasks,
		extractionRuntime,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Audits:    auditsSystem,
		Suppliers: suppliersSystem,
		Prompts:   promptsSystem,
	}
}
