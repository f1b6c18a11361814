// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, background tasks)
// that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/vantagesource/qualis/internal/config"
	"github.com/vantagesource/qualis/pkg/database"
	"github.com/vantagesource/qualis/pkg/lifecycle"
	"github.com/vantagesource/qualis/pkg/storage"
	"github.com/vantagesource/qualis/pkg/tasks"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, file storage, and the background task runner.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Tasks     *tasks.Runner
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	runner := tasks.New(&cfg.Tasks, logger)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Tasks:     runner,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database, storage, and task runner hooks are registered for startup and
// shutdown coordination.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Tasks.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("task runner start failed: %w", err)
	}
	return nil
}
